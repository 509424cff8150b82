package entity

// Bill is one row of a senator's bill list.
// LastActionDate is kept as the page renders it; it is not parsed into a time.
type Bill struct {
	Description    string
	Chamber        string
	LastAction     string
	LastActionDate string
}
