package entity

import "strconv"

// BillRowHeader is the fixed header of the exported table.
var BillRowHeader = []string{
	"Senator",
	"District",
	"Party",
	"Bills Link",
	"Description",
	"Chamber",
	"Last Action",
	"Last Action Date",
}

// BillRow is one senator joined with one of their bills.
type BillRow struct {
	Senator Senator
	Bill    Bill
}

// NewBillRow joins a senator and a bill into a single output row.
func NewBillRow(s Senator, b Bill) BillRow {
	return BillRow{Senator: s, Bill: b}
}

// Record renders the row as string fields in BillRowHeader order.
func (r BillRow) Record() []string {
	return []string{
		r.Senator.Name,
		strconv.Itoa(r.Senator.District),
		r.Senator.Party,
		r.Senator.DetailURL,
		r.Bill.Description,
		r.Bill.Chamber,
		r.Bill.LastAction,
		r.Bill.LastActionDate,
	}
}
