// Package entity defines the records the crawl produces (Senator, Bill and the
// joined BillRow) and the domain errors raised while producing them.
package entity

// Senator is one member scraped from the senate listing page.
// DetailURL points at the member's primary-sponsored bills page.
type Senator struct {
	Name      string
	District  int
	Party     string
	DetailURL string
}
