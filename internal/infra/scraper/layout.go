// Package scraper extracts senators and their bills from the Illinois General
// Assembly senate pages.
package scraper

// Page layout assumptions. Every constant below encodes how the ILGA pages are
// built today; when the site changes, this is the file to edit.
const (
	// Data rows sit three table rows deep: the site lays pages out with tables
	// nested inside table cells, and only the innermost rows carry data.
	rowTag     = "tr"
	rowNesting = 3

	cellTag = "td"

	// Marker classes identify data cells among decorative ones.
	senatorCellClass = "detail"
	billCellClass    = "billlist"

	// A data row carries exactly this many marker cells, on both pages.
	// Rows with any other count are headers, spacers or footers.
	markerCellsPerRow = 5

	// Listing page: positions within the five "detail" cells.
	nameCell     = 0
	districtCell = 3
	partyCell    = 4

	// The first anchor in a listing row links elsewhere; the second one is the
	// member's bills page.
	detailAnchorIndex = 1

	// Detail page: the output window over all td/th children of the row,
	// not over the marker cells. Two unmarked leading cells precede it.
	billWindowStart = 2
	billWindowSize  = 4
)

const (
	// DefaultListingURL is the senate members index.
	DefaultListingURL = "http://www.ilga.gov/senate/default.asp"

	// DetailBaseURL is prepended to the relative href scraped from the listing.
	DetailBaseURL = "http://www.ilga.gov/senate/"

	// DetailQuerySuffix restricts the bills page to primary sponsorships.
	DetailQuerySuffix = "&Primary=True"

	// AssemblyParam is the query parameter selecting a General Assembly.
	AssemblyParam = "GA"
)
