package scraper_test

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
)

// nestedPage wraps rows in three levels of tables so each row sits inside two
// outer rows, the way the senate pages are laid out.
func nestedPage(title string, rows ...string) string {
	return `<!DOCTYPE html>
<html><head><title>` + title + `</title></head>
<body>
<table><tr><td>
 <table><tr><td>
  <table>
` + strings.Join(rows, "\n") + `
  </table>
 </td></tr></table>
</td></tr></table>
</body></html>`
}

// cellRow renders one row of td cells; class applies to the first marked cells.
func cellRow(class string, marked int, cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for i, c := range cells {
		if i < marked {
			fmt.Fprintf(&b, `<td class="%s">%s</td>`, class, c)
		} else {
			fmt.Fprintf(&b, `<td>%s</td>`, c)
		}
	}
	b.WriteString("</tr>")
	return b.String()
}

// senatorRow renders a listing data row with two links: the member page then
// the bills page.
func senatorRow(name, billsHref, district, party string) string {
	return cellRow("detail", 5,
		`<a href="/senate/Senator.asp?MemberID=1">`+name+`</a>`,
		`<a href="`+billsHref+`">Bills</a>`,
		`&nbsp;`,
		district,
		party,
	)
}

// billRow renders a detail data row: six cells, the first one unmarked.
func billRow(id, description, chamber, action, date string) string {
	return `<tr><td><a href="/legislation/` + id + `">` + id + `</a></td>` +
		`<td class="billlist">Sponsor</td>` +
		`<td class="billlist">` + description + `</td>` +
		`<td class="billlist">` + chamber + `</td>` +
		`<td class="billlist">` + action + `</td>` +
		`<td class="billlist">` + date + `</td></tr>`
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error = %v", raw, err)
	}
	return u
}
