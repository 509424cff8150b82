package scraper_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"senate-bills/internal/domain/entity"
	"senate-bills/internal/infra/scraper"

	"github.com/google/go-cmp/cmp"
)

func TestParseBills_RowArityFilter(t *testing.T) {
	cells := []string{"SB0001", "Sponsor", "Appropriations", "S", "Referred to Assignments", "1/9/2013", "extra"}

	tests := []struct {
		name   string
		marked int
		want   int
	}{
		{name: "no marker cells", marked: 0, want: 0},
		{name: "four marker cells", marked: 4, want: 0},
		{name: "five marker cells", marked: 5, want: 1},
		{name: "six marker cells", marked: 6, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := nestedPage("Bills", cellRow("billlist", tt.marked, cells...))

			got := scraper.ParseBills(mustParse(t, page))

			if len(got) != tt.want {
				t.Errorf("len(bills) = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseBills_WindowOverAllCells(t *testing.T) {
	page := nestedPage("Bills",
		`<tr><td class="heading">Bill</td><td class="heading">Sponsor</td><td class="heading">Description</td></tr>`,
		billRow("SB0001", "Appropriations, \"FY14\"", "S", "Referred to Assignments", "1/9/2013"),
		billRow("SB0002", "Sch Cd-Charter", "S", "Session Sine Die", "1/7/2015"),
	)

	got := scraper.ParseBills(mustParse(t, page))

	want := []entity.Bill{
		{Description: `Appropriations, "FY14"`, Chamber: "S", LastAction: "Referred to Assignments", LastActionDate: "1/9/2013"},
		{Description: "Sch Cd-Charter", Chamber: "S", LastAction: "Session Sine Die", LastActionDate: "1/7/2015"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bills mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBills_ShortRowSkipped(t *testing.T) {
	// five marked cells and nothing else: index 5 of the window does not exist
	page := nestedPage("Bills", cellRow("billlist", 5, "SB0003", "Sponsor", "Desc", "S", "Filed"))

	got := scraper.ParseBills(mustParse(t, page))

	if len(got) != 0 {
		t.Errorf("len(bills) = %d, want 0", len(got))
	}
}

func TestParseBills_EmptyPage(t *testing.T) {
	got := scraper.ParseBills(mustParse(t, nestedPage("Bills")))

	if got == nil || len(got) != 0 {
		t.Errorf("ParseBills() = %#v, want empty non-nil slice", got)
	}
}

func TestDetailScraper_ExtractBills(t *testing.T) {
	page := nestedPage("Senator Bills",
		billRow("SB0001", "Appropriations", "S", "Referred to Assignments", "1/9/2013"),
	)
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	detail := scraper.NewDetailScraper(scraper.NewPageFetcher(server.Client()), nil)

	got, err := detail.ExtractBills(context.Background(), server.URL+"/senate/SenatorBills.asp?MemberID=1&Primary=True")
	if err != nil {
		t.Fatalf("ExtractBills() error = %v", err)
	}
	if gotQuery != "MemberID=1&Primary=True" {
		t.Errorf("query = %q, want MemberID=1&Primary=True", gotQuery)
	}
	want := []entity.Bill{{Description: "Appropriations", Chamber: "S", LastAction: "Referred to Assignments", LastActionDate: "1/9/2013"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bills mismatch (-want +got):\n%s", diff)
	}
}

func TestDetailScraper_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	detail := scraper.NewDetailScraper(scraper.NewPageFetcher(server.Client()), nil)

	_, err := detail.ExtractBills(context.Background(), server.URL+"/missing")

	if !errors.Is(err, entity.ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
}
