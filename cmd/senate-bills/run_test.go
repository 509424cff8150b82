package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"senate-bills/internal/domain/entity"
)

/* ──────────────────────────────── fixtures ──────────────────────────────── */

func nested(rows ...string) string {
	return `<html><body><table><tr><td><table><tr><td><table>` +
		strings.Join(rows, "\n") +
		`</table></td></tr></table></td></tr></table></body></html>`
}

func senatorRow(name, memberID, district, party string) string {
	return `<tr>` +
		`<td class="detail"><a href="/senate/Senator.asp?MemberID=` + memberID + `">` + name + `</a></td>` +
		`<td class="detail"><a href="SenatorBills.asp?MemberID=` + memberID + `&amp;GA=98">Bills</a></td>` +
		`<td class="detail">&nbsp;</td>` +
		`<td class="detail">` + district + `</td>` +
		`<td class="detail">` + party + `</td></tr>`
}

func billRow(id, description, action, date string) string {
	return `<tr><td>` + id + `</td>` +
		`<td class="billlist">Sponsor</td>` +
		`<td class="billlist">` + description + `</td>` +
		`<td class="billlist">S</td>` +
		`<td class="billlist">` + action + `</td>` +
		`<td class="billlist">` + date + `</td></tr>`
}

// senateSite serves a two-senator listing; member 2 has no bills and member 3
// answers 500 when present.
func senateSite(t *testing.T, withBroken bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/senate/default.asp", func(w http.ResponseWriter, r *http.Request) {
		rows := []string{
			senatorRow("Jane Doe", "1", "42", "D"),
			senatorRow("John Roe", "2", "7", "R"),
		}
		if withBroken {
			rows = append(rows, senatorRow("Broken Page", "3", "9", "D"))
		}
		_, _ = io.WriteString(w, nested(rows...))
	})
	mux.HandleFunc("/senate/SenatorBills.asp", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("Primary") != "True" {
			http.Error(w, "missing Primary", http.StatusBadRequest)
			return
		}
		switch r.URL.Query().Get("MemberID") {
		case "1":
			_, _ = io.WriteString(w, nested(
				billRow("SB0001", `Appropriations, "FY14"`, "Referred to Assignments", "1/9/2013"),
				billRow("SB0002", "Income Tax", "Public Act", "8/2/2014"),
			))
		case "2":
			_, _ = io.WriteString(w, nested())
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	})
	return httptest.NewServer(mux)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(testOptions())
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

/* ──────────────────────────────── run ──────────────────────────────── */

func TestRunCommand_WritesJoinedTable(t *testing.T) {
	site := senateSite(t, false)
	defer site.Close()
	t.Setenv("DETAIL_BASE_URL", site.URL+"/senate/")

	output := filepath.Join(t.TempDir(), "bills.csv")
	out, err := execute(t, "run",
		"--listing-url", site.URL+"/senate/default.asp",
		"--pacing", "0s",
		"--output", output,
		"--log-format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 rows (2 senators, 2 bills)")

	link := site.URL + "/senate/SenatorBills.asp?MemberID=1&GA=98&Primary=True"
	want := [][]string{
		entity.BillRowHeader,
		{"Jane Doe", "42", "D", link, `Appropriations, "FY14"`, "S", "Referred to Assignments", "1/9/2013"},
		{"Jane Doe", "42", "D", link, "Income Tax", "S", "Public Act", "8/2/2014"},
	}
	if diff := cmp.Diff(want, readCSV(t, output)); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCommand_AbortLeavesNoFile(t *testing.T) {
	site := senateSite(t, true)
	defer site.Close()
	t.Setenv("DETAIL_BASE_URL", site.URL+"/senate/")

	output := filepath.Join(t.TempDir(), "bills.csv")
	_, err := execute(t, "run",
		"--listing-url", site.URL+"/senate/default.asp",
		"--pacing", "0s",
		"--output", output)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrFetchFailed), "err = %v", err)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "end-mode crawl must not write on failure")
}

func TestRunCommand_SkipPolicyKeepsGoing(t *testing.T) {
	site := senateSite(t, true)
	defer site.Close()
	t.Setenv("DETAIL_BASE_URL", site.URL+"/senate/")

	output := filepath.Join(t.TempDir(), "bills.csv")
	out, err := execute(t, "run",
		"--listing-url", site.URL+"/senate/default.asp",
		"--pacing", "0s",
		"--on-fetch-error", "skip",
		"--flush", "incremental",
		"--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped 1 senators")
	assert.Len(t, readCSV(t, output), 3)
}

func TestRunCommand_RejectsArgs(t *testing.T) {
	_, err := execute(t, "run", "extra")
	require.Error(t, err)
}
