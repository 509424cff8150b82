package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"senate-bills/internal/domain/entity"
	"senate-bills/internal/infra/adapter/persistence/postgres"
)

/* ──────────────────────────────── helpers ──────────────────────────────── */

const runID = "0b5e2f7c-4a1d-4c39-9f6e-2d8b1a7c3e90"

var jane = entity.Senator{Name: "Jane Doe", District: 42, Party: "D", DetailURL: "http://www.ilga.gov/senate/SenatorBills.asp?MemberID=1&Primary=True"}

func rows() []entity.BillRow {
	return []entity.BillRow{
		{Senator: jane, Bill: entity.Bill{Description: "Appropriations", Chamber: "S", LastAction: "Referred to Assignments", LastActionDate: "1/9/2013"}},
		{Senator: jane, Bill: entity.Bill{Description: "Income Tax", Chamber: "S", LastAction: "Public Act", LastActionDate: "8/2/2014"}},
	}
}

func expectRow(stmt *sqlmock.ExpectedPrepare, position int, r entity.BillRow) {
	stmt.ExpectExec().
		WithArgs(runID, position,
			r.Senator.Name, r.Senator.District, r.Senator.Party, r.Senator.DetailURL,
			r.Bill.Description, r.Bill.Chamber, r.Bill.LastAction, r.Bill.LastActionDate).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

/* ──────────────────────────────── 1. InsertRows ──────────────────────────────── */

func TestBillRowRepo_InsertRows(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(position), -1) + 1`)).
		WithArgs(runID).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))
	stmt := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO bill_rows`))
	for i, r := range rows() {
		expectRow(stmt, 3+i, r)
	}
	mock.ExpectCommit()

	repo := postgres.NewBillRowRepo(db)
	if err := repo.InsertRows(context.Background(), runID, rows()); err != nil {
		t.Fatalf("InsertRows err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBillRowRepo_InsertRows_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := postgres.NewBillRowRepo(db)
	if err := repo.InsertRows(context.Background(), runID, nil); err != nil {
		t.Fatalf("InsertRows err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBillRowRepo_InsertRows_RollbackOnError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(position), -1) + 1`)).
		WithArgs(runID).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(0))
	stmt := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO bill_rows`))
	expectRow(stmt, 0, rows()[0])
	stmt.ExpectExec().WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	repo := postgres.NewBillRowRepo(db)
	err := repo.InsertRows(context.Background(), runID, rows())
	if err == nil {
		t.Fatal("InsertRows err=nil, want error")
	}
	if got := err.Error(); got != "InsertRows: row 1: value too long" {
		t.Errorf("err=%q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 2. CountByRun ──────────────────────────────── */

func TestBillRowRepo_CountByRun(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bill_rows`)).
		WithArgs(runID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	repo := postgres.NewBillRowRepo(db)
	got, err := repo.CountByRun(context.Background(), runID)
	if err != nil {
		t.Fatalf("CountByRun err=%v", err)
	}
	if got != 17 {
		t.Errorf("CountByRun=%d, want 17", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
