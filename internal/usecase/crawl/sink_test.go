package crawl_test

import (
	"context"
	"errors"
	"testing"

	"senate-bills/internal/domain/entity"
	"senate-bills/internal/usecase/crawl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRowRepo struct {
	runID string
	rows  []entity.BillRow
	calls int
	err   error
}

func (s *stubRowRepo) InsertRows(_ context.Context, runID string, rows []entity.BillRow) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.runID = runID
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *stubRowRepo) CountByRun(_ context.Context, _ string) (int, error) {
	return len(s.rows), s.err
}

func TestMultiSink_WritesToEach(t *testing.T) {
	a, b := &memorySink{}, &memorySink{}
	rows := []entity.BillRow{{Senator: jane, Bill: sb1}}

	require.NoError(t, crawl.MultiSink{a, b}.WriteRows(context.Background(), rows))

	assert.Equal(t, [][]entity.BillRow{rows}, a.batches)
	assert.Equal(t, [][]entity.BillRow{rows}, b.batches)
}

func TestMultiSink_StopsAtFirstError(t *testing.T) {
	a, b := &memorySink{err: errors.New("disk full")}, &memorySink{}

	err := crawl.MultiSink{a, b}.WriteRows(context.Background(), nil)

	assert.EqualError(t, err, "disk full")
	assert.Empty(t, b.batches)
}

func TestMultiSink_ClosesAll(t *testing.T) {
	a, b := &memorySink{}, &memorySink{}

	require.NoError(t, crawl.MultiSink{a, b}.Close())

	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestRepositorySink(t *testing.T) {
	repo := &stubRowRepo{}
	sink := &crawl.RepositorySink{Repo: repo, RunID: "run-42"}

	require.NoError(t, sink.WriteRows(context.Background(), nil))
	assert.Equal(t, 0, repo.calls, "empty batches are not sent")

	rows := []entity.BillRow{{Senator: jane, Bill: sb1}, {Senator: jane, Bill: sb2}}
	require.NoError(t, sink.WriteRows(context.Background(), rows))
	assert.Equal(t, "run-42", repo.runID)
	assert.Equal(t, rows, repo.rows)
	assert.NoError(t, sink.Close())
}

func TestRepositorySink_Verify(t *testing.T) {
	repo := &stubRowRepo{}
	sink := &crawl.RepositorySink{Repo: repo, RunID: "run-7"}
	require.NoError(t, sink.WriteRows(context.Background(), []entity.BillRow{{Senator: jane, Bill: sb1}, {Senator: john, Bill: sb3}}))

	assert.NoError(t, sink.Verify(context.Background(), 2))

	err := sink.Verify(context.Background(), 3)
	assert.ErrorIs(t, err, crawl.ErrStoredRowsMismatch)
	assert.ErrorContains(t, err, "run run-7: stored 2, crawled 3")
}

func TestRepositorySink_VerifyCountError(t *testing.T) {
	sink := &crawl.RepositorySink{Repo: &stubRowRepo{err: errors.New("connection refused")}, RunID: "r"}

	err := sink.Verify(context.Background(), 0)

	assert.ErrorContains(t, err, "count stored rows: connection refused")
	assert.NotErrorIs(t, err, crawl.ErrStoredRowsMismatch)
}

func TestRepositorySink_Error(t *testing.T) {
	sink := &crawl.RepositorySink{Repo: &stubRowRepo{err: errors.New("connection refused")}, RunID: "r"}

	err := sink.WriteRows(context.Background(), []entity.BillRow{{Senator: jane, Bill: sb1}})

	assert.ErrorContains(t, err, "store rows: connection refused")
}
