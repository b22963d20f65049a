package view

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ledger/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id int64, date core.Date, desc, category string, cents int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		AccountID:   1,
		Date:        date,
		Description: desc,
		Category:    category,
		Amount:      core.Money{Cents: cents},
	}
}

// seedRows installs rows directly through the apply path, as if a fetch for
// the current epoch had just resolved.
func seedRows(t *Table, rows []core.Transaction) {
	t.mu.Lock()
	epoch := t.fetchEpoch
	t.mu.Unlock()
	t.apply(epoch, rows, nil)
}

func specRows() []core.Transaction {
	return []core.Transaction{
		row(1, core.NewDate(2024, 1, 16), "Grocery Store", "Food", -8532),
		row(2, core.NewDate(2024, 1, 15), "Direct Deposit - Salary", "Income", 350000),
	}
}

func TestSortByDateAscending(t *testing.T) {
	tbl := NewTable(nil, time.Hour)
	seedRows(tbl, specRows())

	// Mount state is date descending; one activation flips to ascending.
	tbl.Sort(SortByDate)
	snap := tbl.Snapshot()
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, "Direct Deposit - Salary", snap.Rows[0].Description, "Jan 15 sorts before Jan 16")
	assert.Equal(t, "Grocery Store", snap.Rows[1].Description)
}

func TestSortByAmountDescending(t *testing.T) {
	tbl := NewTable(nil, time.Hour)
	seedRows(tbl, specRows())

	tbl.Sort(SortByAmount) // new key: ascending
	tbl.Sort(SortByAmount) // same key: flip to descending
	snap := tbl.Snapshot()
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, int64(350000), snap.Rows[0].Amount.Cents)
	assert.Equal(t, int64(-8532), snap.Rows[1].Amount.Cents)
}

func TestSortHeaderTransitions(t *testing.T) {
	tbl := NewTable(nil, time.Hour)

	snap := tbl.Snapshot()
	assert.Equal(t, SortByDate, snap.SortKey)
	assert.Equal(t, Descending, snap.Direction)

	tbl.Sort(SortByDescription)
	snap = tbl.Snapshot()
	assert.Equal(t, SortByDescription, snap.SortKey)
	assert.Equal(t, Ascending, snap.Direction, "a new key always starts ascending")

	tbl.Sort(SortByDescription)
	assert.Equal(t, Descending, tbl.Snapshot().Direction, "same key flips direction")
}

func TestSortIsStable(t *testing.T) {
	same := core.NewDate(2024, 1, 18)
	rows := []core.Transaction{
		row(5, same, "Transfer from Checking", "Transfer", 50000),
		row(6, same, "Transfer to Savings", "Transfer", -50000),
		row(4, core.NewDate(2024, 1, 17), "Gas Station", "Transportation", -4567),
	}
	tbl := NewTable(nil, time.Hour)
	seedRows(tbl, rows)

	tbl.Sort(SortByDate) // ascending
	snap := tbl.Snapshot()
	require.Len(t, snap.Rows, 3)
	assert.Equal(t, int64(4), snap.Rows[0].ID)
	assert.Equal(t, int64(5), snap.Rows[1].ID, "ties keep input order")
	assert.Equal(t, int64(6), snap.Rows[2].ID)

	// Descending flips the comparator, not the output, so tied rows keep
	// their relative input order rather than reversing.
	tbl.Sort(SortByDate)
	snap = tbl.Snapshot()
	assert.Equal(t, int64(5), snap.Rows[0].ID)
	assert.Equal(t, int64(6), snap.Rows[1].ID)
	assert.Equal(t, int64(4), snap.Rows[2].ID)
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	rows := []core.Transaction{
		row(1, core.NewDate(2024, 1, 16), "Grocery Store", "Food", -8532),
		row(2, core.NewDate(2024, 1, 17), "Gas Station", "Transportation", -4567),
		row(3, core.NewDate(2024, 1, 20), "Coffee Shop", "Food", -475),
	}
	tbl := NewTable(nil, time.Hour)
	seedRows(tbl, rows)

	tbl.SetFilterText("gas")
	assert.Len(t, tbl.Snapshot().Rows, 3, "typing must not filter before submit")

	tbl.ApplyFilter()
	snap := tbl.Snapshot()
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "Gas Station", snap.Rows[0].Description)

	// Idempotent: submitting the same filter again yields the same rows.
	tbl.ApplyFilter()
	again := tbl.Snapshot()
	assert.Equal(t, snap.Rows, again.Rows)

	tbl.ClearFilter()
	snap = tbl.Snapshot()
	assert.Len(t, snap.Rows, 3)
	assert.Empty(t, snap.FilterText)
	assert.Empty(t, snap.AppliedFilter)
}

func TestFilterDoesNotMutateRows(t *testing.T) {
	tbl := NewTable(nil, time.Hour)
	seedRows(tbl, specRows())

	tbl.SetFilterText("grocery")
	tbl.ApplyFilter()
	require.Len(t, tbl.Snapshot().Rows, 1)

	tbl.ClearFilter()
	assert.Len(t, tbl.Snapshot().Rows, 2, "filtering is derived, rows survive")
}

func TestEpochGuardDiscardsStaleResponse(t *testing.T) {
	tbl := NewTable(nil, time.Hour)

	// Fetch A starts (epoch 1), then fetch B starts (epoch 2).
	tbl.mu.Lock()
	tbl.fetchEpoch = 2
	tbl.mu.Unlock()

	rowsB := []core.Transaction{row(2, core.NewDate(2024, 1, 15), "fresh", "B", 2)}
	rowsA := []core.Transaction{row(1, core.NewDate(2024, 1, 15), "stale", "A", 1)}

	tbl.apply(2, rowsB, nil)
	tbl.apply(1, rowsA, nil) // A resolves after B: must be discarded

	snap := tbl.Snapshot()
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "fresh", snap.Rows[0].Description)
	assert.Equal(t, PhaseReady, snap.Phase)
}

func TestEpochGuardEndToEnd(t *testing.T) {
	releaseA := make(chan struct{})
	releaseB := make(chan struct{})
	var calls int32

	rowsA := []core.Transaction{row(1, core.NewDate(2024, 1, 15), "from fetch A", "A", 1)}
	rowsB := []core.Transaction{row(2, core.NewDate(2024, 1, 15), "from fetch B", "B", 2)}

	tbl := NewTable(FetcherFunc(func(ctx context.Context) ([]core.Transaction, error) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			<-releaseA
			return rowsA, nil
		default:
			<-releaseB
			return rowsB, nil
		}
	}), time.Hour)

	ctx := context.Background()
	tbl.Refresh(ctx) // A
	tbl.Refresh(ctx) // B, before A resolves

	close(releaseB)
	require.Eventually(t, func() bool {
		return tbl.Snapshot().Phase == PhaseReady
	}, time.Second, time.Millisecond, "fetch B should land")

	close(releaseA) // A arrives last
	assert.Never(t, func() bool {
		snap := tbl.Snapshot()
		return len(snap.Rows) != 1 || snap.Rows[0].Description != "from fetch B"
	}, 100*time.Millisecond, 5*time.Millisecond, "stale fetch A must not overwrite B")
}

func TestFetchFailureKeepsLastGoodRows(t *testing.T) {
	tbl := NewTable(nil, time.Hour)
	seedRows(tbl, specRows())
	require.Equal(t, PhaseReady, tbl.Snapshot().Phase)

	tbl.fetcher = FetcherFunc(func(ctx context.Context) ([]core.Transaction, error) {
		return nil, errors.New("connection refused")
	})
	tbl.Refresh(context.Background())

	require.Eventually(t, func() bool {
		return tbl.Snapshot().Phase == PhaseError
	}, time.Second, time.Millisecond)

	snap := tbl.Snapshot()
	assert.Len(t, snap.Rows, 2, "transient failure never blanks the table")
}

func TestTimerTickRefreshes(t *testing.T) {
	var calls int32
	tbl := NewTable(FetcherFunc(func(ctx context.Context) ([]core.Transaction, error) {
		atomic.AddInt32(&calls, 1)
		return specRows(), nil
	}), 5*time.Millisecond)

	tbl.Sort(SortByAmount)
	tbl.SetFilterText("gro")
	tbl.ApplyFilter()

	tbl.Start(context.Background())
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 3
	}, time.Second, time.Millisecond, "ticker should keep fetching")

	// Ticks never reset presentation state.
	snap := tbl.Snapshot()
	assert.Equal(t, SortByAmount, snap.SortKey)
	assert.Equal(t, "gro", snap.AppliedFilter)

	tbl.Stop()
	settled := atomic.LoadInt32(&calls)
	assert.Never(t, func() bool {
		return atomic.LoadInt32(&calls) > settled+1
	}, 50*time.Millisecond, 5*time.Millisecond, "ticker must stop after Stop")
}

func TestStopIsIdempotentAndSilencesLateFetches(t *testing.T) {
	release := make(chan struct{})
	tbl := NewTable(FetcherFunc(func(ctx context.Context) ([]core.Transaction, error) {
		<-release
		return specRows(), nil
	}), time.Hour)

	tbl.Refresh(context.Background())
	tbl.Stop()
	tbl.Stop() // second Stop is a no-op

	close(release) // in-flight fetch resolves into a stopped table
	assert.Never(t, func() bool {
		return len(tbl.Snapshot().Rows) != 0
	}, 100*time.Millisecond, 5*time.Millisecond, "late fetch must be a silent no-op")

	tbl.Refresh(context.Background()) // refresh after stop is also a no-op
	assert.Equal(t, PhaseLoading, tbl.Snapshot().Phase)
}
