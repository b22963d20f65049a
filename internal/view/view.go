// Package view holds the client-side presentation state for the transaction
// table: one substring filter, one single-key sort, and a polling refresh
// loop. The table re-fetches the full transaction set on a fixed interval and
// on demand; an epoch counter guards against a slow older response
// overwriting rows delivered by a newer fetch.
package view

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ledger/internal/core"
)

// Phase is the table's fetch state.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// SortKey selects the column the table is ordered by.
type SortKey string

const (
	SortByDate        SortKey = "date"
	SortByDescription SortKey = "description"
	SortByCategory    SortKey = "category"
	SortByAmount      SortKey = "amount"
)

// Direction is the sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Fetcher loads the full transaction set.
type Fetcher interface {
	FetchTransactions(ctx context.Context) ([]core.Transaction, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]core.Transaction, error)

func (f FetcherFunc) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	return f(ctx)
}

// DefaultRefreshInterval matches the original table's 10-second poll.
const DefaultRefreshInterval = 10 * time.Second

// Table is the transaction table state machine. All transitions take the
// mutex, so they are atomic with respect to each other; the only real
// concurrency is between an in-flight fetch and later transitions, which the
// fetch epoch resolves (last started fetch wins, not last to arrive).
type Table struct {
	fetcher  Fetcher
	interval time.Duration

	mu            sync.Mutex
	rows          []core.Transaction
	phase         Phase
	sortKey       SortKey
	direction     Direction
	filterText    string
	appliedFilter string
	fetchEpoch    uint64
	stopped       bool

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTable creates a table polling fetcher every interval.
// A non-positive interval selects DefaultRefreshInterval.
func NewTable(fetcher Fetcher, interval time.Duration) *Table {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Table{
		fetcher:  fetcher,
		interval: interval,
		phase:    PhaseLoading,
		// Newest entries first on mount, like the original table.
		sortKey:   SortByDate,
		direction: Descending,
		stop:      make(chan struct{}),
	}
}

// Start issues the mount fetch and begins the background poll. The poll runs
// until Stop; it never suspends the table and never touches sort or filter
// state.
func (t *Table) Start(ctx context.Context) {
	t.Refresh(ctx)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.Refresh(ctx)
			case <-t.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Refresh starts a new fetch. Any response belonging to an earlier epoch is
// discarded when it eventually lands. Safe to call from timer ticks, external
// change signals, and after writes.
func (t *Table) Refresh(ctx context.Context) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.fetchEpoch++
	epoch := t.fetchEpoch
	t.phase = PhaseLoading
	t.mu.Unlock()

	go func() {
		rows, err := t.fetcher.FetchTransactions(ctx)
		t.apply(epoch, rows, err)
	}()
}

// apply installs a fetch result unless it is stale or the table is stopped.
func (t *Table) apply(epoch uint64, rows []core.Transaction, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || epoch != t.fetchEpoch {
		// A newer fetch started since, or the view is gone. Either way this
		// response must not overwrite anything.
		return
	}
	if err != nil {
		// Keep the last good rows on transient failure; the next tick retries.
		t.phase = PhaseError
		return
	}
	t.rows = rows
	t.phase = PhaseReady
}

// Sort activates a column header: the same key flips direction, a new key
// sorts ascending. Pure state transition, no network effect.
func (t *Table) Sort(key SortKey) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if key == t.sortKey {
		if t.direction == Ascending {
			t.direction = Descending
		} else {
			t.direction = Ascending
		}
		return
	}
	t.sortKey = key
	t.direction = Ascending
}

// SetFilterText records what the user is typing. Typing alone never filters.
func (t *Table) SetFilterText(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filterText = text
}

// ApplyFilter submits the typed text as the filter in effect.
func (t *Table) ApplyFilter() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.appliedFilter = t.filterText
}

// ClearFilter resets both the typed and the applied filter.
func (t *Table) ClearFilter() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filterText = ""
	t.appliedFilter = ""
}

// Stop cancels the poll exactly once. Fetches resolving afterwards are
// silent no-ops.
func (t *Table) Stop() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		t.stopped = true
		t.mu.Unlock()
		close(t.stop)
	})
	t.wg.Wait()
}

// Snapshot is the derived view handed to the presentation layer.
type Snapshot struct {
	Rows          []core.Transaction
	Phase         Phase
	SortKey       SortKey
	Direction     Direction
	FilterText    string
	AppliedFilter string
}

// Snapshot computes the rendered row set: filter, then stable sort. It is a
// pure function of the current state and never mutates it.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	filtered := filterRows(t.rows, t.appliedFilter)
	sortRows(filtered, t.sortKey, t.direction)

	return Snapshot{
		Rows:          filtered,
		Phase:         t.phase,
		SortKey:       t.sortKey,
		Direction:     t.direction,
		FilterText:    t.filterText,
		AppliedFilter: t.appliedFilter,
	}
}

// filterRows keeps rows whose description contains the applied filter,
// case-insensitively. An empty filter keeps everything.
func filterRows(rows []core.Transaction, applied string) []core.Transaction {
	out := make([]core.Transaction, 0, len(rows))
	if applied == "" {
		return append(out, rows...)
	}
	needle := strings.ToLower(applied)
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Description), needle) {
			out = append(out, row)
		}
	}
	return out
}

// sortRows orders rows in place. The sort is stable so ties keep their
// relative input order; descending flips the comparator, not the output,
// which preserves that stability.
func sortRows(rows []core.Transaction, key SortKey, dir Direction) {
	less := lessFunc(key)
	if dir == Descending {
		asc := less
		less = func(a, b core.Transaction) bool { return asc(b, a) }
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

func lessFunc(key SortKey) func(a, b core.Transaction) bool {
	switch key {
	case SortByDescription:
		return func(a, b core.Transaction) bool {
			return strings.ToLower(a.Description) < strings.ToLower(b.Description)
		}
	case SortByCategory:
		return func(a, b core.Transaction) bool {
			return strings.ToLower(a.Category) < strings.ToLower(b.Category)
		}
	case SortByAmount:
		return func(a, b core.Transaction) bool {
			return a.Amount.Cents < b.Amount.Cents
		}
	default: // SortByDate: compare calendar instants, not strings
		return func(a, b core.Transaction) bool {
			return a.Date.Before(b.Date.Time)
		}
	}
}
