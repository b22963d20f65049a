package export

import (
	"context"

	"ledger/internal/core"
)

// Appender writes a transaction to an external ledger copy and returns a
// reference to where it landed.
type Appender interface {
	Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
}
