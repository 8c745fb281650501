// Package ledger provides typed access to the external tabular store that
// acts as the system of record. The store is append-mostly: rows are added
// at the end of a table and individual rows may be overwritten in place for
// status backfill. No transactions and no server-side uniqueness exist;
// callers own those guarantees.
package ledger

import (
	"context"
	"errors"
)

// Table names in the backing spreadsheet-style store.
const (
	TableCalls           = "CALL_LOGS"
	TableMessages        = "MESSAGES"
	TableConversations   = "CONVERSATII"
	TableClassifications = "AI_RESPONSES"
	TableCustomers       = "CLIENTS"
)

// ErrStoreUnavailable signals the ledger could not be reached or returned
// a malformed response. Callers decide per call site whether this is fatal.
var ErrStoreUnavailable = errors.New("ledger store unavailable")

// Row is one positional record as the store transmits it.
type Row []string

// Store is the raw tabular transport underneath the typed client.
type Store interface {
	// Append adds a row at the end of the table.
	Append(ctx context.Context, table string, row Row) error
	// Query returns all rows of the table in positional order.
	Query(ctx context.Context, table string) ([]Row, error)
	// Update overwrites the row at the given zero-based position.
	Update(ctx context.Context, table string, index int, row Row) error
}
