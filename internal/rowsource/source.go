// Package rowsource reads and writes the backing queue store as ordered raw
// key-value rows. The access discipline is read-full-snapshot / write-full-
// snapshot; there are no partial updates. The concrete strategy (CSV dialect
// or Postgres table) is picked once when the queue is opened.
package rowsource

import "context"

// Row is one raw record as stored, keyed by column name.
type Row map[string]string

// Source is the backing store contract. Load preserves row order; Overwrite
// replaces the entire row set, writing the given columns for every row.
type Source interface {
	Load(ctx context.Context) ([]Row, error)
	Overwrite(ctx context.Context, header []string, rows []Row) error
}
