package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction, passing
// the underlying handle via `tx`.
//
// Repository methods accept `tx Tx` and detect a transaction implementation-side
// (e.g. pgx.Tx for Postgres); they MUST gracefully accept nil for the
// non-transactional path. This keeps use-case interfaces free of storage types
// while still allowing SELECT ... FOR UPDATE and conditional updates to share
// one transaction across repositories.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
