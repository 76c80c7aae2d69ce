package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via `qx`.
//
// Repository methods accept `qx Tx` and detect a live transaction
// implementation-side; a nil qx means the non-transactional path. The
// concrete type of `qx` is infra-defined (pgx.Tx for Postgres).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, qx Tx) error) error
}
