package shared

import "context"

// TxManager runs fn in one storage transaction. Repositories called with the
// ctx passed to fn join that transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NumberGenerator issues unique human-readable document numbers such as
// order and serial numbers.
type NumberGenerator interface {
	Next(prefix string) string
}
