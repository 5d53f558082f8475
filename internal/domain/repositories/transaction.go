package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a group of repository calls atomically.
// Repositories pick the transaction up from the context via GetTx.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

// NoopTransactionManager runs fn directly. Used by stores without transactions.
type NoopTransactionManager struct{}

// ExecTx calls fn with the unchanged context.
func (NoopTransactionManager) ExecTx(ctx context.Context, fn TxFn) error {
	return fn(ctx)
}
