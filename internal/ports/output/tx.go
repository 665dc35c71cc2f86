package output

import "context"

// TxManager runs fn inside one storage transaction. Repositories called with
// the ctx passed to fn share that transaction. fn returning an error rolls
// the transaction back; no partial writes are ever visible.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
