package repository

import "context"

// TxManager runs fn inside a single database transaction. Repository calls
// made with the context passed to fn join that transaction; any error rolls
// it back.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
