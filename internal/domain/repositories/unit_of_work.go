package repositories

import "context"

// UnitOfWork runs a function inside a storage transaction. Repositories
// invoked with the derived context participate in the same transaction;
// WithLock upgrades reads within the transaction to row locks.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	WithLock(ctx context.Context) context.Context
}
