package core

import "context"

// Transactor runs fn in a single storage transaction.
// Repositories called with the ctx handed to fn take part in that transaction.
// If fn returns an error, the transaction is rolled back where the storage engine supports it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
