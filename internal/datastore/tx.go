package datastore

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs multi-step writes atomically.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// Do runs fn in a transaction, committing when it returns nil. Stores used
// inside fn must be bound with WithTx.
func (t *Transactor) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
