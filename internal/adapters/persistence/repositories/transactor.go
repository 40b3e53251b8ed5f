package repositories

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactor implements Transactor on a gorm connection. The open
// transaction handle travels in the context so that repositories used
// inside the function operate on it transparently.
type GormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a new transactor
func NewTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// WithinTransaction runs fn inside a transaction, committing on nil and
// rolling back on error. When the context already carries a transaction,
// fn joins it and commit/rollback is left to the outermost caller.
func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFromContext returns the transaction handle carried by ctx, or the
// fallback connection when no transaction is open.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
