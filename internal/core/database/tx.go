package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx stores an open transaction in the context so repositories invoked
// further down join the same unit of work instead of the shared pool.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom returns the transaction carried by the context, if any.
func TxFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok
}
