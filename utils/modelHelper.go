package utils

import (
	"context"
	"errors"

	"github.com/mmdatafocus/inventory_backend/config"
	"gorm.io/gorm"
)

/* DB fetching */

// fetch model from db
// (may return RecordNotFound, other errors are passed through untouched)
func FetchModel[T any](ctx context.Context, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	return FetchModelTx[T](db.WithContext(ctx), id, associations...)
}

// FetchModelTx is FetchModel on an explicit handle, typically an open transaction.
func FetchModelTx[T any](tx *gorm.DB, id int, associations ...string) (*T, error) {
	dbCtx := tx
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch all models from db
func FetchAllModels[T any](ctx context.Context, orders ...string) ([]*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	for _, order := range orders {
		dbCtx = dbCtx.Order(order)
	}
	var results []*T
	err := dbCtx.Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FetchByForeignKey lists rows whose column equals id.
func FetchByForeignKey[T any](tx *gorm.DB, column string, id int, orders ...string) ([]T, error) {
	dbCtx := tx.Where(column+" = ?", id)
	for _, order := range orders {
		dbCtx = dbCtx.Order(order)
	}
	var results []T
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
