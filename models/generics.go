package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/reconcile"
	"github.com/mmdatafocus/inventory_backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var tracer = otel.Tracer("inventory/models")

// find in db by primary key
// (a missing row is reported as a StaleReferenceError naming entity)
func GetResource[T any](ctx context.Context, entity string, id int, associations ...string) (*T, error) {
	result, err := utils.FetchModel[T](ctx, id, associations...)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, &utils.StaleReferenceError{Entity: entity, Id: id}
		}
		return nil, storeError(ctx, entity, "GetResource", err)
	}
	return result, nil
}

// list all resources, redis or db, cache result
func ListAllResource[T any](ctx context.Context, orders ...string) ([]*T, error) {

	// first try redis cache
	results, err := utils.RetrieveRedisList[T]()
	if err != nil {
		config.LogError(config.GetLogger(), "models", "ListAllResource", "RetrieveRedisList", utils.GetTypeName[T](), err)
		results = nil
	}
	if results != nil {
		return results, nil
	}

	// fetch from db
	results, err = utils.FetchAllModels[T](ctx, orders...)
	if err != nil {
		return nil, storeError(ctx, utils.GetTypeName[T](), "ListAllResource", err)
	}
	// caching the result
	if err := utils.StoreRedisList[T](results); err != nil {
		config.LogError(config.GetLogger(), "models", "ListAllResource", "StoreRedisList", utils.GetTypeName[T](), err)
	}
	return results, nil
}

func invalidateList[T any]() {
	if err := utils.RemoveRedisList[T](); err != nil {
		config.LogError(config.GetLogger(), "models", "invalidateList", "RemoveRedisList", utils.GetTypeName[T](), err)
	}
}

// lockForUpdate takes a row lock on engines that support it, so a concurrent insert of a
// referencing row waits until the surrounding delete has finished.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == config.DriverMySQL {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// loadForChange reads the current row inside tx; a missing row means someone else deleted it.
func loadForChange[T any](tx *gorm.DB, entity string, id int) (*T, error) {
	var row T
	if err := lockForUpdate(tx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			publishDeleted(entity, id)
			return nil, &utils.StaleReferenceError{Entity: entity, Id: id}
		}
		return nil, err
	}
	return &row, nil
}

// deleteRecord removes one row after the delete guard passed, running cascade first.
// Guard, cascade and delete share one transaction.
func deleteRecord[T any](ctx context.Context, entity string, id int, rules []referenceRule, cascade func(tx *gorm.DB) error) (*T, error) {
	ctx, span := tracer.Start(ctx, "models.Delete"+entity, trace.WithAttributes(
		attribute.String("entity", entity),
		attribute.Int("id", id),
	))
	defer span.End()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storeError(ctx, entity, "Delete"+entity, tx.Error)
	}

	row, err := loadForChange[T](tx, entity, id)
	if err != nil {
		tx.Rollback()
		return nil, storeError(ctx, entity, "Delete"+entity, err)
	}
	if err := guardDelete(tx, entity, id, rules); err != nil {
		tx.Rollback()
		return nil, storeError(ctx, entity, "Delete"+entity, err)
	}
	if cascade != nil {
		if err := cascade(tx); err != nil {
			tx.Rollback()
			return nil, storeError(ctx, entity, "Delete"+entity, err)
		}
	}
	if err := tx.Delete(row).Error; err != nil {
		tx.Rollback()
		return nil, storeError(ctx, entity, "Delete"+entity, err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, storeError(ctx, entity, "Delete"+entity, err)
	}

	invalidateList[T]()
	publishDeleted(entity, id)
	return row, nil
}

// reconcileChildren applies the difference between original and working inside tx.
// guard, when set, may refuse the removal of an item before anything is written.
func reconcileChildren[T reconcile.Keyed](
	ctx context.Context,
	tx *gorm.DB,
	entity string,
	original []T,
	working []T,
	modified reconcile.ModifiedFunc[T],
	columns func(*T) map[string]interface{},
	attach func(*T),
	guard func(T) error,
) (*reconcile.Result, error) {
	plan, err := reconcile.Diff(original, working, modified)
	if err != nil {
		return nil, err
	}
	if plan.Empty() {
		return &reconcile.Result{}, nil
	}
	if guard != nil {
		for _, item := range plan.ToDelete {
			if err := guard(item); err != nil {
				return nil, err
			}
		}
	}
	result, err := reconcile.Apply[T](ctx, reconcile.NewGormStore[T](tx, columns), plan, attach)
	if err != nil {
		return nil, err
	}
	config.ReconcileOperations.WithLabelValues(entity, "insert").Add(float64(len(result.Inserted)))
	config.ReconcileOperations.WithLabelValues(entity, "update").Add(float64(len(result.Updated)))
	config.ReconcileOperations.WithLabelValues(entity, "delete").Add(float64(len(result.Deleted)))
	config.ReconcileOperations.WithLabelValues(entity, "skip").Add(float64(len(result.Skipped)))
	return result, nil
}
