package utils

import (
	"context"
	"reflect"

	"github.com/mmdatafocus/inventory_backend/config"
	"gorm.io/gorm"
)

// check if id exists, return StaleReferenceError naming entity
func ValidateResourceId[T any](ctx context.Context, entity string, id int) error {

	count, err := ResourceCountWhere[T](ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return &StaleReferenceError{Entity: entity, Id: id}
	}

	return nil
}

type ValidationRule struct {
	Model  interface{}
	Entity string
	Id     *int
}

// MassValidateResourceIds checks every non nil id of the rules exists, inside tx.
// The first missing one is reported as a StaleReferenceError.
func MassValidateResourceIds(tx *gorm.DB, rules []ValidationRule) error {
	for _, rule := range rules {
		if rule.Id == nil {
			continue
		}
		var count int64
		err := tx.Model(rule.Model).Where("id = ?", *rule.Id).Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return &StaleReferenceError{Entity: rule.Entity, Id: *rule.Id}
		}
	}

	return nil
}

// check if ALL id exists, return RecordNotFound Error
func ValidateResourcesId[M any](tx *gorm.DB, ids []int) error {
	unqIds := UniqueSlice(ids)
	if len(unqIds) == 0 {
		return nil
	}

	count, err := CountWhere[M](tx, "id IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if exceptId == nil || reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return &UniqueError{Field: column}
	}
	return nil
}

// count records, using WHERE $condition
func ResourceCountWhere[T any](ctx context.Context, condition string, value ...interface{}) (int64, error) {
	db := config.GetDB()
	return CountWhere[T](db.WithContext(ctx), condition, value...)
}

// CountWhere counts on the given handle, so it can run inside an open transaction.
func CountWhere[T any](db *gorm.DB, condition string, value ...interface{}) (int64, error) {
	var model T
	var count int64
	if err := db.Model(&model).Where(condition, value...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
