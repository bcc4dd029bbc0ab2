package reconcile

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore applies a plan inside an open gorm transaction. Rows are addressed by their id column.
type GormStore[T Keyed] struct {
	tx      *gorm.DB
	columns func(*T) map[string]interface{}
}

// NewGormStore uses columns to decide which fields an update writes.
func NewGormStore[T Keyed](tx *gorm.DB, columns func(*T) map[string]interface{}) *GormStore[T] {
	return &GormStore[T]{tx: tx, columns: columns}
}

func (s *GormStore[T]) Insert(ctx context.Context, item *T) error {
	return s.tx.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (s *GormStore[T]) Update(ctx context.Context, item *T) (bool, error) {
	var model T
	var count int64
	key := (*item).GetId()
	if err := s.tx.WithContext(ctx).Model(&model).Where("id = ?", key).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	err := s.tx.WithContext(ctx).Model(&model).Where("id = ?", key).Updates(s.columns(item)).Error
	return err == nil, err
}

func (s *GormStore[T]) Delete(ctx context.Context, item *T) error {
	var model T
	return s.tx.WithContext(ctx).Where("id = ?", (*item).GetId()).Delete(&model).Error
}
