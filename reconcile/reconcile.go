// Package reconcile turns the difference between a child collection as loaded
// (original) and as edited (working) into inserts, updates and deletes.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/sirupsen/logrus"
)

// Unsaved is the key of a child item that has not been written to the store yet.
const Unsaved = 0

var (
	ErrDuplicateKey = errors.New("working set contains the same key twice")
	ErrUnknownKey   = errors.New("working set key is not part of the original set")
)

type Keyed interface {
	GetId() int
}

// ModifiedFunc reports whether after differs from before in any field that counts for an update.
type ModifiedFunc[T Keyed] func(before T, after T) bool

type Plan[T Keyed] struct {
	ToInsert []T
	ToUpdate []T
	ToDelete []T
}

func (p *Plan[T]) Empty() bool {
	return len(p.ToInsert) == 0 && len(p.ToUpdate) == 0 && len(p.ToDelete) == 0
}

// Diff matches items by key only. Items present in both sets and not modified are left out.
func Diff[T Keyed](original []T, working []T, modified ModifiedFunc[T]) (*Plan[T], error) {
	before := make(map[int]T, len(original))
	for _, item := range original {
		before[item.GetId()] = item
	}

	plan := &Plan[T]{}
	seen := make(map[int]bool, len(working))
	for _, item := range working {
		key := item.GetId()
		if key == Unsaved {
			plan.ToInsert = append(plan.ToInsert, item)
			continue
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateKey, key)
		}
		seen[key] = true

		old, ok := before[key]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownKey, key)
		}
		if modified != nil && modified(old, item) {
			plan.ToUpdate = append(plan.ToUpdate, item)
		}
	}

	for _, item := range original {
		if !seen[item.GetId()] {
			plan.ToDelete = append(plan.ToDelete, item)
		}
	}
	return plan, nil
}

// Store is the write side the plan is applied through.
type Store[T Keyed] interface {
	// Insert writes item and stores the assigned key back into it.
	Insert(ctx context.Context, item *T) error
	// Update reports false when no row with the item's key exists any more.
	Update(ctx context.Context, item *T) (bool, error)
	Delete(ctx context.Context, item *T) error
}

type Result struct {
	Inserted []int `json:"inserted"`
	Updated  []int `json:"updated"`
	Deleted  []int `json:"deleted"`
	Skipped  []int `json:"skipped"`
}

// Apply runs deletes, then updates, then inserts. attach is called on every new item
// before insert so the parent key can be set. Inserted keys are written back into plan.ToInsert.
// A lost update (row gone) is skipped with a warning; any store error stops the apply and
// is returned so the caller can roll the surrounding transaction back.
func Apply[T Keyed](ctx context.Context, store Store[T], plan *Plan[T], attach func(*T)) (*Result, error) {
	result := &Result{}

	for i := range plan.ToDelete {
		item := &plan.ToDelete[i]
		if err := store.Delete(ctx, item); err != nil {
			return nil, err
		}
		result.Deleted = append(result.Deleted, (*item).GetId())
	}

	for i := range plan.ToUpdate {
		item := &plan.ToUpdate[i]
		found, err := store.Update(ctx, item)
		if err != nil {
			return nil, err
		}
		if !found {
			config.GetLogger().WithFields(logrus.Fields{
				"module":   "reconcile",
				"funcName": "Apply",
				"key":      (*item).GetId(),
			}).Warn("update target no longer exists; skipped")
			result.Skipped = append(result.Skipped, (*item).GetId())
			continue
		}
		result.Updated = append(result.Updated, (*item).GetId())
	}

	for i := range plan.ToInsert {
		item := &plan.ToInsert[i]
		if attach != nil {
			attach(item)
		}
		if err := store.Insert(ctx, item); err != nil {
			return nil, err
		}
		result.Inserted = append(result.Inserted, (*item).GetId())
	}

	return result, nil
}
