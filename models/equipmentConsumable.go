package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/reconcile"
	"github.com/mmdatafocus/inventory_backend/utils"
)

// EquipmentConsumable links a consumable to the equipment it is used with.
type EquipmentConsumable struct {
	ID           int         `gorm:"primary_key" json:"id"`
	EquipmentId  int         `gorm:"not null;uniqueIndex:idx_equipment_consumable" json:"equipment_id"`
	Equipment    *Equipment  `gorm:"foreignKey:EquipmentId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ConsumableId int         `gorm:"not null;uniqueIndex:idx_equipment_consumable;index" json:"consumable_id"`
	Consumable   *Consumable `gorm:"foreignKey:ConsumableId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (l EquipmentConsumable) GetId() int { return l.ID }

// EquipmentConsumablesEdit is an open edit of the consumables linked to one piece of equipment.
type EquipmentConsumablesEdit struct {
	EquipmentId int                   `json:"equipment_id"`
	Original    []EquipmentConsumable `json:"original"`
	Consumables []Option              `json:"consumables"`
}

func OpenEquipmentConsumablesEdit(ctx context.Context, equipmentId int) (*EquipmentConsumablesEdit, error) {
	if _, err := GetResource[Equipment](ctx, "equipment", equipmentId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	original, err := utils.FetchByForeignKey[EquipmentConsumable](db.WithContext(ctx), "equipment_id", equipmentId, "id")
	if err != nil {
		return nil, storeError(ctx, "equipment consumable", "OpenEquipmentConsumablesEdit", err)
	}
	consumables, err := ConsumableOptions(ctx)
	if err != nil {
		return nil, err
	}
	return &EquipmentConsumablesEdit{
		EquipmentId: equipmentId,
		Original:    original,
		Consumables: consumables,
	}, nil
}

// Commit links and unlinks consumables so the equipment ends up with exactly working.
// Links are never modified in place: a saved link pointing at another consumable is
// replaced by a new link.
func (edit *EquipmentConsumablesEdit) Commit(ctx context.Context, working []EquipmentConsumable) (*reconcile.Result, error) {
	ctx, span := tracer.Start(ctx, "models.CommitEquipmentConsumables")
	defer span.End()

	linked := make(map[int]int, len(edit.Original))
	for _, link := range edit.Original {
		linked[link.ID] = link.ConsumableId
	}
	working = append([]EquipmentConsumable(nil), working...)
	for i := range working {
		link := &working[i]
		if consumableId, ok := linked[link.ID]; ok && link.ID != reconcile.Unsaved && consumableId != link.ConsumableId {
			link.ID = reconcile.Unsaved
		}
	}

	seen := make(map[int]bool, len(working))
	consumableIds := make([]int, 0, len(working))
	for _, link := range working {
		if link.ConsumableId <= 0 {
			return nil, utils.NewValidationError("consumable_id", "a consumable is required")
		}
		if seen[link.ConsumableId] {
			return nil, utils.NewValidationError("consumable_id", "the consumable is already linked")
		}
		seen[link.ConsumableId] = true
		if link.ID == reconcile.Unsaved {
			consumableIds = append(consumableIds, link.ConsumableId)
		}
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storeError(ctx, "equipment consumable", "CommitEquipmentConsumables", tx.Error)
	}

	if _, err := loadForChange[Equipment](tx, "equipment", edit.EquipmentId); err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "equipment", "CommitEquipmentConsumables", err)
	}
	if err := utils.ValidateResourcesId[Consumable](tx, consumableIds); err != nil {
		tx.Rollback()
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.NewValidationError("consumable_id", "the consumable no longer exists")
		}
		return nil, storeError(ctx, "equipment consumable", "CommitEquipmentConsumables", err)
	}

	result, err := reconcileChildren(ctx, tx, "equipment consumable", edit.Original, working, nil,
		func(link *EquipmentConsumable) map[string]interface{} {
			return map[string]interface{}{"consumable_id": link.ConsumableId}
		},
		func(link *EquipmentConsumable) {
			link.EquipmentId = edit.EquipmentId
		},
		nil)
	if err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "equipment consumable", "CommitEquipmentConsumables", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storeError(ctx, "equipment consumable", "CommitEquipmentConsumables", err)
	}
	publishSaved("equipment", edit.EquipmentId)
	return result, nil
}

func GetEquipmentConsumables(ctx context.Context, equipmentId int) ([]*Consumable, error) {
	db := config.GetDB()
	var results []*Consumable
	err := db.WithContext(ctx).Omit("photo").
		Where("id IN (?)", db.Model(&EquipmentConsumable{}).Select("consumable_id").Where("equipment_id = ?", equipmentId)).
		Order("name").Find(&results).Error
	if err != nil {
		return nil, storeError(ctx, "consumable", "GetEquipmentConsumables", err)
	}
	return results, nil
}
