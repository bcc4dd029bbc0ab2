package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/reconcile"
	"github.com/mmdatafocus/inventory_backend/utils"
)

type TypeConsumable struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ConsumableCharacteristic is a property every consumable of a type can have a value for.
type ConsumableCharacteristic struct {
	ID               int             `gorm:"primary_key" json:"id"`
	TypeConsumableId int             `gorm:"index;not null" json:"type_consumable_id"`
	TypeConsumable   *TypeConsumable `gorm:"foreignKey:TypeConsumableId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Name             string          `gorm:"size:255;not null" json:"name"`
}

func (t TypeConsumable) GetId() int { return t.ID }

func (t TypeConsumable) option() Option { return Option{Id: t.ID, Name: t.Name} }

func (c ConsumableCharacteristic) GetId() int { return c.ID }

type NewTypeConsumable struct {
	Name string `json:"name"`
	// Characteristics is the full working set; items with id 0 are new.
	Characteristics []ConsumableCharacteristic `json:"characteristics"`
}

type TypeConsumableEdit struct {
	Id       int                        `json:"id"`
	Name     string                     `json:"name"`
	Original []ConsumableCharacteristic `json:"original"`
}

type TypeConsumableResult struct {
	TypeConsumable  *TypeConsumable            `json:"type_consumable"`
	Characteristics []ConsumableCharacteristic `json:"characteristics"`
	Changes         *reconcile.Result          `json:"changes"`
}

func characteristicModified(before ConsumableCharacteristic, after ConsumableCharacteristic) bool {
	return before.Name != after.Name
}

func (input *NewTypeConsumable) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.CheckFields(utils.FieldRule{Field: "name", Value: input.Name, MaxLen: 255, Required: true}); err != nil {
		return err
	}

	// blank rows are dropped, which deletes them when they were saved before
	kept := make([]ConsumableCharacteristic, 0, len(input.Characteristics))
	for _, c := range input.Characteristics {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		if err := utils.CheckFields(utils.FieldRule{Field: "characteristics.name", Value: c.Name, MaxLen: 255}); err != nil {
			return err
		}
		kept = append(kept, c)
	}
	input.Characteristics = kept
	return nil
}

func OpenTypeConsumableEdit(ctx context.Context, id int) (*TypeConsumableEdit, error) {
	edit := &TypeConsumableEdit{Id: id}
	if id == 0 {
		return edit, nil
	}
	typeConsumable, err := GetResource[TypeConsumable](ctx, "consumable type", id)
	if err != nil {
		return nil, err
	}
	edit.Name = typeConsumable.Name

	db := config.GetDB()
	edit.Original, err = utils.FetchByForeignKey[ConsumableCharacteristic](db.WithContext(ctx), "type_consumable_id", id, "id")
	if err != nil {
		return nil, storeError(ctx, "consumable characteristic", "OpenTypeConsumableEdit", err)
	}
	return edit, nil
}

// Commit saves the type name and reconciles its characteristics. Removing a characteristic
// that consumables still have values for is refused.
func (edit *TypeConsumableEdit) Commit(ctx context.Context, input *NewTypeConsumable) (*TypeConsumableResult, error) {
	ctx, span := tracer.Start(ctx, "models.CommitTypeConsumable")
	defer span.End()

	if err := input.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storeError(ctx, "consumable type", "CommitTypeConsumable", tx.Error)
	}

	var typeConsumable *TypeConsumable
	if edit.Id == 0 {
		typeConsumable = &TypeConsumable{Name: input.Name}
		if err := tx.Create(typeConsumable).Error; err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "consumable type", "CommitTypeConsumable", err)
		}
	} else {
		var err error
		typeConsumable, err = loadForChange[TypeConsumable](tx, "consumable type", edit.Id)
		if err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "consumable type", "CommitTypeConsumable", err)
		}
		if err := tx.Model(typeConsumable).Update("name", input.Name).Error; err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "consumable type", "CommitTypeConsumable", err)
		}
		typeConsumable.Name = input.Name
	}

	changes, err := reconcileChildren(ctx, tx, "consumable characteristic", edit.Original, input.Characteristics, characteristicModified,
		func(c *ConsumableCharacteristic) map[string]interface{} {
			return map[string]interface{}{"name": c.Name}
		},
		func(c *ConsumableCharacteristic) {
			c.TypeConsumableId = typeConsumable.ID
		},
		func(c ConsumableCharacteristic) error {
			return guardDelete(tx, "consumable characteristic", c.ID, characteristicDeleteRules)
		})
	if err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "consumable characteristic", "CommitTypeConsumable", err)
	}

	saved, err := utils.FetchByForeignKey[ConsumableCharacteristic](tx, "type_consumable_id", typeConsumable.ID, "id")
	if err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "consumable characteristic", "CommitTypeConsumable", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storeError(ctx, "consumable type", "CommitTypeConsumable", err)
	}

	edit.Id = typeConsumable.ID
	edit.Name = typeConsumable.Name
	edit.Original = saved
	invalidateList[TypeConsumable]()
	publishSaved("consumable type", typeConsumable.ID)
	return &TypeConsumableResult{TypeConsumable: typeConsumable, Characteristics: saved, Changes: changes}, nil
}

// DeleteTypeConsumable is refused while the type still has characteristics or consumables.
func DeleteTypeConsumable(ctx context.Context, id int) (*TypeConsumable, error) {
	return deleteRecord[TypeConsumable](ctx, "consumable type", id, typeConsumableDeleteRules, nil)
}

func GetTypeConsumable(ctx context.Context, id int) (*TypeConsumable, error) {
	return GetResource[TypeConsumable](ctx, "consumable type", id)
}

func GetTypesConsumables(ctx context.Context, search *string) ([]*TypeConsumable, error) {
	all, err := ListAllResource[TypeConsumable](ctx, "name")
	if err != nil {
		return nil, err
	}
	if search == nil || strings.TrimSpace(*search) == "" {
		return all, nil
	}
	needle := strings.ToLower(strings.TrimSpace(*search))
	results := make([]*TypeConsumable, 0, len(all))
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			results = append(results, t)
		}
	}
	return results, nil
}

func TypeConsumableOptions(ctx context.Context) ([]Option, error) {
	all, err := ListAllResource[TypeConsumable](ctx, "name")
	if err != nil {
		return nil, err
	}
	return namedOptions(all), nil
}

// GetCharacteristics lists the characteristics of a consumable type in creation order.
func GetCharacteristics(ctx context.Context, typeConsumableId int) ([]ConsumableCharacteristic, error) {
	db := config.GetDB()
	results, err := utils.FetchByForeignKey[ConsumableCharacteristic](db.WithContext(ctx), "type_consumable_id", typeConsumableId, "id")
	if err != nil {
		return nil, storeError(ctx, "consumable characteristic", "GetCharacteristics", err)
	}
	return results, nil
}
