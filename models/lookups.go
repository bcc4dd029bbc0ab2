package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
)

// Direction, Status, EquipmentModel, TypeEquipment and SoftwareDeveloper are plain named
// lookups. They share one implementation; each only differs in what may reference it.

type Direction struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Status struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type EquipmentModel struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type TypeEquipment struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type SoftwareDeveloper struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r Direction) GetId() int { return r.ID }
func (r Direction) getName() string { return r.Name }
func (r *Direction) setName(name string) { r.Name = name }
func (r Direction) entityName() string { return "direction" }
func (r Direction) deleteRules() []referenceRule { return directionDeleteRules }

func (r Status) GetId() int { return r.ID }
func (r Status) getName() string { return r.Name }
func (r *Status) setName(name string) { r.Name = name }
func (r Status) entityName() string { return "status" }
func (r Status) deleteRules() []referenceRule { return statusDeleteRules }

func (r EquipmentModel) GetId() int { return r.ID }
func (r EquipmentModel) getName() string { return r.Name }
func (r *EquipmentModel) setName(name string) { r.Name = name }
func (r EquipmentModel) entityName() string { return "equipment model" }
func (r EquipmentModel) deleteRules() []referenceRule { return equipmentModelDeleteRules }

func (r TypeEquipment) GetId() int { return r.ID }
func (r TypeEquipment) getName() string { return r.Name }
func (r *TypeEquipment) setName(name string) { r.Name = name }
func (r TypeEquipment) entityName() string { return "equipment type" }
func (r TypeEquipment) deleteRules() []referenceRule { return typeEquipmentDeleteRules }

func (r SoftwareDeveloper) GetId() int { return r.ID }
func (r SoftwareDeveloper) getName() string { return r.Name }
func (r *SoftwareDeveloper) setName(name string) { r.Name = name }
func (r SoftwareDeveloper) entityName() string { return "software developer" }
func (r SoftwareDeveloper) deleteRules() []referenceRule { return softwareDeveloperDeleteRules }

// LookupRow is satisfied by pointers to the named lookup models.
type LookupRow[T any] interface {
	*T
	GetId() int
	getName() string
	setName(string)
	entityName() string
	deleteRules() []referenceRule
}

type NewLookup struct {
	Name string `json:"name" binding:"required"`
}

func (input *NewLookup) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	return utils.CheckFields(utils.FieldRule{Field: "name", Value: input.Name, MaxLen: 255, Required: true})
}

func CreateLookup[T any, PT LookupRow[T]](ctx context.Context, input *NewLookup) (*T, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var row T
	PT(&row).setName(input.Name)

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, storeError(ctx, PT(&row).entityName(), "CreateLookup", err)
	}
	invalidateList[T]()
	publishSaved(PT(&row).entityName(), PT(&row).GetId())
	return &row, nil
}

func UpdateLookup[T any, PT LookupRow[T]](ctx context.Context, id int, input *NewLookup) (*T, error) {
	var zero T
	entity := PT(&zero).entityName()

	if err := input.validate(); err != nil {
		return nil, err
	}

	row, err := GetResource[T](ctx, entity, id)
	if err != nil {
		if utils.IsStale(err) {
			publishDeleted(entity, id)
		}
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(row).Updates(map[string]interface{}{
		"name": input.Name,
	}).Error
	if err != nil {
		return nil, storeError(ctx, entity, "UpdateLookup", err)
	}
	PT(row).setName(input.Name)
	invalidateList[T]()
	publishSaved(entity, id)
	return row, nil
}

func DeleteLookup[T any, PT LookupRow[T]](ctx context.Context, id int) (*T, error) {
	var zero T
	return deleteRecord[T](ctx, PT(&zero).entityName(), id, PT(&zero).deleteRules(), nil)
}

func GetLookup[T any, PT LookupRow[T]](ctx context.Context, id int) (*T, error) {
	var zero T
	return GetResource[T](ctx, PT(&zero).entityName(), id)
}

// ListLookup returns the cached list, optionally narrowed to names containing name.
func ListLookup[T any, PT LookupRow[T]](ctx context.Context, name *string) ([]*T, error) {
	all, err := ListAllResource[T](ctx, "name")
	if err != nil {
		return nil, err
	}
	if name == nil || strings.TrimSpace(*name) == "" {
		return all, nil
	}
	needle := strings.ToLower(strings.TrimSpace(*name))
	results := make([]*T, 0, len(all))
	for _, row := range all {
		if strings.Contains(strings.ToLower(PT(row).getName()), needle) {
			results = append(results, row)
		}
	}
	return results, nil
}

// LookupOptions lists the lookup for a selection control, "none" first.
func LookupOptions[T any, PT LookupRow[T]](ctx context.Context) ([]Option, error) {
	all, err := ListAllResource[T](ctx, "name")
	if err != nil {
		return nil, err
	}
	options := make([]Option, 0, len(all))
	for _, row := range all {
		options = append(options, Option{Id: PT(row).GetId(), Name: PT(row).getName()})
	}
	return withNone(options), nil
}
