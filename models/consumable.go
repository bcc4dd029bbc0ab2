package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/reconcile"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Consumable struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	Name                  string          `gorm:"size:255;not null" json:"name"`
	Description           string          `gorm:"size:255" json:"description"`
	ReceiptDate           *time.Time      `json:"receipt_date"`
	Photo                 []byte          `gorm:"type:longblob" json:"photo,omitempty"`
	Quantity              *int            `json:"quantity"`
	ResponsibleUserId     *int            `gorm:"index" json:"responsible_user_id"`
	ResponsibleUser       *User           `gorm:"foreignKey:ResponsibleUserId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TempResponsibleUserId *int            `gorm:"index" json:"temp_responsible_user_id"`
	TempResponsibleUser   *User           `gorm:"foreignKey:TempResponsibleUserId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TypeConsumableId      *int            `gorm:"index" json:"type_consumable_id"`
	TypeConsumable        *TypeConsumable `gorm:"foreignKey:TypeConsumableId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type ConsumableCharacteristicValue struct {
	ID               int                       `gorm:"primary_key" json:"id"`
	ConsumableId     int                       `gorm:"index;not null" json:"consumable_id"`
	Consumable       *Consumable               `gorm:"foreignKey:ConsumableId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CharacteristicId int                       `gorm:"index;not null" json:"characteristic_id"`
	Characteristic   *ConsumableCharacteristic `gorm:"foreignKey:CharacteristicId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Value            string                    `gorm:"size:255;not null" json:"value"`
}

func (c Consumable) GetId() int { return c.ID }

func (c Consumable) option() Option { return Option{Id: c.ID, Name: c.Name} }

func (v ConsumableCharacteristicValue) GetId() int { return v.ID }

// Receiver is who signs the acceptance act: the temporary responsible user when set.
func (c Consumable) Receiver() *int {
	if c.TempResponsibleUserId != nil {
		return c.TempResponsibleUserId
	}
	return c.ResponsibleUserId
}

// NewCharacteristicValue is one row of the characteristics grid. A nil Value means the
// consumable has no value for the characteristic, so no row is kept.
type NewCharacteristicValue struct {
	Id               int     `json:"id"`
	CharacteristicId int     `json:"characteristic_id"`
	Value            *string `json:"value"`
}

type NewConsumable struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ReceiptDate *time.Time `json:"receipt_date"`
	// Photo nil keeps the current photo, an empty photo removes it.
	Photo    []byte `json:"photo"`
	Quantity *int   `json:"quantity"`

	// selection values, NoneId for none
	ResponsibleUserId     *int `json:"responsible_user_id"`
	TempResponsibleUserId *int `json:"temp_responsible_user_id"`
	TypeConsumableId      *int `json:"type_consumable_id"`

	Values         []NewCharacteristicValue `json:"values"`
	HistoryComment string                   `json:"history_comment"`
}

type ConsumableSelection struct {
	Name                  string     `json:"name"`
	Description           string     `json:"description"`
	ReceiptDate           *time.Time `json:"receipt_date"`
	HasPhoto              bool       `json:"has_photo"`
	Quantity              *int       `json:"quantity"`
	ResponsibleUserId     int        `json:"responsible_user_id"`
	TempResponsibleUserId int        `json:"temp_responsible_user_id"`
	TypeConsumableId      int        `json:"type_consumable_id"`
}

type ConsumableLookups struct {
	Users            []Option `json:"users"`
	TypesConsumables []Option `json:"types_consumables"`
}

// ConsumableEdit is an open edit of one consumable. ResponsibleUserId and TypeConsumableId
// hold the values at session start.
type ConsumableEdit struct {
	Id                int                             `json:"id"`
	Selection         ConsumableSelection             `json:"selection"`
	ResponsibleUserId *int                            `json:"responsible_user_id"`
	TypeConsumableId  *int                            `json:"type_consumable_id"`
	Original          []ConsumableCharacteristicValue `json:"original"`
	Characteristics   []ConsumableCharacteristic      `json:"characteristics"`
	Lookups           ConsumableLookups               `json:"lookups"`
}

type ConsumableResult struct {
	Consumable *Consumable                     `json:"consumable"`
	Values     []ConsumableCharacteristicValue `json:"values"`
	Changes    *reconcile.Result               `json:"changes"`
}

func (c Consumable) Selection() ConsumableSelection {
	return ConsumableSelection{
		Name:                  c.Name,
		Description:           c.Description,
		ReceiptDate:           c.ReceiptDate,
		HasPhoto:              len(c.Photo) > 0,
		Quantity:              c.Quantity,
		ResponsibleUserId:     OptionId(c.ResponsibleUserId),
		TempResponsibleUserId: OptionId(c.TempResponsibleUserId),
		TypeConsumableId:      OptionId(c.TypeConsumableId),
	}
}

func characteristicValueModified(before ConsumableCharacteristicValue, after ConsumableCharacteristicValue) bool {
	return before.Value != after.Value || before.CharacteristicId != after.CharacteristicId
}

func (input *NewConsumable) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.HistoryComment = strings.TrimSpace(input.HistoryComment)
	if err := utils.CheckFields(
		utils.FieldRule{Field: "name", Value: input.Name, MaxLen: 255, Required: true},
		utils.FieldRule{Field: "description", Value: input.Description, MaxLen: 255},
		utils.FieldRule{Field: "history_comment", Value: input.HistoryComment, MaxLen: 255},
	); err != nil {
		return err
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		return utils.NewValidationError("quantity", "must not be negative")
	}

	input.ResponsibleUserId = OptionRef(input.ResponsibleUserId)
	input.TempResponsibleUserId = OptionRef(input.TempResponsibleUserId)
	input.TypeConsumableId = OptionRef(input.TypeConsumableId)

	for _, v := range input.Values {
		if v.Value == nil {
			continue
		}
		if err := utils.CheckFields(utils.FieldRule{Field: "values.value", Value: *v.Value, MaxLen: 255}); err != nil {
			return err
		}
	}

	if len(input.Photo) > 0 {
		photo, err := utils.NormalizePhoto(input.Photo)
		if err != nil {
			return utils.NewValidationError("photo", err.Error())
		}
		input.Photo = photo
	}
	return nil
}

// workingValues turns the grid into the working set. Rows without a value are left out.
// After a type change every old value is gone, so all remaining rows become new ones.
func (input *NewConsumable) workingValues(typeChanged bool) []ConsumableCharacteristicValue {
	working := make([]ConsumableCharacteristicValue, 0, len(input.Values))
	for _, v := range input.Values {
		if v.Value == nil {
			continue
		}
		id := v.Id
		if typeChanged {
			id = reconcile.Unsaved
		}
		working = append(working, ConsumableCharacteristicValue{
			ID:               id,
			CharacteristicId: v.CharacteristicId,
			Value:            *v.Value,
		})
	}
	return working
}

func (input *NewConsumable) columns() map[string]interface{} {
	values := map[string]interface{}{
		"name":                     input.Name,
		"description":              input.Description,
		"receipt_date":             input.ReceiptDate,
		"quantity":                 input.Quantity,
		"responsible_user_id":      input.ResponsibleUserId,
		"temp_responsible_user_id": input.TempResponsibleUserId,
		"type_consumable_id":       input.TypeConsumableId,
	}
	if input.Photo != nil {
		if len(input.Photo) == 0 {
			values["photo"] = nil
		} else {
			values["photo"] = input.Photo
		}
	}
	return values
}

func (input *NewConsumable) apply(c *Consumable) {
	c.Name = input.Name
	c.Description = input.Description
	c.ReceiptDate = input.ReceiptDate
	c.Quantity = input.Quantity
	c.ResponsibleUserId = input.ResponsibleUserId
	c.TempResponsibleUserId = input.TempResponsibleUserId
	c.TypeConsumableId = input.TypeConsumableId
	if input.Photo != nil {
		if len(input.Photo) == 0 {
			c.Photo = nil
		} else {
			c.Photo = input.Photo
		}
	}
}

// checkCharacteristics makes sure every value belongs to a characteristic of the consumable's type.
func checkCharacteristics(tx *gorm.DB, typeConsumableId *int, working []ConsumableCharacteristicValue) error {
	if len(working) == 0 {
		return nil
	}
	if typeConsumableId == nil {
		return utils.NewValidationError("values", "a consumable without a type cannot have characteristic values")
	}
	ids := make([]int, 0, len(working))
	seen := make(map[int]bool, len(working))
	for _, v := range working {
		if seen[v.CharacteristicId] {
			return utils.NewValidationError("values", "a characteristic can only have one value")
		}
		seen[v.CharacteristicId] = true
		ids = append(ids, v.CharacteristicId)
	}
	count, err := utils.CountWhere[ConsumableCharacteristic](tx, "id IN ? AND type_consumable_id = ?", ids, *typeConsumableId)
	if err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return utils.NewValidationError("values", "the characteristic does not belong to the consumable type")
	}
	return nil
}

func OpenConsumableEdit(ctx context.Context, id int) (*ConsumableEdit, error) {
	edit := &ConsumableEdit{Id: id}
	if id == 0 {
		edit.Selection = Consumable{}.Selection()
	} else {
		consumable, err := GetResource[Consumable](ctx, "consumable", id)
		if err != nil {
			return nil, err
		}
		edit.Selection = consumable.Selection()
		edit.ResponsibleUserId = consumable.ResponsibleUserId
		edit.TypeConsumableId = consumable.TypeConsumableId

		db := config.GetDB()
		edit.Original, err = utils.FetchByForeignKey[ConsumableCharacteristicValue](db.WithContext(ctx), "consumable_id", id, "id")
		if err != nil {
			return nil, storeError(ctx, "consumable characteristic value", "OpenConsumableEdit", err)
		}
		if consumable.TypeConsumableId != nil {
			edit.Characteristics, err = GetCharacteristics(ctx, *consumable.TypeConsumableId)
			if err != nil {
				return nil, err
			}
		}
	}

	var err error
	if edit.Lookups.Users, err = UserOptions(ctx); err != nil {
		return nil, err
	}
	if edit.Lookups.TypesConsumables, err = TypeConsumableOptions(ctx); err != nil {
		return nil, err
	}
	return edit, nil
}

// Commit saves the consumable, its characteristic values and the responsible history in one
// transaction. Switching the type drops every value saved for the previous type.
func (edit *ConsumableEdit) Commit(ctx context.Context, input *NewConsumable) (*ConsumableResult, error) {
	ctx, span := tracer.Start(ctx, "models.CommitConsumable")
	defer span.End()

	if err := input.validate(); err != nil {
		return nil, err
	}

	typeChanged := edit.Id != 0 && !utils.EqualPtr(edit.TypeConsumableId, input.TypeConsumableId)
	working := input.workingValues(typeChanged)
	original := edit.Original

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storeError(ctx, "consumable", "CommitConsumable", tx.Error)
	}

	if err := utils.MassValidateResourceIds(tx, []utils.ValidationRule{
		{Model: &User{}, Entity: "user", Id: input.ResponsibleUserId},
		{Model: &User{}, Entity: "user", Id: input.TempResponsibleUserId},
		{Model: &TypeConsumable{}, Entity: "consumable type", Id: input.TypeConsumableId},
	}); err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "consumable", "CommitConsumable", err)
	}
	if err := checkCharacteristics(tx, input.TypeConsumableId, working); err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "consumable", "CommitConsumable", err)
	}

	var consumable *Consumable
	if edit.Id == 0 {
		consumable = &Consumable{}
		input.apply(consumable)
		if err := tx.Omit(clause.Associations).Create(consumable).Error; err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "consumable", "CommitConsumable", err)
		}
	} else {
		var err error
		consumable, err = loadForChange[Consumable](tx, "consumable", edit.Id)
		if err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "consumable", "CommitConsumable", err)
		}
		if typeChanged {
			if err := tx.Where("consumable_id = ?", consumable.ID).Delete(&ConsumableCharacteristicValue{}).Error; err != nil {
				tx.Rollback()
				return nil, storeError(ctx, "consumable", "CommitConsumable", err)
			}
			original = nil
		}
		if err := tx.Model(consumable).Updates(input.columns()).Error; err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "consumable", "CommitConsumable", err)
		}
		if _, err := recordConsumableHistory(tx, consumable.ID, edit.ResponsibleUserId, input.ResponsibleUserId, input.HistoryComment, time.Now()); err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "consumable", "CommitConsumable", err)
		}
		input.apply(consumable)
	}

	changes, err := reconcileChildren(ctx, tx, "consumable characteristic value", original, working, characteristicValueModified,
		func(v *ConsumableCharacteristicValue) map[string]interface{} {
			return map[string]interface{}{"characteristic_id": v.CharacteristicId, "value": v.Value}
		},
		func(v *ConsumableCharacteristicValue) {
			v.ConsumableId = consumable.ID
		},
		nil)
	if err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "consumable", "CommitConsumable", err)
	}

	saved, err := utils.FetchByForeignKey[ConsumableCharacteristicValue](tx, "consumable_id", consumable.ID, "id")
	if err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "consumable", "CommitConsumable", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storeError(ctx, "consumable", "CommitConsumable", err)
	}

	edit.Id = consumable.ID
	edit.Selection = consumable.Selection()
	edit.ResponsibleUserId = consumable.ResponsibleUserId
	edit.TypeConsumableId = consumable.TypeConsumableId
	edit.Original = saved
	invalidateList[Consumable]()
	publishSaved("consumable", consumable.ID)
	return &ConsumableResult{Consumable: consumable, Values: saved, Changes: changes}, nil
}

func CreateConsumable(ctx context.Context, input *NewConsumable) (*ConsumableResult, error) {
	edit := &ConsumableEdit{}
	return edit.Commit(ctx, input)
}

// UpdateConsumable saves without an open session against the values stored now.
func UpdateConsumable(ctx context.Context, id int, input *NewConsumable) (*ConsumableResult, error) {
	edit, err := OpenConsumableEdit(ctx, id)
	if err != nil {
		if utils.IsStale(err) {
			publishDeleted("consumable", id)
		}
		return nil, err
	}
	return edit.Commit(ctx, input)
}

// DeleteConsumable removes the consumable with its values and history unless equipment still uses it.
func DeleteConsumable(ctx context.Context, id int) (*Consumable, error) {
	return deleteRecord[Consumable](ctx, "consumable", id, consumableDeleteRules, func(tx *gorm.DB) error {
		if err := tx.Where("consumable_id = ?", id).Delete(&ConsumableCharacteristicValue{}).Error; err != nil {
			return err
		}
		return tx.Where("consumable_id = ?", id).Delete(&ConsumableResponsibleHistory{}).Error
	})
}

func GetConsumable(ctx context.Context, id int) (*Consumable, error) {
	return GetResource[Consumable](ctx, "consumable", id)
}

// GetConsumables lists consumables without photos.
func GetConsumables(ctx context.Context, search *string, typeConsumableId *int) ([]*Consumable, error) {
	db := config.GetDB()
	var results []*Consumable

	dbCtx := db.WithContext(ctx).Omit("photo")
	if search != nil && strings.TrimSpace(*search) != "" {
		like := "%" + strings.TrimSpace(*search) + "%"
		dbCtx = dbCtx.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if id := OptionRef(typeConsumableId); id != nil {
		dbCtx = dbCtx.Where("type_consumable_id = ?", *id)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, storeError(ctx, "consumable", "GetConsumables", err)
	}
	return results, nil
}

func ConsumableOptions(ctx context.Context) ([]Option, error) {
	db := config.GetDB()
	var rows []*Consumable
	if err := db.WithContext(ctx).Select("id", "name").Order("name").Find(&rows).Error; err != nil {
		return nil, storeError(ctx, "consumable", "ConsumableOptions", err)
	}
	return namedOptions(rows), nil
}
