package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Equipment struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	Name                  string          `gorm:"size:255;not null" json:"name"`
	InventoryNumber       string          `gorm:"size:50;not null;index" json:"inventory_number"`
	Photo                 []byte          `gorm:"type:longblob" json:"photo,omitempty"`
	Cost                  decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"cost"`
	Comment               string          `gorm:"type:text" json:"comment"`
	AudienceId            *int            `gorm:"index" json:"audience_id"`
	Audience              *Audience       `gorm:"foreignKey:AudienceId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ResponsibleUserId     *int            `gorm:"index" json:"responsible_user_id"`
	ResponsibleUser       *User           `gorm:"foreignKey:ResponsibleUserId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TempResponsibleUserId *int            `gorm:"index" json:"temp_responsible_user_id"`
	TempResponsibleUser   *User           `gorm:"foreignKey:TempResponsibleUserId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	DirectionId           *int            `gorm:"index" json:"direction_id"`
	Direction             *Direction      `gorm:"foreignKey:DirectionId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	StatusId              *int            `gorm:"index" json:"status_id"`
	Status                *Status         `gorm:"foreignKey:StatusId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ModelId               *int            `gorm:"index" json:"model_id"`
	EquipmentModel        *EquipmentModel `gorm:"foreignKey:ModelId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TypeEquipmentId       *int            `gorm:"index" json:"type_equipment_id"`
	TypeEquipment         *TypeEquipment  `gorm:"foreignKey:TypeEquipmentId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// equipmentOwners are the fields whose changes end up in the equipment history.
type equipmentOwners struct {
	AudienceId            *int `json:"audience_id"`
	ResponsibleUserId     *int `json:"responsible_user_id"`
	TempResponsibleUserId *int `json:"temp_responsible_user_id"`
}

type NewEquipment struct {
	Name            string `json:"name"`
	InventoryNumber string `json:"inventory_number"`
	// Photo nil keeps the current photo, an empty photo removes it.
	Photo   []byte          `json:"photo"`
	Cost    decimal.Decimal `json:"cost"`
	Comment string          `json:"comment"`

	// selection values, NoneId for none
	AudienceId            *int `json:"audience_id"`
	ResponsibleUserId     *int `json:"responsible_user_id"`
	TempResponsibleUserId *int `json:"temp_responsible_user_id"`
	DirectionId           *int `json:"direction_id"`
	StatusId              *int `json:"status_id"`
	ModelId               *int `json:"model_id"`
	TypeEquipmentId       *int `json:"type_equipment_id"`

	// HistoryComment is stored on the history rows written by this save.
	HistoryComment string `json:"history_comment"`
}

type EquipmentSelection struct {
	Name                  string          `json:"name"`
	InventoryNumber       string          `json:"inventory_number"`
	Cost                  decimal.Decimal `json:"cost"`
	Comment               string          `json:"comment"`
	HasPhoto              bool            `json:"has_photo"`
	AudienceId            int             `json:"audience_id"`
	ResponsibleUserId     int             `json:"responsible_user_id"`
	TempResponsibleUserId int             `json:"temp_responsible_user_id"`
	DirectionId           int             `json:"direction_id"`
	StatusId              int             `json:"status_id"`
	ModelId               int             `json:"model_id"`
	TypeEquipmentId       int             `json:"type_equipment_id"`
}

type EquipmentLookups struct {
	Audiences      []Option `json:"audiences"`
	Users          []Option `json:"users"`
	Directions     []Option `json:"directions"`
	Statuses       []Option `json:"statuses"`
	Models         []Option `json:"models"`
	TypesEquipment []Option `json:"types_equipment"`
}

// EquipmentEdit is an open edit of one piece of equipment. Owners is the state the
// history is compared against on commit.
type EquipmentEdit struct {
	Id        int                `json:"id"`
	Selection EquipmentSelection `json:"selection"`
	Owners    equipmentOwners    `json:"owners"`
	Lookups   EquipmentLookups   `json:"lookups"`
}

type EquipmentFilter struct {
	Search            *string `json:"search"`
	AudienceId        *int    `json:"audience_id"`
	StatusId          *int    `json:"status_id"`
	ResponsibleUserId *int    `json:"responsible_user_id"`
}

func (e Equipment) GetId() int { return e.ID }

func (e Equipment) option() Option {
	return Option{Id: e.ID, Name: utils.JoinNonEmpty(e.InventoryNumber, e.Name)}
}

func (e Equipment) owners() equipmentOwners {
	return equipmentOwners{
		AudienceId:            e.AudienceId,
		ResponsibleUserId:     e.ResponsibleUserId,
		TempResponsibleUserId: e.TempResponsibleUserId,
	}
}

func (e Equipment) Selection() EquipmentSelection {
	return EquipmentSelection{
		Name:                  e.Name,
		InventoryNumber:       e.InventoryNumber,
		Cost:                  e.Cost,
		Comment:               e.Comment,
		HasPhoto:              len(e.Photo) > 0,
		AudienceId:            OptionId(e.AudienceId),
		ResponsibleUserId:     OptionId(e.ResponsibleUserId),
		TempResponsibleUserId: OptionId(e.TempResponsibleUserId),
		DirectionId:           OptionId(e.DirectionId),
		StatusId:              OptionId(e.StatusId),
		ModelId:               OptionId(e.ModelId),
		TypeEquipmentId:       OptionId(e.TypeEquipmentId),
	}
}

// Receiver is who signs the acceptance act: the temporary responsible user when set.
func (e Equipment) Receiver() *int {
	if e.TempResponsibleUserId != nil {
		return e.TempResponsibleUserId
	}
	return e.ResponsibleUserId
}

func (input *NewEquipment) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	input.InventoryNumber = strings.TrimSpace(input.InventoryNumber)
	input.Comment = strings.TrimSpace(input.Comment)
	input.HistoryComment = strings.TrimSpace(input.HistoryComment)

	if err := utils.CheckFields(
		utils.FieldRule{Field: "name", Value: input.Name, MaxLen: 255, Required: true},
		utils.FieldRule{Field: "inventory_number", Value: input.InventoryNumber, MaxLen: 50, Required: true, Pattern: utils.PatternDigits, Message: "only digits are allowed"},
		utils.FieldRule{Field: "history_comment", Value: input.HistoryComment, MaxLen: 255},
	); err != nil {
		return err
	}
	if input.Cost.IsNegative() {
		return utils.NewValidationError("cost", "must not be negative")
	}

	input.AudienceId = OptionRef(input.AudienceId)
	input.ResponsibleUserId = OptionRef(input.ResponsibleUserId)
	input.TempResponsibleUserId = OptionRef(input.TempResponsibleUserId)
	input.DirectionId = OptionRef(input.DirectionId)
	input.StatusId = OptionRef(input.StatusId)
	input.ModelId = OptionRef(input.ModelId)
	input.TypeEquipmentId = OptionRef(input.TypeEquipmentId)

	if input.ResponsibleUserId == nil && input.TempResponsibleUserId == nil {
		return utils.NewValidationError("responsible_user_id", "a responsible or temporary responsible user is required")
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

func (input *NewEquipment) owners() equipmentOwners {
	return equipmentOwners{
		AudienceId:            input.AudienceId,
		ResponsibleUserId:     input.ResponsibleUserId,
		TempResponsibleUserId: input.TempResponsibleUserId,
	}
}

func (input *NewEquipment) referenceRules() []utils.ValidationRule {
	return []utils.ValidationRule{
		{Model: &Audience{}, Entity: "audience", Id: input.AudienceId},
		{Model: &User{}, Entity: "user", Id: input.ResponsibleUserId},
		{Model: &User{}, Entity: "user", Id: input.TempResponsibleUserId},
		{Model: &Direction{}, Entity: "direction", Id: input.DirectionId},
		{Model: &Status{}, Entity: "status", Id: input.StatusId},
		{Model: &EquipmentModel{}, Entity: "equipment model", Id: input.ModelId},
		{Model: &TypeEquipment{}, Entity: "equipment type", Id: input.TypeEquipmentId},
	}
}

func (input *NewEquipment) columns() map[string]interface{} {
	values := map[string]interface{}{
		"name":                     input.Name,
		"inventory_number":         input.InventoryNumber,
		"cost":                     input.Cost,
		"comment":                  input.Comment,
		"audience_id":              input.AudienceId,
		"responsible_user_id":      input.ResponsibleUserId,
		"temp_responsible_user_id": input.TempResponsibleUserId,
		"direction_id":             input.DirectionId,
		"status_id":                input.StatusId,
		"model_id":                 input.ModelId,
		"type_equipment_id":        input.TypeEquipmentId,
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

func (input *NewEquipment) apply(e *Equipment) {
	e.Name = input.Name
	e.InventoryNumber = input.InventoryNumber
	e.Cost = input.Cost
	e.Comment = input.Comment
	e.AudienceId = input.AudienceId
	e.ResponsibleUserId = input.ResponsibleUserId
	e.TempResponsibleUserId = input.TempResponsibleUserId
	e.DirectionId = input.DirectionId
	e.StatusId = input.StatusId
	e.ModelId = input.ModelId
	e.TypeEquipmentId = input.TypeEquipmentId
	if input.Photo != nil {
		if len(input.Photo) == 0 {
			e.Photo = nil
		} else {
			e.Photo = input.Photo
		}
	}
}

func loadEquipmentLookups(ctx context.Context) (EquipmentLookups, error) {
	var lookups EquipmentLookups
	var err error
	if lookups.Audiences, err = AudienceOptions(ctx); err != nil {
		return lookups, err
	}
	if lookups.Users, err = UserOptions(ctx); err != nil {
		return lookups, err
	}
	if lookups.Directions, err = LookupOptions[Direction](ctx); err != nil {
		return lookups, err
	}
	if lookups.Statuses, err = LookupOptions[Status](ctx); err != nil {
		return lookups, err
	}
	if lookups.Models, err = LookupOptions[EquipmentModel](ctx); err != nil {
		return lookups, err
	}
	if lookups.TypesEquipment, err = LookupOptions[TypeEquipment](ctx); err != nil {
		return lookups, err
	}
	return lookups, nil
}

// OpenEquipmentEdit loads the equipment (id 0 for a new one) together with every lookup
// the form needs.
func OpenEquipmentEdit(ctx context.Context, id int) (*EquipmentEdit, error) {
	edit := &EquipmentEdit{Id: id}
	if id == 0 {
		edit.Selection = Equipment{}.Selection()
	} else {
		equipment, err := GetResource[Equipment](ctx, "equipment", id)
		if err != nil {
			return nil, err
		}
		edit.Selection = equipment.Selection()
		edit.Owners = equipment.owners()
	}

	lookups, err := loadEquipmentLookups(ctx)
	if err != nil {
		return nil, err
	}
	edit.Lookups = lookups
	return edit, nil
}

// Commit writes the edited fields and, for an existing piece of equipment, the history of
// its owner fields. Everything happens in one transaction.
func (edit *EquipmentEdit) Commit(ctx context.Context, input *NewEquipment) (*Equipment, error) {
	ctx, span := tracer.Start(ctx, "models.CommitEquipment")
	defer span.End()

	if err := input.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storeError(ctx, "equipment", "CommitEquipment", tx.Error)
	}

	if err := utils.MassValidateResourceIds(tx, input.referenceRules()); err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "equipment", "CommitEquipment", err)
	}

	var equipment *Equipment
	if edit.Id == 0 {
		equipment = &Equipment{}
		input.apply(equipment)
		if err := tx.Omit(clause.Associations).Create(equipment).Error; err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "equipment", "CommitEquipment", err)
		}
	} else {
		var err error
		equipment, err = loadForChange[Equipment](tx, "equipment", edit.Id)
		if err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "equipment", "CommitEquipment", err)
		}
		if err := tx.Model(equipment).Updates(input.columns()).Error; err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "equipment", "CommitEquipment", err)
		}
		if _, err := recordEquipmentHistory(tx, equipment.ID, edit.Owners, input.owners(), input.HistoryComment, time.Now()); err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "equipment", "CommitEquipment", err)
		}
		input.apply(equipment)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storeError(ctx, "equipment", "CommitEquipment", err)
	}

	edit.Id = equipment.ID
	edit.Owners = equipment.owners()
	edit.Selection = equipment.Selection()
	invalidateList[Equipment]()
	publishSaved("equipment", equipment.ID)
	return equipment, nil
}

func CreateEquipment(ctx context.Context, input *NewEquipment) (*Equipment, error) {
	edit := &EquipmentEdit{}
	return edit.Commit(ctx, input)
}

// UpdateEquipment saves without an open session: the owners are compared against the stored row.
func UpdateEquipment(ctx context.Context, id int, input *NewEquipment) (*Equipment, error) {
	current, err := GetResource[Equipment](ctx, "equipment", id)
	if err != nil {
		if utils.IsStale(err) {
			publishDeleted("equipment", id)
		}
		return nil, err
	}
	edit := &EquipmentEdit{Id: id, Owners: current.owners()}
	return edit.Commit(ctx, input)
}

// DeleteEquipment removes the equipment with its history and consumable links. Software and
// network settings installed on it are kept and detached.
func DeleteEquipment(ctx context.Context, id int) (*Equipment, error) {
	return deleteRecord[Equipment](ctx, "equipment", id, equipmentDeleteRules, func(tx *gorm.DB) error {
		if err := tx.Where("equipment_id = ?", id).Delete(&EquipmentLocationHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("equipment_id = ?", id).Delete(&EquipmentResponsibleHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("equipment_id = ?", id).Delete(&EquipmentConsumable{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&Software{}).Where("equipment_id = ?", id).Update("equipment_id", nil).Error; err != nil {
			return err
		}
		return tx.Model(&NetworkSetting{}).Where("equipment_id = ?", id).Update("equipment_id", nil).Error
	})
}

func GetEquipment(ctx context.Context, id int) (*Equipment, error) {
	return GetResource[Equipment](ctx, "equipment", id)
}

// ListEquipment returns the equipment matching filter, without photos.
func ListEquipment(ctx context.Context, filter *EquipmentFilter) ([]*Equipment, error) {
	db := config.GetDB()
	var results []*Equipment

	dbCtx := db.WithContext(ctx).Omit("photo")
	if filter != nil {
		if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
			like := "%" + strings.TrimSpace(*filter.Search) + "%"
			dbCtx = dbCtx.Where("name LIKE ? OR inventory_number LIKE ?", like, like)
		}
		if id := OptionRef(filter.AudienceId); id != nil {
			dbCtx = dbCtx.Where("audience_id = ?", *id)
		}
		if id := OptionRef(filter.StatusId); id != nil {
			dbCtx = dbCtx.Where("status_id = ?", *id)
		}
		if id := OptionRef(filter.ResponsibleUserId); id != nil {
			dbCtx = dbCtx.Where("responsible_user_id = ? OR temp_responsible_user_id = ?", *id, *id)
		}
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, storeError(ctx, "equipment", "ListEquipment", err)
	}
	return results, nil
}
