package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm/clause"
)

type Software struct {
	ID          int                `gorm:"primary_key" json:"id"`
	Name        string             `gorm:"size:255;not null" json:"name"`
	Version     string             `gorm:"size:50" json:"version"`
	DeveloperId *int               `gorm:"index" json:"developer_id"`
	Developer   *SoftwareDeveloper `gorm:"foreignKey:DeveloperId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	EquipmentId *int               `gorm:"index" json:"equipment_id"`
	Equipment   *Equipment         `gorm:"foreignKey:EquipmentId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSoftware struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	// selection values, NoneId for none
	DeveloperId *int `json:"developer_id"`
	EquipmentId *int `json:"equipment_id"`
}

type SoftwareSelection struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	DeveloperId int    `json:"developer_id"`
	EquipmentId int    `json:"equipment_id"`
}

func (s Software) GetId() int { return s.ID }

func (s Software) Selection() SoftwareSelection {
	return SoftwareSelection{
		Name:        s.Name,
		Version:     s.Version,
		DeveloperId: OptionId(s.DeveloperId),
		EquipmentId: OptionId(s.EquipmentId),
	}
}

func (input *NewSoftware) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	input.Version = strings.TrimSpace(input.Version)
	if err := utils.CheckFields(
		utils.FieldRule{Field: "name", Value: input.Name, MaxLen: 255, Required: true},
		utils.FieldRule{Field: "version", Value: input.Version, MaxLen: 50},
	); err != nil {
		return err
	}
	input.DeveloperId = OptionRef(input.DeveloperId)
	input.EquipmentId = OptionRef(input.EquipmentId)
	return nil
}

func (input *NewSoftware) referenceRules() []utils.ValidationRule {
	return []utils.ValidationRule{
		{Model: &SoftwareDeveloper{}, Entity: "software developer", Id: input.DeveloperId},
		{Model: &Equipment{}, Entity: "equipment", Id: input.EquipmentId},
	}
}

func CreateSoftware(ctx context.Context, input *NewSoftware) (*Software, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storeError(ctx, "software", "CreateSoftware", tx.Error)
	}
	if err := utils.MassValidateResourceIds(tx, input.referenceRules()); err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "software", "CreateSoftware", err)
	}
	software := Software{
		Name:        input.Name,
		Version:     input.Version,
		DeveloperId: input.DeveloperId,
		EquipmentId: input.EquipmentId,
	}
	if err := tx.Omit(clause.Associations).Create(&software).Error; err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "software", "CreateSoftware", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, storeError(ctx, "software", "CreateSoftware", err)
	}
	publishSaved("software", software.ID)
	return &software, nil
}

func UpdateSoftware(ctx context.Context, id int, input *NewSoftware) (*Software, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storeError(ctx, "software", "UpdateSoftware", tx.Error)
	}
	software, err := loadForChange[Software](tx, "software", id)
	if err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "software", "UpdateSoftware", err)
	}
	if err := utils.MassValidateResourceIds(tx, input.referenceRules()); err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "software", "UpdateSoftware", err)
	}
	err = tx.Model(software).Updates(map[string]interface{}{
		"name":         input.Name,
		"version":      input.Version,
		"developer_id": input.DeveloperId,
		"equipment_id": input.EquipmentId,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "software", "UpdateSoftware", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, storeError(ctx, "software", "UpdateSoftware", err)
	}

	software.Name = input.Name
	software.Version = input.Version
	software.DeveloperId = input.DeveloperId
	software.EquipmentId = input.EquipmentId
	publishSaved("software", id)
	return software, nil
}

func DeleteSoftware(ctx context.Context, id int) (*Software, error) {
	return deleteRecord[Software](ctx, "software", id, nil, nil)
}

func GetSoftware(ctx context.Context, id int) (*Software, error) {
	return GetResource[Software](ctx, "software", id)
}

func GetSoftwares(ctx context.Context, search *string, equipmentId *int) ([]*Software, error) {
	db := config.GetDB()
	var results []*Software

	dbCtx := db.WithContext(ctx)
	if search != nil && strings.TrimSpace(*search) != "" {
		like := "%" + strings.TrimSpace(*search) + "%"
		dbCtx = dbCtx.Where("name LIKE ? OR version LIKE ?", like, like)
	}
	if id := OptionRef(equipmentId); id != nil {
		dbCtx = dbCtx.Where("equipment_id = ?", *id)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, storeError(ctx, "software", "GetSoftwares", err)
	}
	return results, nil
}
