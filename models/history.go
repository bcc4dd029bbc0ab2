package models

import (
	"context"
	"sort"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"gorm.io/gorm"
)

// EquipmentLocationHistory remembers the audience a piece of equipment was moved out of.
type EquipmentLocationHistory struct {
	ID          int        `gorm:"primary_key" json:"id"`
	EquipmentId int        `gorm:"index;not null" json:"equipment_id"`
	Equipment   *Equipment `gorm:"foreignKey:EquipmentId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	AudienceId  int        `gorm:"index;not null" json:"audience_id"`
	Audience    *Audience  `gorm:"foreignKey:AudienceId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ChangeDate  time.Time  `gorm:"not null" json:"change_date"`
	Comment     string     `gorm:"size:255" json:"comment"`
}

// EquipmentResponsibleHistory remembers the previous responsible user of a piece of equipment.
type EquipmentResponsibleHistory struct {
	ID          int        `gorm:"primary_key" json:"id"`
	EquipmentId int        `gorm:"index;not null" json:"equipment_id"`
	Equipment   *Equipment `gorm:"foreignKey:EquipmentId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	OldUserId   int        `gorm:"index;not null" json:"old_user_id"`
	OldUser     *User      `gorm:"foreignKey:OldUserId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ChangeDate  time.Time  `gorm:"not null" json:"change_date"`
	Comment     string     `gorm:"size:255" json:"comment"`
}

type ConsumableResponsibleHistory struct {
	ID           int         `gorm:"primary_key" json:"id"`
	ConsumableId int         `gorm:"index;not null" json:"consumable_id"`
	Consumable   *Consumable `gorm:"foreignKey:ConsumableId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	OldUserId    int         `gorm:"index;not null" json:"old_user_id"`
	OldUser      *User       `gorm:"foreignKey:OldUserId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ChangeDate   time.Time   `gorm:"not null" json:"change_date"`
	Comment      string      `gorm:"size:255" json:"comment"`
}

// ownerChanged is true only for a move from one owner to a different one.
// Assigning a first owner or clearing the owner is not a change of hands.
func ownerChanged(before *int, after *int) bool {
	return before != nil && after != nil && *before != *after
}

// createHistory writes record inside tx when the owner moved from before to after.
// It reports whether a row was written.
func createHistory(tx *gorm.DB, entity string, before *int, after *int, record interface{}) (bool, error) {
	if !ownerChanged(before, after) {
		return false, nil
	}
	if err := tx.Create(record).Error; err != nil {
		return false, err
	}
	config.HistoryRecords.WithLabelValues(entity).Inc()
	return true, nil
}

func recordEquipmentHistory(tx *gorm.DB, equipmentId int, before equipmentOwners, after equipmentOwners, comment string, now time.Time) (int, error) {
	written := 0
	if ownerChanged(before.AudienceId, after.AudienceId) {
		ok, err := createHistory(tx, "equipment location", before.AudienceId, after.AudienceId, &EquipmentLocationHistory{
			EquipmentId: equipmentId,
			AudienceId:  *before.AudienceId,
			ChangeDate:  now,
			Comment:     comment,
		})
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	if ownerChanged(before.ResponsibleUserId, after.ResponsibleUserId) {
		ok, err := createHistory(tx, "equipment responsible", before.ResponsibleUserId, after.ResponsibleUserId, &EquipmentResponsibleHistory{
			EquipmentId: equipmentId,
			OldUserId:   *before.ResponsibleUserId,
			ChangeDate:  now,
			Comment:     comment,
		})
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	return written, nil
}

func recordConsumableHistory(tx *gorm.DB, consumableId int, before *int, after *int, comment string, now time.Time) (int, error) {
	if !ownerChanged(before, after) {
		return 0, nil
	}
	ok, err := createHistory(tx, "consumable responsible", before, after, &ConsumableResponsibleHistory{
		ConsumableId: consumableId,
		OldUserId:    *before,
		ChangeDate:   now,
		Comment:      comment,
	})
	if err != nil || !ok {
		return 0, err
	}
	return 1, nil
}

// EquipmentHistoryEntry is one line of the combined history of a piece of equipment.
type EquipmentHistoryEntry struct {
	Kind       string    `json:"kind"`
	ChangeDate time.Time `json:"change_date"`
	OldId      int       `json:"old_id"`
	OldName    string    `json:"old_name"`
	Comment    string    `json:"comment"`
}

const (
	HistoryKindLocation    = "location"
	HistoryKindResponsible = "responsible"
)

// GetEquipmentHistory lists location and responsible changes, newest first.
func GetEquipmentHistory(ctx context.Context, equipmentId int) ([]*EquipmentHistoryEntry, error) {
	if _, err := GetResource[Equipment](ctx, "equipment", equipmentId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var locations []*EquipmentLocationHistory
	if err := db.WithContext(ctx).Preload("Audience").Where("equipment_id = ?", equipmentId).Find(&locations).Error; err != nil {
		return nil, storeError(ctx, "equipment history", "GetEquipmentHistory", err)
	}
	var responsibles []*EquipmentResponsibleHistory
	if err := db.WithContext(ctx).Preload("OldUser").Where("equipment_id = ?", equipmentId).Find(&responsibles).Error; err != nil {
		return nil, storeError(ctx, "equipment history", "GetEquipmentHistory", err)
	}

	entries := make([]*EquipmentHistoryEntry, 0, len(locations)+len(responsibles))
	for _, h := range locations {
		entry := &EquipmentHistoryEntry{Kind: HistoryKindLocation, ChangeDate: h.ChangeDate, OldId: h.AudienceId, Comment: h.Comment}
		if h.Audience != nil {
			entry.OldName = h.Audience.Name
		}
		entries = append(entries, entry)
	}
	for _, h := range responsibles {
		entry := &EquipmentHistoryEntry{Kind: HistoryKindResponsible, ChangeDate: h.ChangeDate, OldId: h.OldUserId, Comment: h.Comment}
		if h.OldUser != nil {
			entry.OldName = h.OldUser.FullName()
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ChangeDate.After(entries[j].ChangeDate)
	})
	return entries, nil
}

func GetConsumableHistory(ctx context.Context, consumableId int) ([]*ConsumableResponsibleHistory, error) {
	if _, err := GetResource[Consumable](ctx, "consumable", consumableId); err != nil {
		return nil, err
	}
	db := config.GetDB()
	var results []*ConsumableResponsibleHistory
	if err := db.WithContext(ctx).Where("consumable_id = ?", consumableId).Order("change_date DESC").Find(&results).Error; err != nil {
		return nil, storeError(ctx, "consumable history", "GetConsumableHistory", err)
	}
	return results, nil
}
