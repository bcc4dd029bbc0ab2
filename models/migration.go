package models

import (
	"gorm.io/gorm"
)

// MigrateTable creates or updates every table. Referenced tables come first so the
// foreign key constraints can be created.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Audience{},
		&Direction{}, &Status{}, &EquipmentModel{}, &TypeEquipment{}, &SoftwareDeveloper{},
		&Equipment{},
		&EquipmentLocationHistory{}, &EquipmentResponsibleHistory{},
		&TypeConsumable{}, &ConsumableCharacteristic{},
		&Consumable{}, &ConsumableCharacteristicValue{}, &ConsumableResponsibleHistory{},
		&EquipmentConsumable{},
		&Software{},
		&NetworkSetting{},
		&Inventory{}, &InventoryCheck{},
		&ErrorLog{},
	)
}
