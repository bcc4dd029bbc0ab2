package models

import (
	"strings"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

// referenceRule names one kind of row that may point at the record being deleted.
// Every ? in Condition is bound to the record's id.
type referenceRule struct {
	Model     interface{}
	Condition string
	BlockedBy string
}

// guardDelete refuses the delete while any rule still matches a row.
// The store's foreign key constraints back this up for references inserted concurrently.
func guardDelete(tx *gorm.DB, entity string, id int, rules []referenceRule) error {
	for _, rule := range rules {
		args := make([]interface{}, strings.Count(rule.Condition, "?"))
		for i := range args {
			args[i] = id
		}
		var count int64
		if err := tx.Model(rule.Model).Where(rule.Condition, args...).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			config.DeleteBlocked.WithLabelValues(entity).Inc()
			return &utils.ReferenceError{Entity: entity, Id: id, BlockedBy: rule.BlockedBy}
		}
	}
	return nil
}

var (
	audienceDeleteRules = []referenceRule{
		{Model: &Equipment{}, Condition: "audience_id = ?", BlockedBy: "equipment"},
		{Model: &EquipmentLocationHistory{}, Condition: "audience_id = ?", BlockedBy: "equipment history"},
	}
	directionDeleteRules = []referenceRule{
		{Model: &Equipment{}, Condition: "direction_id = ?", BlockedBy: "equipment"},
	}
	statusDeleteRules = []referenceRule{
		{Model: &Equipment{}, Condition: "status_id = ?", BlockedBy: "equipment"},
	}
	equipmentModelDeleteRules = []referenceRule{
		{Model: &Equipment{}, Condition: "model_id = ?", BlockedBy: "equipment"},
	}
	typeEquipmentDeleteRules = []referenceRule{
		{Model: &Equipment{}, Condition: "type_equipment_id = ?", BlockedBy: "equipment"},
	}
	softwareDeveloperDeleteRules = []referenceRule{
		{Model: &Software{}, Condition: "developer_id = ?", BlockedBy: "software"},
	}
	typeConsumableDeleteRules = []referenceRule{
		{Model: &ConsumableCharacteristic{}, Condition: "type_consumable_id = ?", BlockedBy: "characteristics"},
		{Model: &Consumable{}, Condition: "type_consumable_id = ?", BlockedBy: "consumables"},
	}
	characteristicDeleteRules = []referenceRule{
		{Model: &ConsumableCharacteristicValue{}, Condition: "characteristic_id = ?", BlockedBy: "characteristic values"},
	}
	consumableDeleteRules = []referenceRule{
		{Model: &EquipmentConsumable{}, Condition: "consumable_id = ?", BlockedBy: "equipment"},
	}
	equipmentDeleteRules = []referenceRule{
		{Model: &InventoryCheck{}, Condition: "equipment_id = ?", BlockedBy: "inventory checks"},
	}
	inventoryDeleteRules = []referenceRule{
		{Model: &InventoryCheck{}, Condition: "inventory_id = ?", BlockedBy: "inventory checks"},
	}
	userDeleteRules = []referenceRule{
		{Model: &Audience{}, Condition: "responsible_user_id = ? OR temp_responsible_user_id = ?", BlockedBy: "audiences"},
		{Model: &Equipment{}, Condition: "responsible_user_id = ? OR temp_responsible_user_id = ?", BlockedBy: "equipment"},
		{Model: &Consumable{}, Condition: "responsible_user_id = ? OR temp_responsible_user_id = ?", BlockedBy: "consumables"},
		{Model: &Inventory{}, Condition: "user_id = ?", BlockedBy: "inventories"},
		{Model: &InventoryCheck{}, Condition: "user_id = ?", BlockedBy: "inventory checks"},
		{Model: &EquipmentResponsibleHistory{}, Condition: "old_user_id = ?", BlockedBy: "equipment history"},
		{Model: &ConsumableResponsibleHistory{}, Condition: "old_user_id = ?", BlockedBy: "consumable history"},
	}
)
