package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/xuri/excelize/v2"
)

const acceptanceSheet = "Act"

// AcceptanceAct is the content of a handover certificate for one item.
type AcceptanceAct struct {
	Kind            string
	ItemName        string
	InventoryNumber string
	Quantity        string
	Cost            string
	Location        string
	Receiver        string
	Date            time.Time
}

func (a AcceptanceAct) FileName() string {
	return fmt.Sprintf("acceptance_act_%s_%s.xlsx", a.Kind, a.Date.Format("20060102"))
}

func loadReceiver(ctx context.Context, receiverId *int) (string, error) {
	if receiverId == nil {
		return "", utils.NewValidationError("responsible_user_id", "a responsible user is required to issue the act")
	}
	user, err := models.GetUser(ctx, *receiverId)
	if err != nil {
		return "", err
	}
	return user.FullName(), nil
}

func EquipmentAcceptanceAct(ctx context.Context, equipmentId int) (*AcceptanceAct, error) {
	equipment, err := models.GetEquipment(ctx, equipmentId)
	if err != nil {
		return nil, err
	}
	receiver, err := loadReceiver(ctx, equipment.Receiver())
	if err != nil {
		return nil, err
	}
	act := &AcceptanceAct{
		Kind:            "equipment",
		ItemName:        equipment.Name,
		InventoryNumber: equipment.InventoryNumber,
		Quantity:        "1",
		Cost:            equipment.Cost.StringFixed(2),
		Receiver:        receiver,
		Date:            time.Now(),
	}
	if equipment.AudienceId != nil {
		audience, err := models.GetAudience(ctx, *equipment.AudienceId)
		if err != nil {
			return nil, err
		}
		act.Location = audience.Name
	}
	return act, nil
}

func ConsumableAcceptanceAct(ctx context.Context, consumableId int) (*AcceptanceAct, error) {
	consumable, err := models.GetConsumable(ctx, consumableId)
	if err != nil {
		return nil, err
	}
	receiver, err := loadReceiver(ctx, consumable.Receiver())
	if err != nil {
		return nil, err
	}
	act := &AcceptanceAct{
		Kind:     "consumable",
		ItemName: consumable.Name,
		Receiver: receiver,
		Date:     time.Now(),
	}
	if consumable.Quantity != nil {
		act.Quantity = fmt.Sprint(*consumable.Quantity)
	}
	return act, nil
}

// Workbook lays the act out as label/value rows on a single sheet.
func (a AcceptanceAct) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", acceptanceSheet); err != nil {
		return nil, err
	}

	rows := [][]interface{}{
		{"Acceptance certificate"},
		{"Date", a.Date.Format("02.01.2006")},
		{"Item", a.ItemName},
		{"Inventory number", a.InventoryNumber},
		{"Quantity", a.Quantity},
		{"Cost", a.Cost},
		{"Location", a.Location},
		{},
		{"Handed over to", a.Receiver},
		{"Signature", ""},
	}
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(acceptanceSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
