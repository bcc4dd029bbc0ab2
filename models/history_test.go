package models_test

import (
	"testing"

	"github.com/mmdatafocus/inventory_backend/models"
)

func TestEquipmentHistoryIgnoresFirstAssignment(t *testing.T) {
	db := newTestStore(t)
	ctx, admin := adminContext(t)
	room := mustCreateAudience(t, ctx, "Room 101", admin)

	// 1) equipment starts without a location
	equipment := mustCreateEquipment(t, ctx, &models.NewEquipment{
		Name:              "Projector",
		InventoryNumber:   "1001",
		AudienceId:        none(),
		ResponsibleUserId: &admin.ID,
	})

	// 2) null -> room is an assignment, not a move
	edit, err := models.OpenEquipmentEdit(ctx, equipment.ID)
	if err != nil {
		t.Fatalf("OpenEquipmentEdit: %v", err)
	}
	if _, err := edit.Commit(ctx, &models.NewEquipment{
		Name:              "Projector",
		InventoryNumber:   "1001",
		AudienceId:        &room.ID,
		ResponsibleUserId: &admin.ID,
	}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if n := countRows(t, db, &models.EquipmentLocationHistory{}); n != 0 {
		t.Fatalf("location history rows = %d, want 0", n)
	}
	if n := countRows(t, db, &models.EquipmentResponsibleHistory{}); n != 0 {
		t.Fatalf("responsible history rows = %d, want 0", n)
	}
}

func TestEquipmentHistoryRecordsPreviousOwner(t *testing.T) {
	newTestStore(t)
	ctx, admin := adminContext(t)
	teacher := mustCreateUser(t, ctx, "teacher", models.UserRoleTeacher)
	roomA := mustCreateAudience(t, ctx, "Room A", admin)
	roomB := mustCreateAudience(t, ctx, "Room B", admin)

	equipment := mustCreateEquipment(t, ctx, &models.NewEquipment{
		Name:              "Laptop",
		InventoryNumber:   "2002",
		AudienceId:        &roomA.ID,
		ResponsibleUserId: &admin.ID,
	})

	edit, err := models.OpenEquipmentEdit(ctx, equipment.ID)
	if err != nil {
		t.Fatalf("OpenEquipmentEdit: %v", err)
	}
	if _, err := edit.Commit(ctx, &models.NewEquipment{
		Name:              "Laptop",
		InventoryNumber:   "2002",
		AudienceId:        &roomB.ID,
		ResponsibleUserId: &teacher.ID,
		HistoryComment:    "moved to B",
	}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	entries, err := models.GetEquipmentHistory(ctx, equipment.ID)
	if err != nil {
		t.Fatalf("GetEquipmentHistory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history entries = %d, want 2", len(entries))
	}
	byKind := map[string]*models.EquipmentHistoryEntry{}
	for _, entry := range entries {
		byKind[entry.Kind] = entry
	}
	location := byKind[models.HistoryKindLocation]
	if location == nil || location.OldId != roomA.ID {
		t.Fatalf("location entry = %+v, want old audience %d", location, roomA.ID)
	}
	if location.Comment != "moved to B" {
		t.Fatalf("location comment = %q", location.Comment)
	}
	responsible := byKind[models.HistoryKindResponsible]
	if responsible == nil || responsible.OldId != admin.ID {
		t.Fatalf("responsible entry = %+v, want old user %d", responsible, admin.ID)
	}
}

func TestEquipmentHistorySkipsClearAndSameValue(t *testing.T) {
	db := newTestStore(t)
	ctx, admin := adminContext(t)
	room := mustCreateAudience(t, ctx, "Room 7", admin)

	equipment := mustCreateEquipment(t, ctx, &models.NewEquipment{
		Name:              "Printer",
		InventoryNumber:   "3003",
		AudienceId:        &room.ID,
		ResponsibleUserId: &admin.ID,
	})

	tests := []struct {
		name     string
		audience *int
	}{
		{"same value", &room.ID},
		{"cleared", none()},
		{"assigned again", &room.ID},
	}
	for _, tt := range tests {
		edit, err := models.OpenEquipmentEdit(ctx, equipment.ID)
		if err != nil {
			t.Fatalf("%s: OpenEquipmentEdit: %v", tt.name, err)
		}
		if _, err := edit.Commit(ctx, &models.NewEquipment{
			Name:              "Printer",
			InventoryNumber:   "3003",
			AudienceId:        tt.audience,
			ResponsibleUserId: &admin.ID,
		}); err != nil {
			t.Fatalf("%s: Commit: %v", tt.name, err)
		}
		if n := countRows(t, db, &models.EquipmentLocationHistory{}); n != 0 {
			t.Fatalf("%s: location history rows = %d, want 0", tt.name, n)
		}
	}
}

func TestConsumableHistoryRecordsPreviousResponsible(t *testing.T) {
	newTestStore(t)
	ctx, admin := adminContext(t)
	employee := mustCreateUser(t, ctx, "employee", models.UserRoleEmployee)

	created, err := models.CreateConsumable(ctx, &models.NewConsumable{
		Name:              "Toner",
		ResponsibleUserId: &admin.ID,
	})
	if err != nil {
		t.Fatalf("CreateConsumable: %v", err)
	}
	id := created.Consumable.ID

	edit, err := models.OpenConsumableEdit(ctx, id)
	if err != nil {
		t.Fatalf("OpenConsumableEdit: %v", err)
	}
	if _, err := edit.Commit(ctx, &models.NewConsumable{
		Name:              "Toner",
		ResponsibleUserId: &employee.ID,
	}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	history, err := models.GetConsumableHistory(ctx, id)
	if err != nil {
		t.Fatalf("GetConsumableHistory: %v", err)
	}
	if len(history) != 1 || history[0].OldUserId != admin.ID {
		t.Fatalf("history = %+v, want one row with old user %d", history, admin.ID)
	}
}
