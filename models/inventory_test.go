package models_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
)

func TestInventoryChecksArePerUser(t *testing.T) {
	newTestStore(t)
	ctx, admin := adminContext(t)
	teacher := mustCreateUser(t, ctx, "teacher", models.UserRoleTeacher)
	teacherCtx := actorContext(teacher)
	laptop := mustCreateEquipment(t, ctx, &models.NewEquipment{Name: "Laptop", InventoryNumber: "10", ResponsibleUserId: &teacher.ID})
	board := mustCreateEquipment(t, ctx, &models.NewEquipment{Name: "Board", InventoryNumber: "11", ResponsibleUserId: &admin.ID})

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 18, 0, 0, 0, time.UTC)

	// 1) only administrators may start an inventory
	if _, err := models.OpenInventoryEdit(teacherCtx, 0); !errors.Is(err, utils.ErrPermissionDenied) {
		t.Fatalf("teacher OpenInventoryEdit(0) err = %v, want permission denied", err)
	}

	// 2) the administrator creates it with one check
	adminEdit, err := models.OpenInventoryEdit(ctx, 0)
	if err != nil {
		t.Fatalf("OpenInventoryEdit: %v", err)
	}
	created, err := adminEdit.Commit(ctx, &models.NewInventory{
		Name:      "Spring audit",
		StartDate: start,
		EndDate:   end,
		Checks:    []models.InventoryCheck{{EquipmentId: board.ID, Comment: "ok"}},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	inventoryId := created.Inventory.ID

	// 3) the teacher sees none of the administrator's checks and adds their own
	teacherEdit, err := models.OpenInventoryEdit(teacherCtx, inventoryId)
	if err != nil {
		t.Fatalf("teacher OpenInventoryEdit: %v", err)
	}
	if teacherEdit.CanEditHeader || len(teacherEdit.Original) != 0 {
		t.Fatalf("teacher edit = %+v, want no header rights and no checks", teacherEdit)
	}
	if len(teacherEdit.Equipment) != 2 {
		t.Fatalf("teacher equipment options = %+v, want none plus the laptop", teacherEdit.Equipment)
	}
	if _, err := teacherEdit.Commit(teacherCtx, &models.NewInventory{
		Name:      teacherEdit.Header.Name,
		StartDate: teacherEdit.Header.StartDate,
		EndDate:   teacherEdit.Header.EndDate,
		Checks:    []models.InventoryCheck{{EquipmentId: laptop.ID}},
	}); err != nil {
		t.Fatalf("teacher Commit: %v", err)
	}

	// 4) the administrator's own set still holds exactly their check
	all, err := models.GetInventoryChecks(ctx, inventoryId)
	if err != nil {
		t.Fatalf("GetInventoryChecks: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all checks = %d, want 2", len(all))
	}
	mine, err := models.GetInventoryChecks(teacherCtx, inventoryId)
	if err != nil {
		t.Fatalf("GetInventoryChecks(teacher): %v", err)
	}
	if len(mine) != 1 || mine[0].EquipmentId != laptop.ID || mine[0].UserId != teacher.ID {
		t.Fatalf("teacher checks = %+v", mine)
	}
}

func TestInventoryHeaderIsAdministratorOnly(t *testing.T) {
	newTestStore(t)
	ctx, _ := adminContext(t)
	employee := mustCreateUser(t, ctx, "employee", models.UserRoleEmployee)
	employeeCtx := actorContext(employee)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	edit, err := models.OpenInventoryEdit(ctx, 0)
	if err != nil {
		t.Fatalf("OpenInventoryEdit: %v", err)
	}
	created, err := edit.Commit(ctx, &models.NewInventory{Name: "Autumn", StartDate: start, EndDate: start.AddDate(0, 1, 0)})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	employeeEdit, err := models.OpenInventoryEdit(employeeCtx, created.Inventory.ID)
	if err != nil {
		t.Fatalf("employee OpenInventoryEdit: %v", err)
	}
	_, err = employeeEdit.Commit(employeeCtx, &models.NewInventory{
		Name:      "Renamed",
		StartDate: employeeEdit.Header.StartDate,
		EndDate:   employeeEdit.Header.EndDate,
	})
	if !errors.Is(err, utils.ErrPermissionDenied) {
		t.Fatalf("employee header change err = %v, want permission denied", err)
	}
	if _, err := models.DeleteInventory(employeeCtx, created.Inventory.ID); !errors.Is(err, utils.ErrPermissionDenied) {
		t.Fatalf("employee DeleteInventory err = %v, want permission denied", err)
	}
}

func TestInventoryValidation(t *testing.T) {
	newTestStore(t)
	ctx, admin := adminContext(t)
	board := mustCreateEquipment(t, ctx, &models.NewEquipment{Name: "Board", InventoryNumber: "1", ResponsibleUserId: &admin.ID})
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input *models.NewInventory
	}{
		{"end before start", &models.NewInventory{Name: "A", StartDate: start, EndDate: start.AddDate(0, 0, -1)}},
		{"missing name", &models.NewInventory{Name: " ", StartDate: start, EndDate: start}},
		{"duplicate equipment", &models.NewInventory{Name: "A", StartDate: start, EndDate: start, Checks: []models.InventoryCheck{
			{EquipmentId: board.ID}, {EquipmentId: board.ID},
		}}},
		{"missing equipment", &models.NewInventory{Name: "A", StartDate: start, EndDate: start, Checks: []models.InventoryCheck{
			{EquipmentId: 4242},
		}}},
	}
	for _, tt := range tests {
		edit, err := models.OpenInventoryEdit(ctx, 0)
		if err != nil {
			t.Fatalf("%s: OpenInventoryEdit: %v", tt.name, err)
		}
		if _, err := edit.Commit(ctx, tt.input); !utils.IsValidationError(err) {
			t.Fatalf("%s: err = %v, want ValidationError", tt.name, err)
		}
	}
}

// newInventory opens a fresh inventory as the administrator and returns its id.
func newInventory(t *testing.T, ctx context.Context, name string) (int, time.Time) {
	t.Helper()
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	edit, err := models.OpenInventoryEdit(ctx, 0)
	if err != nil {
		t.Fatalf("OpenInventoryEdit: %v", err)
	}
	created, err := edit.Commit(ctx, &models.NewInventory{Name: name, StartDate: start, EndDate: start.AddDate(0, 1, 0)})
	if err != nil {
		t.Fatalf("Commit %s: %v", name, err)
	}
	return created.Inventory.ID, start
}

func TestInventoryChecksLimitedToOwnEquipment(t *testing.T) {
	newTestStore(t)
	ctx, admin := adminContext(t)
	teacher := mustCreateUser(t, ctx, "teacher", models.UserRoleTeacher)
	teacherCtx := actorContext(teacher)
	board := mustCreateEquipment(t, ctx, &models.NewEquipment{Name: "Board", InventoryNumber: "20", ResponsibleUserId: &admin.ID})
	borrowed := mustCreateEquipment(t, ctx, &models.NewEquipment{
		Name:                  "Camera",
		InventoryNumber:       "21",
		ResponsibleUserId:     &admin.ID,
		TempResponsibleUserId: &teacher.ID,
	})
	inventoryId, start := newInventory(t, ctx, "Winter audit")

	tests := []struct {
		name        string
		equipmentId int
		wantErr     bool
	}{
		{"equipment of another user", board.ID, true},
		{"temporarily responsible", borrowed.ID, false},
	}
	for _, tt := range tests {
		edit, err := models.OpenInventoryEdit(teacherCtx, inventoryId)
		if err != nil {
			t.Fatalf("%s: OpenInventoryEdit: %v", tt.name, err)
		}
		_, err = edit.Commit(teacherCtx, &models.NewInventory{
			Name:      "Winter audit",
			StartDate: start,
			EndDate:   start.AddDate(0, 1, 0),
			Checks:    []models.InventoryCheck{{EquipmentId: tt.equipmentId}},
		})
		if tt.wantErr && !utils.IsValidationError(err) {
			t.Fatalf("%s: err = %v, want ValidationError", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Fatalf("%s: Commit: %v", tt.name, err)
		}
	}

	checks, err := models.GetInventoryChecks(teacherCtx, inventoryId)
	if err != nil {
		t.Fatalf("GetInventoryChecks: %v", err)
	}
	if len(checks) != 1 || checks[0].EquipmentId != borrowed.ID {
		t.Fatalf("teacher checks = %+v, want only the camera", checks)
	}
}

func TestAdministratorEditsChecksOfAnotherUser(t *testing.T) {
	newTestStore(t)
	ctx, admin := adminContext(t)
	teacher := mustCreateUser(t, ctx, "teacher", models.UserRoleTeacher)
	teacherCtx := actorContext(teacher)
	laptop := mustCreateEquipment(t, ctx, &models.NewEquipment{Name: "Laptop", InventoryNumber: "30", ResponsibleUserId: &teacher.ID})
	projector := mustCreateEquipment(t, ctx, &models.NewEquipment{Name: "Projector", InventoryNumber: "31", ResponsibleUserId: &teacher.ID})
	board := mustCreateEquipment(t, ctx, &models.NewEquipment{Name: "Board", InventoryNumber: "32", ResponsibleUserId: &admin.ID})
	inventoryId, start := newInventory(t, ctx, "Summer audit")

	// 1) the teacher records the laptop
	teacherEdit, err := models.OpenInventoryEdit(teacherCtx, inventoryId)
	if err != nil {
		t.Fatalf("teacher OpenInventoryEdit: %v", err)
	}
	header := &models.NewInventory{Name: "Summer audit", StartDate: start, EndDate: start.AddDate(0, 1, 0)}
	header.Checks = []models.InventoryCheck{{EquipmentId: laptop.ID}}
	if _, err := teacherEdit.Commit(teacherCtx, header); err != nil {
		t.Fatalf("teacher Commit: %v", err)
	}

	// 2) only administrators may open someone else's checks
	if _, err := models.OpenInventoryEditFor(teacherCtx, inventoryId, admin.ID); !errors.Is(err, utils.ErrPermissionDenied) {
		t.Fatalf("teacher OpenInventoryEditFor(admin) err = %v, want permission denied", err)
	}
	if _, err := models.OpenInventoryEditFor(ctx, inventoryId, 4242); !utils.IsValidationError(err) {
		t.Fatalf("OpenInventoryEditFor(unknown user) err = %v, want ValidationError", err)
	}

	// 3) the administrator opens the teacher's set and sees the teacher's equipment only
	edit, err := models.OpenInventoryEditFor(ctx, inventoryId, teacher.ID)
	if err != nil {
		t.Fatalf("OpenInventoryEditFor: %v", err)
	}
	if edit.UserId != teacher.ID || len(edit.Original) != 1 || edit.Original[0].EquipmentId != laptop.ID {
		t.Fatalf("edit = %+v, want the teacher's laptop check", edit)
	}
	if len(edit.Equipment) != 3 {
		t.Fatalf("equipment options = %+v, want none plus two teacher items", edit.Equipment)
	}

	// 4) the administrator's equipment cannot be checked on the teacher's behalf
	_, err = edit.Commit(ctx, &models.NewInventory{
		Name:      header.Name,
		StartDate: header.StartDate,
		EndDate:   header.EndDate,
		Checks:    []models.InventoryCheck{edit.Original[0], {EquipmentId: board.ID}},
	})
	if !utils.IsValidationError(err) {
		t.Fatalf("Commit with the board err = %v, want ValidationError", err)
	}

	// 5) a new check on the projector is saved under the teacher
	result, err := edit.Commit(ctx, &models.NewInventory{
		Name:      header.Name,
		StartDate: header.StartDate,
		EndDate:   header.EndDate,
		Checks:    []models.InventoryCheck{edit.Original[0], {EquipmentId: projector.ID, Comment: "found in 204"}},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(result.Changes.Inserted) != 1 || len(result.Checks) != 2 {
		t.Fatalf("result = %+v, want one insert and two teacher checks", result)
	}
	for _, check := range result.Checks {
		if check.UserId != teacher.ID {
			t.Fatalf("check %+v saved under user %d, want %d", check, check.UserId, teacher.ID)
		}
	}
	own, err := models.OpenInventoryEdit(ctx, inventoryId)
	if err != nil {
		t.Fatalf("OpenInventoryEdit: %v", err)
	}
	if len(own.Original) != 0 {
		t.Fatalf("administrator's own checks = %+v, want none", own.Original)
	}
}
