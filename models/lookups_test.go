package models_test

import (
	"testing"

	"github.com/mmdatafocus/inventory_backend/models"
)

func TestLookupOptionsStartWithNone(t *testing.T) {
	newTestStore(t)
	ctx, _ := adminContext(t)
	for _, name := range []string{"Repair", "In use", "Written off"} {
		if _, err := models.CreateLookup[models.Status](ctx, &models.NewLookup{Name: name}); err != nil {
			t.Fatalf("CreateLookup(%s): %v", name, err)
		}
	}

	options, err := models.LookupOptions[models.Status](ctx)
	if err != nil {
		t.Fatalf("LookupOptions: %v", err)
	}
	if len(options) != 4 || options[0].Id != models.NoneId {
		t.Fatalf("options = %+v, want none first and 3 statuses", options)
	}
	if options[1].Name != "In use" {
		t.Fatalf("options not ordered by name: %+v", options)
	}

	filtered, err := models.ListLookup[models.Status](ctx, strPtr("  re"))
	if err != nil {
		t.Fatalf("ListLookup: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Repair" {
		t.Fatalf("filtered = %+v, want Repair only", filtered)
	}
}

func TestLookupRename(t *testing.T) {
	newTestStore(t)
	ctx, _ := adminContext(t)
	row, err := models.CreateLookup[models.TypeEquipment](ctx, &models.NewLookup{Name: "Printer"})
	if err != nil {
		t.Fatalf("CreateLookup: %v", err)
	}

	if _, err := models.UpdateLookup[models.TypeEquipment](ctx, row.ID, &models.NewLookup{Name: "  MFP "}); err != nil {
		t.Fatalf("UpdateLookup: %v", err)
	}
	stored, err := models.GetLookup[models.TypeEquipment](ctx, row.ID)
	if err != nil {
		t.Fatalf("GetLookup: %v", err)
	}
	if stored.Name != "MFP" {
		t.Fatalf("name = %q, want MFP", stored.Name)
	}

	if _, err := models.UpdateLookup[models.TypeEquipment](ctx, row.ID, &models.NewLookup{Name: ""}); err == nil {
		t.Fatalf("empty name accepted")
	}
}

func TestOptionRefAndId(t *testing.T) {
	tests := []struct {
		name string
		in   *int
		want *int
	}{
		{"nil", nil, nil},
		{"none", intPtr(models.NoneId), nil},
		{"zero", intPtr(0), nil},
		{"value", intPtr(5), intPtr(5)},
	}
	for _, tt := range tests {
		got := models.OptionRef(tt.in)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Fatalf("%s: OptionRef = %v, want %v", tt.name, got, tt.want)
		}
		if got != nil && models.OptionId(got) != *got {
			t.Fatalf("%s: OptionId round trip failed", tt.name)
		}
	}
	if models.OptionId(nil) != models.NoneId {
		t.Fatalf("OptionId(nil) = %d, want NoneId", models.OptionId(nil))
	}
}
