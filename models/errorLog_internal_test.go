package models

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

func TestStoreErrorClassification(t *testing.T) {
	ctx := context.Background()
	validation := utils.NewValidationError("name", "field is required")

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"classified passes through", validation, func(err error) bool { return err == validation }},
		{"record not found", gorm.ErrRecordNotFound, func(err error) bool { return errors.Is(err, utils.ErrorRecordNotFound) }},
		{"mysql duplicate entry", &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"}, func(err error) bool {
			var uniqueErr *utils.UniqueError
			return errors.As(err, &uniqueErr)
		}},
		{"mysql row referenced", fmt.Errorf("delete: %w", &mysqlDriver.MySQLError{Number: 1451}), func(err error) bool {
			var referenceErr *utils.ReferenceError
			return errors.As(err, &referenceErr)
		}},
		{"sqlite unique", errors.New("UNIQUE constraint failed: users.login"), func(err error) bool {
			var uniqueErr *utils.UniqueError
			return errors.As(err, &uniqueErr)
		}},
		{"sqlite foreign key", errors.New("FOREIGN KEY constraint failed"), func(err error) bool {
			var referenceErr *utils.ReferenceError
			return errors.As(err, &referenceErr)
		}},
		{"mysql missing referenced row", &mysqlDriver.MySQLError{Number: 1452, Message: "Cannot add or update a child row: a foreign key constraint fails " +
			"(`inventory`.`equipment`, CONSTRAINT `fk_equipment_audience` FOREIGN KEY (`audience_id`) REFERENCES `audiences` (`id`))"}, func(err error) bool {
			var validationErr *utils.ValidationError
			return errors.As(err, &validationErr) && validationErr.Field == "audience_id"
		}},
		{"canceled", context.Canceled, func(err error) bool { return errors.Is(err, context.Canceled) }},
	}
	for _, tt := range tests {
		if got := storeError(ctx, "user", "TestStoreErrorClassification", tt.err); !tt.check(got) {
			t.Fatalf("%s: storeError = %v (%T)", tt.name, got, got)
		}
	}
}

func TestUniqueErrorNamesColumn(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"sqlite single column", errors.New("UNIQUE constraint failed: users.login"), "login"},
		{"sqlite composite key", errors.New("UNIQUE constraint failed: equipment_consumables.equipment_id, equipment_consumables.consumable_id"), "consumable_id"},
		{"mysql gorm index", &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry '10.0.0.5' for key 'network_settings.idx_network_settings_ip_address'"}, "ip_address"},
		{"mysql named index", &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry '1-2' for key 'idx_equipment_consumable'"}, "equipment_consumable"},
		{"no column in message", gorm.ErrDuplicatedKey, "equipment consumable"},
	}
	for _, tt := range tests {
		err := storeError(context.Background(), "equipment consumable", "TestUniqueErrorNamesColumn", tt.err)
		var uniqueErr *utils.UniqueError
		if !errors.As(err, &uniqueErr) {
			t.Fatalf("%s: storeError = %v, want UniqueError", tt.name, err)
		}
		if uniqueErr.Field != tt.want {
			t.Fatalf("%s: Field = %q, want %q", tt.name, uniqueErr.Field, tt.want)
		}
	}
}
