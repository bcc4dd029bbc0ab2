package models_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Passw0rd1"

// newTestStore opens a private in-memory sqlite database with foreign keys on, migrates it
// and installs it as the global store for the duration of the test.
func newTestStore(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	previous := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() {
		config.SetDB(previous)
		_ = sqlDB.Close()
	})
	t.Setenv("ERROR_LOG_FILE", t.TempDir()+"/store_errors.log")

	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}
	return db
}

func actorContext(user *models.User) context.Context {
	return utils.SetActorInContext(context.Background(), user.Actor())
}

// adminContext creates an administrator and returns a context acting as them.
func adminContext(t *testing.T) (context.Context, *models.User) {
	t.Helper()
	admin := mustCreateUser(t, context.Background(), "admin", models.UserRoleAdministrator)
	return actorContext(admin), admin
}

func mustCreateUser(t *testing.T, ctx context.Context, login string, role models.UserRole) *models.User {
	t.Helper()
	user, err := models.CreateUser(ctx, &models.NewUser{
		LastName:  "Ivanov",
		FirstName: "Ivan",
		Role:      role,
		Login:     login,
		Password:  testPassword,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", login, err)
	}
	return user
}

func mustCreateAudience(t *testing.T, ctx context.Context, name string, responsible *models.User) *models.Audience {
	t.Helper()
	audience, err := models.CreateAudience(ctx, &models.NewAudience{
		Name:              name,
		ResponsibleUserId: &responsible.ID,
	})
	if err != nil {
		t.Fatalf("CreateAudience(%s): %v", name, err)
	}
	return audience
}

func mustCreateEquipment(t *testing.T, ctx context.Context, input *models.NewEquipment) *models.Equipment {
	t.Helper()
	equipment, err := models.CreateEquipment(ctx, input)
	if err != nil {
		t.Fatalf("CreateEquipment: %v", err)
	}
	return equipment
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func none() *int { return intPtr(models.NoneId) }
