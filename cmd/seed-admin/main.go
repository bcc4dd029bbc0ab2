// seed-admin creates the first administrator, or resets its password and role.
//
// Usage (from backend directory):
//
//	DB_DRIVER=... DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	ADMIN_LOGIN=admin ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mmdatafocus/inventory_backend/appctx"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

const defaultAdminLogin = "admin"

func main() {
	login := os.Getenv("ADMIN_LOGIN")
	if login == "" {
		login = defaultAdminLogin
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if ok, message := utils.ValidatePassword(password); !ok {
		fmt.Fprintf(os.Stderr, "ADMIN_PASSWORD %s\n", message)
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		os.Exit(1)
	}

	// Writes are attributed to a synthetic administrator.
	ctx := utils.SetActorInContext(context.Background(), appctx.Actor{
		Login: "seed",
		Name:  "Seed",
		Role:  string(models.UserRoleAdministrator),
	})

	var existing models.User
	err := db.WithContext(ctx).Model(&models.User{}).Where("login = ?", login).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		user, err := models.CreateUser(ctx, &models.NewUser{
			LastName:  "Administrator",
			FirstName: "System",
			Role:      models.UserRoleAdministrator,
			Login:     login,
			Password:  password,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: login=%q id=%d\n", user.Login, user.ID)
		return
	}

	// Update existing user: ensure password and administrator role
	update, err := models.UpdateUser(ctx, existing.ID, &models.NewUser{
		LastName:   existing.LastName,
		FirstName:  existing.FirstName,
		MiddleName: existing.MiddleName,
		Role:       models.UserRoleAdministrator,
		Login:      existing.Login,
		Password:   password,
		Email:      existing.Email,
		Phone:      existing.Phone,
		Address:    existing.Address,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated admin user: login=%q id=%d\n", update.User.Login, update.User.ID)
}
