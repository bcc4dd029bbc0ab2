package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
)

func TestCreateUserRejectsDuplicateLogin(t *testing.T) {
	newTestStore(t)
	ctx, _ := adminContext(t)

	_, err := models.CreateUser(ctx, &models.NewUser{
		LastName:  "Petrov",
		FirstName: "Petr",
		Role:      models.UserRoleEmployee,
		Login:     "admin",
		Password:  testPassword,
	})
	var uniqueErr *utils.UniqueError
	if !errors.As(err, &uniqueErr) || uniqueErr.Field != "login" {
		t.Fatalf("CreateUser err = %v, want UniqueError on login", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	newTestStore(t)

	tests := []struct {
		name  string
		input models.NewUser
	}{
		{"digits in name", models.NewUser{LastName: "Iv4nov", FirstName: "Ivan", Role: models.UserRoleEmployee, Login: "ivan", Password: testPassword}},
		{"unknown role", models.NewUser{LastName: "Ivanov", FirstName: "Ivan", Role: "Guest", Login: "ivan", Password: testPassword}},
		{"weak password", models.NewUser{LastName: "Ivanov", FirstName: "Ivan", Role: models.UserRoleEmployee, Login: "ivan", Password: "short"}},
		{"bad login", models.NewUser{LastName: "Ivanov", FirstName: "Ivan", Role: models.UserRoleEmployee, Login: "iv an", Password: testPassword}},
	}
	for _, tt := range tests {
		input := tt.input
		if _, err := models.CreateUser(context.Background(), &input); !utils.IsValidationError(err) {
			t.Fatalf("%s: err = %v, want ValidationError", tt.name, err)
		}
	}
}

func TestUpdateUserReauthenticate(t *testing.T) {
	newTestStore(t)
	ctx, admin := adminContext(t)
	employee := mustCreateUser(t, ctx, "employee", models.UserRoleEmployee)

	// 1) changing your own password asks for a new sign in
	own, err := models.UpdateUser(ctx, admin.ID, &models.NewUser{
		LastName:  admin.LastName,
		FirstName: admin.FirstName,
		Role:      admin.Role,
		Login:     admin.Login,
		Password:  "NewPassw0rd",
	})
	if err != nil {
		t.Fatalf("UpdateUser(self): %v", err)
	}
	if !own.Reauthenticate {
		t.Fatalf("self password change: Reauthenticate = false")
	}

	// 2) editing somebody else never does
	other, err := models.UpdateUser(ctx, employee.ID, &models.NewUser{
		LastName:  employee.LastName,
		FirstName: employee.FirstName,
		Role:      models.UserRoleTeacher,
		Login:     "employee2",
	})
	if err != nil {
		t.Fatalf("UpdateUser(other): %v", err)
	}
	if other.Reauthenticate {
		t.Fatalf("editing another user: Reauthenticate = true")
	}
	if other.User.Role != models.UserRoleTeacher || other.User.Login != "employee2" {
		t.Fatalf("updated user = %+v", other.User)
	}
}

func TestLogin(t *testing.T) {
	newTestStore(t)
	ctx, admin := adminContext(t)

	info, err := models.Login(ctx, "admin", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if info.Token == "" || info.UserId != admin.ID || info.Role != string(models.UserRoleAdministrator) {
		t.Fatalf("login info = %+v", info)
	}
	token, err := utils.JwtValidate(info.Token)
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not validate: %v", err)
	}

	tests := []struct {
		name     string
		login    string
		password string
	}{
		{"wrong password", "admin", "Wr0ngPassword"},
		{"unknown login", "nobody", testPassword},
	}
	for _, tt := range tests {
		if _, err := models.Login(ctx, tt.login, tt.password); !errors.Is(err, models.ErrInvalidCredentials) {
			t.Fatalf("%s: err = %v, want ErrInvalidCredentials", tt.name, err)
		}
	}
}
