package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/appctx"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdministrator UserRole = "Administrator"
	UserRoleTeacher       UserRole = "Teacher"
	UserRoleEmployee      UserRole = "Employee"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdministrator, UserRoleTeacher, UserRoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID         int       `gorm:"primary_key" json:"id"`
	LastName   string    `gorm:"size:100;not null" json:"last_name"`
	FirstName  string    `gorm:"size:100;not null" json:"first_name"`
	MiddleName string    `gorm:"size:100" json:"middle_name"`
	Role       UserRole  `gorm:"size:20;not null" json:"role"`
	Login      string    `gorm:"size:50;not null;uniqueIndex" json:"login"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	Email      string    `gorm:"size:255" json:"email"`
	Phone      string    `gorm:"size:20" json:"phone"`
	Address    string    `gorm:"size:255" json:"address"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	LastName   string   `json:"last_name"`
	FirstName  string   `json:"first_name"`
	MiddleName string   `json:"middle_name"`
	Role       UserRole `json:"role"`
	Login      string   `json:"login"`
	// Password may be left empty on update to keep the current one.
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type LoginInfo struct {
	Token  string `json:"token"`
	UserId int    `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// UserUpdate carries the saved user and whether the actor has to sign in again
// because they changed their own login, password or role.
type UserUpdate struct {
	User           *User `json:"user"`
	Reauthenticate bool  `json:"reauthenticate"`
}

func (u User) GetId() int { return u.ID }

func (u User) FullName() string {
	return utils.JoinNonEmpty(u.LastName, u.FirstName, u.MiddleName)
}

func (u User) option() Option { return Option{Id: u.ID, Name: u.FullName()} }

func (u User) Actor() appctx.Actor {
	return appctx.Actor{UserId: u.ID, Login: u.Login, Name: u.FullName(), Role: string(u.Role)}
}

// IsAdministrator reports whether the actor may edit everything, including inventory headers.
func IsAdministrator(actor appctx.Actor) bool {
	return actor.Role == string(UserRoleAdministrator)
}

func (input *NewUser) trim() {
	input.LastName = strings.TrimSpace(input.LastName)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.MiddleName = strings.TrimSpace(input.MiddleName)
	input.Login = strings.TrimSpace(input.Login)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)
}

// validate runs the field rules only; the uniqueness check needs the store and runs separately.
func (input *NewUser) validate(isNew bool) error {
	input.trim()
	if err := utils.CheckFields(
		utils.FieldRule{Field: "last_name", Value: input.LastName, MaxLen: 100, Required: true, Pattern: utils.PatternPersonName, Message: "only letters and hyphens are allowed"},
		utils.FieldRule{Field: "first_name", Value: input.FirstName, MaxLen: 100, Required: true, Pattern: utils.PatternPersonName, Message: "only letters and hyphens are allowed"},
		utils.FieldRule{Field: "middle_name", Value: input.MiddleName, MaxLen: 100, Pattern: utils.PatternPersonName, Message: "only letters and hyphens are allowed"},
		utils.FieldRule{Field: "login", Value: input.Login, MaxLen: 50, Required: true, Pattern: utils.PatternLogin, Message: "only latin letters, digits and underscore are allowed"},
		utils.FieldRule{Field: "email", Value: input.Email, MaxLen: 255, Pattern: utils.PatternEmail, Message: "is not a valid email address"},
		utils.FieldRule{Field: "phone", Value: input.Phone, MaxLen: 20, Pattern: utils.PatternPhone, Message: "must look like +7XXXXXXXXXX"},
		utils.FieldRule{Field: "address", Value: input.Address, MaxLen: 255},
	); err != nil {
		return err
	}
	if !input.Role.IsValid() {
		return utils.NewValidationError("role", "unknown role")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("phone", err.Error())
		}
	}
	if isNew || input.Password != "" {
		if ok, message := utils.ValidatePassword(input.Password); !ok {
			return utils.NewValidationError("password", message)
		}
	}
	return nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := input.validate(true); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[User](ctx, "login", input.Login, 0); err != nil {
		return nil, storeError(ctx, "user", "CreateUser", err)
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		LastName:   input.LastName,
		FirstName:  input.FirstName,
		MiddleName: input.MiddleName,
		Role:       input.Role,
		Login:      input.Login,
		Password:   string(hashed),
		Email:      input.Email,
		Phone:      input.Phone,
		Address:    input.Address,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, storeError(ctx, "user", "CreateUser", err)
	}
	invalidateList[User]()
	publishSaved("user", user.ID)
	return &user, nil
}

func UpdateUser(ctx context.Context, id int, input *NewUser) (*UserUpdate, error) {
	if err := input.validate(false); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[User](ctx, "login", input.Login, id); err != nil {
		return nil, storeError(ctx, "user", "UpdateUser", err)
	}

	user, err := GetResource[User](ctx, "user", id)
	if err != nil {
		if utils.IsStale(err) {
			publishDeleted("user", id)
		}
		return nil, err
	}

	values := map[string]interface{}{
		"last_name":   input.LastName,
		"first_name":  input.FirstName,
		"middle_name": input.MiddleName,
		"role":        input.Role,
		"login":       input.Login,
		"email":       input.Email,
		"phone":       input.Phone,
		"address":     input.Address,
	}
	passwordChanged := false
	if input.Password != "" && utils.ComparePassword(user.Password, input.Password) != nil {
		hashed, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		values["password"] = string(hashed)
		passwordChanged = true
	}

	reauth := false
	if actor, ok := utils.GetActorFromContext(ctx); ok && actor.UserId == id {
		reauth = passwordChanged || user.Login != input.Login || user.Role != input.Role
	}
	previousLogin := user.Login

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).Updates(values).Error; err != nil {
		return nil, storeError(ctx, "user", "UpdateUser", err)
	}

	user.LastName = input.LastName
	user.FirstName = input.FirstName
	user.MiddleName = input.MiddleName
	user.Role = input.Role
	user.Login = input.Login
	user.Email = input.Email
	user.Phone = input.Phone
	user.Address = input.Address
	if passwordChanged {
		user.Password = values["password"].(string)
	}

	_ = config.RemoveRedisKey("User:" + previousLogin)
	invalidateList[User]()
	publishSaved("user", id)
	return &UserUpdate{User: user, Reauthenticate: reauth}, nil
}

// DeleteUser refuses while the user is still responsible for anything or appears in history.
// Users cannot delete themselves.
func DeleteUser(ctx context.Context, id int) (*User, error) {
	if actor, ok := utils.GetActorFromContext(ctx); ok && actor.UserId == id {
		return nil, utils.NewValidationError("id", "you cannot delete your own account")
	}
	user, err := deleteRecord[User](ctx, "user", id, userDeleteRules, nil)
	if err != nil {
		return nil, err
	}
	_ = config.RemoveRedisKey("User:" + user.Login)
	return user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return GetResource[User](ctx, "user", id)
}

func GetUsers(ctx context.Context, search *string, role *UserRole) ([]*User, error) {
	db := config.GetDB()
	var results []*User

	dbCtx := db.WithContext(ctx)
	if search != nil && strings.TrimSpace(*search) != "" {
		like := "%" + strings.TrimSpace(*search) + "%"
		dbCtx = dbCtx.Where("last_name LIKE ? OR first_name LIKE ? OR login LIKE ?", like, like, like)
	}
	if role != nil && *role != "" {
		dbCtx = dbCtx.Where("role = ?", *role)
	}
	if err := dbCtx.Order("last_name").Order("first_name").Find(&results).Error; err != nil {
		return nil, storeError(ctx, "user", "GetUsers", err)
	}
	return results, nil
}

func UserOptions(ctx context.Context) ([]Option, error) {
	users, err := ListAllResource[User](ctx, "last_name", "first_name")
	if err != nil {
		return nil, err
	}
	return namedOptions(users), nil
}

// ErrInvalidCredentials is returned for an unknown login and for a wrong password alike.
var ErrInvalidCredentials = errors.New("invalid login or password")

// cachedLogin keeps the password hash next to the user, which User itself never serializes.
type cachedLogin struct {
	User User   `json:"user"`
	Hash string `json:"hash"`
}

func Login(ctx context.Context, login string, password string) (*LoginInfo, error) {
	db := config.GetDB()
	cached := cachedLogin{}

	// get User info
	exists, err := config.GetRedisObject("User:"+login, &cached)
	if err != nil {
		config.LogError(config.GetLogger(), "models", "Login", "GetRedisObject", login, err)
		exists = false
	}
	user := cached.User
	user.Password = cached.Hash
	if !exists {
		user = User{}
		err = db.WithContext(ctx).Model(&User{}).Where("login = ?", login).Take(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, storeError(ctx, "user", "Login", err)
		}
		_ = config.SetRedisObject("User:"+login, cachedLogin{User: user, Hash: user.Password}, config.CacheLifespan())
	}

	// check login credentials
	if err := utils.ComparePassword(user.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	token, err := utils.JwtGenerate(user.Actor())
	if err != nil {
		return nil, err
	}
	return &LoginInfo{
		Token:  token,
		UserId: user.ID,
		Name:   user.FullName(),
		Role:   string(user.Role),
	}, nil
}
