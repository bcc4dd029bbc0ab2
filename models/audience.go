package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
)

// Audience is a room equipment can be placed in.
type Audience struct {
	ID                    int       `gorm:"primary_key" json:"id"`
	Name                  string    `gorm:"size:255;not null" json:"name"`
	ShortName             string    `gorm:"size:50" json:"short_name"`
	ResponsibleUserId     *int      `gorm:"index" json:"responsible_user_id"`
	ResponsibleUser       *User     `gorm:"foreignKey:ResponsibleUserId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TempResponsibleUserId *int      `gorm:"index" json:"temp_responsible_user_id"`
	TempResponsibleUser   *User     `gorm:"foreignKey:TempResponsibleUserId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAudience struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	// selection values, NoneId for none
	ResponsibleUserId     *int `json:"responsible_user_id"`
	TempResponsibleUserId *int `json:"temp_responsible_user_id"`
}

// AudienceSelection is how an audience is shown in an edit form.
type AudienceSelection struct {
	Name                  string `json:"name"`
	ShortName             string `json:"short_name"`
	ResponsibleUserId     int    `json:"responsible_user_id"`
	TempResponsibleUserId int    `json:"temp_responsible_user_id"`
}

func (a Audience) GetId() int { return a.ID }

func (a Audience) option() Option {
	if a.ShortName != "" {
		return Option{Id: a.ID, Name: a.ShortName}
	}
	return Option{Id: a.ID, Name: a.Name}
}

func (a Audience) Selection() AudienceSelection {
	return AudienceSelection{
		Name:                  a.Name,
		ShortName:             a.ShortName,
		ResponsibleUserId:     OptionId(a.ResponsibleUserId),
		TempResponsibleUserId: OptionId(a.TempResponsibleUserId),
	}
}

func (input *NewAudience) validate(ctx context.Context) error {
	input.Name = strings.TrimSpace(input.Name)
	input.ShortName = strings.TrimSpace(input.ShortName)
	if err := utils.CheckFields(
		utils.FieldRule{Field: "name", Value: input.Name, MaxLen: 255, Required: true},
		utils.FieldRule{Field: "short_name", Value: input.ShortName, MaxLen: 50},
	); err != nil {
		return err
	}
	input.ResponsibleUserId = OptionRef(input.ResponsibleUserId)
	input.TempResponsibleUserId = OptionRef(input.TempResponsibleUserId)
	if input.ResponsibleUserId == nil && input.TempResponsibleUserId == nil {
		return utils.NewValidationError("responsible_user_id", "a responsible or temporary responsible user is required")
	}
	for _, id := range []*int{input.ResponsibleUserId, input.TempResponsibleUserId} {
		if id == nil {
			continue
		}
		if err := utils.ValidateResourceId[User](ctx, "user", *id); err != nil {
			return storeError(ctx, "user", "NewAudience.validate", err)
		}
	}
	return nil
}

func (input *NewAudience) apply(a *Audience) {
	a.Name = input.Name
	a.ShortName = input.ShortName
	a.ResponsibleUserId = input.ResponsibleUserId
	a.TempResponsibleUserId = input.TempResponsibleUserId
}

func CreateAudience(ctx context.Context, input *NewAudience) (*Audience, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	var audience Audience
	input.apply(&audience)

	db := config.GetDB()
	if err := db.WithContext(ctx).Omit("ResponsibleUser", "TempResponsibleUser").Create(&audience).Error; err != nil {
		return nil, storeError(ctx, "audience", "CreateAudience", err)
	}
	invalidateList[Audience]()
	publishSaved("audience", audience.ID)
	return &audience, nil
}

func UpdateAudience(ctx context.Context, id int, input *NewAudience) (*Audience, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	audience, err := GetResource[Audience](ctx, "audience", id)
	if err != nil {
		if utils.IsStale(err) {
			publishDeleted("audience", id)
		}
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(audience).Updates(map[string]interface{}{
		"name":                     input.Name,
		"short_name":               input.ShortName,
		"responsible_user_id":      input.ResponsibleUserId,
		"temp_responsible_user_id": input.TempResponsibleUserId,
	}).Error
	if err != nil {
		return nil, storeError(ctx, "audience", "UpdateAudience", err)
	}
	input.apply(audience)
	invalidateList[Audience]()
	publishSaved("audience", id)
	return audience, nil
}

func DeleteAudience(ctx context.Context, id int) (*Audience, error) {
	return deleteRecord[Audience](ctx, "audience", id, audienceDeleteRules, nil)
}

func GetAudience(ctx context.Context, id int) (*Audience, error) {
	return GetResource[Audience](ctx, "audience", id)
}

func GetAudiences(ctx context.Context, search *string) ([]*Audience, error) {
	db := config.GetDB()
	var results []*Audience

	dbCtx := db.WithContext(ctx)
	if search != nil && strings.TrimSpace(*search) != "" {
		like := "%" + strings.TrimSpace(*search) + "%"
		dbCtx = dbCtx.Where("name LIKE ? OR short_name LIKE ?", like, like)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, storeError(ctx, "audience", "GetAudiences", err)
	}
	return results, nil
}

func AudienceOptions(ctx context.Context) ([]Option, error) {
	audiences, err := ListAllResource[Audience](ctx, "name")
	if err != nil {
		return nil, err
	}
	return namedOptions(audiences), nil
}
