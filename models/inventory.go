package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/appctx"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/reconcile"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Inventory is an audit campaign. Users record what they found as inventory checks.
type Inventory struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	UserId    int       `gorm:"index;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type InventoryCheck struct {
	ID          int        `gorm:"primary_key" json:"id"`
	InventoryId int        `gorm:"index;not null" json:"inventory_id"`
	Inventory   *Inventory `gorm:"foreignKey:InventoryId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	EquipmentId int        `gorm:"index;not null" json:"equipment_id"`
	Equipment   *Equipment `gorm:"foreignKey:EquipmentId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	UserId      int        `gorm:"index;not null" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CheckDate   time.Time  `gorm:"not null" json:"check_date"`
	Comment     string     `gorm:"size:255" json:"comment"`
}

func (i Inventory) GetId() int { return i.ID }

func (c InventoryCheck) GetId() int { return c.ID }

type NewInventory struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	// Checks is the acting user's working set; other users' checks are not touched.
	Checks []InventoryCheck `json:"checks"`
}

type InventoryHeader struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// InventoryEdit is an open edit of one inventory by one user. UserId is whose checks are
// edited; administrators may edit another user's checks.
type InventoryEdit struct {
	Id            int              `json:"id"`
	UserId        int              `json:"user_id"`
	Header        InventoryHeader  `json:"header"`
	CanEditHeader bool             `json:"can_edit_header"`
	Original      []InventoryCheck `json:"original"`
	Equipment     []Option         `json:"equipment"`
}

type InventoryResult struct {
	Inventory *Inventory        `json:"inventory"`
	Checks    []InventoryCheck  `json:"checks"`
	Changes   *reconcile.Result `json:"changes"`
}

func (i Inventory) header() InventoryHeader {
	return InventoryHeader{Name: i.Name, StartDate: i.StartDate, EndDate: i.EndDate}
}

func (h InventoryHeader) equal(other InventoryHeader) bool {
	return h.Name == other.Name && h.StartDate.Equal(other.StartDate) && h.EndDate.Equal(other.EndDate)
}

// inventoryCheckModified compares check dates to the minute, the precision they are entered with.
func inventoryCheckModified(before InventoryCheck, after InventoryCheck) bool {
	return !before.CheckDate.Truncate(time.Minute).Equal(after.CheckDate.Truncate(time.Minute)) ||
		before.Comment != after.Comment ||
		before.EquipmentId != after.EquipmentId
}

func (input *NewInventory) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.CheckFields(utils.FieldRule{Field: "name", Value: input.Name, MaxLen: 255, Required: true}); err != nil {
		return err
	}
	if input.StartDate.IsZero() {
		return utils.NewValidationError("start_date", "field is required")
	}
	if input.EndDate.IsZero() {
		return utils.NewValidationError("end_date", "field is required")
	}
	if input.EndDate.Before(input.StartDate) {
		return utils.NewValidationError("end_date", "must not be before the start date")
	}

	now := time.Now()
	seen := make(map[int]bool, len(input.Checks))
	for i := range input.Checks {
		check := &input.Checks[i]
		check.Comment = strings.TrimSpace(check.Comment)
		if check.EquipmentId <= 0 {
			return utils.NewValidationError("checks.equipment_id", "equipment is required")
		}
		if seen[check.EquipmentId] {
			return utils.NewValidationError("checks.equipment_id", "the equipment is already checked")
		}
		seen[check.EquipmentId] = true
		if err := utils.CheckFields(utils.FieldRule{Field: "checks.comment", Value: check.Comment, MaxLen: 255}); err != nil {
			return err
		}
		if check.CheckDate.IsZero() {
			check.CheckDate = now
		}
		check.CheckDate = check.CheckDate.Truncate(time.Minute)
	}
	return nil
}

func (input *NewInventory) header() InventoryHeader {
	return InventoryHeader{Name: input.Name, StartDate: input.StartDate, EndDate: input.EndDate}
}

// userChecks loads the checks of one inventory recorded by one user.
func userChecks(db *gorm.DB, inventoryId int, userId int) ([]InventoryCheck, error) {
	var results []InventoryCheck
	err := db.Where("inventory_id = ? AND user_id = ?", inventoryId, userId).Order("check_date").Order("id").Find(&results).Error
	return results, err
}

func responsibleEquipment(db *gorm.DB, userId int) *gorm.DB {
	return db.Where("responsible_user_id = ? OR temp_responsible_user_id = ?", userId, userId)
}

// checkUserEquipment refuses checks of equipment the user is not (temporarily) responsible for.
// Only checks that are new or point at other equipment than before are looked at.
func checkUserEquipment(tx *gorm.DB, userId int, original []InventoryCheck, working []InventoryCheck) error {
	before := make(map[int]int, len(original))
	for _, check := range original {
		before[check.ID] = check.EquipmentId
	}
	ids := make([]int, 0, len(working))
	for _, check := range working {
		if equipmentId, ok := before[check.ID]; ok && check.ID != reconcile.Unsaved && equipmentId == check.EquipmentId {
			continue
		}
		ids = append(ids, check.EquipmentId)
	}
	if len(ids) == 0 {
		return nil
	}

	count, err := utils.CountWhere[Equipment](tx, "id IN ? AND (responsible_user_id = ? OR temp_responsible_user_id = ?)", ids, userId, userId)
	if err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return utils.NewValidationError("checks.equipment_id", "the user is not responsible for the equipment")
	}
	return nil
}

// EquipmentForActor lists the equipment the actor can check: everything for administrators,
// otherwise what the actor is responsible for.
func EquipmentForActor(ctx context.Context) ([]Option, error) {
	actor, err := utils.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	if IsAdministrator(actor) {
		return equipmentOptions(ctx, 0)
	}
	return equipmentOptions(ctx, actor.UserId)
}

// equipmentOptions lists the equipment userId is responsible for, or all of it for 0.
func equipmentOptions(ctx context.Context, userId int) ([]Option, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Select("id", "name", "inventory_number")
	if userId != 0 {
		dbCtx = responsibleEquipment(dbCtx, userId)
	}
	var rows []*Equipment
	if err := dbCtx.Order("name").Find(&rows).Error; err != nil {
		return nil, storeError(ctx, "equipment", "EquipmentForActor", err)
	}
	return namedOptions(rows), nil
}

// OpenInventoryEdit loads the inventory header and the actor's checks. Only administrators
// may open a new inventory.
func OpenInventoryEdit(ctx context.Context, id int) (*InventoryEdit, error) {
	return OpenInventoryEditFor(ctx, id, 0)
}

// OpenInventoryEditFor loads the checks userId recorded in the inventory; 0 means the actor.
// Editing another user's checks is reserved to administrators, and only that user's
// equipment is offered.
func OpenInventoryEditFor(ctx context.Context, id int, userId int) (*InventoryEdit, error) {
	actor, err := utils.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	isAdmin := IsAdministrator(actor)
	if id == 0 && !isAdmin {
		return nil, utils.ErrPermissionDenied
	}
	if userId == 0 {
		userId = actor.UserId
	}
	if userId != actor.UserId {
		if !isAdmin {
			return nil, utils.ErrPermissionDenied
		}
		if _, err := GetResource[User](ctx, "user", userId); err != nil {
			if utils.IsStale(err) {
				return nil, utils.NewValidationError("user_id", "the user does not exist")
			}
			return nil, err
		}
	}

	edit := &InventoryEdit{Id: id, UserId: userId, CanEditHeader: isAdmin}
	if id != 0 {
		inventory, err := GetResource[Inventory](ctx, "inventory", id)
		if err != nil {
			return nil, err
		}
		edit.Header = inventory.header()

		db := config.GetDB()
		edit.Original, err = userChecks(db.WithContext(ctx), id, userId)
		if err != nil {
			return nil, storeError(ctx, "inventory check", "OpenInventoryEdit", err)
		}
	}

	if userId == actor.UserId {
		edit.Equipment, err = EquipmentForActor(ctx)
	} else {
		edit.Equipment, err = equipmentOptions(ctx, userId)
	}
	if err != nil {
		return nil, err
	}
	return edit, nil
}

// equipmentRestriction names the user whose equipment bounds the checks, or 0 when any
// equipment may be checked.
func (edit *InventoryEdit) equipmentRestriction(actor appctx.Actor) int {
	if edit.UserId != actor.UserId {
		return edit.UserId
	}
	if IsAdministrator(actor) {
		return 0
	}
	return actor.UserId
}

// Commit saves the header (administrators only) and reconciles the checks of the edited user.
func (edit *InventoryEdit) Commit(ctx context.Context, input *NewInventory) (*InventoryResult, error) {
	ctx, span := tracer.Start(ctx, "models.CommitInventory")
	defer span.End()

	actor, err := utils.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	isAdmin := IsAdministrator(actor)
	if edit.Id == 0 && !isAdmin {
		return nil, utils.ErrPermissionDenied
	}
	if edit.UserId == 0 {
		edit.UserId = actor.UserId
	}
	if edit.UserId != actor.UserId && !isAdmin {
		return nil, utils.ErrPermissionDenied
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	headerChanged := !edit.Header.equal(input.header())
	if edit.Id != 0 && headerChanged && !isAdmin {
		return nil, utils.ErrPermissionDenied
	}

	equipmentIds := make([]int, 0, len(input.Checks))
	for _, check := range input.Checks {
		equipmentIds = append(equipmentIds, check.EquipmentId)
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storeError(ctx, "inventory", "CommitInventory", tx.Error)
	}

	if err := utils.ValidateResourcesId[Equipment](tx, equipmentIds); err != nil {
		tx.Rollback()
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.NewValidationError("checks.equipment_id", "the equipment no longer exists")
		}
		return nil, storeError(ctx, "inventory", "CommitInventory", err)
	}
	if userId := edit.equipmentRestriction(actor); userId != 0 {
		if err := checkUserEquipment(tx, userId, edit.Original, input.Checks); err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "inventory check", "CommitInventory", err)
		}
	}

	var inventory *Inventory
	if edit.Id == 0 {
		inventory = &Inventory{
			Name:      input.Name,
			StartDate: input.StartDate,
			EndDate:   input.EndDate,
			UserId:    actor.UserId,
		}
		if err := tx.Omit(clause.Associations).Create(inventory).Error; err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "inventory", "CommitInventory", err)
		}
	} else {
		inventory, err = loadForChange[Inventory](tx, "inventory", edit.Id)
		if err != nil {
			tx.Rollback()
			return nil, storeError(ctx, "inventory", "CommitInventory", err)
		}
		if headerChanged {
			err = tx.Model(inventory).Updates(map[string]interface{}{
				"name":       input.Name,
				"start_date": input.StartDate,
				"end_date":   input.EndDate,
			}).Error
			if err != nil {
				tx.Rollback()
				return nil, storeError(ctx, "inventory", "CommitInventory", err)
			}
			inventory.Name = input.Name
			inventory.StartDate = input.StartDate
			inventory.EndDate = input.EndDate
		}
	}

	changes, err := reconcileChildren(ctx, tx, "inventory check", edit.Original, input.Checks, inventoryCheckModified,
		func(c *InventoryCheck) map[string]interface{} {
			return map[string]interface{}{
				"equipment_id": c.EquipmentId,
				"check_date":   c.CheckDate,
				"comment":      c.Comment,
			}
		},
		func(c *InventoryCheck) {
			c.InventoryId = inventory.ID
			c.UserId = edit.UserId
		},
		nil)
	if err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "inventory check", "CommitInventory", err)
	}

	saved, err := userChecks(tx, inventory.ID, edit.UserId)
	if err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "inventory check", "CommitInventory", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storeError(ctx, "inventory", "CommitInventory", err)
	}

	edit.Id = inventory.ID
	edit.Header = inventory.header()
	edit.Original = saved
	invalidateList[Inventory]()
	publishSaved("inventory", inventory.ID)
	return &InventoryResult{Inventory: inventory, Checks: saved, Changes: changes}, nil
}

// DeleteInventory is refused while the inventory has checks. Administrators only.
func DeleteInventory(ctx context.Context, id int) (*Inventory, error) {
	actor, err := utils.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !IsAdministrator(actor) {
		return nil, utils.ErrPermissionDenied
	}
	return deleteRecord[Inventory](ctx, "inventory", id, inventoryDeleteRules, nil)
}

func GetInventory(ctx context.Context, id int) (*Inventory, error) {
	return GetResource[Inventory](ctx, "inventory", id)
}

func GetInventories(ctx context.Context, search *string) ([]*Inventory, error) {
	db := config.GetDB()
	var results []*Inventory

	dbCtx := db.WithContext(ctx)
	if search != nil && strings.TrimSpace(*search) != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+strings.TrimSpace(*search)+"%")
	}
	if err := dbCtx.Order("start_date DESC").Find(&results).Error; err != nil {
		return nil, storeError(ctx, "inventory", "GetInventories", err)
	}
	return results, nil
}

// GetInventoryChecks lists the actor's checks; administrators see everybody's.
func GetInventoryChecks(ctx context.Context, inventoryId int) ([]InventoryCheck, error) {
	actor, err := utils.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	var results []InventoryCheck
	if IsAdministrator(actor) {
		err = db.WithContext(ctx).Where("inventory_id = ?", inventoryId).Order("check_date").Order("id").Find(&results).Error
	} else {
		results, err = userChecks(db.WithContext(ctx), inventoryId, actor.UserId)
	}
	if err != nil {
		return nil, storeError(ctx, "inventory check", "GetInventoryChecks", err)
	}
	return results, nil
}
