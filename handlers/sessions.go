package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/mmdatafocus/inventory_backend/workflow"
)

// editSession wires one kind of edit (snapshot + original child set) to the
// open, commit and cancel endpoints.
type editSession[E any, In any] struct {
	kind    string
	open    func(ctx context.Context, id int) (*E, error)
	// openFor opens the edit on behalf of another user; nil when the kind has no such edit.
	openFor func(ctx context.Context, id int, userId int) (*E, error)
	parent  func(edit *E) int
	commit  func(ctx context.Context, edit *E, input *In) (interface{}, error)
}

type openSessionRequest struct {
	// Id of the record to edit; 0 opens a new one.
	Id int `json:"id"`
	// UserId selects whose records are edited, for kinds that support it.
	UserId int `json:"user_id"`
}

func (s editSession[E, In]) register(api *gin.RouterGroup, path string) {
	group := api.Group(path + "/sessions")
	group.POST("", s.openHandler())
	group.POST("/:token/commit", s.commitHandler())
	group.DELETE("/:token", s.cancelHandler())
}

func (s editSession[E, In]) openHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req openSessionRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				bindError(c, err)
				return
			}
		}
		if req.Id < 0 || req.UserId < 0 {
			badRequest(c, "invalid id")
			return
		}
		if req.UserId != 0 && s.openFor == nil {
			badRequest(c, "user_id is not supported for "+s.kind)
			return
		}

		ctx := c.Request.Context()
		var edit *E
		var err error
		if req.UserId != 0 {
			edit, err = s.openFor(ctx, req.Id, req.UserId)
		} else {
			edit, err = s.open(ctx, req.Id)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		token, err := models.SaveEditSession(ctx, s.kind, edit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"token": token, "edit": edit})
	}
}

func (s editSession[E, In]) commitHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := c.Param("token")
		edit, err := models.LoadEditSession[E](ctx, s.kind, token)
		if err != nil {
			respondError(c, err)
			return
		}

		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		release, err := workflow.AcquireEditLock(ctx, s.kind, s.parent(edit))
		if err != nil {
			respondError(c, err)
			return
		}
		defer release()

		result, err := s.commit(ctx, edit, &input)
		if err != nil {
			// the session is kept for a retry unless its parent is gone or the store has to be reconnected
			var connectionErr *utils.ConnectionError
			if utils.IsStale(err) || errors.As(err, &connectionErr) {
				_ = models.DropEditSession(ctx, token)
			}
			respondError(c, err)
			return
		}
		_ = models.DropEditSession(ctx, token)
		c.JSON(http.StatusOK, result)
	}
}

func (s editSession[E, In]) cancelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := c.Param("token")
		if _, err := models.LoadEditSession[E](ctx, s.kind, token); err != nil {
			respondError(c, err)
			return
		}
		if err := models.DropEditSession(ctx, token); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func RegisterEditSessions(api *gin.RouterGroup) {
	editSession[models.EquipmentEdit, models.NewEquipment]{
		kind:   "equipment",
		open:   models.OpenEquipmentEdit,
		parent: func(edit *models.EquipmentEdit) int { return edit.Id },
		commit: func(ctx context.Context, edit *models.EquipmentEdit, input *models.NewEquipment) (interface{}, error) {
			return edit.Commit(ctx, input)
		},
	}.register(api, "/equipment")

	editSession[models.EquipmentConsumablesEdit, []models.EquipmentConsumable]{
		kind:   "equipment-consumables",
		open:   models.OpenEquipmentConsumablesEdit,
		parent: func(edit *models.EquipmentConsumablesEdit) int { return edit.EquipmentId },
		commit: func(ctx context.Context, edit *models.EquipmentConsumablesEdit, input *[]models.EquipmentConsumable) (interface{}, error) {
			return edit.Commit(ctx, *input)
		},
	}.register(api, "/equipment-consumables")

	editSession[models.ConsumableEdit, models.NewConsumable]{
		kind:   "consumables",
		open:   models.OpenConsumableEdit,
		parent: func(edit *models.ConsumableEdit) int { return edit.Id },
		commit: func(ctx context.Context, edit *models.ConsumableEdit, input *models.NewConsumable) (interface{}, error) {
			return edit.Commit(ctx, input)
		},
	}.register(api, "/consumables")

	editSession[models.TypeConsumableEdit, models.NewTypeConsumable]{
		kind:   "types-consumables",
		open:   models.OpenTypeConsumableEdit,
		parent: func(edit *models.TypeConsumableEdit) int { return edit.Id },
		commit: func(ctx context.Context, edit *models.TypeConsumableEdit, input *models.NewTypeConsumable) (interface{}, error) {
			return edit.Commit(ctx, input)
		},
	}.register(api, "/types-consumables")

	editSession[models.InventoryEdit, models.NewInventory]{
		kind:    "inventories",
		open:    models.OpenInventoryEdit,
		openFor: models.OpenInventoryEditFor,
		parent:  func(edit *models.InventoryEdit) int { return edit.Id },
		commit:  func(ctx context.Context, edit *models.InventoryEdit, input *models.NewInventory) (interface{}, error) {
			return edit.Commit(ctx, input)
		},
	}.register(api, "/inventories")
}
