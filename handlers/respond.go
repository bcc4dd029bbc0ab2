package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/reconcile"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/mmdatafocus/inventory_backend/workflow"
	"github.com/sirupsen/logrus"
)

// StatusForError maps the error taxonomy onto HTTP status codes.
func StatusForError(err error) int {
	var validationErr *utils.ValidationError
	var staleErr *utils.StaleReferenceError
	var referenceErr *utils.ReferenceError
	var uniqueErr *utils.UniqueError
	var connectionErr *utils.ConnectionError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &staleErr), errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &referenceErr), errors.As(err, &uniqueErr):
		return http.StatusConflict
	case errors.As(err, &connectionErr), errors.Is(err, workflow.ErrLockUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, utils.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, utils.ErrNoActor), errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, reconcile.ErrDuplicateKey), errors.Is(err, reconcile.ErrUnknownKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrEditLocked):
		return http.StatusConflict
	case errors.Is(err, models.ErrEditSessionNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...} plus the fields the client needs to react to it.
func respondError(c *gin.Context, err error) {
	status := StatusForError(err)
	body := gin.H{"error": err.Error()}

	var validationErr *utils.ValidationError
	var referenceErr *utils.ReferenceError
	var uniqueErr *utils.UniqueError
	var connectionErr *utils.ConnectionError
	switch {
	case errors.As(err, &validationErr):
		body["field"] = validationErr.Field
	case errors.As(err, &referenceErr):
		body["blocked_by"] = referenceErr.BlockedBy
	case errors.As(err, &uniqueErr):
		body["field"] = uniqueErr.Field
	case errors.As(err, &connectionErr):
		body["reconnect"] = connectionErr.Reconnect
	}

	if status == http.StatusInternalServerError {
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.GetLogger().WithFields(logrus.Fields{
			"field":          "handlers",
			"path":           c.FullPath(),
			"correlation_id": cid,
		}).Error(err.Error())
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// bindError answers a request body that could not be decoded or failed its binding tags.
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
}

// paramId reads a positive :id path parameter, answering 400 itself when it is not one.
func paramId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// queryString returns nil for a missing or empty query value.
func queryString(c *gin.Context, key string) *string {
	value, ok := c.GetQuery(key)
	if !ok || value == "" {
		return nil
	}
	return &value
}

func queryInt(c *gin.Context, key string) (*int, bool) {
	value, ok := c.GetQuery(key)
	if !ok || value == "" {
		return nil, true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		badRequest(c, "invalid "+key)
		return nil, false
	}
	return &n, true
}
