package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/workflow"
)

// byIdHandler serves GET and DELETE on /:id; both answer with the record.
func byIdHandler[T any](fn func(ctx context.Context, id int) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		result, err := fn(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func createHandler[In any, Out any](fn func(ctx context.Context, input *In) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		result, err := fn(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func updateHandler[In any, Out any](fn func(ctx context.Context, id int, input *In) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		result, err := fn(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// lockedUpdate holds the edit lock of the record for the save, the same lock its edit
// sessions commit under.
func lockedUpdate[In any, Out any](kind string, fn func(ctx context.Context, id int, input *In) (Out, error)) func(ctx context.Context, id int, input *In) (Out, error) {
	return func(ctx context.Context, id int, input *In) (Out, error) {
		release, err := workflow.AcquireEditLock(ctx, kind, id)
		if err != nil {
			var zero Out
			return zero, err
		}
		defer release()
		return fn(ctx, id, input)
	}
}

func optionsHandler[T any](fn func(ctx context.Context) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := fn(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
