package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/models"
)

// registerLookup mounts list, options, get, create, update and delete for one named lookup.
func registerLookup[T any, PT models.LookupRow[T]](api *gin.RouterGroup, path string) {
	group := api.Group(path)
	group.GET("", listLookupHandler[T, PT]())
	group.GET("/options", lookupOptionsHandler[T, PT]())
	group.GET("/:id", getLookupHandler[T, PT]())
	group.POST("", createLookupHandler[T, PT]())
	group.PUT("/:id", updateLookupHandler[T, PT]())
	group.DELETE("/:id", deleteLookupHandler[T, PT]())
}

func RegisterLookups(api *gin.RouterGroup) {
	registerLookup[models.Direction](api, "/directions")
	registerLookup[models.Status](api, "/statuses")
	registerLookup[models.EquipmentModel](api, "/equipment-models")
	registerLookup[models.TypeEquipment](api, "/types-equipment")
	registerLookup[models.SoftwareDeveloper](api, "/software-developers")
}

func listLookupHandler[T any, PT models.LookupRow[T]]() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := models.ListLookup[T, PT](c.Request.Context(), queryString(c, "name"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func lookupOptionsHandler[T any, PT models.LookupRow[T]]() gin.HandlerFunc {
	return func(c *gin.Context) {
		options, err := models.LookupOptions[T, PT](c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, options)
	}
}

func getLookupHandler[T any, PT models.LookupRow[T]]() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		row, err := models.GetLookup[T, PT](c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

func createLookupHandler[T any, PT models.LookupRow[T]]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewLookup
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		row, err := models.CreateLookup[T, PT](c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, row)
	}
}

func updateLookupHandler[T any, PT models.LookupRow[T]]() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		var input models.NewLookup
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		row, err := models.UpdateLookup[T, PT](c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

func deleteLookupHandler[T any, PT models.LookupRow[T]]() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		row, err := models.DeleteLookup[T, PT](c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	}
}
