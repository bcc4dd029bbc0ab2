package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/models"
)

func RegisterAudiences(api *gin.RouterGroup) {
	group := api.Group("/audiences")
	group.GET("", func(c *gin.Context) {
		audiences, err := models.GetAudiences(c.Request.Context(), queryString(c, "search"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, audiences)
	})
	group.GET("/options", optionsHandler(models.AudienceOptions))
	group.GET("/:id", byIdHandler(models.GetAudience))
	group.POST("", createHandler(models.CreateAudience))
	group.PUT("/:id", updateHandler(models.UpdateAudience))
	group.DELETE("/:id", byIdHandler(models.DeleteAudience))
}

func RegisterSoftware(api *gin.RouterGroup) {
	group := api.Group("/software")
	group.GET("", func(c *gin.Context) {
		equipmentId, ok := queryInt(c, "equipment_id")
		if !ok {
			return
		}
		softwares, err := models.GetSoftwares(c.Request.Context(), queryString(c, "search"), equipmentId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, softwares)
	})
	group.GET("/:id", byIdHandler(models.GetSoftware))
	group.POST("", createHandler(models.CreateSoftware))
	group.PUT("/:id", updateHandler(models.UpdateSoftware))
	group.DELETE("/:id", byIdHandler(models.DeleteSoftware))
}

func RegisterNetworkSettings(api *gin.RouterGroup) {
	group := api.Group("/network-settings")
	group.GET("", func(c *gin.Context) {
		equipmentId, ok := queryInt(c, "equipment_id")
		if !ok {
			return
		}
		settings, err := models.GetNetworkSettings(c.Request.Context(), queryString(c, "search"), equipmentId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, settings)
	})
	group.GET("/:id", byIdHandler(models.GetNetworkSetting))
	group.POST("", createHandler(models.CreateNetworkSetting))
	group.PUT("/:id", updateHandler(models.UpdateNetworkSetting))
	group.DELETE("/:id", byIdHandler(models.DeleteNetworkSetting))
	// an unreachable host is a normal result, not an error
	group.POST("/:id/probe", byIdHandler(models.ProbeNetworkSetting))
}

func listEquipmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.EquipmentFilter{Search: queryString(c, "search")}
		var ok bool
		if filter.AudienceId, ok = queryInt(c, "audience_id"); !ok {
			return
		}
		if filter.StatusId, ok = queryInt(c, "status_id"); !ok {
			return
		}
		if filter.ResponsibleUserId, ok = queryInt(c, "responsible_user_id"); !ok {
			return
		}
		equipment, err := models.ListEquipment(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, equipment)
	}
}

func RegisterEquipment(api *gin.RouterGroup) {
	group := api.Group("/equipment")
	group.GET("", listEquipmentHandler())
	group.GET("/for-actor", optionsHandler(models.EquipmentForActor))
	group.GET("/:id", byIdHandler(models.GetEquipment))
	group.POST("", createHandler(models.CreateEquipment))
	group.PUT("/:id", updateHandler(lockedUpdate("equipment", models.UpdateEquipment)))
	group.DELETE("/:id", byIdHandler(models.DeleteEquipment))
	group.GET("/:id/history", byIdHandler(models.GetEquipmentHistory))
	group.GET("/:id/consumables", byIdHandler(models.GetEquipmentConsumables))
	group.GET("/:id/acceptance-act", equipmentActHandler())
}

func RegisterConsumables(api *gin.RouterGroup) {
	group := api.Group("/consumables")
	group.GET("", func(c *gin.Context) {
		typeId, ok := queryInt(c, "type_consumable_id")
		if !ok {
			return
		}
		consumables, err := models.GetConsumables(c.Request.Context(), queryString(c, "search"), typeId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, consumables)
	})
	group.GET("/options", optionsHandler(models.ConsumableOptions))
	group.GET("/:id", byIdHandler(models.GetConsumable))
	group.POST("", createHandler(models.CreateConsumable))
	group.PUT("/:id", updateHandler(lockedUpdate("consumables", models.UpdateConsumable)))
	group.DELETE("/:id", byIdHandler(models.DeleteConsumable))
	group.GET("/:id/history", byIdHandler(models.GetConsumableHistory))
	group.GET("/:id/acceptance-act", consumableActHandler())
}

func RegisterTypesConsumables(api *gin.RouterGroup) {
	group := api.Group("/types-consumables")
	group.GET("", func(c *gin.Context) {
		types, err := models.GetTypesConsumables(c.Request.Context(), queryString(c, "search"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, types)
	})
	group.GET("/options", optionsHandler(models.TypeConsumableOptions))
	group.GET("/:id", byIdHandler(models.GetTypeConsumable))
	group.GET("/:id/characteristics", byIdHandler(models.GetCharacteristics))
	group.DELETE("/:id", byIdHandler(models.DeleteTypeConsumable))
}

func RegisterInventories(api *gin.RouterGroup) {
	group := api.Group("/inventories")
	group.GET("", func(c *gin.Context) {
		inventories, err := models.GetInventories(c.Request.Context(), queryString(c, "search"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, inventories)
	})
	group.GET("/:id", byIdHandler(models.GetInventory))
	group.GET("/:id/checks", byIdHandler(models.GetInventoryChecks))
	group.DELETE("/:id", byIdHandler(models.DeleteInventory))
}
