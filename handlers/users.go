package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/models"
)

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		info, err := models.Login(c.Request.Context(), req.Login, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var role *models.UserRole
		if value := queryString(c, "role"); value != nil {
			r := models.UserRole(*value)
			if !r.IsValid() {
				badRequest(c, "invalid role")
				return
			}
			role = &r
		}
		users, err := models.GetUsers(c.Request.Context(), queryString(c, "search"), role)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func RegisterUsers(api *gin.RouterGroup) {
	group := api.Group("/users")
	group.GET("", listUsersHandler())
	group.GET("/options", optionsHandler(models.UserOptions))
	group.GET("/:id", byIdHandler(models.GetUser))
	group.POST("", createHandler(models.CreateUser))
	// the response carries reauthenticate when the actor changed their own credentials
	group.PUT("/:id", updateHandler(models.UpdateUser))
	group.DELETE("/:id", byIdHandler(models.DeleteUser))
}
