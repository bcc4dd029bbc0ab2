package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/models/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func equipmentActHandler() gin.HandlerFunc {
	return acceptanceActHandler(reports.EquipmentAcceptanceAct)
}

func consumableActHandler() gin.HandlerFunc {
	return acceptanceActHandler(reports.ConsumableAcceptanceAct)
}

func acceptanceActHandler(build func(ctx context.Context, id int) (*reports.AcceptanceAct, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramId(c)
		if !ok {
			return
		}
		act, err := build(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		f, err := act.Workbook()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()

		c.Header("Content-Type", xlsxContentType)
		c.Header("Content-Disposition", "attachment; filename="+url.PathEscape(act.FileName()))
		c.Status(http.StatusOK)
		if err := f.Write(c.Writer); err != nil {
			_ = c.Error(err)
		}
	}
}
