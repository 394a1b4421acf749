package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// @Summary      Export turns as CSV
// @Description  Full turn table grouped by branch, UTF-8 with BOM for spreadsheet apps.
// @Tags         export
// @Produce      text/csv
// @Success      200  {string}  string
// @Router       /api/v1/export/turni.csv [get]
// @Security     BearerAuth
func (h *Handler) exportTurniCSV(c *gin.Context) {
	data, err := h.services.Export.TurniCSV(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to export csv", "export_csv_failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="programmazione_turni.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// @Summary      Export turns as XLSX
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {string}  string
// @Router       /api/v1/export/turni.xlsx [get]
// @Security     BearerAuth
func (h *Handler) exportTurniXLSX(c *gin.Context) {
	data, err := h.services.Export.TurniXLSX(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to export xlsx", "export_xlsx_failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="programmazione_turni.xlsx"`)
	c.Data(http.StatusOK, xlsxMIME, data)
}
