package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mizuchi/internal/models"
	"mizuchi/internal/service"
)

// optionalIDQuery parses an optional numeric query parameter; zero means
// "not set".
func optionalIDQuery(c *gin.Context, name string) (int64, bool) {
	s := c.Query(name)
	if s == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// ---- consorzi ----

// @Summary      List consortiums
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/consorzi [get]
// @Security     BearerAuth
func (h *Handler) listConsorzi(c *gin.Context) {
	consorzi, err := h.services.Catalog.ListConsorzi(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to list consorzi", "consorzi_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(consorzi), "consorzi": consorzi})
}

func (h *Handler) createConsorzio(c *gin.Context) {
	var m models.Consorzio
	if ok := h.bindJSONOrBadRequest(c, &m); !ok {
		return
	}
	ctx := c.Request.Context()
	id, err := h.services.Catalog.CreateConsorzio(ctx, m)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditCreate, "consorzio", id, m.Nome)
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) getConsorzio(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	m, err := h.services.Catalog.GetConsorzio(c.Request.Context(), id)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load consorzio", "consorzio_get_failed", err, "id", id)
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "consorzio not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) updateConsorzio(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var m models.Consorzio
	if ok := h.bindJSONOrBadRequest(c, &m); !ok {
		return
	}
	m.ID = id
	ctx := c.Request.Context()
	if err := h.services.Catalog.UpdateConsorzio(ctx, m); err != nil {
		writeRepoError(c, err, "consorzio")
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditUpdate, "consorzio", id, m.Nome)
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) deleteConsorzio(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Catalog.DeleteConsorzio(ctx, id); err != nil {
		writeRepoError(c, err, "consorzio")
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditDelete, "consorzio", id, "")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ---- rami ----

// @Summary      List branches
// @Tags         catalog
// @Produce      json
// @Param        consorzio_id  query  int  false  "Filter by consortium"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/rami [get]
// @Security     BearerAuth
func (h *Handler) listRami(c *gin.Context) {
	consorzioID, ok := optionalIDQuery(c, "consorzio_id")
	if !ok {
		return
	}
	rami, err := h.services.Catalog.ListRami(c.Request.Context(), consorzioID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to list rami", "rami_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rami), "rami": rami})
}

func (h *Handler) createRamo(c *gin.Context) {
	var m models.Ramo
	if ok := h.bindJSONOrBadRequest(c, &m); !ok {
		return
	}
	ctx := c.Request.Context()
	id, err := h.services.Catalog.CreateRamo(ctx, m)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditCreate, "ramo", id, m.Nome)
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) getRamo(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	m, err := h.services.Catalog.GetRamo(c.Request.Context(), id)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load ramo", "ramo_get_failed", err, "id", id)
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ramo not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) updateRamo(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var m models.Ramo
	if ok := h.bindJSONOrBadRequest(c, &m); !ok {
		return
	}
	m.ID = id
	ctx := c.Request.Context()
	if err := h.services.Catalog.UpdateRamo(ctx, m); err != nil {
		writeRepoError(c, err, "ramo")
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditUpdate, "ramo", id, m.Nome)
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) deleteRamo(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Catalog.DeleteRamo(ctx, id); err != nil {
		writeRepoError(c, err, "ramo")
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditDelete, "ramo", id, "")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary      Branch rotation schedule
// @Description  Walks giri and turni in order from the branch's abstract start and returns each turn's window.
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, schedule"
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/rami/{id}/schedule [get]
// @Security     BearerAuth
func (h *Handler) getRamoSchedule(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	slots, err := h.services.Schedule.RamoSchedule(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRamoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ramo not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to compute schedule", "schedule_failed", err, "ramo", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(slots), "schedule": slots})
}

// ---- giri ----

// @Summary      List rounds
// @Tags         catalog
// @Produce      json
// @Param        ramo_id  query  int  false  "Filter by branch"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/giri [get]
// @Security     BearerAuth
func (h *Handler) listGiri(c *gin.Context) {
	ramoID, ok := optionalIDQuery(c, "ramo_id")
	if !ok {
		return
	}
	giri, err := h.services.Catalog.ListGiri(c.Request.Context(), ramoID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to list giri", "giri_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(giri), "giri": giri})
}

func (h *Handler) createGiro(c *gin.Context) {
	var m models.Giro
	if ok := h.bindJSONOrBadRequest(c, &m); !ok {
		return
	}
	ctx := c.Request.Context()
	id, err := h.services.Catalog.CreateGiro(ctx, m)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditCreate, "giro", id, m.Nome)
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) getGiro(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	m, err := h.services.Catalog.GetGiro(c.Request.Context(), id)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load giro", "giro_get_failed", err, "id", id)
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "giro not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) updateGiro(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var m models.Giro
	if ok := h.bindJSONOrBadRequest(c, &m); !ok {
		return
	}
	m.ID = id
	ctx := c.Request.Context()
	if err := h.services.Catalog.UpdateGiro(ctx, m); err != nil {
		writeRepoError(c, err, "giro")
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditUpdate, "giro", id, m.Nome)
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) deleteGiro(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Catalog.DeleteGiro(ctx, id); err != nil {
		writeRepoError(c, err, "giro")
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditDelete, "giro", id, "")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
