package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mizuchi/internal/models"
	"mizuchi/internal/repository"
	"mizuchi/internal/service"
)

// @Summary      List turns
// @Tags         turni
// @Produce      json
// @Param        giro_id  query  int  false  "Filter by round"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/turni [get]
// @Security     BearerAuth
func (h *Handler) listTurni(c *gin.Context) {
	giroID, ok := optionalIDQuery(c, "giro_id")
	if !ok {
		return
	}
	turni, err := h.services.Schedule.ListTurni(c.Request.Context(), giroID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to list turni", "turni_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(turni), "turni": turni})
}

// @Summary      Create turn
// @Description  Ordine must be unique within the turn's giro.
// @Tags         turni
// @Accept       json
// @Produce      json
// @Param        input  body  models.Turno  true  "turn"
// @Success      200  {object}  map[string]interface{}  "id"
// @Failure      409  {object}  map[string]string       "ordine already taken"
// @Router       /api/v1/turni [post]
// @Security     BearerAuth
func (h *Handler) createTurno(c *gin.Context) {
	var t models.Turno
	if ok := h.bindJSONOrBadRequest(c, &t); !ok {
		return
	}
	ctx := c.Request.Context()
	id, err := h.services.Schedule.CreateTurno(ctx, t)
	if err != nil {
		writeTurnoError(c, err)
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditCreate, "turno", id, t.Utilizzatore)
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) getTurno(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t, err := h.services.Schedule.GetTurno(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTurnoNotFound) || errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "turno not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load turno", "turno_get_failed", err, "id", id)
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "turno not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) updateTurno(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var t models.Turno
	if ok := h.bindJSONOrBadRequest(c, &t); !ok {
		return
	}
	t.ID = id
	ctx := c.Request.Context()
	if err := h.services.Schedule.UpdateTurno(ctx, t); err != nil {
		writeTurnoError(c, err)
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditUpdate, "turno", id, t.Utilizzatore)
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) deleteTurno(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Schedule.DeleteTurno(ctx, id); err != nil {
		writeRepoError(c, err, "turno")
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditDelete, "turno", id, "")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type setProprietariInput struct {
	Proprietari []models.Proprietario `json:"proprietari"`
}

// @Summary      Replace turn owners
// @Description  Replaces the owner list of a turn. The turn's durata becomes the sum of owner tempo values.
// @Tags         turni
// @Accept       json
// @Produce      json
// @Param        input  body  setProprietariInput  true  "owners"
// @Success      200  {object}  map[string]string
// @Router       /api/v1/turni/{id}/proprietari [put]
// @Security     BearerAuth
func (h *Handler) setProprietari(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in setProprietariInput
	if ok := h.bindJSONOrBadRequest(c, &in); !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Schedule.SetProprietari(ctx, id, in.Proprietari); err != nil {
		writeRepoError(c, err, "turno")
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditUpdate, "turno", id, "proprietari replaced")
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// writeTurnoError adds the duplicate-ordine conflict case on top of the
// generic repository mapping.
func writeTurnoError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrOrdineTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "ordine already taken for this giro"})
		return
	}
	writeRepoError(c, err, "turno")
}
