package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mizuchi/internal/models"
	"mizuchi/internal/repository"
)

// @Summary      List people
// @Tags         persone
// @Produce      json
// @Param        q  query  string  false  "Search over nome, cognome, email"
// @Success      200  {object}  map[string]interface{}  "count, persone"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/persone [get]
// @Security     BearerAuth
func (h *Handler) listPersone(c *gin.Context) {
	persone, err := h.services.Registry.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to list persone", "persone_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(persone), "persone": persone})
}

// @Summary      Create a person
// @Tags         persone
// @Accept       json
// @Produce      json
// @Param        body  body      models.Persona  true  "Person"
// @Success      200   {object}  map[string]int64
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/persone [post]
// @Security     BearerAuth
func (h *Handler) createPersona(c *gin.Context) {
	var p models.Persona
	if ok := h.bindJSONOrBadRequest(c, &p); !ok {
		return
	}
	ctx := c.Request.Context()
	id, err := h.services.Registry.Create(ctx, p)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditCreate, "persona", id, p.Cognome+" "+p.Nome)
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) getPersona(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.services.Registry.Get(c.Request.Context(), id)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load persona", "persona_get_failed", err, "id", id)
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "persona not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) updatePersona(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var p models.Persona
	if ok := h.bindJSONOrBadRequest(c, &p); !ok {
		return
	}
	p.ID = id
	ctx := c.Request.Context()
	if err := h.services.Registry.Update(ctx, p); err != nil {
		writeRepoError(c, err, "persona")
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditUpdate, "persona", id, p.Cognome+" "+p.Nome)
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) deletePersona(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Registry.Delete(ctx, id); err != nil {
		writeRepoError(c, err, "persona")
		return
	}
	h.services.AuditLog.Record(ctx, models.AuditDelete, "persona", id, "")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// writeRepoError maps repository.ErrNotFound to 404 and everything else to
// a 400 with the error text.
func writeRepoError(c *gin.Context, err error, entity string) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
