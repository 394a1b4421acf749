package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"mizuchi/internal/config"
	"mizuchi/internal/logger"
	"mizuchi/internal/service"
	"mizuchi/internal/staticfiles"
)

// Handler wires the HTTP layer to services, configuration and logging.
type Handler struct {
	services *service.Service
	cfg      *config.Config
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, cfg *config.Config, log *logger.Logger) *Handler {
	return &Handler{services: services, cfg: cfg, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	if !h.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.allowedHostsMiddleware)

	// Collected assets are served from this process; misses fall through
	// to the router.
	router.Use(staticfiles.Serve(staticfiles.Options{
		URLPrefix: h.cfg.StaticURL,
		Root:      h.cfg.StaticRoot,
		MaxAge:    h.cfg.StaticMaxAge,
	}))
	if h.cfg.Debug {
		// Media uploads are served by the app in debug only.
		router.Use(staticfiles.Serve(staticfiles.Options{
			URLPrefix: h.cfg.MediaURL,
			Root:      h.cfg.MediaRoot,
			MaxAge:    0,
		}))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	auth := router.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
	}

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live audit feed (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerPersonaRoutes(api)
		h.registerCatalogRoutes(api)
		h.registerTurnoRoutes(api)
		h.registerExportRoutes(api)
		api.GET("/audit", h.getAudit)
	}
}

func (h *Handler) registerPersonaRoutes(api *gin.RouterGroup) {
	persone := api.Group("/persone")
	{
		persone.GET("/", h.listPersone)
		persone.POST("/", h.createPersona)
		persone.GET("/:id", h.getPersona)
		persone.PUT("/:id", h.updatePersona)
		persone.DELETE("/:id", h.deletePersona)
	}
}

func (h *Handler) registerCatalogRoutes(api *gin.RouterGroup) {
	consorzi := api.Group("/consorzi")
	{
		consorzi.GET("/", h.listConsorzi)
		consorzi.POST("/", h.createConsorzio)
		consorzi.GET("/:id", h.getConsorzio)
		consorzi.PUT("/:id", h.updateConsorzio)
		consorzi.DELETE("/:id", h.deleteConsorzio)
	}
	rami := api.Group("/rami")
	{
		rami.GET("/", h.listRami)
		rami.POST("/", h.createRamo)
		rami.GET("/:id", h.getRamo)
		rami.PUT("/:id", h.updateRamo)
		rami.DELETE("/:id", h.deleteRamo)
		rami.GET("/:id/schedule", h.getRamoSchedule)
	}
	giri := api.Group("/giri")
	{
		giri.GET("/", h.listGiri)
		giri.POST("/", h.createGiro)
		giri.GET("/:id", h.getGiro)
		giri.PUT("/:id", h.updateGiro)
		giri.DELETE("/:id", h.deleteGiro)
	}
}

func (h *Handler) registerTurnoRoutes(api *gin.RouterGroup) {
	turni := api.Group("/turni")
	{
		turni.GET("/", h.listTurni)
		turni.POST("/", h.createTurno)
		turni.GET("/:id", h.getTurno)
		turni.PUT("/:id", h.updateTurno)
		turni.DELETE("/:id", h.deleteTurno)
		turni.PUT("/:id/proprietari", h.setProprietari)
	}
}

func (h *Handler) registerExportRoutes(api *gin.RouterGroup) {
	export := api.Group("/export")
	{
		export.GET("/turni.csv", h.exportTurniCSV)
		export.GET("/turni.xlsx", h.exportTurniXLSX)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// bindJSONOrBadRequest binds the request body into dst; writes a 400 JSON
// and returns false on failure.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return false
	}
	return true
}

// idParam parses the :id path parameter; writes a 400 and returns false on
// failure.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
