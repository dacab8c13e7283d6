// Package server exposes the simulation over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"contract-ca/internal/sim"
	"contract-ca/internal/sims/validation"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SeedRequest is the body of POST /v1/seed.
type SeedRequest struct {
	Pattern string `json:"pattern" binding:"required"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Z       int    `json:"z"`
}

// Handlers serves the HTTP routes for one simulation.
type Handlers struct {
	sim    *sim.Simulation
	logger *slog.Logger
}

// NewHandlers binds handlers to s.
func NewHandlers(s *sim.Simulation, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{sim: s, logger: logger.With("component", "server")}
}

// NewRouter builds the gin engine. ws may be nil to disable /ws; gatherer
// may be nil to disable /metrics.
func NewRouter(h *Handlers, ws http.Handler, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware("contract-ca"))
	RegisterRoutes(router.Group("/v1"), h)
	if ws != nil {
		router.GET("/ws", gin.WrapH(ws))
	}
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return router
}

// RegisterRoutes mounts the API on group.
func RegisterRoutes(group *gin.RouterGroup, h *Handlers) {
	group.GET("/status", h.HandleStatus)
	group.GET("/patterns", h.HandlePatterns)
	group.GET("/templates", h.HandleTemplates)
	group.GET("/history", h.HandleHistory)
	group.GET("/grid", h.HandleGrid)
	group.GET("/audit", h.HandleAudit)
	group.GET("/audit/changes", h.HandleStateChanges)
	group.POST("/step", h.HandleStep)
	group.POST("/seed", h.HandleSeed)
}

// HandleStatus handles GET /v1/status.
func (h *Handlers) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.sim.Status())
}

// HandlePatterns handles GET /v1/patterns.
func (h *Handlers) HandlePatterns(c *gin.Context) {
	c.JSON(http.StatusOK, h.sim.AnalyzePatterns())
}

// HandleTemplates handles GET /v1/templates.
func (h *Handlers) HandleTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, validation.Templates())
}

// HandleHistory handles GET /v1/history.
func (h *Handlers) HandleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.sim.History())
}

// HandleGrid handles GET /v1/grid. With ?layer=z only that slice is
// returned.
func (h *Handlers) HandleGrid(c *gin.Context) {
	grid := h.sim.Engine().SerializeGrid()
	raw := c.Query("layer")
	if raw == "" {
		c.JSON(http.StatusOK, grid)
		return
	}
	z, err := strconv.Atoi(raw)
	if err != nil || z < 0 || z >= len(grid) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "layer out of range", Code: "INVALID_LAYER"})
		return
	}
	c.JSON(http.StatusOK, grid[z])
}

// HandleAudit handles GET /v1/audit. ?verify=true also checks the chain.
func (h *Handlers) HandleAudit(c *gin.Context) {
	log := h.sim.Audit()
	resp := gin.H{"stats": log.Stats(), "entries": log.Entries()}
	if c.Query("verify") == "true" {
		if err := log.Verify(); err != nil {
			resp["verified"] = false
			resp["error"] = err.Error()
		} else {
			resp["verified"] = true
		}
	}
	c.JSON(http.StatusOK, resp)
}

// HandleStateChanges handles GET /v1/audit/changes?generation=n.
func (h *Handlers) HandleStateChanges(c *gin.Context) {
	var gen uint64
	if raw := c.Query("generation"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid generation", Code: "INVALID_GENERATION"})
			return
		}
		gen = parsed
	}
	c.JSON(http.StatusOK, h.sim.Audit().StateChanges(gen))
}

// HandleStep handles POST /v1/step?n=k.
func (h *Handlers) HandleStep(c *gin.Context) {
	n := 1
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "n must be a positive integer", Code: "INVALID_COUNT"})
			return
		}
		n = parsed
	}
	done, err := h.sim.Run(c.Request.Context(), n)
	if err != nil && !errors.Is(err, sim.ErrMaxGenerations) {
		status, code := http.StatusInternalServerError, "STEP_FAILED"
		if errors.Is(err, sim.ErrAlreadyRunning) {
			status, code = http.StatusConflict, "RUNNING"
		}
		h.logger.Warn("step failed", "error", err, "completed", done)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}
	resp := gin.H{"completed": done, "status": h.sim.Status()}
	if err != nil {
		resp["stopped"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// HandleSeed handles POST /v1/seed.
func (h *Handlers) HandleSeed(c *gin.Context) {
	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	err := h.sim.SeedPattern(req.Pattern, req.X, req.Y, req.Z)
	switch {
	case errors.Is(err, validation.ErrUnknownPattern):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "UNKNOWN_PATTERN"})
	case errors.Is(err, validation.ErrIndexOutOfBounds):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "OUT_OF_BOUNDS"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "SEED_FAILED"})
	default:
		h.logger.Info("pattern seeded", "pattern", req.Pattern, "x", req.X, "y", req.Y, "z", req.Z)
		c.JSON(http.StatusOK, h.sim.Status())
	}
}
