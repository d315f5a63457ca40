package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rmitchellscott/halftone/internal/bitmap"
	"github.com/rmitchellscott/halftone/internal/config"
	"github.com/rmitchellscott/halftone/internal/database"
	"github.com/rmitchellscott/halftone/internal/dither"
	"github.com/rmitchellscott/halftone/internal/logging"
	"github.com/rmitchellscott/halftone/internal/middleware"
	"github.com/rmitchellscott/halftone/internal/storage"
	"github.com/rmitchellscott/halftone/internal/version"
)

// Handler holds what the API handlers share
type Handler struct {
	DB      *gorm.DB
	Jobs    *database.JobService
	Outputs *storage.OutputStore
	Presets *config.Presets
	Workers int

	MaxUploadBytes int64
}

// New creates a Handler backed by db and outputs
func New(db *gorm.DB, outputs *storage.OutputStore, presets *config.Presets, workers int) *Handler {
	if presets == nil {
		presets = config.DefaultPresets()
	}
	return &Handler{
		DB:      db,
		Jobs:    database.NewJobService(db),
		Outputs: outputs,
		Presets: presets,
		Workers: workers,
	}
}

// Register mounts every route on r. protect guards the dithering and job
// routes; the catalog and health routes stay open.
func (h *Handler) Register(r gin.IRouter, protect ...gin.HandlerFunc) {
	r.GET("/health", HealthHandler)

	api := r.Group("/api")
	api.GET("/version", VersionHandler)
	api.GET("/modes", ModesHandler)
	api.GET("/palettes", PalettesHandler)
	api.GET("/presets", h.PresetsHandler)

	guarded := api.Group("", protect...)
	guarded.POST("/dither", middleware.RequestSizeLimit(h.MaxUploadBytes), h.DitherHandler)
	guarded.GET("/jobs", h.ListJobsHandler)
	guarded.GET("/jobs/:id", h.GetJobHandler)
	guarded.GET("/jobs/:id/image", h.GetJobImageHandler)
	guarded.GET("/stats", h.StatsHandler)
}

// HealthHandler reports liveness
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// VersionHandler returns build information
func VersionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// statusFor maps pipeline errors onto HTTP status codes
func statusFor(err error) int {
	var (
		configErr *dither.ConfigError
		decodeErr *bitmap.DecodeError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &configErr):
		return http.StatusBadRequest
	case errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &sizeErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError writes err as a JSON error body. Internal errors are logged
// and reported without detail.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.ErrorWithComponent(logging.ComponentAPI, "request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
