package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rmitchellscott/halftone/internal/bitmap"
	"github.com/rmitchellscott/halftone/internal/database"
	"github.com/rmitchellscott/halftone/internal/imageprocessing"
)

// ListJobsHandler returns the job history, newest first
func (h *Handler) ListJobsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	jobs, total, err := h.Jobs.List(database.ListOptions{
		Status: database.JobStatus(c.Query("status")),
		Mode:   c.Query("mode"),
		Limit:  limit,
		Offset: max(offset, 0),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": total})
}

func (h *Handler) loadJob(c *gin.Context) (*database.DitherJob, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return nil, false
	}
	job, err := h.Jobs.Get(id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return job, true
}

// GetJobHandler returns a single job
func (h *Handler) GetJobHandler(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, job)
}

// GetJobImageHandler returns a job's stored output as the original bitmap,
// or as PNG with ?format=png
func (h *Handler) GetJobImageHandler(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	if job.Status != database.JobSucceeded || h.Outputs == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Job has no stored output", "status": job.Status})
		return
	}

	rc, err := h.Outputs.Open(c.Request.Context(), job.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		respondError(c, err)
		return
	}

	switch format := c.DefaultQuery("format", "bmp"); format {
	case "bmp":
		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", job.ID.String()+".bmp"))
		c.Data(http.StatusOK, "image/bmp", data)
	case "png":
		img, err := bitmap.Read(bytes.NewReader(data))
		if err != nil {
			respondError(c, err)
			return
		}
		png, err := imageprocessing.EncodePNG(img.Grid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", job.ID.String()+".png"))
		c.Data(http.StatusOK, "image/png", png)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format: " + format})
	}
}

// StatsHandler summarizes the job history
func (h *Handler) StatsHandler(c *gin.Context) {
	stats, err := database.GetJobStats(h.DB)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
