package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rmitchellscott/halftone/internal/database"
	"github.com/rmitchellscott/halftone/internal/dither"
	"github.com/rmitchellscott/halftone/internal/logging"
	"github.com/rmitchellscott/halftone/internal/pipeline"
)

var (
	errUnknownPreset = errors.New("unknown preset")
	errModeRequired  = errors.New("a mode or preset is required")
)

// jobFromQuery builds a pipeline job from the preset, mode, palette and
// reducer query parameters. Explicit parameters override the preset.
func (h *Handler) jobFromQuery(c *gin.Context) (pipeline.Job, error) {
	job := pipeline.Job{}

	if name := c.Query("preset"); name != "" {
		preset, ok := h.Presets.Get(name)
		if !ok {
			return job, &dither.ConfigError{Field: "preset", Value: name, Err: errUnknownPreset}
		}
		job = pipeline.FromPreset(preset)
	}
	if mode := c.Query("mode"); mode != "" {
		job.Mode = mode
	}
	if pal, ok := c.GetQuery("palette"); ok {
		job.Palette = pal
	}
	if reducer, ok := c.GetQuery("reducer"); ok {
		job.Reducer = reducer
	}

	if job.Mode == "" {
		return job, &dither.ConfigError{Field: "mode", Err: errModeRequired}
	}
	if job.Palette == "" && job.Reducer == "" {
		job.Palette = "bw"
	}
	if job.Workers == 0 {
		job.Workers = h.Workers
	}
	return job, nil
}

// readUpload returns the bitmap either from the multipart field "image" or
// from the raw request body
func readUpload(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("image")
		if err != nil {
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(c.Request.Body)
}

// DitherHandler dithers an uploaded bitmap and returns the result. Every
// request that passes validation is recorded as a job, and the job ID is
// returned in X-Job-ID.
func (h *Handler) DitherHandler(c *gin.Context) {
	job, err := h.jobFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	plan, err := job.Plan()
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := readUpload(c)
	if err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image: " + err.Error()})
		return
	}

	record := &database.DitherJob{
		Mode:     plan.Mode.Name,
		Reducer:  plan.Reducer,
		Preset:   c.Query("preset"),
		SourceIP: c.ClientIP(),
	}
	if err := record.SetPalette(plan.Palette.Hex()); err != nil {
		respondError(c, err)
		return
	}
	if err := h.Jobs.Create(record); err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Job-ID", record.ID.String())

	ctx := c.Request.Context()
	var out bytes.Buffer
	res, err := plan.Process(ctx, bytes.NewReader(data), &out)
	if err != nil {
		h.failJob(record, err)
		respondError(c, err)
		return
	}

	key := ""
	if h.Outputs != nil {
		key, err = h.Outputs.Store(ctx, record.ID, bytes.NewReader(out.Bytes()))
		if err != nil {
			h.failJob(record, err)
			respondError(c, err)
			return
		}
	}
	if err := h.Jobs.Complete(record.ID, res.Width, res.Height, res.Duration, key); err != nil {
		logging.ErrorWithComponent(logging.ComponentDatabase, "failed to complete job", "job_id", record.ID, "error", err)
	}

	logging.InfoWithComponent(logging.ComponentAPI, "dithered upload",
		"job_id", record.ID, "mode", res.Mode, "width", res.Width, "height", res.Height,
		"duration", res.Duration, "ip", record.SourceIP)
	c.Data(http.StatusOK, "image/bmp", out.Bytes())
}

func (h *Handler) failJob(record *database.DitherJob, cause error) {
	if err := h.Jobs.Fail(record.ID, cause); err != nil {
		logging.ErrorWithComponent(logging.ComponentDatabase, "failed to record job failure", "job_id", record.ID, "error", err)
	}
	logging.WarnWithComponent(logging.ComponentAPI, "dither job failed", "job_id", record.ID, "error", cause)
}
