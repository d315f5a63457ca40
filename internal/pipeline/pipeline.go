// Package pipeline wires the codec to the dithering engines: decode a
// bitmap, quantize it in place with the selected mode, encode the result.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rmitchellscott/halftone/internal/bitmap"
	"github.com/rmitchellscott/halftone/internal/config"
	"github.com/rmitchellscott/halftone/internal/dither"
	"github.com/rmitchellscott/halftone/internal/logging"
	"github.com/rmitchellscott/halftone/internal/palette"
)

// Job is a dithering request as the CLI and HTTP surfaces receive it
type Job struct {
	Mode    string
	Palette string
	Reducer string
	Workers int
}

// Plan is a validated Job, ready to run against any number of images
type Plan struct {
	Mode      dither.Mode
	Palette   palette.Palette
	Reducer   string
	Quantizer dither.Quantizer
	Workers   int
}

// Result describes a finished run
type Result struct {
	Width    int
	Height   int
	Mode     string
	Palette  palette.Palette
	Reducer  string
	Duration time.Duration
}

// Plan resolves names and checks combinations. Every selection error is a
// *dither.ConfigError.
func (j Job) Plan() (*Plan, error) {
	mode, err := dither.Lookup(j.Mode)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Mode: mode, Reducer: j.Reducer, Workers: j.Workers}

	if j.Reducer == "" {
		pal, err := palette.Parse(j.Palette)
		if err != nil {
			return nil, &dither.ConfigError{Field: "palette", Value: j.Palette, Err: err}
		}
		q, err := dither.NewPaletteQuantizer(pal)
		if err != nil {
			return nil, err
		}
		plan.Palette = pal
		plan.Quantizer = q
		return plan, nil
	}

	if !mode.SupportsReducer() {
		return nil, &dither.ConfigError{Field: "reducer", Value: j.Reducer, Err: dither.ErrReducerNotAllowed}
	}
	reduce, err := dither.LookupReducer(j.Reducer)
	if err != nil {
		return nil, err
	}

	name := j.Palette
	if name == "" {
		name = "bw"
	}
	pal, err := palette.Parse(name)
	if err != nil {
		return nil, &dither.ConfigError{Field: "palette", Value: name, Err: err}
	}
	if !pal.IsBlackWhite() {
		return nil, &dither.ConfigError{Field: "palette", Value: name, Err: dither.ErrNotBlackWhite}
	}

	// report what the threshold step emits, in its order
	plan.Quantizer = &dither.ThresholdQuantizer{Reduce: reduce, Threshold: mode.Threshold()}
	plan.Palette = dither.Outputs(plan.Quantizer)
	return plan, nil
}

// Apply dithers img in place
func (p *Plan) Apply(ctx context.Context, img *bitmap.Image) error {
	return p.Mode.Apply(ctx, img.Grid, p.Quantizer, p.Workers)
}

func (p *Plan) result(img *bitmap.Image, d time.Duration) *Result {
	return &Result{
		Width:    img.Width(),
		Height:   img.Height(),
		Mode:     p.Mode.Name,
		Palette:  p.Palette,
		Reducer:  p.Reducer,
		Duration: d,
	}
}

// Run decodes in, dithers it and encodes the result to out. The job is
// validated before the input is opened, so a bad selection never touches
// the filesystem.
func Run(ctx context.Context, in, out string, job Job) (*Result, error) {
	plan, err := job.Plan()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	img, err := bitmap.Decode(in)
	if err != nil {
		return nil, err
	}
	logging.DebugWithComponent(logging.ComponentCodec, "decoded bitmap", "path", in, "header", img.String())

	if err := plan.Apply(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to dither %s: %w", in, err)
	}
	if err := bitmap.Encode(img, out); err != nil {
		return nil, err
	}

	res := plan.result(img, time.Since(start))
	logging.InfoWithComponent(logging.ComponentPipeline, "dithered image",
		"in", in, "out", out, "mode", res.Mode, "palette", res.Palette.String(),
		"width", res.Width, "height", res.Height, "duration", res.Duration)
	return res, nil
}

// Process is Run over streams
func Process(ctx context.Context, r io.ReadSeeker, w io.Writer, job Job) (*Result, error) {
	plan, err := job.Plan()
	if err != nil {
		return nil, err
	}
	return plan.Process(ctx, r, w)
}

// Process decodes a bitmap from r, dithers it and encodes it to w. Nothing
// is written to w unless dithering succeeds.
func (p *Plan) Process(ctx context.Context, r io.ReadSeeker, w io.Writer) (*Result, error) {
	start := time.Now()
	img, err := bitmap.Read(r)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to dither: %w", err)
	}
	if err := bitmap.Write(w, img); err != nil {
		return nil, err
	}

	res := p.result(img, time.Since(start))
	logging.DebugWithComponent(logging.ComponentPipeline, "dithered stream",
		"mode", res.Mode, "width", res.Width, "height", res.Height, "duration", res.Duration)
	return res, nil
}

// FromPreset builds a Job from a preset
func FromPreset(p config.Preset) Job {
	return Job{Mode: p.Mode, Palette: p.Palette, Reducer: p.Reducer, Workers: p.Workers}
}

// RegisterPresetPalettes makes the palettes declared in a preset file
// available to palette.Parse by name.
func RegisterPresetPalettes(p *config.Presets) error {
	for name, colors := range p.Palettes {
		pal := make(palette.Palette, 0, len(colors))
		for _, c := range colors {
			px, err := palette.ParseColor(c)
			if err != nil {
				return fmt.Errorf("palette %q: %w", name, err)
			}
			pal = append(pal, px)
		}
		if err := palette.Register(name, pal); err != nil {
			return err
		}
		logging.DebugWithComponent(logging.ComponentPresets, "registered palette", "name", name, "colors", pal.String())
	}
	return nil
}
