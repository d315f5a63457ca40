package dither

import (
	"github.com/rmitchellscott/halftone/internal/bitmap"
	"github.com/rmitchellscott/halftone/internal/palette"
)

const (
	// DiffusionThreshold splits black from white when error diffusion uses a
	// grayscale reducer
	DiffusionThreshold = 128
	// OrderedThreshold is the equivalent split for ordered dithering
	OrderedThreshold = 127
)

// Quantizer maps an adjusted color to an output pixel and returns the
// per-channel error c - out. Implementations must be safe for concurrent use.
type Quantizer interface {
	Quantize(c bitmap.RGB) (bitmap.Pixel, bitmap.RGB)
}

// PaletteQuantizer picks the nearest palette color
type PaletteQuantizer struct {
	Palette palette.Palette
}

// NewPaletteQuantizer rejects empty palettes up front
func NewPaletteQuantizer(p palette.Palette) (*PaletteQuantizer, error) {
	if err := p.Validate(); err != nil {
		return nil, &ConfigError{Field: "palette", Err: err}
	}
	return &PaletteQuantizer{Palette: p}, nil
}

func (q *PaletteQuantizer) Quantize(c bitmap.RGB) (bitmap.Pixel, bitmap.RGB) {
	out := q.Palette.Closest(c)
	return out, c.Sub(out.RGB())
}

// ThresholdQuantizer reduces the color to a gray level and outputs black
// below Threshold, white otherwise
type ThresholdQuantizer struct {
	Reduce    Reducer
	Threshold int
}

func (q *ThresholdQuantizer) Quantize(c bitmap.RGB) (bitmap.Pixel, bitmap.RGB) {
	if q.Reduce(c) < q.Threshold {
		return bitmap.Black, c
	}
	return bitmap.White, c.Sub(bitmap.White.RGB())
}

// Outputs returns every pixel q can produce, when that set is known
func Outputs(q Quantizer) palette.Palette {
	switch q := q.(type) {
	case *PaletteQuantizer:
		return q.Palette
	case *ThresholdQuantizer:
		return palette.Palette{bitmap.Black, bitmap.White}
	}
	return nil
}
