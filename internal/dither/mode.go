package dither

import (
	"context"
	"fmt"

	"github.com/rmitchellscott/halftone/internal/bitmap"
)

// Kind groups modes by the engine that runs them
type Kind string

const (
	KindDiffusion Kind = "diffusion"
	KindOrdered   Kind = "ordered"
	KindExtended  Kind = "extended"
)

// Mode is one selectable dithering algorithm
type Mode struct {
	Name   string
	Kind   Kind
	Kernel Kernel
	Matrix Matrix

	ext *extended
}

// Threshold is the gray level a ThresholdQuantizer should split at for this
// mode
func (m Mode) Threshold() int {
	if m.Kind == KindOrdered {
		return OrderedThreshold
	}
	return DiffusionThreshold
}

// SupportsReducer reports whether the mode can run with a ThresholdQuantizer
func (m Mode) SupportsReducer() bool {
	return m.Kind != KindExtended
}

// Apply runs the mode's engine over grid in place
func (m Mode) Apply(ctx context.Context, grid *bitmap.Grid, q Quantizer, workers int) error {
	switch m.Kind {
	case KindDiffusion:
		return Diffuse(ctx, grid, m.Kernel, q)
	case KindOrdered:
		return Ordered(ctx, grid, m.Matrix, q, workers)
	case KindExtended:
		return m.ext.apply(ctx, grid, q)
	}
	return fmt.Errorf("mode %q has no engine", m.Name)
}

var (
	modes     []Mode
	modeIndex = map[string]int{}
)

func register(m Mode) {
	modeIndex[m.Name] = len(modes)
	modes = append(modes, m)
}

func init() {
	for _, k := range Kernels {
		register(Mode{Name: k.Name, Kind: KindDiffusion, Kernel: k})
	}
	for _, mat := range Matrices {
		register(Mode{Name: mat.Name, Kind: KindOrdered, Matrix: mat})
	}
	for _, ext := range extendedModes {
		register(Mode{Name: ext.name, Kind: KindExtended, ext: ext})
	}
}

// Lookup resolves a mode by name
func Lookup(name string) (Mode, error) {
	i, ok := modeIndex[name]
	if !ok {
		return Mode{}, &ConfigError{Field: "mode", Value: name, Err: ErrUnknownMode}
	}
	return modes[i], nil
}

// Modes lists every mode in display order
func Modes() []Mode {
	return append([]Mode(nil), modes...)
}
