package dither

import (
	"sort"

	"github.com/rmitchellscott/halftone/internal/bitmap"
)

// Reducer collapses a color to a single gray level. Inputs are adjusted
// colors and may lie outside 0..255.
type Reducer func(c bitmap.RGB) int

// Average is the plain channel mean
func Average(c bitmap.RGB) int {
	return (c.R + c.G + c.B) / 3
}

// Luminance uses the 0.3/0.59/0.11 weighting
func Luminance(c bitmap.RGB) int {
	return weigh(c, 0.3, 0.59, 0.11)
}

// Luma uses the BT.709 weighting
func Luma(c bitmap.RGB) int {
	return weigh(c, 0.2126, 0.7152, 0.0722)
}

// BT601 uses the BT.601 weighting
func BT601(c bitmap.RGB) int {
	return weigh(c, 0.299, 0.587, 0.114)
}

// weigh computes a weighted channel sum in float32, truncated toward zero.
// The explicit conversions prevent fused multiply-add.
func weigh(c bitmap.RGB, wr, wg, wb float32) int {
	r := float32(float32(c.R) * wr)
	g := float32(float32(c.G) * wg)
	b := float32(float32(c.B) * wb)
	return int(float32(r + g + b))
}

// Desaturate is the midpoint of the largest and smallest channel
func Desaturate(c bitmap.RGB) int {
	mx := max(c.R, c.G, c.B)
	mn := min(c.R, c.G, c.B)
	return (mx + mn) / 2
}

var reducers = map[string]Reducer{
	"average":    Average,
	"luminance":  Luminance,
	"luma":       Luma,
	"bt601":      BT601,
	"desaturate": Desaturate,
}

// LookupReducer resolves a reducer by name
func LookupReducer(name string) (Reducer, error) {
	r, ok := reducers[name]
	if !ok {
		return nil, &ConfigError{Field: "reducer", Value: name, Err: ErrUnknownReducer}
	}
	return r, nil
}

// Reducers lists the reducer names, sorted
func Reducers() []string {
	names := make([]string, 0, len(reducers))
	for name := range reducers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
