// Package palette holds the reference colors a dithered image is reduced to
// and the nearest-color search over them.
package palette

import (
	"errors"
	"strings"

	"github.com/rmitchellscott/halftone/internal/bitmap"
)

var ErrEmpty = errors.New("palette must not be empty")

// Palette is an ordered, non-empty list of output colors. Order only matters
// for breaking ties in Closest.
type Palette []bitmap.Pixel

// Validate rejects palettes no engine can quantize to
func (p Palette) Validate() error {
	if len(p) == 0 {
		return ErrEmpty
	}
	return nil
}

// Closest returns the entry with the smallest squared distance to c. The
// first entry wins ties. c may lie outside the 0..255 cube. Closest panics on
// an empty palette; call Validate first.
func (p Palette) Closest(c bitmap.RGB) bitmap.Pixel {
	best := p[0]
	bestDist := best.Distance2(c)
	for _, candidate := range p[1:] {
		if d := candidate.Distance2(c); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// Contains reports whether px is one of the palette's colors
func (p Palette) Contains(px bitmap.Pixel) bool {
	for _, c := range p {
		if c == px {
			return true
		}
	}
	return false
}

// IsBlackWhite reports whether the palette is exactly black and white, in
// either order
func (p Palette) IsBlackWhite() bool {
	if len(p) != 2 {
		return false
	}
	return (p[0] == bitmap.Black && p[1] == bitmap.White) ||
		(p[0] == bitmap.White && p[1] == bitmap.Black)
}

// Hex lists the palette as #rrggbb strings
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.Hex()
	}
	return out
}

// String formats the palette in the form Parse accepts
func (p Palette) String() string {
	return strings.Join(p.Hex(), "/")
}
