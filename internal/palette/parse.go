package palette

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rmitchellscott/halftone/internal/bitmap"
)

var (
	mu    sync.RWMutex
	named = map[string]Palette{
		"bw": {bitmap.Black, bitmap.White},
		"rgb": {bitmap.Red, bitmap.Green, bitmap.Blue},
		"basic": {
			bitmap.Red, bitmap.Green, bitmap.Blue,
			bitmap.Cyan, bitmap.Magenta, bitmap.Yellow,
			bitmap.White, bitmap.Black,
		},
	}
)

// Register adds or replaces a named palette
func Register(name string, p Palette) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("palette %q: %w", name, err)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, "/,#") {
		return fmt.Errorf("invalid palette name %q", name)
	}
	mu.Lock()
	defer mu.Unlock()
	named[name] = append(Palette(nil), p...)
	return nil
}

// Named returns a copy of a registered palette
func Named(name string) (Palette, bool) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := named[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return append(Palette(nil), p...), true
}

// Names lists the registered palettes, sorted
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse resolves a palette name or a "/" separated list of colors. Each
// color is written as RRGGBB, #RRGGBB, #RGB or r,g,b.
func Parse(s string) (Palette, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmpty
	}
	if s == "auto" {
		return nil, fmt.Errorf("automatic palettes are not supported")
	}
	if p, ok := Named(s); ok {
		return p, nil
	}

	var p Palette
	for _, part := range strings.Split(s, "/") {
		c, err := ParseColor(part)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	return p, nil
}

// ParseColor parses a single color
func ParseColor(s string) (bitmap.Pixel, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		return parseTriplet(s)
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return bitmap.Pixel{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return bitmap.Pixel{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return bitmap.Pixel{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func parseTriplet(s string) (bitmap.Pixel, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return bitmap.Pixel{}, fmt.Errorf("invalid color %q: expected r,g,b", s)
	}
	var ch [3]uint8
	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
		if err != nil {
			return bitmap.Pixel{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		ch[i] = uint8(v)
	}
	return bitmap.Pixel{R: ch[0], G: ch[1], B: ch[2]}, nil
}
