package bitmap

import "fmt"

// Pixel is a 24-bit color value in R, G, B field order
type Pixel struct {
	R, G, B uint8
}

// Common colors used by the named palettes and the threshold quantizer
var (
	Black   = Pixel{0, 0, 0}
	White   = Pixel{255, 255, 255}
	Red     = Pixel{255, 0, 0}
	Green   = Pixel{0, 255, 0}
	Blue    = Pixel{0, 0, 255}
	Cyan    = Pixel{0, 255, 255}
	Magenta = Pixel{255, 0, 255}
	Yellow  = Pixel{255, 255, 0}
)

// RGB widens the pixel to signed channels for error arithmetic
func (p Pixel) RGB() RGB {
	return RGB{R: int(p.R), G: int(p.G), B: int(p.B)}
}

// Distance2 returns the squared euclidean distance between the pixel and c
func (p Pixel) Distance2(c RGB) int {
	dr := c.R - int(p.R)
	dg := c.G - int(p.G)
	db := c.B - int(p.B)
	return dr*dr + dg*dg + db*db
}

// Hex formats the pixel as #rrggbb
func (p Pixel) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", p.R, p.G, p.B)
}

func (p Pixel) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.R, p.G, p.B)
}

// RGB is a signed color used while diffusing error. Channels may be negative
// or above 255 and are never narrowed back into a Pixel implicitly.
type RGB struct {
	R, G, B int
}

func (c RGB) Add(o RGB) RGB {
	return RGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

func (c RGB) Sub(o RGB) RGB {
	return RGB{c.R - o.R, c.G - o.G, c.B - o.B}
}

func (c RGB) Mul(v int) RGB {
	return RGB{c.R * v, c.G * v, c.B * v}
}

// Div divides every channel by v, truncating toward zero
func (c RGB) Div(v int) RGB {
	return RGB{c.R / v, c.G / v, c.B / v}
}
