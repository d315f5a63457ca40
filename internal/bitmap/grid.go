package bitmap

// Grid is a width x height array of pixels backed by a single flat buffer.
// Pixels are addressed as (x, y) with y = 0 being the top row.
type Grid struct {
	width  int
	height int
	pix    []Pixel
}

// NewGrid allocates a black grid of the given size
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		width:  width,
		height: height,
		pix:    make([]Pixel, width*height),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// At returns the pixel at column x, row y
func (g *Grid) At(x, y int) Pixel {
	return g.pix[y*g.width+x]
}

// Set replaces the pixel at column x, row y
func (g *Grid) Set(x, y int, p Pixel) {
	g.pix[y*g.width+x] = p
}

// Row returns row y as a slice sharing the grid's storage
func (g *Grid) Row(y int) []Pixel {
	return g.pix[y*g.width : (y+1)*g.width]
}

// Fill sets every pixel to p
func (g *Grid) Fill(p Pixel) {
	for i := range g.pix {
		g.pix[i] = p
	}
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	c := &Grid{width: g.width, height: g.height, pix: make([]Pixel, len(g.pix))}
	copy(c.pix, g.pix)
	return c
}

// Equal reports whether both grids have the same size and pixels
func (g *Grid) Equal(o *Grid) bool {
	if g.width != o.width || g.height != o.height {
		return false
	}
	for i := range g.pix {
		if g.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}
