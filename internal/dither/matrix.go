package dither

// Matrix is an N x N threshold pattern holding each of 1..N*N once. It tiles
// the image: Value(x, y) reads values[x mod N][y mod N].
type Matrix struct {
	Name   string
	values [][]int
}

// NewMatrix copies values, which must be square
func NewMatrix(name string, values [][]int) Matrix {
	m := Matrix{Name: name, values: make([][]int, len(values))}
	for i, row := range values {
		m.values[i] = append([]int(nil), row...)
	}
	return m
}

// Size is N
func (m Matrix) Size() int { return len(m.values) }

// Value returns the threshold for pixel (x, y)
func (m Matrix) Value(x, y int) int {
	n := len(m.values)
	return m.values[x%n][y%n]
}

// Factor is N*N+1, the scale applied to a channel before it is modulated
func (m Matrix) Factor() int {
	n := len(m.values)
	return n*n + 1
}

var (
	Bayer4 = NewMatrix("bayer4", [][]int{
		{1, 9, 3, 11},
		{13, 5, 15, 7},
		{4, 12, 2, 10},
		{16, 8, 14, 6},
	})

	Bayer8 = NewMatrix("bayer8", [][]int{
		{1, 49, 13, 61, 4, 52, 16, 64},
		{33, 17, 45, 29, 36, 20, 48, 32},
		{9, 57, 5, 53, 12, 60, 8, 56},
		{41, 25, 37, 21, 44, 28, 40, 24},
		{3, 51, 15, 63, 2, 50, 14, 62},
		{35, 19, 47, 31, 34, 18, 46, 30},
		{11, 59, 7, 55, 10, 58, 6, 54},
		{43, 27, 39, 23, 42, 26, 38, 22},
	})
)

// Matrices lists the built-in threshold matrices
var Matrices = []Matrix{Bayer4, Bayer8}
