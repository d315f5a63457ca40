package dither

// Kernel is an error diffusion template. Error is pushed one and two columns
// right on the current row, and from two columns left to two columns right on
// each of the two rows below. Every weight is applied to error/Divisor.
type Kernel struct {
	Name    string
	Right1  int
	Right2  int
	Below1  [5]int // x-2, x-1, x, x+1, x+2 on row y+1
	Below2  [5]int // same layout on row y+2
	Divisor int
}

// IsZero reports whether the kernel propagates no error at all
func (k Kernel) IsZero() bool {
	if k.Right1 != 0 || k.Right2 != 0 {
		return false
	}
	for i := range k.Below1 {
		if k.Below1[i] != 0 || k.Below2[i] != 0 {
			return false
		}
	}
	return true
}

// Weight is the sum of all weights; Weight/Divisor is the fraction of the
// quantization error the kernel redistributes.
func (k Kernel) Weight() int {
	sum := k.Right1 + k.Right2
	for i := range k.Below1 {
		sum += k.Below1[i] + k.Below2[i]
	}
	return sum
}

var (
	NoDiffusion = Kernel{Name: "closest", Divisor: 1}

	RightOnly = Kernel{Name: "diffuse", Right1: 1, Divisor: 1}

	FloydSteinberg = Kernel{
		Name:    "floyd",
		Right1:  7,
		Below1:  [5]int{0, 3, 5, 1, 0},
		Divisor: 16,
	}

	FalseFloydSteinberg = Kernel{
		Name:    "ffloyd",
		Right1:  3,
		Below1:  [5]int{0, 0, 3, 2, 0},
		Divisor: 8,
	}

	JarvisJudiceNinke = Kernel{
		Name:    "jarvis",
		Right1:  7,
		Right2:  5,
		Below1:  [5]int{3, 5, 7, 5, 3},
		Below2:  [5]int{1, 3, 5, 3, 1},
		Divisor: 48,
	}

	Stucki = Kernel{
		Name:    "stucki",
		Right1:  8,
		Right2:  4,
		Below1:  [5]int{2, 4, 8, 4, 2},
		Below2:  [5]int{1, 2, 4, 2, 1},
		Divisor: 42,
	}

	// Atkinson only spreads 6/8 of the error.
	Atkinson = Kernel{
		Name:    "atkinson",
		Right1:  1,
		Right2:  1,
		Below1:  [5]int{0, 1, 1, 1, 0},
		Below2:  [5]int{0, 0, 1, 0, 0},
		Divisor: 8,
	}

	Burkes = Kernel{
		Name:    "burkes",
		Right1:  8,
		Right2:  4,
		Below1:  [5]int{2, 4, 8, 4, 2},
		Divisor: 32,
	}

	Sierra = Kernel{
		Name:    "sierra",
		Right1:  5,
		Right2:  3,
		Below1:  [5]int{2, 4, 5, 4, 2},
		Below2:  [5]int{0, 2, 3, 2, 0},
		Divisor: 32,
	}

	Sierra2 = Kernel{
		Name:    "sierra2",
		Right1:  4,
		Right2:  3,
		Below1:  [5]int{1, 2, 3, 2, 1},
		Divisor: 16,
	}

	SierraLite = Kernel{
		Name:    "sierra_lite",
		Right1:  2,
		Below1:  [5]int{0, 1, 1, 0, 0},
		Divisor: 4,
	}
)

// Kernels lists the built-in kernels in display order
var Kernels = []Kernel{
	NoDiffusion,
	RightOnly,
	FloydSteinberg,
	FalseFloydSteinberg,
	JarvisJudiceNinke,
	Stucki,
	Atkinson,
	Burkes,
	Sierra,
	Sierra2,
	SierraLite,
}
