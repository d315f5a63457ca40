package dither

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rmitchellscott/halftone/internal/bitmap"
)

// Ordered quantizes grid in place with a tiled threshold matrix. Pixels are
// independent, so rows are spread over up to workers goroutines; workers <= 0
// uses GOMAXPROCS.
func Ordered(ctx context.Context, grid *bitmap.Grid, m Matrix, q Quantizer, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for y := 0; y < grid.Height(); y++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			orderedRow(grid, y, m, q)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func orderedRow(grid *bitmap.Grid, y int, m Matrix, q Quantizer) {
	factor := m.Factor()
	row := grid.Row(y)
	for x, p := range row {
		scaled := p.RGB().Mul(factor).Div(255).Mul(m.Value(x, y))
		out, _ := q.Quantize(scaled)
		row[x] = out
	}
}
