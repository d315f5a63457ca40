package imageprocessing

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/rmitchellscott/halftone/internal/bitmap"
)

func checkerGrid(width, height int) *bitmap.Grid {
	g := bitmap.NewGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				g.Set(x, y, bitmap.White)
			}
		}
	}
	return g
}

func TestGridRGBARoundTrip(t *testing.T) {
	g := bitmap.NewGrid(3, 2)
	g.Set(0, 0, bitmap.Pixel{R: 1, G: 2, B: 3})
	g.Set(2, 1, bitmap.Pixel{R: 200, G: 100, B: 50})

	back := GridFromImage(GridToRGBA(g))
	if !back.Equal(g) {
		t.Error("Expected grid to survive RGBA conversion")
	}
}

func TestGridFromImageOffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.Set(6, 5, color.NRGBA{R: 40, G: 50, B: 60, A: 255})

	g := GridFromImage(src)
	if g.Width() != 2 || g.Height() != 1 {
		t.Fatalf("Expected 2x1 grid, got %dx%d", g.Width(), g.Height())
	}
	if got := g.At(1, 0); got != (bitmap.Pixel{R: 40, G: 50, B: 60}) {
		t.Errorf("Expected (40, 50, 60), got %v", got)
	}
}

func TestIsBilevel(t *testing.T) {
	g := checkerGrid(4, 4)
	if !IsBilevel(g) {
		t.Error("Expected checkerboard to be bilevel")
	}
	g.Set(1, 1, bitmap.Pixel{R: 128, G: 128, B: 128})
	if IsBilevel(g) {
		t.Error("Expected gray pixel to break bilevel")
	}
}

func TestEncodeBilevelPNG(t *testing.T) {
	g := checkerGrid(10, 3)

	data, err := EncodeBilevelPNG(g)
	if err != nil {
		t.Fatalf("EncodeBilevelPNG failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Standard decoder rejected output: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 3 {
		t.Fatalf("Expected 10x3, got %v", img.Bounds())
	}
	if !GridFromImage(img).Equal(g) {
		t.Error("Decoded PNG differs from grid")
	}
}

func TestEncodeBilevelPNGRejectsColor(t *testing.T) {
	g := bitmap.NewGrid(1, 1)
	g.Set(0, 0, bitmap.Red)
	if _, err := EncodeBilevelPNG(g); err == nil {
		t.Error("Expected error for non black and white grid")
	}
}

func TestEncodePNGColor(t *testing.T) {
	g := bitmap.NewGrid(2, 2)
	g.Fill(bitmap.Magenta)

	data, err := EncodePNG(g)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !GridFromImage(img).Equal(g) {
		t.Error("Decoded PNG differs from grid")
	}
}

func TestEncodeStandardBMPPadsRows(t *testing.T) {
	// width 3 needs 3 padding bytes per row in a standard bitmap
	g := checkerGrid(3, 2)

	data, err := EncodeStandardBMP(g)
	if err != nil {
		t.Fatalf("EncodeStandardBMP failed: %v", err)
	}
	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("bmp.Decode failed: %v", err)
	}
	if !GridFromImage(img).Equal(g) {
		t.Error("Decoded standard bitmap differs from grid")
	}
}

func TestImportAndResize(t *testing.T) {
	dir := t.TempDir()
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	path := filepath.Join(dir, "in.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name  string
		opts  ImportOptions
		wantW int
		wantH int
	}{
		{"original size", ImportOptions{}, 40, 20},
		{"fill", ImportOptions{Width: 10, Height: 10}, 10, 10},
		{"fit", ImportOptions{Width: 10, Height: 10, Fit: true}, 10, 10},
		{"grayscale", ImportOptions{Grayscale: true}, 40, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Import(path, tt.opts)
			if err != nil {
				t.Fatalf("Import failed: %v", err)
			}
			if img.Width() != tt.wantW || img.Height() != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, img.Width(), img.Height())
			}
		})
	}
}

func TestToGrayscaleUsesGrayModel(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})

	got := ToGrayscale(src).At(0, 0).(color.Gray)
	if got.Y != 76 {
		t.Errorf("Expected pure red to map to 76, got %d", got.Y)
	}
}

func TestPlacement(t *testing.T) {
	src := image.Rect(0, 0, 800, 400)
	tests := []struct {
		name string
		fit  bool
		want image.Rectangle
	}{
		{"fit letterboxes", true, image.Rect(0, 25, 100, 75)},
		{"fill overhangs", false, image.Rect(-50, 0, 150, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Placement(src, 100, 100, tt.fit); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	if got := Placement(image.Rectangle{}, 100, 100, true); !got.Empty() {
		t.Errorf("Expected empty placement for empty source, got %v", got)
	}
}

func TestResizeFitLetterboxesWhite(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff // opaque black
	}
	out := Resize(src, 10, 10, true)
	if c := out.RGBAAt(5, 0); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Expected white letterbox, got %v", c)
	}
	if c := out.RGBAAt(5, 5); c.R > 10 {
		t.Errorf("Expected dark image area, got %v", c)
	}
}

func TestExportUnknownExtension(t *testing.T) {
	err := Export(checkerGrid(2, 2), filepath.Join(t.TempDir(), "out.tiff"))
	if err == nil {
		t.Error("Expected error for unsupported extension")
	}
}
