package imageprocessing

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp" // Registers the padded standard BMP decoder

	"github.com/rmitchellscott/halftone/internal/bitmap"
)

// ImportOptions controls how a foreign image is turned into a pixel grid
type ImportOptions struct {
	// Width and Height resize the image when both are positive
	Width  int
	Height int
	// Fit letterboxes instead of cropping to fill
	Fit       bool
	Grayscale bool
}

// LoadImage decodes a PNG, JPEG, GIF or standard (row padded) BMP file
func LoadImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Prepare applies the import pipeline to a decoded image
func Prepare(img image.Image, opts ImportOptions) (*bitmap.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	if opts.Width > 0 && opts.Height > 0 {
		img = Resize(img, opts.Width, opts.Height, opts.Fit)
	}
	if opts.Grayscale {
		img = ToGrayscale(img)
	}

	return bitmap.NewImage(GridFromImage(img)), nil
}

// Import loads a foreign image file and converts it to a bitmap image
func Import(path string, opts ImportOptions) (*bitmap.Image, error) {
	img, _, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return Prepare(img, opts)
}

// EncodeStandardBMP writes the grid as a conventional BMP with rows padded
// to four bytes, readable by third-party tools
func EncodeStandardBMP(grid *bitmap.Grid) ([]byte, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, GridToRGBA(grid)); err != nil {
		return nil, fmt.Errorf("failed to encode bmp: %w", err)
	}
	return buf.Bytes(), nil
}

// Export writes the grid to path in the format named by its extension:
// .png, or .bmp for a padded standard bitmap
func Export(grid *bitmap.Grid, path string) error {
	var data []byte
	var err error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		data, err = EncodePNG(grid)
	case ".bmp":
		data, err = EncodeStandardBMP(grid)
	default:
		return fmt.Errorf("unsupported export format %q", ext)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
