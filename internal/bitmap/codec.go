// Package bitmap reads and writes uncompressed 24-bit bitmaps.
//
// Rows are stored bottom to top with pixels in B, G, R byte order. Unlike the
// usual BMP convention rows are not padded to a multiple of four bytes: every
// row is exactly width*3 bytes. Files written here round-trip through Decode,
// and are byte compatible with standard readers only when width*3 is a
// multiple of four.
package bitmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// MaxPixels bounds width*height accepted by Read
var MaxPixels = 1 << 28

// Image is a decoded bitmap: the pixel grid plus header fields that are
// carried through a decode/encode cycle.
type Image struct {
	Grid *Grid

	Reserved1 uint16
	Reserved2 uint16

	// Read for information only; Write always emits 0 for these.
	Compression     uint32
	XPixelsPerMeter int32
	YPixelsPerMeter int32
}

// NewImage wraps a grid with empty header fields
func NewImage(g *Grid) *Image {
	return &Image{Grid: g}
}

func (img *Image) Width() int  { return img.Grid.Width() }
func (img *Image) Height() int { return img.Grid.Height() }

func (img *Image) String() string {
	return fmt.Sprintf("bits-per-pixel=24, width=%d, height=%d", img.Width(), img.Height())
}

// Decode opens and reads the bitmap at path
func Decode(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	img, err := Read(f)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.Path = path
		}
		return nil, err
	}
	return img, nil
}

// Read decodes a bitmap from r. It seeks to the pixel data offset stored in
// the file header, so any extra header bytes are skipped.
func Read(r io.ReadSeeker) (*Image, error) {
	fh, ih, err := readHeaders(r)
	if err != nil {
		return nil, &DecodeError{Op: "read header", Err: err}
	}
	if fh.Magic != [2]byte{'B', 'M'} {
		return nil, &DecodeError{Op: "read header", Err: ErrBadMagic}
	}
	if ih.BitsPerPixel != 24 {
		return nil, &DecodeError{Op: "read header", Err: fmt.Errorf("%w: %d", ErrUnsupportedDepth, ih.BitsPerPixel)}
	}
	if ih.Planes != 1 {
		return nil, &DecodeError{Op: "read header", Err: fmt.Errorf("%w: %d", ErrUnsupportedPlanes, ih.Planes)}
	}
	limit := uint64(MaxPixels)
	if uint64(ih.Width) > limit || uint64(ih.Height) > limit || uint64(ih.Width)*uint64(ih.Height) > limit {
		return nil, &DecodeError{Op: "read header", Err: fmt.Errorf("%w: %dx%d", ErrTooLarge, ih.Width, ih.Height)}
	}

	// the pixel data must all be present before anything is allocated for it
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &DecodeError{Op: "seek pixel data", Err: err}
	}
	need := uint64(ih.Width) * uint64(ih.Height) * bytesPerPixel
	if end < int64(fh.Offset) || uint64(end-int64(fh.Offset)) < need {
		return nil, &DecodeError{Op: "read pixel data", Err: ErrTruncated}
	}
	if _, err := r.Seek(int64(fh.Offset), io.SeekStart); err != nil {
		return nil, &DecodeError{Op: "seek pixel data", Err: err}
	}

	width, height := int(ih.Width), int(ih.Height)
	grid := NewGrid(width, height)
	if height == 0 {
		return newDecoded(grid, fh, ih), nil
	}
	row := make([]byte, width*bytesPerPixel)
	br := bufio.NewReader(r)

	// bottom-up rows
	for y := height - 1; y >= 0; y-- {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, &DecodeError{Op: "read pixel data", Err: shortRead(err)}
		}
		dst := grid.Row(y)
		for x := range dst {
			i := x * bytesPerPixel
			dst[x] = Pixel{R: row[i+2], G: row[i+1], B: row[i]}
		}
	}

	return newDecoded(grid, fh, ih), nil
}

func newDecoded(grid *Grid, fh fileHeader, ih infoHeader) *Image {
	return &Image{
		Grid:            grid,
		Reserved1:       fh.Reserved1,
		Reserved2:       fh.Reserved2,
		Compression:     ih.Compression,
		XPixelsPerMeter: ih.XPixelsPerMeter,
		YPixelsPerMeter: ih.YPixelsPerMeter,
	}
}

// Encode writes img to path. On failure the partially written file is
// removed.
func Encode(img *Image, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &EncodeError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			os.Remove(path)
		}
	}()

	if err = Write(f, img); err != nil {
		f.Close()
		if ee, ok := err.(*EncodeError); ok {
			ee.Path = path
		}
		return err
	}
	if err = f.Close(); err != nil {
		return &EncodeError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// Write serializes img to w. Both headers and all pixel data are flushed
// before it returns nil.
func Write(w io.Writer, img *Image) error {
	bw := bufio.NewWriter(w)
	if err := writeHeaders(bw, img); err != nil {
		return &EncodeError{Op: "write header", Err: err}
	}

	grid := img.Grid
	row := make([]byte, grid.Width()*bytesPerPixel)
	for y := grid.Height() - 1; y >= 0; y-- {
		for x, p := range grid.Row(y) {
			i := x * bytesPerPixel
			row[i] = p.B
			row[i+1] = p.G
			row[i+2] = p.R
		}
		if _, err := bw.Write(row); err != nil {
			return &EncodeError{Op: "write pixel data", Err: err}
		}
	}

	if err := bw.Flush(); err != nil {
		return &EncodeError{Op: "flush", Err: err}
	}
	return nil
}

// EncodedSize is the number of bytes Write produces for img
func EncodedSize(img *Image) int64 {
	return pixelOffset + int64(img.Width())*int64(img.Height())*bytesPerPixel
}
