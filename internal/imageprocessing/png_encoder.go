package imageprocessing

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image/png"
	"io"

	"github.com/rmitchellscott/halftone/internal/bitmap"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// EncodePNG encodes a grid as PNG. Black and white grids are written as 1-bit
// grayscale, everything else as 8-bit RGB.
func EncodePNG(grid *bitmap.Grid) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, grid); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePNG is EncodePNG for an io.Writer
func WritePNG(w io.Writer, grid *bitmap.Grid) error {
	if IsBilevel(grid) && grid.Width() > 0 && grid.Height() > 0 {
		return writeBilevelPNG(w, grid)
	}
	if err := png.Encode(w, GridToRGBA(grid)); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// EncodeBilevelPNG encodes a black and white grid as a 1-bit grayscale PNG
// (color type 0)
func EncodeBilevelPNG(grid *bitmap.Grid) ([]byte, error) {
	if !IsBilevel(grid) {
		return nil, errors.New("grid is not black and white")
	}
	if grid.Width() == 0 || grid.Height() == 0 {
		return nil, fmt.Errorf("cannot encode empty %dx%d grid as png", grid.Width(), grid.Height())
	}
	var buf bytes.Buffer
	if err := writeBilevelPNG(&buf, grid); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBilevelPNG(w io.Writer, grid *bitmap.Grid) error {
	idat, err := deflateBilevel(grid)
	if err != nil {
		return fmt.Errorf("failed to compress image data: %w", err)
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:], uint32(grid.Width()))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(grid.Height()))
	ihdr[8] = 1 // bit depth; color type, compression, filter and interlace stay 0

	cw := &chunkWriter{w: w}
	cw.write(pngSignature)
	cw.chunk("IHDR", ihdr[:])
	cw.chunk("IDAT", idat)
	cw.chunk("IEND", nil)
	return cw.err
}

// deflateBilevel packs one bit per pixel, most significant first, white as 1,
// behind a filter-none byte per row, and zlib compresses the result
func deflateBilevel(grid *bitmap.Grid) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}

	row := make([]byte, 1+(grid.Width()+7)/8)
	for y := 0; y < grid.Height(); y++ {
		clear(row)
		for x, p := range grid.Row(y) {
			if p == bitmap.White {
				row[1+x/8] |= 0x80 >> (x % 8)
			}
		}
		if _, err := zw.Write(row); err != nil {
			zw.Close()
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// chunkWriter writes PNG chunks and keeps the first error
type chunkWriter struct {
	w   io.Writer
	err error
}

func (c *chunkWriter) write(p []byte) {
	if c.err == nil {
		_, c.err = c.w.Write(p)
	}
}

func (c *chunkWriter) chunk(typ string, data []byte) {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(data)))
	copy(hdr[4:], typ)

	crc := crc32.Update(0, crc32.IEEETable, hdr[4:])
	crc = crc32.Update(crc, crc32.IEEETable, data)
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], crc)

	c.write(hdr[:])
	c.write(data)
	c.write(tail[:])
}
