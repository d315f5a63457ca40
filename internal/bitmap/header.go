package bitmap

import (
	"encoding/binary"
	"io"
	"math"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	pixelOffset    = fileHeaderSize + infoHeaderSize
	bytesPerPixel  = 3
)

// fileHeader is the 14 byte BITMAPFILEHEADER
type fileHeader struct {
	Magic     [2]byte
	FileSize  uint32 // not validated on read
	Reserved1 uint16
	Reserved2 uint16
	Offset    uint32 // start of pixel data
}

// infoHeader is the 40 byte BITMAPINFOHEADER. Larger variants are read as
// their first 40 bytes; the remainder is skipped by seeking to Offset.
type infoHeader struct {
	Size            uint32
	Width           uint32
	Height          uint32
	Planes          uint16
	BitsPerPixel    uint16
	Compression     uint32
	ImageSize       uint32
	XPixelsPerMeter int32
	YPixelsPerMeter int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

func readHeaders(r io.Reader) (fileHeader, infoHeader, error) {
	var fh fileHeader
	var ih infoHeader
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return fh, ih, shortRead(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &ih); err != nil {
		return fh, ih, shortRead(err)
	}
	return fh, ih, nil
}

func writeHeaders(w io.Writer, img *Image) error {
	width := uint32(img.Grid.Width())
	height := uint32(img.Grid.Height())
	dataSize := uint64(width) * uint64(height) * bytesPerPixel

	fh := fileHeader{
		Magic:     [2]byte{'B', 'M'},
		FileSize:  clampUint32(pixelOffset + dataSize),
		Reserved1: img.Reserved1,
		Reserved2: img.Reserved2,
		Offset:    pixelOffset,
	}
	ih := infoHeader{
		Size:         infoHeaderSize, // always the 40 byte variant
		Width:        width,
		Height:       height,
		Planes:       1,
		BitsPerPixel: 24,
		ImageSize:    clampUint32(dataSize),
	}

	if err := binary.Write(w, binary.LittleEndian, &fh); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, &ih)
}

func clampUint32(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// shortRead maps EOF conditions to ErrTruncated
func shortRead(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}
