package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// rawBitmap builds a bitmap by hand so tests do not depend on Write
func rawBitmap(t *testing.T, width, height uint32, bpp uint16, extra int, pixels []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	offset := uint32(54 + extra)
	fh := fileHeader{Magic: [2]byte{'B', 'M'}, FileSize: offset + uint32(len(pixels)), Reserved1: 7, Reserved2: 9, Offset: offset}
	ih := infoHeader{Size: uint32(40 + extra), Width: width, Height: height, Planes: 1, BitsPerPixel: bpp, XPixelsPerMeter: 2835, YPixelsPerMeter: 2835}
	if err := binary.Write(&buf, binary.LittleEndian, &fh); err != nil {
		t.Fatalf("Failed to write file header: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, &ih); err != nil {
		t.Fatalf("Failed to write info header: %v", err)
	}
	buf.Write(make([]byte, extra))
	buf.Write(pixels)
	return buf.Bytes()
}

func testGrid(width, height int) *Grid {
	g := NewGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Set(x, y, Pixel{R: uint8(x * 40), G: uint8(y * 60), B: uint8(x*7 + y*13)})
		}
	}
	return g
}

func TestRoundTrip(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {2, 2}, {3, 1}, {1, 5}, {5, 3}, {17, 9}}

	for _, size := range sizes {
		g := testGrid(size.w, size.h)
		path := filepath.Join(t.TempDir(), "out.bmp")

		if err := Encode(NewImage(g), path); err != nil {
			t.Fatalf("%dx%d: Encode failed: %v", size.w, size.h, err)
		}
		img, err := Decode(path)
		if err != nil {
			t.Fatalf("%dx%d: Decode failed: %v", size.w, size.h, err)
		}
		if !img.Grid.Equal(g) {
			t.Errorf("%dx%d: decoded grid differs from encoded grid", size.w, size.h)
		}
	}
}

func TestWriteLayout(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(0, 0, Pixel{1, 2, 3})
	g.Set(1, 0, Pixel{4, 5, 6})
	g.Set(0, 1, Pixel{7, 8, 9})
	g.Set(1, 1, Pixel{10, 11, 12})

	img := NewImage(g)
	img.Reserved1 = 0xAB
	img.Compression = 3
	img.XPixelsPerMeter = 100

	var buf bytes.Buffer
	if err := Write(&buf, img); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data := buf.Bytes()

	// no row padding: 54 + 2*2*3
	if len(data) != 66 {
		t.Fatalf("Expected 66 bytes, got %d", len(data))
	}
	if int64(len(data)) != EncodedSize(img) {
		t.Errorf("EncodedSize = %d, wrote %d", EncodedSize(img), len(data))
	}
	if data[0] != 'B' || data[1] != 'M' {
		t.Errorf("Expected BM magic, got %q", data[:2])
	}
	if got := binary.LittleEndian.Uint32(data[2:]); got != 66 {
		t.Errorf("Expected file size 66, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(data[6:]); got != 0xAB {
		t.Errorf("Expected reserved1 to round-trip, got %#x", got)
	}
	if got := binary.LittleEndian.Uint32(data[10:]); got != 54 {
		t.Errorf("Expected pixel offset 54, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[14:]); got != 40 {
		t.Errorf("Expected info header size 40, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[30:]); got != 0 {
		t.Errorf("Expected compression 0, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[34:]); got != 12 {
		t.Errorf("Expected image size 12, got %d", got)
	}
	if got := int32(binary.LittleEndian.Uint32(data[38:])); got != 0 {
		t.Errorf("Expected density written as 0, got %d", got)
	}

	// bottom row first, each pixel as B, G, R
	want := []byte{9, 8, 7, 12, 11, 10, 3, 2, 1, 6, 5, 4}
	if !bytes.Equal(data[54:], want) {
		t.Errorf("Expected pixel data %v, got %v", want, data[54:])
	}
}

func TestReadWireOrder(t *testing.T) {
	// 1x2: bottom row stored first
	data := rawBitmap(t, 1, 2, 24, 0, []byte{30, 20, 10, 60, 50, 40})

	img, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got := img.Grid.At(0, 1); got != (Pixel{10, 20, 30}) {
		t.Errorf("Expected bottom pixel (10, 20, 30), got %v", got)
	}
	if got := img.Grid.At(0, 0); got != (Pixel{40, 50, 60}) {
		t.Errorf("Expected top pixel (40, 50, 60), got %v", got)
	}
	if img.Reserved1 != 7 || img.Reserved2 != 9 {
		t.Errorf("Expected reserved fields 7/9, got %d/%d", img.Reserved1, img.Reserved2)
	}
	if img.XPixelsPerMeter != 2835 {
		t.Errorf("Expected density 2835 to be read, got %d", img.XPixelsPerMeter)
	}
}

func TestReadSeeksToPixelOffset(t *testing.T) {
	// a V5-sized header leaves 84 extra bytes before the pixels
	data := rawBitmap(t, 1, 1, 24, 84, []byte{3, 2, 1})

	img, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got := img.Grid.At(0, 0); got != (Pixel{1, 2, 3}) {
		t.Errorf("Expected (1, 2, 3), got %v", got)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    func(t *testing.T) []byte
		wantErr error
	}{
		{
			name:    "8 bits per pixel",
			data:    func(t *testing.T) []byte { return rawBitmap(t, 1, 1, 8, 0, []byte{0, 0, 0, 0}) },
			wantErr: ErrUnsupportedDepth,
		},
		{
			name:    "32 bits per pixel",
			data:    func(t *testing.T) []byte { return rawBitmap(t, 1, 1, 32, 0, []byte{0, 0, 0, 0}) },
			wantErr: ErrUnsupportedDepth,
		},
		{
			name:    "truncated pixel data",
			data:    func(t *testing.T) []byte { return rawBitmap(t, 2, 2, 24, 0, make([]byte, 11)) },
			wantErr: ErrTruncated,
		},
		{
			name: "truncated header",
			data: func(t *testing.T) []byte {
				return rawBitmap(t, 1, 1, 24, 0, []byte{1, 2, 3})[:30]
			},
			wantErr: ErrTruncated,
		},
		{
			name:    "empty input",
			data:    func(t *testing.T) []byte { return nil },
			wantErr: ErrTruncated,
		},
		{
			name: "bad magic",
			data: func(t *testing.T) []byte {
				d := rawBitmap(t, 1, 1, 24, 0, []byte{1, 2, 3})
				d[0] = 'X'
				return d
			},
			wantErr: ErrBadMagic,
		},
		{
			name:    "too large",
			data:    func(t *testing.T) []byte { return rawBitmap(t, 1<<16, 1<<16, 24, 0, nil) },
			wantErr: ErrTooLarge,
		},
		{
			name:    "zero height with width over limit",
			data:    func(t *testing.T) []byte { return rawBitmap(t, 1<<29, 0, 24, 0, nil) },
			wantErr: ErrTooLarge,
		},
		{
			name:    "large header without pixel data",
			data:    func(t *testing.T) []byte { return rawBitmap(t, 1<<27, 2, 24, 0, nil) },
			wantErr: ErrTruncated,
		},
		{
			name:    "offset past end of input",
			data:    func(t *testing.T) []byte { return rawBitmap(t, 1, 1, 24, 0, []byte{1, 2, 3})[:54] },
			wantErr: ErrTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Read(bytes.NewReader(tt.data(t)))
			if err == nil {
				t.Fatalf("Expected error, got image %v", img)
			}
			if img != nil {
				t.Errorf("Expected no image on error, got %v", img)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("Expected *DecodeError, got %T", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReadHostileHeaderDoesNotAllocate(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
	}{
		{"zero height", 1 << 27, 0},
		{"missing pixel data", 1 << 27, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := rawBitmap(t, tt.width, tt.height, 24, 0, nil)

			var before, after runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&before)
			img, err := Read(bytes.NewReader(data))
			runtime.ReadMemStats(&after)

			if grown := after.TotalAlloc - before.TotalAlloc; grown > 1<<20 {
				t.Errorf("Read of a %d byte input allocated %d bytes", len(data), grown)
			}
			if tt.height == 0 {
				if err != nil {
					t.Fatalf("Expected empty image, got %v", err)
				}
				if img.Height() != 0 {
					t.Errorf("Expected height 0, got %d", img.Height())
				}
			} else if !errors.Is(err, ErrTruncated) {
				t.Errorf("Expected ErrTruncated, got %v", err)
			}
		})
	}
}

func TestDecodeMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.bmp")
	_, err := Decode(path)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Expected *DecodeError, got %v", err)
	}
	if de.Path != path {
		t.Errorf("Expected path %s, got %s", path, de.Path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestEncodeUncreatablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "out.bmp")
	err := Encode(NewImage(NewGrid(1, 1)), path)
	var ee *EncodeError
	if !errors.As(err, &ee) {
		t.Fatalf("Expected *EncodeError, got %v", err)
	}
	if ee.Op != "create" {
		t.Errorf("Expected create op, got %s", ee.Op)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteFailure(t *testing.T) {
	err := Write(failingWriter{}, NewImage(testGrid(4, 4)))
	var ee *EncodeError
	if !errors.As(err, &ee) {
		t.Fatalf("Expected *EncodeError, got %v", err)
	}
}
