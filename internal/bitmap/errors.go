package bitmap

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic          = errors.New("not a bitmap: missing BM signature")
	ErrUnsupportedDepth  = errors.New("unsupported bits per pixel")
	ErrUnsupportedPlanes = errors.New("unsupported color plane count")
	ErrTooLarge          = errors.New("image dimensions too large")
	ErrTruncated         = errors.New("truncated bitmap data")
)

// DecodeError is returned when a bitmap cannot be read. No partial image is
// ever returned alongside it.
type DecodeError struct {
	Op   string
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode bitmap: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("decode bitmap %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError is returned when a bitmap cannot be written. The destination
// must be treated as unusable.
type EncodeError struct {
	Op   string
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("encode bitmap: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("encode bitmap %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
