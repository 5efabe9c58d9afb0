// Package volume provides the dense pixel array type carried in and out of
// the MRC codec.
//
// An Array owns a flat byte buffer plus an element type and dimensions. It
// describes data only and never implies a file layout; axis ordering
// conventions are the codec's business.
package volume

import (
	"errors"
	"fmt"
)

// DType identifies the element encoding of an Array.
type DType uint8

const (
	DTypeInvalid DType = iota
	DTypeU8
	DTypeI16
	DTypeU16
	DTypeI32
	DTypeF32
	// Complex pairs are treated as a single element of twice the scalar width.
	DTypeC16 // int16 real/imaginary pair
	DTypeC32 // float32 real/imaginary pair
	// DTypeRGB8 is recognised so callers can name it, but the MRC codec
	// rejects it on both read and write.
	DTypeRGB8
)

// Size returns the element width in bytes, or 0 for an invalid dtype.
func (d DType) Size() int {
	switch d {
	case DTypeU8:
		return 1
	case DTypeI16, DTypeU16:
		return 2
	case DTypeI32, DTypeF32, DTypeC16:
		return 4
	case DTypeC32:
		return 8
	case DTypeRGB8:
		return 3
	default:
		return 0
	}
}

func (d DType) String() string {
	switch d {
	case DTypeU8:
		return "u8"
	case DTypeI16:
		return "i16"
	case DTypeU16:
		return "u16"
	case DTypeI32:
		return "i32"
	case DTypeF32:
		return "f32"
	case DTypeC16:
		return "c16"
	case DTypeC32:
		return "c32"
	case DTypeRGB8:
		return "rgb8"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
}

var (
	ErrBadDType   = errors.New("volume: invalid dtype")
	ErrBadDims    = errors.New("volume: dimensions must be >= 1")
	ErrSize       = errors.New("volume: raw data length mismatch")
	ErrWrongDType = errors.New("volume: accessor dtype mismatch")
)

// Array is a dense pixel array of shape (NX, NY, NZ). The row axis (Y) is the
// fastest-varying axis in memory: element (x, y, z) lives at flat index
// (z*NX+x)*NY + y. A 2D image is an Array with NZ == 1.
type Array struct {
	dtype      DType
	nx, ny, nz int
	raw        []byte
}

// New allocates a zero-filled array.
func New(dtype DType, nx, ny, nz int) (*Array, error) {
	w := dtype.Size()
	if w == 0 {
		return nil, ErrBadDType
	}
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, ErrBadDims
	}
	n := nx * ny * nz
	if n/nx/ny != nz {
		return nil, fmt.Errorf("%w: %dx%dx%d overflows", ErrBadDims, nx, ny, nz)
	}
	return &Array{
		dtype: dtype,
		nx:    nx, ny: ny, nz: nz,
		raw: make([]byte, n*w),
	}, nil
}

// FromBytes wraps an existing flat buffer. The buffer must hold exactly
// nx*ny*nz elements and ownership transfers to the Array.
func FromBytes(dtype DType, nx, ny, nz int, raw []byte) (*Array, error) {
	a, err := New(dtype, nx, ny, nz)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(a.raw) {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSize, len(raw), len(a.raw))
	}
	a.raw = raw
	return a, nil
}

// DType returns the element type.
func (a *Array) DType() DType { return a.dtype }

// Dims returns the (NX, NY, NZ) shape.
func (a *Array) Dims() (nx, ny, nz int) { return a.nx, a.ny, a.nz }

// Is3D reports whether the array has more than one section.
func (a *Array) Is3D() bool { return a.nz > 1 }

// Len returns the element count.
func (a *Array) Len() int { return a.nx * a.ny * a.nz }

// Bytes returns the raw payload. The slice aliases the array's storage.
func (a *Array) Bytes() []byte { return a.raw }

// offset returns the byte offset of element (x, y, z).
func (a *Array) offset(x, y, z int) int {
	if x < 0 || x >= a.nx || y < 0 || y >= a.ny || z < 0 || z >= a.nz {
		panic("volume: index out of range")
	}
	return ((z*a.nx+x)*a.ny + y) * a.dtype.Size()
}

// Equal reports whether two arrays have the same dtype, shape and payload.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.dtype != b.dtype || a.nx != b.nx || a.ny != b.ny || a.nz != b.nz {
		return false
	}
	return string(a.raw) == string(b.raw)
}
