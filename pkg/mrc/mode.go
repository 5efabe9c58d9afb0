package mrc

import (
	"fmt"

	"github.com/emtools/mrcio/pkg/volume"
)

// Mode is the integer pixel-encoding code stored at header word 4.
type Mode int32

const (
	ModeUint8          Mode = 0 // unsigned 8-bit integer
	ModeInt16          Mode = 1 // signed 16-bit integer
	ModeFloat32        Mode = 2 // 32-bit IEEE float
	ModeComplexInt16   Mode = 3 // signed 16-bit real/imaginary pair
	ModeComplexFloat32 Mode = 4 // 32-bit float real/imaginary pair
	ModeUint16         Mode = 6 // unsigned 16-bit integer
	ModeInt32          Mode = 7 // signed 32-bit integer
	ModeRGB            Mode = 16 // byte-packed RGB, not supported
)

// modeTable is the single source of truth for mode dispatch. The read and
// write paths both consult it; they must never diverge. comp is the scalar
// component width used for byte-order conversion; it differs from the
// element width only for the complex modes.
var modeTable = map[Mode]struct {
	dtype volume.DType
	width int
	comp  int
}{
	ModeUint8:          {volume.DTypeU8, 1, 1},
	ModeInt16:          {volume.DTypeI16, 2, 2},
	ModeFloat32:        {volume.DTypeF32, 4, 4},
	ModeComplexInt16:   {volume.DTypeC16, 4, 2},
	ModeComplexFloat32: {volume.DTypeC32, 8, 4},
	ModeUint16:         {volume.DTypeU16, 2, 2},
	ModeInt32:          {volume.DTypeI32, 4, 4},
}

// modeFor is the inverse mapping, derived from modeTable at init so the two
// directions cannot drift apart.
var modeFor = func() map[volume.DType]Mode {
	inv := make(map[volume.DType]Mode, len(modeTable))
	for m, spec := range modeTable {
		inv[spec.dtype] = m
	}
	return inv
}()

// Spec returns the element type and byte width for the mode. Mode 16 is
// explicitly unsupported; any mode outside the table is unknown.
func (m Mode) Spec() (volume.DType, int, error) {
	if m == ModeRGB {
		return volume.DTypeInvalid, 0, fmt.Errorf("%w: packed RGB (mode 16)", ErrUnsupportedMode)
	}
	spec, ok := modeTable[m]
	if !ok {
		return volume.DTypeInvalid, 0, fmt.Errorf("%w: %d", ErrUnknownMode, int32(m))
	}
	return spec.dtype, spec.width, nil
}

func (m Mode) String() string {
	if spec, ok := modeTable[m]; ok {
		return fmt.Sprintf("%d (%s)", int32(m), spec.dtype)
	}
	if m == ModeRGB {
		return "16 (rgb8)"
	}
	return fmt.Sprintf("%d", int32(m))
}

// ModeFor re-derives the pixel mode from an element type on the write path.
func ModeFor(d volume.DType) (Mode, error) {
	if d == volume.DTypeRGB8 {
		return 0, fmt.Errorf("%w: packed RGB (mode 16)", ErrUnsupportedMode)
	}
	m, ok := modeFor[d]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, d)
	}
	return m, nil
}
