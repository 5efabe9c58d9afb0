package volume

import (
	"encoding/binary"
	"math"
)

// Scalar accessors. The payload is stored little-endian. Accessors panic on
// out-of-range indices (like slice indexing) and on a mismatched dtype.

func (a *Array) mustDType(d DType) {
	if a.dtype != d {
		panic(ErrWrongDType)
	}
}

func (a *Array) Uint8At(x, y, z int) uint8 {
	a.mustDType(DTypeU8)
	return a.raw[a.offset(x, y, z)]
}

func (a *Array) SetUint8(x, y, z int, v uint8) {
	a.mustDType(DTypeU8)
	a.raw[a.offset(x, y, z)] = v
}

func (a *Array) Int16At(x, y, z int) int16 {
	a.mustDType(DTypeI16)
	return int16(binary.LittleEndian.Uint16(a.raw[a.offset(x, y, z):]))
}

func (a *Array) SetInt16(x, y, z int, v int16) {
	a.mustDType(DTypeI16)
	binary.LittleEndian.PutUint16(a.raw[a.offset(x, y, z):], uint16(v))
}

func (a *Array) Uint16At(x, y, z int) uint16 {
	a.mustDType(DTypeU16)
	return binary.LittleEndian.Uint16(a.raw[a.offset(x, y, z):])
}

func (a *Array) SetUint16(x, y, z int, v uint16) {
	a.mustDType(DTypeU16)
	binary.LittleEndian.PutUint16(a.raw[a.offset(x, y, z):], v)
}

func (a *Array) Int32At(x, y, z int) int32 {
	a.mustDType(DTypeI32)
	return int32(binary.LittleEndian.Uint32(a.raw[a.offset(x, y, z):]))
}

func (a *Array) SetInt32(x, y, z int, v int32) {
	a.mustDType(DTypeI32)
	binary.LittleEndian.PutUint32(a.raw[a.offset(x, y, z):], uint32(v))
}

func (a *Array) Float32At(x, y, z int) float32 {
	a.mustDType(DTypeF32)
	return math.Float32frombits(binary.LittleEndian.Uint32(a.raw[a.offset(x, y, z):]))
}

func (a *Array) SetFloat32(x, y, z int, v float32) {
	a.mustDType(DTypeF32)
	binary.LittleEndian.PutUint32(a.raw[a.offset(x, y, z):], math.Float32bits(v))
}

// ForEachScalar visits every scalar component in flat order as float64.
// Complex dtypes contribute their real and imaginary parts separately.
// RGB8 and invalid dtypes visit nothing and return false.
func (a *Array) ForEachScalar(fn func(v float64)) bool {
	raw := a.raw
	switch a.dtype {
	case DTypeU8:
		for _, b := range raw {
			fn(float64(b))
		}
	case DTypeI16, DTypeC16:
		for off := 0; off+2 <= len(raw); off += 2 {
			fn(float64(int16(binary.LittleEndian.Uint16(raw[off:]))))
		}
	case DTypeU16:
		for off := 0; off+2 <= len(raw); off += 2 {
			fn(float64(binary.LittleEndian.Uint16(raw[off:])))
		}
	case DTypeI32:
		for off := 0; off+4 <= len(raw); off += 4 {
			fn(float64(int32(binary.LittleEndian.Uint32(raw[off:]))))
		}
	case DTypeF32, DTypeC32:
		for off := 0; off+4 <= len(raw); off += 4 {
			fn(float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[off:]))))
		}
	default:
		return false
	}
	return true
}
