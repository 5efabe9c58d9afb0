package mrc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Header is the metadata record for one MRC file. Field order mirrors the
// 256-word fixed header; serialization offsets live in encodeHeader and
// decodeHeader below.
type Header struct {
	// Layout.
	NX, NY, NZ                int32 // dimensions, columns/rows/sections
	Mode                      Mode
	NXStart, NYStart, NZStart int32 // origin offsets
	MX, MY, MZ                int32 // grid intervals

	// Geometry. MAPC/MAPR/MAPS carry the axis-to-dimension assignment.
	CellA, CellB, CellC            float32
	CellAlpha, CellBeta, CellGamma float32
	MapC, MapR, MapS               float32

	// Density statistics.
	DMin, DMax, DMean float32
	RMS               float32

	// Space group and extension.
	ISPG           int32
	NSymBT         int32 // extended header byte length
	Extra1, Extra2 int32 // reserved, carried opaquely
	ExtType        [4]byte
	NVersion       int32
	Reserved       [84]byte // words 29-49, carried opaquely

	// Origin of a subvolume or phase origin.
	OriginX, OriginY, OriginZ float32

	// Identification.
	Map    [4]byte
	MachSt [4]byte

	// Labels: NLabl slots of the 10 fixed 80-character entries are in use.
	NLabl int32
	Label [800]byte

	// ExtHeader is the raw extended header; its length always equals NSymBT.
	ExtHeader []byte
}

// NVersionMRC2014 is the format year/version written by default.
const NVersionMRC2014 = 20140

// NewHeader returns a metadata record populated with the documented
// defaults: unit dimensions and grid, mode 0, 90-degree cell angles, host
// endianness tags, blank labels and an empty extended header.
func NewHeader() *Header {
	h := &Header{
		NX: 1, NY: 1, NZ: 1,
		Mode: ModeUint8,
		MX:   1, MY: 1, MZ: 1,
		CellAlpha: 90, CellBeta: 90, CellGamma: 90,
		MapC: 1, MapR: 2, MapS: 3,
		NVersion: NVersionMRC2014,
	}
	copy(h.ExtType[:], "MRCO")
	h.stampByteOrder(hostOrder == binary.ByteOrder(binary.LittleEndian))
	for i := range h.Label {
		h.Label[i] = ' '
	}
	return h
}

// stampByteOrder sets the MAP magic and MACHST machine stamp for the given
// byte order. Little-endian writes "MAP " and {68,65,0,0}; big-endian writes
// the reversed tag and {0,0,65,68}.
func (h *Header) stampByteOrder(little bool) {
	if little {
		copy(h.Map[:], MagicMap)
		h.MachSt = machStampLittle
		return
	}
	for i := 0; i < 4; i++ {
		h.Map[i] = MagicMap[3-i]
	}
	h.MachSt = machStampBig
}

// Dim derives the dimensionality class from ISPG and MZ. It is never stored;
// the pair of fields is the only source of truth.
func (h *Header) Dim() (DimClass, bool) {
	return DimensionClass(h.ISPG, h.MZ)
}

// Labels returns the in-use label slots with trailing padding removed.
func (h *Header) Labels() []string {
	n := int(h.NLabl)
	if n < 0 {
		n = 0
	}
	if n > 10 {
		n = 10
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, strings.TrimRight(string(h.Label[i*80:(i+1)*80]), " \x00"))
	}
	return out
}

// AddLabel appends a label, truncated to 80 characters and padded with
// spaces. Once all 10 slots are used further labels are dropped.
func (h *Header) AddLabel(s string) {
	if h.NLabl >= 10 {
		return
	}
	slot := h.Label[h.NLabl*80 : (h.NLabl+1)*80]
	for i := range slot {
		slot[i] = ' '
	}
	copy(slot, s)
	h.NLabl++
}

// voxels returns the element count NX*NY*NZ.
func (h *Header) voxels() int64 {
	return int64(h.NX) * int64(h.NY) * int64(h.NZ)
}

// decodeHeader parses the 1024 fixed header bytes. The extended header is
// read separately by the caller.
func decodeHeader(buf []byte, order binary.ByteOrder) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: fixed header is %d bytes, want %d", ErrTruncated, len(buf), HeaderSize)
	}
	i32 := func(word int) int32 { return int32(order.Uint32(buf[word*4:])) }
	f32 := func(word int) float32 { return math.Float32frombits(order.Uint32(buf[word*4:])) }

	h := &Header{
		NX:      i32(0),
		NY:      i32(1),
		NZ:      i32(2),
		Mode:    Mode(i32(3)),
		NXStart: i32(4),
		NYStart: i32(5),
		NZStart: i32(6),
		MX:      i32(7),
		MY:      i32(8),
		MZ:      i32(9),

		CellA:     f32(10),
		CellB:     f32(11),
		CellC:     f32(12),
		CellAlpha: f32(13),
		CellBeta:  f32(14),
		CellGamma: f32(15),
		MapC:      f32(16),
		MapR:      f32(17),
		MapS:      f32(18),
		DMin:      f32(19),
		DMax:      f32(20),
		DMean:     f32(21),

		ISPG:     i32(22),
		NSymBT:   i32(23),
		Extra1:   i32(24),
		Extra2:   i32(25),
		NVersion: i32(27),

		OriginX: f32(49),
		OriginY: f32(50),
		OriginZ: f32(51),

		RMS:   f32(54),
		NLabl: i32(55),
	}
	copy(h.ExtType[:], buf[26*4:27*4])
	copy(h.Reserved[:], buf[28*4:49*4])
	copy(h.Map[:], buf[52*4:53*4])
	copy(h.MachSt[:], buf[53*4:54*4])
	copy(h.Label[:], buf[56*4:256*4])
	return h, nil
}

// encodeHeader serializes the fixed header into a 256-slot 32-bit buffer.
// Float fields keep their bit pattern unchanged in their slot; no numeric
// conversion happens on the way in.
func (c *Codec) encodeHeader(h *Header) [HeaderSize]byte {
	order := c.order()
	var buf [HeaderSize]byte
	i32 := func(word int, v int32) { order.PutUint32(buf[word*4:], uint32(v)) }
	f32 := func(word int, v float32) { order.PutUint32(buf[word*4:], math.Float32bits(v)) }

	i32(0, h.NX)
	i32(1, h.NY)
	i32(2, h.NZ)
	i32(3, int32(h.Mode))
	i32(4, h.NXStart)
	i32(5, h.NYStart)
	i32(6, h.NZStart)
	i32(7, h.MX)
	i32(8, h.MY)
	i32(9, h.MZ)

	f32(10, h.CellA)
	f32(11, h.CellB)
	f32(12, h.CellC)
	f32(13, h.CellAlpha)
	f32(14, h.CellBeta)
	f32(15, h.CellGamma)
	f32(16, h.MapC)
	f32(17, h.MapR)
	f32(18, h.MapS)
	f32(19, h.DMin)
	f32(20, h.DMax)
	f32(21, h.DMean)

	i32(22, h.ISPG)
	i32(23, h.NSymBT)
	i32(24, h.Extra1)
	i32(25, h.Extra2)
	copy(buf[26*4:], h.ExtType[:])
	i32(27, h.NVersion)
	copy(buf[28*4:49*4], h.Reserved[:])

	f32(49, h.OriginX)
	f32(50, h.OriginY)
	f32(51, h.OriginZ)

	copy(buf[52*4:], h.Map[:])
	copy(buf[53*4:], h.MachSt[:])
	f32(54, h.RMS)
	i32(55, h.NLabl)
	copy(buf[56*4:], h.Label[:])
	return buf
}
