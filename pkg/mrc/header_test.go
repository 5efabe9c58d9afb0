package mrc

import (
	"bytes"
	"encoding/binary"
	"math"
	"reflect"
	"testing"
)

func TestNewHeaderDefaults(t *testing.T) {
	t.Parallel()

	h := NewHeader()
	if h.NX != 1 || h.NY != 1 || h.NZ != 1 || h.MX != 1 || h.MY != 1 || h.MZ != 1 {
		t.Fatalf("unit defaults: %+v", h)
	}
	if h.Mode != ModeUint8 {
		t.Fatalf("mode default: got %d", h.Mode)
	}
	if h.CellAlpha != 90 || h.CellBeta != 90 || h.CellGamma != 90 {
		t.Fatalf("angle defaults: %g %g %g", h.CellAlpha, h.CellBeta, h.CellGamma)
	}
	if len(h.ExtHeader) != 0 || h.NSymBT != 0 {
		t.Fatalf("extended header should default empty")
	}
	for i, b := range h.Label {
		if b != ' ' {
			t.Fatalf("label byte %d: got %q want space", i, b)
		}
	}
}

func TestDimensionClass(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ispg, mz int32
		want     DimClass
		ok       bool
	}{
		{0, 1, DimImage, true},
		{0, 5, DimImageStack, true},
		{1, 1, DimVolume, true},
		{1, 99, DimVolume, true},
		{402, 1, DimVolumeStack, true},
		{402, 64, DimVolumeStack, true},
		{2, 1, DimUnknown, false},
		{400, 1, DimUnknown, false},
		{0, 0, DimUnknown, false},
	}
	for _, tc := range cases {
		got, ok := DimensionClass(tc.ispg, tc.mz)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("DimensionClass(%d,%d): got (%v,%v) want (%v,%v)",
				tc.ispg, tc.mz, got, ok, tc.want, tc.ok)
		}
	}
}

func TestExtFormatName(t *testing.T) {
	t.Parallel()

	for _, tag := range []string{"CCP4", "MRCO", "SERI", "AGAR", "FEI1"} {
		if _, ok := ExtFormatName(tag); !ok {
			t.Fatalf("tag %q should be recognized", tag)
		}
	}
	if _, ok := ExtFormatName("ZZZZ"); ok {
		t.Fatalf("unknown tag should not be recognized")
	}
}

func TestEncodeHeaderIsAlways1024Bytes(t *testing.T) {
	t.Parallel()

	c := &Codec{Order: binary.LittleEndian}
	h := NewHeader()
	h.ExtHeader = make([]byte, 240)
	h.NSymBT = 240
	buf := c.encodeHeader(h)
	if len(buf) != HeaderSize {
		t.Fatalf("fixed header: got %d bytes want %d", len(buf), HeaderSize)
	}
}

func TestEncodeHeaderLittleEndianLayout(t *testing.T) {
	t.Parallel()

	c := &Codec{Order: binary.LittleEndian}
	h := NewHeader()
	h.NX = 0x01020304
	h.DMin = 1.25
	h.stampByteOrder(true)
	buf := c.encodeHeader(h)

	if buf[0] != 0x04 || buf[3] != 0x01 {
		t.Fatalf("NX is not little-endian: %x", buf[0:4])
	}
	// Float slots carry the unchanged bit pattern.
	if got := binary.LittleEndian.Uint32(buf[19*4:]); got != math.Float32bits(1.25) {
		t.Fatalf("DMin bits: got %08x want %08x", got, math.Float32bits(1.25))
	}
	if !bytes.Equal(buf[52*4:52*4+4], []byte("MAP ")) {
		t.Fatalf("MAP tag: got %q", buf[52*4:52*4+4])
	}
	if !bytes.Equal(buf[53*4:53*4+4], []byte{68, 65, 0, 0}) {
		t.Fatalf("machine stamp: got %v", buf[53*4:53*4+4])
	}
}

func TestBigEndianStamp(t *testing.T) {
	t.Parallel()

	h := NewHeader()
	h.stampByteOrder(false)
	if string(h.Map[:]) != " PAM" {
		t.Fatalf("big-endian tag: got %q", h.Map[:])
	}
	if h.MachSt != [4]byte{0, 0, 65, 68} {
		t.Fatalf("big-endian stamp: got %v", h.MachSt)
	}
}

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	c := &Codec{Order: binary.LittleEndian}
	h := NewHeader()
	h.NX, h.NY, h.NZ = 7, 9, 3
	h.Mode = ModeInt16
	h.NXStart, h.NYStart, h.NZStart = -1, -2, -3
	h.MX, h.MY, h.MZ = 7, 9, 3
	h.CellA, h.CellB, h.CellC = 70, 90, 30
	h.MapC, h.MapR, h.MapS = 2, 1, 3
	h.DMin, h.DMax, h.DMean = -4, 4, 0.5
	h.ISPG = 1
	h.Extra1, h.Extra2 = 11, 22
	h.NVersion = 20140
	h.OriginX, h.OriginY, h.OriginZ = 1, 2, 3
	h.RMS = 0.25
	h.AddLabel("unit test volume")

	buf := c.encodeHeader(h)
	got, err := decodeHeader(buf[:], binary.LittleEndian)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// ExtHeader is read separately; compare the fixed fields only.
	got.ExtHeader = h.ExtHeader
	if !reflect.DeepEqual(got, h) {
		t.Fatalf("round-trip mismatch:\ngot  %+v\nwant %+v", got, h)
	}
}

func TestLabels(t *testing.T) {
	t.Parallel()

	h := NewHeader()
	h.AddLabel("first")
	h.AddLabel("second")
	labels := h.Labels()
	if len(labels) != 2 || labels[0] != "first" || labels[1] != "second" {
		t.Fatalf("labels: got %q", labels)
	}
	for i := 0; i < 20; i++ {
		h.AddLabel("overflow")
	}
	if h.NLabl != 10 {
		t.Fatalf("label count should cap at 10, got %d", h.NLabl)
	}
}
