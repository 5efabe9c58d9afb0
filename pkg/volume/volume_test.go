package volume

import "testing"

func TestNewRejectsBadInputs(t *testing.T) {
	t.Parallel()

	if _, err := New(DTypeInvalid, 2, 2, 1); err == nil {
		t.Fatalf("expected error for invalid dtype")
	}
	if _, err := New(DTypeF32, 0, 2, 1); err == nil {
		t.Fatalf("expected error for zero dimension")
	}
	if _, err := New(DTypeF32, 2, -1, 1); err == nil {
		t.Fatalf("expected error for negative dimension")
	}
}

func TestFromBytesLengthCheck(t *testing.T) {
	t.Parallel()

	if _, err := FromBytes(DTypeI16, 2, 2, 1, make([]byte, 7)); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	a, err := FromBytes(DTypeI16, 2, 2, 1, make([]byte, 8))
	if err != nil {
		t.Fatalf("from bytes: %v", err)
	}
	if a.Len() != 4 {
		t.Fatalf("len: got %d want 4", a.Len())
	}
}

func TestAccessorsRoundTrip(t *testing.T) {
	t.Parallel()

	a, err := New(DTypeF32, 3, 2, 2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.SetFloat32(2, 1, 1, 1.5)
	a.SetFloat32(0, 0, 0, -2)
	if got := a.Float32At(2, 1, 1); got != 1.5 {
		t.Fatalf("Float32At: got %v want 1.5", got)
	}
	if got := a.Float32At(0, 0, 0); got != -2 {
		t.Fatalf("Float32At: got %v want -2", got)
	}
	if got := a.Float32At(1, 0, 1); got != 0 {
		t.Fatalf("untouched element: got %v want 0", got)
	}
}

func TestRowAxisIsFastest(t *testing.T) {
	t.Parallel()

	a, err := New(DTypeU8, 3, 2, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.SetUint8(1, 0, 0, 7)
	// Element (x=1, y=0) sits at flat index x*NY+y = 2.
	if a.Bytes()[2] != 7 {
		t.Fatalf("expected row-fastest layout, raw=%v", a.Bytes())
	}
}

func TestForEachScalarComplexVisitsPairs(t *testing.T) {
	t.Parallel()

	a, err := New(DTypeC16, 2, 1, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var n int
	if !a.ForEachScalar(func(float64) { n++ }) {
		t.Fatalf("ForEachScalar reported no scalar interpretation")
	}
	if n != 4 {
		t.Fatalf("scalar count: got %d want 4", n)
	}

	rgb, err := New(DTypeRGB8, 2, 2, 1)
	if err != nil {
		t.Fatalf("new rgb: %v", err)
	}
	if rgb.ForEachScalar(func(float64) {}) {
		t.Fatalf("rgb should have no scalar interpretation")
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	a, _ := New(DTypeU8, 2, 2, 1)
	b, _ := New(DTypeU8, 2, 2, 1)
	if !a.Equal(b) {
		t.Fatalf("fresh arrays should be equal")
	}
	b.SetUint8(0, 1, 0, 9)
	if a.Equal(b) {
		t.Fatalf("arrays with different payloads should differ")
	}
	c, _ := New(DTypeU8, 2, 2, 2)
	if a.Equal(c) {
		t.Fatalf("arrays with different shapes should differ")
	}
}
