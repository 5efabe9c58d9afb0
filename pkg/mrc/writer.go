package mrc

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/emtools/mrcio/pkg/volume"
)

// Kind tags the convenience writer's format choice.
type Kind string

const (
	KindImage  Kind = "image"
	KindStack  Kind = "stack"
	KindVolume Kind = "volume"
)

// Write serializes the metadata record and pixel array into path: the
// 1024-byte fixed header, the extended header if any, then the payload in
// on-disk row-major order. The array shape must already match NX/NY/NZ in
// the metadata; this entry point never infers shape (WriteKind does).
//
// MODE is re-derived from the array element type, and DMAX/DMEAN/RMS are
// recomputed from the data. DMIN is written as supplied; downstream
// consumers rely on that slot being left alone here.
func (c *Codec) Write(arr *volume.Array, hdr *Header, path string) error {
	stackName, gzipped, err := checkExtension(path)
	if err != nil {
		return err
	}

	nx, ny, nz := arr.Dims()
	if int32(nx) != hdr.NX || int32(ny) != hdr.NY || int32(nz) != hdr.NZ {
		return fmt.Errorf("%w: array is %dx%dx%d, header records %dx%dx%d",
			ErrShapeMismatch, nx, ny, nz, hdr.NX, hdr.NY, hdr.NZ)
	}

	mode, err := ModeFor(arr.DType())
	if err != nil {
		return err
	}

	// Work on a copy so the caller's record is not mutated.
	h := *hdr
	h.Mode = mode

	st, ok := Summarize(arr)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, arr.DType())
	}
	h.DMax = float32(st.Max)
	h.DMean = float32(st.Mean)
	h.RMS = float32(st.Sigma)

	// Pad the extended header with trailing zeros to a whole number of
	// 32-bit words and record the padded length, keeping len == NSYMBT.
	if rem := len(hdr.ExtHeader) % 4; rem != 0 {
		padded := make([]byte, len(hdr.ExtHeader)+4-rem)
		copy(padded, hdr.ExtHeader)
		h.ExtHeader = padded
	}
	h.NSymBT = int32(len(h.ExtHeader))

	h.stampByteOrder(c.littleEndian())
	c.checkNameConvention(path, stackName, &h)

	fixed := c.encodeHeader(&h)

	w := arr.DType().Size()
	disk := make([]byte, len(arr.Bytes()))
	transposeToDisk(disk, arr.Bytes(), nx, ny, nz, w)
	if !c.littleEndian() {
		swapScalars(disk, modeTable[mode].comp)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	werr := func() error {
		var out io.Writer = f
		var zw *gzip.Writer
		if gzipped {
			zw = gzip.NewWriter(f)
			out = zw
		}
		if err := writeFull(out, fixed[:]); err != nil {
			return err
		}
		if len(h.ExtHeader) > 0 {
			if err := writeFull(out, h.ExtHeader); err != nil {
				return err
			}
		}
		if err := writeFull(out, disk); err != nil {
			return err
		}
		if zw != nil {
			return zw.Close()
		}
		return nil
	}()
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// WriteKind writes a bare pixel array, deriving NX/NY/NZ from its shape and
// the space-group fields from the kind tag.
func (c *Codec) WriteKind(arr *volume.Array, path string, kind Kind) error {
	nx, ny, nz := arr.Dims()
	h := NewHeader()
	h.NX, h.NY, h.NZ = int32(nx), int32(ny), int32(nz)
	switch kind {
	case KindImage:
		h.ISPG, h.MZ = 0, 1
	case KindStack:
		h.ISPG, h.MZ = 0, int32(nz)
	case KindVolume:
		h.ISPG, h.MZ = 1, int32(nz)
	default:
		return fmt.Errorf("%w: %q", ErrBadKind, kind)
	}
	return c.Write(arr, h, path)
}

// Stats summarizes the density values of an array.
type Stats struct {
	Mean  float64
	Sigma float64 // population standard deviation
	Max   float64
	Min   float64
}

// Summarize computes the density statistics over every scalar component in
// one pass. Complex elements contribute both components. ok is false for
// element types that carry no scalar interpretation.
func Summarize(arr *volume.Array) (Stats, bool) {
	var (
		n          int
		sum, sumSq float64
	)
	st := Stats{Max: math.Inf(-1), Min: math.Inf(1)}
	ok := arr.ForEachScalar(func(v float64) {
		n++
		sum += v
		sumSq += v * v
		if v > st.Max {
			st.Max = v
		}
		if v < st.Min {
			st.Min = v
		}
	})
	if !ok || n == 0 {
		return Stats{}, false
	}
	st.Mean = sum / float64(n)
	variance := sumSq/float64(n) - st.Mean*st.Mean
	if variance > 0 {
		st.Sigma = math.Sqrt(variance)
	}
	return st, true
}

func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// Package-level convenience entry points using the default codec.

func Write(arr *volume.Array, hdr *Header, path string) error {
	return defaultCodec.Write(arr, hdr, path)
}

func WriteKind(arr *volume.Array, path string, kind Kind) error {
	return defaultCodec.WriteKind(arr, path, kind)
}
