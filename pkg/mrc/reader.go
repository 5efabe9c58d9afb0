package mrc

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sys/unix"

	"github.com/emtools/mrcio/pkg/volume"
)

// DecodeHeader decodes the 1024-byte fixed header plus the extended header
// from a stream positioned at offset 0, leaving it at offset 1024+NSYMBT.
// A declared extended header that is missing or short is fatal.
func (c *Codec) DecodeHeader(r io.Reader) (*Header, error) {
	var fixed [HeaderSize]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, fmt.Errorf("%w: fixed header: %v", ErrTruncated, err)
	}
	h, err := decodeHeader(fixed[:], c.order())
	if err != nil {
		return nil, err
	}
	if h.NSymBT < 0 {
		return nil, fmt.Errorf("%w: negative extended header length %d", ErrTruncated, h.NSymBT)
	}
	if h.NSymBT > 0 {
		h.ExtHeader = make([]byte, h.NSymBT)
		if _, err := io.ReadFull(r, h.ExtHeader); err != nil {
			return nil, fmt.Errorf("%w: extended header (%d bytes declared): %v", ErrTruncated, h.NSymBT, err)
		}
	}
	c.diagnose(h)
	return h, nil
}

// diagnose reports the non-fatal header conditions. They never abort.
func (c *Codec) diagnose(h *Header) {
	if _, ok := h.Dim(); !ok {
		c.logger().Warn("unrecognized ispg/mz combination",
			"ispg", h.ISPG, "mz", h.MZ)
	}
	if tag := string(h.ExtType[:]); h.NSymBT > 0 {
		if _, ok := ExtFormatName(tag); !ok {
			c.logger().Warn("unrecognized extended header format", "exttype", tag)
		}
	}
}

// DecodeImage reads the pixel payload from a stream positioned just after
// the header(s). avail is the number of bytes remaining in the stream;
// every size check happens against it before any buffer is allocated.
// startSlice is 1-based; numSlices 0 means all remaining sections. Asking
// for more sections than exist is silently capped, but starting past the
// last section is a range error.
func (c *Codec) DecodeImage(r io.Reader, avail int64, h *Header, startSlice, numSlices int) (*volume.Array, error) {
	dtype, w, err := h.Mode.Spec()
	if err != nil {
		return nil, err
	}
	nx, ny, nz := int(h.NX), int(h.NY), int(h.NZ)
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("mrc: invalid dimensions %dx%dx%d in header", nx, ny, nz)
	}
	if startSlice < 1 {
		return nil, fmt.Errorf("%w: start slice %d", ErrRange, startSlice)
	}
	if numSlices < 0 {
		numSlices = 0
	}

	sliceBytes := int64(nx) * int64(ny) * int64(w)
	skip := int64(startSlice-1) * sliceBytes
	if startSlice > nz || skip > avail {
		return nil, fmt.Errorf("%w: cannot start at slice %d", ErrRange, startSlice)
	}

	eff := nz - (startSlice - 1)
	if numSlices > 0 && numSlices < eff {
		eff = numSlices
	}
	need := int64(eff) * sliceBytes
	if avail-skip < need {
		return nil, fmt.Errorf("%w: cannot read %d slices from slice %d: need %d bytes, have %d",
			ErrRange, eff, startSlice, need, avail-skip)
	}

	if skip > 0 {
		if _, err := io.CopyN(io.Discard, r, skip); err != nil {
			return nil, fmt.Errorf("%w: skipping %d bytes: %v", ErrTruncated, skip, err)
		}
	}
	src := make([]byte, need)
	if _, err := io.ReadFull(r, src); err != nil {
		return nil, fmt.Errorf("%w: pixel payload: %v", ErrTruncated, err)
	}
	if !c.littleEndian() {
		swapScalars(src, modeTable[h.Mode].comp)
	}

	dst := make([]byte, need)
	transposeToCanonical(dst, src, nx, ny, eff, w)
	return volume.FromBytes(dtype, nx, ny, eff, dst)
}

// Read reads a whole file: header, extended header and every section.
func (c *Codec) Read(path string) (*Image, error) {
	return c.ReadSection(path, 1, 0)
}

// ReadHeader reads only the metadata record of a file, leaving the pixel
// payload untouched.
func (c *Codec) ReadHeader(path string) (*Header, error) {
	stackName, gzipped, err := checkExtension(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if gzipped {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}
	h, err := c.DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	c.checkNameConvention(path, stackName, h)
	return h, nil
}

// ReadSection reads numSlices sections starting at the 1-based startSlice.
// The filename must carry a recognized extension before any byte is read.
// The file is mapped read-only where the platform allows it, with a plain
// read fallback; the mapping is released on every exit path.
func (c *Codec) ReadSection(path string, startSlice, numSlices int) (*Image, error) {
	stackName, gzipped, err := checkExtension(path)
	if err != nil {
		return nil, err
	}

	var data []byte
	cleanup := func() {}
	if gzipped {
		if data, err = readGzipFile(path); err != nil {
			return nil, err
		}
	} else {
		if data, cleanup, err = mapFile(path); err != nil {
			return nil, err
		}
	}
	defer cleanup()

	br := bytes.NewReader(data)
	h, err := c.DecodeHeader(br)
	if err != nil {
		return nil, err
	}
	c.checkNameConvention(path, stackName, h)

	// DecodeImage copies out of the mapping and DecodeHeader allocated the
	// extended header, so nothing retains data after cleanup.
	arr, err := c.DecodeImage(br, int64(br.Len()), h, startSlice, numSlices)
	if err != nil {
		return nil, err
	}
	return NewImage(arr, h), nil
}

// checkNameConvention warns when the stack/single filename convention does
// not agree with the ISPG/MZ-derived contents. Diagnostic only.
func (c *Codec) checkNameConvention(path string, stackName bool, h *Header) {
	dim, ok := h.Dim()
	if !ok {
		return
	}
	isStack := dim == DimImageStack || dim == DimVolumeStack
	if isStack != stackName {
		c.logger().Warn("filename convention does not match contents",
			"path", path, "contents", dim.String())
	}
}

// mapFile maps path read-only, falling back to ReadAt-based loading when
// mmap is unavailable. The returned cleanup releases any mapping.
func mapFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size64 := st.Size()
	if size64 < HeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes on disk", ErrTruncated, size64)
	}
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, nil, fmt.Errorf("mrc: cannot index %d bytes on this architecture", size64)
	}
	size := int(size64)

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return data, func() { _ = unix.Munmap(data) }, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, nil, err
	}
	return data, func() {}, nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func readGzipFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()
	return io.ReadAll(zr)
}

// Package-level convenience entry points using the default codec.

func DecodeHeader(r io.Reader) (*Header, error) { return defaultCodec.DecodeHeader(r) }

func DecodeImage(r io.Reader, avail int64, h *Header, startSlice, numSlices int) (*volume.Array, error) {
	return defaultCodec.DecodeImage(r, avail, h, startSlice, numSlices)
}

func Read(path string) (*Image, error) { return defaultCodec.Read(path) }

func ReadHeader(path string) (*Header, error) { return defaultCodec.ReadHeader(path) }

func ReadSection(path string, startSlice, numSlices int) (*Image, error) {
	return defaultCodec.ReadSection(path, startSlice, numSlices)
}
