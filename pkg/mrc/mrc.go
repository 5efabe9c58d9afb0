// Package mrc implements the MRC volumetric-image file format used in
// electron microscopy and crystallography.
//
// An MRC file is a fixed 1024-byte header, an optional variable-length
// extended header of NSYMBT bytes, and a raw pixel payload stored row-major
// per section. The codec reads that layout into a volume.Array whose row
// axis is the fastest in-memory axis, and writes the inverse.
package mrc

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

const (
	// HeaderSize is the fixed header length. It never varies with mode,
	// dimensions or extended header presence.
	HeaderSize = 1024

	// MagicMap is the format tag written at word 53 on little-endian
	// targets. Big-endian targets write the reversed bytes.
	MagicMap = "MAP "
)

// Machine stamps identifying the byte order of the writing host.
var (
	machStampLittle = [4]byte{68, 65, 0, 0}
	machStampBig    = [4]byte{0, 0, 65, 68}
)

// HostOrder returns the native byte order of the running process,
// queried once at startup.
func HostOrder() binary.ByteOrder { return hostOrder }

var hostOrder = func() binary.ByteOrder {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 0x0001)
	if probe[0] == 0x01 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}()

// Codec binds a byte order and a diagnostic logger. The zero value uses the
// host byte order and slog's default logger; both fields may be overridden.
//
// A Codec holds no state across calls: every read or write owns its stream
// exclusively for its duration and releases it on all exit paths. Concurrent
// operations against the same file are the caller's responsibility.
type Codec struct {
	// Order is the byte order used for header fields and payload
	// interpretation. It also selects the MAP/MACHST stamp on write.
	Order binary.ByteOrder

	// Log receives non-fatal diagnostics (unrecognized space-group
	// classification, unknown extension-format tags, filename mismatches).
	Log *slog.Logger
}

func (c *Codec) order() binary.ByteOrder {
	if c.Order != nil {
		return c.Order
	}
	return hostOrder
}

func (c *Codec) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

func (c *Codec) littleEndian() bool {
	return c.order() == binary.ByteOrder(binary.LittleEndian)
}

// defaultCodec backs the package-level convenience functions.
var defaultCodec = &Codec{}

// DimClass classifies what an MRC file holds, derived from ISPG and MZ.
type DimClass int32

const (
	DimImage       DimClass = 0 // single 2D image
	DimImageStack  DimClass = 1 // stack of 2D images
	DimVolume      DimClass = 2 // single 3D volume
	DimVolumeStack DimClass = 3 // stack of 3D volumes
	DimUnknown     DimClass = -1
)

func (d DimClass) String() string {
	switch d {
	case DimImage:
		return "image"
	case DimImageStack:
		return "image stack"
	case DimVolume:
		return "volume"
	case DimVolumeStack:
		return "volume stack"
	default:
		return "unknown"
	}
}

// DimensionClass derives the dimensionality class from the space group and
// the Z grid interval. It reports ok=false for combinations with no defined
// meaning; callers decide whether that matters.
func DimensionClass(ispg, mz int32) (DimClass, bool) {
	switch {
	case ispg == 0 && mz == 1:
		return DimImage, true
	case ispg == 0 && mz > 1:
		return DimImageStack, true
	case ispg == 1:
		return DimVolume, true
	case ispg > 400:
		return DimVolumeStack, true
	default:
		return DimUnknown, false
	}
}

// ExtFormatName maps the 4-character EXTTYPE tag to a human-readable label.
// Unrecognized tags report ok=false; they are a diagnostic, not an error.
func ExtFormatName(tag string) (string, bool) {
	switch tag {
	case "CCP4":
		return "CCP4 format", true
	case "MRCO":
		return "MRC format", true
	case "SERI":
		return "SerialEM", true
	case "AGAR":
		return "Agard", true
	case "FEI1":
		return "FEI software", true
	default:
		return "", false
	}
}

// Filename conventions. Single images and volumes use one extension family,
// stacks use a distinguishing variant. A trailing ".gz" selects transparent
// gzip compression and is stripped before the check.
var (
	singleExts = map[string]bool{".mrc": true, ".map": true, ".rec": true}
	stackExts  = map[string]bool{".mrcs": true, ".st": true}
)

// checkExtension validates the filename before any byte is read or written.
// It reports whether the name follows the stack convention and whether the
// payload should be gzip-compressed.
func checkExtension(name string) (stack, gzipped bool, err error) {
	base := name
	if strings.EqualFold(filepath.Ext(base), ".gz") {
		gzipped = true
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	ext := strings.ToLower(filepath.Ext(base))
	switch {
	case singleExts[ext]:
		return false, gzipped, nil
	case stackExts[ext]:
		return true, gzipped, nil
	default:
		return false, gzipped, fmt.Errorf("%w: %q", ErrBadExtension, name)
	}
}
