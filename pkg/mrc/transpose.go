package mrc

// The file stores each section row-major: columns (X) vary fastest, then
// rows (Y), then sections (Z). In memory the first two axes are swapped so
// the row axis is contiguous. Both directions copy whole elements of width
// w; 2D and 3D differ only in the section count.

func transposeToCanonical(dst, src []byte, nx, ny, nz, w int) {
	for z := 0; z < nz; z++ {
		base := z * nx * ny
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				si := (base + y*nx + x) * w
				di := (base + x*ny + y) * w
				copy(dst[di:di+w], src[si:si+w])
			}
		}
	}
}

func transposeToDisk(dst, src []byte, nx, ny, nz, w int) {
	for z := 0; z < nz; z++ {
		base := z * nx * ny
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				si := (base + x*ny + y) * w
				di := (base + y*nx + x) * w
				copy(dst[di:di+w], src[si:si+w])
			}
		}
	}
}

// swapScalars reverses each w-byte group in place, converting payload
// scalars between the file byte order and the little-endian in-memory
// layout. Complex elements swap per component, not per element.
func swapScalars(p []byte, w int) {
	if w < 2 {
		return
	}
	for i := 0; i+w <= len(p); i += w {
		for a, b := i, i+w-1; a < b; a, b = a+1, b-1 {
			p[a], p[b] = p[b], p[a]
		}
	}
}
