package mrc

import "github.com/emtools/mrcio/pkg/volume"

// Image bundles a pixel array with the metadata record it was read with.
type Image struct {
	arr *volume.Array
	hdr *Header
}

// NewImage bundles a payload and its metadata for return to callers.
func NewImage(arr *volume.Array, hdr *Header) *Image {
	return &Image{arr: arr, hdr: hdr}
}

// Data returns the pixel payload.
func (im *Image) Data() *volume.Array { return im.arr }

// Meta returns the metadata record.
func (im *Image) Meta() *Header { return im.hdr }
