package surface

import (
	"fmt"
	"image"
)

// RenderView is a read-only window onto a surface's pixels, valid only
// while the read handle that produced it is held. It never copies the
// buffer and must not be cached across paint cycles.
type RenderView struct {
	h      *ReadHandle
	gen    uint64
	seq    uint64
	pix    []byte
	width  int
	height int
	stride int
	format PixelFormat
}

func (v *RenderView) Width() int          { return v.width }
func (v *RenderView) Height() int         { return v.height }
func (v *RenderView) Stride() int         { return v.stride }
func (v *RenderView) Format() PixelFormat { return v.format }

// Seq is the number of frames published before this view was taken.
func (v *RenderView) Seq() uint64 { return v.seq }

// Generation identifies the buffer the view points into.
func (v *RenderView) Generation() uint64 { return v.gen }

// Bounds returns the source rectangle (0,0)-(width,height).
func (v *RenderView) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.width, v.height)
}

// Valid reports whether the view may still be read.
func (v *RenderView) Valid() bool {
	return v != nil && v.h != nil && !v.h.released.Load()
}

// Bytes returns the whole buffer, or nil once the view is invalid.
// Callers must not modify the returned slice.
func (v *RenderView) Bytes() []byte {
	if !v.Valid() {
		return nil
	}
	return v.pix
}

// Row returns the bytes of row y, or nil if out of range or invalid.
func (v *RenderView) Row(y int) []byte {
	if !v.Valid() || y < 0 || y >= v.height {
		return nil
	}
	off := y * v.stride
	return v.pix[off : off+v.width*v.format.BytesPerPixel()]
}

// Image exposes the view as an image.Image without copying. Formats with no
// image adapter return ErrUnsupportedFormat.
//
// The image aliases the surface buffer. It is read-only: callers must not
// type-assert it back to a mutable image and write through it. It is valid
// only until the read handle is released; after that the producer may
// overwrite or Resize may drop the pixels it points at.
func (v *RenderView) Image() (image.Image, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: render view used after release", ErrInvalidState)
	}
	return wrap(v.pix, v.width, v.height, v.stride, v.format)
}
