package blit

import (
	"image"

	"pixsurf/surface"
)

// pix32 is a 4 bytes per pixel buffer in a known channel layout.
type pix32 struct {
	pix    []byte
	stride int
	rect   image.Rectangle
	layout surface.PixelFormat
}

func asPix32(img image.Image) (pix32, bool) {
	switch m := img.(type) {
	case *image.RGBA:
		return pix32{m.Pix, m.Stride, m.Rect, surface.RGBA8888Premul}, true
	case *image.NRGBA:
		return pix32{m.Pix, m.Stride, m.Rect, surface.RGBA8888}, true
	case *surface.BGRA:
		return pix32{m.Pix, m.Stride, m.Rect, surface.BGRA8888Premul}, true
	case *surface.NBGRA:
		return pix32{m.Pix, m.Stride, m.Rect, surface.BGRA8888}, true
	}
	return pix32{}, false
}

// nearest32 copies whole pixels between identical layouts. The sampling
// matches golang.org/x/image/draw.NearestNeighbor: destination pixel centres
// are mapped into the source rectangle and truncated.
func nearest32(dst, src pix32, dr, sr image.Rectangle) {
	clip := dr.Intersect(dst.rect)
	if clip.Empty() || sr.Empty() {
		return
	}
	dw2, dh2 := uint64(dr.Dx())*2, uint64(dr.Dy())*2
	sw, sh := uint64(sr.Dx()), uint64(sr.Dy())

	xs := make([]int, clip.Dx())
	for i := range xs {
		dx := uint64(clip.Min.X + i - dr.Min.X)
		sx := sr.Min.X + int((2*dx+1)*sw/dw2)
		xs[i] = (sx - src.rect.Min.X) * 4
	}

	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		dy := uint64(y - dr.Min.Y)
		sy := sr.Min.Y + int((2*dy+1)*sh/dh2)
		srow := src.pix[(sy-src.rect.Min.Y)*src.stride:]
		d := (y-dst.rect.Min.Y)*dst.stride + (clip.Min.X-dst.rect.Min.X)*4
		for _, sx := range xs {
			copy(dst.pix[d:d+4], srow[sx:sx+4])
			d += 4
		}
	}
}
