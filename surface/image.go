package surface

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// BGRA is an in-memory image with premultiplied B, G, R, A byte order.
type BGRA struct {
	// Pix holds the pixels. The pixel at (x, y) starts at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*4].
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

func (i *BGRA) Bounds() image.Rectangle { return i.Rect }
func (i *BGRA) ColorModel() color.Model { return color.RGBAModel }

func (i *BGRA) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(i.Rect)) {
		return color.RGBA{}
	}
	pix := i.Pix[i.PixOffset(x, y):]
	return color.RGBA{pix[2], pix[1], pix[0], pix[3]}
}

func (i *BGRA) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(i.Rect)) {
		return
	}
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	pix := i.Pix[i.PixOffset(x, y):]
	pix[0] = rgba.B
	pix[1] = rgba.G
	pix[2] = rgba.R
	pix[3] = rgba.A
}

func (i *BGRA) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x-i.Rect.Min.X)*4
}

// SubImage returns an image sharing pixels with i.
func (i *BGRA) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(i.Rect)
	if r.Empty() {
		return &BGRA{}
	}
	return &BGRA{
		Pix:    i.Pix[i.PixOffset(r.Min.X, r.Min.Y):],
		Stride: i.Stride,
		Rect:   r,
	}
}

// NBGRA is an in-memory image with straight alpha B, G, R, A byte order.
type NBGRA struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

func (i *NBGRA) Bounds() image.Rectangle { return i.Rect }
func (i *NBGRA) ColorModel() color.Model { return color.NRGBAModel }

func (i *NBGRA) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(i.Rect)) {
		return color.NRGBA{}
	}
	pix := i.Pix[i.PixOffset(x, y):]
	return color.NRGBA{pix[2], pix[1], pix[0], pix[3]}
}

func (i *NBGRA) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(i.Rect)) {
		return
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	pix := i.Pix[i.PixOffset(x, y):]
	pix[0] = n.B
	pix[1] = n.G
	pix[2] = n.R
	pix[3] = n.A
}

func (i *NBGRA) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x-i.Rect.Min.X)*4
}

func (i *NBGRA) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(i.Rect)
	if r.Empty() {
		return &NBGRA{}
	}
	return &NBGRA{
		Pix:    i.Pix[i.PixOffset(r.Min.X, r.Min.Y):],
		Stride: i.Stride,
		Rect:   r,
	}
}

// wrap exposes pix as an image without copying.
func wrap(pix []byte, width, height, stride int, f PixelFormat) (draw.Image, error) {
	r := image.Rect(0, 0, width, height)
	switch f {
	case RGBA8888Premul:
		return &image.RGBA{Pix: pix, Stride: stride, Rect: r}, nil
	case RGBA8888:
		return &image.NRGBA{Pix: pix, Stride: stride, Rect: r}, nil
	case BGRA8888Premul:
		return &BGRA{Pix: pix, Stride: stride, Rect: r}, nil
	case BGRA8888:
		return &NBGRA{Pix: pix, Stride: stride, Rect: r}, nil
	case Gray8:
		return &image.Gray{Pix: pix, Stride: stride, Rect: r}, nil
	}
	return nil, fmt.Errorf("%w: no image adapter for %s", ErrUnsupportedFormat, f)
}

// NewImage allocates a standalone image in the given format. It is meant for
// drawing targets that live outside a Surface.
func NewImage(width, height int, f PixelFormat) (draw.Image, error) {
	bpp := f.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	return wrap(make([]byte, width*height*bpp), width, height, width*bpp, f)
}
