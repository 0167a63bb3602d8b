// Package testpattern provides frame sources for exercising surfaces.
package testpattern

import (
	"fmt"
	"image"
	"image/color"

	"pixsurf/surface"

	"golang.org/x/image/draw"
)

// Geometry is the frame size and layout a source renders into.
type Geometry struct {
	Width  int
	Height int
	Format surface.PixelFormat
}

// Size reports the geometry of the frames the source produces.
func (g Geometry) Size() (width, height int, f surface.PixelFormat) {
	return g.Width, g.Height, g.Format
}

// Solid fills every frame with one colour.
type Solid struct {
	Geometry
	Color color.Color
}

func (s *Solid) Render(w *surface.WriteHandle) error {
	return w.Fill(s.Color)
}

// Counter sets every byte of frame n to n mod 256, starting at 1. A reader
// that sees two different byte values in one frame observed a torn write.
type Counter struct {
	Geometry
	n uint64
}

func (c *Counter) Render(w *surface.WriteHandle) error {
	c.n++
	v := byte(c.n)
	for y := 0; y < w.Height(); y++ {
		row := w.Row(y)
		for i := range row {
			row[i] = v
		}
	}
	return nil
}

// Frames returns how many frames were rendered.
func (c *Counter) Frames() uint64 {
	return c.n
}

// Checker draws a checkerboard that scrolls one pixel per frame.
type Checker struct {
	Geometry
	Cell int
	A, B color.Color
	n    int
}

func (c *Checker) Render(w *surface.WriteHandle) error {
	cell := max(c.Cell, 1)
	a, b := w.Format().Encode(c.A), w.Format().Encode(c.B)
	bpp := len(a)
	for y := 0; y < w.Height(); y++ {
		row := w.Row(y)
		for x := 0; x < w.Width(); x++ {
			px := a
			if ((x+c.n)/cell+y/cell)%2 == 1 {
				px = b
			}
			copy(row[x*bpp:], px)
		}
	}
	c.n++
	return nil
}

var barColors = []color.RGBA{
	{0xff, 0xff, 0xff, 0xff},
	{0xff, 0xff, 0x00, 0xff},
	{0x00, 0xff, 0xff, 0xff},
	{0x00, 0xff, 0x00, 0xff},
	{0xff, 0x00, 0xff, 0xff},
	{0xff, 0x00, 0x00, 0xff},
	{0x00, 0x00, 0xff, 0xff},
	{0x00, 0x00, 0x00, 0xff},
}

// Bars draws eight vertical colour bars.
type Bars struct {
	Geometry
}

func (b *Bars) Render(w *surface.WriteHandle) error {
	f := w.Format()
	encoded := make([][]byte, len(barColors))
	for i, c := range barColors {
		encoded[i] = f.Encode(c)
	}
	bpp := f.BytesPerPixel()
	for y := 0; y < w.Height(); y++ {
		row := w.Row(y)
		for x := 0; x < w.Width(); x++ {
			copy(row[x*bpp:], encoded[x*len(barColors)/w.Width()])
		}
	}
	return nil
}

// BarColor returns the colour of bar i.
func BarColor(i int) color.RGBA {
	return barColors[i]
}

// Picture scales a still image into every frame.
type Picture struct {
	Geometry
	Image image.Image
}

func (p *Picture) Render(w *surface.WriteHandle) error {
	dst, err := w.Image()
	if err != nil {
		return fmt.Errorf("could not draw picture: %w", err)
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), p.Image, p.Image.Bounds(), draw.Src, nil)
	return nil
}

// Indexed renders a frame of palette indices through a palette, the way a
// console video chip hands out colour numbers. The index ramp moves one step
// per frame.
type Indexed struct {
	Geometry
	Palette color.Palette
	n       int
}

func (p *Indexed) Render(w *surface.WriteHandle) error {
	if len(p.Palette) == 0 {
		return fmt.Errorf("indexed pattern has an empty palette")
	}
	f := w.Format()
	encoded := make([][]byte, len(p.Palette))
	for i, c := range p.Palette {
		encoded[i] = f.Encode(c)
	}
	bpp := f.BytesPerPixel()
	for y := 0; y < w.Height(); y++ {
		row := w.Row(y)
		for x := 0; x < w.Width(); x++ {
			copy(row[x*bpp:], encoded[(x+y+p.n)%len(encoded)])
		}
	}
	p.n++
	return nil
}
