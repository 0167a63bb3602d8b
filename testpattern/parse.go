package testpattern

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"pixsurf/surface"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

// Names lists the patterns accepted by ByName.
var Names = []string{"solid", "counter", "checker", "bars", "indexed", "picture"}

// Pattern is a frame source: a fixed geometry plus a render step.
type Pattern interface {
	Size() (width, height int, f surface.PixelFormat)
	Render(w *surface.WriteHandle) error
}

// Options carries the per-pattern inputs for ByName.
type Options struct {
	// Color paints solid and checker patterns.
	Color color.Color
	// Palette feeds indexed; nil falls back to a 16-step grey ramp.
	Palette color.Palette
	// Image is required by picture.
	Image image.Image
}

// ByName builds the named pattern.
func ByName(name string, g Geometry, opts Options) (Pattern, error) {
	c := opts.Color
	if c == nil {
		c = color.White
	}
	switch name {
	case "solid":
		return &Solid{Geometry: g, Color: c}, nil
	case "counter":
		return &Counter{Geometry: g}, nil
	case "checker":
		return &Checker{Geometry: g, Cell: 8, A: c, B: color.Black}, nil
	case "bars":
		return &Bars{Geometry: g}, nil
	case "indexed":
		pal := opts.Palette
		if len(pal) == 0 {
			pal = grayRamp
		}
		return &Indexed{Geometry: g, Palette: pal}, nil
	case "picture":
		if opts.Image == nil {
			return nil, fmt.Errorf("picture pattern needs an input image")
		}
		return &Picture{Geometry: g, Image: opts.Image}, nil
	}
	return nil, fmt.Errorf("unknown pattern %q", name)
}

var grayRamp = func() color.Palette {
	pal := make(color.Palette, 16)
	for i := range pal {
		pal[i] = color.Gray{Y: uint8(i * 0x11)}
	}
	return pal
}()

// Load decodes an image file in any registered format.
func Load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer f.Close()

	img, imgType, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %q: %w", path, err)
	}
	return img, imgType, nil
}

// ParseColor reads #RGB, #RGBA, #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (color.Color, error) {
	var c color.RGBA
	switch len(s) {
	case 4:
		n, err := fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 3 {
			return nil, fmt.Errorf("insufficient color fields: %d", n)
		}

		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A = 0xFF
	case 5:
		n, err := fmt.Sscanf(s, "#%1x%1x%1x%1x", &c.R, &c.G, &c.B, &c.A)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 4 {
			return nil, fmt.Errorf("insufficient color fields: %d", n)
		}

		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A |= c.A << 4
	case 7:
		n, err := fmt.Sscanf(s, "#%2x%2x%2x", &c.R, &c.G, &c.B)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 3 {
			return nil, fmt.Errorf("insufficient color fields: %d", n)
		}

		c.A = 0xFF
	case 9:
		n, err := fmt.Sscanf(s, "#%2x%2x%2x%2x", &c.R, &c.G, &c.B, &c.A)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 4 {
			return nil, fmt.Errorf("insufficient color fields: %d", n)
		}
	default:
		return nil, fmt.Errorf("invalid color %q, should be #RGB, #RGBA, #RRGGBB or #RRGGBBAA", s)
	}

	// color.RGBA is alpha-premultiplied
	if c.A != 0xFF {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return c, nil
}
