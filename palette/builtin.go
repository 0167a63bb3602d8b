package palette

import (
	"image/color"
	colorpalette "image/color/palette"
	"slices"
)

var vga16 = color.Palette{
	color.RGBA{0x00, 0x00, 0x00, 0xff},
	color.RGBA{0x00, 0x00, 0xaa, 0xff},
	color.RGBA{0x00, 0xaa, 0x00, 0xff},
	color.RGBA{0x00, 0xaa, 0xaa, 0xff},
	color.RGBA{0xaa, 0x00, 0x00, 0xff},
	color.RGBA{0xaa, 0x00, 0xaa, 0xff},
	color.RGBA{0xaa, 0x55, 0x00, 0xff},
	color.RGBA{0xaa, 0xaa, 0xaa, 0xff},
	color.RGBA{0x55, 0x55, 0x55, 0xff},
	color.RGBA{0x55, 0x55, 0xff, 0xff},
	color.RGBA{0x55, 0xff, 0x55, 0xff},
	color.RGBA{0x55, 0xff, 0xff, 0xff},
	color.RGBA{0xff, 0x55, 0x55, 0xff},
	color.RGBA{0xff, 0x55, 0xff, 0xff},
	color.RGBA{0xff, 0xff, 0x55, 0xff},
	color.RGBA{0xff, 0xff, 0xff, 0xff},
}

// Builtin lists the palette names Lookup resolves without a file.
var Builtin = []string{"bw", "gray16", "vga16", "plan9"}

// Gray returns an n-step grey ramp from black to white.
func Gray(n int) color.Palette {
	if n < 2 {
		n = 2
	}
	pal := make(color.Palette, n)
	for i := range pal {
		pal[i] = color.Gray{Y: uint8(i * 0xff / (n - 1))}
	}
	return pal
}

// Lookup returns a built-in palette by name, or the first palette of the
// RIFF PAL file at name.
func Lookup(name string) (color.Palette, error) {
	switch name {
	case "bw":
		return Gray(2), nil
	case "gray16":
		return Gray(16), nil
	case "vga16":
		return slices.Clone(vga16), nil
	case "plan9":
		return slices.Clone(color.Palette(colorpalette.Plan9)), nil
	}

	pals, err := Load(name)
	if err != nil {
		return nil, err
	}
	return pals[0], nil
}
