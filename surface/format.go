package surface

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/gogpu/gputypes"
)

// PixelFormat describes the byte layout of a single pixel.
type PixelFormat uint8

const (
	FormatInvalid PixelFormat = iota
	// BGRA8888Premul stores B, G, R, A bytes with premultiplied alpha.
	BGRA8888Premul
	// BGRA8888 stores B, G, R, A bytes with straight alpha.
	BGRA8888
	// RGBA8888Premul stores R, G, B, A bytes with premultiplied alpha.
	RGBA8888Premul
	// RGBA8888 stores R, G, B, A bytes with straight alpha.
	RGBA8888
	// Gray8 stores one luminance byte per pixel.
	Gray8
	// RGB565 stores 16-bit little endian 5:6:5 pixels.
	RGB565
)

var formatNames = map[PixelFormat]string{
	BGRA8888Premul: "bgra-premul",
	BGRA8888:       "bgra",
	RGBA8888Premul: "rgba-premul",
	RGBA8888:       "rgba",
	Gray8:          "gray",
	RGB565:         "rgb565",
}

// FormatNames lists the names accepted by ParseFormat.
var FormatNames = []string{"bgra-premul", "bgra", "rgba-premul", "rgba", "gray", "rgb565"}

// ParseFormat returns the format with the given name.
func ParseFormat(s string) (PixelFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return FormatInvalid, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f PixelFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("PixelFormat(%d)", uint8(f))
}

// Valid reports whether f is a known format.
func (f PixelFormat) Valid() bool {
	_, ok := formatNames[f]
	return ok
}

// BytesPerPixel returns the size of one pixel, or 0 for unknown formats.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case BGRA8888Premul, BGRA8888, RGBA8888Premul, RGBA8888:
		return 4
	case RGB565:
		return 2
	case Gray8:
		return 1
	}
	return 0
}

// Premultiplied reports whether colour channels are premultiplied by alpha.
func (f PixelFormat) Premultiplied() bool {
	return f == BGRA8888Premul || f == RGBA8888Premul
}

// SwapsRB reports whether the red channel is stored after the blue one.
func (f PixelFormat) SwapsRB() bool {
	return f == BGRA8888Premul || f == BGRA8888
}

// TextureFormat returns the GPU texture format a host should upload the
// pixels as. Formats without a byte-compatible GPU equivalent map to
// TextureFormatUndefined and must be converted before upload.
func (f PixelFormat) TextureFormat() gputypes.TextureFormat {
	switch f {
	case BGRA8888Premul, BGRA8888:
		return gputypes.TextureFormatBGRA8Unorm
	case RGBA8888Premul, RGBA8888:
		return gputypes.TextureFormatRGBA8Unorm
	case Gray8:
		return gputypes.TextureFormatR8Unorm
	}
	return gputypes.TextureFormatUndefined
}

// Encode converts c to the byte representation of a single pixel.
func (f PixelFormat) Encode(c color.Color) []byte {
	switch f {
	case BGRA8888Premul:
		p := color.RGBAModel.Convert(c).(color.RGBA)
		return []byte{p.B, p.G, p.R, p.A}
	case BGRA8888:
		p := color.NRGBAModel.Convert(c).(color.NRGBA)
		return []byte{p.B, p.G, p.R, p.A}
	case RGBA8888Premul:
		p := color.RGBAModel.Convert(c).(color.RGBA)
		return []byte{p.R, p.G, p.B, p.A}
	case RGBA8888:
		p := color.NRGBAModel.Convert(c).(color.NRGBA)
		return []byte{p.R, p.G, p.B, p.A}
	case Gray8:
		return []byte{color.GrayModel.Convert(c).(color.Gray).Y}
	case RGB565:
		p := color.NRGBAModel.Convert(c).(color.NRGBA)
		v := uint16(p.R>>3)<<11 | uint16(p.G>>2)<<5 | uint16(p.B>>3)
		return []byte{byte(v), byte(v >> 8)}
	}
	return nil
}
