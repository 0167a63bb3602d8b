package surface

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/google/go-cmp/cmp"
)

func TestParseFormat(t *testing.T) {
	for _, name := range FormatNames {
		f, err := ParseFormat(name)
		if err != nil {
			t.Errorf("ParseFormat(%q) error = %v", name, err)
			continue
		}
		if f.String() != name {
			t.Errorf("ParseFormat(%q).String() = %q", name, f.String())
		}
	}
	if f, err := ParseFormat(" BGRA "); err != nil || f != BGRA8888 {
		t.Errorf("ParseFormat(\" BGRA \") = %v, %v, want bgra", f, err)
	}
	if _, err := ParseFormat("yuv420"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(yuv420) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFormatProperties(t *testing.T) {
	tests := []struct {
		f       PixelFormat
		bpp     int
		premul  bool
		texture gputypes.TextureFormat
	}{
		{BGRA8888Premul, 4, true, gputypes.TextureFormatBGRA8Unorm},
		{BGRA8888, 4, false, gputypes.TextureFormatBGRA8Unorm},
		{RGBA8888Premul, 4, true, gputypes.TextureFormatRGBA8Unorm},
		{RGBA8888, 4, false, gputypes.TextureFormatRGBA8Unorm},
		{Gray8, 1, false, gputypes.TextureFormatR8Unorm},
		{RGB565, 2, false, gputypes.TextureFormatUndefined},
		{FormatInvalid, 0, false, gputypes.TextureFormatUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			if got := tt.f.BytesPerPixel(); got != tt.bpp {
				t.Errorf("BytesPerPixel() = %d, want %d", got, tt.bpp)
			}
			if got := tt.f.Premultiplied(); got != tt.premul {
				t.Errorf("Premultiplied() = %v, want %v", got, tt.premul)
			}
			if got := tt.f.TextureFormat(); got != tt.texture {
				t.Errorf("TextureFormat() = %v, want %v", got, tt.texture)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	half := color.NRGBA{R: 0xff, G: 0x80, B: 0x00, A: 0x80}
	tests := []struct {
		f    PixelFormat
		c    color.Color
		want []byte
	}{
		{BGRA8888, half, []byte{0x00, 0x80, 0xff, 0x80}},
		{RGBA8888, half, []byte{0xff, 0x80, 0x00, 0x80}},
		{RGBA8888Premul, color.RGBA{R: 0x80, A: 0x80}, []byte{0x80, 0, 0, 0x80}},
		{BGRA8888Premul, color.RGBA{R: 0x80, A: 0x80}, []byte{0, 0, 0x80, 0x80}},
		{Gray8, color.White, []byte{0xff}},
		{RGB565, color.RGBA{R: 0xff, A: 0xff}, []byte{0x00, 0xf8}},
		{RGB565, color.RGBA{B: 0xff, A: 0xff}, []byte{0x1f, 0x00}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.f.Encode(tt.c)); diff != "" {
			t.Errorf("%s.Encode(%v) mismatch (-want +got):\n%s", tt.f, tt.c, diff)
		}
	}
}

func TestImageAdapters(t *testing.T) {
	red := color.NRGBA{R: 0xff, A: 0xff}
	for _, f := range []PixelFormat{BGRA8888Premul, BGRA8888, RGBA8888Premul, RGBA8888} {
		t.Run(f.String(), func(t *testing.T) {
			s := MustNew(4, 4, f)
			s.Write(func(w *WriteHandle) error {
				img, err := w.Image()
				if err != nil {
					return err
				}
				img.Set(1, 2, red)
				return nil
			})
			s.Read(func(v *RenderView) error {
				img, err := v.Image()
				if err != nil {
					t.Fatalf("Image() error = %v", err)
				}
				r, g, b, a := img.At(1, 2).RGBA()
				if r != 0xffff || g != 0 || b != 0 || a != 0xffff {
					t.Errorf("At(1, 2) = %d,%d,%d,%d, want opaque red", r, g, b, a)
				}
				if diff := cmp.Diff(f.Encode(red), v.Row(2)[4:8]); diff != "" {
					t.Errorf("stored pixel mismatch (-want +got):\n%s", diff)
				}
				return nil
			})
		})
	}
}

func TestRGB565HasNoAdapter(t *testing.T) {
	s := MustNew(4, 4, RGB565)
	err := s.Read(func(v *RenderView) error {
		_, err := v.Image()
		return err
	})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Image() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestBGRASubImage(t *testing.T) {
	img := &BGRA{Pix: make([]byte, 4*4*4), Stride: 16, Rect: image.Rect(0, 0, 4, 4)}
	sub := img.SubImage(image.Rect(2, 2, 6, 6)).(*BGRA)
	if sub.Bounds() != image.Rect(2, 2, 4, 4) {
		t.Fatalf("SubImage bounds = %v, want (2,2)-(4,4)", sub.Bounds())
	}
	sub.Set(3, 3, color.RGBA{G: 0xff, A: 0xff})
	if got := img.At(3, 3); got != (color.RGBA{G: 0xff, A: 0xff}) {
		t.Errorf("parent At(3, 3) = %v, want green", got)
	}
	if empty := img.SubImage(image.Rect(10, 10, 12, 12)); !empty.Bounds().Empty() {
		t.Errorf("disjoint SubImage bounds = %v, want empty", empty.Bounds())
	}
}

func TestNewImage(t *testing.T) {
	img, err := NewImage(5, 3, BGRA8888Premul)
	if err != nil {
		t.Fatalf("NewImage() error = %v", err)
	}
	if _, ok := img.(*BGRA); !ok {
		t.Errorf("NewImage(bgra-premul) = %T, want *BGRA", img)
	}
	if _, err := NewImage(5, 3, RGB565); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("NewImage(rgb565) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := NewImage(0, 3, RGBA8888); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("NewImage(0x3) error = %v, want ErrInvalidDimensions", err)
	}
}
