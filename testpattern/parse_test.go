package testpattern

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"pixsurf/surface"

	"github.com/google/go-cmp/cmp"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
	}{
		{"#f00", color.RGBA{0xff, 0, 0, 0xff}},
		{"#1234", color.NRGBA{0x11, 0x22, 0x33, 0x44}},
		{"#0a0b0c", color.RGBA{0x0a, 0x0b, 0x0c, 0xff}},
		{"#ff000080", color.NRGBA{0xff, 0, 0, 0x80}},
		{"#000f", color.RGBA{0, 0, 0, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if err != nil {
				t.Fatalf("ParseColor() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseColor() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	for _, bad := range []string{"", "red", "#12", "#gggggg", "ff0000"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) should fail", bad)
		}
	}
}

func TestByName(t *testing.T) {
	g := Geometry{16, 8, surface.RGBA8888}
	for _, name := range Names {
		var img image.Image
		if name == "picture" {
			img = image.NewRGBA(image.Rect(0, 0, 2, 2))
		}
		p, err := ByName(name, g, Options{Color: color.White, Image: img})
		if err != nil {
			t.Fatalf("ByName(%q) error = %v", name, err)
		}
		if w, h, f := p.Size(); w != 16 || h != 8 || f != surface.RGBA8888 {
			t.Errorf("ByName(%q).Size() = %d, %d, %v", name, w, h, f)
		}
		s := surface.MustNew(16, 8, surface.RGBA8888)
		render(t, s, p)
	}

	if _, err := ByName("picture", g, Options{}); err == nil {
		t.Error("picture without an image should fail")
	}
	if _, err := ByName("plasma", g, Options{}); err == nil {
		t.Error("unknown pattern should fail")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, imgType, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if imgType != "png" || img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("Load() = %s %v, want png (0,0)-(3,2)", imgType, img.Bounds())
	}

	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
