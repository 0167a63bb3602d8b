package producer

import (
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"pixsurf/surface"
	"pixsurf/testpattern"

	"github.com/google/go-cmp/cmp"
)

func TestStepPublishes(t *testing.T) {
	var swapped []*surface.Surface
	p := New(&testpattern.Solid{
		Geometry: testpattern.Geometry{Width: 4, Height: 4, Format: surface.BGRA8888},
		Color:    color.RGBA{R: 0xff, A: 0xff},
	}, OnSwap(func(s *surface.Surface) { swapped = append(swapped, s) }))

	if p.Surface() != nil {
		t.Fatal("Surface() before first step should be nil")
	}
	ok, err := p.Step()
	if err != nil || !ok {
		t.Fatalf("Step() = %v, %v, want true, nil", ok, err)
	}
	if len(swapped) != 1 || swapped[0] != p.Surface() {
		t.Fatalf("OnSwap got %d surfaces, want the producer's surface once", len(swapped))
	}

	err = p.Surface().Read(func(v *surface.RenderView) error {
		if diff := cmp.Diff([]byte{0, 0, 0xff, 0xff}, v.Row(3)[12:]); diff != "" {
			t.Errorf("pixel mismatch (-want +got):\n%s", diff)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := Stats{Published: 1, Swaps: 1}
	if diff := cmp.Diff(want, p.Stats()); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
}

func TestStepDropsWhenReaderHoldsSurface(t *testing.T) {
	src := &testpattern.Counter{Geometry: testpattern.Geometry{Width: 8, Height: 8, Format: surface.Gray8}}
	p := New(src)
	if _, err := p.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	r, err := p.Surface().AcquireRead()
	if err != nil {
		t.Fatalf("AcquireRead() error = %v", err)
	}
	ok, err := p.Step()
	if ok || err != nil {
		t.Errorf("Step() during read = %v, %v, want false, nil", ok, err)
	}
	for i, b := range r.View().Bytes() {
		if b != 1 {
			t.Fatalf("byte %d = %d while reading, want 1", i, b)
		}
	}
	r.Release()

	if ok, err := p.Step(); !ok || err != nil {
		t.Errorf("Step() after read = %v, %v, want true, nil", ok, err)
	}
	want := Stats{Published: 2, Dropped: 1, Swaps: 1}
	if diff := cmp.Diff(want, p.Stats()); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
}

func TestStepReleasesOnRenderError(t *testing.T) {
	boom := errors.New("core halted")
	p := New(SourceFunc{Width: 2, Height: 2, Format: surface.RGBA8888, Fn: func(*surface.WriteHandle) error {
		return boom
	}})

	ok, err := p.Step()
	if ok || !errors.Is(err, boom) {
		t.Fatalf("Step() = %v, %v, want false, %v", ok, err, boom)
	}
	if st := p.Surface().State(); st != surface.Unlocked {
		t.Errorf("State() after failed render = %v, want unlocked", st)
	}
	if got := p.Stats().Failed; got != 1 {
		t.Errorf("Failed = %d, want 1", got)
	}
	if seq := p.Surface().Seq(); seq != 0 {
		t.Errorf("Seq() after failed render = %d, want 0", seq)
	}
}

// resizingSource changes geometry after its first frame.
type resizingSource struct {
	frames int
}

func (r *resizingSource) Size() (int, int, surface.PixelFormat) {
	if r.frames == 0 {
		return 256, 240, surface.BGRA8888
	}
	return 160, 144, surface.RGBA8888
}

func (r *resizingSource) Render(*surface.WriteHandle) error {
	r.frames++
	return nil
}

func TestStepSwapsSurfaceOnSizeChange(t *testing.T) {
	var swapped []*surface.Surface
	p := New(&resizingSource{}, OnSwap(func(s *surface.Surface) { swapped = append(swapped, s) }))

	p.Step()
	first := p.Surface()
	// a reader on the old surface does not block the swap
	r, err := first.AcquireRead()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Release()

	if ok, err := p.Step(); !ok || err != nil {
		t.Fatalf("Step() = %v, %v, want true, nil", ok, err)
	}
	if len(swapped) != 2 || swapped[1] == first {
		t.Fatalf("expected a second, distinct surface; got %d swaps", len(swapped))
	}
	w, h := p.Surface().Size()
	if w != 160 || h != 144 || p.Surface().Format() != surface.RGBA8888 {
		t.Errorf("new surface = %dx%d/%s, want 160x144/rgba", w, h, p.Surface().Format())
	}
	if w, h := first.Size(); w != 256 || h != 240 {
		t.Errorf("old surface resized to %dx%d", w, h)
	}
}

func TestWithSurface(t *testing.T) {
	s := surface.MustNew(8, 8, surface.Gray8)
	called := false
	p := New(&testpattern.Counter{Geometry: testpattern.Geometry{Width: 8, Height: 8, Format: surface.Gray8}},
		WithSurface(s), OnSwap(func(*surface.Surface) { called = true }))
	p.Step()
	if p.Surface() != s || called {
		t.Error("producer should reuse a matching surface without swapping")
	}
	if s.Seq() != 1 {
		t.Errorf("Seq() = %d, want 1", s.Seq())
	}
}

func TestRun(t *testing.T) {
	p := New(&testpattern.Counter{Geometry: testpattern.Geometry{Width: 8, Height: 8, Format: surface.Gray8}})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := p.Run(ctx, time.Millisecond); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if p.Stats().Published == 0 {
		t.Error("Run() published no frames")
	}
}

func TestRunStopsOnBadGeometry(t *testing.T) {
	p := New(SourceFunc{Width: 0, Height: 4, Format: surface.RGBA8888, Fn: func(*surface.WriteHandle) error { return nil }})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := p.Run(ctx, time.Millisecond); !errors.Is(err, surface.ErrInvalidDimensions) {
		t.Errorf("Run() error = %v, want ErrInvalidDimensions", err)
	}
}
