// Package blit scales a surface.RenderView into a drawing target.
//
// A blit is split into a pure planning step, which maps a view and the
// target's layout bounds to a Command, and an execution step that writes the
// scaled pixels into a draw.Image. The source is never modified and no
// aspect-ratio correction is applied.
package blit

import (
	"fmt"
	"image"
	"strings"

	"pixsurf/parallel"
	"pixsurf/surface"

	"golang.org/x/image/draw"
)

// Interpolation selects the scaling filter.
type Interpolation uint8

const (
	// NearestNeighbor keeps hard pixel edges, which pixel-art sources need.
	NearestNeighbor Interpolation = iota
	// Bilinear smooths the output.
	Bilinear
)

func (i Interpolation) String() string {
	switch i {
	case NearestNeighbor:
		return "nearest"
	case Bilinear:
		return "bilinear"
	}
	return fmt.Sprintf("Interpolation(%d)", uint8(i))
}

// ParseInterpolation accepts "nearest" or "bilinear".
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(s) {
	case "nearest", "":
		return NearestNeighbor, nil
	case "bilinear":
		return Bilinear, nil
	}
	return NearestNeighbor, fmt.Errorf("blit: unknown interpolation %q", s)
}

func (i Interpolation) scaler() draw.Scaler {
	if i == Bilinear {
		return draw.BiLinear
	}
	return draw.NearestNeighbor
}

// Command describes one scaled copy.
type Command struct {
	Src    image.Rectangle
	Dst    image.Rectangle
	Interp Interpolation
}

// Empty reports whether the command draws nothing.
func (c Command) Empty() bool {
	return c.Src.Empty() || c.Dst.Empty()
}

// Plan maps the whole view onto bounds using nearest-neighbour scaling.
func Plan(v *surface.RenderView, bounds image.Rectangle) Command {
	return Command{Src: v.Bounds(), Dst: bounds.Canon(), Interp: NearestNeighbor}
}

// Option configures a Blitter.
type Option func(*Blitter)

// WithInterpolation sets the scaling filter.
func WithInterpolation(i Interpolation) Option {
	return func(b *Blitter) {
		b.interp = i
	}
}

// WithOp sets the compositing operator. The default, draw.Src, replaces the
// target pixels.
func WithOp(op draw.Op) Option {
	return func(b *Blitter) {
		b.op = op
	}
}

// WithPool splits large targets into bands executed on p.
func WithPool(p *parallel.Pool) Option {
	return func(b *Blitter) {
		b.pool = p
	}
}

// WithMinBandRows sets the smallest band height worth a separate task.
func WithMinBandRows(n int) Option {
	return func(b *Blitter) {
		if n > 0 {
			b.minBandRows = n
		}
	}
}

// Blitter executes blit commands. It holds no per-frame state and may be
// shared by several viewers.
type Blitter struct {
	interp      Interpolation
	op          draw.Op
	pool        *parallel.Pool
	minBandRows int
}

// New returns a Blitter using nearest-neighbour scaling and draw.Src.
func New(opts ...Option) *Blitter {
	b := &Blitter{
		interp:      NearestNeighbor,
		op:          draw.Src,
		minBandRows: 64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Interpolation returns the configured filter.
func (b *Blitter) Interpolation() Interpolation {
	return b.interp
}

// Plan is like the package-level Plan but uses the Blitter's filter.
func (b *Blitter) Plan(v *surface.RenderView, bounds image.Rectangle) Command {
	cmd := Plan(v, bounds)
	cmd.Interp = b.interp
	return cmd
}

// Blit scales the whole view into bounds on dst.
func (b *Blitter) Blit(dst draw.Image, v *surface.RenderView, bounds image.Rectangle) error {
	return b.Execute(dst, v, b.Plan(v, bounds))
}

// Execute runs cmd. It returns surface.ErrUnsupportedFormat if the view's
// pixel layout cannot be read and surface.ErrInvalidState if the view has
// outlived its read lock.
func (b *Blitter) Execute(dst draw.Image, v *surface.RenderView, cmd Command) error {
	if !v.Valid() {
		return fmt.Errorf("blit: %w: render view is not locked", surface.ErrInvalidState)
	}
	src, err := v.Image()
	if err != nil {
		return fmt.Errorf("blit: %w", err)
	}
	if cmd.Empty() {
		return nil
	}
	clip := cmd.Dst.Intersect(dst.Bounds())
	if clip.Empty() {
		return nil
	}

	bands := b.bands(dst, clip, cmd.Interp)
	if len(bands) == 1 {
		b.scale(dst, src, cmd)
		return nil
	}

	tasks := make([]func(), len(bands))
	for i, band := range bands {
		target := dst.(subImager).SubImage(band).(draw.Image)
		tasks[i] = func() { b.scale(target, src, cmd) }
	}
	b.pool.Run(tasks...)
	return nil
}

type subImager interface {
	SubImage(image.Rectangle) image.Image
}

// bands splits clip into horizontal strips, one per worker. Each strip is
// scaled against the full destination rectangle so the result matches a
// single pass. Kernel filters rebuild their horizontal pass over the whole
// source for every call, so only nearest-neighbour work is split.
func (b *Blitter) bands(dst draw.Image, clip image.Rectangle, interp Interpolation) []image.Rectangle {
	n := min(b.pool.Size(), clip.Dy()/b.minBandRows)
	if n < 2 || interp != NearestNeighbor {
		return []image.Rectangle{clip}
	}
	if _, ok := dst.(subImager); !ok {
		return []image.Rectangle{clip}
	}

	bands := make([]image.Rectangle, 0, n)
	rows := clip.Dy()
	for i := range n {
		y0 := clip.Min.Y + rows*i/n
		y1 := clip.Min.Y + rows*(i+1)/n
		bands = append(bands, image.Rect(clip.Min.X, y0, clip.Max.X, y1))
	}
	return bands
}

func (b *Blitter) scale(dst draw.Image, src image.Image, cmd Command) {
	if cmd.Interp == NearestNeighbor && b.op == draw.Src {
		if d, ok := asPix32(dst); ok {
			if s, ok := asPix32(src); ok && d.layout == s.layout {
				nearest32(d, s, cmd.Dst, cmd.Src)
				return
			}
		}
	}
	cmd.Interp.scaler().Scale(dst, cmd.Dst, src, cmd.Src, b.op, nil)
}
