// Package viewer displays a surface inside a host toolkit's paint callback.
//
// A Viewer holds exactly one surface at a time, swapped with SetSource. The
// host calls Paint once per render cycle with its native drawing target and
// the control's layout bounds. Paint never waits for the producer: when the
// surface is busy the cycle is skipped and the target keeps the previous
// frame.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"sync/atomic"

	"pixsurf/blit"
	"pixsurf/logging"
	"pixsurf/surface"

	"golang.org/x/image/draw"
)

// Outcome describes what a paint cycle did.
type Outcome uint8

const (
	// NoSource means no surface is attached; nothing was drawn.
	NoSource Outcome = iota
	// Skipped means the surface could not be read this cycle.
	Skipped
	// Painted means the current frame was drawn.
	Painted
)

func (o Outcome) String() string {
	switch o {
	case NoSource:
		return "no-source"
	case Skipped:
		return "skipped"
	case Painted:
		return "painted"
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// Fit selects how the frame is placed inside the layout bounds.
type Fit uint8

const (
	// Stretch fills the bounds, ignoring aspect ratio.
	Stretch Fit = iota
	// Letterbox keeps the frame's aspect ratio and centres it.
	Letterbox
)

// ParseFit accepts "stretch" or "letterbox".
func ParseFit(s string) (Fit, error) {
	switch s {
	case "stretch", "":
		return Stretch, nil
	case "letterbox":
		return Letterbox, nil
	}
	return Stretch, fmt.Errorf("viewer: unknown fit %q", s)
}

// Stats counts paint cycles by outcome.
type Stats struct {
	Painted uint64
	Skipped uint64
	Failed  uint64
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithBlitter sets the blitter used to draw frames.
func WithBlitter(b *blit.Blitter) Option {
	return func(v *Viewer) {
		v.blitter = b
	}
}

// WithFit sets the placement policy.
func WithFit(f Fit) Option {
	return func(v *Viewer) {
		v.fit = f
	}
}

// WithBackground clears the letterbox margins with c on every paint.
func WithBackground(c color.Color) Option {
	return func(v *Viewer) {
		v.background = c
	}
}

// Viewer draws the current frame of its source surface.
type Viewer struct {
	blitter    *blit.Blitter
	fit        Fit
	background color.Color

	mu  sync.Mutex
	src *surface.Surface

	painted atomic.Uint64
	skipped atomic.Uint64
	failed  atomic.Uint64
}

// New returns a viewer with no source.
func New(opts ...Option) *Viewer {
	v := &Viewer{}
	for _, opt := range opts {
		opt(v)
	}
	if v.blitter == nil {
		v.blitter = blit.New()
	}
	return v
}

// SetSource replaces the displayed surface. Pass nil to detach.
func (v *Viewer) SetSource(s *surface.Surface) {
	v.mu.Lock()
	v.src = s
	v.mu.Unlock()
	logging.Logger().Info("viewer source changed", "attached", s != nil)
}

// Source returns the displayed surface.
func (v *Viewer) Source() *surface.Surface {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.src
}

// Stats returns a snapshot of the paint counters.
func (v *Viewer) Stats() Stats {
	return Stats{
		Painted: v.painted.Load(),
		Skipped: v.skipped.Load(),
		Failed:  v.failed.Load(),
	}
}

// Paint draws the current frame into bounds on dst. Contention and an
// expired ctx skip the cycle without error. Unsupported pixel formats and
// API misuse are returned to the caller.
func (v *Viewer) Paint(ctx context.Context, dst draw.Image, bounds image.Rectangle) (outcome Outcome, err error) {
	src := v.Source()
	if src == nil {
		return NoSource, nil
	}
	if ctx.Err() != nil {
		v.skipped.Add(1)
		return Skipped, nil
	}

	h, err := src.AcquireRead()
	if errors.Is(err, surface.ErrBusy) {
		v.skipped.Add(1)
		logging.Logger().Debug("paint skipped", "reason", "surface busy")
		return Skipped, nil
	}
	if err != nil {
		v.failed.Add(1)
		return Skipped, fmt.Errorf("viewer: %w", err)
	}
	defer func() {
		if relErr := h.Release(); relErr != nil && err == nil {
			v.failed.Add(1)
			outcome, err = Skipped, fmt.Errorf("viewer: %w", relErr)
		}
	}()

	view := h.View()
	target := bounds
	if v.fit == Letterbox {
		target = LetterboxRect(view.Width(), view.Height(), bounds)
		if v.background != nil {
			draw.Draw(dst, bounds, image.NewUniform(v.background), image.Point{}, draw.Src)
		}
	}

	if err := v.blitter.Blit(dst, view, target); err != nil {
		v.failed.Add(1)
		logging.Logger().Warn("paint failed", "format", view.Format(), "error", err)
		return Skipped, err
	}
	v.painted.Add(1)
	return Painted, nil
}

// LetterboxRect returns the largest rectangle with the source's aspect
// ratio centred inside bounds.
func LetterboxRect(srcWidth, srcHeight int, bounds image.Rectangle) image.Rectangle {
	bounds = bounds.Canon()
	if srcWidth <= 0 || srcHeight <= 0 || bounds.Empty() {
		return image.Rectangle{}
	}

	destWidth := float64(bounds.Dx())
	destHeight := float64(bounds.Dy())
	srcAR := float64(srcWidth) / float64(srcHeight)
	destAR := destWidth / destHeight

	r := bounds
	if srcAR < destAR {
		dw := int(math.Round((destWidth - destHeight*srcAR) / 2))
		r.Min.X += dw
		r.Max.X -= dw
	} else if srcAR > destAR {
		dh := int(math.Round((destHeight - destWidth/srcAR) / 2))
		r.Min.Y += dh
		r.Max.Y -= dh
	}
	return r
}
