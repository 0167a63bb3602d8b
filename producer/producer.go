// Package producer publishes frames into a surface on behalf of an upstream
// source such as an emulator core or a decoder.
//
// Publishing follows a latest-frame-wins policy: when the render pass holds
// the surface, the frame is dropped instead of waiting, and the next tick
// tries again with fresh content.
package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pixsurf/logging"
	"pixsurf/surface"
)

// Source renders frames of a fixed geometry. Size may change between frames;
// the producer then allocates a new surface.
type Source interface {
	Size() (width, height int, f surface.PixelFormat)
	Render(w *surface.WriteHandle) error
}

// SourceFunc adapts a render function with a fixed geometry to a Source.
type SourceFunc struct {
	Width  int
	Height int
	Format surface.PixelFormat
	Fn     func(w *surface.WriteHandle) error
}

func (s SourceFunc) Size() (int, int, surface.PixelFormat) { return s.Width, s.Height, s.Format }
func (s SourceFunc) Render(w *surface.WriteHandle) error   { return s.Fn(w) }

// Stats counts what happened to rendered frames.
type Stats struct {
	Published uint64
	Dropped   uint64
	Failed    uint64
	Swaps     uint64
}

// Option configures a Producer.
type Option func(*Producer)

// WithSurface publishes into an existing surface instead of allocating one
// on the first step.
func WithSurface(s *surface.Surface) Option {
	return func(p *Producer) {
		p.surf = s
	}
}

// OnSwap registers a callback invoked with every newly allocated surface,
// typically the viewer's SetSource.
func OnSwap(fn func(*surface.Surface)) Option {
	return func(p *Producer) {
		p.onSwap = fn
	}
}

// Producer drives a Source into a surface.
type Producer struct {
	src    Source
	onSwap func(*surface.Surface)

	mu   sync.Mutex // serializes Step
	surf *surface.Surface

	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
	swaps     atomic.Uint64
}

// New returns a producer for src.
func New(src Source, opts ...Option) *Producer {
	p := &Producer{src: src}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Surface returns the surface frames are currently published into, or nil
// before the first step.
func (p *Producer) Surface() *surface.Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.surf
}

// Stats returns a snapshot of the frame counters.
func (p *Producer) Stats() Stats {
	return Stats{
		Published: p.published.Load(),
		Dropped:   p.dropped.Load(),
		Failed:    p.failed.Load(),
		Swaps:     p.swaps.Load(),
	}
}

// Step renders and publishes one frame. It reports whether the frame was
// published; a frame dropped because the surface was busy is not an error.
func (p *Producer) Step() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureSurface(); err != nil {
		p.failed.Add(1)
		return false, err
	}

	w, err := p.surf.AcquireWrite()
	if errors.Is(err, surface.ErrBusy) {
		p.dropped.Add(1)
		logging.Logger().Debug("frame dropped", "reason", "surface busy")
		return false, nil
	}
	if err != nil {
		p.failed.Add(1)
		return false, err
	}

	if renderErr := p.src.Render(w); renderErr != nil {
		p.failed.Add(1)
		// unlock without publishing the partial frame
		if err := w.Abort(); err != nil {
			return false, errors.Join(fmt.Errorf("could not render frame: %w", renderErr), err)
		}
		return false, fmt.Errorf("could not render frame: %w", renderErr)
	}
	if err := w.Release(); err != nil {
		p.failed.Add(1)
		return false, err
	}
	p.published.Add(1)
	return true, nil
}

// ensureSurface allocates a new surface when none exists or the source
// geometry no longer matches. The old surface is left to its readers.
func (p *Producer) ensureSurface() error {
	width, height, f := p.src.Size()
	if p.surf != nil {
		w, h := p.surf.Size()
		if w == width && h == height && p.surf.Format() == f {
			return nil
		}
	}

	s, err := surface.New(width, height, f)
	if err != nil {
		return fmt.Errorf("could not allocate surface: %w", err)
	}
	logging.Logger().Info("surface allocated", "width", width, "height", height, "format", f)

	p.surf = s
	p.swaps.Add(1)
	if p.onSwap != nil {
		p.onSwap(s)
	}
	return nil
}

// Run calls Step every interval until ctx is done. Transient render failures
// are logged and the loop goes on; geometry, format and state errors cannot
// heal on the next tick and end the loop.
func (p *Producer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := logging.Logger()
	for {
		select {
		case <-ctx.Done():
			stats := p.Stats()
			logger.Info("producer stopped", "published", stats.Published,
				"dropped", stats.Dropped, "failed", stats.Failed)
			return nil
		case <-ticker.C:
			if _, err := p.Step(); err != nil {
				if fatal(err) {
					return err
				}
				logger.Warn("could not produce frame", "error", err)
			}
		}
	}
}

func fatal(err error) bool {
	return errors.Is(err, surface.ErrInvalidDimensions) ||
		errors.Is(err, surface.ErrUnsupportedFormat) ||
		errors.Is(err, surface.ErrInvalidState)
}
