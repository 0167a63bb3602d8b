// Package live implements the run command: a producer and a render loop
// sharing one surface at independent rates, the way an emulator core and a
// UI thread would.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pixsurf/parallel"
	"pixsurf/producer"
	"pixsurf/snap"
	"pixsurf/snapshot"
	"pixsurf/viewer"

	"github.com/alecthomas/kong"
	"golang.org/x/image/draw"
)

// maxRate bounds --fps and --refresh so the tick interval stays positive.
const maxRate = 1000

type CLICmd struct {
	snap.SourceFlags `embed:""`
	snap.TargetFlags `embed:""`

	Duration time.Duration `help:"How long to run" default:"3s"`
	FPS      int           `help:"Frames produced per second" default:"60" env:"PIXSURF_FPS"`
	Refresh  int           `help:"Paint cycles per second" default:"60" env:"PIXSURF_REFRESH"`
	Out      string        `help:"Save the last painted target to this file"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if err := c.SourceFlags.Resolve(); err != nil {
		return err
	}
	if err := c.TargetFlags.Resolve(c.Width, c.Height); err != nil {
		return err
	}
	switch {
	case c.Duration <= 0:
		return fmt.Errorf("invalid duration: %s", c.Duration)
	case c.FPS <= 0 || c.FPS > maxRate:
		return fmt.Errorf("invalid frame rate: %d, want 1 to %d", c.FPS, maxRate)
	case c.Refresh <= 0 || c.Refresh > maxRate:
		return fmt.Errorf("invalid refresh rate: %d, want 1 to %d", c.Refresh, maxRate)
	}
	return nil
}

func (c *CLICmd) Run(ctx context.Context, pool *parallel.Pool) error {
	src, err := c.Source()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.Duration)
	defer cancel()

	v := c.Viewer(pool)
	p := producer.New(src, producer.OnSwap(v.SetSource))
	dst := c.Target()

	var wg sync.WaitGroup
	var prodErr error
	wg.Go(func() {
		prodErr = p.Run(ctx, time.Second/time.Duration(c.FPS))
		if prodErr != nil {
			cancel()
		}
	})
	paintErr := paintLoop(ctx, v, dst, time.Second/time.Duration(c.Refresh))
	cancel()
	wg.Wait()

	ps, vs := p.Stats(), v.Stats()
	slog.Info("stats", "published", ps.Published, "dropped", ps.Dropped, "failed", ps.Failed,
		"painted", vs.Painted, "skipped", vs.Skipped, "paint_errors", vs.Failed,
		"format", c.PixelFormat, "texture", c.PixelFormat.TextureFormat())

	if err := errors.Join(prodErr, paintErr); err != nil {
		return err
	}
	if c.Out != "" && vs.Painted > 0 {
		if err := snapshot.Save(dst, snapshot.EncodingFor(c.Out), c.Out); err != nil {
			return err
		}
		slog.Info("snapshot saved", "file", c.Out)
	}
	return nil
}

// paintLoop paints once per interval until ctx is done or a paint fails.
func paintLoop(ctx context.Context, v *viewer.Viewer, dst draw.Image, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := v.Paint(ctx, dst, dst.Bounds()); err != nil {
				return fmt.Errorf("could not paint frame: %w", err)
			}
		}
	}
}
