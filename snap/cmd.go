// Package snap implements the snap command: render frames into a surface,
// paint the last one into a target the way a viewer would, and save it.
package snap

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"pixsurf/blit"
	"pixsurf/palette"
	"pixsurf/parallel"
	"pixsurf/producer"
	"pixsurf/snapshot"
	"pixsurf/surface"
	"pixsurf/testpattern"
	"pixsurf/viewer"

	"github.com/alecthomas/kong"
)

// MaxDimension bounds the frame sides accepted on the command line. Targets
// may be up to twice as large.
const MaxDimension = 1 << 14

// SourceFlags selects the frame source and the surface geometry.
type SourceFlags struct {
	Width   int    `help:"Frame width" default:"256" group:"source"`
	Height  int    `help:"Frame height" default:"240" group:"source"`
	Format  string `help:"Surface pixel format" enum:"bgra-premul,bgra,rgba-premul,rgba,gray,rgb565" default:"bgra" group:"source"`
	Pattern string `help:"Frame pattern" enum:"solid,counter,checker,bars,indexed,picture" default:"bars" group:"source"`
	Color   string `help:"Pattern color as #RGB, #RGBA, #RRGGBB or #RRGGBBAA" default:"#f00" group:"source"`
	Input   string `help:"Image file drawn by the picture pattern" group:"source"`
	Palette string `help:"Palette of the indexed pattern: bw, gray16, vga16, plan9 or a RIFF PAL file" default:"vga16" group:"source"`

	PixelFormat  surface.PixelFormat `kong:"-"`
	PatternColor color.Color         `kong:"-"`
	Picture      image.Image         `kong:"-"`
	Colors       color.Palette       `kong:"-"`
}

// Resolve parses the flags into a format, colour, palette and picture.
func (c *SourceFlags) Resolve() error {
	if c.Width <= 0 || c.Height <= 0 || c.Width > MaxDimension || c.Height > MaxDimension {
		return fmt.Errorf("invalid frame size: %dx%d, sides must be 1 to %d", c.Width, c.Height, MaxDimension)
	}

	var err error
	if c.PixelFormat, err = surface.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.PatternColor, err = testpattern.ParseColor(c.Color); err != nil {
		return err
	}

	if c.Pattern == "indexed" {
		if c.Colors, err = palette.Lookup(c.Palette); err != nil {
			return err
		}
	}

	switch {
	case c.Pattern == "picture" && c.Input == "":
		return fmt.Errorf("the picture pattern needs --input")
	case c.Input != "":
		if c.Picture, _, err = testpattern.Load(c.Input); err != nil {
			return err
		}
	}
	return nil
}

// Source builds the configured pattern.
func (c *SourceFlags) Source() (testpattern.Pattern, error) {
	g := testpattern.Geometry{Width: c.Width, Height: c.Height, Format: c.PixelFormat}
	return testpattern.ByName(c.Pattern, g, testpattern.Options{
		Color:   c.PatternColor,
		Palette: c.Colors,
		Image:   c.Picture,
	})
}

// TargetFlags describes the drawing target standing in for a widget.
type TargetFlags struct {
	TargetWidth  int    `help:"Target width, twice the frame width if unset" group:"target"`
	TargetHeight int    `help:"Target height, twice the frame height if unset" group:"target"`
	Interp       string `help:"Scaling filter" enum:"nearest,bilinear" default:"nearest" group:"target"`
	Fit          string `help:"Placement inside the target" enum:"stretch,letterbox" default:"stretch" group:"target"`
	Background   string `help:"Letterbox margin color" default:"#000" group:"target"`

	Interpolation blit.Interpolation `kong:"-"`
	Placement     viewer.Fit         `kong:"-"`
	MarginColor   color.Color        `kong:"-"`
}

// Resolve parses the target flags. Unset target sizes are derived from
// the frame size.
func (c *TargetFlags) Resolve(frameWidth, frameHeight int) error {
	if c.TargetWidth == 0 {
		c.TargetWidth = 2 * frameWidth
	}
	if c.TargetHeight == 0 {
		c.TargetHeight = 2 * frameHeight
	}
	if c.TargetWidth < 0 || c.TargetHeight < 0 || c.TargetWidth > 2*MaxDimension || c.TargetHeight > 2*MaxDimension {
		return fmt.Errorf("invalid target size: %dx%d, sides must be 1 to %d", c.TargetWidth, c.TargetHeight, 2*MaxDimension)
	}

	var err error
	if c.Interpolation, err = blit.ParseInterpolation(c.Interp); err != nil {
		return err
	}
	if c.Placement, err = viewer.ParseFit(c.Fit); err != nil {
		return err
	}
	if c.MarginColor, err = testpattern.ParseColor(c.Background); err != nil {
		return err
	}
	return nil
}

// Viewer returns a viewer configured for the target, banding blits on pool.
func (c *TargetFlags) Viewer(pool *parallel.Pool) *viewer.Viewer {
	return viewer.New(
		viewer.WithBlitter(blit.New(blit.WithInterpolation(c.Interpolation), blit.WithPool(pool))),
		viewer.WithFit(c.Placement),
		viewer.WithBackground(c.MarginColor),
	)
}

// Target allocates the drawing target.
func (c *TargetFlags) Target() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, c.TargetWidth, c.TargetHeight))
}

type CLICmd struct {
	SourceFlags `embed:""`
	TargetFlags `embed:""`

	Frames   int    `help:"Frames to render before painting" default:"1"`
	Out      string `help:"Output file" default:"frame.png"`
	Encoding string `help:"Output encoding, guessed from the file extension when auto" enum:"auto,png,jpeg,gif,bmp,tiff" default:"auto"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if err := c.SourceFlags.Resolve(); err != nil {
		return err
	}
	if err := c.TargetFlags.Resolve(c.Width, c.Height); err != nil {
		return err
	}
	if c.Frames < 1 {
		return fmt.Errorf("invalid frame count: %d", c.Frames)
	}
	if c.Encoding == "auto" {
		c.Encoding = snapshot.EncodingFor(c.Out)
	}
	return nil
}

func (c *CLICmd) Run(ctx context.Context, pool *parallel.Pool) error {
	src, err := c.Source()
	if err != nil {
		return err
	}

	v := c.Viewer(pool)
	p := producer.New(src, producer.OnSwap(v.SetSource))
	for range c.Frames {
		if _, err := p.Step(); err != nil {
			return fmt.Errorf("could not produce frame: %w", err)
		}
	}

	dst := c.Target()
	outcome, err := v.Paint(ctx, dst, dst.Bounds())
	if err != nil {
		return fmt.Errorf("could not paint frame: %w", err)
	}
	if outcome != viewer.Painted {
		return fmt.Errorf("frame was not painted: %s", outcome)
	}

	if err := snapshot.Save(dst, c.Encoding, c.Out); err != nil {
		return err
	}

	st := p.Stats()
	slog.Info("snapshot saved", "file", c.Out, "encoding", c.Encoding,
		"frame", fmt.Sprintf("%dx%d", c.Width, c.Height), "format", c.PixelFormat,
		"texture", c.PixelFormat.TextureFormat(),
		"target", dst.Bounds().Size(), "published", st.Published, "dropped", st.Dropped)
	return nil
}
