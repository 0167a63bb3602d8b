package main

import (
	"context"
	"path/filepath"
	"testing"

	"pixsurf/logging"
	"pixsurf/parallel"
	"pixsurf/surface"

	"github.com/alecthomas/kong"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("pixsurf"), kong.BindTo(context.Background(), (*context.Context)(nil)))
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}
	t.Cleanup(func() { logging.SetLogger(nil) })
	kctx, err := parser.Parse(args)
	return &cli, kctx, err
}

func TestParseSnapDefaults(t *testing.T) {
	cli, kctx, err := parse(t, "snap")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if kctx.Command() != "snap" {
		t.Errorf("Command() = %q, want snap", kctx.Command())
	}
	s := cli.Snap
	if s.Width != 256 || s.Height != 240 || s.PixelFormat != surface.BGRA8888 {
		t.Errorf("frame = %dx%d/%s, want 256x240/bgra", s.Width, s.Height, s.PixelFormat)
	}
	if s.TargetWidth != 512 || s.TargetHeight != 480 || s.Encoding != "png" {
		t.Errorf("target = %dx%d %s, want 512x480 png", s.TargetWidth, s.TargetHeight, s.Encoding)
	}
}

func TestParseRejectsUnknownEnum(t *testing.T) {
	if _, _, err := parse(t, "snap", "--format", "yuv420"); err == nil {
		t.Error("Parse() should reject an unknown format")
	}
	if _, _, err := parse(t, "run", "--interp", "lanczos"); err == nil {
		t.Error("Parse() should reject an unknown interpolation")
	}
}

func TestWorkersFromEnv(t *testing.T) {
	t.Setenv("PIXSURF_WORKERS", "3")
	cli, _, err := parse(t, "run", "--duration", "1s")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cli.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cli.Workers)
	}
}

func TestRunSnap(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.gif")
	_, kctx, err := parse(t, "snap", "--pattern", "solid", "--width", "16", "--height", "8", "--out", out, "--log-level", "error")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	pool := parallel.Start(1)
	defer pool.Close()
	if err := kctx.Run(pool); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}
