package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"pixsurf/live"
	"pixsurf/logging"
	"pixsurf/parallel"
	"pixsurf/snap"

	"github.com/alecthomas/kong"
)

type CLI struct {
	LogLevel string `help:"Log level" enum:"debug,info,warn,error" default:"info" env:"PIXSURF_LOG_LEVEL"`
	Workers  int    `help:"Blit worker count, 0 for one per CPU" default:"0" env:"PIXSURF_WORKERS"`

	Snap snap.CLICmd `cmd:"" help:"Render frames into a surface, paint the last one into a target and save it"`
	Run  live.CLICmd `cmd:"" help:"Run a producer and a render loop against one surface"`
}

func (c *CLI) AfterApply() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logging.SetLogger(logger)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pixsurf"),
		kong.Description("Shared pixel surface playground."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	pool := parallel.Start(cli.Workers)
	err := kctx.Run(pool)
	pool.Close()
	if err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
