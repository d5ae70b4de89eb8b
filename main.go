package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"colorxfer/xfer"
)

var cli struct {
	xfer.Globals

	Transfer xfer.TransferCmd `cmd:"" help:"Recolor an image after the color clusters of a reference image"`
	Inspect  xfer.InspectCmd  `cmd:"" help:"Report per-cluster lαβ statistics of an image"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kctx := kong.Parse(&cli,
		kong.Name("colorxfer"),
		kong.Description("Clustered statistical color transfer in lαβ space."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	err := kctx.Run(&cli.Globals)
	if err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		stop()
		os.Exit(1)
	}
}
