// Command tinyfsd serves the network-accessible miniature file system
// (spec.md 1) over TCP: one backing file, one fixed on-disk layout, and
// the CREATE/WRITE/READ/DELETE/LIST/QUIT line protocol plus the STAT/INFO
// additions.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mnfs/tinyfsd/fsmanager"
	"github.com/mnfs/tinyfsd/server"
	"github.com/mnfs/tinyfsd/util"
)

func main() {
	app := &cli.App{
		Name:        "tinyfsd",
		Description: "network-accessible miniature file system server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "TCP address to listen on"},
			&cli.StringFlag{Name: "disk", Usage: "path to the backing disk file"},
			&cli.IntFlag{Name: "max-workers", Usage: "maximum concurrent connections"},
			&cli.DurationFlag{Name: "idle-timeout", Usage: "idle connection timeout"},
			&cli.Int64Flag{Name: "verbosity", Usage: "debug trace verbosity level"},
			&cli.Int64Flag{Name: "configured-size", Usage: "advisory volume size, recorded but not used for layout"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx *cli.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	applyFlags(cfg, ctx)
	util.SetVerbosity(cfg.Verbosity)

	fs, err := fsmanager.Open(cfg.DiskPath, "tinyfsd", cfg.ConfiguredSize)
	if err != nil {
		return fmt.Errorf("opening file system %q: %w", cfg.DiskPath, err)
	}
	defer fs.Close()

	srv := server.New(fs, server.Config{
		MaxWorkers:  cfg.MaxWorkers,
		IdleTimeout: cfg.IdleTimeout,
	})

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(sigCtx, cfg.Addr) }()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
		util.DPrintf(1, "tinyfsd: shutting down\n")
		select {
		case <-errCh:
		case <-time.After(5 * time.Second):
		}
		return nil
	}
}

func applyFlags(cfg *Config, ctx *cli.Context) {
	if ctx.IsSet("addr") {
		cfg.Addr = ctx.String("addr")
	}
	if ctx.IsSet("disk") {
		cfg.DiskPath = ctx.String("disk")
	}
	if ctx.IsSet("max-workers") {
		cfg.MaxWorkers = ctx.Int("max-workers")
	}
	if ctx.IsSet("idle-timeout") {
		cfg.IdleTimeout = ctx.Duration("idle-timeout")
	}
	if ctx.IsSet("verbosity") {
		cfg.Verbosity = ctx.Int64("verbosity")
	}
	if ctx.IsSet("configured-size") {
		cfg.ConfiguredSize = ctx.Int64("configured-size")
	}
}
