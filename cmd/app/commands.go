package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/1F47E/go-bezier-renderer/internal/config"
	"github.com/1F47E/go-bezier-renderer/internal/core"
	"github.com/1F47E/go-bezier-renderer/internal/dims"
	"github.com/1F47E/go-bezier-renderer/internal/export"
	"github.com/1F47E/go-bezier-renderer/internal/pipeline"
	"github.com/1F47E/go-bezier-renderer/internal/server"
	"github.com/1F47E/go-bezier-renderer/internal/storage"
)

// buildConfig reads flags and environment. Every failure is a config.Error.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	cfg.FrameDir = c.String("frames")
	cfg.FileExt = c.String("ext")
	cfg.Color = c.String("color")
	cfg.Bilateral = c.Bool("bilateral")
	cfg.L2Gradient = c.Bool("l2")
	cfg.DownloadImages = c.Bool("download")
	cfg.ShowGrid = !c.Bool("hide-grid")
	cfg.AcceptEULA = c.Bool("yes")
	cfg.OpenBrowser = !c.Bool("no-browser")
	cfg.CachePath = c.String("cache")
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("format") {
		cfg.ScreenshotFormat = c.String("format")
	}

	if s := c.String("size"); s != "" {
		size, err := config.ParseSize(s)
		if err != nil {
			return cfg, err
		}
		cfg.ScreenshotSize = size
	}

	srv, err := config.LoadServer()
	if err != nil {
		return cfg, err
	}
	cfg.Server = srv
	return cfg, cfg.Validate()
}

func configExit(c *cli.Context, err error) error {
	_ = cli.ShowAppHelp(c)
	return cli.NewExitError("Error: "+err.Error(), 2)
}

func decodeExit(err error) error {
	var de *storage.DecodeError
	if errors.As(err, &de) {
		return cli.NewExitError(fmt.Sprintf("[ERROR] %v\n\n%s", de, de.Hint()), 2)
	}
	return err
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// run is the default action: process every frame, then serve them.
func run(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return configExit(c, err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	printBanner(os.Stdout)
	if !cfg.AcceptEULA && !askEULA(os.Stdin, os.Stdout) {
		return nil
	}
	fmt.Println(separator)

	store := storage.New(cfg)
	total, err := store.Count()
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("[ERROR] %v", err), 2)
	}
	fmt.Printf("Processing %d frames... Please wait for processing to finish before running on frontend\n\n", total)

	tracker := dims.New()
	pipe := pipeline.New(cfg, store, tracker)
	cr := core.NewCore(ctx, pipe, core.WithWorkers(cfg.Workers))

	frames, err := cr.Batch(total)
	if err != nil {
		return decodeExit(err)
	}

	if cfg.CachePath != "" {
		if _, err := export.Write(cfg.CachePath, cr.RunID(), frames); err != nil {
			log.Warnf("cache: %v", err)
		}
	}

	srv, err := server.New(cfg, store, pipe, tracker, cr.RunID())
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/calculator", cfg.Server.Port)
	printReady(os.Stdout, url)
	if cfg.OpenBrowser {
		time.AfterFunc(time.Second, func() {
			if err := openBrowser(url); err != nil {
				log.Warnf("open browser: %v", err)
			}
		})
	}
	return srv.Run(ctx)
}

// printFrame writes the query response for one frame to stdout.
func printFrame(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return configExit(c, err)
	}
	idx, err := getIndex(c)
	if err != nil {
		return err
	}

	store := storage.New(cfg)
	total, err := store.Count()
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("[ERROR] %v", err), 2)
	}

	var result []pipeline.Expression
	if idx < total {
		result, err = pipeline.New(cfg, store, dims.New()).Frame(idx)
		if err != nil {
			return decodeExit(err)
		}
	}
	return json.NewEncoder(os.Stdout).Encode(map[string]any{"result": result})
}

func extract(c *cli.Context) error {
	videoFile, err := getArg(c, "video file")
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	cr := core.NewCore(ctx, nil)
	n, err := cr.Extract(videoFile, c.String("frames"), c.String("ext"), c.Float64("fps"))
	if err != nil {
		return err
	}
	log.Infof("%d frames ready, run the renderer with -f %s -e %s", n, c.String("frames"), c.String("ext"))
	return nil
}

func inspect(c *cli.Context) error {
	path, err := getArg(c, "cache file")
	if err != nil {
		return err
	}
	m, frames, err := export.Read(path)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("[ERROR] %s: %v", path, err), 1)
	}
	exprs := 0
	for _, f := range frames {
		exprs += len(f)
	}
	fmt.Println(m.Print())
	fmt.Printf("Checksum OK, %d frames, %d expressions\n", len(frames), exprs)
	return nil
}
