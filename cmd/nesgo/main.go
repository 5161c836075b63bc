// Package main implements the nesgo NES emulator executable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nesgo/nesgo/internal/app"
	"github.com/nesgo/nesgo/internal/console"
	"github.com/nesgo/nesgo/internal/graphics"
	"github.com/nesgo/nesgo/internal/rom"
	"github.com/nesgo/nesgo/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file")
		configFile = flag.String("config", "", "Path to configuration file")
		headless   = flag.Bool("headless", false, "Run without a window, dumping PPM snapshots instead")
		scale      = flag.Int("scale", 0, "Window scale override (0 uses the config file's value)")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVer {
		version.PrintBuildInfo()
		return
	}

	if *romFile == "" {
		fmt.Fprintln(os.Stderr, "nesgo: -rom is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg := app.NewConfig()
	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}
	if err := cfg.LoadFromFile(configPath); err != nil {
		log.Fatalf("nesgo: loading config: %v", err)
	}
	if *scale > 0 {
		cfg.Window.Scale = *scale
	}
	if *headless {
		cfg.Video.Backend = "headless"
	}

	img, err := rom.Load(*romFile)
	var unsupported *rom.ErrUnsupportedMapper
	if err != nil && !errors.As(err, &unsupported) {
		log.Fatalf("nesgo: loading ROM: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("nesgo: interrupt received, shutting down")
		cancel()
	}()
	defer cancel()

	if cfg.Video.Backend == "headless" {
		runHeadless(ctx, img, cfg)
		return
	}
	if err := runWindowed(img, cfg); err != nil {
		log.Fatalf("nesgo: %v", err)
	}
}

func runWindowed(img *rom.Image, cfg *app.Config) error {
	game := graphics.NewEbitenGame(cfg.Window.Scale)
	c, err := console.New(img, game, game)
	if err != nil {
		var unsupported *rom.ErrUnsupportedMapper
		if !errors.As(err, &unsupported) {
			return err
		}
		log.Printf("nesgo: warning: %v", err)
	}
	game.Attach(c)
	return graphics.Run("nesgo", game)
}

func runHeadless(ctx context.Context, img *rom.Image, cfg *app.Config) {
	display := graphics.NewHeadlessDisplay()
	display.SetDumpInterval(30, ".")

	c, err := console.New(img, display, graphics.NoInput{})
	if err != nil {
		var unsupported *rom.ErrUnsupportedMapper
		if !errors.As(err, &unsupported) {
			log.Fatalf("nesgo: %v", err)
		}
		log.Printf("nesgo: warning: %v", err)
	}

	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("nesgo: emulation stopped: %v", err)
	}
	log.Printf("nesgo: ran %d frames", c.Frame())
}
