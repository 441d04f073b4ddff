// Command termdesk runs a desktop with a shell terminal, a sprite layer
// and a graphics layer that clients draw on through the command queue.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/danielgatis/go-termdesk/config"
	"github.com/danielgatis/go-termdesk/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	backend := flag.String("backend", "", "window backend: tcell or image (overrides config)")
	command := flag.String("cmd", "", "shell command for the terminal layer (overrides config)")
	screenshot := flag.String("screenshot", "", "render with the image backend and save a PNG here")
	frames := flag.Int("frames", 30, "frames to render before taking the screenshot")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "termdesk: %v\n", err)
		os.Exit(2)
	}
	if *backend != "" {
		cfg.Window.Backend = *backend
	}
	if *command != "" {
		cfg.Terminal.Command = *command
	}
	if *screenshot != "" {
		cfg.Window.Backend = "image"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "termdesk: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "termdesk: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if *screenshot != "" {
		err = app.Screenshot(ctx, *screenshot, *frames)
	} else {
		err = app.Run(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("termdesk stopped", zap.Error(err))
		os.Exit(1)
	}
}

// newLogger builds the process logger. The tcell backend owns the tty, so
// a stderr-only logger is silenced there.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Window.Backend == "tcell" && stderrOnly(cfg.Log.OutputPaths) {
		return logging.NewNop(), nil
	}
	return logging.New(cfg.Log)
}

func stderrOnly(paths []string) bool {
	for _, p := range paths {
		if p != "stderr" {
			return false
		}
	}
	return true
}
