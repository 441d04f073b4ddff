package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	termdesk "github.com/danielgatis/go-termdesk"
	"github.com/danielgatis/go-termdesk/bell"
	"github.com/danielgatis/go-termdesk/bell/speaker"
	"github.com/danielgatis/go-termdesk/config"
	"github.com/danielgatis/go-termdesk/desktop"
	"github.com/danielgatis/go-termdesk/dispatch"
	"github.com/danielgatis/go-termdesk/dispatch/wire"
	"github.com/danielgatis/go-termdesk/input"
	"github.com/danielgatis/go-termdesk/keymap"
	"github.com/danielgatis/go-termdesk/metrics"
	"github.com/danielgatis/go-termdesk/pty"
	"github.com/danielgatis/go-termdesk/render"
	"github.com/danielgatis/go-termdesk/render/canvas"
	"github.com/danielgatis/go-termdesk/render/tcellwin"
)

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	window render.Window
	image  *canvas.Window
	screen *desktop.Screen
	server *dispatch.Server
	events *dispatch.Broadcaster
	hub    *wire.Hub

	servers []*http.Server
	audio   bool
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	table := a.keymap(ctx)
	if cfg.Window.Backend == "tcell" && table.Len() == 0 {
		// Runes typed in the host terminal are mapped back to key codes
		// through the layout; an empty table would swallow them.
		table = keymap.Fallback()
	}
	if err := a.openWindow(table); err != nil {
		return nil, err
	}

	queue := dispatch.NewQueue(cfg.Dispatch.Queue, cfg.Dispatch.Capacity)
	a.server = dispatch.NewServer(queue,
		dispatch.WithLogger(logger.Named("dispatch")),
		dispatch.WithMetrics(a.metrics),
	)
	a.events = dispatch.NewBroadcaster(0, logger.Named("events"), a.metrics)
	a.hub = wire.NewHub(a.server, a.events,
		wire.WithRate(cfg.Dispatch.Rate, cfg.Dispatch.Burst),
		wire.WithHubLogger(logger.Named("wire")),
		wire.WithHubMetrics(a.metrics),
	)

	a.screen = desktop.NewScreen(a.window,
		desktop.WithServer(a.server, cfg.Dispatch.DrainMax),
		desktop.WithEvents(a.events),
		desktop.WithLogger(logger.Named("desktop")),
		desktop.WithMetrics(a.metrics),
	)
	if err := a.addLayers(table); err != nil {
		a.window.Close()
		return nil, err
	}
	if err := a.screen.Register(a.server); err != nil {
		a.screen.Close()
		return nil, fmt.Errorf("register commands: %w", err)
	}
	return a, nil
}

// keymap resolves the host layout, degrading to the embedded US layout or
// to an empty table.
func (a *app) keymap(ctx context.Context) *keymap.Table {
	table, err := keymap.Resolve(ctx,
		keymap.WithCommand(a.cfg.Keymap.Command, a.cfg.Keymap.Args...),
		keymap.WithLogger(a.logger.Named("keymap")),
	)
	if err == nil {
		return table
	}
	if a.cfg.Keymap.Fallback {
		a.logger.Warn("keymap unavailable, using the built-in US layout", zap.Error(err))
		return keymap.Fallback()
	}
	a.logger.Warn("keymap unavailable, keys produce no input", zap.Error(err))
	return keymap.Empty()
}

func (a *app) openWindow(table *keymap.Table) error {
	switch a.cfg.Window.Backend {
	case "tcell":
		w, err := tcellwin.New(tcellwin.WithKeymap(table), tcellwin.WithLogger(a.logger.Named("tcell")))
		if err != nil {
			return fmt.Errorf("open terminal window: %w", err)
		}
		a.window = w
	default:
		var opts []canvas.WindowOption
		if a.cfg.Window.FontPath != "" {
			face, err := canvas.LoadFont(a.cfg.Window.FontPath, a.cfg.Window.FontSize)
			if err != nil {
				return err
			}
			opts = append(opts, canvas.WithFace(face))
		}
		a.image = canvas.NewWindow(a.cfg.Window.Width, a.cfg.Window.Height, opts...)
		a.window = a.image
	}
	return nil
}

func (a *app) addLayers(table *keymap.Table) error {
	size := a.window.Size()
	cell := a.window.CellSize()
	rows, cols := a.cfg.Terminal.Rows, a.cfg.Terminal.Cols
	if a.cfg.Window.Backend == "tcell" {
		rows, cols = size.Y/cell.Y, size.X/cell.X
	}

	bellProvider := a.bell()
	translatorOpts := []input.Option{input.WithLogger(a.logger.Named("input"))}
	if len(table.Modifiers()) > 0 {
		translatorOpts = append(translatorOpts, input.WithTableModifiers())
	}

	newTerminal := func(name, command string, args []string, extra ...desktop.TerminalOption) *desktop.TerminalLayer {
		spawn := func(rows, cols int) (desktop.Child, error) {
			child, err := pty.Start(pty.Options{
				Command: command,
				Args:    args,
				Rows:    rows,
				Cols:    cols,
				Term:    a.cfg.Terminal.Term,
				Locale:  a.cfg.Terminal.Locale,
				Logger:  a.logger.Named(name),
			})
			if err != nil {
				return nil, err
			}
			return child, nil
		}
		opts := append([]desktop.TerminalOption{
			desktop.WithTerminalSize(rows, cols),
			desktop.WithSpawner(spawn),
			desktop.WithTranslator(input.NewTranslator(table, translatorOpts...)),
			desktop.WithTerminalOptions(
				termdesk.WithBell(bellProvider),
				termdesk.WithScrollback(termdesk.NewMemoryScrollback(a.cfg.Terminal.Scrollback)),
			),
			desktop.WithTerminalLogger(a.logger.Named("terminal")),
			desktop.WithTerminalMetrics(a.metrics),
		}, extra...)
		return desktop.NewTerminalLayer(name, nil, opts...)
	}

	a.screen.Add(desktop.NewGraphicsLayer("graphics", size, cell))
	a.screen.Add(desktop.NewSpriteLayer("sprites", a.logger.Named("sprites")))

	shell := newTerminal("terminal", a.cfg.Shell(), a.cfg.Terminal.Args)
	if shell.Inert() {
		return fmt.Errorf("start %s: terminal has no child", a.cfg.Shell())
	}
	a.screen.Add(shell)

	if a.cfg.Editor.Command != "" {
		a.screen.Add(newTerminal("editor", a.cfg.Editor.Command, a.cfg.Editor.Args, desktop.WithDisabled()))
	}
	return nil
}

func (a *app) bell() termdesk.BellProvider {
	if !a.cfg.Bell.Audio {
		return termdesk.NoopBell{}
	}
	b, err := speaker.Open(
		bell.WithTone(a.cfg.Bell.Frequency, time.Duration(a.cfg.Bell.Duration)),
		bell.WithLogger(a.logger.Named("bell")),
	)
	if err != nil {
		a.logger.Warn("audio bell unavailable", zap.Error(err))
		return termdesk.NoopBell{}
	}
	a.audio = true
	return b
}

// serve starts the command endpoint and, when configured, the metrics
// endpoint.
func (a *app) serve(ctx context.Context) (<-chan error, error) {
	errs := make(chan error, 2)
	start := func(addr string, h http.Handler, what string) error {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", what, err)
		}
		srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
		a.servers = append(a.servers, srv)
		a.logger.Info("listening", zap.String("endpoint", what), zap.String("addr", ln.Addr().String()))
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- fmt.Errorf("%s server: %w", what, err)
			}
		}()
		return nil
	}

	if a.cfg.Dispatch.Listen != "" {
		if err := start(a.cfg.Dispatch.Listen, a.hub.Handler(), "dispatch"); err != nil {
			return nil, err
		}
		go a.hub.Run(ctx)
	}
	if a.cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		if err := start(a.cfg.Metrics.Listen, mux, "metrics"); err != nil {
			return nil, err
		}
	}
	return errs, nil
}

// Run serves clients and renders until ctx is done or the window closes.
func (a *app) Run(ctx context.Context) error {
	errs, err := a.serve(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.screen.Run(ctx, a.cfg.Window.FPS) }()

	select {
	case err := <-errs:
		cancel()
		<-done
		return err
	case err := <-done:
		return err
	}
}

// Screenshot renders frames with the image backend and writes the last one
// as PNG to path.
func (a *app) Screenshot(ctx context.Context, path string, frames int) error {
	if a.image == nil {
		return errors.New("screenshot needs the image backend")
	}
	if frames <= 0 {
		frames = 1
	}
	interval := time.Second / time.Duration(a.cfg.Window.FPS)
	for i := 0; i < frames; i++ {
		if err := a.screen.RenderFrame(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return savePNG(path, a.image.Frame())
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Close stops the servers, the children and the window.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, srv := range a.servers {
		srv.Shutdown(ctx)
	}
	if err := a.screen.Close(); err != nil && !errors.Is(err, canvas.ErrClosed) {
		a.logger.Debug("window close", zap.Error(err))
	}
	a.events.Close()
	if a.audio {
		speaker.Close()
	}
}
