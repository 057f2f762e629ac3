package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/callframe/internal/callframe"
	"github.com/1broseidon/callframe/internal/config"
	"github.com/1broseidon/callframe/internal/eventloop"
	"github.com/1broseidon/callframe/internal/logging"
	"github.com/1broseidon/callframe/internal/platform"
)

var _ callframe.Frame = (*platform.LinuxFrame)(nil)

type runOptions struct {
	configPath     string
	peer           string
	request        platform.Size
	minButtonWidth int
	hangupDelay    time.Duration
}

func parseRunArgs(args []string) (runOptions, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: callframe run [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a call window with a demo call. Closing the window or pressing")
		fmt.Fprintln(os.Stderr, "Escape hangs up; the window goes away after the close delay.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}

	var opts runOptions
	var request string
	fs.StringVar(&opts.configPath, "path", "", "Config file path (default: ~/.config/callframe/config.yaml)")
	fs.StringVar(&opts.peer, "title", "Call", "Name of the remote party shown in the title")
	fs.StringVar(&request, "request", "", "Video size to request once shown, as WIDTHxHEIGHT")
	fs.IntVar(&opts.minButtonWidth, "min-button-width", 0, "Width the call controls need")
	fs.DurationVar(&opts.hangupDelay, "hangup-delay", 0, "Time between the hang-up request and the call ending")
	if err := fs.Parse(args); err != nil {
		return runOptions{}, err
	}
	if fs.NArg() > 0 {
		return runOptions{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if request != "" {
		size, err := parseSize(request)
		if err != nil {
			return runOptions{}, fmt.Errorf("--request: %w", err)
		}
		opts.request = size
	}
	if opts.minButtonWidth < 0 {
		return runOptions{}, fmt.Errorf("--min-button-width must be >= 0")
	}
	if opts.hangupDelay < 0 {
		return runOptions{}, fmt.Errorf("--hangup-delay must be >= 0")
	}
	return opts, nil
}

// parseSize parses WIDTHxHEIGHT.
func parseSize(s string) (platform.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return platform.Size{}, fmt.Errorf("invalid size %q: want WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width < 1 {
		return platform.Size{}, fmt.Errorf("invalid width in %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height < 1 {
		return platform.Size{}, fmt.Errorf("invalid height in %q", s)
	}
	return platform.Size{Width: width, Height: height}, nil
}

func runCall(args []string) int {
	opts, err := parseRunArgs(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	res, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config

	logCfg := cfg.GetLoggingConfig()
	logger, logCloser, err := logging.New(logging.Options{
		Level:     cfg.LogLevel,
		File:      logCfg.File,
		MaxSizeMB: logCfg.MaxSizeMB,
		MaxFiles:  logCfg.MaxFiles,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	if err := runWindow(cfg, opts, logger); err != nil {
		logger.Error("call window failed", "error", err)
		return 1
	}
	return 0
}

func runWindow(cfg *config.Config, opts runOptions, logger *slog.Logger) error {
	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display, cfg.XAuthority)
	if err != nil {
		return err
	}
	defer backend.Disconnect()
	logDisplays(logger, backend)

	loop := eventloop.New(logger)

	// Set once the lifecycle exists; X callbacks only fire after Show.
	var lc *callframe.Lifecycle
	postClose := func(viaEscape bool) func() {
		return func() {
			if err := loop.Post(func(context.Context) { lc.RequestClose(viaEscape) }); err != nil {
				logger.Debug("close request dropped", "error", err)
			}
		}
	}

	frame, err := backend.NewFrame(platform.FrameOptions{
		Title:     opts.peer,
		Width:     cfg.Window.InitialWidth,
		Height:    cfg.Window.InitialHeight,
		MinWidth:   cfg.Window.MinWidth,
		MinHeight:  cfg.Window.MinHeight,
		AvoidDocks: cfg.Window.AvoidDocks,
		OnClose:    postClose(false),
		OnEscape:   postClose(true),
	})
	if err != nil {
		return fmt.Errorf("create call window: %w", err)
	}

	registry := callframe.NewRegistry()
	lc = callframe.NewLifecycle(frame, loop, callframe.Options{
		CloseDelay:         cfg.CloseDelay,
		MinimumHeightFloor: cfg.MinimumHeightFloor,
		Registry:           registry,
		Logger:             logger,
	})
	adjuster := callframe.NewAdjuster(lc, loop, callframe.AdjusterOptions{
		ResizeThreshold: cfg.ResizeThreshold,
		Logger:          logger,
	})

	initial := platform.Size{Width: cfg.Window.InitialWidth, Height: cfg.Window.InitialHeight}
	panel := newDemoPanel(opts.peer, opts.minButtonWidth, initial, func() platform.Size {
		return frame.Bounds().Size()
	})
	panel.onHangup = func(bool) {
		loop.AfterFunc(opts.hangupDelay, func(context.Context) {
			lc.ClosePanel(panel, true)
		})
	}

	started := time.Now()
	var tick eventloop.Func
	tick = func(context.Context) {
		if lc.State() == callframe.StateDisposed {
			return
		}
		panel.tick(time.Since(started))
		loop.AfterFunc(time.Second, tick)
	}

	err = loop.Post(func(ctx context.Context) {
		if err := lc.Attach(panel); err != nil {
			logger.Error("failed to attach call panel", "error", err)
			loop.Stop()
			return
		}
		if opts.request.Width > 0 {
			panel.video.requested = opts.request
			res := adjuster.EnsureSize(ctx, panel.video, opts.request.Width, opts.request.Height)
			logger.Info("requested video size", "width", opts.request.Width, "height", opts.request.Height, "result", res.String())
		}
		loop.AfterFunc(time.Second, tick)
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go backend.EventLoop()
	go func() {
		select {
		case <-lc.Done():
			loop.Stop()
		case <-loop.Done():
		}
	}()

	runErr := loop.Run(ctx)

	// The loop is no longer running, so this goroutine owns the lifecycle.
	if lc.State() != callframe.StateDisposed {
		if err := lc.Dispose(); err != nil {
			logger.Warn("failed to dispose call window", "error", err)
		}
	}
	backend.QuitEventLoop()

	if errors.Is(runErr, context.Canceled) {
		logger.Info("interrupted")
		return nil
	}
	return runErr
}

func logDisplays(logger *slog.Logger, backend platform.Backend) {
	displays, err := backend.Displays()
	if err != nil {
		logger.Warn("failed to list displays", "error", err)
		return
	}
	for _, d := range displays {
		logger.Debug("display",
			"id", d.ID,
			"name", d.Name,
			"bounds", fmt.Sprintf("%dx%d+%d+%d", d.Bounds.Width, d.Bounds.Height, d.Bounds.X, d.Bounds.Y),
			"usable", fmt.Sprintf("%dx%d+%d+%d", d.Usable.Width, d.Usable.Height, d.Usable.X, d.Usable.Y),
		)
	}
}
