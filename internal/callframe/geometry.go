package callframe

import (
	"context"
	"log/slog"

	"github.com/1broseidon/callframe/internal/platform"
)

// DefaultResizeThreshold is the largest growth, in pixels, treated as noise.
const DefaultResizeThreshold = 1

// LoopGuard asserts that a context belongs to the running UI loop turn.
// *eventloop.Loop implements it.
type LoopGuard interface {
	MustBeOnLoop(ctx context.Context)
}

// Result describes what EnsureSize did.
type Result int

const (
	Applied Result = iota
	SkippedNoWindow
	SkippedMaximized
	SkippedFullScreen
	SkippedForeignWindow
	SkippedDisposed
	SkippedNotLaidOut
	SkippedNoise
	Failed
)

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case SkippedNoWindow:
		return "no-window"
	case SkippedMaximized:
		return "maximized"
	case SkippedFullScreen:
		return "full-screen"
	case SkippedForeignWindow:
		return "foreign-window"
	case SkippedDisposed:
		return "disposed"
	case SkippedNotLaidOut:
		return "not-laid-out"
	case SkippedNoise:
		return "noise"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// AdjusterOptions configures an Adjuster.
type AdjusterOptions struct {
	// Host resolves an element's window. Defaults to the lifecycle's
	// registry.
	Host Host
	// ResizeThreshold defaults to DefaultResizeThreshold when not positive.
	ResizeThreshold int
	Logger          *slog.Logger
}

// Adjuster grows and recenters the window of one Lifecycle so that content
// gets the size it asks for.
type Adjuster struct {
	lifecycle *Lifecycle
	guard     LoopGuard
	host      Host
	threshold int
	logger    *slog.Logger
}

// NewAdjuster creates an adjuster for the window owned by lifecycle.
func NewAdjuster(lifecycle *Lifecycle, guard LoopGuard, opts AdjusterOptions) *Adjuster {
	host := opts.Host
	if host == nil && lifecycle.registry != nil {
		host = lifecycle.registry
	}
	threshold := opts.ResizeThreshold
	if threshold <= 0 {
		threshold = DefaultResizeThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Adjuster{
		lifecycle: lifecycle,
		guard:     guard,
		host:      host,
		threshold: threshold,
		logger:    logger.With("window", uint32(lifecycle.Frame().ID())),
	}
}

// EnsureSize resizes the window so that el can be width x height. Requests
// that cannot or should not move the window are no-ops.
//
// It panics with eventloop.ErrNotOnLoop unless ctx is the running loop turn.
func (a *Adjuster) EnsureSize(ctx context.Context, el Element, width, height int) Result {
	a.guard.MustBeOnLoop(ctx)

	res := a.ensureSize(el, platform.Size{Width: width, Height: height})
	a.logger.Debug("ensure size", "width", width, "height", height, "result", res.String())
	return res
}

func (a *Adjuster) ensureSize(el Element, requested platform.Size) Result {
	if a.lifecycle.State() == StateDisposed {
		return SkippedDisposed
	}
	if el == nil || a.host == nil {
		return SkippedNoWindow
	}

	frame, ok := a.host.FrameOf(el)
	if !ok || frame == nil {
		return SkippedNoWindow
	}
	if frame.IsMaximized() {
		return SkippedMaximized
	}
	if frame.IsFullScreen() {
		return SkippedFullScreen
	}

	own := a.lifecycle.Frame()
	if frame.ID() != own.ID() {
		return SkippedForeignWindow
	}

	var panel Element
	if p := a.lifecycle.Panel(); p != nil {
		panel = p
	}
	target, requested := ResolveSizeHint(el, requested, panel)

	current := target.Size()
	if current.Width < 1 || current.Height < 1 {
		return SkippedNotLaidOut
	}

	bounds, changed := ComputeBounds(
		own.Bounds(),
		current,
		requested,
		a.lifecycle.MinimumSize(),
		own.ScreenBounds(),
		a.threshold,
	)
	if !changed {
		return SkippedNoise
	}

	if err := own.SetBounds(bounds); err != nil {
		a.logger.Warn("failed to resize call window", "error", err)
		return Failed
	}
	return Applied
}

// ComputeBounds returns the new window bounds that give an element of size
// element the size requested, and whether they differ from window.
//
// The window grows by the element's shortfall, is clamped between minimum and
// the screen, and is centered on the screen. A dimension that would not grow
// by more than threshold keeps its current value; if neither does, window is
// returned unchanged.
func ComputeBounds(window platform.Rect, element, requested, minimum platform.Size, screen platform.Rect, threshold int) (platform.Rect, bool) {
	width := window.Width + requested.Width - element.Width
	height := window.Height + requested.Height - element.Height

	width = max(width, minimum.Width)
	height = max(height, minimum.Height)
	width = min(width, screen.Width)
	height = min(height, screen.Height)

	changeWidth := width-window.Width > threshold
	changeHeight := height-window.Height > threshold
	if !changeWidth && !changeHeight {
		return window, false
	}
	if !changeWidth {
		width = window.Width
	} else if !changeHeight {
		height = window.Height
	}

	x := max(screen.X+(screen.Width-width)/2, screen.X)
	y := max(screen.Y+(screen.Height-height)/2, screen.Y)

	return platform.Rect{X: x, Y: y, Width: width, Height: height}, true
}
