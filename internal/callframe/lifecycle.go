// Package callframe manages the window hosting an active call: its lifecycle
// from attach to disposal and its geometry as content asks for more room.
//
// Everything in this package must run on the UI event loop.
package callframe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/callframe/internal/eventloop"
	"github.com/1broseidon/callframe/internal/platform"
)

const (
	// DefaultCloseDelay is how long a delayed close keeps the window around.
	DefaultCloseDelay = 5 * time.Second
	// DefaultMinimumHeightFloor is the minimum height used once the panel's
	// buttons widen the minimum size.
	DefaultMinimumHeightFloor = 300
)

var (
	// ErrAlreadyAttached is returned when attaching a second panel.
	ErrAlreadyAttached = errors.New("call window already hosts a panel")
	// ErrDisposed is returned by operations on a disposed call window.
	ErrDisposed = errors.New("call window disposed")
)

// State is the lifecycle phase of a call window.
type State int

const (
	// StateEmpty means the window exists but no panel was attached yet.
	StateEmpty State = iota
	// StateOpen means a panel is attached.
	StateOpen
	// StateClosing means a delayed dispose is pending.
	StateClosing
	// StateDisposed is terminal.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Options configures a Lifecycle.
// Zero values select DefaultCloseDelay and DefaultMinimumHeightFloor.
type Options struct {
	CloseDelay         time.Duration
	MinimumHeightFloor int
	// Registry, when set, tracks which frame hosts the attached panel.
	Registry *Registry
	Logger   *slog.Logger
}

// Lifecycle binds one Frame to the single ContentPanel it displays.
type Lifecycle struct {
	frame       Frame
	scheduler   eventloop.Scheduler
	registry    *Registry
	logger      *slog.Logger
	closeDelay  time.Duration
	heightFloor int

	state    State
	panel    ContentPanel
	titleSub Subscription
	pending  eventloop.Task
	done     chan struct{}
}

var _ TitleListener = (*Lifecycle)(nil)

// NewLifecycle takes ownership of frame. Delayed closes are scheduled on
// scheduler.
func NewLifecycle(frame Frame, scheduler eventloop.Scheduler, opts Options) *Lifecycle {
	closeDelay := opts.CloseDelay
	if closeDelay <= 0 {
		closeDelay = DefaultCloseDelay
	}
	floor := opts.MinimumHeightFloor
	if floor <= 0 {
		floor = DefaultMinimumHeightFloor
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Lifecycle{
		frame:       frame,
		scheduler:   scheduler,
		registry:    opts.Registry,
		logger:      logger.With("window", uint32(frame.ID())),
		closeDelay:  closeDelay,
		heightFloor: floor,
		state:       StateEmpty,
		done:        make(chan struct{}),
	}
}

// Frame returns the owned window.
func (l *Lifecycle) Frame() Frame { return l.frame }

// Panel returns the attached panel, or nil.
func (l *Lifecycle) Panel() ContentPanel { return l.panel }

// State returns the current lifecycle phase.
func (l *Lifecycle) State() State { return l.state }

// Done is closed once the window has been disposed.
func (l *Lifecycle) Done() <-chan struct{} { return l.done }

// Attach makes panel the content of the window and shows the window if it is
// hidden. Attaching the attached panel again only resyncs the title.
func (l *Lifecycle) Attach(panel ContentPanel) error {
	if panel == nil {
		return fmt.Errorf("attach: nil panel")
	}
	if l.state == StateDisposed {
		return fmt.Errorf("attach: %w", ErrDisposed)
	}
	if l.panel != nil {
		if l.panel != panel {
			return fmt.Errorf("attach: %w", ErrAlreadyAttached)
		}
		l.syncTitle()
		return nil
	}

	l.panel = panel
	l.state = StateOpen
	l.syncTitle()
	l.titleSub = panel.AddTitleListener(l)
	if l.registry != nil {
		l.registry.Register(panel, l.frame)
	}

	minimum := l.MinimumSize()
	if err := l.frame.SetMinimumSize(minimum); err != nil {
		l.logger.Warn("failed to set minimum size", "error", err)
	}

	if !l.frame.Visible() {
		if err := l.frame.Pack(l.naturalSize(minimum)); err != nil {
			l.logger.Warn("failed to pack call window", "error", err)
		}
		if err := l.frame.Show(); err != nil {
			l.logger.Warn("failed to show call window", "error", err)
		}
	}

	l.logger.Info("call window opened", "title", panel.Title())
	return nil
}

// OnTitleChanged implements TitleListener. Notifications from any panel other
// than the attached one are ignored.
func (l *Lifecycle) OnTitleChanged(panel ContentPanel) {
	if l.state == StateDisposed || panel == nil || panel != l.panel {
		l.logger.Debug("ignoring stale title change")
		return
	}
	l.syncTitle()
}

// RequestClose handles the user closing the window. Unless the request came
// from Escape, the window is hidden before the panel starts hanging up so the
// UI reacts at once. The window is not disposed here.
func (l *Lifecycle) RequestClose(viaEscape bool) {
	if l.state == StateDisposed {
		return
	}

	panel := l.panel
	if !viaEscape {
		if panel != nil {
			disposeSecondaryView(panel)
		}
		if err := l.frame.Hide(); err != nil {
			l.logger.Warn("failed to hide call window", "error", err)
		}
	}

	if panel != nil {
		l.logger.Info("hang up requested", "escape", viaEscape)
		panel.OnHangupRequested(viaEscape)
	}
}

// ClosePanel closes the window on behalf of panel, either now or after the
// close delay. It does nothing unless panel is the attached one.
func (l *Lifecycle) ClosePanel(panel ContentPanel, delayed bool) {
	if l.state == StateDisposed || panel == nil || panel != l.panel {
		l.logger.Debug("ignoring close for a panel that is not attached")
		return
	}

	if !delayed {
		disposeSecondaryView(panel)
		if err := l.Dispose(); err != nil {
			l.logger.Warn("failed to dispose call window", "error", err)
		}
		return
	}

	if l.pending != nil {
		return
	}
	l.state = StateClosing
	l.logger.Info("call window closing", "delay", l.closeDelay)
	l.pending = l.scheduler.AfterFunc(l.closeDelay, func(context.Context) {
		l.pending = nil
		if err := l.Dispose(); err != nil && !errors.Is(err, ErrDisposed) {
			l.logger.Warn("failed to dispose call window", "error", err)
		}
	})
}

// Dispose releases the window and then the attached panel. Only the first
// call has any effect; later calls return ErrDisposed.
func (l *Lifecycle) Dispose() error {
	if l.state == StateDisposed {
		l.logger.Warn("call window disposed twice")
		return ErrDisposed
	}
	l.state = StateDisposed

	if l.pending != nil {
		l.pending.Stop()
		l.pending = nil
	}
	if l.titleSub != nil {
		l.titleSub.Release()
		l.titleSub = nil
	}
	if l.registry != nil && l.panel != nil {
		l.registry.Unregister(l.panel)
	}

	var err error
	if ferr := l.frame.Dispose(); ferr != nil {
		err = fmt.Errorf("dispose window: %w", ferr)
	}
	if l.panel != nil {
		l.panel.Dispose()
	}

	close(l.done)
	l.logger.Info("call window disposed")
	return err
}

// IsPanelVisible reports whether panel is attached and the window is shown.
func (l *Lifecycle) IsPanelVisible(panel ContentPanel) bool {
	if l.state == StateDisposed || panel == nil || panel != l.panel {
		return false
	}
	return l.frame.Visible()
}

// MinimumSize is the window's minimum, widened to fit the panel's buttons.
func (l *Lifecycle) MinimumSize() platform.Size {
	minimum := l.frame.MinimumSize()
	if l.panel == nil {
		return minimum
	}
	if w := l.panel.MinimumButtonWidth(); w > minimum.Width {
		minimum = platform.Size{Width: w, Height: max(minimum.Height, l.heightFloor)}
	}
	return minimum
}

func (l *Lifecycle) syncTitle() {
	if err := l.frame.SetTitle(l.panel.Title()); err != nil {
		l.logger.Warn("failed to set title", "error", err)
	}
}

func (l *Lifecycle) naturalSize(minimum platform.Size) platform.Size {
	natural, ok := l.panel.PreferredSize()
	if !ok {
		natural = l.frame.Bounds().Size()
	}
	return platform.Size{
		Width:  max(natural.Width, minimum.Width),
		Height: max(natural.Height, minimum.Height),
	}
}

func disposeSecondaryView(panel ContentPanel) {
	if panel.HasSecondaryView() {
		panel.DisposeSecondaryView()
	}
}
