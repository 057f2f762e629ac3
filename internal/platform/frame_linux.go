//go:build linux

package platform

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgbutil/xwindow"
)

// ErrFrameDisposed is returned by operations on a destroyed LinuxFrame.
var ErrFrameDisposed = errors.New("window destroyed")

// FrameOptions describes a new top-level call window.
type FrameOptions struct {
	Title  string
	Class  string
	Width  int
	Height int
	// MinWidth and MinHeight are the window's own minimum size.
	MinWidth  int
	MinHeight int
	// AvoidDocks limits placement to the area not reserved by docks and
	// panels. By default the whole monitor is used.
	AvoidDocks bool

	// OnClose and OnEscape run on the X event goroutine.
	OnClose  func()
	OnEscape func()
}

// LinuxFrame is an X11 top-level window.
type LinuxFrame struct {
	backend *LinuxBackend
	win     *xwindow.Window
	minimum Size
	// avoidDocks selects Display.Usable over Display.Bounds.
	avoidDocks bool

	mu       sync.Mutex
	visible  bool
	disposed bool
	last     Rect
}

// NewFrame creates an unmapped window. It is shown by Show.
func (b *LinuxBackend) NewFrame(opts FrameOptions) (*LinuxFrame, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	minimum := Size{Width: max(opts.MinWidth, 1), Height: max(opts.MinHeight, 1)}
	width := max(opts.Width, minimum.Width)
	height := max(opts.Height, minimum.Height)

	win, err := conn.CreateWindow(0, 0, width, height)
	if err != nil {
		return nil, err
	}

	f := &LinuxFrame{
		backend:    b,
		win:        win,
		minimum:    minimum,
		avoidDocks: opts.AvoidDocks,
		last:       Rect{Width: width, Height: height},
	}

	class := opts.Class
	if class == "" {
		class = "callframe"
	}
	if err := conn.SetClass(win.Id, class, class); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to set WM_CLASS: %w", err)
	}
	if err := f.SetTitle(opts.Title); err != nil {
		win.Destroy()
		return nil, err
	}
	if err := conn.SetMinSize(win.Id, minimum.Width, minimum.Height); err != nil {
		win.Destroy()
		return nil, err
	}

	if opts.OnClose != nil {
		conn.OnDeleteRequest(win, opts.OnClose)
	}
	if opts.OnEscape != nil {
		if err := conn.OnKeyPress(win, "Escape", opts.OnEscape); err != nil {
			win.Destroy()
			return nil, err
		}
	}

	return f, nil
}

// ID returns the X window id.
func (f *LinuxFrame) ID() WindowID { return WindowID(f.win.Id) }

// Bounds returns the window's absolute geometry, or the last known bounds
// if the server cannot be queried.
func (f *LinuxFrame) Bounds() Rect {
	geom, err := f.backend.conn.WindowGeometry(f.win.Id)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		return f.last
	}
	f.last = Rect{X: geom.X, Y: geom.Y, Width: geom.Width, Height: geom.Height}
	return f.last
}

// SetBounds moves and resizes the window in one request.
func (f *LinuxFrame) SetBounds(r Rect) error {
	if f.isDisposed() {
		return ErrFrameDisposed
	}
	if err := f.backend.MoveResize(f.ID(), r); err != nil {
		return fmt.Errorf("move-resize: %w", err)
	}
	f.mu.Lock()
	f.last = r
	f.mu.Unlock()
	return nil
}

// MinimumSize is the size given at creation.
func (f *LinuxFrame) MinimumSize() Size { return f.minimum }

// SetMinimumSize publishes s as the window manager size hint.
func (f *LinuxFrame) SetMinimumSize(s Size) error {
	if f.isDisposed() {
		return ErrFrameDisposed
	}
	return f.backend.conn.SetMinSize(f.win.Id, s.Width, s.Height)
}

// ScreenBounds returns the monitor the window is on, or its usable area when
// the frame was created with AvoidDocks.
func (f *LinuxFrame) ScreenBounds() Rect {
	d, err := f.backend.DisplayForWindow(f.ID())
	if err != nil {
		return Rect{}
	}
	return d.Placement(f.avoidDocks)
}

// IsMaximized reports whether the window is maximized on both axes.
func (f *LinuxFrame) IsMaximized() bool { return f.backend.conn.State(f.win.Id).Maximized }

// IsFullScreen reports whether the window manager shows the window full
// screen.
func (f *LinuxFrame) IsFullScreen() bool { return f.backend.conn.State(f.win.Id).FullScreen }

// SetTitle sets the window name shown by the window manager.
func (f *LinuxFrame) SetTitle(title string) error {
	if f.isDisposed() {
		return ErrFrameDisposed
	}
	return f.backend.conn.SetTitle(f.win.Id, title)
}

// Visible reports whether the window is mapped.
func (f *LinuxFrame) Visible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

// Pack sizes the window to natural and centers it on its screen.
func (f *LinuxFrame) Pack(natural Size) error {
	if f.isDisposed() {
		return ErrFrameDisposed
	}
	screen := f.ScreenBounds()
	r := Rect{Width: natural.Width, Height: natural.Height}
	if screen.Width > 0 && screen.Height > 0 {
		r.Width = min(r.Width, screen.Width)
		r.Height = min(r.Height, screen.Height)
		r.X = screen.X + (screen.Width-r.Width)/2
		r.Y = screen.Y + (screen.Height-r.Height)/2
	}
	f.win.MoveResize(r.X, r.Y, r.Width, r.Height)
	f.mu.Lock()
	f.last = r
	f.mu.Unlock()
	return nil
}

// Show maps and activates the window.
func (f *LinuxFrame) Show() error {
	if f.isDisposed() {
		return ErrFrameDisposed
	}
	f.win.Map()
	f.mu.Lock()
	f.visible = true
	f.mu.Unlock()

	if err := f.backend.conn.ActivateWindow(f.win.Id); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	return nil
}

// Hide unmaps the window.
func (f *LinuxFrame) Hide() error {
	if f.isDisposed() {
		return ErrFrameDisposed
	}
	f.win.Unmap()
	f.mu.Lock()
	f.visible = false
	f.mu.Unlock()
	return nil
}

// Dispose detaches all event handlers and destroys the window.
func (f *LinuxFrame) Dispose() error {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return ErrFrameDisposed
	}
	f.disposed = true
	f.visible = false
	f.mu.Unlock()

	f.win.Destroy()
	return nil
}

func (f *LinuxFrame) isDisposed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disposed
}
