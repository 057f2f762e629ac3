package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Geometry is a window's position relative to the root and its size.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// WindowState is the subset of _NET_WM_STATE callframe cares about.
type WindowState struct {
	Maximized  bool
	FullScreen bool
}

const windowEventMask = xproto.EventMaskStructureNotify |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskKeyPress |
	xproto.EventMaskFocusChange

// CreateWindow creates an unmapped top-level window.
func (c *Connection) CreateWindow(x, y, width, height int) (*xwindow.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	err = win.CreateChecked(c.Root, x, y, width, height,
		xproto.CwBackPixel|xproto.CwEventMask,
		0xffffff, windowEventMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	return win, nil
}

// SetTitle sets both the EWMH (UTF-8) and ICCCM window names.
func (c *Connection) SetTitle(windowID xproto.Window, title string) error {
	if err := ewmh.WmNameSet(c.XUtil, windowID, title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmNameSet(c.XUtil, windowID, title); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}
	return nil
}

// SetClass sets WM_CLASS so window managers can match the window.
func (c *Connection) SetClass(windowID xproto.Window, instance, class string) error {
	return icccm.WmClassSet(c.XUtil, windowID, &icccm.WmClass{Instance: instance, Class: class})
}

// SetMinSize publishes the minimum size in WM_NORMAL_HINTS.
func (c *Connection) SetMinSize(windowID xproto.Window, width, height int) error {
	hints := &icccm.NormalHints{
		Flags:     icccm.SizeHintPMinSize,
		MinWidth:  uint(max(width, 1)),
		MinHeight: uint(max(height, 1)),
	}
	if err := icccm.WmNormalHintsSet(c.XUtil, windowID, hints); err != nil {
		return fmt.Errorf("failed to set WM_NORMAL_HINTS: %w", err)
	}
	return nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// WindowGeometry returns the absolute position and size of windowID.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to translate coordinates: %w", err)
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// State reads _NET_WM_STATE. A window without the property is in neither
// state.
func (c *Connection) State(windowID xproto.Window) WindowState {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return WindowState{}
	}
	return parseWindowState(states)
}

func parseWindowState(states []string) WindowState {
	var s WindowState
	hasMaxH := false
	hasMaxV := false
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ":
			hasMaxH = true
		case "_NET_WM_STATE_MAXIMIZED_VERT":
			hasMaxV = true
		case "_NET_WM_STATE_FULLSCREEN":
			s.FullScreen = true
		}
	}
	s.Maximized = hasMaxH && hasMaxV
	return s
}

// ActivateWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The client message is built by hand because the xgbutil ewmh request
// helpers panic on this library version.
func (c *Connection) ActivateWindow(windowID xproto.Window) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 1 // application
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// OnDeleteRequest installs WM_DELETE_WINDOW and calls fn whenever the window
// manager asks the window to close. fn runs on the X event goroutine.
func (c *Connection) OnDeleteRequest(win *xwindow.Window, fn func()) {
	win.WMGracefulClose(func(*xwindow.Window) { fn() })
}

// OnKeyPress calls fn when keys (e.g. "Escape") is pressed while win has
// focus. fn runs on the X event goroutine.
func (c *Connection) OnKeyPress(win *xwindow.Window, keys string, fn func()) error {
	err := keybind.KeyPressFun(func(*xgbutil.XUtil, xevent.KeyPressEvent) {
		fn()
	}).Connect(c.XUtil, win.Id, keys, false)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", keys, err)
	}
	return nil
}
