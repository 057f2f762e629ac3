package x11

import (
	"fmt"
	"os"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection establishes a connection to the given X display ("" uses
// $DISPLAY) and initializes required extensions
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for the Escape binding)
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Connect resolves DISPLAY/XAUTHORITY from the environment and the given
// configured values, exports XAUTHORITY for the X client library, and opens
// a connection.
func Connect(display, xauthority string) (*Connection, error) {
	env, err := ResolveDisplayEnv(os.Environ(), display, xauthority)
	if err != nil {
		return nil, err
	}
	if env.XAuthority != "" {
		if err := os.Setenv("XAUTHORITY", env.XAuthority); err != nil {
			return nil, fmt.Errorf("failed to export XAUTHORITY: %w", err)
		}
	}

	conn, err := NewConnection(env.Display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11 display %s: %w", env.Display, err)
	}
	return conn, nil
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit makes EventLoop return.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
