package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Size is a width/height pair.
type Size struct {
	Width  int
	Height int
}

// Size returns the dimensions of r.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Center returns the center point of r.
func (r Rect) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Placement is the area windows are centered and clamped in: the whole
// display, or the usable area when avoidDocks is set and one is known.
func (d Display) Placement(avoidDocks bool) Rect {
	if avoidDocks && d.Usable.Width > 0 && d.Usable.Height > 0 {
		return d.Usable
	}
	return d.Bounds
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	DisplayForWindow(windowID WindowID) (Display, error)
	MoveResize(windowID WindowID, bounds Rect) error
}
