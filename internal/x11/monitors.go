package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// rootMonitor describes the whole root window, used when RandR reports
// nothing (e.g. Xvfb without the extension).
func (c *Connection) rootMonitor() (Monitor, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Monitor{}, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return Monitor{Name: "root", Width: int(geom.Width), Height: int(geom.Height)}, nil
}

// MonitorForWindow returns the monitor containing the center of windowID,
// falling back to the monitor under the pointer and then the first one.
func (c *Connection) MonitorForWindow(windowID xproto.Window) (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil || len(monitors) == 0 {
		return c.rootMonitor()
	}

	if geom, err := c.WindowGeometry(windowID); err == nil {
		if mon := monitorAt(monitors, geom.X+geom.Width/2, geom.Y+geom.Height/2); mon != nil {
			return *mon, nil
		}
	}
	if mon := findMonitorForPointer(c, monitors); mon != nil {
		return *mon, nil
	}
	return monitors[0], nil
}

// UsableArea shrinks monitor by the dock struts that overlap it. When no dock
// reserves space the EWMH work area of the current desktop is used instead.
func (c *Connection) UsableArea(monitor Monitor) Monitor {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err == nil {
		struts := c.dockStruts(int(rootGeom.Width), int(rootGeom.Height))
		if adjusted, ok := applyStruts(monitor, int(rootGeom.Width), int(rootGeom.Height), struts); ok {
			return adjusted
		}
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return monitor
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(currentDesktop) < len(workArea) {
		desktopIndex = int(currentDesktop)
	}
	return clipToWorkArea(monitor, workArea[desktopIndex])
}

func (c *Connection) dockStruts(rootWidth, rootHeight int) []ewmh.WmStrutPartial {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var struts []ewmh.WmStrutPartial
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil || !hasAtom(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			struts = append(struts, *sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			struts = append(struts, fullStrut(s, rootWidth, rootHeight))
		}
	}
	return struts
}

func fullStrut(s *ewmh.WmStrut, rootWidth, rootHeight int) ewmh.WmStrutPartial {
	return ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(rootHeight - 1),
		RightEndY:  uint(rootHeight - 1),
		TopEndX:    uint(rootWidth - 1),
		BottomEndX: uint(rootWidth - 1),
	}
}

type edges struct {
	left   int
	right  int
	top    int
	bottom int
}

// applyStruts removes the space reserved by struts from monitor. It reports
// false when none of them overlap the monitor.
func applyStruts(monitor Monitor, rootWidth, rootHeight int, struts []ewmh.WmStrutPartial) (Monitor, bool) {
	var acc edges
	for i := range struts {
		accumulateStrut(monitor, rootWidth, rootHeight, &struts[i], &acc)
	}
	if acc == (edges{}) {
		return monitor, false
	}

	monitor.X += acc.left
	monitor.Y += acc.top
	monitor.Width = max(monitor.Width-(acc.left+acc.right), 1)
	monitor.Height = max(monitor.Height-(acc.top+acc.bottom), 1)
	return monitor, true
}

func accumulateStrut(monitor Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *edges) {
	mon := rect{monitor.X, monitor.Y, monitor.X + monitor.Width, monitor.Y + monitor.Height}

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		r := rect{int(sp.TopStartX), 0, int(sp.TopEndX) + 1, int(sp.Top)}
		acc.top = max(acc.top, mon.overlap(r).h)
	}
	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		r := rect{int(sp.BottomStartX), rootHeight - int(sp.Bottom), int(sp.BottomEndX) + 1, rootHeight}
		acc.bottom = max(acc.bottom, mon.overlap(r).h)
	}
	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		r := rect{0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY) + 1}
		acc.left = max(acc.left, mon.overlap(r).w)
	}
	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		r := rect{rootWidth - int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY) + 1}
		acc.right = max(acc.right, mon.overlap(r).w)
	}
}

func clipToWorkArea(monitor Monitor, wa ewmh.Workarea) Monitor {
	mon := rect{monitor.X, monitor.Y, monitor.X + monitor.Width, monitor.Y + monitor.Height}
	area := rect{int(wa.X), int(wa.Y), int(wa.X) + int(wa.Width), int(wa.Y) + int(wa.Height)}
	o := mon.overlap(area)
	if o.w == 0 || o.h == 0 {
		return monitor
	}
	monitor.X = max(mon.x1, area.x1)
	monitor.Y = max(mon.y1, area.y1)
	monitor.Width = o.w
	monitor.Height = o.h
	return monitor
}

// rect is a half-open box [x1,x2) x [y1,y2).
type rect struct {
	x1, y1, x2, y2 int
}

type extent struct {
	w int
	h int
}

func (a rect) overlap(b rect) extent {
	x1 := max(a.x1, b.x1)
	y1 := max(a.y1, b.y1)
	x2 := min(a.x2, b.x2)
	y2 := min(a.y2, b.y2)
	if x2 <= x1 || y2 <= y1 {
		return extent{}
	}
	return extent{w: x2 - x1, h: y2 - y1}
}

func monitorAt(monitors []Monitor, x, y int) *Monitor {
	for i := range monitors {
		if monitors[i].contains(x, y) {
			return &monitors[i]
		}
	}
	return nil
}

func findMonitorForPointer(c *Connection, monitors []Monitor) *Monitor {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}
	return monitorAt(monitors, int(pointer.RootX), int(pointer.RootY))
}

func hasAtom(atoms []string, want string) bool {
	for _, a := range atoms {
		if a == want {
			return true
		}
	}
	return false
}
