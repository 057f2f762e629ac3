package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
)

func TestApplyStruts(t *testing.T) {
	left := Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := Monitor{X: 1920, Y: 0, Width: 1920, Height: 1080}
	const rootW, rootH = 3840, 1080

	topBar := ewmh.WmStrutPartial{Top: 32, TopStartX: 0, TopEndX: 1919}
	bottomDock := ewmh.WmStrutPartial{Bottom: 48, BottomStartX: 0, BottomEndX: 3839}

	tests := []struct {
		name    string
		monitor Monitor
		struts  []ewmh.WmStrutPartial
		want    Monitor
		wantOK  bool
	}{
		{
			name:    "no struts",
			monitor: left,
			want:    left,
		},
		{
			name:    "top bar on this monitor",
			monitor: left,
			struts:  []ewmh.WmStrutPartial{topBar},
			want:    Monitor{X: 0, Y: 32, Width: 1920, Height: 1048},
			wantOK:  true,
		},
		{
			name:    "top bar on the other monitor",
			monitor: right,
			struts:  []ewmh.WmStrutPartial{topBar},
			want:    right,
		},
		{
			name:    "full width dock and top bar",
			monitor: left,
			struts:  []ewmh.WmStrutPartial{topBar, bottomDock},
			want:    Monitor{X: 0, Y: 32, Width: 1920, Height: 1000},
			wantOK:  true,
		},
		{
			name:    "plain strut expanded to full range",
			monitor: right,
			struts:  []ewmh.WmStrutPartial{fullStrut(&ewmh.WmStrut{Right: 60}, rootW, rootH)},
			want:    Monitor{X: 1920, Y: 0, Width: 1860, Height: 1080},
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := applyStruts(tt.monitor, rootW, rootH, tt.struts)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Fatalf("monitor = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClipToWorkArea(t *testing.T) {
	mon := Monitor{Name: "DP-1", X: 1920, Y: 0, Width: 1920, Height: 1080}

	got := clipToWorkArea(mon, ewmh.Workarea{X: 0, Y: 30, Width: 3840, Height: 1050})
	want := Monitor{Name: "DP-1", X: 1920, Y: 30, Width: 1920, Height: 1050}
	if got != want {
		t.Fatalf("clipToWorkArea = %+v, want %+v", got, want)
	}

	disjoint := clipToWorkArea(mon, ewmh.Workarea{X: 0, Y: 0, Width: 1920, Height: 1080})
	if disjoint != mon {
		t.Fatalf("disjoint work area changed monitor: %+v", disjoint)
	}
}

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, X: 1920, Y: 0, Width: 2560, Height: 1440},
	}

	if m := monitorAt(monitors, 1919, 500); m == nil || m.ID != 0 {
		t.Fatalf("monitorAt(1919,500) = %+v, want monitor 0", m)
	}
	if m := monitorAt(monitors, 1920, 1200); m == nil || m.ID != 1 {
		t.Fatalf("monitorAt(1920,1200) = %+v, want monitor 1", m)
	}
	if m := monitorAt(monitors, 100, 1200); m != nil {
		t.Fatalf("monitorAt(100,1200) = %+v, want nil", m)
	}
}

func TestParseWindowState(t *testing.T) {
	tests := []struct {
		states []string
		want   WindowState
	}{
		{nil, WindowState{}},
		{[]string{"_NET_WM_STATE_MAXIMIZED_HORZ"}, WindowState{}},
		{[]string{"_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ"}, WindowState{Maximized: true}},
		{[]string{"_NET_WM_STATE_FULLSCREEN", "_NET_WM_STATE_ABOVE"}, WindowState{FullScreen: true}},
	}
	for _, tt := range tests {
		if got := parseWindowState(tt.states); got != tt.want {
			t.Errorf("parseWindowState(%v) = %+v, want %+v", tt.states, got, tt.want)
		}
	}
}
