package main

import (
	"fmt"
	"time"

	"github.com/1broseidon/callframe/internal/callframe"
	"github.com/1broseidon/callframe/internal/platform"
)

// buttonBarHeight is the space below the video reserved for call controls.
const buttonBarHeight = 48

// demoPanel stands in for a real call UI: a video view above a button bar.
// Its size follows the window it is attached to.
type demoPanel struct {
	peer           string
	minButtonWidth int
	preferred      platform.Size
	contentSize    func() platform.Size

	elapsed   time.Duration
	ended     bool
	infoOpen  bool
	disposed  bool
	titles    callframe.TitleBroadcaster
	video     *videoView
	onHangup  func(viaEscape bool)
	onDispose func()
}

var _ callframe.ContentPanel = (*demoPanel)(nil)

func newDemoPanel(peer string, minButtonWidth int, preferred platform.Size, contentSize func() platform.Size) *demoPanel {
	p := &demoPanel{
		peer:           peer,
		minButtonWidth: minButtonWidth,
		preferred:      preferred,
		contentSize:    contentSize,
		infoOpen:       true,
	}
	p.video = &videoView{panel: p}
	return p
}

func (p *demoPanel) Parent() callframe.Element { return nil }

func (p *demoPanel) Size() platform.Size {
	if p.contentSize == nil {
		return platform.Size{}
	}
	return p.contentSize()
}

func (p *demoPanel) PreferredSizeSet() bool { return false }

func (p *demoPanel) PreferredSize() (platform.Size, bool) {
	if p.preferred.Width < 1 || p.preferred.Height < 1 {
		return platform.Size{}, false
	}
	return p.preferred, true
}

func (p *demoPanel) LayoutPreferredSize() (platform.Size, bool) {
	v, ok := p.video.LayoutPreferredSize()
	if !ok {
		return platform.Size{}, false
	}
	return platform.Size{Width: max(v.Width, p.minButtonWidth), Height: v.Height + buttonBarHeight}, true
}

func (p *demoPanel) Title() string {
	if p.ended {
		return p.peer + " (call ended)"
	}
	secs := int(p.elapsed / time.Second)
	return fmt.Sprintf("%s %02d:%02d", p.peer, secs/60, secs%60)
}

func (p *demoPanel) MinimumButtonWidth() int { return p.minButtonWidth }
func (p *demoPanel) HasSecondaryView() bool  { return p.infoOpen }
func (p *demoPanel) DisposeSecondaryView()   { p.infoOpen = false }

func (p *demoPanel) OnHangupRequested(viaEscape bool) {
	if p.ended {
		return
	}
	p.ended = true
	p.titles.Notify(p)
	if p.onHangup != nil {
		p.onHangup(viaEscape)
	}
}

func (p *demoPanel) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	if p.onDispose != nil {
		p.onDispose()
	}
}

func (p *demoPanel) AddTitleListener(l callframe.TitleListener) callframe.Subscription {
	return p.titles.Subscribe(l)
}

// tick advances the call clock shown in the title.
func (p *demoPanel) tick(elapsed time.Duration) {
	if p.ended || p.disposed {
		return
	}
	before := p.Title()
	p.elapsed = elapsed
	if p.Title() != before {
		p.titles.Notify(p)
	}
}

// videoView is the remote video. It asks for the stream's frame size.
type videoView struct {
	panel     *demoPanel
	requested platform.Size
}

func (v *videoView) Parent() callframe.Element { return v.panel }

func (v *videoView) Size() platform.Size {
	s := v.panel.Size()
	return platform.Size{Width: s.Width, Height: max(s.Height-buttonBarHeight, 0)}
}

func (v *videoView) PreferredSizeSet() bool { return v.requested.Width > 0 && v.requested.Height > 0 }

func (v *videoView) PreferredSize() (platform.Size, bool) {
	return v.requested, v.PreferredSizeSet()
}

func (v *videoView) LayoutPreferredSize() (platform.Size, bool) {
	return v.requested, v.PreferredSizeSet()
}
