package callframe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/1broseidon/callframe/internal/eventloop"
	"github.com/1broseidon/callframe/internal/platform"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFrame records every call made against it. Calls are appended to a log
// shared with fakePanel so tests can assert ordering across both.
type fakeFrame struct {
	id         platform.WindowID
	bounds     platform.Rect
	minimum    platform.Size
	screen     platform.Rect
	maximized  bool
	fullScreen bool
	visible    bool
	title      string

	appliedMinimum platform.Size
	packed         []platform.Size
	setBounds      []platform.Rect
	disposeCalls   int
	setBoundsErr   error

	log *[]string
}

func newFakeFrame(log *[]string) *fakeFrame {
	return &fakeFrame{
		id:      42,
		bounds:  platform.Rect{X: 100, Y: 100, Width: 400, Height: 300},
		minimum: platform.Size{Width: 360, Height: 300},
		screen:  platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		log:     log,
	}
}

func (f *fakeFrame) record(s string) {
	if f.log != nil {
		*f.log = append(*f.log, s)
	}
}

func (f *fakeFrame) ID() platform.WindowID       { return f.id }
func (f *fakeFrame) Bounds() platform.Rect       { return f.bounds }
func (f *fakeFrame) MinimumSize() platform.Size  { return f.minimum }
func (f *fakeFrame) ScreenBounds() platform.Rect { return f.screen }
func (f *fakeFrame) IsMaximized() bool           { return f.maximized }
func (f *fakeFrame) IsFullScreen() bool          { return f.fullScreen }
func (f *fakeFrame) Visible() bool               { return f.visible }

func (f *fakeFrame) SetBounds(b platform.Rect) error {
	if f.setBoundsErr != nil {
		return f.setBoundsErr
	}
	f.record("frame.setBounds")
	f.setBounds = append(f.setBounds, b)
	f.bounds = b
	return nil
}

func (f *fakeFrame) SetMinimumSize(s platform.Size) error {
	f.appliedMinimum = s
	return nil
}

func (f *fakeFrame) SetTitle(title string) error {
	f.record("frame.setTitle")
	f.title = title
	return nil
}

func (f *fakeFrame) Pack(natural platform.Size) error {
	f.record("frame.pack")
	f.packed = append(f.packed, natural)
	f.bounds.Width = natural.Width
	f.bounds.Height = natural.Height
	return nil
}

func (f *fakeFrame) Show() error {
	f.record("frame.show")
	f.visible = true
	return nil
}

func (f *fakeFrame) Hide() error {
	f.record("frame.hide")
	f.visible = false
	return nil
}

func (f *fakeFrame) Dispose() error {
	f.record("frame.dispose")
	f.disposeCalls++
	f.visible = false
	return nil
}

// fakeElement is a node of a hand-built containment hierarchy.
type fakeElement struct {
	parent        Element
	size          platform.Size
	prefSet       bool
	pref          *platform.Size
	layoutPref    *platform.Size
	layoutQueries int
}

func (e *fakeElement) Parent() Element { return e.parent }

func (e *fakeElement) Size() platform.Size    { return e.size }
func (e *fakeElement) PreferredSizeSet() bool { return e.prefSet }

func (e *fakeElement) PreferredSize() (platform.Size, bool) {
	if e.pref == nil {
		return platform.Size{}, false
	}
	return *e.pref, true
}

func (e *fakeElement) LayoutPreferredSize() (platform.Size, bool) {
	e.layoutQueries++
	if e.layoutPref == nil {
		return platform.Size{}, false
	}
	return *e.layoutPref, true
}

func sizePtr(w, h int) *platform.Size {
	return &platform.Size{Width: w, Height: h}
}

// fakePanel is a ContentPanel that is also the root of its hierarchy.
type fakePanel struct {
	fakeElement

	title           string
	minButtonWidth  int
	secondary       bool
	secondaryClosed int
	hangups         []bool
	disposeCalls    int

	titles TitleBroadcaster
	log    *[]string
}

func newFakePanel(title string, log *[]string) *fakePanel {
	return &fakePanel{title: title, secondary: true, log: log}
}

func (p *fakePanel) record(s string) {
	if p.log != nil {
		*p.log = append(*p.log, s)
	}
}

func (p *fakePanel) Parent() Element         { return nil }
func (p *fakePanel) Title() string           { return p.title }
func (p *fakePanel) MinimumButtonWidth() int { return p.minButtonWidth }
func (p *fakePanel) HasSecondaryView() bool  { return p.secondary }

func (p *fakePanel) DisposeSecondaryView() {
	p.record("panel.disposeSecondaryView")
	p.secondaryClosed++
}

func (p *fakePanel) OnHangupRequested(viaEscape bool) {
	p.record("panel.hangup")
	p.hangups = append(p.hangups, viaEscape)
}

func (p *fakePanel) Dispose() {
	p.record("panel.dispose")
	p.disposeCalls++
}

func (p *fakePanel) AddTitleListener(l TitleListener) Subscription {
	return p.titles.Subscribe(l)
}

func (p *fakePanel) setTitle(title string) {
	p.title = title
	p.titles.Notify(p)
}

// manualScheduler runs deferred tasks when the test advances its clock.
type manualScheduler struct {
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	at      time.Duration
	fn      eventloop.Func
	stopped bool
	ran     bool
}

func (t *manualTask) Stop() bool {
	if t.stopped || t.ran {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn eventloop.Func) eventloop.Task {
	t := &manualTask{at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.now += d
	sort.SliceStable(s.tasks, func(i, j int) bool { return s.tasks[i].at < s.tasks[j].at })
	for _, t := range s.tasks {
		if t.at <= s.now && !t.stopped && !t.ran {
			t.ran = true
			t.fn(context.Background())
		}
	}
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.ran {
			n++
		}
	}
	return n
}

// fakeGuard accepts only the context it was given.
type fakeGuard struct {
	ctx context.Context
}

var errOffLoop = errors.New("off loop")

func (g fakeGuard) MustBeOnLoop(ctx context.Context) {
	if ctx != g.ctx {
		panic(errOffLoop)
	}
}
