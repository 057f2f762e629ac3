package callframe

import "sync"

// ContentPanel is the call UI hosted inside a call window. It is also the root
// Element of the content hierarchy.
type ContentPanel interface {
	Element

	Title() string
	// MinimumButtonWidth is the width the panel's button bar needs.
	MinimumButtonWidth() int
	HasSecondaryView() bool
	// DisposeSecondaryView tears down the call info view, if any.
	DisposeSecondaryView()
	// OnHangupRequested is invoked when the user closes the window.
	OnHangupRequested(viaEscape bool)
	Dispose()
	AddTitleListener(l TitleListener) Subscription
}

// TitleListener is notified when a panel's title changes.
type TitleListener interface {
	OnTitleChanged(panel ContentPanel)
}

// Subscription is a handle to a registered listener. Release is idempotent.
type Subscription interface {
	Release()
}

// TitleBroadcaster keeps the title listeners of a panel. The zero value is
// ready to use.
type TitleBroadcaster struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []titleEntry
}

type titleEntry struct {
	id       uint64
	listener TitleListener
}

// Subscribe registers l until the returned Subscription is released.
func (b *TitleBroadcaster) Subscribe(l TitleListener) Subscription {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, titleEntry{id: id, listener: l})
	b.mu.Unlock()

	return &subscription{release: func() { b.remove(id) }}
}

// Notify calls every current listener in subscription order.
func (b *TitleBroadcaster) Notify(panel ContentPanel) {
	b.mu.Lock()
	snapshot := make([]TitleListener, 0, len(b.listeners))
	for _, e := range b.listeners {
		snapshot = append(snapshot, e.listener)
	}
	b.mu.Unlock()

	for _, l := range snapshot {
		l.OnTitleChanged(panel)
	}
}

// Len returns the number of registered listeners.
func (b *TitleBroadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func (b *TitleBroadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.listeners {
		if e.id == id {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

type subscription struct {
	once    sync.Once
	release func()
}

func (s *subscription) Release() {
	s.once.Do(s.release)
}
