package callframe

import (
	"sync"

	"github.com/1broseidon/callframe/internal/platform"
)

// Frame is the top-level window hosting a call.
type Frame interface {
	ID() platform.WindowID
	Bounds() platform.Rect
	// SetBounds moves and resizes the window in one request.
	SetBounds(bounds platform.Rect) error
	// MinimumSize is the window system's own minimum.
	MinimumSize() platform.Size
	// SetMinimumSize publishes the effective minimum to the window system.
	SetMinimumSize(size platform.Size) error
	// ScreenBounds is the usable area of the screen the window is on.
	ScreenBounds() platform.Rect
	IsMaximized() bool
	IsFullScreen() bool
	SetTitle(title string) error
	Visible() bool
	// Pack sizes the window to the given natural content size.
	Pack(natural platform.Size) error
	Show() error
	Hide() error
	Dispose() error
}

// Host resolves the top-level window containing an element.
type Host interface {
	FrameOf(el Element) (Frame, bool)
}

// Registry maps hierarchy roots to the frames hosting them.
type Registry struct {
	mu     sync.RWMutex
	frames map[Element]Frame
}

var _ Host = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{frames: make(map[Element]Frame)}
}

// Register records that root is displayed in frame.
func (r *Registry) Register(root Element, frame Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames[root] = frame
}

// Unregister forgets root.
func (r *Registry) Unregister(root Element) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.frames, root)
}

// FrameOf walks el up to its root and returns the frame displaying it.
func (r *Registry) FrameOf(el Element) (Frame, bool) {
	if el == nil {
		return nil, false
	}
	top := root(el)

	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.frames[top]
	return f, ok
}
