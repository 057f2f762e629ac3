package callframe

import "github.com/1broseidon/callframe/internal/platform"

// Element is a node of the content containment hierarchy. Implementations
// must be comparable (pointer types) and Parent must return an untyped nil
// at the root.
type Element interface {
	Parent() Element
	// Size is the current on-screen size.
	Size() platform.Size
	// PreferredSizeSet reports whether a preferred size was forced on the
	// element rather than computed.
	PreferredSizeSet() bool
	// PreferredSize is the element's own preferred size.
	PreferredSize() (platform.Size, bool)
	// LayoutPreferredSize asks the element's layout for the size it would
	// give its children. ok is false when there is no layout or it cannot
	// tell.
	LayoutPreferredSize() (platform.Size, bool)
}

// ResolveSizeHint picks the element whose size should drive a window
// resize. Leaf elements such as video surfaces report their native size,
// which is often not what the surrounding layout will give them, so the
// nearest ancestor-or-self with a forced preferred size wins, then the panel.
//
// When neither exists the request is trusted as is.
func ResolveSizeHint(el Element, requested platform.Size, panel Element) (Element, platform.Size) {
	candidate := closestWithPreferredSize(el)
	if candidate == nil {
		candidate = panel
	}
	if candidate == nil {
		return el, requested
	}

	if candidate.PreferredSizeSet() {
		if size, ok := candidate.LayoutPreferredSize(); ok {
			return candidate, size
		}
		return el, requested
	}

	if size, ok := candidate.PreferredSize(); ok {
		return candidate, size
	}
	return el, requested
}

func closestWithPreferredSize(el Element) Element {
	for e := el; e != nil; e = e.Parent() {
		if e.PreferredSizeSet() {
			return e
		}
	}
	return nil
}

// root returns the topmost ancestor of el.
func root(el Element) Element {
	for {
		parent := el.Parent()
		if parent == nil {
			return el
		}
		el = parent
	}
}
