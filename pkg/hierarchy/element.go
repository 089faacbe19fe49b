// Package hierarchy models a captured Android UI tree.
//
// A Snapshot is one immutable capture of the on-screen hierarchy. It is
// built per poll and discarded after matching; the resolver never reuses
// a snapshot across polls.
package hierarchy

import (
	"time"

	"github.com/droidnav/droidnav/pkg/core"
)

// Element is a single node of a UI snapshot. Elements are never mutated
// after parsing. Children are owned by their parent; the parent link is
// for navigation only.
type Element struct {
	Class       string
	ResourceID  string
	Text        string
	ContentDesc string
	Bounds      core.Bounds
	Clickable   bool
	Enabled     bool
	Checked     bool
	Focused     bool
	Scrollable  bool
	Children    []*Element

	parent *Element
}

// Parent returns the parent element, or nil for the root.
func (e *Element) Parent() *Element {
	return e.parent
}

// Center returns the tap point: the center of the element's bounds.
func (e *Element) Center() (int, int) {
	return e.Bounds.Center()
}

// Info converts the element to its transportable attribute form.
func (e *Element) Info() core.ElementInfo {
	cx, cy := e.Bounds.Center()
	return core.ElementInfo{
		Class:       e.Class,
		ResourceID:  e.ResourceID,
		Text:        e.Text,
		ContentDesc: e.ContentDesc,
		Bounds:      e.Bounds,
		Clickable:   e.Clickable,
		Enabled:     e.Enabled,
		Checked:     e.Checked,
		Focused:     e.Focused,
		Scrollable:  e.Scrollable,
		CenterX:     cx,
		CenterY:     cy,
	}
}

// Snapshot is one capture of the UI hierarchy at a point in time.
type Snapshot struct {
	Root       *Element
	CapturedAt time.Time
}

// Flatten returns every element of the snapshot in pre-order, depth-first,
// children in document order. This is the canonical ordering for
// index-based selection and is stable across repeated calls.
func (s *Snapshot) Flatten() []*Element {
	if s.Root == nil {
		return nil
	}
	var out []*Element
	var walk func(e *Element)
	walk = func(e *Element) {
		out = append(out, e)
		for _, c := range e.Children {
			walk(c)
		}
	}
	walk(s.Root)
	return out
}

// Size returns the number of elements in the snapshot.
func (s *Snapshot) Size() int {
	return len(s.Flatten())
}
