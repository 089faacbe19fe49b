// Package matcher evaluates locator predicates against UI snapshots.
//
// Evaluation is deterministic: matches come back in pre-order, depth-first
// document order, which is the canonical ordering for index selection.
package matcher

import (
	"strconv"
	"strings"

	"github.com/droidnav/droidnav/pkg/core"
	"github.com/droidnav/droidnav/pkg/hierarchy"
	"github.com/droidnav/droidnav/pkg/locator"
)

// Evaluate returns all elements of the snapshot matching the predicate,
// in document order. A legal predicate with no matches returns an empty
// list; only a broken XPathExpr predicate produces an error.
func Evaluate(snap *hierarchy.Snapshot, p locator.Predicate) ([]*hierarchy.Element, error) {
	if snap == nil || snap.Root == nil {
		return nil, nil
	}

	if p.Kind == locator.XPathExpr {
		steps := p.XPathSteps()
		if steps == nil {
			// An uncompiled xpath predicate would otherwise masquerade
			// as an empty match list.
			return nil, core.ErrInvalidQuery.WithMessage("xpath predicate was not compiled")
		}
		return evaluateXPath(snap.Root, steps), nil
	}

	var matches []*hierarchy.Element
	for _, el := range snap.Flatten() {
		if matchesAttribute(el, p) {
			matches = append(matches, el)
		}
	}
	return matches, nil
}

// Select evaluates the predicate and applies its index. Zero matches and
// an index beyond the match list are both ErrNoMatch, not a fault.
func Select(snap *hierarchy.Snapshot, p locator.Predicate) (*hierarchy.Element, error) {
	matches, err := Evaluate(snap, p)
	if err != nil {
		return nil, err
	}
	if p.Index >= len(matches) {
		return nil, core.ErrNoMatch.WithDetails(map[string]interface{}{
			"predicate": p.Describe(),
			"matches":   len(matches),
			"index":     p.Index,
		})
	}
	return matches[p.Index], nil
}

func matchesAttribute(el *hierarchy.Element, p locator.Predicate) bool {
	switch p.Kind {
	case locator.TextEquals:
		return el.Text == p.Value
	case locator.TextContains:
		return containsIgnoreCase(el.Text, p.Value)
	case locator.IDEquals:
		return el.ResourceID == p.Value
	case locator.DescEquals:
		return el.ContentDesc == p.Value
	case locator.ClassEquals:
		return el.Class == p.Value
	default:
		return false
	}
}

// containsIgnoreCase checks if s contains substr (case-insensitive).
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// evaluateXPath applies descendant-axis steps starting from the root.
// Each step searches the subtrees of the previous step's matches;
// duplicates from nested matches keep their earliest document position.
func evaluateXPath(root *hierarchy.Element, steps []locator.XPathStep) []*hierarchy.Element {
	current := []*hierarchy.Element{root}

	for i, step := range steps {
		seen := make(map[*hierarchy.Element]bool)
		var next []*hierarchy.Element
		for _, base := range current {
			for _, el := range descendantsOrSelf(base, i > 0) {
				if seen[el] {
					continue
				}
				if stepMatches(el, step) {
					seen[el] = true
					next = append(next, el)
				}
			}
		}
		current = next
	}
	return current
}

// descendantsOrSelf returns the subtree of base in pre-order. For chained
// steps the base itself is excluded: //a//b never re-selects the a node.
func descendantsOrSelf(base *hierarchy.Element, excludeSelf bool) []*hierarchy.Element {
	var out []*hierarchy.Element
	var walk func(e *hierarchy.Element)
	walk = func(e *hierarchy.Element) {
		out = append(out, e)
		for _, c := range e.Children {
			walk(c)
		}
	}
	if excludeSelf {
		for _, c := range base.Children {
			walk(c)
		}
	} else {
		walk(base)
	}
	return out
}

func stepMatches(el *hierarchy.Element, step locator.XPathStep) bool {
	if step.Tag != "*" && el.Class != step.Tag {
		return false
	}
	for _, attr := range step.Attrs {
		if attributeValue(el, attr.Name) != attr.Value {
			return false
		}
	}
	return true
}

func attributeValue(el *hierarchy.Element, name string) string {
	switch name {
	case "text":
		return el.Text
	case "resource-id":
		return el.ResourceID
	case "content-desc":
		return el.ContentDesc
	case "class":
		return el.Class
	case "clickable":
		return strconv.FormatBool(el.Clickable)
	case "enabled":
		return strconv.FormatBool(el.Enabled)
	case "checked":
		return strconv.FormatBool(el.Checked)
	case "focused":
		return strconv.FormatBool(el.Focused)
	case "scrollable":
		return strconv.FormatBool(el.Scrollable)
	default:
		return ""
	}
}
