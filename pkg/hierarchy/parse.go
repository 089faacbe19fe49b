package hierarchy

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/droidnav/droidnav/pkg/core"
)

// Parse builds a Snapshot from a raw uiautomator dump.
//
// Both dump formats are supported: <node> elements carrying a class
// attribute, and elements whose tag is the class name. A malformed bounds
// string degrades to empty bounds instead of failing the parse, so one bad
// node cannot block locating its siblings. Markup that is not well-formed,
// or that contains no element at all, fails with ErrMalformedHierarchy.
func Parse(raw string) (*Snapshot, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))

	var parseElement func(parent *Element) (*Element, error)
	parseElement = func(parent *Element) (*Element, error) {
		for {
			token, err := decoder.Token()
			if err != nil {
				return nil, err
			}

			switch t := token.(type) {
			case xml.StartElement:
				// The hierarchy wrapper is transparent; its children
				// become root candidates.
				if t.Name.Local == "hierarchy" {
					continue
				}

				elem := &Element{
					Class:   t.Name.Local,
					Enabled: true,
					parent:  parent,
				}
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "text":
						elem.Text = attr.Value
					case "resource-id":
						elem.ResourceID = attr.Value
					case "content-desc":
						elem.ContentDesc = attr.Value
					case "class":
						elem.Class = attr.Value
					case "bounds":
						elem.Bounds = parseBounds(attr.Value)
					case "clickable":
						elem.Clickable = attr.Value == "true"
					case "enabled":
						elem.Enabled = attr.Value == "true"
					case "checked":
						elem.Checked = attr.Value == "true"
					case "focused":
						elem.Focused = attr.Value == "true"
					case "scrollable":
						elem.Scrollable = attr.Value == "true"
					}
				}

				for {
					child, err := parseElement(elem)
					if err != nil {
						return nil, err
					}
					if child == nil {
						break
					}
					elem.Children = append(elem.Children, child)
				}
				return elem, nil

			case xml.EndElement:
				return nil, nil // end of current element
			}
		}
	}

	var roots []*Element
	for {
		elem, err := parseElement(nil)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, core.ErrMalformedHierarchy.WithCause(err)
		}
		if elem == nil {
			break
		}
		roots = append(roots, elem)
	}

	if len(roots) == 0 {
		return nil, core.ErrMalformedHierarchy.WithMessage("UI hierarchy has no root element")
	}

	root := roots[0]
	if len(roots) > 1 {
		// Some dumps carry several top-level windows. Wrap them so a
		// snapshot always has exactly one root.
		root = &Element{Class: "hierarchy", Enabled: true, Children: roots}
		for _, r := range roots {
			r.parent = root
		}
	}

	return &Snapshot{Root: root, CapturedAt: time.Now()}, nil
}

// parseBounds parses an Android bounds string "[x1,y1][x2,y2]".
// Anything that does not decode to a rectangle with x1<=x2 and y1<=y2
// yields empty bounds.
func parseBounds(s string) core.Bounds {
	trimmed := strings.ReplaceAll(s, "][", ",")
	trimmed = strings.Trim(trimmed, "[]")
	parts := strings.Split(trimmed, ",")
	if len(parts) != 4 {
		return core.Bounds{}
	}

	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return core.Bounds{}
		}
		vals[i] = v
	}

	width := vals[2] - vals[0]
	height := vals[3] - vals[1]
	if width < 0 || height < 0 {
		return core.Bounds{}
	}

	return core.Bounds{X: vals[0], Y: vals[1], Width: width, Height: height}
}
