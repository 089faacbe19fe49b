package locator

import (
	"strconv"
	"strings"

	"github.com/droidnav/droidnav/pkg/core"
)

// AttrTest is one [@attr='value'] comparison inside an XPath step.
// Boolean attributes compare against "true"/"false".
type AttrTest struct {
	Name  string
	Value string
}

// XPathStep is one //tag[...] step of a compiled expression.
// Tag "*" matches any class.
type XPathStep struct {
	Tag   string
	Attrs []AttrTest
}

// Attribute names the XPath subset understands, mapped onto element fields.
var xpathAttrs = map[string]bool{
	"text":         true,
	"resource-id":  true,
	"content-desc": true,
	"class":        true,
	"clickable":    true,
	"enabled":      true,
	"checked":      true,
	"focused":      true,
	"scrollable":   true,
}

// parseXPath compiles the supported XPath subset:
//
//	//tag[@attr='value']...[n]
//
// Descendant axis steps may be chained. The optional positional predicate
// [n] is 1-based per XPath convention and must be the trailing token; it is
// returned as a 0-based index. Any other syntax fails with ErrInvalidQuery.
func parseXPath(expr string) ([]XPathStep, int, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, 0, invalidXPath(expr, "expression is empty")
	}

	s := expr
	i := 0
	index := 0
	var steps []XPathStep

	for i < len(s) {
		if !strings.HasPrefix(s[i:], "//") {
			if s[i] == '/' {
				return nil, 0, invalidXPath(expr, "only the descendant axis // is supported")
			}
			return nil, 0, invalidXPath(expr, "steps must start with //")
		}
		i += 2

		var tag string
		if i < len(s) && s[i] == '*' {
			tag = "*"
			i++
		} else {
			start := i
			for i < len(s) && isTagChar(s[i]) {
				i++
			}
			tag = s[start:i]
		}
		if tag == "" {
			return nil, 0, invalidXPath(expr, "step has no tag name")
		}

		step := XPathStep{Tag: tag}
		trailing := false

		for i < len(s) && s[i] == '[' {
			i++
			if i >= len(s) {
				return nil, 0, invalidXPath(expr, "unbalanced [")
			}

			switch {
			case s[i] == '@':
				i++
				nameStart := i
				for i < len(s) && s[i] != '=' && s[i] != ']' {
					i++
				}
				if i >= len(s) || s[i] != '=' {
					return nil, 0, invalidXPath(expr, "attribute predicate needs =")
				}
				name := s[nameStart:i]
				if !xpathAttrs[name] {
					return nil, 0, invalidXPath(expr, "unknown attribute @"+name)
				}
				i++
				if i >= len(s) || (s[i] != '\'' && s[i] != '"') {
					return nil, 0, invalidXPath(expr, "attribute value must be quoted")
				}
				quote := s[i]
				i++
				valStart := i
				for i < len(s) && s[i] != quote {
					i++
				}
				if i >= len(s) {
					return nil, 0, invalidXPath(expr, "unterminated attribute value")
				}
				value := s[valStart:i]
				i++
				if i >= len(s) || s[i] != ']' {
					return nil, 0, invalidXPath(expr, "unbalanced [")
				}
				i++
				step.Attrs = append(step.Attrs, AttrTest{Name: name, Value: value})

			case s[i] >= '0' && s[i] <= '9':
				numStart := i
				for i < len(s) && s[i] >= '0' && s[i] <= '9' {
					i++
				}
				if i >= len(s) || s[i] != ']' {
					return nil, 0, invalidXPath(expr, "unbalanced [")
				}
				n, err := strconv.Atoi(s[numStart:i])
				if err != nil || n < 1 {
					return nil, 0, invalidXPath(expr, "position must be a 1-based integer")
				}
				i++
				if i != len(s) {
					return nil, 0, invalidXPath(expr, "positional predicate must be the trailing token")
				}
				index = n - 1
				trailing = true

			default:
				return nil, 0, invalidXPath(expr, "unsupported predicate, expected [@attr='value'] or [n]")
			}

			if trailing {
				break
			}
		}

		steps = append(steps, step)
		if trailing {
			break
		}
	}

	if len(steps) == 0 {
		return nil, 0, invalidXPath(expr, "expression has no step")
	}
	return steps, index, nil
}

func isTagChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.' || c == '_' || c == '-' || c == '$':
		return true
	}
	return false
}

func invalidXPath(expr, reason string) *core.AutomationError {
	return core.ErrInvalidQuery.
		WithMessagef("invalid xpath: %s", reason).
		WithDetails(map[string]interface{}{"xpath": expr})
}
