// Package locator parses element queries into evaluable predicates.
//
// A Spec is a primary Predicate plus an ordered list of fallback
// Predicates; each predicate independently carries the index of the match
// it selects. Specs and predicates are immutable value objects built once
// per invocation.
package locator

import (
	"fmt"

	"github.com/droidnav/droidnav/pkg/core"
)

// Kind identifies a matching rule.
type Kind int

const (
	TextEquals   Kind = iota // exact text match
	TextContains             // case-insensitive substring of text
	IDEquals                 // exact resource-id match
	DescEquals               // exact content-desc match
	ClassEquals              // exact class name match
	XPathExpr                // restricted XPath expression
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case TextEquals:
		return "text"
	case TextContains:
		return "textContains"
	case IDEquals:
		return "id"
	case DescEquals:
		return "desc"
	case ClassEquals:
		return "class"
	case XPathExpr:
		return "xpath"
	default:
		return "unknown"
	}
}

// Predicate is a single matching rule evaluable against a snapshot.
type Predicate struct {
	Kind  Kind
	Value string
	Index int // 0-based position in the ordered match list

	steps []XPathStep // compiled form, set only for XPathExpr
}

// Text matches elements whose text equals v exactly.
func Text(v string) Predicate {
	return Predicate{Kind: TextEquals, Value: v}
}

// TextSubstring matches elements whose text contains v, ignoring case.
func TextSubstring(v string) Predicate {
	return Predicate{Kind: TextContains, Value: v}
}

// ID matches elements whose resource-id equals v exactly.
func ID(v string) Predicate {
	return Predicate{Kind: IDEquals, Value: v}
}

// Desc matches elements whose content-desc equals v exactly.
func Desc(v string) Predicate {
	return Predicate{Kind: DescEquals, Value: v}
}

// Class matches elements whose class name equals v exactly.
func Class(v string) Predicate {
	return Predicate{Kind: ClassEquals, Value: v}
}

// XPath compiles a restricted XPath expression into a predicate.
// A trailing positional predicate [n] (1-based) becomes the predicate's
// 0-based index. Malformed expressions fail with ErrInvalidQuery.
func XPath(expr string) (Predicate, error) {
	steps, index, err := parseXPath(expr)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Kind: XPathExpr, Value: expr, Index: index, steps: steps}, nil
}

// At returns a copy of the predicate selecting the match at index.
func (p Predicate) At(index int) Predicate {
	p.Index = index
	return p
}

// XPathSteps returns the compiled steps of an XPathExpr predicate,
// nil for every other kind.
func (p Predicate) XPathSteps() []XPathStep {
	return p.steps
}

// Describe returns a quoted description like text="Login" or xpath="//X"[2].
func (p Predicate) Describe() string {
	desc := fmt.Sprintf("%s=%q", p.Kind, p.Value)
	if p.Index > 0 {
		desc += fmt.Sprintf("[%d]", p.Index)
	}
	return desc
}

// New builds a predicate of the given kind. XPath values are compiled
// eagerly so syntax errors surface immediately, never as an empty match.
func New(kind Kind, value string) (Predicate, error) {
	switch kind {
	case TextEquals, TextContains, IDEquals, DescEquals, ClassEquals:
		if value == "" {
			return Predicate{}, core.ErrInvalidQuery.WithMessagef("%s predicate needs a value", kind)
		}
		return Predicate{Kind: kind, Value: value}, nil
	case XPathExpr:
		return XPath(value)
	default:
		return Predicate{}, core.ErrInvalidQuery.WithMessagef("unknown predicate kind %d", kind)
	}
}
