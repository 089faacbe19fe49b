package locator

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/droidnav/droidnav/pkg/core"
)

// Spec is a complete locator: a primary predicate plus ordered fallback
// predicates. The resolver escalates through the fallbacks in declared
// order when the primary fails to resolve within its wait window.
type Spec struct {
	Primary   Predicate
	Fallbacks []Predicate
}

// NewSpec builds a spec from a primary predicate and optional fallbacks.
func NewSpec(primary Predicate, fallbacks ...Predicate) Spec {
	return Spec{Primary: primary, Fallbacks: fallbacks}
}

// Chain returns the primary predicate followed by the fallbacks.
func (s Spec) Chain() []Predicate {
	chain := make([]Predicate, 0, 1+len(s.Fallbacks))
	chain = append(chain, s.Primary)
	chain = append(chain, s.Fallbacks...)
	return chain
}

// Describe returns a human-readable description of the whole chain.
func (s Spec) Describe() string {
	parts := make([]string, 0, 1+len(s.Fallbacks))
	for _, p := range s.Chain() {
		parts = append(parts, p.Describe())
	}
	return strings.Join(parts, " -> ")
}

// predicateRaw is used for YAML parsing of a single predicate.
type predicateRaw struct {
	Text         string `yaml:"text"`
	TextContains string `yaml:"textContains"`
	ID           string `yaml:"id"`
	Desc         string `yaml:"desc"`
	Class        string `yaml:"class"`
	XPath        string `yaml:"xpath"`
	Index        int    `yaml:"index"`
}

func (r predicateRaw) toPredicate() (Predicate, error) {
	var (
		kind  Kind
		value string
		set   int
	)
	pick := func(k Kind, v string) {
		if v != "" {
			kind, value = k, v
			set++
		}
	}
	pick(TextEquals, r.Text)
	pick(TextContains, r.TextContains)
	pick(IDEquals, r.ID)
	pick(DescEquals, r.Desc)
	pick(ClassEquals, r.Class)
	pick(XPathExpr, r.XPath)

	if set == 0 {
		return Predicate{}, core.ErrInvalidQuery.WithMessage(
			"predicate must set one of: text, textContains, id, desc, class, xpath")
	}
	if set > 1 {
		return Predicate{}, core.ErrInvalidQuery.WithMessage(
			"predicate must set exactly one selector key")
	}

	p, err := New(kind, value)
	if err != nil {
		return Predicate{}, err
	}
	if r.Index != 0 {
		if r.Index < 0 {
			return Predicate{}, core.ErrInvalidQuery.WithMessage("index must not be negative")
		}
		p = p.At(r.Index)
	}
	return p, nil
}

// UnmarshalYAML allows a Predicate to be written as a plain string
// (exact text match) or as a map with one selector key.
func (p *Predicate) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*p = Text(node.Value)
		return nil
	}

	var raw predicateRaw
	if err := node.Decode(&raw); err != nil {
		return core.ErrInvalidQuery.WithCause(err)
	}
	parsed, err := raw.toPredicate()
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// specRaw captures the inline primary keys plus the fallback list.
type specRaw struct {
	Text         string      `yaml:"text"`
	TextContains string      `yaml:"textContains"`
	ID           string      `yaml:"id"`
	Desc         string      `yaml:"desc"`
	Class        string      `yaml:"class"`
	XPath        string      `yaml:"xpath"`
	Index        int         `yaml:"index"`
	Fallbacks    []Predicate `yaml:"fallbacks"`
}

// UnmarshalYAML allows a Spec to be written as a plain string or as a map
// whose inline keys form the primary predicate:
//
//	text: Login
//	index: 1
//	fallbacks:
//	  - id: login_button
//	  - xpath: //android.widget.Button[1]
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = Spec{Primary: Text(node.Value)}
		return nil
	}

	var raw specRaw
	if err := node.Decode(&raw); err != nil {
		return core.ErrInvalidQuery.WithCause(err)
	}

	primary, err := predicateRaw{
		Text:         raw.Text,
		TextContains: raw.TextContains,
		ID:           raw.ID,
		Desc:         raw.Desc,
		Class:        raw.Class,
		XPath:        raw.XPath,
		Index:        raw.Index,
	}.toPredicate()
	if err != nil {
		return err
	}

	*s = Spec{Primary: primary, Fallbacks: raw.Fallbacks}
	return nil
}

// LoadSpec reads a locator spec from a YAML file.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided spec file
	if err != nil {
		return Spec{}, err
	}
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Spec{}, err
	}
	return s, nil
}
