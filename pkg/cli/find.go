package cli

import (
	"context"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/droidnav/droidnav/pkg/config"
	"github.com/droidnav/droidnav/pkg/core"
	"github.com/droidnav/droidnav/pkg/locator"
	"github.com/droidnav/droidnav/pkg/resolver"
)

var findCommand = &cli.Command{
	Name:  "find",
	Usage: "Resolve an element locator and optionally act on it",
	Description: `Resolves a locator against the live accessibility tree. Exactly one
primary selector flag (or --spec) is required. Fallback predicates are
tried in order after the primary's wait window is exhausted.

Examples:
  droidnav find --text Login --tap
  droidnav find --id submit_button --index 1 --enter-text hello
  droidnav find --xpath "//android.widget.Button[@text='Submit'][1]" --tap
  droidnav find --text Login --fallback "id=login_button" --wait 10s --retries 2`,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "text", Usage: "Match exact text"},
		&cli.StringFlag{Name: "text-contains", Usage: "Match text substring (case-insensitive)"},
		&cli.StringFlag{Name: "id", Usage: "Match exact resource-id"},
		&cli.StringFlag{Name: "desc", Usage: "Match exact content-desc"},
		&cli.StringFlag{Name: "class", Usage: "Match exact class name"},
		&cli.StringFlag{Name: "xpath", Usage: "Match a restricted XPath expression"},
		&cli.StringFlag{Name: "spec", Usage: "Load the full locator spec from a YAML file"},
		&cli.IntFlag{Name: "index", Usage: "Which match to use (0-based)"},
		&cli.StringSliceFlag{Name: "fallback", Usage: "Fallback predicate as kind=value (repeatable)"},
		&cli.BoolFlag{Name: "tap", Usage: "Tap the resolved element"},
		&cli.BoolFlag{Name: "long-press", Usage: "Long-press the resolved element"},
		&cli.IntFlag{Name: "press-ms", Usage: "Long-press duration", Value: resolver.DefaultLongPressMs},
		&cli.StringFlag{Name: "enter-text", Usage: "Tap the element, then type this text"},
		&cli.BoolFlag{Name: "list", Usage: "List all matches instead of acting on one"},
		&cli.DurationFlag{Name: "wait", Usage: "Wait window per predicate (0 = single attempt)"},
		&cli.DurationFlag{Name: "poll-interval", Usage: "Delay between polls"},
		&cli.IntFlag{Name: "retries", Usage: "Extra passes over the whole predicate chain"},
		&cli.DurationFlag{Name: "timeout", Usage: "Overall deadline for the invocation"},
	},
	Action: runFind,
}

func runFind(c *cli.Context) error {
	adb, cfg, err := newTransport(c)
	if err != nil {
		return emit(c, core.Fail(err))
	}

	spec, err := buildSpec(c)
	if err != nil {
		return emit(c, core.Fail(err))
	}

	engine := resolver.New(adb)
	ctx := c.Context
	if d := c.Duration("timeout"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	if c.Bool("list") {
		matches, err := engine.List(ctx, spec.Primary)
		if err != nil {
			return emit(c, core.Fail(err))
		}
		return emit(c, core.OK(map[string]interface{}{
			"matchCount": len(matches),
			"matches":    matches,
		}))
	}

	req := resolver.Request{
		Spec:    spec,
		Policy:  buildPolicy(c, cfg),
		PressMs: c.Int("press-ms"),
	}
	switch {
	case c.String("enter-text") != "":
		req.Action = resolver.ActionEnterText
		req.Text = c.String("enter-text")
	case c.Bool("long-press"):
		req.Action = resolver.ActionLongPress
	case c.Bool("tap"):
		req.Action = resolver.ActionTap
	}

	res, err := engine.Resolve(ctx, req)
	if err != nil {
		return emit(c, core.Fail(err))
	}
	return emit(c, core.OK(res))
}

// buildSpec assembles the locator spec from --spec or the selector flags.
func buildSpec(c *cli.Context) (locator.Spec, error) {
	if path := c.String("spec"); path != "" {
		return locator.LoadSpec(path)
	}

	primary, err := primaryFromFlags(c)
	if err != nil {
		return locator.Spec{}, err
	}
	if c.IsSet("index") {
		if c.Int("index") < 0 {
			return locator.Spec{}, core.ErrInvalidQuery.WithMessage("index must not be negative")
		}
		primary = primary.At(c.Int("index"))
	}

	var fallbacks []locator.Predicate
	for _, raw := range c.StringSlice("fallback") {
		p, err := parseFallback(raw)
		if err != nil {
			return locator.Spec{}, err
		}
		fallbacks = append(fallbacks, p)
	}

	return locator.NewSpec(primary, fallbacks...), nil
}

func primaryFromFlags(c *cli.Context) (locator.Predicate, error) {
	type flagKind struct {
		flag string
		kind locator.Kind
	}
	selectors := []flagKind{
		{"text", locator.TextEquals},
		{"text-contains", locator.TextContains},
		{"id", locator.IDEquals},
		{"desc", locator.DescEquals},
		{"class", locator.ClassEquals},
		{"xpath", locator.XPathExpr},
	}

	var (
		picked flagKind
		count  int
	)
	for _, s := range selectors {
		if c.String(s.flag) != "" {
			picked = s
			count++
		}
	}
	if count == 0 {
		return locator.Predicate{}, core.ErrInvalidQuery.WithMessage(
			"one selector is required: --text, --text-contains, --id, --desc, --class, --xpath or --spec")
	}
	if count > 1 {
		return locator.Predicate{}, core.ErrInvalidQuery.WithMessage("only one selector flag may be set")
	}
	return locator.New(picked.kind, c.String(picked.flag))
}

// parseFallback parses a kind=value fallback flag. Kinds: text,
// textContains, id, desc, class, xpath. Per-fallback indexes are only
// available through --spec files.
func parseFallback(raw string) (locator.Predicate, error) {
	kindName, value, ok := strings.Cut(raw, "=")
	if !ok || value == "" {
		return locator.Predicate{}, core.ErrInvalidQuery.WithMessagef("fallback %q must be kind=value", raw)
	}

	kinds := map[string]locator.Kind{
		"text":         locator.TextEquals,
		"textContains": locator.TextContains,
		"id":           locator.IDEquals,
		"desc":         locator.DescEquals,
		"class":        locator.ClassEquals,
		"xpath":        locator.XPathExpr,
	}
	kind, ok := kinds[kindName]
	if !ok {
		return locator.Predicate{}, core.ErrInvalidQuery.WithMessagef("unknown fallback kind %q", kindName)
	}
	return locator.New(kind, value)
}

// buildPolicy merges policy flags with config-file defaults.
func buildPolicy(c *cli.Context, cfg *config.Config) resolver.Policy {
	pol := resolver.Policy{
		WaitTimeout:  time.Duration(cfg.WaitTimeoutMs) * time.Millisecond,
		PollInterval: time.Duration(cfg.PollIntervalMs) * time.Millisecond,
		RetryCount:   cfg.RetryCount,
	}
	if c.IsSet("wait") {
		pol.WaitTimeout = c.Duration("wait")
	}
	if c.IsSet("poll-interval") {
		pol.PollInterval = c.Duration("poll-interval")
	}
	if c.IsSet("retries") {
		pol.RetryCount = c.Int("retries")
	}
	return pol
}
