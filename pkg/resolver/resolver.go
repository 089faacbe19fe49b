// Package resolver turns a locator spec into exactly one resolved element,
// or a typed failure, under wait, retry and fallback constraints.
//
// Resolution is a state machine: Searching acquires a fresh snapshot per
// poll and evaluates the current predicate; when a wait window is exhausted
// the next fallback predicate gets a fresh window; when the chain is
// exhausted and retries remain, the whole chain restarts from the primary.
// That ordering decides which element a flaky UI resolves to and is
// preserved exactly.
package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/droidnav/droidnav/pkg/core"
	"github.com/droidnav/droidnav/pkg/hierarchy"
	"github.com/droidnav/droidnav/pkg/locator"
	"github.com/droidnav/droidnav/pkg/logger"
	"github.com/droidnav/droidnav/pkg/matcher"
	"github.com/droidnav/droidnav/pkg/transport"
)

// DefaultPollInterval is used when a policy does not set one.
const DefaultPollInterval = 500 * time.Millisecond

// DefaultLongPressMs is the long-press hold time when none is requested.
const DefaultLongPressMs = 1000

// Policy controls the wait, poll and retry behavior of one resolution.
type Policy struct {
	WaitTimeout  time.Duration // 0 = exactly one attempt per predicate, no polling
	PollInterval time.Duration // fixed delay between polls within a window
	RetryCount   int           // extra passes over the whole chain after it is exhausted
}

func (p Policy) normalized() Policy {
	if p.PollInterval <= 0 {
		p.PollInterval = DefaultPollInterval
	}
	if p.RetryCount < 0 {
		p.RetryCount = 0
	}
	return p
}

// Action is what to do with the resolved element.
type Action int

// Actions.
const (
	ActionNone      Action = iota // read attributes only
	ActionTap                     // tap the element's center
	ActionLongPress               // hold at the element's center
	ActionEnterText               // tap to focus, then type text
)

// Request is one resolution invocation. Value object, no shared state.
type Request struct {
	Spec    locator.Spec
	Policy  Policy
	Action  Action
	Text    string // text for ActionEnterText
	PressMs int    // hold duration for ActionLongPress
}

// Resolution reports a successful resolution: the element's attributes,
// its tap point, and which predicate on which attempt resolved it.
type Resolution struct {
	Element   core.ElementInfo `json:"element"`
	TapX      int              `json:"tapX"`
	TapY      int              `json:"tapY"`
	Predicate string           `json:"predicate"`
	Stage     int              `json:"stage"`   // 0 = primary, n = nth fallback
	Attempt   int              `json:"attempt"` // 1-based pass over the chain
	Matches   int              `json:"matches"` // match count for the winning predicate
	Snapshots int              `json:"snapshots"`
	Actions   []string         `json:"actions,omitempty"`
}

// state of the resolution machine.
type state int

const (
	stateSearching state = iota
	stateFound
	stateRetryPending
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateSearching:
		return "searching"
	case stateFound:
		return "found"
	case stateRetryPending:
		return "retryPending"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Engine resolves locator specs against a device transport.
type Engine struct {
	transport transport.Transport
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
}

// New creates a resolution engine on top of a transport.
func New(t transport.Transport) *Engine {
	return &Engine{
		transport: t,
		sleep:     sleepContext,
		now:       time.Now,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Resolve runs the wait/fallback/retry machine for one request.
// InvalidQuery and transport failures bypass the machine entirely; only
// NoMatch drives polling, fallback escalation and retry. The context
// deadline short-circuits polling even mid-window.
func (e *Engine) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	pol := req.Policy.normalized()
	chain := req.Spec.Chain()

	var (
		st        = stateSearching
		stage     = 0
		attempt   = 1
		retries   = pol.RetryCount
		snapshots int
		attempted []string

		found        *hierarchy.Element
		foundMatches int
	)

	for {
		switch st {
		case stateSearching:
			pred := chain[stage]
			logger.Debug("resolving %s (stage %d, attempt %d)", pred.Describe(), stage, attempt)

			el, matches, snaps, err := e.searchWindow(ctx, pred, pol)
			snapshots += snaps
			if err == nil {
				found, foundMatches = el, matches
				st = stateFound
				continue
			}
			if !errors.Is(err, core.ErrNoMatch) {
				return nil, err
			}

			attempted = append(attempted, pred.Describe())
			switch {
			case stage+1 < len(chain):
				stage++ // next fallback, fresh wait window
			case retries > 0:
				st = stateRetryPending
			default:
				st = stateFailed
			}

		case stateRetryPending:
			retries--
			attempt++
			stage = 0
			st = stateSearching

		case stateFound:
			pred := chain[stage]
			res := &Resolution{
				Element:   found.Info(),
				Predicate: pred.Describe(),
				Stage:     stage,
				Attempt:   attempt,
				Matches:   foundMatches,
				Snapshots: snapshots,
			}
			res.TapX, res.TapY = found.Center()
			if err := e.dispatch(ctx, req, res); err != nil {
				return nil, err
			}
			logger.Info("resolved %s at (%d,%d) on attempt %d", res.Predicate, res.TapX, res.TapY, attempt)
			return res, nil

		case stateFailed:
			return nil, core.ErrElementNotFound.
				WithMessagef("no predicate resolved after %d attempt(s) over %d snapshot(s)", attempt, snapshots).
				WithDetails(map[string]interface{}{
					"attempted": attempted,
					"attempts":  attempt,
					"snapshots": snapshots,
				})
		}
	}
}

// searchWindow runs one wait window for a single predicate: dump, parse,
// evaluate, and poll until the window or the context deadline is spent.
// A malformed dump counts as a failed poll, not a failure.
func (e *Engine) searchWindow(ctx context.Context, pred locator.Predicate, pol Policy) (*hierarchy.Element, int, int, error) {
	start := e.now()
	snapshots := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, snapshots, err
		}

		raw, err := e.transport.DumpHierarchy(ctx)
		snapshots++
		if err != nil {
			return nil, 0, snapshots, err
		}

		snap, err := hierarchy.Parse(raw)
		if err != nil {
			logger.Warn("snapshot parse failed, polling on: %v", err)
		} else {
			matches, err := matcher.Evaluate(snap, pred)
			if err != nil {
				return nil, 0, snapshots, err
			}
			if pred.Index < len(matches) {
				return matches[pred.Index], len(matches), snapshots, nil
			}
		}

		if e.now().Sub(start) >= pol.WaitTimeout {
			return nil, 0, snapshots, core.ErrNoMatch.WithDetails(map[string]interface{}{
				"predicate": pred.Describe(),
			})
		}
		if err := e.sleep(ctx, pol.PollInterval); err != nil {
			return nil, 0, snapshots, err
		}
	}
}

// dispatch performs the requested action against the resolved tap point.
func (e *Engine) dispatch(ctx context.Context, req Request, res *Resolution) error {
	switch req.Action {
	case ActionNone:
		return nil

	case ActionTap:
		if err := e.transport.Tap(ctx, res.TapX, res.TapY); err != nil {
			return err
		}
		res.Actions = append(res.Actions, "tap")

	case ActionLongPress:
		ms := req.PressMs
		if ms <= 0 {
			ms = DefaultLongPressMs
		}
		if err := e.transport.LongPress(ctx, res.TapX, res.TapY, ms); err != nil {
			return err
		}
		res.Actions = append(res.Actions, "longPress")

	case ActionEnterText:
		// Tap first so the element has input focus.
		if err := e.transport.Tap(ctx, res.TapX, res.TapY); err != nil {
			return err
		}
		res.Actions = append(res.Actions, "tap")
		if err := e.transport.EnterText(ctx, req.Text); err != nil {
			return err
		}
		res.Actions = append(res.Actions, "enterText")

	default:
		return core.ErrInvalidConfig.WithMessagef("unknown action %d", req.Action)
	}
	return nil
}

// List evaluates the predicate against one fresh snapshot and returns all
// matches in document order, without acting on any of them.
func (e *Engine) List(ctx context.Context, pred locator.Predicate) ([]core.ElementInfo, error) {
	raw, err := e.transport.DumpHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := hierarchy.Parse(raw)
	if err != nil {
		return nil, err
	}
	matches, err := matcher.Evaluate(snap, pred)
	if err != nil {
		return nil, err
	}

	infos := make([]core.ElementInfo, len(matches))
	for i, el := range matches {
		infos[i] = el.Info()
	}
	return infos, nil
}
