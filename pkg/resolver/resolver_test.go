package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/droidnav/droidnav/pkg/core"
	"github.com/droidnav/droidnav/pkg/locator"
)

// fakeTransport serves scripted hierarchy dumps and records every touch
// command. When the script runs out the last dump repeats.
type fakeTransport struct {
	dumps   []dumpResult
	served  int
	actions []string
}

type dumpResult struct {
	raw string
	err error
}

func (f *fakeTransport) DumpHierarchy(ctx context.Context) (string, error) {
	i := f.served
	if i >= len(f.dumps) {
		i = len(f.dumps) - 1
	}
	f.served++
	return f.dumps[i].raw, f.dumps[i].err
}

func (f *fakeTransport) Tap(ctx context.Context, x, y int) error {
	f.actions = append(f.actions, fmt.Sprintf("tap %d,%d", x, y))
	return nil
}

func (f *fakeTransport) Swipe(ctx context.Context, x1, y1, x2, y2, durationMs int) error {
	f.actions = append(f.actions, fmt.Sprintf("swipe %d,%d %d,%d %dms", x1, y1, x2, y2, durationMs))
	return nil
}

func (f *fakeTransport) LongPress(ctx context.Context, x, y, durationMs int) error {
	f.actions = append(f.actions, fmt.Sprintf("longPress %d,%d %dms", x, y, durationMs))
	return nil
}

func (f *fakeTransport) DoubleTap(ctx context.Context, x, y int) error {
	f.actions = append(f.actions, fmt.Sprintf("doubleTap %d,%d", x, y))
	return nil
}

func (f *fakeTransport) EnterText(ctx context.Context, text string) error {
	f.actions = append(f.actions, "enterText "+text)
	return nil
}

func (f *fakeTransport) PressKey(ctx context.Context, key string) error {
	f.actions = append(f.actions, "key "+key)
	return nil
}

func (f *fakeTransport) ScreenSize(ctx context.Context) (int, int, error) {
	return 1080, 1920, nil
}

// fakeClock makes sleep advance time instead of waiting.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.t = c.t.Add(d)
	return nil
}

func newEngine(ft *fakeTransport) *Engine {
	clock := &fakeClock{t: time.Unix(0, 0)}
	return NewTestEngine(ft, clock.sleep, clock.now)
}

// dumpWith builds a dump holding one button per given text.
func dumpWith(texts ...string) string {
	var b strings.Builder
	b.WriteString(`<hierarchy><node class="android.widget.FrameLayout" bounds="[0,0][1080,1920]">`)
	for i, text := range texts {
		fmt.Fprintf(&b, `<node class="android.widget.Button" text=%q clickable="true" enabled="true" bounds="[100,%d][300,%d]"/>`,
			text, 200+i*300, 400+i*300)
	}
	b.WriteString(`</node></hierarchy>`)
	return b.String()
}

func TestResolveFirstDump(t *testing.T) {
	ft := &fakeTransport{dumps: []dumpResult{{raw: dumpWith("Login")}}}
	e := newEngine(ft)

	res, err := e.Resolve(context.Background(), Request{
		Spec: locator.NewSpec(locator.Text("Login")),
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if res.TapX != 200 || res.TapY != 300 {
		t.Errorf("tap point = (%d,%d), want bounds center (200,300)", res.TapX, res.TapY)
	}
	if res.Stage != 0 || res.Attempt != 1 || res.Snapshots != 1 {
		t.Errorf("stage=%d attempt=%d snapshots=%d, want 0/1/1", res.Stage, res.Attempt, res.Snapshots)
	}
	if len(ft.actions) != 0 {
		t.Errorf("no action requested but transport saw %v", ft.actions)
	}
}

func TestResolveFallbackOrder(t *testing.T) {
	// The primary gets its full window first; only then does the first
	// fallback see a fresh window. The winning stage is reported.
	ft := &fakeTransport{dumps: []dumpResult{{raw: dumpWith("Cancel")}}}
	e := newEngine(ft)

	res, err := e.Resolve(context.Background(), Request{
		Spec: locator.NewSpec(locator.Text("Login"), locator.Text("Cancel")),
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if res.Stage != 1 {
		t.Errorf("stage = %d, want 1 (first fallback)", res.Stage)
	}
	if res.Snapshots != 2 {
		t.Errorf("snapshots = %d, want one per window", res.Snapshots)
	}
	if res.Predicate != `text="Cancel"` {
		t.Errorf("predicate = %q", res.Predicate)
	}
}

func TestResolveRetryRestartsFromPrimary(t *testing.T) {
	// Element appears on the third pass. Each retry restarts the whole
	// chain from the primary, not from the failing fallback.
	ft := &fakeTransport{dumps: []dumpResult{
		{raw: dumpWith()},
		{raw: dumpWith()},
		{raw: dumpWith("Login")},
	}}
	e := newEngine(ft)

	res, err := e.Resolve(context.Background(), Request{
		Spec:   locator.NewSpec(locator.Text("Login")),
		Policy: Policy{RetryCount: 2},
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if res.Attempt != 3 {
		t.Errorf("attempt = %d, want 3", res.Attempt)
	}
	if res.Stage != 0 {
		t.Errorf("stage = %d, want 0 (retry restarts at the primary)", res.Stage)
	}
	if res.Snapshots != 3 {
		t.Errorf("snapshots = %d, want 3", res.Snapshots)
	}
}

func TestResolveExhaustedChain(t *testing.T) {
	ft := &fakeTransport{dumps: []dumpResult{{raw: dumpWith("Other")}}}
	e := newEngine(ft)

	_, err := e.Resolve(context.Background(), Request{
		Spec:   locator.NewSpec(locator.Text("Login"), locator.ID("login")),
		Policy: Policy{RetryCount: 1},
	})
	if !errors.Is(err, core.ErrElementNotFound) {
		t.Fatalf("error = %v, want ErrElementNotFound", err)
	}

	// 2 predicates x 2 passes, one snapshot per window.
	if ft.served != 4 {
		t.Errorf("snapshots served = %d, want 4", ft.served)
	}

	var ae *core.AutomationError
	if !errors.As(err, &ae) {
		t.Fatal("terminal error should carry details")
	}
	if ae.Details["attempts"] != 2 || ae.Details["snapshots"] != 4 {
		t.Errorf("details = %v", ae.Details)
	}
	attempted, ok := ae.Details["attempted"].([]string)
	if !ok || len(attempted) != 4 {
		t.Errorf("attempted = %v", ae.Details["attempted"])
	}
}

func TestResolvePollsWithinWindow(t *testing.T) {
	// With a 1s window and 250ms polls the element appearing on the
	// third snapshot still resolves on the first attempt.
	ft := &fakeTransport{dumps: []dumpResult{
		{raw: dumpWith()},
		{raw: dumpWith()},
		{raw: dumpWith("Login")},
	}}
	e := newEngine(ft)

	res, err := e.Resolve(context.Background(), Request{
		Spec:   locator.NewSpec(locator.Text("Login")),
		Policy: Policy{WaitTimeout: time.Second, PollInterval: 250 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if res.Attempt != 1 || res.Stage != 0 {
		t.Errorf("attempt=%d stage=%d, want 1/0", res.Attempt, res.Stage)
	}
	if res.Snapshots != 3 {
		t.Errorf("snapshots = %d, want 3", res.Snapshots)
	}
}

func TestResolveMalformedDumpPollsOn(t *testing.T) {
	// A dump that fails to parse counts as a failed poll. The window
	// keeps going and the next snapshot can still resolve.
	ft := &fakeTransport{dumps: []dumpResult{
		{raw: "<hierarchy><node class=broken"},
		{raw: dumpWith("Login")},
	}}
	e := newEngine(ft)

	res, err := e.Resolve(context.Background(), Request{
		Spec:   locator.NewSpec(locator.Text("Login")),
		Policy: Policy{WaitTimeout: time.Second, PollInterval: 100 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Snapshots != 2 {
		t.Errorf("snapshots = %d, want 2", res.Snapshots)
	}
}

func TestResolveTransportErrorIsFatal(t *testing.T) {
	cause := core.ErrTransport.WithMessage("device offline")
	ft := &fakeTransport{dumps: []dumpResult{{err: cause}}}
	e := newEngine(ft)

	_, err := e.Resolve(context.Background(), Request{
		Spec:   locator.NewSpec(locator.Text("Login"), locator.ID("login")),
		Policy: Policy{WaitTimeout: time.Minute, RetryCount: 5},
	})
	if !errors.Is(err, core.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
	if ft.served != 1 {
		t.Errorf("transport failure should not be retried, served %d dumps", ft.served)
	}
}

func TestResolveInvalidQueryIsFatal(t *testing.T) {
	ft := &fakeTransport{dumps: []dumpResult{{raw: dumpWith("Login")}}}
	e := newEngine(ft)

	// An uncompiled xpath predicate is a query fault, not a miss.
	bad := locator.Predicate{Kind: locator.XPathExpr, Value: "//x"}
	_, err := e.Resolve(context.Background(), Request{
		Spec:   locator.NewSpec(bad, locator.Text("Login")),
		Policy: Policy{RetryCount: 5},
	})
	if !errors.Is(err, core.ErrInvalidQuery) {
		t.Fatalf("error = %v, want ErrInvalidQuery", err)
	}
	if ft.served != 1 {
		t.Errorf("query fault should bypass fallback and retry, served %d dumps", ft.served)
	}
}

func TestResolveContextCanceled(t *testing.T) {
	ft := &fakeTransport{dumps: []dumpResult{{raw: dumpWith()}}}
	e := newEngine(ft)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Resolve(ctx, Request{Spec: locator.NewSpec(locator.Text("Login"))})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if ft.served != 0 {
		t.Errorf("canceled context should short-circuit before dumping, served %d", ft.served)
	}
}

func TestResolveTapAction(t *testing.T) {
	ft := &fakeTransport{dumps: []dumpResult{{raw: dumpWith("Login")}}}
	e := newEngine(ft)

	res, err := e.Resolve(context.Background(), Request{
		Spec:   locator.NewSpec(locator.Text("Login")),
		Action: ActionTap,
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(ft.actions) != 1 || ft.actions[0] != "tap 200,300" {
		t.Errorf("actions = %v", ft.actions)
	}
	if len(res.Actions) != 1 || res.Actions[0] != "tap" {
		t.Errorf("reported actions = %v", res.Actions)
	}
}

func TestResolveLongPressDefaultDuration(t *testing.T) {
	ft := &fakeTransport{dumps: []dumpResult{{raw: dumpWith("Login")}}}
	e := newEngine(ft)

	_, err := e.Resolve(context.Background(), Request{
		Spec:   locator.NewSpec(locator.Text("Login")),
		Action: ActionLongPress,
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(ft.actions) != 1 || ft.actions[0] != "longPress 200,300 1000ms" {
		t.Errorf("actions = %v", ft.actions)
	}
}

func TestResolveEnterTextTapsFirst(t *testing.T) {
	ft := &fakeTransport{dumps: []dumpResult{{raw: dumpWith("Username")}}}
	e := newEngine(ft)

	res, err := e.Resolve(context.Background(), Request{
		Spec:   locator.NewSpec(locator.Text("Username")),
		Action: ActionEnterText,
		Text:   "alice",
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	want := []string{"tap 200,300", "enterText alice"}
	if len(ft.actions) != 2 || ft.actions[0] != want[0] || ft.actions[1] != want[1] {
		t.Errorf("actions = %v, want %v", ft.actions, want)
	}
	if len(res.Actions) != 2 || res.Actions[0] != "tap" || res.Actions[1] != "enterText" {
		t.Errorf("reported actions = %v", res.Actions)
	}
}

func TestResolveIndexWaitsForEnough(t *testing.T) {
	// index 1 needs two matches; one match is still a miss and polling
	// continues until the second shows up.
	ft := &fakeTransport{dumps: []dumpResult{
		{raw: dumpWith("Item")},
		{raw: dumpWith("Item", "Item")},
	}}
	e := newEngine(ft)

	res, err := e.Resolve(context.Background(), Request{
		Spec:   locator.NewSpec(locator.Text("Item").At(1)),
		Policy: Policy{WaitTimeout: time.Second, PollInterval: 100 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Matches != 2 {
		t.Errorf("matches = %d, want 2", res.Matches)
	}
	if res.TapY != 600 {
		t.Errorf("tapY = %d, want the second button's center", res.TapY)
	}
}

func TestList(t *testing.T) {
	ft := &fakeTransport{dumps: []dumpResult{{raw: dumpWith("A", "B")}}}
	e := newEngine(ft)

	infos, err := e.List(context.Background(), locator.Class("android.widget.Button"))
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("infos = %d, want 2", len(infos))
	}
	if infos[0].Text != "A" || infos[1].Text != "B" {
		t.Errorf("list order = %q, %q", infos[0].Text, infos[1].Text)
	}
	if len(ft.actions) != 0 {
		t.Errorf("List must not act, transport saw %v", ft.actions)
	}
}
