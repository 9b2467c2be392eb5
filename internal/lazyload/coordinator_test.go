package lazyload

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ytget/lazyicons/internal/download"
	"github.com/ytget/lazyicons/internal/model"
)

// gatedFetcher blocks every fetch until the test releases it.
type gatedFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	gates map[string]chan error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(map[string]int), gates: make(map[string]chan error)}
}

func (f *gatedFetcher) gate(ref string) chan error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gates[ref]
	if !ok {
		g = make(chan error, 1)
		f.gates[ref] = g
	}
	return g
}

func (f *gatedFetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	f.mu.Lock()
	f.calls[ref]++
	f.mu.Unlock()

	select {
	case err := <-f.gate(ref):
		if err != nil {
			return nil, err
		}
		return image.NewNRGBA(image.Rect(0, 0, 48, 48)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *gatedFetcher) succeed(ref string)         { f.gate(ref) <- nil }
func (f *gatedFetcher) fail(ref string, err error) { f.gate(ref) <- err }

func (f *gatedFetcher) callCount(ref string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ref]
}

func (f *gatedFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// ownerQueue collects dispatched completions so the test goroutine can act
// as the owner context.
type ownerQueue chan func()

func (q ownerQueue) dispatch(fn func()) { q <- fn }

func (q ownerQueue) runNext(t *testing.T) {
	t.Helper()
	select {
	case fn := <-q:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("no completion dispatched")
	}
}

type countingActivity struct{ n atomic.Int32 }

func (a *countingActivity) Begin() { a.n.Add(1) }
func (a *countingActivity) End()   { a.n.Add(-1) }

func refOf(key model.RowKey) string {
	return "https://example.com/" + string(key) + ".png"
}

func newStore(keys ...model.RowKey) *model.Store {
	store := model.NewStore()
	records := make([]*model.FeedRecord, len(keys))
	for i, key := range keys {
		records[i] = &model.FeedRecord{ID: string(key), Name: string(key), ImageRef: refOf(key), Position: i + 1}
	}
	store.Replace(records)
	return store
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestCoordinator_CompleteAndFail(t *testing.T) {
	store := newStore("a", "b")
	fetcher := newGatedFetcher()
	owner := make(ownerQueue, 4)
	var refreshed []model.RowKey
	c := NewCoordinator(store, fetcher,
		WithDispatcher(owner.dispatch),
		WithRefresh(func(key model.RowKey) { refreshed = append(refreshed, key) }),
		WithLogger(quietLogger()),
	)

	c.OnVisibleRangeChanged([]model.RowKey{"a", "b"})
	if got := c.InFlight(); !reflect.DeepEqual(got, []model.RowKey{"a", "b"}) {
		t.Fatalf("Expected tasks for a and b, got %v", got)
	}

	fetcher.succeed(refOf("a"))
	owner.runNext(t)

	if store.Icon("a") == nil {
		t.Error("Expected record a to hold an icon")
	}
	if !reflect.DeepEqual(refreshed, []model.RowKey{"a"}) {
		t.Errorf("Expected refresh for a, got %v", refreshed)
	}
	if c.HasTask("a") {
		t.Error("Task a should be removed after completion")
	}

	fetcher.fail(refOf("b"), download.ErrTransport)
	owner.runNext(t)

	if store.Icon("b") != nil {
		t.Error("Record b should have no icon after failure")
	}
	if c.HasTask("b") {
		t.Error("Task b should be removed after failure")
	}
	if len(refreshed) != 1 {
		t.Errorf("Failure must not refresh, got %v", refreshed)
	}

	stats := c.Stats()
	if stats.Started != 2 || stats.Completed != 1 || stats.Failed != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestCoordinator_NoTaskForExistingIcon(t *testing.T) {
	store := newStore("a", "b")
	store.SetIcon("a", image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	fetcher := newGatedFetcher()
	c := NewCoordinator(store, fetcher, WithLogger(quietLogger()))
	defer c.Shutdown()

	for i := 0; i < 3; i++ {
		c.OnVisibleRangeChanged([]model.RowKey{"a", "b"})
	}

	if c.HasTask("a") {
		t.Error("No task may be created for a row that already has an icon")
	}
	if !c.HasTask("b") {
		t.Error("Expected task for b")
	}
	waitFor(t, func() bool { return fetcher.callCount(refOf("b")) == 1 })
	if fetcher.callCount(refOf("a")) != 0 {
		t.Error("Icon a should never be fetched")
	}
}

func TestCoordinator_IgnoresUnknownAndImagelessKeys(t *testing.T) {
	store := newStore("a")
	store.Replace(append([]*model.FeedRecord{{ID: "noimg", Name: "x"}}, &model.FeedRecord{ID: "a", ImageRef: refOf("a")}))
	c := NewCoordinator(store, newGatedFetcher(), WithLogger(quietLogger()))
	defer c.Shutdown()

	c.OnVisibleRangeChanged([]model.RowKey{"missing", "noimg", "a"})
	if got := c.InFlight(); !reflect.DeepEqual(got, []model.RowKey{"a"}) {
		t.Errorf("Expected only a in flight, got %v", got)
	}
}

func TestCoordinator_ConcurrentOverlappingRanges(t *testing.T) {
	var keys []model.RowKey
	for i := 0; i < 20; i++ {
		keys = append(keys, model.RowKey(fmt.Sprintf("k%02d", i)))
	}
	store := newStore(keys...)
	fetcher := newGatedFetcher()
	c := NewCoordinator(store, fetcher, WithLogger(quietLogger()))

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				first := (offset + i) % 15
				c.OnVisibleRangeChanged(keys[first : first+6])
			}
		}(g)
	}
	wg.Wait()

	inFlight := c.InFlight()
	seen := make(map[model.RowKey]bool)
	for _, key := range inFlight {
		if seen[key] {
			t.Fatalf("Duplicate task for %s", key)
		}
		seen[key] = true
	}
	waitFor(t, func() bool { return fetcher.totalCalls() == len(inFlight) })
	for _, key := range inFlight {
		if n := fetcher.callCount(refOf(key)); n != 1 {
			t.Errorf("Expected exactly one fetch for %s, got %d", key, n)
		}
	}
	c.Shutdown()
}

func TestCoordinator_DeferWhileScrolling(t *testing.T) {
	store := newStore("a", "b")
	fetcher := newGatedFetcher()
	c := NewCoordinator(store, fetcher, WithLogger(quietLogger()))
	defer c.Shutdown()

	c.OnScrollStarted()
	c.OnVisibleRangeChanged([]model.RowKey{"a", "b"})

	if len(c.InFlight()) != 0 {
		t.Fatalf("No task may start while scrolling, got %v", c.InFlight())
	}
	if got := c.Pending(); !reflect.DeepEqual(got, []model.RowKey{"a", "b"}) {
		t.Errorf("Expected pending a and b, got %v", got)
	}

	c.OnScrollSettled()
	if got := c.InFlight(); !reflect.DeepEqual(got, []model.RowKey{"a", "b"}) {
		t.Errorf("Expected tasks for a and b after settle, got %v", got)
	}
	if c.Scrolling() || len(c.Pending()) != 0 {
		t.Error("Settle should clear scrolling state and pending keys")
	}
}

func TestCoordinator_SettleUsesLastKnownRange(t *testing.T) {
	store := newStore("a", "b", "c", "d")
	store.SetIcon("c", image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	c := NewCoordinator(store, newGatedFetcher(), WithLogger(quietLogger()))
	defer c.Shutdown()

	c.OnScrollStarted()
	c.OnVisibleRangeChanged([]model.RowKey{"a", "b"})
	c.OnVisibleRangeChanged([]model.RowKey{"b", "c", "d"})
	c.OnScrollSettled()

	if got := c.InFlight(); !reflect.DeepEqual(got, []model.RowKey{"b", "d"}) {
		t.Errorf("Expected tasks for b and d only, got %v", got)
	}
}

func TestCoordinator_ShutdownCancelsAndDiscards(t *testing.T) {
	store := newStore("a", "b")
	fetcher := newGatedFetcher()
	activity := &countingActivity{}
	var refreshes atomic.Int32
	c := NewCoordinator(store, fetcher,
		WithActivity(activity),
		WithRefresh(func(model.RowKey) { refreshes.Add(1) }),
		WithLogger(quietLogger()),
	)

	c.OnVisibleRangeChanged([]model.RowKey{"a", "b"})
	if activity.n.Load() != 2 {
		t.Errorf("Expected activity count 2, got %d", activity.n.Load())
	}

	c.Shutdown()
	c.Shutdown()

	if len(c.InFlight()) != 0 {
		t.Error("Shutdown should clear all tasks")
	}
	if activity.n.Load() != 0 {
		t.Errorf("Expected activity count 0 after shutdown, got %d", activity.n.Load())
	}

	fetcher.succeed(refOf("a"))
	time.Sleep(30 * time.Millisecond)
	if store.Icon("a") != nil || refreshes.Load() != 0 {
		t.Error("Completions after shutdown must not mutate records")
	}

	// still usable
	c.OnVisibleRangeChanged([]model.RowKey{"b"})
	if !c.HasTask("b") {
		t.Error("Coordinator should accept new ranges after shutdown")
	}
	c.OnMemoryWarning()
	if c.HasTask("b") {
		t.Error("Memory warning should cancel tasks")
	}
}

func TestCoordinator_DiscardsStaleCompletion(t *testing.T) {
	store := newStore("a")
	var refreshes atomic.Int32
	c := NewCoordinator(store, newGatedFetcher(),
		WithRefresh(func(model.RowKey) { refreshes.Add(1) }),
		WithLogger(quietLogger()),
	)

	ok := download.FetcherFunc(func(ctx context.Context, ref string) (image.Image, error) {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1)), nil
	})
	stale := download.NewTask("a", refOf("a"), ok, download.Async, nil)
	stale.Start()
	waitFor(t, func() bool { return stale.State() == model.TaskStatusCompleted })

	c.handleCompletion(stale)

	if store.Icon("a") != nil || refreshes.Load() != 0 {
		t.Error("Completion of an unmapped task must be discarded")
	}
	if c.Stats().Discarded != 1 {
		t.Errorf("Expected one discarded completion, got %+v", c.Stats())
	}
}

func TestCoordinator_RowLeftView(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		wantTask bool
	}{
		{"disabled keeps fetch", false, true},
		{"enabled cancels fetch", true, false},
	}

	for _, test := range tests {
		store := newStore("a")
		c := NewCoordinator(store, newGatedFetcher(), WithCancelOffscreen(test.enabled), WithLogger(quietLogger()))
		c.OnVisibleRangeChanged([]model.RowKey{"a"})
		c.OnRowLeftView("a")

		if c.HasTask("a") != test.wantTask {
			t.Errorf("%s: HasTask(a) = %v", test.name, c.HasTask("a"))
		}
		c.Shutdown()
	}
}

func TestCoordinator_ReplaceRecords(t *testing.T) {
	store := newStore("a", "b")
	fetcher := newGatedFetcher()
	owner := make(ownerQueue, 4)
	var refreshed []model.RowKey
	c := NewCoordinator(store, fetcher,
		WithDispatcher(owner.dispatch),
		WithRefresh(func(key model.RowKey) { refreshed = append(refreshed, key) }),
		WithLogger(quietLogger()),
	)
	c.OnVisibleRangeChanged([]model.RowKey{"a", "b"})

	c.ReplaceRecords([]*model.FeedRecord{
		{ID: "b", ImageRef: refOf("b")},
		{ID: "c", ImageRef: refOf("c")},
	})

	if got := c.InFlight(); !reflect.DeepEqual(got, []model.RowKey{"b"}) {
		t.Fatalf("Expected only b to survive, got %v", got)
	}

	fetcher.succeed(refOf("b"))
	owner.runNext(t)
	if store.Icon("b") == nil {
		t.Error("Surviving task should store into the new snapshot")
	}
	if !reflect.DeepEqual(refreshed, []model.RowKey{"b"}) {
		t.Errorf("Expected refresh for b, got %v", refreshed)
	}
}

func TestCoordinator_FailureRetriedOnNextRangeReport(t *testing.T) {
	store := newStore("a")
	fetcher := newGatedFetcher()
	owner := make(ownerQueue, 2)
	c := NewCoordinator(store, fetcher, WithDispatcher(owner.dispatch), WithLogger(quietLogger()))
	defer c.Shutdown()

	c.OnVisibleRangeChanged([]model.RowKey{"a"})
	fetcher.fail(refOf("a"), errors.New("boom"))
	owner.runNext(t)

	if c.HasTask("a") {
		t.Fatal("Failed task should be removed")
	}
	waitFor(t, func() bool { return fetcher.callCount(refOf("a")) == 1 })

	c.OnVisibleRangeChanged([]model.RowKey{"a"})
	if !c.HasTask("a") {
		t.Error("A later range report should start a new fetch")
	}
}
