package lazyload

import (
	"log"
	"sort"
	"sync"

	"github.com/ytget/lazyicons/internal/download"
	"github.com/ytget/lazyicons/internal/model"
)

// Activity is notified when a network operation begins and ends.
type Activity interface {
	Begin()
	End()
}

// Stats counts task outcomes seen by a Coordinator
type Stats struct {
	Started   int
	Completed int
	Failed    int
	Cancelled int
	Discarded int // completions that arrived for a task no longer mapped
}

// Coordinator maps visible rows to icon fetch tasks.
type Coordinator struct {
	store    *model.Store
	fetcher  download.Fetcher
	dispatch download.Dispatcher
	refresh  func(model.RowKey)
	activity Activity
	logger   *log.Logger

	cancelOffscreen bool

	mu        sync.Mutex
	tasks     map[model.RowKey]*download.Task
	pending   []model.RowKey
	visible   []model.RowKey
	scrolling bool
	stats     Stats
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithRefresh sets the callback invoked with a row key after its icon was
// stored.
func WithRefresh(fn func(model.RowKey)) Option {
	return func(c *Coordinator) {
		c.refresh = fn
	}
}

// WithDispatcher sets how task completions reach the owner context.
func WithDispatcher(d download.Dispatcher) Option {
	return func(c *Coordinator) {
		if d != nil {
			c.dispatch = d
		}
	}
}

// WithActivity sets the network activity sink.
func WithActivity(a Activity) Option {
	return func(c *Coordinator) {
		c.activity = a
	}
}

// WithCancelOffscreen makes OnRowLeftView cancel the row's fetch.
func WithCancelOffscreen(enabled bool) Option {
	return func(c *Coordinator) {
		c.cancelOffscreen = enabled
	}
}

// WithLogger sets the logger. The standard logger is used by default.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCoordinator creates a coordinator over store fetching with fetcher
func NewCoordinator(store *model.Store, fetcher download.Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		fetcher:  fetcher,
		dispatch: download.Async,
		logger:   log.Default(),
		tasks:    make(map[model.RowKey]*download.Task),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the record store the coordinator writes icons into
func (c *Coordinator) Store() *model.Store {
	return c.store
}

// OnVisibleRangeChanged records the keys currently on screen. Unless the
// list is scrolling, a fetch starts for every key that has neither an icon
// nor a task. While scrolling the keys are only remembered.
func (c *Coordinator) OnVisibleRangeChanged(keys []model.RowKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible = append(c.visible[:0:0], keys...)
	if c.scrolling {
		c.pending = c.pending[:0]
		for _, key := range c.visible {
			if c.needsTaskLocked(key) {
				c.pending = append(c.pending, key)
			}
		}
		return
	}
	c.startVisibleLocked()
}

// OnScrollStarted marks the list as dragging or decelerating.
func (c *Coordinator) OnScrollStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrolling = true
}

// OnScrollSettled clears the scrolling state and starts fetches for the
// last reported rows that still lack an icon.
func (c *Coordinator) OnScrollSettled() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scrolling = false
	c.pending = nil
	c.startVisibleLocked()
}

// OnRowLeftView cancels the fetch for key when off-screen cancellation is
// enabled; otherwise the fetch keeps running.
func (c *Coordinator) OnRowLeftView(key model.RowKey) {
	if !c.cancelOffscreen {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked(key)
	for i, k := range c.pending {
		if k == key {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
}

// Shutdown cancels every task and forgets the cached range. It is safe to
// call more than once and the coordinator stays usable afterwards.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.tasks) > 0 {
		c.logger.Printf("lazyload: cancelling %d icon fetches", len(c.tasks))
	}
	for key := range c.tasks {
		c.cancelLocked(key)
	}
	c.pending = nil
	c.visible = nil
}

// OnMemoryWarning drops all in-flight work, same as Shutdown
func (c *Coordinator) OnMemoryWarning() {
	c.Shutdown()
}

// ReplaceRecords swaps the store snapshot. Tasks for keys that are no longer
// present are cancelled; tasks for surviving keys keep running.
func (c *Coordinator) ReplaceRecords(records []*model.FeedRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Replace(records)
	for key := range c.tasks {
		if _, ok := c.store.Get(key); !ok {
			c.cancelLocked(key)
		}
	}
	c.pending = nil
	c.visible = nil
}

// InFlight returns the keys that currently have a task, sorted
func (c *Coordinator) InFlight() []model.RowKey {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]model.RowKey, 0, len(c.tasks))
	for key := range c.tasks {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// HasTask reports whether key has a task
func (c *Coordinator) HasTask(key model.RowKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.tasks[key]
	return ok
}

// Pending returns the keys waiting for the scroll to settle
func (c *Coordinator) Pending() []model.RowKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.RowKey(nil), c.pending...)
}

// Scrolling reports whether the list is currently scrolling
func (c *Coordinator) Scrolling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scrolling
}

// Stats returns a snapshot of the outcome counters
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Coordinator) needsTaskLocked(key model.RowKey) bool {
	if _, busy := c.tasks[key]; busy {
		return false
	}
	record, ok := c.store.Get(key)
	if !ok || record.ImageRef == "" {
		return false
	}
	return !c.store.HasIcon(key)
}

func (c *Coordinator) startVisibleLocked() {
	for _, key := range c.visible {
		if c.needsTaskLocked(key) {
			c.startLocked(key)
		}
	}
}

func (c *Coordinator) startLocked(key model.RowKey) {
	record, _ := c.store.Get(key)
	task := download.NewTask(key, record.ImageRef, c.fetcher, c.dispatch, c.handleCompletion)
	c.tasks[key] = task
	c.stats.Started++
	if c.activity != nil {
		c.activity.Begin()
	}
	task.Start()
}

// cancelLocked cancels and unmaps the task for key, if any
func (c *Coordinator) cancelLocked(key model.RowKey) {
	task, ok := c.tasks[key]
	if !ok {
		return
	}
	task.Cancel()
	delete(c.tasks, key)
	c.stats.Cancelled++
	if c.activity != nil {
		c.activity.End()
	}
}

// handleCompletion runs on the owner context once a task finished
func (c *Coordinator) handleCompletion(task *download.Task) {
	c.mu.Lock()
	current, ok := c.tasks[task.Key]
	if !ok || current != task {
		c.stats.Discarded++
		c.mu.Unlock()
		return
	}
	delete(c.tasks, task.Key)
	if c.activity != nil {
		c.activity.End()
	}

	stored := false
	switch task.State() {
	case model.TaskStatusCompleted:
		c.stats.Completed++
		stored = c.store.SetIcon(task.Key, task.Image())
	case model.TaskStatusFailed:
		c.stats.Failed++
		c.logger.Printf("lazyload: icon fetch failed for %s: %v", task.Key, task.Err())
	}
	refresh := c.refresh
	c.mu.Unlock()

	if stored && refresh != nil {
		refresh(task.Key)
	}
}
