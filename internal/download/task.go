package download

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/lazyicons/internal/model"
)

// TaskIDPrefix prefixes generated task IDs
const TaskIDPrefix = "icon-"

// Task is a single cancellable fetch of one row icon.
//
// The completion callback receives the task after it reached Completed or
// Failed. It is invoked at most once, always through the dispatcher and
// never for a cancelled task.
type Task struct {
	ID       string
	Key      model.RowKey
	ImageRef string

	fetcher    Fetcher
	dispatch   Dispatcher
	onComplete func(*Task)

	mu         sync.Mutex
	state      model.TaskStatus
	img        image.Image
	err        error
	cancel     context.CancelFunc
	startedAt  time.Time
	finishedAt time.Time
}

// NewTask creates a pending task. A nil dispatch falls back to Async.
func NewTask(key model.RowKey, imageRef string, fetcher Fetcher, dispatch Dispatcher, onComplete func(*Task)) *Task {
	if dispatch == nil {
		dispatch = Async
	}
	return &Task{
		ID:         generateTaskID(),
		Key:        key,
		ImageRef:   imageRef,
		fetcher:    fetcher,
		dispatch:   dispatch,
		onComplete: onComplete,
		state:      model.TaskStatusPending,
	}
}

// Start launches the fetch. Calling it on a task that is not pending does
// nothing.
func (t *Task) Start() {
	t.mu.Lock()
	if t.state != model.TaskStatusPending {
		t.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.state = model.TaskStatusInFlight
	t.startedAt = time.Now()
	t.mu.Unlock()

	go t.run(ctx)
}

func (t *Task) run(ctx context.Context) {
	img, err := t.fetcher.Fetch(ctx, t.ImageRef)

	t.mu.Lock()
	if t.state != model.TaskStatusInFlight {
		// cancelled while the fetch was running
		t.mu.Unlock()
		return
	}
	if err != nil {
		t.state = model.TaskStatusFailed
		t.err = err
	} else if img == nil {
		t.state = model.TaskStatusFailed
		t.err = ErrDecode
	} else {
		t.state = model.TaskStatusCompleted
		t.img = img
	}
	t.finishedAt = time.Now()
	cancel := t.cancel
	t.mu.Unlock()

	cancel()

	if t.onComplete != nil {
		t.dispatch(func() {
			t.onComplete(t)
		})
	}
}

// Cancel aborts a pending or in-flight task. It is idempotent and has no
// effect once the task finished.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.CanTransitionTo(model.TaskStatusCancelled) {
		return
	}
	t.state = model.TaskStatusCancelled
	t.err = ErrCancelled
	t.finishedAt = time.Now()
	if t.cancel != nil {
		t.cancel()
	}
}

// State returns the current lifecycle state
func (t *Task) State() model.TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Image returns the decoded icon of a completed task
func (t *Task) Image() image.Image {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img
}

// Err returns the failure or cancellation cause
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Duration returns how long the fetch ran, zero until it finished
func (t *Task) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.startedAt.IsZero() || t.finishedAt.IsZero() {
		return 0
	}
	return t.finishedAt.Sub(t.startedAt)
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return TaskIDPrefix + uuid.NewString()
}
