package ui

import (
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// VisibleRange returns the first and last row indexes intersecting the
// viewport [offset, offset+viewport] for rows of uniform pitch. ok is false
// when no row is visible.
func VisibleRange(offset, viewport, pitch float32, count int) (first, last int, ok bool) {
	if count <= 0 || pitch <= 0 || viewport <= 0 {
		return -1, -1, false
	}
	if offset < 0 {
		offset = 0
	}
	first = int(math.Floor(float64(offset / pitch)))
	last = int(math.Ceil(float64((offset+viewport)/pitch))) - 1
	if last >= count {
		last = count - 1
	}
	if first > last {
		return -1, -1, false
	}
	return first, last, true
}

// ScrollCallbacks receives scroll state changes from a ScrollTracker
type ScrollCallbacks struct {
	OnScrollStarted func()
	OnScrollSettled func()
	// OnRangeChanged receives the new visible range, or -1,-1 when nothing
	// is visible
	OnRangeChanged func(first, last int)
}

// ScrollTracker derives dragging/settled state from the scroll offset of a
// list. widget.List has no scroll callbacks, so the offset is sampled.
type ScrollTracker struct {
	list      *widget.List
	pitch     func() float32
	count     func() int
	callbacks ScrollCallbacks
	settle    time.Duration

	lastOffset   float32
	lastViewport float32
	lastCount    int
	lastMove     time.Time
	scrolling    bool
	first, last  int
	dirty        bool

	stopOnce sync.Once
	stop     chan struct{}
}

// NewScrollTracker creates a tracker for list. pitch returns the distance
// between row tops and count the number of rows.
func NewScrollTracker(list *widget.List, pitch func() float32, count func() int, callbacks ScrollCallbacks) *ScrollTracker {
	return &ScrollTracker{
		list:      list,
		pitch:     pitch,
		count:     count,
		callbacks: callbacks,
		settle:    ScrollSettleDelay,
		first:     -1,
		last:      -1,
		dirty:     true,
		stop:      make(chan struct{}),
	}
}

// Start samples the list every ScrollPollInterval on the UI goroutine
// until Stop is called.
func (st *ScrollTracker) Start() {
	ticker := time.NewTicker(ScrollPollInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-st.stop:
				return
			case now := <-ticker.C:
				fyne.Do(func() {
					st.Sample(st.list.GetScrollOffset(), st.list.Size().Height, now)
				})
			}
		}
	}()
}

// Stop ends sampling. It is safe to call more than once.
func (st *ScrollTracker) Stop() {
	st.stopOnce.Do(func() {
		close(st.stop)
	})
}

// Invalidate forces the next sample to report the visible range, e.g. after
// the rows were replaced.
func (st *ScrollTracker) Invalidate() {
	st.dirty = true
	st.first, st.last = -1, -1
}

// Scrolling reports whether a scroll gesture is in progress
func (st *ScrollTracker) Scrolling() bool {
	return st.scrolling
}

// Range returns the last reported visible range
func (st *ScrollTracker) Range() (first, last int) {
	return st.first, st.last
}

// Sample feeds one observation of the list into the tracker. It must be
// called on the UI goroutine.
func (st *ScrollTracker) Sample(offset, viewport float32, now time.Time) {
	count := st.count()

	switch {
	case offset != st.lastOffset:
		st.lastOffset = offset
		st.lastMove = now
		if !st.scrolling {
			st.scrolling = true
			if st.callbacks.OnScrollStarted != nil {
				st.callbacks.OnScrollStarted()
			}
		}
		st.updateRange(offset, viewport, count)
	case st.scrolling && now.Sub(st.lastMove) >= st.settle:
		st.scrolling = false
		st.updateRange(offset, viewport, count)
		if st.callbacks.OnScrollSettled != nil {
			st.callbacks.OnScrollSettled()
		}
	case st.dirty || viewport != st.lastViewport || count != st.lastCount:
		st.updateRange(offset, viewport, count)
	}
}

func (st *ScrollTracker) updateRange(offset, viewport float32, count int) {
	st.lastViewport = viewport
	st.lastCount = count

	first, last, ok := VisibleRange(offset, viewport, st.pitch(), count)
	if !ok {
		first, last = -1, -1
	}
	if !st.dirty && first == st.first && last == st.last {
		return
	}
	st.dirty = false
	st.first, st.last = first, last
	if st.callbacks.OnRangeChanged != nil {
		st.callbacks.OnRangeChanged(first, last)
	}
}
