package ui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// GestureType represents different types of gestures
type GestureType int

const (
	GestureTap GestureType = iota
	GestureSwipeLeft
	GestureSwipeRight
	GestureSwipeUp
	GestureSwipeDown
	GestureLongPress
)

// GestureHandler classifies a touch down/up pair
type GestureHandler struct {
	onGesture func(GestureType)

	// Touch tracking
	touchStartTime time.Time
	touchStartPos  fyne.Position

	// Gesture thresholds
	swipeThreshold    float32
	longPressDuration time.Duration
}

// Gesture thresholds constants
const (
	DefaultSwipeThreshold    float32 = 50.0
	DefaultLongPressDuration         = 500 * time.Millisecond
	RefreshCooldown                  = 2 * time.Second
)

// NewGestureHandler creates a new gesture handler
func NewGestureHandler(onGesture func(GestureType)) *GestureHandler {
	return &GestureHandler{
		onGesture:         onGesture,
		swipeThreshold:    DefaultSwipeThreshold,
		longPressDuration: DefaultLongPressDuration,
	}
}

// TouchDown handles touch down events for gesture detection
func (gh *GestureHandler) TouchDown(event *mobile.TouchEvent) {
	gh.touchStartTime = time.Now()
	gh.touchStartPos = event.Position
}

// TouchUp handles touch up events for gesture detection
func (gh *GestureHandler) TouchUp(event *mobile.TouchEvent) {
	if gh.touchStartTime.IsZero() {
		return
	}
	gh.classify(event.Position.Subtract(gh.touchStartPos), time.Since(gh.touchStartTime))
	gh.touchStartTime = time.Time{}
}

// TouchCancel handles touch cancel events
func (gh *GestureHandler) TouchCancel(event *mobile.TouchEvent) {
	gh.touchStartTime = time.Time{}
}

// classify maps a movement and its duration to a gesture
func (gh *GestureHandler) classify(delta fyne.Position, duration time.Duration) {
	dx, dy := delta.X, delta.Y
	absDx, absDy := dx, dy
	if absDx < 0 {
		absDx = -absDx
	}
	if absDy < 0 {
		absDy = -absDy
	}

	switch {
	case absDx < gh.swipeThreshold && absDy < gh.swipeThreshold:
		if duration >= gh.longPressDuration {
			gh.triggerGesture(GestureLongPress)
		} else {
			gh.triggerGesture(GestureTap)
		}
	case absDx > absDy && dx > 0:
		gh.triggerGesture(GestureSwipeRight)
	case absDx > absDy:
		gh.triggerGesture(GestureSwipeLeft)
	case dy > 0:
		gh.triggerGesture(GestureSwipeDown)
	default:
		gh.triggerGesture(GestureSwipeUp)
	}
}

// triggerGesture triggers a gesture callback
func (gh *GestureHandler) triggerGesture(gesture GestureType) {
	if gh.onGesture != nil {
		gh.onGesture(gesture)
	}
}

// PullToRefreshWidget reloads its content on a downward swipe
type PullToRefreshWidget struct {
	widget.BaseWidget

	content        fyne.CanvasObject
	gestureHandler *GestureHandler
	refreshFunc    func()
	lastRefresh    time.Time
}

// NewPullToRefreshWidget creates a new pull-to-refresh widget
func NewPullToRefreshWidget(content fyne.CanvasObject, refreshFunc func()) *PullToRefreshWidget {
	ptr := &PullToRefreshWidget{
		content:     content,
		refreshFunc: refreshFunc,
	}
	ptr.gestureHandler = NewGestureHandler(ptr.handleGesture)
	ptr.ExtendBaseWidget(ptr)
	return ptr
}

// CreateRenderer implements fyne.Widget
func (ptr *PullToRefreshWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ptr.content)
}

// handleGesture handles gestures for pull-to-refresh
func (ptr *PullToRefreshWidget) handleGesture(gesture GestureType) {
	if gesture == GestureSwipeDown {
		ptr.triggerRefresh()
	}
}

// triggerRefresh runs the refresh action at most once per RefreshCooldown
func (ptr *PullToRefreshWidget) triggerRefresh() {
	if ptr.refreshFunc == nil || time.Since(ptr.lastRefresh) < RefreshCooldown {
		return
	}
	ptr.lastRefresh = time.Now()
	ptr.refreshFunc()
}

// TouchDown handles touch down events
func (ptr *PullToRefreshWidget) TouchDown(event *mobile.TouchEvent) {
	ptr.gestureHandler.TouchDown(event)
}

// TouchUp handles touch up events
func (ptr *PullToRefreshWidget) TouchUp(event *mobile.TouchEvent) {
	ptr.gestureHandler.TouchUp(event)
}

// TouchCancel handles touch cancel events
func (ptr *PullToRefreshWidget) TouchCancel(event *mobile.TouchEvent) {
	ptr.gestureHandler.TouchCancel(event)
}
