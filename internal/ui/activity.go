package ui

import (
	"log"
	"sync"

	"fyne.io/fyne/v2/data/binding"
)

// NetworkActivity counts running network operations. The count is exposed
// as a binding so a spinner can follow it.
type NetworkActivity struct {
	mu    sync.Mutex
	count int
	value binding.Int
}

// NewNetworkActivity creates an idle activity counter
func NewNetworkActivity() *NetworkActivity {
	return &NetworkActivity{value: binding.NewInt()}
}

// Begin records the start of an operation
func (a *NetworkActivity) Begin() {
	a.mu.Lock()
	a.count++
	n := a.count
	a.mu.Unlock()

	a.publish(n)
}

// End records the end of an operation
func (a *NetworkActivity) End() {
	a.mu.Lock()
	if a.count > 0 {
		a.count--
	}
	n := a.count
	a.mu.Unlock()

	a.publish(n)
}

// publish updates the binding. Listeners may run synchronously and read the
// count back, so a.mu must not be held here.
func (a *NetworkActivity) publish(n int) {
	if err := a.value.Set(n); err != nil {
		log.Printf("Failed to update network activity: %v", err)
	}
}

// Count returns the number of running operations
func (a *NetworkActivity) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Active reports whether any operation is running
func (a *NetworkActivity) Active() bool {
	return a.Count() > 0
}

// Binding returns the bound count
func (a *NetworkActivity) Binding() binding.Int {
	return a.value
}
