// Package lazyload coordinates icon fetches for the rows currently on
// screen.
//
// The Coordinator keeps at most one fetch task per row key, holds back new
// fetches while the list is scrolling and starts them once it settles, and
// cancels everything on Shutdown. Task completions are delivered on the
// owner context through a Dispatcher: fyne.Do in the GUI, a Loop headless.
package lazyload
