package download

import (
	"context"
	"image"
)

// Fetcher retrieves and decodes the image behind imageRef.
type Fetcher interface {
	Fetch(ctx context.Context, imageRef string) (image.Image, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, imageRef string) (image.Image, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, imageRef string) (image.Image, error) {
	return f(ctx, imageRef)
}

// Dispatcher runs fn on the owner context (the UI goroutine or an owner
// loop). It must not run fn synchronously inside the caller.
type Dispatcher func(fn func())

// Async is a Dispatcher that runs fn on a fresh goroutine.
func Async(fn func()) {
	go fn()
}
