package download

// Package download fetches row icons. A Task wraps one fetch of one image
// reference: it runs on its own goroutine, can be cancelled at any point and
// reports its outcome once through the Dispatcher it was created with.
// Fetchers do the actual network transfer and decoding.
