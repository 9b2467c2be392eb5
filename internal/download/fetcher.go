package download

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/ytget/lazyicons/internal/config"
	"github.com/ytget/lazyicons/internal/imaging"
)

// Fetcher defaults
const (
	DefaultMaxBytes  = 2 << 20
	DefaultUserAgent = "lazyicons/1.0"
)

// HTTPFetcher downloads icons over HTTP and fits them to the icon size.
type HTTPFetcher struct {
	client    *http.Client
	policy    config.TransportPolicy
	maxBytes  int64
	iconSize  int
	timeout   time.Duration
	userAgent string
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithPolicy sets the transport policy checked before each request.
func WithPolicy(policy config.TransportPolicy) Option {
	return func(f *HTTPFetcher) {
		f.policy = policy
	}
}

// WithMaxBytes caps the accepted response body size.
func WithMaxBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithIconSize sets the edge length decoded icons are fitted to.
func WithIconSize(size int) Option {
	return func(f *HTTPFetcher) {
		f.iconSize = size
	}
}

// WithTimeout bounds each fetch. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewHTTPFetcher creates a fetcher with the given options applied.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    http.DefaultClient,
		maxBytes:  DefaultMaxBytes,
		iconSize:  config.DefaultIconSize,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads imageRef and returns the decoded icon.
func (f *HTTPFetcher) Fetch(ctx context.Context, imageRef string) (image.Image, error) {
	if err := f.policy.Check(imageRef); err != nil {
		if errors.Is(err, config.ErrInsecureURL) {
			return nil, fmt.Errorf("%w: %w", ErrInsecureTransport, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageRef, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrTransport, f.maxBytes)
	}

	img, _, err := imaging.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return imaging.Fit(img, f.iconSize), nil
}
