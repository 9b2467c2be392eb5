package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/ytget/lazyicons/internal/config"
	"github.com/ytget/lazyicons/internal/model"
)

// Client defaults
const (
	DefaultUserAgent = "lazyicons/1.0"
	DefaultMaxBytes  = 8 << 20
)

// ErrFeed wraps every failure to obtain a usable feed
var ErrFeed = errors.New("feed unavailable")

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header sent with feed requests.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithPolicy sets the transport policy the feed URL must satisfy.
func WithPolicy(policy config.TransportPolicy) ClientOption {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithIconSize sets the icon edge used to choose among im:image variants.
func WithIconSize(size int) ClientOption {
	return func(c *Client) {
		c.iconSize = size
	}
}

// Client fetches and parses the apps feed.
type Client struct {
	httpClient HTTPClient
	userAgent  string
	policy     config.TransportPolicy
	iconSize   int
}

// NewClient creates a new feed client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		userAgent:  DefaultUserAgent,
		iconSize:   config.DefaultIconSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads feedURL and returns at most limit records in feed order.
// A limit of zero or less returns every entry.
func (c *Client) Fetch(ctx context.Context, feedURL string, limit int) ([]*model.FeedRecord, error) {
	if err := c.policy.Check(feedURL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrFeed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed returned HTTP %d", ErrFeed, resp.StatusCode)
	}

	return c.Parse(io.LimitReader(resp.Body, DefaultMaxBytes), limit)
}

// Parse maps a feed document to records.
func (c *Client) Parse(r io.Reader, limit int) ([]*model.FeedRecord, error) {
	parsed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse feed: %w", ErrFeed, err)
	}

	records := make([]*model.FeedRecord, 0, len(parsed.Items))
	seen := make(map[string]bool, len(parsed.Items))
	for _, item := range parsed.Items {
		if limit > 0 && len(records) >= limit {
			break
		}
		record := c.toRecord(item)
		if record.ID == "" || seen[record.ID] {
			continue
		}
		seen[record.ID] = true
		record.Position = len(records) + 1
		records = append(records, record)
	}
	return records, nil
}

// Load runs Fetch on its own goroutine and calls done exactly once with the
// outcome. The caller marshals the result to its own context.
func (c *Client) Load(ctx context.Context, feedURL string, limit int, done func([]*model.FeedRecord, error)) {
	go func() {
		records, err := c.Fetch(ctx, feedURL, limit)
		done(records, err)
	}()
}

func (c *Client) toRecord(item *gofeed.Item) *model.FeedRecord {
	record := &model.FeedRecord{
		ID:       strings.TrimSpace(item.GUID),
		Name:     strings.TrimSpace(extensionValue(item, "name")),
		Artist:   strings.TrimSpace(extensionValue(item, "artist")),
		ImageRef: c.pickImage(item),
		StoreURL: strings.TrimSpace(item.Link),
	}
	if record.ID == "" {
		record.ID = record.StoreURL
	}
	if strings.HasPrefix(record.ID, "http") && record.StoreURL == "" {
		record.StoreURL = record.ID
	}
	if record.Name == "" {
		record.Name = strings.TrimSpace(item.Title)
	}
	if record.Artist == "" {
		if item.Author != nil {
			record.Artist = strings.TrimSpace(item.Author.Name)
		} else if len(item.Authors) > 0 && item.Authors[0] != nil {
			record.Artist = strings.TrimSpace(item.Authors[0].Name)
		}
	}
	return record
}

// pickImage chooses the smallest im:image at least iconSize tall, falling
// back to the last im:image, then the item image, then an image enclosure.
func (c *Client) pickImage(item *gofeed.Item) string {
	images := extensions(item, "image")
	best, bestHeight := "", 0
	for _, e := range images {
		h, err := strconv.Atoi(e.Attrs["height"])
		if err != nil || h < c.iconSize {
			continue
		}
		if best == "" || h < bestHeight {
			best, bestHeight = strings.TrimSpace(e.Value), h
		}
	}
	if best != "" {
		return best
	}
	if len(images) > 0 {
		return strings.TrimSpace(images[len(images)-1].Value)
	}
	if item.Image != nil && item.Image.URL != "" {
		return strings.TrimSpace(item.Image.URL)
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return strings.TrimSpace(enc.URL)
		}
	}
	return ""
}

func extensions(item *gofeed.Item, name string) []ext.Extension {
	if item.Extensions == nil {
		return nil
	}
	return item.Extensions["im"][name]
}

func extensionValue(item *gofeed.Item, name string) string {
	if values := extensions(item, name); len(values) > 0 {
		return values[0].Value
	}
	return ""
}
