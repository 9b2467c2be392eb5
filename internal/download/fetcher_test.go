package download

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ytget/lazyicons/internal/config"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestHTTPFetcher_FetchAndFit(t *testing.T) {
	body := pngBytes(t, 100, 60)
	var userAgent string
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(WithHTTPClient(server.Client()), WithIconSize(48))
	img, err := fetcher.Fetch(context.Background(), server.URL+"/icon.png")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if img.Bounds().Dx() != 48 || img.Bounds().Dy() != 48 {
		t.Errorf("Expected 48x48 icon, got %v", img.Bounds())
	}
	if userAgent != DefaultUserAgent {
		t.Errorf("Expected User-Agent %s, got %s", DefaultUserAgent, userAgent)
	}
}

func TestHTTPFetcher_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/html":
			w.Write([]byte("<html>nope</html>"))
		case "/big":
			w.Write(bytes.Repeat([]byte{0xff}, 4096))
		}
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	host = host[:strings.LastIndex(host, ":")]
	policy := config.TransportPolicy{InsecureHosts: []string{host}}

	tests := []struct {
		name    string
		opts    []Option
		path    string
		wantErr error
	}{
		{"not found", nil, "/missing", ErrTransport},
		{"not an image", nil, "/html", ErrDecode},
		{"too large", []Option{WithMaxBytes(1024)}, "/big", ErrTransport},
	}

	for _, test := range tests {
		opts := append([]Option{WithPolicy(policy)}, test.opts...)
		_, err := NewHTTPFetcher(opts...).Fetch(context.Background(), server.URL+test.path)
		if !errors.Is(err, test.wantErr) {
			t.Errorf("%s: expected %v, got %v", test.name, test.wantErr, err)
		}
	}
}

func TestHTTPFetcher_InsecureTransport(t *testing.T) {
	fetcher := NewHTTPFetcher()

	_, err := fetcher.Fetch(context.Background(), "http://example.com/icon.png")
	if !errors.Is(err, ErrInsecureTransport) {
		t.Errorf("Expected ErrInsecureTransport, got %v", err)
	}
	if !errors.Is(err, ErrTransport) {
		t.Error("Insecure transport should also be a transport error")
	}
	if !errors.Is(err, config.ErrInsecureURL) {
		t.Errorf("Expected the policy error to stay in the chain, got %v", err)
	}
}

func TestHTTPFetcher_ContextCancel(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewHTTPFetcher(WithHTTPClient(server.Client())).Fetch(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(WithHTTPClient(server.Client()), WithTimeout(30*time.Millisecond))
	_, err := fetcher.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Expected ErrTransport on timeout, got %v", err)
	}
}
