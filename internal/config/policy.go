package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// URL schemes accepted by the transport policy
const (
	SchemeHTTPS = "https"
	SchemeHTTP  = "http"
)

// ErrInsecureURL is returned when a URL would use plain http against a host
// that has no insecure-transport exception.
var ErrInsecureURL = errors.New("insecure connection not allowed by transport policy")

// ErrUnsupportedScheme is returned for anything other than http and https.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme (only http and https allowed)")

// TransportPolicy decides which endpoints may be contacted. Every endpoint
// must use https unless its host (or a parent domain) is listed in
// InsecureHosts.
type TransportPolicy struct {
	InsecureHosts []string
}

// Check validates rawURL against the policy
func (p TransportPolicy) Check(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("URL %q has no host", rawURL)
	}

	switch strings.ToLower(u.Scheme) {
	case SchemeHTTPS:
		return nil
	case SchemeHTTP:
		if p.allowsInsecure(host) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrInsecureURL, rawURL)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// allowsInsecure matches host against the exception list. An entry also
// covers its subdomains.
func (p TransportPolicy) allowsInsecure(host string) bool {
	for _, h := range p.InsecureHosts {
		h = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "."))
		if h == "" {
			continue
		}
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// ParseHostList splits a comma separated host list, dropping blanks
func ParseHostList(s string) []string {
	var hosts []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			hosts = append(hosts, part)
		}
	}
	return hosts
}
