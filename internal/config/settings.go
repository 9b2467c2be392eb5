package config

import (
	"strings"

	"fyne.io/fyne/v2"
)

// Settings keys for Fyne preferences
const (
	KeyFeedURL         = "feed_url"
	KeyFeedLimit       = "feed_limit"
	KeyIconSize        = "icon_size"
	KeyCancelOffscreen = "cancel_offscreen"
	KeyInsecureHosts   = "insecure_hosts"
	KeyLanguage        = "app_language"
)

// Settings manages application configuration persisted in Fyne preferences
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetFeedURL returns the configured feed URL
func (s *Settings) GetFeedURL() string {
	feedURL := s.app.Preferences().String(KeyFeedURL)
	if feedURL == "" {
		s.SetFeedURL(DefaultFeedURL)
		return DefaultFeedURL
	}
	return feedURL
}

// SetFeedURL sets the feed URL; an empty value restores the default
func (s *Settings) SetFeedURL(feedURL string) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	s.app.Preferences().SetString(KeyFeedURL, feedURL)
}

// GetFeedLimit returns the maximum number of feed entries to show
func (s *Settings) GetFeedLimit() int {
	value := s.app.Preferences().Int(KeyFeedLimit)
	if value <= 0 {
		s.SetFeedLimit(DefaultFeedLimit)
		return DefaultFeedLimit
	}
	return value
}

// SetFeedLimit sets the feed entry limit
func (s *Settings) SetFeedLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	s.app.Preferences().SetInt(KeyFeedLimit, limit)
}

// GetIconSize returns the target icon edge in pixels
func (s *Settings) GetIconSize() int {
	value := s.app.Preferences().Int(KeyIconSize)
	if value <= 0 {
		s.SetIconSize(DefaultIconSize)
		return DefaultIconSize
	}
	return value
}

// SetIconSize sets the target icon edge in pixels
func (s *Settings) SetIconSize(size int) {
	if size < MinIconSize {
		size = MinIconSize
	}
	if size > MaxIconSize {
		size = MaxIconSize
	}
	s.app.Preferences().SetInt(KeyIconSize, size)
}

// GetCancelOffscreen returns whether fetches for rows leaving the view are cancelled
func (s *Settings) GetCancelOffscreen() bool {
	return s.app.Preferences().BoolWithFallback(KeyCancelOffscreen, DefaultCancelOffscreen)
}

// SetCancelOffscreen sets whether fetches for rows leaving the view are cancelled
func (s *Settings) SetCancelOffscreen(cancel bool) {
	s.app.Preferences().SetBool(KeyCancelOffscreen, cancel)
}

// GetInsecureHosts returns the hosts allowed over plain http
func (s *Settings) GetInsecureHosts() []string {
	return ParseHostList(s.app.Preferences().String(KeyInsecureHosts))
}

// SetInsecureHosts sets the hosts allowed over plain http
func (s *Settings) SetInsecureHosts(hosts []string) {
	s.app.Preferences().SetString(KeyInsecureHosts, strings.Join(hosts, ","))
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}

// Config returns the effective configuration held in preferences
func (s *Settings) Config() Config {
	return Config{
		FeedURL:         s.GetFeedURL(),
		FeedLimit:       s.GetFeedLimit(),
		IconSize:        s.GetIconSize(),
		CancelOffscreen: s.GetCancelOffscreen(),
		InsecureHosts:   s.GetInsecureHosts(),
		Language:        s.GetLanguage(),
	}
}
