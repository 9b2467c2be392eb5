package model

import (
	"image"
	"strings"
)

// RowKey identifies a record within the list independent of its visual
// position. It is the record ID.
type RowKey string

// FeedRecord represents a single app entry of the top paid feed
type FeedRecord struct {
	ID       string      // entry id, also the dedup key for icon fetches
	Name     string      // app name
	Artist   string      // developer / seller
	ImageRef string      // icon URL
	StoreURL string      // store page opened when the row is tapped
	Position int         // 1-based rank in the feed
	Icon     image.Image // decoded icon, nil until fetched
}

// Key returns the row key of the record
func (r *FeedRecord) Key() RowKey {
	return RowKey(r.ID)
}

// HasIcon reports whether the icon was already fetched and decoded
func (r *FeedRecord) HasIcon() bool {
	return r.Icon != nil
}

// GetDisplayName returns name, store URL, or ID in order of preference
func (r *FeedRecord) GetDisplayName() string {
	if name := cleanText(r.Name); name != "" {
		return name
	}
	if r.StoreURL != "" {
		return r.StoreURL
	}
	return r.ID
}

// GetDisplayArtist returns the artist line, or a dash when unknown
func (r *FeedRecord) GetDisplayArtist() string {
	if artist := cleanText(r.Artist); artist != "" {
		return artist
	}
	return "—"
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
