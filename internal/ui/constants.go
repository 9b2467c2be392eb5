package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconReload   = "⟳"
	IconLanguage = "🌐"
)

// Text fragments
const (
	DashPlaceholder = "—"
	RankFormat      = "%d."
)

// Layout sizing (AppRow / list)
const (
	RowMinWidth       float32 = 300
	RowTextSpacing    float32 = 2
	RankLabelWidth    float32 = 36
	MobileIconPadding float32 = 8

	// Touch target minimum sizes (iOS/Android guidelines)
	MinTouchTargetSize float32 = 44
)

// List behaviour
const (
	// PlaceholderRowCount rows are shown before the first feed snapshot
	PlaceholderRowCount = 7
)

// Scroll tracking
const (
	ScrollPollInterval = 50 * time.Millisecond
	ScrollSettleDelay  = 150 * time.Millisecond
)

// Window
const (
	WindowWidth  = 420
	WindowHeight = 720
)
