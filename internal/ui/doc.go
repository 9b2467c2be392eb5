package ui

// Package ui contains the Fyne user interface: the top paid apps list, its
// scroll tracking, the network activity spinner and the settings dialog.
// Icon loading for visible rows is delegated to a lazyload.Coordinator. All
// UI strings are localized via Localization.
