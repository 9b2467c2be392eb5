package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// MobileUI provides mobile-specific UI enhancements
type MobileUI struct {
	app fyne.App
}

// NewMobileUI creates a new mobile UI helper
func NewMobileUI(app fyne.App) *MobileUI {
	return &MobileUI{app: app}
}

// IsMobileDevice checks if the app is running on a mobile device
func (m *MobileUI) IsMobileDevice() bool {
	return fyne.CurrentDevice().IsMobile()
}

// RowIconSize returns the icon slot size, never below the touch target
// minimum on mobile
func (m *MobileUI) RowIconSize(iconSize int) int {
	if m.IsMobileDevice() && float32(iconSize) < MinTouchTargetSize {
		return int(MinTouchTargetSize)
	}
	return iconSize
}

// CreateToolbarButton creates a low-importance button sized for touch on mobile
func (m *MobileUI) CreateToolbarButton(text string, onTapped func()) *widget.Button {
	btn := widget.NewButton(text, onTapped)
	btn.Importance = widget.LowImportance
	return btn
}

// WrapList adds pull-to-refresh to the list on mobile devices
func (m *MobileUI) WrapList(list fyne.CanvasObject, onRefresh func()) fyne.CanvasObject {
	if !m.IsMobileDevice() {
		return list
	}
	return NewPullToRefreshWidget(list, onRefresh)
}
