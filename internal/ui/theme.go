package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// ListTheme is a compact theme for dense app lists
type ListTheme struct {
	mobile bool
}

// NewListTheme creates the list theme; mobile enlarges touch related sizes
func NewListTheme(mobile bool) fyne.Theme {
	return &ListTheme{mobile: mobile}
}

// Color returns theme colors
func (t *ListTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.RGBA{R: 0, G: 122, B: 255, A: 255} // system blue
	case theme.ColorNameSelection:
		return color.RGBA{R: 0, G: 122, B: 255, A: 48}
	case theme.ColorNameSeparator:
		if variant == theme.VariantDark {
			return color.RGBA{R: 56, G: 56, B: 58, A: 255}
		}
		return color.RGBA{R: 220, G: 220, B: 224, A: 255}
	case theme.ColorNameBackground:
		if variant == theme.VariantDark {
			return color.RGBA{R: 18, G: 18, B: 18, A: 255}
		}
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}

	return theme.DefaultTheme().Color(name, variant)
}

// Font returns theme fonts
func (t *ListTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns theme icons
func (t *ListTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns theme sizes with compact adjustments
func (t *ListTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		if t.mobile {
			return 4
		}
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameLineSpacing:
		return 2
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameSeparatorThickness:
		return 1
	case theme.SizeNameText:
		return 13
	case theme.SizeNameCaptionText:
		return 11
	case theme.SizeNameHeadingText:
		return 17
	}

	return theme.DefaultTheme().Size(name)
}
