package ui

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/lazyicons/internal/imaging"
	"github.com/ytget/lazyicons/internal/model"
)

// AppRow renders one feed record: rank, icon, app name and artist
type AppRow struct {
	widget.BaseWidget

	record      *model.FeedRecord
	placeholder image.Image
	iconSize    float32

	// UI components
	rankLabel   *widget.Label
	icon        *canvas.Image
	nameLabel   *widget.Label
	artistLabel *widget.Label
}

// NewAppRow creates an empty row with an iconSize x iconSize icon slot
func NewAppRow(iconSize int) *AppRow {
	row := &AppRow{
		placeholder: imaging.Placeholder(iconSize),
		iconSize:    float32(iconSize),
	}
	row.ExtendBaseWidget(row)
	row.createUI()
	return row
}

// createUI creates the UI components
func (r *AppRow) createUI() {
	r.rankLabel = widget.NewLabel("")
	r.rankLabel.Alignment = fyne.TextAlignTrailing

	r.icon = canvas.NewImageFromImage(r.placeholder)
	r.icon.FillMode = canvas.ImageFillContain
	r.icon.ScaleMode = canvas.ImageScaleSmooth
	r.icon.SetMinSize(fyne.NewSize(r.iconSize, r.iconSize))

	r.nameLabel = widget.NewLabel("")
	r.nameLabel.TextStyle = fyne.TextStyle{Bold: true}
	r.nameLabel.Truncation = fyne.TextTruncateEllipsis

	r.artistLabel = widget.NewLabel("")
	r.artistLabel.Truncation = fyne.TextTruncateEllipsis
	r.artistLabel.SizeName = theme.SizeNameCaptionText
}

// CreateRenderer implements fyne.Widget
func (r *AppRow) CreateRenderer() fyne.WidgetRenderer {
	rank := container.NewGridWrap(fyne.NewSize(RankLabelWidth, r.iconSize), r.rankLabel)
	text := container.New(layout.NewCustomPaddedVBoxLayout(RowTextSpacing), r.nameLabel, r.artistLabel)
	left := container.NewHBox(rank, container.NewCenter(r.icon))
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, left, nil, text))
}

// MinSize keeps rows at least as tall as the icon
func (r *AppRow) MinSize() fyne.Size {
	size := r.BaseWidget.MinSize()
	if size.Width < RowMinWidth {
		size.Width = RowMinWidth
	}
	if size.Height < r.iconSize {
		size.Height = r.iconSize
	}
	return size
}

// SetRecord shows record, using its icon when present and the placeholder
// otherwise
func (r *AppRow) SetRecord(record *model.FeedRecord) {
	r.record = record
	if record == nil {
		r.SetMessage("")
		return
	}

	r.rankLabel.SetText(fmt.Sprintf(RankFormat, record.Position))
	r.nameLabel.SetText(record.GetDisplayName())
	r.artistLabel.SetText(record.GetDisplayArtist())

	img := record.Icon
	if img == nil {
		img = r.placeholder
	}
	if r.icon.Image != img {
		r.icon.Image = img
		r.icon.Refresh()
	}
}

// SetMessage turns the row into a placeholder row showing text
func (r *AppRow) SetMessage(text string) {
	r.record = nil
	r.rankLabel.SetText("")
	r.nameLabel.SetText(text)
	r.artistLabel.SetText("")
	if r.icon.Image != r.placeholder {
		r.icon.Image = r.placeholder
		r.icon.Refresh()
	}
}

// Record returns the record currently shown, nil for placeholder rows
func (r *AppRow) Record() *model.FeedRecord {
	return r.record
}

// HasIcon reports whether the row shows a fetched icon
func (r *AppRow) HasIcon() bool {
	return r.icon.Image != nil && r.icon.Image != r.placeholder
}
