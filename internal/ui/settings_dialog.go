package ui

import (
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/lazyicons/internal/config"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func(config.Config)

	// UI components
	feedURLEntry      *widget.Entry
	feedLimitEntry    *widget.Entry
	iconSizeEntry     *widget.Entry
	cancelOffscreen   *widget.Check
	insecureHostEntry *widget.Entry
	languageSelect    *widget.Select
}

// NewSettingsDialog creates a new settings dialog. onSaved receives the
// validated configuration after it was persisted.
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window, onSaved func(config.Config)) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
		onSaved:      onSaved,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	text := sd.localization.GetText

	sd.feedURLEntry = widget.NewEntry()
	sd.feedURLEntry.SetPlaceHolder(config.DefaultFeedURL)

	sd.feedLimitEntry = widget.NewEntry()
	sd.feedLimitEntry.SetPlaceHolder("1-" + strconv.Itoa(config.MaxFeedLimit))

	sd.iconSizeEntry = widget.NewEntry()
	sd.iconSizeEntry.SetPlaceHolder(strconv.Itoa(config.MinIconSize) + "-" + strconv.Itoa(config.MaxIconSize))

	sd.cancelOffscreen = widget.NewCheck(text(KeyCancelOffscreen), nil)

	sd.insecureHostEntry = widget.NewEntry()
	sd.insecureHostEntry.SetPlaceHolder(text(KeyInsecureHostsTip))

	// Language selection
	languageOptions := []string{}
	for code := range sd.settings.GetLanguageOptions() {
		languageOptions = append(languageOptions, code)
	}
	sort.Strings(languageOptions)
	sd.languageSelect = widget.NewSelect(languageOptions, nil)
	sd.languageSelect.PlaceHolder = "Select language"

	form := container.NewVBox(
		widget.NewLabel(text(KeyFeedURL)+":"),
		sd.feedURLEntry,

		widget.NewLabel(text(KeyFeedLimit)+":"),
		sd.feedLimitEntry,

		widget.NewLabel(text(KeyIconSize)+":"),
		sd.iconSizeEntry,

		sd.cancelOffscreen,

		widget.NewLabel(text(KeyInsecureHosts)+":"),
		sd.insecureHostEntry,

		widget.NewSeparator(),

		widget.NewLabel(text(KeyLanguage)+":"),
		sd.languageSelect,
	)

	sd.dialog = dialog.NewCustomConfirm(
		text(KeySettings),
		text(KeySave),
		text(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(480, 460))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.feedURLEntry.SetText(sd.settings.GetFeedURL())
	sd.feedLimitEntry.SetText(strconv.Itoa(sd.settings.GetFeedLimit()))
	sd.iconSizeEntry.SetText(strconv.Itoa(sd.settings.GetIconSize()))
	sd.cancelOffscreen.SetChecked(sd.settings.GetCancelOffscreen())
	sd.insecureHostEntry.SetText(strings.Join(sd.settings.GetInsecureHosts(), ", "))
	sd.languageSelect.SetSelected(sd.settings.GetLanguage())
}

// formConfig builds a configuration from the form, keeping current values
// for fields left empty or unparsable
func (sd *SettingsDialog) formConfig() config.Config {
	cfg := sd.settings.Config()

	if v := strings.TrimSpace(sd.feedURLEntry.Text); v != "" {
		cfg.FeedURL = v
	}
	if n, err := strconv.Atoi(strings.TrimSpace(sd.feedLimitEntry.Text)); err == nil {
		cfg.FeedLimit = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(sd.iconSizeEntry.Text)); err == nil {
		cfg.IconSize = n
	}
	cfg.CancelOffscreen = sd.cancelOffscreen.Checked
	cfg.InsecureHosts = config.ParseHostList(sd.insecureHostEntry.Text)
	if sd.languageSelect.Selected != "" {
		cfg.Language = sd.languageSelect.Selected
	}
	return cfg
}

// save validates and persists the form; nothing is stored when validation fails
func (sd *SettingsDialog) save() (config.Config, error) {
	cfg := sd.formConfig()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	sd.settings.SetFeedURL(cfg.FeedURL)
	sd.settings.SetFeedLimit(cfg.FeedLimit)
	sd.settings.SetIconSize(cfg.IconSize)
	sd.settings.SetCancelOffscreen(cfg.CancelOffscreen)
	sd.settings.SetInsecureHosts(cfg.InsecureHosts)
	sd.settings.SetLanguage(cfg.Language)
	return sd.settings.Config(), nil
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	cfg, err := sd.save()
	if err != nil {
		dialog.ShowInformation(sd.localization.GetText(KeyInvalidSettings), err.Error(), sd.window)
		return
	}

	if sd.onSaved != nil {
		sd.onSaved(cfg)
	}

	// Show confirmation
	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
}
