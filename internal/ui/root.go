package ui

import (
	"context"
	"errors"
	"log"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/lazyicons/internal/config"
	"github.com/ytget/lazyicons/internal/download"
	"github.com/ytget/lazyicons/internal/feed"
	"github.com/ytget/lazyicons/internal/lazyload"
	"github.com/ytget/lazyicons/internal/model"
)

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	settings     *config.Settings
	localization *Localization
	mobile       *MobileUI

	cfg         config.Config
	iconSize    int
	store       *model.Store
	coordinator *lazyload.Coordinator
	feedClient  *feed.Client
	activity    *NetworkActivity

	list       *widget.List
	pitch      float32
	tracker    *ScrollTracker
	titleLabel *widget.Label
	reloadBtn  *widget.Button
	spinner    *widget.Activity

	visible    []model.RowKey
	cancelLoad context.CancelFunc
}

// NewRootUI creates and initializes the main UI. cfg must already be
// validated.
func NewRootUI(window fyne.Window, app fyne.App, settings *config.Settings, cfg config.Config) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(cfg.Language)

	ui := &RootUI{
		window:       window,
		app:          app,
		settings:     settings,
		localization: localization,
		mobile:       NewMobileUI(app),
		store:        model.NewStore(),
		activity:     NewNetworkActivity(),
	}
	ui.configure(cfg)

	window.SetTitle(localization.GetText(KeyAppTitle))

	ui.setupUI()

	window.SetOnClosed(ui.Shutdown)
	app.Lifecycle().SetOnStopped(ui.Shutdown)

	log.Printf("RootUI initialized: feed=%s icon_size=%d cancel_offscreen=%v",
		cfg.FeedURL, ui.iconSize, cfg.CancelOffscreen)
	return ui
}

// configure builds the icon pipeline for cfg, replacing any previous one
func (ui *RootUI) configure(cfg config.Config) {
	if ui.coordinator != nil {
		ui.coordinator.Shutdown()
	}

	ui.cfg = cfg
	ui.iconSize = ui.mobile.RowIconSize(cfg.IconSize)
	ui.pitch = 0
	policy := cfg.Policy()

	fetcher := download.NewHTTPFetcher(
		download.WithPolicy(policy),
		download.WithIconSize(ui.iconSize),
	)
	ui.feedClient = feed.NewClient(
		feed.WithPolicy(policy),
		feed.WithIconSize(ui.iconSize),
	)
	ui.coordinator = lazyload.NewCoordinator(ui.store, fetcher,
		lazyload.WithDispatcher(fyne.Do),
		lazyload.WithRefresh(ui.onIconLoaded),
		lazyload.WithActivity(ui.activity),
		lazyload.WithCancelOffscreen(cfg.CancelOffscreen),
	)
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	ui.titleLabel = widget.NewLabel(ui.localization.GetText(KeyAppTitle))
	ui.titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	ui.reloadBtn = ui.mobile.CreateToolbarButton(IconReload, ui.Reload)
	settingsBtn := ui.mobile.CreateToolbarButton(IconSettings, ui.onShowSettings)

	ui.spinner = widget.NewActivity()
	ui.spinner.Hide()
	ui.activity.Binding().AddListener(binding.NewDataListener(ui.onActivityChanged))

	left := []fyne.CanvasObject{}
	if logo, err := LoadLogoResource(); err == nil {
		logoImage := canvas.NewImageFromResource(logo)
		logoImage.SetMinSize(fyne.NewSize(28, 28))
		logoImage.FillMode = canvas.ImageFillContain
		left = append(left, logoImage)
	}
	left = append(left, ui.titleLabel)
	topPanel := container.NewBorder(nil, nil,
		container.NewHBox(left...),
		container.NewHBox(ui.spinner, ui.reloadBtn, settingsBtn),
	)

	ui.list = widget.NewList(ui.listLength, ui.createRow, ui.updateRow)
	ui.list.OnSelected = ui.onRowSelected

	ui.tracker = NewScrollTracker(ui.list, ui.rowPitch, ui.listLength, ScrollCallbacks{
		OnScrollStarted: ui.onScrollStarted,
		OnScrollSettled: ui.onScrollSettled,
		OnRangeChanged:  ui.onRangeChanged,
	})

	content := container.NewBorder(
		container.NewVBox(topPanel, widget.NewSeparator()),
		nil, nil, nil,
		ui.mobile.WrapList(ui.list, ui.Reload),
	)
	ui.window.SetContent(content)

	log.Printf("UI setup completed successfully")
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	reloadItem := fyne.NewMenuItem(ui.localization.GetText(KeyReload), ui.Reload)
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code // Capture for closure
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), reloadItem, settingsItem),
		languageMenu,
	))
}

// Start begins scroll tracking and loads the feed
func (ui *RootUI) Start() {
	ui.tracker.Start()
	ui.Reload()
}

// Reload fetches the feed again. A load already in progress is abandoned.
func (ui *RootUI) Reload() {
	if ui.cancelLoad != nil {
		ui.cancelLoad()
	}
	ctx, cancel := context.WithCancel(context.Background())
	ui.cancelLoad = cancel

	log.Printf("Loading feed %s (limit %d)", ui.cfg.FeedURL, ui.cfg.FeedLimit)
	ui.activity.Begin()
	ui.feedClient.Load(ctx, ui.cfg.FeedURL, ui.cfg.FeedLimit, func(records []*model.FeedRecord, err error) {
		fyne.Do(func() {
			ui.activity.End()
			ui.onFeedLoaded(ctx, records, err)
		})
	})
}

// onFeedLoaded installs a new snapshot or reports the failure
func (ui *RootUI) onFeedLoaded(ctx context.Context, records []*model.FeedRecord, err error) {
	if ctx.Err() != nil {
		// superseded by a newer reload or shut down
		return
	}
	if err != nil {
		log.Printf("Feed load failed: %v", err)
		if errors.Is(err, context.Canceled) {
			return
		}
		dialog.NewInformation(ui.localization.GetText(KeyFeedErrorTitle), err.Error(), ui.window).Show()
		return
	}

	log.Printf("Feed loaded: %d records", len(records))
	ui.coordinator.ReplaceRecords(records)
	ui.visible = nil
	ui.list.UnselectAll()
	ui.list.Refresh()
	ui.list.ScrollToTop()
	ui.tracker.Invalidate()
}

// Shutdown stops scroll tracking, abandons feed loading and cancels every
// icon fetch
func (ui *RootUI) Shutdown() {
	ui.tracker.Stop()
	if ui.cancelLoad != nil {
		ui.cancelLoad()
	}
	ui.coordinator.Shutdown()
}

// listLength returns placeholder rows until the first snapshot arrives
func (ui *RootUI) listLength() int {
	if !ui.store.Loaded() {
		return PlaceholderRowCount
	}
	return ui.store.Len()
}

// rowPitch returns the distance between consecutive row tops
func (ui *RootUI) rowPitch() float32 {
	if ui.pitch == 0 {
		ui.pitch = ui.createRow().MinSize().Height + theme.SeparatorThicknessSize()
	}
	return ui.pitch
}

func (ui *RootUI) createRow() fyne.CanvasObject {
	return NewAppRow(ui.iconSize)
}

func (ui *RootUI) updateRow(id widget.ListItemID, item fyne.CanvasObject) {
	row, ok := item.(*AppRow)
	if !ok {
		return
	}

	if !ui.store.Loaded() {
		if id == 0 {
			row.SetMessage(ui.localization.GetText(KeyLoading))
		} else {
			row.SetMessage("")
		}
		return
	}

	record, ok := ui.store.At(id)
	if !ok {
		row.SetMessage("")
		return
	}
	row.SetRecord(record)
}

// onRangeChanged forwards the visible rows to the coordinator
func (ui *RootUI) onRangeChanged(first, last int) {
	if !ui.store.Loaded() {
		return
	}
	var keys []model.RowKey
	if first >= 0 {
		keys = ui.store.KeysInRange(first, last)
	}

	for _, key := range leftView(ui.visible, keys) {
		ui.coordinator.OnRowLeftView(key)
	}
	ui.visible = keys
	ui.coordinator.OnVisibleRangeChanged(keys)
}

func (ui *RootUI) onScrollStarted() {
	ui.coordinator.OnScrollStarted()
}

func (ui *RootUI) onScrollSettled() {
	ui.coordinator.OnScrollSettled()
}

// onIconLoaded refreshes the row showing key, if it is still listed
func (ui *RootUI) onIconLoaded(key model.RowKey) {
	if index, ok := ui.store.IndexOf(key); ok {
		ui.list.RefreshItem(index)
	}
}

// onRowSelected opens the store page of the tapped app
func (ui *RootUI) onRowSelected(id widget.ListItemID) {
	ui.list.Unselect(id)

	record, ok := ui.store.At(id)
	if !ok || record.StoreURL == "" {
		return
	}
	link, err := url.Parse(record.StoreURL)
	if err != nil {
		log.Printf("Invalid store URL %q: %v", record.StoreURL, err)
		return
	}
	if err := ui.app.OpenURL(link); err != nil {
		dialog.ShowInformation(ui.localization.GetText(KeyErrorOpeningLink), err.Error(), ui.window)
	}
}

// onActivityChanged shows the spinner while network work is running
func (ui *RootUI) onActivityChanged() {
	if ui.activity.Active() {
		ui.spinner.Show()
		ui.spinner.Start()
	} else {
		ui.spinner.Stop()
		ui.spinner.Hide()
	}
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.localization, ui.window, ui.onSettingsSaved).Show()
}

// onSettingsSaved rebuilds the icon pipeline and reloads the feed
func (ui *RootUI) onSettingsSaved(cfg config.Config) {
	if cfg.Language != ui.cfg.Language {
		ui.onLanguageChange(cfg.Language)
	}

	ui.configure(cfg)
	ui.store.Reset()
	ui.visible = nil
	ui.list.Refresh()
	ui.tracker.Invalidate()
	ui.Reload()
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.cfg.Language = langCode

	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	ui.titleLabel.SetText(ui.localization.GetText(KeyAppTitle))
	ui.createMenu()
	ui.list.Refresh()
}

// leftView returns the keys of before that are not in after
func leftView(before, after []model.RowKey) []model.RowKey {
	if len(before) == 0 {
		return nil
	}
	current := make(map[model.RowKey]bool, len(after))
	for _, key := range after {
		current[key] = true
	}
	var gone []model.RowKey
	for _, key := range before {
		if !current[key] {
			gone = append(gone, key)
		}
	}
	return gone
}
