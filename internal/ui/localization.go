package ui

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle         = "app_title"
	KeyReload           = "reload"
	KeySettings         = "settings"
	KeyFile             = "file"
	KeyLanguage         = "language"
	KeyLoading          = "loading"
	KeyFeedErrorTitle   = "feed_error_title"
	KeyFeedURL          = "feed_url"
	KeyFeedLimit        = "feed_limit"
	KeyIconSize         = "icon_size"
	KeyCancelOffscreen  = "cancel_offscreen"
	KeyInsecureHosts    = "insecure_hosts"
	KeyInsecureHostsTip = "insecure_hosts_tip"
	KeySave             = "save"
	KeyCancel           = "cancel"
	KeySettingsSaved    = "settings_saved"
	KeyInvalidSettings  = "invalid_settings"
	KeyErrorOpeningLink = "error_opening_link"
	KeyNoApps           = "no_apps"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:         "Top Paid Apps",
		KeyReload:           "Reload",
		KeySettings:         "Settings",
		KeyFile:             "File",
		KeyLanguage:         "Language",
		KeyLoading:          "Loading…",
		KeyFeedErrorTitle:   "Cannot Show Top Paid Apps",
		KeyFeedURL:          "Feed URL",
		KeyFeedLimit:        "Number of Apps",
		KeyIconSize:         "Icon Size (px)",
		KeyCancelOffscreen:  "Cancel off-screen downloads",
		KeyInsecureHosts:    "Plain HTTP Hosts",
		KeyInsecureHostsTip: "comma separated, e.g. legacy.example.com",
		KeySave:             "Save",
		KeyCancel:           "Cancel",
		KeySettingsSaved:    "Settings saved successfully!",
		KeyInvalidSettings:  "Invalid settings",
		KeyErrorOpeningLink: "Error opening link",
		KeyNoApps:           "No apps in feed",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle:         "Топ платных приложений",
		KeyReload:           "Обновить",
		KeySettings:         "Настройки",
		KeyFile:             "Файл",
		KeyLanguage:         "Язык",
		KeyLoading:          "Загрузка…",
		KeyFeedErrorTitle:   "Не удалось показать топ платных приложений",
		KeyFeedURL:          "Адрес ленты",
		KeyFeedLimit:        "Количество приложений",
		KeyIconSize:         "Размер иконки (px)",
		KeyCancelOffscreen:  "Отменять загрузки вне экрана",
		KeyInsecureHosts:    "Хосты без HTTPS",
		KeyInsecureHostsTip: "через запятую, например legacy.example.com",
		KeySave:             "Сохранить",
		KeyCancel:           "Отмена",
		KeySettingsSaved:    "Настройки успешно сохранены!",
		KeyInvalidSettings:  "Неверные настройки",
		KeyErrorOpeningLink: "Ошибка открытия ссылки",
		KeyNoApps:           "В ленте нет приложений",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyAppTitle:         "Apps Pagos Populares",
		KeyReload:           "Recarregar",
		KeySettings:         "Configurações",
		KeyFile:             "Arquivo",
		KeyLanguage:         "Idioma",
		KeyLoading:          "Carregando…",
		KeyFeedErrorTitle:   "Não é possível mostrar os apps pagos",
		KeyFeedURL:          "URL do Feed",
		KeyFeedLimit:        "Número de Apps",
		KeyIconSize:         "Tamanho do Ícone (px)",
		KeyCancelOffscreen:  "Cancelar downloads fora da tela",
		KeyInsecureHosts:    "Hosts HTTP Simples",
		KeyInsecureHostsTip: "separados por vírgula, ex. legacy.example.com",
		KeySave:             "Salvar",
		KeyCancel:           "Cancelar",
		KeySettingsSaved:    "Configurações salvas com sucesso!",
		KeyInvalidSettings:  "Configurações inválidas",
		KeyErrorOpeningLink: "Erro ao abrir link",
		KeyNoApps:           "Nenhum app no feed",
	}
}
