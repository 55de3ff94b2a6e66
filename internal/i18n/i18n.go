package i18n

import (
	"fmt"
	"sync"
)

// Localization manages the en/pt text catalog shared by the UI and the
// download pipeline (log, status and progress text travels through the
// event channel already localized). The UI can switch languages while a
// pipeline goroutine localizes text, so the active language is guarded.
type Localization struct {
	mu              sync.RWMutex
	currentLanguage string
	texts           map[string]map[string]string
}

// DefaultLanguage is the fallback locale for missing languages and keys.
const DefaultLanguage = "en"

// Text keys. Entries with fmt verbs document their arguments.
const (
	KeyAppTitle       = "app_title"
	KeyDownloadDB     = "download_db"
	KeyLoadSets       = "load_sets"
	KeyChooseDest     = "choose_dest"
	KeyFilters        = "filters"
	KeyCardType       = "card_type"
	KeyRarity         = "rarity"
	KeyNameContains   = "name_contains"
	KeySetFilter      = "set_filter"
	KeyImageLanguage  = "image_language"
	KeyAppLanguage    = "app_language"
	KeySets           = "sets"
	KeyDownloadCards  = "download_cards"
	KeyStopDownload   = "stop_download"
	KeyLog            = "log"
	KeyClearSelection = "clear_selection"

	KeyStatusReady            = "status_ready"
	KeyStatusDownloadingDB    = "status_downloading_db"
	KeyStatusFiltering        = "status_filtering"
	KeyStatusDownloadingCards = "status_downloading_cards" // %d total

	KeyMissingAllPrintings = "missing_allprintings"
	KeyMissingSets         = "missing_sets"
	KeyMissingSelection    = "missing_selection"
	KeyErrorNoCards        = "error_no_cards"

	KeyDownloadLargeTitle = "download_large_title"
	KeyDownloadLargeText  = "download_large_text" // %d cards, %.1f GB

	KeyLogDownloadStart       = "download_log_start" // %d cards
	KeyLogDownloadDone        = "download_log_done"
	KeyLogDownloadCancelled   = "log_download_cancelled"
	KeyLogDownloadStopped     = "log_download_stopped"
	KeyLogDownloadSuccess     = "log_download_success"     // %s lang, %s set, %s card
	KeyLogDownloadFallback    = "log_download_fallback"    // %s set, %s card
	KeyLogDownloadRetry       = "log_download_retry"       // %d attempt, %d total, %s lang, %s set, %s card, %s reason
	KeyLogDownloadFailure     = "log_download_failure"     // %s lang, %d attempts, %s set, %s card, %s reason
	KeyLogLanguageUnavailable = "log_language_unavailable" // %s lang, %s set
	KeyProgressCardsLabel     = "progress_cards_label"     // %s percent, %d downloaded, %d total
	KeyCardFallbackName       = "card_fallback_name"

	KeyErrorTitle   = "error_title"
	KeyErrorUnknown = "error_unknown"
	KeyWarningTitle = "warning_title"
	KeyInfoTitle    = "info_title"

	KeyMetaFail           = "meta_fail"
	KeyDownloadInProgress = "download_in_progress"
	KeyLogDBStart         = "log_db_start"
	KeyLogDBDoneHint      = "log_db_done_hint"
	KeyErrorDBDownload    = "error_db_download" // %s reason
	KeySetsLoading        = "sets_loading"
	KeySetsLoaded         = "sets_loaded" // %d count
	KeyLogSetsInProgress  = "log_sets_in_progress"
	KeyErrorLoadSets      = "error_load_sets" // %s reason
	KeyLogDBCorrupted     = "log_db_corrupted"
)

// NewLocalization creates a catalog starting in the default language.
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: DefaultLanguage,
		texts:           make(map[string]map[string]string),
	}
	l.initializeTexts()
	return l
}

// SetLanguage switches the active language when it is available.
func (l *Localization) SetLanguage(lang string) {
	if _, exists := l.texts[lang]; !exists {
		return
	}
	l.mu.Lock()
	l.currentLanguage = lang
	l.mu.Unlock()
}

// GetCurrentLanguage returns the active language code.
func (l *Localization) GetCurrentLanguage() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentLanguage
}

// GetAvailableLanguages returns the selectable application languages with
// their display names.
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"pt": "Português",
	}
}

// GetText returns the localized text for key, falling back to English and
// finally to the key itself.
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.GetCurrentLanguage()]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}
	if texts, exists := l.texts[DefaultLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}
	return key
}

// Textf formats the localized template for key with the given arguments.
func (l *Localization) Textf(key string, args ...any) string {
	if len(args) == 0 {
		return l.GetText(key)
	}
	return fmt.Sprintf(l.GetText(key), args...)
}

// initializeTexts fills the catalog.
func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:       "Magic All Cards",
		KeyDownloadDB:     "Download/Update MTGJSON",
		KeyLoadSets:       "Load sets",
		KeyChooseDest:     "Choose destination folder",
		KeyFilters:        "Filters",
		KeyCardType:       "Card type:",
		KeyRarity:         "Rarity:",
		KeyNameContains:   "Name contains:",
		KeySetFilter:      "Filter set:",
		KeyImageLanguage:  "Image language:",
		KeyAppLanguage:    "App language:",
		KeySets:           "Available sets",
		KeyDownloadCards:  "Download selected cards",
		KeyStopDownload:   "Stop download",
		KeyLog:            "Log",
		KeyClearSelection: "Clear selection",

		KeyStatusReady:            "Ready",
		KeyStatusDownloadingDB:    "Downloading MTGJSON database...",
		KeyStatusFiltering:        "Filtering cards...",
		KeyStatusDownloadingCards: "Downloading %d cards...",

		KeyMissingAllPrintings: "Download AllPrintings.json first.",
		KeyMissingSets:         "Load the sets before downloading.",
		KeyMissingSelection:    "Select at least one set.",
		KeyErrorNoCards:        "No cards found with the selected filters.",

		KeyDownloadLargeTitle: "Huge download",
		KeyDownloadLargeText:  "You selected about %d cards (~%.1f GB).\n\nDo you want to continue?",

		KeyLogDownloadStart:       "Starting download of %d cards.",
		KeyLogDownloadDone:        "Download finished.",
		KeyLogDownloadCancelled:   "Download canceled after size warning.",
		KeyLogDownloadStopped:     "Download stopped by the user.",
		KeyLogDownloadSuccess:     "Downloaded [%s]: %s - %s",
		KeyLogDownloadFallback:    "Downloaded (fallback EN): %s - %s",
		KeyLogDownloadRetry:       "Attempt %d/%d failed [%s]: %s - %s. Reason: %s",
		KeyLogDownloadFailure:     "Failed [%s] after %d attempts: %s - %s. Reason: %s",
		KeyLogLanguageUnavailable: "No %s translations on Scryfall for %s. Falling back to EN for the rest of the set.",
		KeyProgressCardsLabel:     "%s%% (%d/%d cards)",
		KeyCardFallbackName:       "Card",

		KeyErrorTitle:   "Error",
		KeyErrorUnknown: "Unknown reason",
		KeyWarningTitle: "Warning",
		KeyInfoTitle:    "Information",

		KeyMetaFail:           "Unable to reach MTGJSON Meta. Using local cache.",
		KeyDownloadInProgress: "Another download is already running.",
		KeyLogDBStart:         "Starting download of AllPrintings.json",
		KeyLogDBDoneHint:      "Download finished. Click 'Load sets'.",
		KeyErrorDBDownload:    "Failed to download database: %s",
		KeySetsLoading:        "Loading sets...",
		KeySetsLoaded:         "%d sets loaded.",
		KeyLogSetsInProgress:  "Set loading is already running.",
		KeyErrorLoadSets:      "Failed to load sets: %s",
		KeyLogDBCorrupted:     "AllPrintings.json looks corrupted. Downloading it again...",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:       "Magic All Cards",
		KeyDownloadDB:     "Baixar/Atualizar banco MTGJSON",
		KeyLoadSets:       "Carregar sets",
		KeyChooseDest:     "Selecionar pasta de destino",
		KeyFilters:        "Filtros",
		KeyCardType:       "Tipo de carta:",
		KeyRarity:         "Raridade:",
		KeyNameContains:   "Nome contém:",
		KeySetFilter:      "Filtrar set:",
		KeyImageLanguage:  "Idioma das imagens:",
		KeyAppLanguage:    "Idioma do app:",
		KeySets:           "Sets disponíveis",
		KeyDownloadCards:  "Baixar cartas selecionadas",
		KeyStopDownload:   "Parar download",
		KeyLog:            "Log",
		KeyClearSelection: "Limpar seleção",

		KeyStatusReady:            "Pronto",
		KeyStatusDownloadingDB:    "Baixando base MTGJSON...",
		KeyStatusFiltering:        "Filtrando cartas...",
		KeyStatusDownloadingCards: "Baixando %d cartas...",

		KeyMissingAllPrintings: "Baixe o AllPrintings.json antes.",
		KeyMissingSets:         "Carregue os sets antes de baixar.",
		KeyMissingSelection:    "Escolha pelo menos um set.",
		KeyErrorNoCards:        "Nenhuma carta encontrada com os filtros informados.",

		KeyDownloadLargeTitle: "Download muito grande",
		KeyDownloadLargeText:  "Você selecionou aproximadamente %d cartas (~%.1f GB).\n\nDeseja continuar mesmo assim?",

		KeyLogDownloadStart:       "Iniciando download de %d cartas.",
		KeyLogDownloadDone:        "Download finalizado.",
		KeyLogDownloadCancelled:   "Download cancelado após alerta de tamanho.",
		KeyLogDownloadStopped:     "Download interrompido pelo usuário.",
		KeyLogDownloadSuccess:     "Baixado [%s]: %s - %s",
		KeyLogDownloadFallback:    "Baixado (fallback EN): %s - %s",
		KeyLogDownloadRetry:       "Tentativa %d/%d falhou [%s]: %s - %s. Motivo: %s",
		KeyLogDownloadFailure:     "Falhou [%s] após %d tentativas: %s - %s. Motivo: %s",
		KeyLogLanguageUnavailable: "Sem traduções %s no Scryfall para %s. Usando EN no restante do set.",
		KeyProgressCardsLabel:     "%s%% (%d/%d cartas)",
		KeyCardFallbackName:       "Carta",

		KeyErrorTitle:   "Erro",
		KeyErrorUnknown: "Motivo desconhecido",
		KeyWarningTitle: "Aviso",
		KeyInfoTitle:    "Informação",

		KeyMetaFail:           "Não foi possível consultar o Meta do MTGJSON. Usando cache local.",
		KeyDownloadInProgress: "Outro download já está em andamento.",
		KeyLogDBStart:         "Iniciando download do AllPrintings.json",
		KeyLogDBDoneHint:      "Download concluído. Clique em 'Carregar sets'.",
		KeyErrorDBDownload:    "Falha ao baixar banco: %s",
		KeySetsLoading:        "Carregando sets...",
		KeySetsLoaded:         "%d sets carregados.",
		KeyLogSetsInProgress:  "Carregamento de sets já está em andamento.",
		KeyErrorLoadSets:      "Erro ao carregar sets: %s",
		KeyLogDBCorrupted:     "AllPrintings.json parece corrompido. Baixando novamente...",
	}
}
