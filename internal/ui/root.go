package ui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/mtgget/mtg-downloader/internal/config"
	"github.com/mtgget/mtg-downloader/internal/download"
	"github.com/mtgget/mtg-downloader/internal/filter"
	"github.com/mtgget/mtg-downloader/internal/i18n"
	"github.com/mtgget/mtg-downloader/internal/model"
	"github.com/mtgget/mtg-downloader/internal/naming"
	"github.com/mtgget/mtg-downloader/internal/platform"
)

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	svc          *download.Service
	settings     *config.Settings
	localization *i18n.Localization

	metadata []model.SetMetadata
	filtered []model.SetMetadata

	downloading bool
	runToken    *download.CancelToken
	runID       string
	destination string

	btnDownloadDB *widget.Button
	btnLoadSets   *widget.Button
	btnChooseDest *widget.Button
	btnOpenDest   *widget.Button
	btnStart      *widget.Button
	btnStop       *widget.Button
	btnClearSel   *widget.Button

	typeSelect     *widget.Select
	raritySelect   *widget.Select
	languageSelect *widget.Select
	appLangSelect  *widget.Select
	nameEntry      *widget.Entry
	setSearchEntry *widget.Entry
	destLabel      *widget.Label

	typeDisplayToKey   map[string]string
	rarityDisplayToKey map[string]string

	setGroup  *widget.CheckGroup
	setScroll *container.Scroll

	filtersLabel  *widget.Label
	typeLabel     *widget.Label
	rarityLabel   *widget.Label
	nameLabel     *widget.Label
	searchLabel   *widget.Label
	imageLang     *widget.Label
	appLangLabel  *widget.Label
	setsLabel     *widget.Label
	logTitle      *widget.Label
	progressBar   *widget.ProgressBar
	progressLabel *widget.Label
	statusLabel   *widget.Label

	logLabel  *widget.Label
	logScroll *container.Scroll
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, svc *download.Service, settings *config.Settings, localization *i18n.Localization) *RootUI {
	defaultDest := filepath.Join(platform.BaseDir(), "MTG_IMAGES")

	ui := &RootUI{
		window:       window,
		svc:          svc,
		settings:     settings,
		localization: localization,
		destination:  settings.GetDestination(defaultDest),
	}

	window.SetTitle(localization.GetText(i18n.KeyAppTitle))

	ui.setupUI()
	ui.startEventLoop()
	ui.svc.Bootstrap()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	loc := ui.localization

	ui.btnDownloadDB = widget.NewButton(loc.GetText(i18n.KeyDownloadDB), ui.onDownloadDatabase)
	ui.btnLoadSets = widget.NewButton(loc.GetText(i18n.KeyLoadSets), ui.onLoadSets)
	ui.btnChooseDest = widget.NewButton(loc.GetText(i18n.KeyChooseDest), ui.onChooseDestination)
	ui.btnOpenDest = widget.NewButton("📁", ui.onOpenDestination)
	ui.destLabel = widget.NewLabel(ui.destination)
	ui.destLabel.Truncation = fyne.TextTruncateEllipsis

	ui.typeDisplayToKey = make(map[string]string)
	ui.rarityDisplayToKey = make(map[string]string)

	ui.typeSelect = widget.NewSelect(nil, nil)
	ui.raritySelect = widget.NewSelect(nil, nil)
	ui.rebuildFilterSelects()

	ui.nameEntry = widget.NewEntry()

	languageOptions := make([]string, len(naming.LanguageChoices))
	for i, choice := range naming.LanguageChoices {
		languageOptions[i] = choice.Display()
	}
	ui.languageSelect = widget.NewSelect(languageOptions, func(display string) {
		ui.settings.SetImageLanguage(naming.LanguageCodeFromDisplay(display))
	})
	ui.selectImageLanguage(ui.settings.GetImageLanguage())

	ui.appLangSelect = widget.NewSelect([]string{"English", "Português"}, ui.onAppLanguageChanged)
	if ui.settings.GetAppLanguage() == "pt" {
		ui.appLangSelect.SetSelected("Português")
	} else {
		ui.appLangSelect.SetSelected("English")
	}

	ui.setSearchEntry = widget.NewEntry()
	ui.setSearchEntry.OnChanged = func(string) { ui.refreshSetList() }

	ui.setGroup = widget.NewCheckGroup(nil, nil)
	ui.setScroll = container.NewVScroll(ui.setGroup)
	ui.setScroll.SetMinSize(fyne.NewSize(0, SetListHeight))

	ui.btnClearSel = widget.NewButton(loc.GetText(i18n.KeyClearSelection), func() {
		ui.setGroup.SetSelected(nil)
	})

	ui.btnStart = widget.NewButton(loc.GetText(i18n.KeyDownloadCards), ui.onStartDownload)
	ui.btnStart.Disable()
	ui.btnStop = widget.NewButton(loc.GetText(i18n.KeyStopDownload), ui.onStopDownload)
	ui.btnStop.Disable()

	ui.progressBar = widget.NewProgressBar()
	ui.progressLabel = widget.NewLabel("")
	ui.statusLabel = widget.NewLabel(loc.GetText(i18n.KeyStatusReady))

	ui.logLabel = widget.NewLabel("")
	ui.logLabel.Wrapping = fyne.TextWrapWord
	ui.logScroll = container.NewVScroll(ui.logLabel)
	ui.logScroll.SetMinSize(fyne.NewSize(0, LogPanelHeight))

	ui.filtersLabel = widget.NewLabelWithStyle(loc.GetText(i18n.KeyFilters), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.typeLabel = widget.NewLabel(loc.GetText(i18n.KeyCardType))
	ui.rarityLabel = widget.NewLabel(loc.GetText(i18n.KeyRarity))
	ui.nameLabel = widget.NewLabel(loc.GetText(i18n.KeyNameContains))
	ui.searchLabel = widget.NewLabel(loc.GetText(i18n.KeySetFilter))
	ui.imageLang = widget.NewLabel(loc.GetText(i18n.KeyImageLanguage))
	ui.appLangLabel = widget.NewLabel(loc.GetText(i18n.KeyAppLanguage))
	ui.setsLabel = widget.NewLabelWithStyle(loc.GetText(i18n.KeySets), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.logTitle = widget.NewLabelWithStyle(loc.GetText(i18n.KeyLog), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	topButtons := container.NewHBox(ui.btnDownloadDB, ui.btnLoadSets, ui.btnChooseDest, ui.btnOpenDest)

	filterGrid := container.NewGridWithColumns(2,
		ui.typeLabel, ui.typeSelect,
		ui.rarityLabel, ui.raritySelect,
		ui.nameLabel, ui.nameEntry,
		ui.imageLang, ui.languageSelect,
		ui.appLangLabel, ui.appLangSelect,
		ui.searchLabel, ui.setSearchEntry,
	)

	actions := container.NewHBox(ui.btnStart, ui.btnStop, ui.btnClearSel)
	progressRow := container.NewBorder(nil, nil, nil, ui.progressLabel, ui.progressBar)

	content := container.NewVBox(
		topButtons,
		ui.destLabel,
		ui.filtersLabel,
		filterGrid,
		ui.setsLabel,
		ui.setScroll,
		actions,
		progressRow,
		ui.statusLabel,
		ui.logTitle,
		ui.logScroll,
	)

	ui.window.SetContent(container.NewPadded(content))
}

// startEventLoop drains the service event channel onto the canvas thread.
func (ui *RootUI) startEventLoop() {
	go func() {
		ticker := time.NewTicker(EventPollInterval)
		defer ticker.Stop()
		for range ticker.C {
			ui.drainEvents()
		}
	}()
}

func (ui *RootUI) drainEvents() {
	for {
		select {
		case event := <-ui.svc.Events():
			fyne.Do(func() { ui.handleEvent(event) })
		default:
			return
		}
	}
}

// handleEvent dispatches one pipeline event. Runs on the canvas thread.
func (ui *RootUI) handleEvent(event model.Event) {
	switch event.Kind {
	case model.EventLog:
		ui.appendLog(event.Text)
	case model.EventStatus:
		ui.statusLabel.SetText(event.Text)
	case model.EventProgress:
		ui.progressBar.SetValue(event.Progress.Percent / 100)
		ui.progressLabel.SetText(event.Progress.Label)
	case model.EventSetsLoaded:
		ui.onSetsLoaded(event.Sets)
	case model.EventError:
		ui.appendLog(event.Text)
		dialog.ShowError(errors.New(event.Text), ui.window)
	case model.EventConfirm:
		ui.onConfirmRequest(event.Confirm)
	case model.EventDownloadComplete:
		ui.onDownloadComplete(event.Complete)
	}
}

func (ui *RootUI) appendLog(text string) {
	current := ui.logLabel.Text
	if current == "" {
		ui.logLabel.SetText(text)
	} else {
		ui.logLabel.SetText(current + "\n" + text)
	}
	ui.logScroll.ScrollToBottom()
}

func (ui *RootUI) onSetsLoaded(sets *model.SetsLoaded) {
	ui.metadata = sets.Metadata
	ui.refreshSetList()
	if !ui.downloading {
		ui.btnStart.Enable()
	}
}

// refreshSetList rebuilds the set check list from the current search text,
// keeping the selection for sets that stay visible.
func (ui *RootUI) refreshSetList() {
	search := strings.ToLower(strings.TrimSpace(ui.setSearchEntry.Text))
	if search == "" {
		ui.filtered = ui.metadata
	} else {
		ui.filtered = nil
		for _, item := range ui.metadata {
			if strings.Contains(item.Search, search) {
				ui.filtered = append(ui.filtered, item)
			}
		}
	}

	previous := make(map[string]bool, len(ui.setGroup.Selected))
	for _, display := range ui.setGroup.Selected {
		previous[display] = true
	}

	options := make([]string, len(ui.filtered))
	var selected []string
	for i, item := range ui.filtered {
		options[i] = setDisplay(item)
		if previous[options[i]] {
			selected = append(selected, options[i])
		}
	}
	ui.setGroup.Options = options
	ui.setGroup.SetSelected(selected)
	ui.setGroup.Refresh()
}

func setDisplay(item model.SetMetadata) string {
	return fmt.Sprintf("[%s] %s (%s)", item.Code, item.Name, item.Release)
}

// selectedSetCodes resolves the checked displays back to set codes in the
// listed order.
func (ui *RootUI) selectedSetCodes() []string {
	checked := make(map[string]bool, len(ui.setGroup.Selected))
	for _, display := range ui.setGroup.Selected {
		checked[display] = true
	}
	var codes []string
	for _, item := range ui.filtered {
		if checked[setDisplay(item)] {
			codes = append(codes, item.Code)
		}
	}
	return codes
}

func (ui *RootUI) onDownloadDatabase() {
	ui.svc.DownloadDatabase()
}

func (ui *RootUI) onLoadSets() {
	if !ui.svc.DatabaseReady() {
		dialog.ShowInformation(
			ui.localization.GetText(i18n.KeyWarningTitle),
			ui.localization.GetText(i18n.KeyMissingAllPrintings),
			ui.window,
		)
		return
	}
	ui.svc.LoadSets()
}

func (ui *RootUI) onChooseDestination() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		ui.destination = uri.Path()
		ui.destLabel.SetText(ui.destination)
		ui.settings.SetDestination(ui.destination)
	}, ui.window)
}

func (ui *RootUI) onOpenDestination() {
	if err := platform.OpenFolderInManager(ui.destination); err != nil {
		ui.appendLog(err.Error())
	}
}

func (ui *RootUI) onStartDownload() {
	loc := ui.localization
	if !ui.svc.HasSets() {
		dialog.ShowInformation(loc.GetText(i18n.KeyInfoTitle), loc.GetText(i18n.KeyMissingSets), ui.window)
		return
	}
	codes := ui.selectedSetCodes()
	if len(codes) == 0 {
		dialog.ShowInformation(loc.GetText(i18n.KeyWarningTitle), loc.GetText(i18n.KeyMissingSelection), ui.window)
		return
	}

	ui.downloading = true
	ui.runToken = download.NewCancelToken()
	ui.btnStart.Disable()
	ui.btnStop.Enable()

	ui.runID = ui.svc.DownloadCards(download.Request{
		SetCodes:     codes,
		TypeKey:      ui.typeDisplayToKey[ui.typeSelect.Selected],
		RarityKey:    ui.rarityDisplayToKey[ui.raritySelect.Selected],
		NameContains: ui.nameEntry.Text,
		LanguageCode: naming.LanguageCodeFromDisplay(ui.languageSelect.Selected),
		Destination:  ui.destination,
		AppLocale:    ui.localization.GetCurrentLanguage(),
		Token:        ui.runToken,
	})
}

func (ui *RootUI) onStopDownload() {
	if !ui.downloading || ui.runToken == nil {
		return
	}
	ui.runToken.Cancel()
	ui.btnStop.Disable()
}

// onDownloadComplete resets the run controls. Completions from a run the
// window did not start, such as a rejected duplicate, are ignored.
func (ui *RootUI) onDownloadComplete(complete *model.DownloadComplete) {
	if complete == nil || complete.RunID != ui.runID {
		return
	}
	ui.downloading = false
	ui.runToken = nil
	ui.runID = ""
	ui.btnStop.Disable()
	if ui.svc.HasSets() {
		ui.btnStart.Enable()
	}
}

func (ui *RootUI) onConfirmRequest(confirm *model.ConfirmRequest) {
	message := ui.localization.Textf(i18n.KeyDownloadLargeText, confirm.Count, confirm.EstimatedGB)
	dialog.ShowConfirm(
		ui.localization.GetText(i18n.KeyDownloadLargeTitle),
		message,
		func(proceed bool) { confirm.Reply <- proceed },
		ui.window,
	)
}

// rebuildFilterSelects fills the type and rarity selectors with localized
// labels, keeping the chosen keys.
func (ui *RootUI) rebuildFilterSelects() {
	locale := ui.localization.GetCurrentLanguage()

	previousType := ui.typeDisplayToKey[ui.typeSelect.Selected]
	if previousType == "" {
		previousType = filter.TypeOrder[0]
	}
	previousRarity := ui.rarityDisplayToKey[ui.raritySelect.Selected]
	if previousRarity == "" {
		previousRarity = filter.RarityOrder[0]
	}

	ui.typeDisplayToKey = make(map[string]string, len(filter.TypeOrder))
	typeOptions := make([]string, len(filter.TypeOrder))
	for i, key := range filter.TypeOrder {
		label := filter.TypeLabel(key, locale)
		typeOptions[i] = label
		ui.typeDisplayToKey[label] = key
	}
	ui.typeSelect.Options = typeOptions
	ui.typeSelect.SetSelected(filter.TypeLabel(previousType, locale))

	ui.rarityDisplayToKey = make(map[string]string, len(filter.RarityOrder))
	rarityOptions := make([]string, len(filter.RarityOrder))
	for i, key := range filter.RarityOrder {
		label := filter.RarityLabel(key, locale)
		rarityOptions[i] = label
		ui.rarityDisplayToKey[label] = key
	}
	ui.raritySelect.Options = rarityOptions
	ui.raritySelect.SetSelected(filter.RarityLabel(previousRarity, locale))
}

func (ui *RootUI) selectImageLanguage(code string) {
	for _, choice := range naming.LanguageChoices {
		if choice.Code == code {
			ui.languageSelect.SetSelected(choice.Display())
			return
		}
	}
	ui.languageSelect.SetSelected(naming.LanguageChoices[0].Display())
}

// onAppLanguageChanged switches the catalog and refreshes every static text.
func (ui *RootUI) onAppLanguageChanged(display string) {
	lang := "en"
	if display == "Português" {
		lang = "pt"
	}
	if lang == ui.localization.GetCurrentLanguage() {
		return
	}
	ui.localization.SetLanguage(lang)
	ui.settings.SetAppLanguage(lang)
	ui.applyTexts()
}

// applyTexts refreshes translatable widget texts in place.
func (ui *RootUI) applyTexts() {
	loc := ui.localization
	ui.window.SetTitle(loc.GetText(i18n.KeyAppTitle))
	ui.btnDownloadDB.SetText(loc.GetText(i18n.KeyDownloadDB))
	ui.btnLoadSets.SetText(loc.GetText(i18n.KeyLoadSets))
	ui.btnChooseDest.SetText(loc.GetText(i18n.KeyChooseDest))
	ui.btnClearSel.SetText(loc.GetText(i18n.KeyClearSelection))
	ui.btnStart.SetText(loc.GetText(i18n.KeyDownloadCards))
	ui.btnStop.SetText(loc.GetText(i18n.KeyStopDownload))
	ui.filtersLabel.SetText(loc.GetText(i18n.KeyFilters))
	ui.typeLabel.SetText(loc.GetText(i18n.KeyCardType))
	ui.rarityLabel.SetText(loc.GetText(i18n.KeyRarity))
	ui.nameLabel.SetText(loc.GetText(i18n.KeyNameContains))
	ui.searchLabel.SetText(loc.GetText(i18n.KeySetFilter))
	ui.imageLang.SetText(loc.GetText(i18n.KeyImageLanguage))
	ui.appLangLabel.SetText(loc.GetText(i18n.KeyAppLanguage))
	ui.setsLabel.SetText(loc.GetText(i18n.KeySets))
	ui.logTitle.SetText(loc.GetText(i18n.KeyLog))
	ui.statusLabel.SetText(loc.GetText(i18n.KeyStatusReady))
	ui.rebuildFilterSelects()
}
