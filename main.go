package main

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/mtgget/mtg-downloader/internal/config"
	"github.com/mtgget/mtg-downloader/internal/download"
	"github.com/mtgget/mtg-downloader/internal/i18n"
	"github.com/mtgget/mtg-downloader/internal/mtgjson"
	"github.com/mtgget/mtg-downloader/internal/platform"
	"github.com/mtgget/mtg-downloader/internal/scryfall"
	"github.com/mtgget/mtg-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.mtgget.mtg-downloader"
	AppName = "Magic All Cards"

	WindowWidth  = 960
	WindowHeight = 680
)

func main() {
	// Log version information
	fmt.Printf("%s v%s starting...\n", AppName, version)

	// Create new Fyne app
	myApp := app.NewWithID(AppID)

	// Apply compact theme
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(AppName)
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	// Initialize services
	baseDir := platform.BaseDir()
	settings := config.NewSettings(filepath.Join(baseDir, "config.json"))

	localization := i18n.NewLocalization()
	localization.SetLanguage(settings.GetAppLanguage())

	database := mtgjson.NewClient(mtgjson.DefaultPaths(baseDir))
	images := scryfall.NewClient()
	downloadSvc := download.NewService(database, images, localization, download.DefaultOptions())

	// Create and setup UI
	ui.NewRootUI(myWindow, downloadSvc, settings, localization)

	// Show and run
	myWindow.ShowAndRun()
}
