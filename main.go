package main

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/lazyicons/internal/config"
	"github.com/ytget/lazyicons/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.lazyicons"
	AppName = "Lazy Icons"
)

func main() {
	log.Printf("%s v%s starting...", AppName, version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewListTheme(fyne.CurrentDevice().IsMobile()))

	settings := config.NewSettings(myApp)
	cfg := settings.Config()

	// A feed endpoint the transport policy rejects is a startup error,
	// reported before any window is shown.
	if err := cfg.Validate(); err != nil {
		log.Fatalf("cannot start: %v", err)
	}

	myWindow := myApp.NewWindow(AppName)
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	rootUI := ui.NewRootUI(myWindow, myApp, settings, cfg)
	rootUI.Start()

	myWindow.ShowAndRun()
}
