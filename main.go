package main

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/microtools/micro-tools/internal/config"
	"github.com/microtools/micro-tools/internal/convert"
	"github.com/microtools/micro-tools/internal/platform"
	"github.com/microtools/micro-tools/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.microtools.micro-tools"
	AppName = "Micro Tools"

	WindowWidth  = 860
	WindowHeight = 640
)

func main() {
	log.Printf("%s v%s starting...", AppName, version)

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(ui.AppIcon)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	settings := config.NewSettings(myApp)
	if err := platform.CreateDirectoryIfNotExists(settings.GetOutputDirectory()); err != nil {
		log.Printf("failed to ensure output dir: %v", err)
	}

	converter := convert.NewService()
	ui.NewRootUI(myWindow, myApp, converter)

	myWindow.ShowAndRun()
}
