package ui

import (
	_ "embed"

	"fyne.io/fyne/v2"
)

//go:embed assets/micro-tools.png
var appIconPNG []byte

// AppIcon is the application logo, bundled into the binary
var AppIcon = fyne.NewStaticResource("micro-tools.png", appIconPNG)
