package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
	IconFile     = "📄"
	IconBack     = "←"
	IconImage    = "🖼"
)

// Text fragments
const (
	MiddleDotSeparator = " · "
	DashPlaceholder    = "—"
)

// Layout sizing
const (
	SizeLabelWidth float32 = 80
	RowMinHeight   float32 = 36

	ToolCardWidth  float32 = 220
	ToolCardHeight float32 = 120

	DimensionEntryWidth float32 = 90
)

// Dialog sizing
const (
	SettingsDialogWidth  float32 = 520
	SettingsDialogHeight float32 = 480
)

// Notification behavior
const (
	NotificationAutoHide = 5 * time.Second
)

// File size formatting constants
const (
	FileSizeUnit  = 1024
	FileSizeUnits = "KMGTPE"
)
