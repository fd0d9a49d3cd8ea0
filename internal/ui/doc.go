package ui

// Package ui contains the Fyne-based desktop user interface for the application.
// It shows the tool catalog, one page per tool with its file selection, and the
// settings dialog, and wires them to the conversion service. All UI strings are
// localized via Localization.
