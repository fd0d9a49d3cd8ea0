package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/microtools/micro-tools/internal/model"
)

// formatFileSize formats file size in bytes to human readable format
func formatFileSize(bytes int64) string {
	if bytes < FileSizeUnit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(FileSizeUnit), 0
	for n := bytes / FileSizeUnit; n >= FileSizeUnit; n /= FileSizeUnit {
		div *= FileSizeUnit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), FileSizeUnits[exp])
}

// FileRow shows one selected file with a remove button
type FileRow struct {
	widget.BaseWidget

	index        int
	file         model.InputFile
	localization *Localization

	nameLabel *widget.Label
	typeLabel *widget.Label
	sizeLabel *widget.Label
	removeBtn *widget.Button

	onRemove func(index int)
}

// NewFileRow creates a new file row widget
func NewFileRow(localization *Localization) *FileRow {
	fr := &FileRow{localization: localization, index: -1}
	fr.ExtendBaseWidget(fr)
	fr.createUI()
	return fr
}

// SetOnRemove sets the remove callback
func (fr *FileRow) SetOnRemove(onRemove func(index int)) {
	fr.onRemove = onRemove
}

// SetFile shows file at position index of the selection
func (fr *FileRow) SetFile(index int, file model.InputFile) {
	fr.index = index
	fr.file = file

	fr.nameLabel.SetText(file.BaseName())
	typeText := file.MimeType
	if typeText == "" {
		typeText = DashPlaceholder
	}
	fr.typeLabel.SetText(typeText)
	fr.sizeLabel.SetText(formatFileSize(file.Size()))
	fr.removeBtn.SetText(fr.localization.GetText(KeyRemove))
}

// createUI creates the UI components
func (fr *FileRow) createUI() {
	fr.nameLabel = widget.NewLabel("")
	fr.nameLabel.Truncation = fyne.TextTruncateEllipsis

	fr.typeLabel = widget.NewLabel("")
	fr.typeLabel.Importance = widget.LowImportance

	fr.sizeLabel = widget.NewLabel("")
	fr.sizeLabel.Alignment = fyne.TextAlignTrailing
	fr.sizeLabel.TextStyle = fyne.TextStyle{Monospace: true}

	fr.removeBtn = widget.NewButton(fr.localization.GetText(KeyRemove), func() {
		if fr.onRemove != nil && fr.index >= 0 {
			fr.onRemove(fr.index)
		}
	})
	fr.removeBtn.Importance = widget.LowImportance
}

// CreateRenderer creates the widget renderer
func (fr *FileRow) CreateRenderer() fyne.WidgetRenderer {
	size := container.New(layout.NewGridWrapLayout(fyne.NewSize(SizeLabelWidth, RowMinHeight)), fr.sizeLabel)
	right := container.NewHBox(fr.typeLabel, size, fr.removeBtn)
	row := container.NewBorder(nil, nil, widget.NewLabel(IconImage), right, fr.nameLabel)
	return widget.NewSimpleRenderer(row)
}
