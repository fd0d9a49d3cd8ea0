package ui

import (
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/microtools/micro-tools/internal/codec"
	"github.com/microtools/micro-tools/internal/config"
	"github.com/microtools/micro-tools/internal/naming"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	// UI components
	outputDirEntry   *widget.Entry
	maxParallelEntry *widget.Entry
	qualitySlider    *widget.Slider
	qualityLabel     *widget.Label
	pngSelect        *widget.Select
	dpiEntry         *widget.Entry
	collisionSelect  *widget.Select
	autoRevealCheck  *widget.Check
	languageSelect   *widget.Select
}

// ShowSettingsDialog creates and shows the settings dialog
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, localization *Localization, onSaved func()) *SettingsDialog {
	sd := NewSettingsDialog(settings, localization, window)
	sd.onSaved = onSaved
	sd.Show()
	return sd
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	l := sd.localization

	// Output directory selection
	sd.outputDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(l.GetText(KeyBrowse), sd.onBrowseDirectory)
	outputDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.outputDirEntry)

	sd.maxParallelEntry = widget.NewEntry()
	sd.maxParallelEntry.SetPlaceHolder("1-" + strconv.Itoa(config.MaxParallelLimit))

	sd.qualityLabel = widget.NewLabel("")
	sd.qualitySlider = widget.NewSlider(codec.MinJPEGQuality, codec.MaxJPEGQuality)
	sd.qualitySlider.Step = 1
	sd.qualitySlider.OnChanged = func(v float64) {
		sd.qualityLabel.SetText(strconv.Itoa(int(v)))
	}
	qualityRow := container.NewBorder(nil, nil, nil, sd.qualityLabel, sd.qualitySlider)

	pngOptions := []string{}
	for _, c := range sd.settings.GetPNGCompressionOptions() {
		pngOptions = append(pngOptions, string(c))
	}
	sd.pngSelect = widget.NewSelect(pngOptions, nil)

	sd.dpiEntry = widget.NewEntry()
	sd.dpiEntry.SetPlaceHolder(strconv.Itoa(int(codec.DefaultDPI)))

	collisionOptions := []string{}
	for _, p := range naming.CollisionPolicies() {
		collisionOptions = append(collisionOptions, string(p))
	}
	sd.collisionSelect = widget.NewSelect(collisionOptions, nil)

	sd.autoRevealCheck = widget.NewCheck(l.GetText(KeyAutoReveal), nil)

	// Language codes in a stable order
	languageOptions := []string{}
	for code := range sd.settings.GetLanguageOptions() {
		languageOptions = append(languageOptions, code)
	}
	sort.Strings(languageOptions)
	sd.languageSelect = widget.NewSelect(languageOptions, nil)

	form := widget.NewForm(
		widget.NewFormItem(l.GetText(KeyOutputDirectory), outputDirRow),
		widget.NewFormItem(l.GetText(KeyMaxParallel), sd.maxParallelEntry),
		widget.NewFormItem(l.GetText(KeyJPEGQuality), qualityRow),
		widget.NewFormItem(l.GetText(KeyPNGCompression), sd.pngSelect),
		widget.NewFormItem(l.GetText(KeyDPI), sd.dpiEntry),
		widget.NewFormItem(l.GetText(KeyCollisionPolicy), sd.collisionSelect),
		widget.NewFormItem(l.GetText(KeyLanguage), sd.languageSelect),
		widget.NewFormItem("", sd.autoRevealCheck),
	)

	sd.dialog = dialog.NewCustomConfirm(
		l.GetText(KeySettings),
		l.GetText(KeySave),
		l.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.outputDirEntry.SetText(sd.settings.GetOutputDirectory())
	sd.maxParallelEntry.SetText(strconv.Itoa(sd.settings.GetMaxParallel()))
	sd.qualitySlider.SetValue(float64(sd.settings.GetJPEGQuality()))
	sd.qualityLabel.SetText(strconv.Itoa(sd.settings.GetJPEGQuality()))
	sd.pngSelect.SetSelected(string(sd.settings.GetPNGCompression()))
	sd.dpiEntry.SetText(strconv.FormatFloat(sd.settings.GetDPI(), 'f', -1, 64))
	sd.collisionSelect.SetSelected(string(sd.settings.GetCollisionPolicy()))
	sd.autoRevealCheck.SetChecked(sd.settings.GetAutoRevealOnComplete())
	sd.languageSelect.SetSelected(sd.settings.GetLanguage())
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.outputDirEntry.SetText(uri.Path())
	}, sd.window)
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	sd.apply()
	if sd.onSaved != nil {
		sd.onSaved()
	}
}

// apply writes the form values into settings; unparsable fields are left unchanged
func (sd *SettingsDialog) apply() {
	if dir := strings.TrimSpace(sd.outputDirEntry.Text); dir != "" {
		sd.settings.SetOutputDirectory(dir)
	}

	if maxParallel, err := strconv.Atoi(strings.TrimSpace(sd.maxParallelEntry.Text)); err == nil {
		sd.settings.SetMaxParallel(maxParallel)
	}

	sd.settings.SetJPEGQuality(int(sd.qualitySlider.Value))

	if sd.pngSelect.Selected != "" {
		sd.settings.SetPNGCompression(codec.PNGCompression(sd.pngSelect.Selected))
	}

	if dpi, err := strconv.ParseFloat(strings.TrimSpace(sd.dpiEntry.Text), 64); err == nil {
		sd.settings.SetDPI(dpi)
	}

	if policy, err := naming.ParseCollisionPolicy(sd.collisionSelect.Selected); err == nil {
		sd.settings.SetCollisionPolicy(policy)
	}

	sd.settings.SetAutoRevealOnComplete(sd.autoRevealCheck.Checked)

	if sd.languageSelect.Selected != "" {
		sd.settings.SetLanguage(sd.languageSelect.Selected)
	}
}
