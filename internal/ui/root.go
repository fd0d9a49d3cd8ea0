package ui

import (
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/microtools/micro-tools/internal/config"
	"github.com/microtools/micro-tools/internal/convert"
	"github.com/microtools/micro-tools/internal/model"
	"github.com/microtools/micro-tools/internal/platform"
	"github.com/microtools/micro-tools/internal/tools"
)

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	converter    convert.Converter
	settings     *config.Settings
	localization *Localization

	pages       map[tools.ID]*ToolPage
	currentPage *ToolPage

	homeTitle    *widget.Label
	homeSubtitle *widget.Label
	toolCards    map[tools.ID]*widget.Card
	openButtons  map[tools.ID]*widget.Button
	homeContent  fyne.CanvasObject
	backBtn      *widget.Button
	settingsBtn  *widget.Button
	body         *fyne.Container

	// Notification panel
	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite
	notificationMutex     sync.Mutex
	notificationTimer     *time.Timer
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, converter convert.Converter) *RootUI {
	// Initialize settings
	settings := config.NewSettings(app)

	// Initialize localization
	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	// Ensure output directory exists
	if err := platform.CreateDirectoryIfNotExists(settings.GetOutputDirectory()); err != nil {
		log.Printf("Failed to create output directory: %v", err)
	}

	ui := &RootUI{
		window:       window,
		converter:    converter,
		settings:     settings,
		localization: localization,
		pages:        make(map[tools.ID]*ToolPage),
		toolCards:    make(map[tools.ID]*widget.Card),
		openButtons:  make(map[tools.ID]*widget.Button),
	}

	// Set window title
	window.SetTitle(localization.GetText(KeyAppTitle))

	// Set up callback for job updates
	ui.converter.SetUpdateCallback(ui.onJobUpdate)

	ui.setupUI()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	for _, tool := range tools.All() {
		ui.pages[tool.ID] = NewToolPage(tool, ui.window, ui.settings, ui.localization, ui.converter, ui.showNotification)
	}

	ui.backBtn = widget.NewButton(IconBack, ui.ShowHome)
	ui.backBtn.Importance = widget.LowImportance
	ui.backBtn.Hide()

	ui.settingsBtn = widget.NewButton(IconSettings, ui.onShowSettings)
	ui.settingsBtn.Importance = widget.LowImportance

	logoImage := canvas.NewImageFromResource(AppIcon)
	logoImage.SetMinSize(fyne.NewSize(32, 32))
	logoImage.FillMode = canvas.ImageFillContain
	left := container.NewHBox(logoImage, ui.backBtn, ui.settingsBtn)

	ui.homeTitle = widget.NewLabel("")
	ui.homeTitle.TextStyle = fyne.TextStyle{Bold: true}
	topPanel := container.NewBorder(nil, nil, left, nil, ui.homeTitle)

	// Notification panel under the top bar (hidden by default)
	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Alignment = fyne.TextAlignLeading
	ui.notificationLabel.Truncation = fyne.TextTruncateEllipsis
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewBorder(nil, nil, ui.notificationSpinner, nil, container.NewPadded(ui.notificationLabel))
	ui.notificationContainer.Hide()

	ui.homeContent = ui.createHome()
	ui.body = container.NewStack(ui.homeContent)

	content := container.NewBorder(
		container.NewVBox(topPanel, ui.notificationContainer),
		nil,
		nil,
		nil,
		ui.body,
	)
	ui.window.SetContent(content)
	ui.window.SetOnDropped(ui.onDropped)

	ui.refreshUITexts()
	log.Printf("UI setup completed successfully")
}

// createHome builds the grid of tool cards
func (ui *RootUI) createHome() fyne.CanvasObject {
	ui.homeSubtitle = widget.NewLabel("")
	ui.homeSubtitle.Importance = widget.LowImportance

	grid := container.NewGridWrap(fyne.NewSize(ToolCardWidth, ToolCardHeight))
	for _, tool := range tools.All() {
		id := tool.ID
		open := widget.NewButton("", func() { ui.ShowTool(id) })
		card := widget.NewCard("", "", open)
		ui.toolCards[id] = card
		ui.openButtons[id] = open
		grid.Add(card)
	}

	return container.NewBorder(ui.homeSubtitle, nil, nil, nil, container.NewVScroll(grid))
}

// ShowHome switches to the tool catalog
func (ui *RootUI) ShowHome() {
	ui.currentPage = nil
	ui.body.Objects = []fyne.CanvasObject{ui.homeContent}
	ui.body.Refresh()
	ui.backBtn.Hide()
	ui.homeTitle.SetText(ui.localization.GetText(KeyAppTitle))
}

// ShowTool switches to the page of a tool
func (ui *RootUI) ShowTool(id tools.ID) {
	page, ok := ui.pages[id]
	if !ok {
		log.Printf("Unknown tool %s", id)
		return
	}
	ui.currentPage = page
	ui.body.Objects = []fyne.CanvasObject{page.Content()}
	ui.body.Refresh()
	ui.backBtn.Show()
	ui.homeTitle.SetText(ui.localization.GetText(KeyAppTitle) + MiddleDotSeparator + ui.localization.GetText(page.Tool().TitleKey))
}

// Page returns the page of a tool
func (ui *RootUI) Page(id tools.ID) *ToolPage {
	return ui.pages[id]
}

// CurrentPage returns the visible tool page, nil on the home screen
func (ui *RootUI) CurrentPage() *ToolPage {
	return ui.currentPage
}

// onDropped routes dropped files to the visible tool page
func (ui *RootUI) onDropped(_ fyne.Position, uris []fyne.URI) {
	if ui.currentPage == nil {
		// Dropping on the home screen opens the resizer, which accepts any image
		ui.ShowTool(tools.Resize)
	}
	ui.currentPage.AddURIs(uris)
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)
	homeItem := fyne.NewMenuItem(ui.localization.GetText(KeyHome), ui.ShowHome)

	// Language submenu
	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))

	availableLanguages := ui.localization.GetAvailableLanguages()
	for code, name := range availableLanguages {
		langCode := code // Capture for closure
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})

		// Mark current language
		if ui.localization.GetCurrentLanguage() == code {
			langItem.Checked = true
		}

		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	mainMenu := fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), homeItem, settingsItem),
		languageMenu,
	)

	ui.window.SetMainMenu(mainMenu)
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()

	// Recreate menu to update checkmarks
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	l := ui.localization
	ui.window.SetTitle(l.GetText(KeyAppTitle))
	ui.homeSubtitle.SetText(l.GetText(KeyAppSubtitle))

	for _, tool := range tools.All() {
		ui.toolCards[tool.ID].SetTitle(l.GetText(tool.TitleKey))
		ui.toolCards[tool.ID].SetSubTitle(l.GetText(tool.DescriptionKey))
		ui.openButtons[tool.ID].SetText(l.GetText(KeyOpenTool))
		ui.pages[tool.ID].RefreshTexts()
	}

	if ui.currentPage != nil {
		ui.ShowTool(ui.currentPage.Tool().ID)
	} else {
		ui.homeTitle.SetText(l.GetText(KeyAppTitle))
	}
}

// onJobUpdate dispatches service updates to the page of the job's tool
func (ui *RootUI) onJobUpdate(job *model.ConversionJob) {
	log.Printf("Job update received: id=%s tool=%s status=%s done=%d/%d",
		job.ID, job.Tool, job.Status, job.Done, job.Total)

	page, ok := ui.pages[tools.ID(job.Tool)]
	if !ok {
		log.Printf("No page for tool %s", job.Tool)
		return
	}
	page.HandleJobUpdate(job)
}

// showNotification displays a message in the notification panel.
// When spinning is true, a spinner is shown to indicate background activity;
// otherwise the panel hides itself after a while.
func (ui *RootUI) showNotification(message string, spinning bool) {
	if ui.notificationLabel == nil || ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}

	ui.notificationMutex.Lock()
	if ui.notificationTimer != nil {
		ui.notificationTimer.Stop()
		ui.notificationTimer = nil
	}
	if !spinning {
		ui.notificationTimer = time.AfterFunc(NotificationAutoHide, ui.hideNotification)
	}
	ui.notificationMutex.Unlock()

	fyne.Do(func() {
		ui.notificationLabel.SetText(message)
		if spinning {
			ui.notificationSpinner.Show()
		} else {
			ui.notificationSpinner.Hide()
		}
		ui.notificationContainer.Show()
		ui.notificationContainer.Refresh()
	})
}

// hideNotification hides the notification panel.
func (ui *RootUI) hideNotification() {
	if ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}
	fyne.Do(func() {
		ui.notificationSpinner.Hide()
		ui.notificationContainer.Hide()
	})
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, func() {
		ui.showNotification(ui.localization.GetText(KeySettingsSaved), false)
		if err := platform.CreateDirectoryIfNotExists(ui.settings.GetOutputDirectory()); err != nil {
			log.Printf("Failed to create output directory: %v", err)
		}
	})
}
