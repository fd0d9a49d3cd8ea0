package ui

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/microtools/micro-tools/internal/codec"
	"github.com/microtools/micro-tools/internal/config"
	"github.com/microtools/micro-tools/internal/convert"
	"github.com/microtools/micro-tools/internal/model"
	"github.com/microtools/micro-tools/internal/platform"
	"github.com/microtools/micro-tools/internal/tools"
)

// FileConversionTimeout bounds the transform of a single file
const FileConversionTimeout = 2 * time.Minute

var errInvalidSize = errors.New("width and height must be positive numbers")

// ToolPage is the page of one tool: its file selection, options and convert action.
// Selection changes happen on the UI thread; job updates arrive from the
// conversion service and are marshalled with fyne.Do.
type ToolPage struct {
	tool         tools.Tool
	window       fyne.Window
	settings     *config.Settings
	localization *Localization
	converter    convert.Converter
	notify       func(message string, spinning bool)

	selection  model.SelectionSet
	running    bool
	lastOutput string

	jobMutex sync.Mutex
	jobID    string

	content      fyne.CanvasObject
	titleLabel   *widget.Label
	descLabel    *widget.Label
	summaryLabel *widget.Label
	hintLabel    *widget.Label
	statusLabel  *widget.Label
	fileList     *widget.List
	progressBar  *widget.ProgressBar

	addFilesBtn  *widget.Button
	addFolderBtn *widget.Button
	clearBtn     *widget.Button
	convertBtn   *widget.Button
	stopBtn      *widget.Button
	revealBtn    *widget.Button
	openBtn      *widget.Button

	// Resize controls, nil for converters
	widthLabel   *widget.Label
	heightLabel  *widget.Label
	formatLabel  *widget.Label
	widthEntry   *widget.Entry
	heightEntry  *widget.Entry
	unitSelect   *widget.Select
	formatSelect *widget.Select
}

// NewToolPage creates the page for tool
func NewToolPage(tool tools.Tool, window fyne.Window, settings *config.Settings, localization *Localization,
	converter convert.Converter, notify func(message string, spinning bool)) *ToolPage {
	if notify == nil {
		notify = func(string, bool) {}
	}
	p := &ToolPage{
		tool:         tool,
		window:       window,
		settings:     settings,
		localization: localization,
		converter:    converter,
		notify:       notify,
		selection:    model.NewSelectionSet(),
	}
	p.createUI()
	p.refresh()
	return p
}

// Tool returns the page's tool
func (p *ToolPage) Tool() tools.Tool {
	return p.tool
}

// Content returns the page's root object
func (p *ToolPage) Content() fyne.CanvasObject {
	return p.content
}

// Selection returns the current selection
func (p *ToolPage) Selection() model.SelectionSet {
	return p.selection
}

// createUI creates the UI components
func (p *ToolPage) createUI() {
	p.titleLabel = widget.NewLabel("")
	p.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	p.descLabel = widget.NewLabel("")
	p.descLabel.Wrapping = fyne.TextWrapWord

	p.addFilesBtn = widget.NewButton("", p.onAddFiles)
	p.addFolderBtn = widget.NewButton("", p.onAddFolder)
	p.clearBtn = widget.NewButton("", p.Clear)
	p.clearBtn.Importance = widget.LowImportance

	p.summaryLabel = widget.NewLabel("")
	p.hintLabel = widget.NewLabel("")
	p.hintLabel.Alignment = fyne.TextAlignCenter
	p.hintLabel.Importance = widget.LowImportance

	p.fileList = widget.NewList(
		func() int {
			return p.selection.Len()
		},
		func() fyne.CanvasObject {
			row := NewFileRow(p.localization)
			row.SetOnRemove(p.onRemoveFile)
			return row
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= p.selection.Len() {
				return
			}
			if row, ok := obj.(*FileRow); ok {
				row.SetFile(id, p.selection.At(id))
			}
		},
	)

	p.progressBar = widget.NewProgressBar()
	p.progressBar.Hide()
	p.statusLabel = widget.NewLabel("")
	p.statusLabel.Wrapping = fyne.TextWrapWord

	p.convertBtn = widget.NewButton("", p.onConvert)
	p.convertBtn.Importance = widget.HighImportance
	p.stopBtn = widget.NewButton("", p.onStop)
	p.stopBtn.Hide()
	p.revealBtn = widget.NewButton("", p.onReveal)
	p.revealBtn.Importance = widget.LowImportance
	p.revealBtn.Hide()
	p.openBtn = widget.NewButton("", p.onOpenResult)
	p.openBtn.Importance = widget.LowImportance
	p.openBtn.Hide()

	header := container.NewVBox(
		p.titleLabel,
		p.descLabel,
		container.NewHBox(p.addFilesBtn, p.addFolderBtn, layout.NewSpacer(), p.clearBtn),
	)
	if p.tool.Resize {
		header.Add(p.createResizeControls())
	}
	header.Add(widget.NewSeparator())
	header.Add(p.summaryLabel)

	footer := container.NewVBox(
		widget.NewSeparator(),
		p.progressBar,
		p.statusLabel,
		container.NewHBox(layout.NewSpacer(), p.revealBtn, p.openBtn, p.stopBtn, p.convertBtn),
	)

	center := container.NewStack(p.fileList, container.NewCenter(p.hintLabel))
	p.content = container.NewBorder(header, footer, nil, nil, center)
	p.refreshTexts()
}

// createResizeControls builds the width/height/unit/format row from saved settings
func (p *ToolPage) createResizeControls() fyne.CanvasObject {
	g := p.settings.GetResizeGeometry()

	p.widthEntry = widget.NewEntry()
	p.widthEntry.SetText(strconv.FormatFloat(g.Width.Value, 'f', -1, 64))
	p.heightEntry = widget.NewEntry()
	p.heightEntry.SetText(strconv.FormatFloat(g.Height.Value, 'f', -1, 64))

	p.unitSelect = widget.NewSelect([]string{string(model.UnitPixel), string(model.UnitCentimeter)}, nil)
	p.unitSelect.SetSelected(string(g.Width.Unit))

	p.formatSelect = widget.NewSelect([]string{string(model.FormatJPEG), string(model.FormatPNG)}, nil)
	p.formatSelect.SetSelected(string(p.settings.GetResizeFormat()))

	p.widthLabel = widget.NewLabel("")
	p.heightLabel = widget.NewLabel("")
	p.formatLabel = widget.NewLabel("")

	entrySize := fyne.NewSize(DimensionEntryWidth, p.widthEntry.MinSize().Height)
	return container.NewHBox(
		p.widthLabel,
		container.NewGridWrap(entrySize, p.widthEntry),
		p.heightLabel,
		container.NewGridWrap(entrySize, p.heightEntry),
		p.unitSelect,
		layout.NewSpacer(),
		p.formatLabel,
		p.formatSelect,
	)
}

// RefreshTexts updates texts after a language change
func (p *ToolPage) RefreshTexts() {
	p.refreshTexts()
	p.refresh()
}

func (p *ToolPage) refreshTexts() {
	l := p.localization
	p.titleLabel.SetText(l.GetText(p.tool.TitleKey))
	p.descLabel.SetText(l.GetText(p.tool.DescriptionKey))
	p.addFilesBtn.SetText(IconFile + " " + l.GetText(KeyAddFiles))
	p.addFolderBtn.SetText(IconFolder + " " + l.GetText(KeyAddFolder))
	p.clearBtn.SetText(l.GetText(KeyClear))
	p.hintLabel.SetText(l.GetText(KeyDropHint))
	p.convertBtn.SetText(l.GetText(KeyConvert))
	p.stopBtn.SetText(l.GetText(KeyStop))
	p.revealBtn.SetText(IconFolder + " " + l.GetText(KeyReveal))
	p.openBtn.SetText(IconImage + " " + l.GetText(KeyOpenResult))
	if p.tool.Resize {
		p.widthLabel.SetText(l.GetText(KeyWidth))
		p.heightLabel.SetText(l.GetText(KeyHeight))
		p.formatLabel.SetText(l.GetText(KeyOutputFormat))
	}
}

// refresh syncs the list, summary and buttons with the selection
func (p *ToolPage) refresh() {
	p.fileList.Refresh()

	if p.selection.IsEmpty() {
		p.summaryLabel.SetText(p.localization.GetText(KeyNoFiles))
		p.hintLabel.Show()
		p.clearBtn.Disable()
	} else {
		p.summaryLabel.SetText(p.localization.Format(KeySelectionSummary, p.selection.Len(), formatFileSize(p.selection.TotalSize())))
		p.hintLabel.Hide()
		p.clearBtn.Enable()
	}

	if p.selection.IsEmpty() || p.running {
		p.convertBtn.Disable()
	} else {
		p.convertBtn.Enable()
	}
	if p.running {
		p.addFilesBtn.Disable()
		p.addFolderBtn.Disable()
		p.clearBtn.Disable()
		p.stopBtn.Show()
	} else {
		p.addFilesBtn.Enable()
		p.addFolderBtn.Enable()
		p.stopBtn.Hide()
	}
}

// setSelection replaces the selection and refreshes the page
func (p *ToolPage) setSelection(sel model.SelectionSet) {
	p.selection = sel
	p.refresh()
}

// AddInputs appends files to the selection
func (p *ToolPage) AddInputs(files ...model.InputFile) {
	if len(files) == 0 || p.running {
		return
	}
	p.setSelection(p.selection.Append(files...))
}

// AddPaths reads files from disk and appends the ones that could be read.
// Directories contribute the images directly inside them.
func (p *ToolPage) AddPaths(paths []string) (int, []error) {
	var files []model.InputFile
	var errs []error
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if info.IsDir() {
			found, err := platform.DiscoverImages(path)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if len(found) == 0 {
				errs = append(errs, fmt.Errorf("%s: %s", path, p.localization.GetText(KeyNoImagesInFolder)))
			}
			for _, f := range found {
				in, err := platform.ReadInputFile(f)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				files = append(files, in)
			}
			continue
		}

		in, err := platform.ReadInputFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, in)
	}

	p.AddInputs(files...)
	return len(files), errs
}

// AddURIs adds dropped items
func (p *ToolPage) AddURIs(uris []fyne.URI) {
	var paths []string
	for _, uri := range uris {
		if uri.Scheme() != "file" {
			log.Printf("Ignoring dropped item with scheme %s: %s", uri.Scheme(), uri)
			continue
		}
		paths = append(paths, uri.Path())
	}
	p.reportAdded(p.AddPaths(paths))
}

// RemoveAt removes the file at index
func (p *ToolPage) RemoveAt(index int) error {
	if p.running {
		return nil
	}
	sel, err := p.selection.RemoveAt(index)
	if err != nil {
		return err
	}
	p.setSelection(sel)
	return nil
}

// Clear empties the selection
func (p *ToolPage) Clear() {
	if p.running {
		return
	}
	p.setSelection(model.NewSelectionSet())
}

func (p *ToolPage) onRemoveFile(index int) {
	if err := p.RemoveAt(index); err != nil {
		log.Printf("Error removing file %d: %v", index, err)
	}
}

// reportAdded shows the outcome of adding files
func (p *ToolPage) reportAdded(added int, errs []error) {
	if added > 0 {
		p.notify(p.localization.Format(KeyFilesAdded, added), false)
	}
	if len(errs) > 0 {
		for _, err := range errs {
			log.Printf("Error adding file: %v", err)
		}
		dialog.ShowError(fmt.Errorf("%s: %w", p.localization.GetText(KeyErrorReadingFile), errors.Join(errs...)), p.window)
	}
}

// onAddFiles opens a file dialog filtered to the tool's extensions
func (p *ToolPage) onAddFiles() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, p.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		in, err := readURI(reader)
		if err != nil {
			p.reportAdded(0, []error{err})
			return
		}
		p.AddInputs(in)
		p.reportAdded(1, nil)
	}, p.window)
	fd.SetFilter(storage.NewExtensionFileFilter(p.tool.Accept))
	fd.Show()
}

// readURI reads an opened dialog item into an InputFile
func readURI(reader fyne.URIReadCloser) (model.InputFile, error) {
	data, err := io.ReadAll(io.LimitReader(reader, platform.MaxInputSize+1))
	if err != nil {
		return model.InputFile{}, err
	}
	name := reader.URI().Name()
	if len(data) > platform.MaxInputSize {
		return model.InputFile{}, fmt.Errorf("%w: %s", platform.ErrFileTooLarge, name)
	}
	return model.NewInputFile(name, data, platform.DetectMimeType(name, data)), nil
}

// onAddFolder adds the folder's files matching the tool
func (p *ToolPage) onAddFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, p.window)
			return
		}
		if uri == nil {
			return
		}

		found, err := platform.DiscoverImages(uri.Path())
		if err != nil {
			p.reportAdded(0, []error{err})
			return
		}
		var paths []string
		for _, f := range found {
			if p.tool.Accepts(f) {
				paths = append(paths, f)
			}
		}
		if len(paths) == 0 {
			p.notify(p.localization.GetText(KeyNoImagesInFolder), false)
			return
		}
		p.reportAdded(p.AddPaths(paths))
	}, p.window)
}

// Options collects the tool options from settings and the page controls
func (p *ToolPage) Options() (tools.Options, error) {
	opts := tools.Options{
		Codec:       p.settings.CodecOptions(),
		Collision:   p.settings.GetCollisionPolicy(),
		MaxParallel: p.settings.GetMaxParallel(),
		FileTimeout: FileConversionTimeout,
	}
	if !p.tool.Resize {
		return opts, nil
	}

	g, err := p.geometry()
	if err != nil {
		return opts, err
	}
	format, err := model.ParseFormat(p.formatSelect.Selected)
	if err != nil {
		format = config.DefaultResizeFormat
	}
	opts.Geometry = &g
	opts.Target = format

	p.settings.SetResizeGeometry(g)
	p.settings.SetResizeFormat(format)
	return opts, nil
}

// geometry parses and validates the resize controls
func (p *ToolPage) geometry() (model.Geometry, error) {
	unit, err := model.ParseUnit(p.unitSelect.Selected)
	if err != nil {
		return model.Geometry{}, err
	}
	width, errW := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(p.widthEntry.Text, ",", ".")), 64)
	height, errH := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(p.heightEntry.Text, ",", ".")), 64)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return model.Geometry{}, errInvalidSize
	}

	g := model.Geometry{
		Width:  model.Dimension{Value: width, Unit: unit},
		Height: model.Dimension{Value: height, Unit: unit},
		DPI:    p.settings.GetDPI(),
	}
	if _, _, err := codec.ResolveGeometry(g, g.DPI); err != nil {
		return model.Geometry{}, err
	}
	return g, nil
}

// onConvert starts a conversion job for the current selection
func (p *ToolPage) onConvert() {
	if p.selection.IsEmpty() || p.running {
		return
	}

	opts, err := p.Options()
	if err != nil {
		if errors.Is(err, errInvalidSize) {
			err = errors.New(p.localization.GetText(KeyInvalidSize))
		}
		dialog.ShowError(err, p.window)
		return
	}

	pipeline, err := p.tool.Pipeline(opts)
	if err != nil {
		dialog.ShowError(err, p.window)
		return
	}

	// Marked running first so an early result cannot be overwritten
	p.running = true
	p.revealBtn.Hide()
	p.openBtn.Hide()
	p.progressBar.SetValue(0)
	p.progressBar.Show()
	p.statusLabel.SetText(p.localization.Format(KeyConverting, 0, p.selection.Len()))
	p.refresh()

	job, err := p.converter.StartJob(string(p.tool.ID), p.selection, pipeline)
	if err != nil {
		log.Printf("Error starting conversion for %s: %v", p.tool.ID, err)
		p.running = false
		p.progressBar.Hide()
		p.statusLabel.SetText("")
		p.refresh()
		if strings.Contains(err.Error(), "already in progress") {
			err = errors.New(p.localization.GetText(KeyAlreadyRunning))
		}
		dialog.ShowError(err, p.window)
		return
	}

	log.Printf("Conversion job started: id=%s tool=%s files=%d", job.ID, job.Tool, job.Total)
	p.jobMutex.Lock()
	p.jobID = job.ID
	p.jobMutex.Unlock()
	p.notify(p.localization.GetText(p.tool.TitleKey)+MiddleDotSeparator+p.localization.Format(KeyConverting, 0, job.Total), true)
}

// onStop cancels the running job
func (p *ToolPage) onStop() {
	p.jobMutex.Lock()
	jobID := p.jobID
	p.jobMutex.Unlock()
	if jobID == "" {
		return
	}
	if err := p.converter.StopJob(jobID); err != nil {
		log.Printf("Error stopping job %s: %v", jobID, err)
	}
}

// onReveal shows the last saved result in the file manager
func (p *ToolPage) onReveal() {
	if p.lastOutput == "" {
		return
	}
	if err := platform.OpenFileInManager(p.lastOutput); err != nil {
		log.Printf("Error revealing file %s: %v", p.lastOutput, err)
		dialog.ShowError(fmt.Errorf("%s: %w", p.localization.GetText(KeyErrorOpeningFile), err), p.window)
	}
}

// onOpenResult opens the last saved result with the default application
func (p *ToolPage) onOpenResult() {
	if p.lastOutput == "" {
		return
	}
	if err := platform.OpenFileWithDefaultApp(p.lastOutput); err != nil {
		log.Printf("Error opening file %s: %v", p.lastOutput, err)
		dialog.ShowError(fmt.Errorf("%s: %w", p.localization.GetText(KeyErrorOpeningFile), err), p.window)
	}
}

// HandleJobUpdate receives job snapshots for this tool from the service goroutine.
// Completed results are written to disk before the UI is touched.
func (p *ToolPage) HandleJobUpdate(job *model.ConversionJob) {
	p.jobMutex.Lock()
	p.jobID = job.ID
	p.jobMutex.Unlock()

	if !job.Status.IsFinished() {
		fyne.Do(func() {
			p.showProgress(job)
		})
		return
	}

	var path string
	var saveErr error
	if job.Status == model.JobStatusCompleted {
		path, saveErr = p.saveResult(job)
	}
	fyne.Do(func() {
		p.applyResult(job, path, saveErr)
	})
}

// saveResult writes the job's deliverable into the output directory
func (p *ToolPage) saveResult(job *model.ConversionJob) (string, error) {
	path, err := platform.SaveDeliverable(p.settings.GetOutputDirectory(), job.Deliverable)
	if err != nil {
		log.Printf("Error saving result of job %s: %v", job.ID, err)
		return "", err
	}
	log.Printf("Job %s saved to %s", job.ID, path)
	return path, nil
}

// showProgress reflects a running job
func (p *ToolPage) showProgress(job *model.ConversionJob) {
	p.progressBar.SetValue(job.Progress)
	p.statusLabel.SetText(p.localization.Format(KeyConverting, job.Done, job.Total))
}

// applyResult ends a job on the page. A saved result clears the selection;
// failures keep it for another try.
func (p *ToolPage) applyResult(job *model.ConversionJob, path string, saveErr error) {
	p.running = false
	p.progressBar.Hide()

	switch {
	case job.Status == model.JobStatusCompleted && saveErr == nil:
		p.lastOutput = path
		p.selection = model.NewSelectionSet()
		message := p.localization.Format(KeySavedTo, path) + MiddleDotSeparator + job.Elapsed().Round(10*time.Millisecond).String()
		if job.Skipped > 0 {
			message += "\n" + p.localization.Format(KeySkippedFiles, job.Skipped)
		}
		p.statusLabel.SetText(message)
		p.revealBtn.Show()
		p.openBtn.Show()
		p.notify(p.localization.GetText(KeyConversionDone)+MiddleDotSeparator+path, false)
		p.sendCompletionNotification(path)
		if p.settings.GetAutoRevealOnComplete() {
			p.onReveal()
		}

	case job.Status == model.JobStatusCompleted:
		p.statusLabel.SetText(p.localization.GetText(KeyErrorSaving))
		p.notify(p.localization.GetText(KeyErrorSaving), false)
		dialog.ShowError(fmt.Errorf("%s: %w", p.localization.GetText(KeyErrorSaving), saveErr), p.window)

	case job.Status == model.JobStatusStopped:
		p.statusLabel.SetText(p.localization.GetText(KeyConversionStopped))
		p.notify(p.localization.GetText(KeyConversionStopped), false)

	default:
		p.statusLabel.SetText(p.localization.GetText(KeyConversionFailed))
		p.notify(p.localization.GetText(KeyConversionFailed), false)
		details := job.LastError
		if len(job.Failures) > 0 {
			details = strings.Join(job.Failures, "\n")
		}
		dialog.ShowError(fmt.Errorf("%s: %s", p.localization.GetText(KeyConversionFailed), details), p.window)
	}

	p.refresh()
}

// sendCompletionNotification sends a system notification for a saved result
func (p *ToolPage) sendCompletionNotification(path string) {
	app := fyne.CurrentApp()
	if app == nil {
		return
	}
	app.SendNotification(&fyne.Notification{
		Title:   p.localization.GetText(KeyConversionDone),
		Content: path,
	})
}
