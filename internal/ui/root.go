package ui

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytube-downloader/internal/config"
	"github.com/ytget/ytube-downloader/internal/download"
	"github.com/ytget/ytube-downloader/internal/model"
	"github.com/ytget/ytube-downloader/internal/platform"
)

// Downloader is the part of the controller the UI drives
type Downloader interface {
	Start(req model.DownloadRequest) (string, error)
	Cancel() bool
}

// RootUI represents the main UI structure
type RootUI struct {
	window     fyne.Window
	settings   *config.Settings
	downloader Downloader

	urlEntry      *widget.Entry
	formatSelect  *widget.Select
	qualitySelect *widget.Select
	dirLabel      *widget.Label
	downloadBtn   *widget.Button
	cancelBtn     *widget.Button
	revealBtn     *widget.Button
	progressBar   *widget.ProgressBar
	statusLabel   *widget.Label

	lastPath string
}

// NewRootUI creates the main UI. The downloader is attached afterwards with
// SetDownloader because the controller needs the UI as its observer.
func NewRootUI(window fyne.Window, settings *config.Settings) *RootUI {
	ui := &RootUI{
		window:   window,
		settings: settings,
	}
	ui.setupUI()
	return ui
}

// SetDownloader attaches the download controller
func (ui *RootUI) SetDownloader(d Downloader) {
	ui.downloader = d
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(LabelURLPlaceholder)
	ui.urlEntry.Validator = validateURL
	ui.urlEntry.OnSubmitted = func(string) {
		ui.onDownloadClick()
	}

	ui.qualitySelect = widget.NewSelect(nil, func(q string) {
		ui.settings.SetQuality(model.Quality(q))
	})
	ui.formatSelect = widget.NewSelect(formatOptions(), func(f string) {
		ui.onFormatChanged(model.Format(f))
	})
	ui.formatSelect.SetSelected(string(ui.settings.GetFormat()))

	ui.dirLabel = widget.NewLabel(DirLabelPrefix + ui.settings.GetDownloadDirectory())
	chooseBtn := widget.NewButton(LabelChooseFolder, ui.onChooseFolder)

	ui.downloadBtn = widget.NewButton(LabelDownload, ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance
	ui.cancelBtn = widget.NewButton(LabelCancel, ui.onCancelClick)
	ui.cancelBtn.Disable()
	ui.revealBtn = widget.NewButton(LabelShowInFolder, ui.onRevealClick)
	ui.revealBtn.Hide()

	ui.progressBar = widget.NewProgressBar()
	ui.progressBar.Max = ProgressMax
	ui.statusLabel = widget.NewLabel(LabelReady)
	ui.statusLabel.Wrapping = fyne.TextWrapWord

	options := container.NewGridWithColumns(2, ui.formatSelect, ui.qualitySelect)
	dirRow := container.NewBorder(nil, nil, nil, chooseBtn, ui.dirLabel)
	buttons := container.NewHBox(ui.downloadBtn, ui.cancelBtn, ui.revealBtn)

	content := container.NewVBox(
		ui.urlEntry,
		options,
		dirRow,
		buttons,
		ui.progressBar,
		ui.statusLabel,
	)
	ui.window.SetContent(container.NewPadded(content))
}

// formatOptions lists the selectable format identifiers
func formatOptions() []string {
	formats := model.AllFormats()
	opts := make([]string, 0, len(formats))
	for _, f := range formats {
		opts = append(opts, string(f))
	}
	return opts
}

// onFormatChanged swaps the quality choices to match the format
func (ui *RootUI) onFormatChanged(f model.Format) {
	ui.settings.SetFormat(f)

	qualities := model.QualitiesFor(f)
	opts := make([]string, 0, len(qualities))
	for _, q := range qualities {
		opts = append(opts, string(q))
	}
	ui.qualitySelect.Options = opts
	ui.qualitySelect.SetSelected(string(ui.settings.GetQuality(f)))
	ui.qualitySelect.Refresh()
}

// validateURL validates URL format
func validateURL(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil // Empty is allowed
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return err
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	return nil
}

// request builds a download request from the current form values
func (ui *RootUI) request() (model.DownloadRequest, error) {
	urlText := strings.TrimSpace(ui.urlEntry.Text)
	if urlText == "" {
		return model.DownloadRequest{}, errors.New(LabelEnterURL)
	}
	if err := validateURL(urlText); err != nil {
		return model.DownloadRequest{}, err
	}
	if !model.IsSupportedURL(urlText) {
		return model.DownloadRequest{}, errors.New(LabelUnsupportedURL)
	}

	return model.DownloadRequest{
		URL:     urlText,
		Format:  model.Format(ui.formatSelect.Selected),
		Quality: model.Quality(ui.qualitySelect.Selected),
		Dir:     ui.settings.GetDownloadDirectory(),
	}, nil
}

// onDownloadClick handles the download button click
func (ui *RootUI) onDownloadClick() {
	req, err := ui.request()
	if err != nil {
		ui.statusLabel.SetText(err.Error())
		return
	}
	if ui.downloader == nil {
		log.Printf("[ui] no downloader attached")
		return
	}

	if err := platform.CreateDirectoryIfNotExists(req.Dir); err != nil {
		ui.statusLabel.SetText("Error: " + err.Error())
		return
	}

	if _, err := ui.downloader.Start(req); err != nil {
		// already reported through the Status notification
		log.Printf("[ui] start rejected: %v", err)
		return
	}

	ui.lastPath = ""
	ui.revealBtn.Hide()
	ui.progressBar.SetValue(0)
	ui.downloadBtn.Disable()
	ui.cancelBtn.Enable()
}

// onCancelClick handles the cancel button click
func (ui *RootUI) onCancelClick() {
	if ui.downloader != nil && ui.downloader.Cancel() {
		ui.cancelBtn.Disable()
	}
}

// onChooseFolder opens a folder picker for the destination directory
func (ui *RootUI) onChooseFolder() {
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if dir == nil {
			return
		}
		ui.settings.SetDownloadDirectory(dir.Path())
		ui.dirLabel.SetText(DirLabelPrefix + dir.Path())
	}, ui.window)
}

// onRevealClick shows the last artifact in the system file manager
func (ui *RootUI) onRevealClick() {
	if ui.lastPath == "" {
		return
	}
	if err := platform.OpenFileInManager(ui.lastPath); err != nil {
		dialog.ShowError(err, ui.window)
	}
}

// Progress implements download.Observer
func (ui *RootUI) Progress(percent int) {
	fyne.Do(func() {
		ui.progressBar.SetValue(float64(percent))
	})
}

// Status implements download.Observer
func (ui *RootUI) Status(text string) {
	fyne.Do(func() {
		ui.statusLabel.SetText(text)
	})
}

// Finished implements download.Observer
func (ui *RootUI) Finished(success bool, path string) {
	fyne.Do(func() {
		ui.downloadBtn.Enable()
		ui.cancelBtn.Disable()
		if success {
			ui.lastPath = path
			name := model.Result{Success: true, Path: path}.DisplayName()
			ui.revealBtn.SetText(fmt.Sprintf("%s: %s", LabelShowInFolder, name))
			ui.revealBtn.Show()
			return
		}
		ui.progressBar.SetValue(0)
	})
}

var _ download.Observer = (*RootUI)(nil)
