package ui

// Labels
const (
	LabelURLPlaceholder = "Paste a video URL"
	LabelDownload       = "Download"
	LabelCancel         = "Cancel"
	LabelChooseFolder   = "Folder..."
	LabelShowInFolder   = "Show in folder"
	LabelReady          = "Ready"
	LabelEnterURL       = "Please enter a URL"
	LabelUnsupportedURL = "Only YouTube links are supported"
)

// Text fragments
const (
	DirLabelPrefix = "Save to: "
	ProgressMax    = 100.0
)
