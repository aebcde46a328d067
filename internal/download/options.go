package download

import (
	"path/filepath"

	"github.com/ytget/ytube-downloader/internal/model"
)

// Backend option constants
const (
	AudioFormatSelector = "bestaudio/best"
	VideoFormatSelector = "best"
	OutputNameTemplate  = "%(title)s.%(ext)s"
)

// BuildFetchOptions derives backend options from a request. Audio requests
// extract to the target codec at the numeric bitrate. Video requests always
// ask for the best combined stream; the quality selector is not applied.
func BuildFetchOptions(req model.DownloadRequest) model.FetchOptions {
	opts := model.FetchOptions{
		OutputTemplate: filepath.Join(req.Dir, OutputNameTemplate),
	}

	if req.Format.IsAudio() {
		opts.FormatSelector = AudioFormatSelector
		opts.PostProcessors = []model.PostProcessor{{
			Codec:   req.Format.String(),
			Bitrate: req.Quality.Numeric(),
		}}
		return opts
	}

	opts.FormatSelector = VideoFormatSelector
	return opts
}
