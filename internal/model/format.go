package model

import (
	"fmt"
	"strings"
	"unicode"
)

// FormatKind separates audio extraction from video downloads
type FormatKind string

const (
	KindAudio FormatKind = "audio"
	KindVideo FormatKind = "video"
)

// Format is a concrete output container/codec identifier
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatM4A  Format = "m4a"
	FormatMP4  Format = "mp4"
	FormatWebM Format = "webm"
)

// Quality is a format-dependent selector: bitrate for audio, resolution for video
type Quality string

// Audio bitrates
const (
	Quality128k Quality = "128kbps"
	Quality192k Quality = "192kbps"
	Quality256k Quality = "256kbps"
	Quality320k Quality = "320kbps"
)

// Video resolutions
const (
	Quality360p  Quality = "360p"
	Quality480p  Quality = "480p"
	Quality720p  Quality = "720p"
	Quality1080p Quality = "1080p"
	Quality1440p Quality = "1440p"
	Quality2160p Quality = "2160p"
)

var (
	AudioFormats   = []Format{FormatMP3, FormatM4A}
	VideoFormats   = []Format{FormatMP4, FormatWebM}
	AudioQualities = []Quality{Quality128k, Quality192k, Quality256k, Quality320k}
	VideoQualities = []Quality{Quality360p, Quality480p, Quality720p, Quality1080p, Quality1440p, Quality2160p}
)

// AllFormats returns audio formats followed by video formats
func AllFormats() []Format {
	all := make([]Format, 0, len(AudioFormats)+len(VideoFormats))
	all = append(all, AudioFormats...)
	return append(all, VideoFormats...)
}

// ParseFormat converts a user supplied identifier into a Format
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f.Kind() == "" {
		return "", fmt.Errorf("unsupported format: %q", s)
	}
	return f, nil
}

// Kind returns the format kind, or "" for unknown formats
func (f Format) Kind() FormatKind {
	for _, a := range AudioFormats {
		if f == a {
			return KindAudio
		}
	}
	for _, v := range VideoFormats {
		if f == v {
			return KindVideo
		}
	}
	return ""
}

// IsAudio reports whether the format requires audio extraction
func (f Format) IsAudio() bool {
	return f.Kind() == KindAudio
}

// String returns the string representation of Format
func (f Format) String() string {
	return string(f)
}

// QualitiesFor returns the quality choices offered for a format
func QualitiesFor(f Format) []Quality {
	switch f.Kind() {
	case KindAudio:
		return AudioQualities
	case KindVideo:
		return VideoQualities
	default:
		return nil
	}
}

// DefaultQuality returns the preselected quality for a format
func DefaultQuality(f Format) Quality {
	switch f.Kind() {
	case KindAudio:
		return Quality192k
	case KindVideo:
		return Quality720p
	default:
		return ""
	}
}

// ValidFor reports whether q is one of the choices offered for f
func (q Quality) ValidFor(f Format) bool {
	for _, c := range QualitiesFor(f) {
		if c == q {
			return true
		}
	}
	return false
}

// Numeric returns the leading digits of the quality with its unit stripped
// ("192kbps" -> "192", "720p" -> "720").
func (q Quality) Numeric() string {
	s := strings.TrimSpace(string(q))
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		return s
	}
	return s[:end]
}

// String returns the string representation of Quality
func (q Quality) String() string {
	return string(q)
}
