package platform

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
)

// ID3Tagger writes ID3v2 metadata into mp3 artifacts
type ID3Tagger struct{}

// NewID3Tagger creates a new tagger
func NewID3Tagger() *ID3Tagger {
	return &ID3Tagger{}
}

// Tag sets the title frame of an mp3 file. Non-mp3 files are left untouched.
func (t *ID3Tagger) Tag(path, title string) error {
	if !strings.EqualFold(filepath.Ext(path), ".mp3") || title == "" {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open tag of %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(title)
	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tag of %s: %w", path, err)
	}
	return nil
}
