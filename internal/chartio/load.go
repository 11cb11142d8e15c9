package chartio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/beatline/internal/chart"
)

// LoadFile reads a chart, choosing the decoder by file extension. MIDI
// files are titled after their base name.
func LoadFile(path string) (*chart.Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return DecodeYAML(bytes.NewReader(data))
	case ".cue":
		return DecodeCUE(data, path)
	case ".mid", ".midi":
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return ImportSMF(bytes.NewReader(data), SMFOptions{Title: title})
	default:
		return nil, fmt.Errorf("unsupported chart format %q", ext)
	}
}
