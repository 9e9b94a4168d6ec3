package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the supported catalog file encodings
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatJSON               // list of groups as JSON
	FormatMsgpack            // same structure, msgpack encoded
)

// FormatInfo contains metadata about a catalog file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatJSON: {
		Format:      FormatJSON,
		Description: "JSON Catalog",
		Extensions:  []string{".json"},
		MinSize:     2, // "[]"
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Description: "MessagePack Catalog",
		Extensions:  []string{".msgpack", ".mpk"},
		MinSize:     1, // empty array marker
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			log.Debugf("Catalog file %s validated as %s", filename, formatInfo.Description)
			return nil
		}
	}
	return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
		filename, ext, formatInfo.Description, formatInfo.Extensions)
}

// DetectFileFormat attempts to detect the format of a file by its extension
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e != ext {
				continue
			}
			if err := ValidateFileFormat(filename, format); err != nil {
				return FormatUnknown, err
			}
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

// IsCatalogFile reports whether name follows the catalog naming scheme,
// a category followed by a supported extension.
func IsCatalogFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if _, err := ParseCategory(strings.TrimSuffix(name, filepath.Ext(name))); err != nil {
		return false
	}
	for _, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return true
			}
		}
	}
	return false
}
