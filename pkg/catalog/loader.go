package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// LoadFile reads a single catalog file, choosing the decoder from its extension.
func LoadFile(filename string) ([]Group, error) {
	format, err := DetectFileFormat(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", filename, err)
	}

	var groups []Group
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &groups)
	case FormatMsgpack:
		err = msgpack.NewDecoder(bytes.NewReader(data)).Decode(&groups)
	default:
		err = fmt.Errorf("unsupported format %v", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", filename, err)
	}

	log.Debugf("Loaded %d groups from %s", len(groups), filename)
	return groups, nil
}

// LoadDir loads every category catalog found in dir.
// Files are named after their category, e.g. emoji.json or symbol.msgpack.
// Categories without a file are skipped.
func LoadDir(dir string) (map[Category][]Group, error) {
	result := make(map[Category][]Group)
	for _, category := range Categories {
		filename, ok := findCatalogFile(dir, category)
		if !ok {
			log.Debugf("No catalog file for category %s in %s", category, dir)
			continue
		}
		groups, err := LoadFile(filename)
		if err != nil {
			return nil, err
		}
		result[category] = groups
	}
	return result, nil
}

// WriteMsgpack encodes groups into a msgpack catalog file.
func WriteMsgpack(filename string, groups []Group) error {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(groups); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return os.WriteFile(filename, buf.Bytes(), 0644)
}

func findCatalogFile(dir string, category Category) (string, bool) {
	for _, info := range []FormatInfo{supportedFormats[FormatJSON], supportedFormats[FormatMsgpack]} {
		for _, ext := range info.Extensions {
			candidate := filepath.Join(dir, string(category)+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}
	}
	return "", false
}
