package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleJSON = `[
  {"group": "smileys", "emoji": [
    {"base": {"string": "😀", "name": "grinning face", "keywords": ["smile"]}},
    {"base": {"string": "👍", "name": "thumbs up"},
     "alternates": [{"string": "👍🏻", "name": "thumbs up: light skin tone", "tone": 2}],
     "groupedTone": true}
  ]}
]`

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "emoji.json"), []byte(sampleJSON), 0644); err != nil {
		t.Fatal(err)
	}

	catalogs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir error: %v", err)
	}
	if len(catalogs) != 1 {
		t.Fatalf("expected 1 category, got %d", len(catalogs))
	}

	items := Flatten(catalogs[CategoryEmoji])
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Key() != "👍" || len(items[1].Alternates) != 1 || !items[1].GroupedTone {
		t.Errorf("unexpected item: %+v", items[1])
	}
}

func TestMsgpackRoundTripThroughLoader(t *testing.T) {
	dir := t.TempDir()
	groups := []Group{{
		Group: "gifs",
		Emoji: []Item{{Base: Emoji{Name: "cat", VisualContent: &VisualContent{ID: "123"}}}},
	}}
	if err := WriteMsgpack(filepath.Join(dir, "gif.msgpack"), groups); err != nil {
		t.Fatal(err)
	}

	catalogs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir error: %v", err)
	}
	items := Flatten(catalogs[CategoryGIF])
	if len(items) != 1 || items[0].Key() != "123" || !items[0].Base.IsVisual() {
		t.Errorf("unexpected gif catalog: %+v", items)
	}
}

func TestDetectFileFormat(t *testing.T) {
	dir := t.TempDir()
	testCases := []struct {
		name        string
		content     string
		expected    FileFormat
		expectError bool
		description string
	}{
		{"emoji.json", "[]", FormatJSON, false, "json by extension"},
		{"emoji.msgpack", "\x90", FormatMsgpack, false, "msgpack by extension"},
		{"emoji.txt", "hello", FormatUnknown, true, "unsupported extension"},
		{"tiny.json", "[", FormatUnknown, true, "too small for json"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatal(err)
			}
			format, err := DetectFileFormat(path)
			if tc.expectError != (err != nil) {
				t.Fatalf("expected error=%v, got %v", tc.expectError, err)
			}
			if format != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, format)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory("gif"); err != nil || c != CategoryGIF {
		t.Errorf("expected gif, got %q (%v)", c, err)
	}
	if _, err := ParseCategory("stickers"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestItemIdentity(t *testing.T) {
	text := Item{Base: Emoji{String: "😀", Name: "grinning face"}}
	visual := Item{Base: Emoji{String: "ignored", VisualContent: &VisualContent{ID: "gif-1"}}}
	if text.Key() != "😀" {
		t.Errorf("text key = %q", text.Key())
	}
	if visual.Key() != "gif-1" {
		t.Errorf("visual key = %q", visual.Key())
	}

	clone := visual.Clone()
	clone.Base.VisualContent.ID = "changed"
	if visual.Key() != "gif-1" {
		t.Error("Clone must not alias visual content")
	}
}

func TestIsCatalogFile(t *testing.T) {
	testCases := []struct {
		name        string
		expected    bool
		description string
	}{
		{"emoji.json", true, "json catalog"},
		{"symbol.msgpack", true, "msgpack catalog"},
		{"emoticon.MPK", true, "extension is case-insensitive"},
		{"flags.json", false, "unknown category"},
		{"emoji.txt", false, "unsupported extension"},
		{"dict_0001.bin", false, "unrelated file"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			if got := IsCatalogFile(tc.name); got != tc.expected {
				t.Errorf("IsCatalogFile(%q) = %v, expected %v", tc.name, got, tc.expected)
			}
		})
	}
}
