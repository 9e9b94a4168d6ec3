package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/config"
)

const sampleCatalog = `[{"group": "smileys", "emoji": [
  {"base": {"string": "😀", "name": "grinning face"}},
  {"base": {"string": "😺", "name": "grinning cat"}}
]}]`

func TestEngineOptions(t *testing.T) {
	testCases := []struct {
		enabled     bool
		incognito   bool
		description string
	}{
		{false, false, "gif backend disabled"},
		{true, false, "gif backend enabled"},
		{true, true, "incognito with gifs"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.GIF.Enabled = tc.enabled
			cfg.Recent.Incognito = tc.incognito

			opts := engineOptions(cfg)
			if (opts.Fetcher != nil) != tc.enabled || (opts.Lookup != nil) != tc.enabled || (opts.Monitor != nil) != tc.enabled {
				t.Errorf("gif collaborators wired = %v, expected %v", opts.Fetcher != nil, tc.enabled)
			}
			if opts.Incognito != tc.incognito || opts.MaxRecents != cfg.Recent.MaxRecents {
				t.Errorf("unexpected options: %+v", opts)
			}
			if tc.enabled && (opts.Paging.Threshold != 300 || opts.Paging.Timeout != cfg.GIF.FetchTimeout()) {
				t.Errorf("paging options = %+v", opts.Paging)
			}
		})
	}
}

func TestNewAppLoadsCatalogs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "emoji.json"), []byte(sampleCatalog), 0644); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[recent]\nbackend = \"memory\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	configFlag, dataFlag, incognitoFlag = configPath, dir, false
	t.Cleanup(func() { configFlag, dataFlag, incognitoFlag = "", "data/", false })

	a, err := newApp()
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if a.dataDir != dir || a.configPath != configPath {
		t.Errorf("resolved data=%s config=%s", a.dataDir, a.configPath)
	}
	hits, err := a.engine.Search(catalog.CategoryEmoji, "grin", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 hits, got %d", len(hits))
	}
}

func TestResolveDataDirFallsBack(t *testing.T) {
	empty := t.TempDir()
	if got := resolveDataDir(empty); got == "" {
		t.Error("expected a path for error reporting")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "symbol.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := resolveDataDir(dir); got != dir {
		t.Errorf("resolveDataDir = %s, expected %s", got, dir)
	}
}
