package storage

import (
	"path/filepath"
	"testing"
)

func TestBackends(t *testing.T) {
	testCases := []struct {
		backend     string
		file        string
		description string
	}{
		{BackendMemory, "", "in-memory map"},
		{BackendBolt, "blobs.db", "bolt bucket"},
		{BackendSQLite, "blobs.sqlite", "sqlite table"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			path := ""
			if tc.file != "" {
				path = filepath.Join(t.TempDir(), "nested", tc.file)
			}
			s, err := Open(tc.backend, path)
			if err != nil {
				t.Fatalf("Open(%s) error: %v", tc.backend, err)
			}
			defer s.Close()

			if _, ok, err := s.LoadBlob("missing"); ok || err != nil {
				t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
			}

			if err := s.StoreBlob("emoji-recently-used", `{"history":[]}`); err != nil {
				t.Fatalf("StoreBlob error: %v", err)
			}
			if err := s.StoreBlob("emoji-recently-used", `{"history":[1]}`); err != nil {
				t.Fatalf("StoreBlob overwrite error: %v", err)
			}

			v, ok, err := s.LoadBlob("emoji-recently-used")
			if err != nil || !ok {
				t.Fatalf("LoadBlob: ok=%v err=%v", ok, err)
			}
			if v != `{"history":[1]}` {
				t.Errorf("LoadBlob = %q", v)
			}
		})
	}
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.db")

	s, err := OpenBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StoreBlob("k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = OpenBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if v, ok, _ := s.LoadBlob("k"); !ok || v != "v" {
		t.Errorf("expected persisted value, got %q (ok=%v)", v, ok)
	}
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory()
	m.Close()
	if err := m.StoreBlob("k", "v"); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}
