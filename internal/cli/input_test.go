package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/picker"
	"github.com/bastiangx/emojiserve/pkg/storage"
	"github.com/c-bata/go-prompt"
)

func newHandler(t *testing.T) (*InputHandler, *bytes.Buffer) {
	t.Helper()
	e := picker.New(storage.NewMemory(), picker.Options{})
	err := e.SetCatalog(catalog.CategoryEmoji, []catalog.Group{{Emoji: []catalog.Item{
		{Base: catalog.Emoji{String: "😀", Name: "grinning face"}},
		{Base: catalog.Emoji{String: "🐱", Name: "cat face"}},
	}}})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	h := NewInputHandler(e, 10)
	h.out = &out
	return h, &out
}

func TestSearchAndPick(t *testing.T) {
	h, out := newHandler(t)

	h.execute("face")
	if !strings.Contains(out.String(), "Found 2 results") {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	h.execute(":pick 1")
	if !strings.Contains(out.String(), "Selected 😀") {
		t.Errorf("output = %q", out.String())
	}

	recents, _ := h.engine.Recents(catalog.CategoryEmoji)
	if len(recents) != 1 || recents[0].Key() != "😀" {
		t.Errorf("recents = %+v", recents)
	}

	out.Reset()
	h.execute(":recents")
	if !strings.Contains(out.String(), "grinning face") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCategorySwitch(t *testing.T) {
	h, _ := newHandler(t)
	h.execute(":cat symbol")
	if h.category != catalog.CategorySymbol {
		t.Errorf("category = %s", h.category)
	}
	h.execute(":cat nope")
	if h.category != catalog.CategorySymbol {
		t.Error("invalid category must not switch")
	}
}

func TestComplete(t *testing.T) {
	h, _ := newHandler(t)

	testCases := []struct {
		text        string
		expected    int
		description string
	}{
		{"gri", 1, "prefix of a name"},
		{"face", 2, "shared token"},
		{":ca", 0, "commands are not completed"},
		{"", 0, "empty input"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			buf := prompt.NewBuffer()
			buf.InsertText(tc.text, false, true)
			if got := h.complete(*buf.Document()); len(got) != tc.expected {
				t.Errorf("got %d suggestions, expected %d", len(got), tc.expected)
			}
		})
	}
}
