// Package cli provides the interactive REPL for trying searches, selections and GIF paging by hand
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/picker"
	"github.com/c-bata/go-prompt"
	"github.com/charmbracelet/log"
)

const suggestLimit = 8

// InputHandler runs REPL commands against a picker engine
type InputHandler struct {
	engine   *picker.Engine
	category catalog.Category
	limit    int
	last     []catalog.Item
	gifQuery string
	out      io.Writer
}

// NewInputHandler creates a REPL starting in the emoji category
func NewInputHandler(engine *picker.Engine, limit int) *InputHandler {
	return &InputHandler{
		engine:   engine,
		category: catalog.CategoryEmoji,
		limit:    limit,
		out:      os.Stdout,
	}
}

// Start runs the prompt until :quit or Ctrl+D
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, "emojiserve REPL [BETA]")
	h.printHelp()

	p := prompt.New(
		h.execute,
		h.complete,
		prompt.OptionPrefix("emoji >> "),
		prompt.OptionLivePrefix(func() (string, bool) { return string(h.category) + " >> ", true }),
		prompt.OptionTitle("emojiserve"),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && strings.TrimSpace(in) == ":quit"
		}),
	)
	p.Run()
	return nil
}

func (h *InputHandler) printHelp() {
	fmt.Fprintln(h.out, "Type a query to search the current category, or a command:")
	fmt.Fprintln(h.out, "  :cat <name>    - switch category (emoji, symbol, emoticon, gif)")
	fmt.Fprintln(h.out, "  :pick <n>      - select the nth result of the last listing")
	fmt.Fprintln(h.out, "  :recents       - show history of the current category")
	fmt.Fprintln(h.out, "  :clear         - clear history of the current category")
	fmt.Fprintln(h.out, "  :prefs         - show preferred variants")
	fmt.Fprintln(h.out, "  :gif <query>   - list GIFs (\"trending\" for featured)")
	fmt.Fprintln(h.out, "  :more          - next GIF page")
	fmt.Fprintln(h.out, "  :stats         - index counters")
	fmt.Fprintln(h.out, "  :help, :quit")
}

// complete suggests names of matching items as the query is typed
func (h *InputHandler) complete(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	if strings.HasPrefix(text, ":") || strings.TrimSpace(text) == "" || h.category == catalog.CategoryGIF {
		return nil
	}
	hits, err := h.engine.Search(h.category, text, suggestLimit)
	if err != nil {
		return nil
	}
	suggestions := make([]prompt.Suggest, 0, len(hits))
	for _, hit := range hits {
		suggestions = append(suggestions, prompt.Suggest{Text: hit.Item.Name(), Description: display(hit.Item, hit.Preferred)})
	}
	return suggestions
}

func (h *InputHandler) execute(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}
	if !strings.HasPrefix(input, ":") {
		h.search(input)
		return
	}

	parts := strings.Fields(input)
	arg := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
	switch parts[0] {
	case ":cat":
		c, err := catalog.ParseCategory(arg)
		if err != nil {
			log.Error(err)
			return
		}
		h.category = c
		h.last = nil
	case ":pick":
		h.pick(arg)
	case ":recents":
		h.recents()
	case ":clear":
		if err := h.engine.ClearRecents(h.category); err != nil {
			log.Error(err)
		}
	case ":prefs":
		prefs, err := h.engine.Preferences(h.category)
		if err != nil {
			log.Error(err)
			return
		}
		for base, chosen := range prefs {
			fmt.Fprintf(h.out, "  %s -> %s\n", base, chosen)
		}
	case ":gif":
		h.gifQuery = arg
		res, err := h.engine.ActivateGIFs(context.Background(), arg)
		h.showGIFs(res.Items, res.Offset, res.Status.String(), err)
	case ":more":
		res, err := h.engine.MoreGIFs(context.Background(), h.gifQuery)
		h.showGIFs(res.Items, res.Offset, res.Status.String(), err)
	case ":stats":
		for c, stats := range h.engine.Stats() {
			fmt.Fprintf(h.out, "  %-9s items=%d tokens=%d\n", c, stats["items"], stats["tokens"])
		}
	case ":help":
		h.printHelp()
	case ":quit":
		// handled by the exit checker
	default:
		log.Errorf("Unknown command: %s", parts[0])
	}
}

func (h *InputHandler) search(query string) {
	start := time.Now()
	hits, err := h.engine.Search(h.category, query, h.limit)
	if err != nil {
		log.Error(err)
		return
	}
	log.Debugf("Took [ %v ] for query '%s'", time.Since(start), query)

	if len(hits) == 0 {
		log.Warnf("No results for '%s'", query)
		return
	}
	h.last = h.last[:0]
	fmt.Fprintf(h.out, "Found %d results for '%s':\n", len(hits), query)
	for i, hit := range hits {
		h.last = append(h.last, hit.Item)
		name := fmt.Sprintf("\033[38;5;75m%s\033[0m", hit.Item.Name())
		fmt.Fprintf(h.out, "%2d. %-4s %-44s (score: %.4f)\n", i+1, display(hit.Item, hit.Preferred), name, hit.Score)
	}
}

func (h *InputHandler) pick(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(h.last) {
		log.Errorf("Pick a number between 1 and %d", len(h.last))
		return
	}
	item := h.last[n-1]

	if item.Base.IsVisual() {
		err = h.engine.SelectVisual(catalog.CategoryGIF, item)
	} else {
		_, err = h.engine.SelectText(h.category, picker.TextSelection{
			Text:          item.Base.String,
			Name:          item.Base.Name,
			Alternates:    item.Alternates,
			GroupedTone:   item.GroupedTone,
			GroupedGender: item.GroupedGender,
		})
	}
	if err != nil {
		log.Error(err)
		return
	}
	fmt.Fprintf(h.out, "Selected %s\n", display(item, ""))
}

func (h *InputHandler) recents() {
	items, err := h.engine.Recents(h.category)
	if err != nil {
		log.Error(err)
		return
	}
	h.last = items
	for i, it := range items {
		fmt.Fprintf(h.out, "%2d. %-4s %s\n", i+1, display(it, ""), it.Name())
	}
}

func (h *InputHandler) showGIFs(items []catalog.Item, offset int, status string, err error) {
	if err != nil {
		log.Error(err)
		return
	}
	if status != "ok" {
		log.Warnf("GIF fetch failed (%s), use :more to retry", status)
		return
	}
	if offset == 0 {
		h.last = h.last[:0]
	}
	for i, it := range items {
		h.last = append(h.last, it)
		fmt.Fprintf(h.out, "%2d. %-36s %s\n", offset+i+1, it.Name(), it.Base.VisualContent.URL.Preview)
	}
}

// display renders an item, preferring the chosen variant when set
func display(it catalog.Item, preferred string) string {
	if preferred != "" {
		return preferred
	}
	if it.Base.IsVisual() {
		return "[gif]"
	}
	return it.Base.String
}
