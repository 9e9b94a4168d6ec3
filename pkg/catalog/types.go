// Package catalog holds the item model shared by search, recents and GIF paging,
// plus loaders for the on-disk catalog files.
package catalog

import (
	"errors"
	"fmt"
)

// Category partitions catalogs, indexes and history stores.
type Category string

const (
	CategoryEmoji    Category = "emoji"
	CategorySymbol   Category = "symbol"
	CategoryEmoticon Category = "emoticon"
	CategoryGIF      Category = "gif"
)

// Categories lists every category in tab order.
var Categories = []Category{CategoryEmoji, CategorySymbol, CategoryEmoticon, CategoryGIF}

var ErrUnknownCategory = errors.New("unknown category")

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Tone and Gender mirror the picker's variant grouping attributes.
type Tone int

type Gender int

const (
	ToneDefault   Tone   = 1
	GenderDefault Gender = 1
)

// URL holds the renditions of a visual item.
type URL struct {
	Full    string `json:"full" msgpack:"full"`
	Preview string `json:"preview" msgpack:"preview"`
}

// Size is a preview size in logical pixels.
type Size struct {
	Width  int `json:"width" msgpack:"width"`
	Height int `json:"height" msgpack:"height"`
}

// VisualContent describes a remote, non-textual item such as a GIF.
type VisualContent struct {
	ID          string `json:"id" msgpack:"id"`
	URL         URL    `json:"url" msgpack:"url"`
	PreviewSize Size   `json:"previewSize" msgpack:"previewSize"`
}

// Emoji is a single rendering of an item.
type Emoji struct {
	String        string         `json:"string,omitempty" msgpack:"string,omitempty"`
	Name          string         `json:"name,omitempty" msgpack:"name,omitempty"`
	Keywords      []string       `json:"keywords,omitempty" msgpack:"keywords,omitempty"`
	Tone          Tone           `json:"tone,omitempty" msgpack:"tone,omitempty"`
	Gender        Gender         `json:"gender,omitempty" msgpack:"gender,omitempty"`
	VisualContent *VisualContent `json:"visualContent,omitempty" msgpack:"visualContent,omitempty"`
}

// IsVisual reports whether the emoji is remote visual content.
func (e Emoji) IsVisual() bool {
	return e.VisualContent != nil
}

// Identity is the content id for visual items and the display string otherwise.
func (e Emoji) Identity() string {
	if e.VisualContent != nil {
		return e.VisualContent.ID
	}
	return e.String
}

// Item is the unit of search and recall: a base rendering and its variants.
type Item struct {
	Base          Emoji   `json:"base" msgpack:"base"`
	Alternates    []Emoji `json:"alternates,omitempty" msgpack:"alternates,omitempty"`
	GroupedTone   bool    `json:"groupedTone,omitempty" msgpack:"groupedTone,omitempty"`
	GroupedGender bool    `json:"groupedGender,omitempty" msgpack:"groupedGender,omitempty"`
}

// Key returns the stable primary key of the item.
func (it Item) Key() string {
	return it.Base.Identity()
}

// Name returns the human-readable name of the item.
func (it Item) Name() string {
	return it.Base.Name
}

// Clone deep-copies the item so callers can't alias catalog or history slices.
func (it Item) Clone() Item {
	out := it
	out.Base = it.Base.clone()
	if it.Alternates != nil {
		out.Alternates = make([]Emoji, len(it.Alternates))
		for i, a := range it.Alternates {
			out.Alternates[i] = a.clone()
		}
	}
	return out
}

func (e Emoji) clone() Emoji {
	out := e
	if e.Keywords != nil {
		out.Keywords = append([]string(nil), e.Keywords...)
	}
	if e.VisualContent != nil {
		vc := *e.VisualContent
		out.VisualContent = &vc
	}
	return out
}

// Group is a named subcategory of items, as shipped in the catalog files.
type Group struct {
	Group string `json:"group" msgpack:"group"`
	Emoji []Item `json:"emoji" msgpack:"emoji"`
}

// Flatten concatenates the items of every group in order.
func Flatten(groups []Group) []Item {
	n := 0
	for _, g := range groups {
		n += len(g.Emoji)
	}
	items := make([]Item, 0, n)
	for _, g := range groups {
		items = append(items, g.Emoji...)
	}
	return items
}
