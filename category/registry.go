// Package category keeps the known expense categories and their display colors.
package category

import (
	"strings"
	"unicode/utf16"
)

var defaultNames = []string{
	"Alimentação", "Transporte", "Moradia", "Lazer", "Saúde", "Compras", "Outros",
}

var knownColors = map[string]string{
	"Alimentação": "bg-orange-500",
	"Transporte":  "bg-blue-500",
	"Moradia":     "bg-red-500",
	"Lazer":       "bg-purple-500",
	"Saúde":       "bg-green-500",
	"Compras":     "bg-pink-500",
	"Outros":      "bg-gray-500",
}

var fallbackPalette = []string{
	"bg-indigo-500", "bg-teal-500", "bg-rose-500", "bg-cyan-500", "bg-lime-500", "bg-fuchsia-500",
}

// Defaults returns the categories every registry starts with.
func Defaults() []string {
	return append([]string(nil), defaultNames...)
}

// ColorFor returns the display token for a category. Default categories have fixed tokens;
// any other name is hashed by summing its UTF-16 code units into the fallback palette.
func ColorFor(name string) string {
	if color, ok := knownColors[name]; ok {
		return color
	}
	sum := 0
	for _, unit := range utf16.Encode([]rune(name)) {
		sum += int(unit)
	}
	return fallbackPalette[sum%len(fallbackPalette)]
}

// Registry is the ordered set of category names, in first-seen order. Names are case-sensitive
// and never removed.
type Registry struct {
	names []string
	index map[string]struct{}
}

// NewRegistry builds a registry from names. With no names it is seeded with Defaults.
func NewRegistry(names ...string) *Registry {
	if len(names) == 0 {
		names = defaultNames
	}
	r := &Registry{index: make(map[string]struct{}, len(names))}
	for _, name := range names {
		r.Add(name)
	}
	return r
}

// Add appends name if it is new and reports whether it was added. Blank names are ignored.
func (r *Registry) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if _, ok := r.index[name]; ok {
		return false
	}
	r.index[name] = struct{}{}
	r.names = append(r.names, name)
	return true
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.index[strings.TrimSpace(name)]
	return ok
}

// Names returns a copy of the registered names.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Entry pairs a category with its color.
type Entry struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Entries returns every registered category with its color.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, len(r.names))
	for _, name := range r.names {
		entries = append(entries, Entry{Name: name, Color: ColorFor(name)})
	}
	return entries
}
