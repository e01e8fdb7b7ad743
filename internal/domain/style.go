package domain

import (
	"fmt"
	"strings"
)

// Style enumerates the closed set of visual styles a generation can request.
type Style string

const (
	StyleEditorial  Style = "editorial"
	StyleStreetwear Style = "streetwear"
	StyleVintage    Style = "vintage"
	StyleMinimalist Style = "minimalist"
	StyleDramatic   Style = "dramatic"

	// DefaultStyle is preselected when a caller does not choose one.
	DefaultStyle = StyleEditorial
)

// StyleInfo carries the presentation metadata of a style.
type StyleInfo struct {
	Value       Style  `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var styleCatalog = []StyleInfo{
	{Value: StyleEditorial, Label: "Editorial", Description: "Professional magazine-style photography"},
	{Value: StyleStreetwear, Label: "Streetwear", Description: "Urban, fashion-forward aesthetic"},
	{Value: StyleVintage, Label: "Vintage", Description: "Classic, retro film photography"},
	{Value: StyleMinimalist, Label: "Minimalist", Description: "Clean, simple, focused composition"},
	{Value: StyleDramatic, Label: "Dramatic", Description: "High contrast, moody lighting"},
}

// Styles returns the catalog in display order.
func Styles() []StyleInfo {
	out := make([]StyleInfo, len(styleCatalog))
	copy(out, styleCatalog)
	return out
}

// Valid reports whether s is a member of the catalog.
func (s Style) Valid() bool {
	for _, info := range styleCatalog {
		if info.Value == s {
			return true
		}
	}
	return false
}

// Info returns the catalog entry for s.
func (s Style) Info() (StyleInfo, bool) {
	for _, info := range styleCatalog {
		if info.Value == s {
			return info, true
		}
	}
	return StyleInfo{}, false
}

// ParseStyle converts user input into a Style. Matching is case-insensitive;
// anything outside the catalog is rejected.
func ParseStyle(raw string) (Style, error) {
	s := Style(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedStyle, raw)
	}
	return s, nil
}
