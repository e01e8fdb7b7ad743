package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"studio/pkg/zip"
)

// Export packs entries into a zip archive: history.json with the full list
// plus one plain-text card per entry.
func Export(entries []Entry) ([]byte, error) {
	listing, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("history: marshal export: %w", err)
	}
	assets := make([]zip.Asset, 0, len(entries)+1)
	var newest time.Time
	if len(entries) > 0 {
		newest = entries[0].CreatedAt
	}
	assets = append(assets, zip.Asset{Filename: "history.json", Data: listing, Modified: newest})
	used := map[string]bool{"history.json": true}
	for _, e := range entries {
		assets = append(assets, zip.Asset{
			Filename: cardFilename(e.ID, used),
			Data:     []byte(entryCard(e)),
			Modified: e.CreatedAt,
		})
	}
	return zip.ArchiveAssets(assets)
}

func entryCard(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "id: %s\n", e.ID)
	fmt.Fprintf(&b, "style: %s\n", e.Style)
	fmt.Fprintf(&b, "created_at: %s\n", e.CreatedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "image_url: %s\n", e.ImageURL)
	fmt.Fprintf(&b, "prompt: %s\n", e.Prompt)
	return b.String()
}

// cardFilename returns a card name not yet in used and marks it taken. Ids
// that sanitise to the same name get a numeric suffix.
func cardFilename(id string, used map[string]bool) string {
	base := safeFilename(id)
	name := base + ".txt"
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s-%d.txt", base, n)
	}
	used[name] = true
	return name
}

func safeFilename(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
