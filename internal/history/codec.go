package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"studio/internal/domain"
)

// record is the persisted shape of one entry. createdAt is kept as a string
// so a malformed timestamp fails only its own entry.
type record struct {
	ID        string `json:"id"`
	ImageURL  string `json:"imageUrl"`
	Prompt    string `json:"prompt"`
	Style     string `json:"style"`
	CreatedAt string `json:"createdAt"`
}

func encodeEntries(entries []Entry) ([]byte, error) {
	records := make([]record, 0, len(entries))
	for _, e := range entries {
		records = append(records, record{
			ID:        e.ID,
			ImageURL:  e.ImageURL,
			Prompt:    e.Prompt,
			Style:     string(e.Style),
			CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	return json.Marshal(records)
}

var errMissingID = errors.New("missing id")

// validID reports whether id survives a decode round trip.
func validID(id string) bool {
	return strings.TrimSpace(id) != ""
}

// skippedRecord describes an element dropped while decoding.
type skippedRecord struct {
	Index  int
	Reason error
}

// decodeEntries parses a persisted array element by element. A broken
// element is reported in skipped and left out; only a value that is not a
// JSON array at all fails as a whole.
func decodeEntries(data []byte) ([]Entry, []skippedRecord, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("history: decode array: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	var skipped []skippedRecord
	for i, item := range raw {
		entry, err := decodeRecord(item)
		if err != nil {
			skipped = append(skipped, skippedRecord{Index: i, Reason: err})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped, nil
}

func decodeRecord(item json.RawMessage) (Entry, error) {
	var rec record
	if err := json.Unmarshal(item, &rec); err != nil {
		return Entry{}, err
	}
	if !validID(rec.ID) {
		return Entry{}, errMissingID
	}
	createdAt, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("createdAt: %w", err)
	}
	return Entry{
		ID:        rec.ID,
		ImageURL:  rec.ImageURL,
		Prompt:    rec.Prompt,
		Style:     domain.Style(rec.Style),
		CreatedAt: createdAt,
	}, nil
}
