package history

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

func TestExport(t *testing.T) {
	entries := []Entry{sampleResult(2), sampleResult(1)}
	entries[0].ID = "gen/2"

	data, err := Export(entries)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader error: %v", err)
	}
	if len(zr.File) != 3 {
		t.Fatalf("expected 3 files, got %d", len(zr.File))
	}
	names := []string{zr.File[0].Name, zr.File[1].Name, zr.File[2].Name}
	if names[0] != "history.json" || names[1] != "gen_2.txt" || names[2] != "gen_1.txt" {
		t.Fatalf("unexpected names: %v", names)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	listing, _ := io.ReadAll(rc)
	rc.Close()
	var decoded []map[string]any
	if err := json.Unmarshal(listing, &decoded); err != nil {
		t.Fatalf("history.json is not valid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0]["imageUrl"] == nil {
		t.Fatalf("unexpected listing: %s", listing)
	}

	rc, err = zr.File[2].Open()
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	card, _ := io.ReadAll(rc)
	rc.Close()
	if !strings.Contains(string(card), "prompt: prompt 1") || !strings.Contains(string(card), "style: vintage") {
		t.Fatalf("unexpected card: %s", card)
	}
}

func TestExportDistinctCardNames(t *testing.T) {
	entries := []Entry{sampleResult(3), sampleResult(2), sampleResult(1)}
	entries[0].ID = "a.b"
	entries[1].ID = "a:b"
	entries[2].ID = "a_b"

	data, err := Export(entries)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader error: %v", err)
	}
	want := []string{"history.json", "a_b.txt", "a_b-2.txt", "a_b-3.txt"}
	if len(zr.File) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != want[i] {
			t.Fatalf("file %d = %q, want %q", i, f.Name, want[i])
		}
	}

	rc, err := zr.File[2].Open()
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	card, _ := io.ReadAll(rc)
	rc.Close()
	if !strings.Contains(string(card), "id: a:b\n") {
		t.Fatalf("second card belongs to another entry: %s", card)
	}
}
