package zip

import (
	"bytes"
	"fmt"
	"time"

	"github.com/klauspost/compress/zip"
)

// Asset is one file placed into an archive.
type Asset struct {
	Filename string
	Data     []byte
	Modified time.Time
}

// ArchiveAssets packs assets into an in-memory deflate-compressed archive.
// Entries keep the order they are given in.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		header := &zip.FileHeader{
			Name:   asset.Filename,
			Method: zip.Deflate,
		}
		if !asset.Modified.IsZero() {
			header.Modified = asset.Modified
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", asset.Filename, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", asset.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}
