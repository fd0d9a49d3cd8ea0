package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// ZipExtension is the extension of bundles produced by ZipPacker
const ZipExtension = ".zip"

// zipModTime is stamped on every entry so identical inputs give identical archives
var zipModTime = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// ZipPacker packs entries into a zip archive, in the order given
type ZipPacker struct {
	// Store skips compression; image payloads are already compressed
	Store bool
}

// NewZipPacker creates a packer that deflates entries
func NewZipPacker() *ZipPacker {
	return &ZipPacker{}
}

// Extension returns ".zip"
func (p *ZipPacker) Extension() string {
	return ZipExtension
}

// Pack writes every entry into a new archive and returns its bytes
func (p *ZipPacker) Pack(entries []Entry) ([]byte, error) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("archive entry with empty name")
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("duplicate archive entry: %s", e.Name)
		}
		seen[e.Name] = true
	}

	method := zip.Deflate
	if p.Store {
		method = zip.Store
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		header := &zip.FileHeader{
			Name:     e.Name,
			Method:   method,
			Modified: zipModTime,
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
