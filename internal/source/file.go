package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/disburse/internal/model"
)

// FileSource reads records from a JSON or YAML export.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path. The format is chosen by
// extension: .yaml/.yml is YAML, anything else JSON.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Kind returns "file".
func (s *FileSource) Kind() string { return "file" }

// Fetch returns the records of ownerID. Documents that carry no owner are
// always included; an empty ownerID returns every document.
func (s *FileSource) Fetch(ctx context.Context, ownerID string) ([]model.AccountRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(s.path))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yamlToJSON(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	}

	docs, err := decodeDocuments(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	var owned []document
	for _, d := range docs {
		if ownerID == "" || d.ownerID() == "" || d.ownerID() == ownerID {
			owned = append(owned, d)
		}
	}
	return toRecords(owned), nil
}
