// Package storage uploads generated reports to object storage.
package storage

import (
	"context"
	"path"
	"path/filepath"
	"strings"
)

// Store uploads the file at localPath under key and returns its location.
type Store interface {
	Put(ctx context.Context, key, localPath string) (string, error)
}

// ObjectKey builds <prefix>/<ownerID>/<runID>/<fileName>, skipping empty parts.
func ObjectKey(prefix, ownerID, runID, fileName string) string {
	return path.Join(strings.Trim(prefix, "/"), ownerID, runID, filepath.Base(fileName))
}

// ContentType returns the MIME type for a report file.
func ContentType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
