package model

import "errors"

// Export constants
const (
	ExportFolder       = "exports/donor-history"
	ExportExt          = ".json"
	ContentTypeJSON    = "application/json"
	ExportCacheControl = "private, no-store"
)

// ExportResult describes an uploaded donor history snapshot.
type ExportResult struct {
	URL   string `json:"url"`
	Key   string `json:"key"`
	Count int    `json:"count"`
}

var (
	ErrExportNotConfigured = errors.New("object storage not configured")
)
