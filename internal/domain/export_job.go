package domain

import (
	"time"

	"github.com/google/uuid"
)

// Export backends recorded on an ExportJob.
const (
	BackendServer = "server"
	BackendPrint  = "print"
	BackendLocal  = "local"
)

// Export job statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ExportJob records one export attempt.
type ExportJob struct {
	ID         uuid.UUID      `json:"id"`
	DocumentID string         `json:"document_id"`
	Backend    string         `json:"backend"`
	TemplateID string         `json:"template_id"`
	Filename   string         `json:"filename"`
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
	SizeBytes  int            `json:"size_bytes"`
	CacheHit   bool           `json:"cache_hit"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
