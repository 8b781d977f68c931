package usecase

import (
	"github.com/google/uuid"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
)

// Engine selects which backend produces an export.
type Engine string

const (
	EngineChrome Engine = "chrome"
	EngineLocal  Engine = "local"
)

// ExportRequest asks for a PDF of a Document.
type ExportRequest struct {
	Document *domain.Document
	Filename string
	Engine   Engine
}

// PrintRequest asks for a PDF of a resume-for-print payload with explicit
// paper geometry. Empty fields take the defaults (A4, half-inch margins).
type PrintRequest struct {
	Resume       *model.Resume
	PaperSize    string
	MarginInches float64
}

// ExportResult is a finished file.
type ExportResult struct {
	JobID    uuid.UUID
	Filename string
	Bytes    []byte
	CacheHit bool
}
