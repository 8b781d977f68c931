package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/markup"
	"resume-builder/internal/style"
	"resume-builder/pkg/localpdf"
)

// Renderer turns a standalone HTML page into PDF bytes.
type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string, opts markup.Options) ([]byte, error)
}

// LocalExporter renders without a browser.
type LocalExporter interface {
	Export(ctx context.Context, doc *domain.Document, opts localpdf.Options) (*localpdf.Result, error)
}

// JobsRepo records export attempts.
type JobsRepo interface {
	Save(ctx context.Context, j *domain.ExportJob) error
}

// Cache stores finished files by content key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, pdf []byte) error
}

// Exporter runs server-side exports. Each attempt produces either a whole
// PDF or a single *export.Error; it is never retried.
type Exporter struct {
	renderer    Renderer
	local       LocalExporter
	repo        JobsRepo
	cache       Cache
	timeout     time.Duration
	artifactDir string
}

type Option func(*Exporter)

func WithLocal(l LocalExporter) Option   { return func(e *Exporter) { e.local = l } }
func WithRepo(r JobsRepo) Option         { return func(e *Exporter) { e.repo = r } }
func WithCache(c Cache) Option           { return func(e *Exporter) { e.cache = c } }
func WithTimeout(d time.Duration) Option { return func(e *Exporter) { e.timeout = d } }
func WithArtifactDir(dir string) Option  { return func(e *Exporter) { e.artifactDir = dir } }

func NewExporter(r Renderer, opts ...Option) *Exporter {
	e := &Exporter{renderer: r, timeout: 90 * time.Second}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Export renders req.Document with the requested engine.
func (e *Exporter) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if req.Document == nil {
		return nil, export.Wrap("validate", export.ErrInvalidDocument)
	}
	doc := req.Document.Clone()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if req.Engine == EngineLocal {
		return e.exportLocal(ctx, doc, req.Filename)
	}
	return e.run(ctx, domain.BackendServer, doc, req.Filename, markup.DefaultOptions())
}

// Print renders a resume-for-print payload with the requested geometry.
func (e *Exporter) Print(ctx context.Context, req PrintRequest) (*ExportResult, error) {
	if req.Resume == nil {
		return nil, export.Wrap("validate", export.ErrInvalidDocument)
	}
	opts := markup.Options{Page: markup.PageSizeByName(req.PaperSize), MarginIn: req.MarginInches}
	if opts.MarginIn <= 0 {
		opts.MarginIn = markup.DefaultMarginIn
	}
	doc := req.Resume.ToDocument()
	doc.ID = uuid.NewString()
	return e.run(ctx, domain.BackendPrint, doc, "", opts)
}

func (e *Exporter) run(ctx context.Context, backend string, doc *domain.Document, filename string, opts markup.Options) (*ExportResult, error) {
	cfg := style.Resolve(doc.TemplateID)
	job := e.newJob(backend, doc, cfg, export.FileName(doc, filename))
	fail := func(op string, err error) (*ExportResult, error) {
		err = export.Wrap(op, err)
		e.record(ctx, job, nil, err)
		return nil, err
	}

	r, err := markup.RenderWith(doc, cfg, opts)
	if err != nil {
		return fail("markup", err)
	}
	key := cacheKey(r.HTML, opts)
	job.Metadata["content_key"] = key

	if pdf, ok := e.cached(ctx, key); ok {
		job.CacheHit = true
		e.record(ctx, job, pdf, nil)
		return &ExportResult{JobID: job.ID, Filename: job.Filename, Bytes: pdf, CacheHit: true}, nil
	}

	rctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	start := time.Now()
	pdf, err := e.renderer.RenderHTMLToPDF(rctx, r.HTML, opts)
	if err != nil {
		return fail("print", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		return fail("print", fmt.Errorf("%w (len=%d)", export.ErrNotPDF, len(pdf)))
	}
	job.Metadata["render_ms"] = time.Since(start).Milliseconds()

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, pdf); err != nil {
			slog.Warn("export: cache store failed", "job", job.ID, "error", err)
		}
	}
	e.saveArtifacts(job, r.HTML, pdf)
	e.record(ctx, job, pdf, nil)
	return &ExportResult{JobID: job.ID, Filename: job.Filename, Bytes: pdf}, nil
}

func (e *Exporter) exportLocal(ctx context.Context, doc *domain.Document, filename string) (*ExportResult, error) {
	cfg := style.Resolve(doc.TemplateID)
	job := e.newJob(domain.BackendLocal, doc, cfg, export.FileName(doc, filename))
	if e.local == nil {
		err := export.Wrap("validate", fmt.Errorf("%w: local engine not configured", export.ErrEngine))
		e.record(ctx, job, nil, err)
		return nil, err
	}
	res, err := e.local.Export(ctx, doc, localpdf.Options{Filename: filename})
	if err != nil {
		err = export.Wrap("render", err)
		e.record(ctx, job, nil, err)
		return nil, err
	}
	job.Metadata["pages"] = res.Pages
	e.record(ctx, job, res.Bytes, nil)
	return &ExportResult{JobID: job.ID, Filename: res.Filename, Bytes: res.Bytes}, nil
}

func (e *Exporter) newJob(backend string, doc *domain.Document, cfg style.Config, filename string) *domain.ExportJob {
	now := time.Now().UTC()
	return &domain.ExportJob{
		ID:         uuid.New(),
		DocumentID: doc.ID,
		Backend:    backend,
		TemplateID: cfg.ID,
		Filename:   filename,
		Metadata:   map[string]any{"requested_template": doc.TemplateID},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (e *Exporter) cached(ctx context.Context, key string) ([]byte, bool) {
	if e.cache == nil {
		return nil, false
	}
	pdf, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("export: cache lookup failed", "key", key, "error", err)
		return nil, false
	}
	return pdf, ok && bytes.HasPrefix(pdf, []byte("%PDF"))
}

// record persists the outcome. Persistence problems are logged; they never
// change the result the caller gets.
func (e *Exporter) record(ctx context.Context, job *domain.ExportJob, pdf []byte, err error) {
	job.UpdatedAt = time.Now().UTC()
	if err != nil {
		job.Status = domain.StatusFailed
		job.Error = err.Error()
		slog.Error("export failed", "job", job.ID, "backend", job.Backend, "document", job.DocumentID, "error", err)
	} else {
		job.Status = domain.StatusCompleted
		job.SizeBytes = len(pdf)
		slog.Info("export completed", "job", job.ID, "backend", job.Backend, "document", job.DocumentID,
			"bytes", job.SizeBytes, "cache_hit", job.CacheHit)
	}
	if e.repo == nil {
		return
	}
	if serr := e.repo.Save(context.WithoutCancel(ctx), job); serr != nil {
		slog.Warn("export: unable to save job", "job", job.ID, "error", serr)
	}
}

// saveArtifacts keeps the HTML and PDF of a finished export for inspection.
func (e *Exporter) saveArtifacts(job *domain.ExportJob, html string, pdf []byte) {
	if e.artifactDir == "" {
		return
	}
	if err := os.MkdirAll(e.artifactDir, 0o755); err != nil {
		slog.Warn("export: artifact dir", "error", err)
		return
	}
	base := filepath.Join(e.artifactDir, job.ID.String())
	if err := os.WriteFile(base+".html", []byte(html), 0o644); err != nil {
		slog.Warn("export: write html artifact", "error", err)
		return
	}
	if err := os.WriteFile(base+".pdf", pdf, 0o644); err != nil {
		slog.Warn("export: write pdf artifact", "error", err)
		return
	}
	job.Metadata["generated_html"] = base + ".html"
	job.Metadata["generated_pdf"] = base + ".pdf"
}

func cacheKey(html string, opts markup.Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%.3f|", opts.Page.Name, opts.MarginIn)
	h.Write([]byte(html))
	return hex.EncodeToString(h.Sum(nil))
}
