// Package preview keeps a live, paginated rendering of a document that
// follows edits, viewport changes and zoom with a debounced re-measure.
package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/domain"
	"resume-builder/internal/markup"
	"resume-builder/internal/pagination"
	"resume-builder/internal/style"
)

const (
	DefaultDebounce = 250 * time.Millisecond

	MinZoom = 0.25
	MaxZoom = 3.0
)

// Config tunes every session created from a Store.
type Config struct {
	Debounce time.Duration
	Options  markup.Options
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.Options.Page.WidthMM <= 0 {
		c.Options = markup.DefaultOptions()
	}
	return c
}

// View is one measured state of a session.
type View struct {
	Revision   uint64              `json:"revision"`
	Pages      int                 `json:"pageCount"`
	Frames     []pagination.Window `json:"frames"`
	HeightPx   float64             `json:"heightPx"`
	Confidence string              `json:"confidence"`
	Degraded   bool                `json:"degraded"`
	Zoom       float64             `json:"zoom"`
	FitToWidth bool                `json:"fitToWidth"`
	TemplateID string              `json:"templateId"`
	HTML       string              `json:"-"`
}

// measurer serializes access to a surface shared by many sessions.
type measurer struct {
	mu      sync.Mutex
	surface pagination.MeasurementSurface
}

func (m *measurer) paginate(ctx context.Context, r *markup.Rendered, g pagination.Geometry) pagination.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pagination.Paginate(ctx, m.surface, r, g)
}

// Session is a single live preview.
type Session struct {
	id  uuid.UUID
	cfg Config
	m   *measurer

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	doc      *domain.Document
	viewport float64
	zoom     float64 // 0 means fit to width
	rev      uint64
	timer    *time.Timer
	view     View
	changes  chan View
	closed   bool
}

func newSession(id uuid.UUID, doc *domain.Document, viewport, zoom float64, cfg Config, m *measurer) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:       id,
		cfg:      cfg,
		m:        m,
		ctx:      ctx,
		cancel:   cancel,
		doc:      doc.Clone(),
		viewport: viewport,
		zoom:     clampZoom(zoom),
		rev:      1,
		changes:  make(chan View, 1),
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

// Update replaces the document snapshot.
func (s *Session) Update(doc *domain.Document) {
	snap := doc.Clone()
	s.mu.Lock()
	s.doc = snap
	s.scheduleLocked()
	s.mu.Unlock()
}

// Resize records a new viewport width in CSS pixels.
func (s *Session) Resize(widthPx float64) {
	s.mu.Lock()
	s.viewport = widthPx
	s.scheduleLocked()
	s.mu.Unlock()
}

// SetZoom sets an explicit zoom factor; zero or less switches to fit-to-width.
func (s *Session) SetZoom(z float64) {
	s.mu.Lock()
	s.zoom = clampZoom(z)
	s.scheduleLocked()
	s.mu.Unlock()
}

// View returns the most recent measured state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Changes delivers each newly measured View. Only the latest is buffered.
// The channel is closed by Close.
func (s *Session) Changes() <-chan View { return s.changes }

// Refresh measures now, skipping any pending debounce.
func (s *Session) Refresh(ctx context.Context) View {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	return s.recompute(ctx)
}

// Close stops pending work and closes Changes.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
	close(s.changes)
}

func (s *Session) scheduleLocked() {
	if s.closed {
		return
	}
	s.rev++
	if s.timer == nil {
		s.timer = time.AfterFunc(s.cfg.Debounce, func() { s.recompute(s.ctx) })
		return
	}
	s.timer.Reset(s.cfg.Debounce)
}

func (s *Session) recompute(ctx context.Context) View {
	s.mu.Lock()
	doc, viewport, zoom, rev := s.doc, s.viewport, s.zoom, s.rev
	s.mu.Unlock()

	v := s.measure(ctx, doc, viewport, zoom)
	v.Revision = rev

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || rev < s.view.Revision {
		return s.view
	}
	s.view = v
	select {
	case <-s.changes:
	default:
	}
	s.changes <- v
	return v
}

func (s *Session) measure(ctx context.Context, doc *domain.Document, viewport, zoom float64) View {
	g := pagination.GeometryFor(s.cfg.Options)
	var templateID string
	if doc != nil {
		templateID = doc.TemplateID
	}
	cfg := style.Resolve(templateID)
	v := View{TemplateID: cfg.ID, Zoom: zoom}
	if zoom == 0 {
		v.FitToWidth = true
		v.Zoom = FitZoom(viewport, g.PageWidthPx)
	}

	r, err := markup.RenderWith(doc, cfg, s.cfg.Options)
	if err != nil {
		slog.Error("preview: render markup", "session", s.id, "error", err)
		v.Pages, v.Confidence, v.Degraded = 1, pagination.ConfidenceApproximate, true
		v.Frames = pagination.Windows(pagination.Result{Pages: 1}, g)
		return v
	}

	res := s.m.paginate(ctx, r, g)
	v.Pages = res.Pages
	v.HeightPx = res.HeightPx
	v.Confidence = res.Confidence
	v.Degraded = res.Degraded
	v.Frames = pagination.Windows(res, g)
	v.HTML, err = RenderStack(r, res, g, v.Zoom)
	if err != nil {
		slog.Error("preview: render page stack", "session", s.id, "error", err)
	}
	return v
}

// FitZoom scales a page to the viewport width, within [MinZoom, MaxZoom].
// Without a viewport it returns 1.
func FitZoom(viewportPx, pageWidthPx float64) float64 {
	if viewportPx <= 0 || pageWidthPx <= 0 {
		return 1
	}
	return min(max(viewportPx/pageWidthPx, MinZoom), MaxZoom)
}

func clampZoom(z float64) float64 {
	if z <= 0 {
		return 0
	}
	return min(max(z, MinZoom), MaxZoom)
}
