package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/preview"
	"resume-builder/internal/style"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai/formatters"
)

type Exports interface {
	Export(ctx context.Context, req usecase.ExportRequest) (*usecase.ExportResult, error)
	Print(ctx context.Context, req usecase.PrintRequest) (*usecase.ExportResult, error)
}

type Jobs interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.ExportJob, error)
	ListByDocument(ctx context.Context, documentID string, limit int) ([]domain.ExportJob, error)
}

type SummaryRewriter interface {
	Rewrite(ctx context.Context, in formatters.SummaryRequest) (*formatters.SummaryResult, error)
}

type KeywordAnalyzer interface {
	Analyze(ctx context.Context, in formatters.KeywordRequest) (*formatters.KeywordResult, error)
}

type AchievementRewriter interface {
	Rewrite(ctx context.Context, in formatters.AchievementRequest) (*formatters.AchievementResult, error)
}

type LabelsFormatter interface {
	Format(ctx context.Context) (map[string]string, error)
}

// Deps are the collaborators behind the routes. Nil members disable the
// routes that need them with 503.
type Deps struct {
	Exports      Exports
	Jobs         Jobs
	Previews     *preview.Store
	Summary      SummaryRewriter
	Keywords     KeywordAnalyzer
	Achievements AchievementRewriter
	Labels       func(language string) LabelsFormatter
}

type Handler struct {
	d Deps
}

func NewHandler(d Deps) *Handler {
	return &Handler{d: d}
}

// Register mounts every route on r.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/healthz", h.Health)
	r.Get("/api/templates", h.Templates)

	r.Post("/api/export/pdf", h.ExportPDF)
	r.Post("/api/export/print", h.ExportPrint)
	r.Get("/api/exports/:id", h.GetExport)
	r.Get("/api/documents/:id/exports", h.ListExports)

	p := r.Group("/api/preview/sessions")
	p.Post("/", h.OpenPreview)
	p.Get("/:id", h.GetPreview)
	p.Get("/:id/html", h.PreviewHTML)
	p.Put("/:id/document", h.UpdatePreviewDocument)
	p.Put("/:id/viewport", h.UpdatePreviewViewport)
	p.Delete("/:id", h.ClosePreview)

	r.Post("/api/ai/summary", h.AISummary)
	r.Post("/api/ai/keywords", h.AIKeywords)
	r.Post("/api/ai/achievements", h.AIAchievements)
	r.Post("/api/ai/labels", h.AILabels)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) Templates(c *fiber.Ctx) error {
	type entry struct {
		style.Config
		WebFontURL string `json:"webFontUrl"`
		Default    bool   `json:"default"`
	}
	all := style.All()
	out := make([]entry, 0, len(all))
	for _, cfg := range all {
		out = append(out, entry{Config: cfg, WebFontURL: cfg.WebFontURL(), Default: cfg.ID == style.DefaultID})
	}
	return c.JSON(out)
}

type exportReq struct {
	Document json.RawMessage `json:"document"`
	Filename string          `json:"filename"`
	Engine   string          `json:"engine"`
}

func (h *Handler) ExportPDF(c *fiber.Ctx) error {
	if h.d.Exports == nil {
		return unavailable(c, "export")
	}
	var req exportReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	doc, err := decodeDocument(req.Document)
	if err != nil {
		return fail(c, err)
	}
	engine := usecase.EngineChrome
	switch req.Engine {
	case "", string(usecase.EngineChrome):
	case string(usecase.EngineLocal):
		engine = usecase.EngineLocal
	default:
		return badRequest(c, "unknown engine "+strconv.Quote(req.Engine))
	}

	res, err := h.d.Exports.Export(c.UserContext(), usecase.ExportRequest{Document: doc, Filename: req.Filename, Engine: engine})
	if err != nil {
		slog.Error("export failed", "document", doc.ID, "engine", engine, "error", err)
		return fail(c, err)
	}
	c.Set("X-Export-Id", res.JobID.String())
	return c.JSON(fiber.Map{
		"filename":        res.Filename,
		"fileBytesBase64": base64.StdEncoding.EncodeToString(res.Bytes),
	})
}

type printReq struct {
	Resume       json.RawMessage `json:"resume"`
	PaperSize    string          `json:"paperSize"`
	MarginInches float64         `json:"marginInches"`
}

func (h *Handler) ExportPrint(c *fiber.Ctx) error {
	if h.d.Exports == nil {
		return unavailable(c, "export")
	}
	var req printReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if len(req.Resume) == 0 || string(req.Resume) == "null" {
		return badRequest(c, "resume is required")
	}
	if err := model.ValidateResume(req.Resume); err != nil {
		return fail(c, err)
	}
	var r model.Resume
	if err := json.Unmarshal(req.Resume, &r); err != nil {
		return badRequest(c, "invalid resume")
	}

	res, err := h.d.Exports.Print(c.UserContext(), usecase.PrintRequest{Resume: &r, PaperSize: req.PaperSize, MarginInches: req.MarginInches})
	if err != nil {
		slog.Error("print failed", "error", err)
		return fail(c, err)
	}
	c.Set("X-Export-Id", res.JobID.String())
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(res.Filename)
	return c.Send(res.Bytes)
}

func (h *Handler) GetExport(c *fiber.Ctx) error {
	if h.d.Jobs == nil {
		return unavailable(c, "export history")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	job, err := h.d.Jobs.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(job)
}

func (h *Handler) ListExports(c *fiber.Ctx) error {
	if h.d.Jobs == nil {
		return unavailable(c, "export history")
	}
	jobs, err := h.d.Jobs.ListByDocument(c.UserContext(), c.Params("id"), c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	if jobs == nil {
		jobs = []domain.ExportJob{}
	}
	return c.JSON(jobs)
}

type openPreviewReq struct {
	Document      json.RawMessage `json:"document"`
	ViewportWidth float64         `json:"viewportWidth"`
	Zoom          float64         `json:"zoom"`
}

func (h *Handler) OpenPreview(c *fiber.Ctx) error {
	if h.d.Previews == nil {
		return unavailable(c, "preview")
	}
	var req openPreviewReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	doc, err := decodeDocument(req.Document)
	if err != nil {
		return fail(c, err)
	}
	s, view := h.d.Previews.Open(c.UserContext(), doc, req.ViewportWidth, req.Zoom)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": s.ID(), "view": view})
}

func (h *Handler) session(c *fiber.Ctx) (*preview.Session, error) {
	if h.d.Previews == nil {
		return nil, unavailable(c, "preview")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, badRequest(c, "invalid id")
	}
	s, err := h.d.Previews.Get(id)
	if err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return s, nil
}

func (h *Handler) GetPreview(c *fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}
	return c.JSON(fiber.Map{"id": s.ID(), "view": s.View()})
}

func (h *Handler) PreviewHTML(c *fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(s.View().HTML)
}

// settled answers a preview mutation. With ?sync=true the change is measured
// before replying; otherwise it lands after the debounce.
func (h *Handler) settled(c *fiber.Ctx, s *preview.Session) error {
	if c.QueryBool("sync") {
		return c.JSON(fiber.Map{"id": s.ID(), "view": s.Refresh(c.UserContext())})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": s.ID(), "view": s.View()})
}

func (h *Handler) UpdatePreviewDocument(c *fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}
	doc, err := decodeDocument(c.Body())
	if err != nil {
		return fail(c, err)
	}
	s.Update(doc)
	return h.settled(c, s)
}

type viewportReq struct {
	Width float64  `json:"width"`
	Zoom  *float64 `json:"zoom"`
}

func (h *Handler) UpdatePreviewViewport(c *fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}
	var req viewportReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if req.Width < 0 {
		return badRequest(c, "width must not be negative")
	}
	if req.Width > 0 {
		s.Resize(req.Width)
	}
	if req.Zoom != nil {
		s.SetZoom(*req.Zoom)
	}
	return h.settled(c, s)
}

func (h *Handler) ClosePreview(c *fiber.Ctx) error {
	if h.d.Previews == nil {
		return unavailable(c, "preview")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	if err := h.d.Previews.Close(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) AISummary(c *fiber.Ctx) error {
	if h.d.Summary == nil {
		return unavailable(c, "summary")
	}
	var req formatters.SummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	res, err := h.d.Summary.Rewrite(c.UserContext(), req)
	if err != nil {
		return upstream(c, "summary", err)
	}
	return c.JSON(res)
}

func (h *Handler) AIKeywords(c *fiber.Ctx) error {
	if h.d.Keywords == nil {
		return unavailable(c, "keywords")
	}
	var req formatters.KeywordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	res, err := h.d.Keywords.Analyze(c.UserContext(), req)
	if err != nil {
		return upstream(c, "keywords", err)
	}
	return c.JSON(res)
}

func (h *Handler) AIAchievements(c *fiber.Ctx) error {
	if h.d.Achievements == nil {
		return unavailable(c, "achievements")
	}
	var req formatters.AchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if req.Bullet == "" {
		return badRequest(c, "bullet is required")
	}
	res, err := h.d.Achievements.Rewrite(c.UserContext(), req)
	if err != nil {
		return upstream(c, "achievements", err)
	}
	return c.JSON(res)
}

func (h *Handler) AILabels(c *fiber.Ctx) error {
	if h.d.Labels == nil {
		return unavailable(c, "labels")
	}
	var req struct {
		Language string `json:"language"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid payload")
		}
	}
	labels, err := h.d.Labels(req.Language).Format(c.UserContext())
	if err != nil {
		slog.Warn("labels formatter failed, using defaults", "language", req.Language, "error", err)
		labels = formatters.GetDefaultLabels()
	}
	return c.JSON(labels)
}

// decodeDocument validates raw against the document schema before decoding.
func decodeDocument(raw []byte) (*domain.Document, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, export.Wrap("validate", export.ErrInvalidDocument)
	}
	if err := model.ValidateDocument(raw); err != nil {
		return nil, err
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, export.Wrap("decode", errors.Join(export.ErrInvalidDocument, err))
	}
	return &doc, nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, export.ErrInvalidDocument):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, repository.ErrNoDatabase):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, export.ErrSuperseded):
		return fiber.StatusConflict
	case errors.Is(err, export.ErrTimeout), errors.Is(err, export.ErrFontTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, export.ErrEngine), errors.Is(err, export.ErrNotPDF):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func unavailable(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": what + " not configured"})
}

func upstream(c *fiber.Ctx, what string, err error) error {
	slog.Error("collaborator failed", "collaborator", what, "error", err)
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
}
