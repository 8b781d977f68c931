// Package localpdf renders a resume to PDF in-process with gofpdf. It lays
// out the same content tree the HTML backends serialize, using the metrics
// the stylesheet uses, and never splits an atomic unit across pages unless
// the unit alone is taller than a page.
package localpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jung-kurt/gofpdf"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/markup"
	"resume-builder/internal/style"
)

// Options control one export.
type Options struct {
	// Filename overrides the name derived from the document.
	Filename string
	Page     markup.PageSize
	MarginIn float64
	// Uncompressed leaves page streams readable; tests use it.
	Uncompressed bool
}

func (o Options) withDefaults() Options {
	if o.Page.WidthMM <= 0 || o.Page.HeightMM <= 0 {
		o.Page = markup.A4
	}
	if o.MarginIn <= 0 {
		o.MarginIn = markup.DefaultMarginIn
	}
	return o
}

type Result struct {
	Filename string
	Bytes    []byte
	Pages    int
}

// Exporter produces PDFs. At most one export per document id is in flight:
// starting a new one cancels the previous with export.ErrSuperseded.
type Exporter struct {
	fonts *FontLoader

	mu       sync.Mutex
	inflight map[string]*flight
}

type flight struct {
	cancel context.CancelCauseFunc
}

func NewExporter(fonts *FontLoader) *Exporter {
	return &Exporter{fonts: fonts, inflight: make(map[string]*flight)}
}

// Export renders doc. On failure no bytes are returned and the error is an
// *export.Error.
func (e *Exporter) Export(ctx context.Context, doc *domain.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, export.Wrap("validate", export.ErrInvalidDocument)
	}
	opts = opts.withDefaults()
	ctx, done := e.begin(ctx, doc.ID)
	defer done()

	start := time.Now()
	cfg := style.Resolve(doc.TemplateID)
	tree := markup.BuildTree(doc, cfg)

	files, err := e.fonts.Load(ctx, cfg)
	if err != nil {
		return nil, export.Wrap("fonts", err)
	}
	if err := context.Cause(ctx); err != nil {
		return nil, export.Wrap("fonts", err)
	}

	d := newDocument(cfg, files, opts)
	d.pdf.SetTitle(markup.DocumentTitle(doc), true)
	d.pdf.SetAuthor(doc.Contact.FullName, true)
	d.pdf.SetCreator("resume-builder", false)
	if !doc.UpdatedAt.IsZero() {
		d.pdf.SetCreationDate(doc.UpdatedAt)
	}

	items := d.pen.items(tree)
	ops, pages := paginate(items, d.contentH)
	if err := d.draw(ctx, ops); err != nil {
		return nil, export.Wrap("render", err)
	}

	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, export.Wrap("render", fmt.Errorf("%w: %v", export.ErrEngine, err))
	}
	if err := context.Cause(ctx); err != nil {
		return nil, export.Wrap("render", err)
	}

	res := &Result{
		Filename: export.FileName(doc, opts.Filename),
		Bytes:    buf.Bytes(),
		Pages:    pages,
	}
	slog.Info("localpdf: exported",
		"document", doc.ID,
		"template", cfg.ID,
		"pages", res.Pages,
		"bytes", len(res.Bytes),
		"elapsed", time.Since(start))
	return res, nil
}

func (e *Exporter) begin(ctx context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	if key == "" {
		return ctx, func() { cancel(nil) }
	}
	f := &flight{cancel: cancel}
	e.mu.Lock()
	if prev, ok := e.inflight[key]; ok {
		prev.cancel(export.ErrSuperseded)
	}
	e.inflight[key] = f
	e.mu.Unlock()

	return ctx, func() {
		e.mu.Lock()
		if e.inflight[key] == f {
			delete(e.inflight, key)
		}
		e.mu.Unlock()
		cancel(nil)
	}
}

// document is one gofpdf document with its layout state.
type document struct {
	pdf      *gofpdf.Fpdf
	pen      *pen
	margin   float64
	contentH float64
}

func newDocument(cfg style.Config, files *FontFiles, opts Options) *document {
	w, h := opts.Page.WidthIn()*markup.PtPerInch, opts.Page.HeightIn()*markup.PtPerInch
	margin := opts.MarginIn * markup.PtPerInch
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetCellMargin(0)
	pdf.SetCompression(!opts.Uncompressed)
	fonts := installFonts(pdf, cfg, files)
	return &document{
		pdf:      pdf,
		pen:      newPen(pdf, fonts, cfg, w-2*margin),
		margin:   margin,
		contentH: h - 2*margin,
	}
}

func (d *document) draw(ctx context.Context, ops []placed) error {
	pdf := d.pdf
	page := -1
	for i, p := range ops {
		if i%64 == 0 {
			if err := context.Cause(ctx); err != nil {
				return err
			}
		}
		for page < p.page {
			pdf.AddPage()
			page++
		}
		x, y := d.margin+p.op.x, d.margin+p.top
		o := p.op
		switch o.kind {
		case opText:
			pdf.SetFont(d.pen.fonts.family, d.pen.fonts.style(o.style), o.size)
			pdf.SetTextColor(o.color.r, o.color.g, o.color.b)
			pdf.SetXY(x, y)
			pdf.CellFormat(o.w, o.h, d.pen.fonts.tr(o.text), "", 0, o.align, false, 0, o.link)
		case opRule:
			pdf.SetDrawColor(o.color.r, o.color.g, o.color.b)
			pdf.SetLineWidth(o.h)
			pdf.Line(x, y+o.h/2, x+o.w, y+o.h/2)
		case opFill:
			pdf.SetFillColor(o.color.r, o.color.g, o.color.b)
			pdf.Rect(x, y, o.w, o.h, "F")
		case opImage:
			pdf.ImageOptions(o.image, x, y, o.w, o.h, false, gofpdf.ImageOptions{}, 0, "")
		}
	}
	if page < 0 {
		pdf.AddPage()
	}
	if err := pdf.Error(); err != nil {
		return errors.Join(export.ErrEngine, err)
	}
	return nil
}
