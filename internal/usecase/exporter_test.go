package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/markup"
	"resume-builder/internal/model"
	"resume-builder/pkg/localpdf"
)

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	html  string
	opts  markup.Options
	out   []byte
	err   error
}

func (f *fakeRenderer) RenderHTMLToPDF(_ context.Context, html string, opts markup.Options) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.html, f.opts = html, opts
	return f.out, f.err
}

type memRepo struct {
	jobs []domain.ExportJob
}

func (m *memRepo) Save(_ context.Context, j *domain.ExportJob) error {
	m.jobs = append(m.jobs, *j)
	return nil
}

type memCache map[string][]byte

func (m memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := m[key]
	return b, ok, nil
}

func (m memCache) Set(_ context.Context, key string, pdf []byte) error {
	m[key] = pdf
	return nil
}

func jane() *domain.Document {
	return &domain.Document{
		ID:         "doc-1",
		TemplateID: "nonexistent-template-xyz",
		Contact:    domain.Contact{FullName: "Jane Doe"},
		Experience: []domain.Experience{{
			Company: "Acme Corp", Title: "Engineer", StartDate: "Jan 2020", Current: true,
			Bullets: []string{"Shipped the billing platform"},
		}},
	}
}

func TestExportRendersCanonicalMarkup(t *testing.T) {
	r := &fakeRenderer{out: []byte("%PDF-1.7 fake")}
	repo := &memRepo{}
	e := NewExporter(r, WithRepo(repo))

	res, err := e.Export(context.Background(), ExportRequest{Document: jane()})
	if err != nil {
		t.Fatal(err)
	}
	if res.Filename != "Jane_Doe_Resume.pdf" || string(res.Bytes) != "%PDF-1.7 fake" {
		t.Fatalf("unexpected result %+v", res)
	}
	for _, want := range []string{"Shipped the billing platform", "'Inter', sans-serif", "size: A4; margin: 0.5in;", "break-inside: avoid"} {
		if !strings.Contains(r.html, want) {
			t.Errorf("renderer html missing %q", want)
		}
	}
	if len(repo.jobs) != 1 {
		t.Fatalf("recorded %d jobs", len(repo.jobs))
	}
	job := repo.jobs[0]
	if job.Status != domain.StatusCompleted || job.Backend != domain.BackendServer || job.TemplateID != "classic" {
		t.Errorf("job %+v", job)
	}
}

func TestExportRejectsNonPDF(t *testing.T) {
	r := &fakeRenderer{out: []byte("<html>oops")}
	repo := &memRepo{}
	res, err := NewExporter(r, WithRepo(repo)).Export(context.Background(), ExportRequest{Document: jane()})
	if res != nil {
		t.Fatal("partial result returned")
	}
	if !errors.Is(err, export.ErrNotPDF) {
		t.Fatalf("err = %v", err)
	}
	if r.calls != 1 {
		t.Errorf("renderer called %d times; exports are not retried", r.calls)
	}
	if repo.jobs[0].Status != domain.StatusFailed || repo.jobs[0].Error == "" {
		t.Errorf("failure not recorded: %+v", repo.jobs[0])
	}
}

func TestExportEngineFailureIsSingleError(t *testing.T) {
	r := &fakeRenderer{err: export.ErrEngine}
	_, err := NewExporter(r).Export(context.Background(), ExportRequest{Document: jane()})
	var e *export.Error
	if !errors.As(err, &e) || e.Op != "print" || !errors.Is(err, export.ErrEngine) {
		t.Fatalf("err = %#v", err)
	}
}

func TestExportNilDocument(t *testing.T) {
	_, err := NewExporter(&fakeRenderer{}).Export(context.Background(), ExportRequest{})
	if !errors.Is(err, export.ErrInvalidDocument) {
		t.Fatalf("err = %v", err)
	}
}

func TestExportUsesCache(t *testing.T) {
	r := &fakeRenderer{out: []byte("%PDF-1.7 fake")}
	cache := memCache{}
	e := NewExporter(r, WithCache(cache))

	if _, err := e.Export(context.Background(), ExportRequest{Document: jane()}); err != nil {
		t.Fatal(err)
	}
	res, err := e.Export(context.Background(), ExportRequest{Document: jane()})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheHit || r.calls != 1 {
		t.Fatalf("cache hit %v, renderer calls %d", res.CacheHit, r.calls)
	}

	changed := jane()
	changed.Summary = "Different"
	if _, err := e.Export(context.Background(), ExportRequest{Document: changed}); err != nil {
		t.Fatal(err)
	}
	if r.calls != 2 {
		t.Errorf("changed document served from cache")
	}
}

func TestExportDoesNotMutateCaller(t *testing.T) {
	doc := jane()
	doc.ID = ""
	if _, err := NewExporter(&fakeRenderer{out: []byte("%PDF")}).Export(context.Background(), ExportRequest{Document: doc}); err != nil {
		t.Fatal(err)
	}
	if doc.ID != "" {
		t.Errorf("caller document mutated: id %q", doc.ID)
	}
}

func TestPrintHonorsGeometry(t *testing.T) {
	r := &fakeRenderer{out: []byte("%PDF-1.4")}
	res, err := NewExporter(r).Print(context.Background(), PrintRequest{
		Resume:       &model.Resume{Meta: model.Meta{Name: "Jane Doe"}, Summary: "Builds things."},
		PaperSize:    "letter",
		MarginInches: 0.75,
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.opts.Page.Name != "Letter" || r.opts.MarginIn != 0.75 {
		t.Errorf("opts = %+v", r.opts)
	}
	if !strings.Contains(r.html, "size: Letter; margin: 0.75in;") || !strings.Contains(r.html, "Builds things.") {
		t.Errorf("print markup does not carry geometry or content")
	}
	if res.Filename != "Jane_Doe_Resume.pdf" {
		t.Errorf("filename = %q", res.Filename)
	}
}

func TestExportLocalEngine(t *testing.T) {
	repo := &memRepo{}
	e := NewExporter(&fakeRenderer{}, WithRepo(repo), WithLocal(localpdf.NewExporter(nil)))
	res, err := e.Export(context.Background(), ExportRequest{Document: jane(), Engine: EngineLocal, Filename: "cv"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(res.Bytes), "%PDF") || res.Filename != "cv.pdf" {
		t.Fatalf("result %q %d bytes", res.Filename, len(res.Bytes))
	}
	if repo.jobs[0].Backend != domain.BackendLocal || repo.jobs[0].Metadata["pages"] != 1 {
		t.Errorf("job %+v", repo.jobs[0])
	}

	if _, err := NewExporter(&fakeRenderer{}).Export(context.Background(), ExportRequest{Document: jane(), Engine: EngineLocal}); err == nil {
		t.Error("local export without an engine should fail")
	}
}
