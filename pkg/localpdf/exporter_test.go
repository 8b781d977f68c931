package localpdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"sync/atomic"
	"testing"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
)

func oneExperience() *domain.Document {
	return &domain.Document{
		ID:      "doc-1",
		Contact: domain.Contact{FullName: "Jane Doe", Email: "jane@example.com", GitHub: "github.com/jane"},
		Experience: []domain.Experience{{
			Company:   "Acme Corp",
			Title:     "Engineer",
			StartDate: "Jan 2020",
			Current:   true,
			Bullets:   []string{"Shipped the billing platform"},
		}},
	}
}

func pageObjects(b []byte) int {
	return bytes.Count(b, []byte("<</Type /Page\n"))
}

func TestExportOneExperience(t *testing.T) {
	e := NewExporter(nil)
	res, err := e.Export(context.Background(), oneExperience(), Options{Uncompressed: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Pages != 1 || pageObjects(res.Bytes) != 1 {
		t.Fatalf("pages = %d (objects %d), want 1", res.Pages, pageObjects(res.Bytes))
	}
	if !bytes.HasPrefix(res.Bytes, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", res.Bytes[:min(16, len(res.Bytes))])
	}
	for _, want := range []string{"Shipped the billing platform", "Jane Doe", "Acme Corp"} {
		if !bytes.Contains(res.Bytes, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
	if res.Filename != "Jane_Doe_Resume.pdf" {
		t.Errorf("filename = %q", res.Filename)
	}
}

func TestExportCallerFilename(t *testing.T) {
	res, err := NewExporter(nil).Export(context.Background(), oneExperience(), Options{Filename: "cv"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Filename != "cv.pdf" {
		t.Errorf("filename = %q", res.Filename)
	}
}

func TestExportLongDocumentPaginates(t *testing.T) {
	doc := oneExperience()
	doc.Experience = nil
	for i := 0; i < 40; i++ {
		doc.Experience = append(doc.Experience, domain.Experience{
			Company:   fmt.Sprintf("Company %d", i),
			Title:     "Engineer",
			StartDate: "2010",
			EndDate:   "2012",
			Bullets:   []string{"Did one thing", "Did another thing", "Led a team of five"},
		})
	}
	res, err := NewExporter(nil).Export(context.Background(), doc, Options{Uncompressed: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Pages < 2 {
		t.Fatalf("pages = %d, want several", res.Pages)
	}
	if got := pageObjects(res.Bytes); got != res.Pages {
		t.Errorf("reported %d pages, document has %d", res.Pages, got)
	}
}

func TestExportEmptyDocumentIsOnePage(t *testing.T) {
	res, err := NewExporter(nil).Export(context.Background(), &domain.Document{}, Options{Uncompressed: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Pages != 1 || pageObjects(res.Bytes) != 1 {
		t.Fatalf("pages = %d", res.Pages)
	}
	if res.Filename != export.DefaultFileName {
		t.Errorf("filename = %q", res.Filename)
	}
}

func TestExportNilDocument(t *testing.T) {
	res, err := NewExporter(nil).Export(context.Background(), nil, Options{})
	if res != nil || !errors.Is(err, export.ErrInvalidDocument) {
		t.Fatalf("got %v, %v", res, err)
	}
	var e *export.Error
	if !errors.As(err, &e) || e.Op != "validate" {
		t.Errorf("error %v is not a validate *export.Error", err)
	}
}

func TestExportPhoto(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	doc := oneExperience()
	doc.Contact.Photo = "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	res, err := NewExporter(nil).Export(context.Background(), doc, Options{Uncompressed: true})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(res.Bytes, []byte("/Subtype /Image")) {
		t.Errorf("photo not embedded")
	}

	doc.Contact.Photo = "data:image/png;base64,bm90IGFuIGltYWdl"
	res, err = NewExporter(nil).Export(context.Background(), doc, Options{Uncompressed: true})
	if err != nil {
		t.Fatalf("a broken photo must not fail the export: %v", err)
	}
	if bytes.Contains(res.Bytes, []byte("/Subtype /Image")) {
		t.Errorf("broken photo embedded")
	}
}

func TestExportFontTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	fonts := NewFontLoader("fonts", 20*time.Millisecond)
	fonts.read = func(string) ([]byte, error) {
		<-release
		return nil, fs.ErrNotExist
	}
	res, err := NewExporter(fonts).Export(context.Background(), oneExperience(), Options{})
	if res != nil {
		t.Fatal("partial result returned")
	}
	if !errors.Is(err, export.ErrFontTimeout) {
		t.Fatalf("err = %v, want font timeout", err)
	}
}

func TestExportMissingFontFilesFallBack(t *testing.T) {
	fonts := NewFontLoader(t.TempDir(), time.Second)
	res, err := NewExporter(fonts).Export(context.Background(), oneExperience(), Options{Uncompressed: true})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(res.Bytes, []byte("/BaseFont /Helvetica")) {
		t.Errorf("expected core Helvetica for a sans-serif template")
	}
}

func TestSecondExportSupersedesFirst(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	var calls atomic.Int32
	fonts := NewFontLoader("fonts", time.Minute)
	fonts.read = func(string) ([]byte, error) {
		if calls.Add(1) == 1 {
			<-release
		}
		return nil, fs.ErrNotExist
	}
	e := NewExporter(fonts)

	firstErr := make(chan error, 1)
	go func() {
		_, err := e.Export(context.Background(), oneExperience(), Options{})
		firstErr <- err
	}()
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first export never started loading fonts")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := e.Export(context.Background(), oneExperience(), Options{}); err != nil {
		t.Fatalf("second export: %v", err)
	}
	select {
	case err := <-firstErr:
		if !errors.Is(err, export.ErrSuperseded) {
			t.Fatalf("first export err = %v, want superseded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first export was not cancelled")
	}
}
