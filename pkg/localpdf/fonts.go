package localpdf

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jung-kurt/gofpdf"

	"resume-builder/internal/export"
	"resume-builder/internal/style"
)

// DefaultFontTimeout bounds how long an export waits for font files.
const DefaultFontTimeout = 5 * time.Second

// FontFiles holds the TTF data of one template font. Bold and Italic are
// optional; a face without Regular is not usable.
type FontFiles struct {
	Regular []byte
	Bold    []byte
	Italic  []byte
}

func (f *FontFiles) usable() bool { return f != nil && len(f.Regular) > 0 }

// FontLoader reads template fonts from a directory of TTF files named
// like Google Fonts downloads, e.g. "PlayfairDisplay-Bold.ttf". Loads run
// in the background and are bounded by a timeout; results are cached per
// font name.
type FontLoader struct {
	dir     string
	timeout time.Duration
	read    func(name string) ([]byte, error)

	mu    sync.Mutex
	cache map[string]*FontFiles
}

func NewFontLoader(dir string, timeout time.Duration) *FontLoader {
	if timeout <= 0 {
		timeout = DefaultFontTimeout
	}
	return &FontLoader{
		dir:     dir,
		timeout: timeout,
		read:    os.ReadFile,
		cache:   make(map[string]*FontFiles),
	}
}

// Load returns the TTF faces for cfg's font, or nil when no directory is
// configured or the regular face is absent. Missing files are not an error;
// exceeding the timeout is, and so is ctx ending first.
func (l *FontLoader) Load(ctx context.Context, cfg style.Config) (*FontFiles, error) {
	if l == nil || l.dir == "" || cfg.FontName == "" {
		return nil, nil
	}
	l.mu.Lock()
	cached, ok := l.cache[cfg.FontName]
	l.mu.Unlock()
	if ok {
		return cached, nil
	}

	type loaded struct {
		files *FontFiles
		err   error
	}
	done := make(chan loaded, 1)
	go func() {
		files, err := l.readFaces(cfg.FontName)
		done <- loaded{files, err}
	}()

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()
	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		l.mu.Lock()
		l.cache[cfg.FontName] = res.files
		l.mu.Unlock()
		return res.files, nil
	case <-timer.C:
		return nil, export.ErrFontTimeout
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

func (l *FontLoader) readFaces(fontName string) (*FontFiles, error) {
	base := strings.ReplaceAll(fontName, " ", "")
	face := func(suffixes ...string) ([]byte, error) {
		for _, s := range suffixes {
			b, err := l.read(filepath.Join(l.dir, base+"-"+s+".ttf"))
			if err == nil {
				return b, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
		return nil, nil
	}

	regular, err := face("Regular")
	if err != nil {
		return nil, err
	}
	if regular == nil {
		slog.Info("localpdf: no font files, using core font", "font", fontName, "dir", l.dir)
		return nil, nil
	}
	files := &FontFiles{Regular: regular}
	if files.Bold, err = face("Bold", "SemiBold"); err != nil {
		return nil, err
	}
	if files.Italic, err = face("Italic"); err != nil {
		return nil, err
	}
	return files, nil
}

// fontSet is the font family installed into one gofpdf document.
type fontSet struct {
	family string
	styles map[string]bool
	// tr encodes UTF-8 text for the installed family.
	tr func(string) string
}

const ttfFamily = "template"

// installFonts registers files with pdf, or picks the core font matching
// the template's fallback family when files is not usable.
func installFonts(pdf *gofpdf.Fpdf, cfg style.Config, files *FontFiles) fontSet {
	if files.usable() {
		set := fontSet{family: ttfFamily, styles: map[string]bool{"": true}, tr: func(s string) string { return s }}
		pdf.AddUTF8FontFromBytes(ttfFamily, "", files.Regular)
		if len(files.Bold) > 0 {
			pdf.AddUTF8FontFromBytes(ttfFamily, "B", files.Bold)
			set.styles["B"] = true
		}
		if len(files.Italic) > 0 {
			pdf.AddUTF8FontFromBytes(ttfFamily, "I", files.Italic)
			set.styles["I"] = true
		}
		return set
	}
	return fontSet{
		family: coreFamily(cfg.FontFamilyFallback),
		styles: map[string]bool{"": true, "B": true, "I": true},
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func coreFamily(fallback string) string {
	switch fallback {
	case style.FallbackSerif:
		return "Times"
	case style.FallbackMono:
		return "Courier"
	}
	return "Helvetica"
}

// style returns s when the family has that face, else the regular face.
func (f fontSet) style(s string) string {
	if f.styles[s] {
		return s
	}
	return ""
}
