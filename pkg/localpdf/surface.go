package localpdf

import (
	"context"
	"errors"
	"sync"

	"resume-builder/internal/markup"
	"resume-builder/internal/style"
)

// Surface measures markup with the PDF layout engine, so the preview can
// paginate without a browser. The reported height includes the space the
// exporter leaves at the bottom of pages when it moves a unit whole.
type Surface struct {
	fonts *FontLoader

	mu     sync.Mutex
	height float64
	ok     bool
}

func NewSurface(fonts *FontLoader) *Surface {
	return &Surface{fonts: fonts}
}

func (s *Surface) Attach(ctx context.Context, m *markup.Rendered, widthPx float64) error {
	if m == nil || m.Tree == nil {
		return errors.New("localpdf: nothing to measure")
	}
	if widthPx <= 0 {
		return errors.New("localpdf: zero-width surface")
	}
	cfg := m.Style
	if cfg.ID == "" {
		cfg = style.Default()
	}
	files, err := s.fonts.Load(ctx, cfg)
	if err != nil {
		return err
	}
	d := newDocument(cfg, files, Options{Page: m.Options.Page, MarginIn: m.Options.MarginIn}.withDefaults())
	d.pen.width = markup.PxToPt(widthPx)
	h := pagedHeight(d.pen.items(m.Tree), d.contentH)
	if err := d.pdf.Error(); err != nil {
		return err
	}

	s.mu.Lock()
	s.height, s.ok = markup.PtToPx(h), true
	s.mu.Unlock()
	return nil
}

func (s *Surface) Height(context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ok {
		return 0, errors.New("localpdf: surface not attached")
	}
	return s.height, nil
}

func (s *Surface) Detach() error {
	s.mu.Lock()
	s.height, s.ok = 0, false
	s.mu.Unlock()
	return nil
}
