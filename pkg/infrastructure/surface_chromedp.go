package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"resume-builder/internal/markup"
)

// ChromedpSurface measures markup in one long-lived headless tab. The
// browser starts on first use and stays up until Close.
type ChromedpSurface struct {
	chromePath  string
	fontTimeout time.Duration

	mu       sync.Mutex
	tab      context.Context
	closeTab func()
	attached bool
}

func NewChromedpSurface(chromePath string, fontTimeout time.Duration) *ChromedpSurface {
	if fontTimeout <= 0 {
		fontTimeout = DefaultFontTimeout
	}
	return &ChromedpSurface{chromePath: chromePath, fontTimeout: fontTimeout}
}

func (s *ChromedpSurface) browser() (context.Context, error) {
	if s.tab != nil {
		return s.tab, nil
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocatorOptions(s.chromePath)...)
	tab, cancelTab := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(tab); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, err
	}
	s.tab = tab
	s.closeTab = func() {
		cancelTab()
		cancelAlloc()
	}
	return tab, nil
}

// run executes actions in the tab, bounded by ctx and by timeout. A tab
// that died or stopped answering is torn down so the next call starts a
// fresh browser.
func (s *ChromedpSurface) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	tab, err := s.browser()
	if err != nil {
		return err
	}
	rctx, cancel := context.WithTimeout(tab, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	err = chromedp.Run(rctx, actions...)
	if err != nil && ctx.Err() == nil && (tab.Err() != nil || errors.Is(rctx.Err(), context.DeadlineExceeded)) {
		slog.Warn("chromedp: measurement tab lost, restarting browser", "error", err)
		s.reset()
	}
	return err
}

// reset drops the cached browser. Callers hold s.mu.
func (s *ChromedpSurface) reset() {
	if s.closeTab != nil {
		s.closeTab()
	}
	s.tab, s.closeTab = nil, nil
	s.attached = false
}

func (s *ChromedpSurface) Attach(ctx context.Context, m *markup.Rendered, widthPx float64) error {
	if m == nil {
		return errors.New("chromedp: nothing to measure")
	}
	if widthPx <= 0 {
		return errors.New("chromedp: zero-width surface")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.run(ctx, 3*s.fontTimeout,
		emulation.SetDeviceMetricsOverride(int64(widthPx+0.5), 1000, 1, false),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, m.HTML).Do(ctx)
		}),
		chromedp.WaitReady("#resume", chromedp.ByQuery),
		waitFonts(s.fontTimeout),
	)
	if err != nil {
		return err
	}
	s.attached = true
	return nil
}

func (s *ChromedpSurface) Height(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return 0, errors.New("chromedp: surface not attached")
	}
	var h float64
	err := s.run(ctx, s.fontTimeout, chromedp.Evaluate(`document.getElementById('resume').getBoundingClientRect().height`, &h))
	return h, err
}

func (s *ChromedpSurface) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return nil
	}
	s.attached = false
	return s.run(context.Background(), s.fontTimeout, chromedp.Navigate("about:blank"))
}

// Close shuts the browser down.
func (s *ChromedpSurface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}
