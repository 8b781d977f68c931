package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"resume-builder/internal/export"
	"resume-builder/internal/markup"
)

const (
	DefaultRenderTimeout = 60 * time.Second
	DefaultFontTimeout   = 10 * time.Second
)

// ChromedpRenderer prints HTML with headless Chrome. Every call launches
// its own browser and tears it down before returning.
type ChromedpRenderer struct {
	ChromePath  string
	Timeout     time.Duration
	FontTimeout time.Duration
}

func NewChromedpRenderer(chromePath string, timeout, fontTimeout time.Duration) *ChromedpRenderer {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	if fontTimeout <= 0 {
		fontTimeout = DefaultFontTimeout
	}
	return &ChromedpRenderer{ChromePath: chromePath, Timeout: timeout, FontTimeout: fontTimeout}
}

func allocatorOptions(chromePath string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	return opts
}

func (r *ChromedpRenderer) RenderHTMLToPDF(ctx context.Context, html string, opts markup.Options) ([]byte, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocatorOptions(r.ChromePath)...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, r.Timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "resume-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return nil, err
	}

	var pdfBuf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		waitFonts(r.FontTimeout),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				WithPaperWidth(opts.Page.WidthIn()).
				WithPaperHeight(opts.Page.HeightIn()).
				WithMarginTop(opts.MarginIn).
				WithMarginBottom(opts.MarginIn).
				WithMarginLeft(opts.MarginIn).
				WithMarginRight(opts.MarginIn).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		if errors.Is(err, export.ErrFontTimeout) {
			return nil, err
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", export.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", export.ErrEngine, err)
	}
	return pdfBuf, nil
}

// waitFonts blocks until document.fonts.ready resolves, failing with
// export.ErrFontTimeout after timeout.
func waitFonts(timeout time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		fctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		var ready bool
		err := chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &ready,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams { return p.WithAwaitPromise(true) },
		).Do(fctx)
		if err != nil {
			if errors.Is(fctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				slog.Warn("chromedp: fonts not ready", "timeout", timeout)
				return export.ErrFontTimeout
			}
			return err
		}
		return nil
	})
}
