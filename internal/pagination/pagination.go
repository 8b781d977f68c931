// Package pagination estimates how many pages rendered markup occupies.
//
// The estimate is a single measurement: the content is laid out once at the
// page content width, its total height H is read back, and the page count is
// max(1, ceil(H / content height)). It is not a flow layout, so a unit close
// to a window boundary can look clipped in the preview even though the export
// backends, which honor break-avoidance, will move it to the next page.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"resume-builder/internal/markup"
)

// ConfidenceApproximate marks a page count derived from a height estimate.
const ConfidenceApproximate = "approximate"

// MeasurementSurface lays out markup at a fixed width and reports its height.
type MeasurementSurface interface {
	// Attach renders m off-screen at widthPx CSS pixels.
	Attach(ctx context.Context, m *markup.Rendered, widthPx float64) error
	// Height returns the rendered height of the attached content in CSS pixels.
	Height(ctx context.Context) (float64, error)
	// Detach releases whatever Attach acquired.
	Detach() error
}

// Geometry is the page box in CSS pixels.
type Geometry struct {
	PageWidthPx  float64 `json:"pageWidthPx"`
	PageHeightPx float64 `json:"pageHeightPx"`
	MarginPx     float64 `json:"marginPx"`
}

// GeometryFor converts markup options to pixel geometry.
func GeometryFor(opts markup.Options) Geometry {
	return Geometry{
		PageWidthPx:  opts.Page.WidthPx(),
		PageHeightPx: opts.Page.HeightPx(),
		MarginPx:     opts.MarginIn * markup.PxPerInch,
	}
}

// DefaultGeometry is A4 with half-inch margins: roughly 698x1027 px of content.
func DefaultGeometry() Geometry {
	return GeometryFor(markup.DefaultOptions())
}

func (g Geometry) ContentWidthPx() float64  { return g.PageWidthPx - 2*g.MarginPx }
func (g Geometry) ContentHeightPx() float64 { return g.PageHeightPx - 2*g.MarginPx }

// Result is the outcome of one measurement pass.
type Result struct {
	Pages      int     `json:"pageCount"`
	HeightPx   float64 `json:"heightPx"`
	Confidence string  `json:"confidence"`
	// Degraded is set when measurement failed and Pages fell back to 1.
	Degraded bool `json:"degraded"`
}

var errGeometry = errors.New("pagination: page content box is empty")

// Paginate measures m on surface and derives the page count. Measurement
// failures never propagate: the result degrades to a single page.
func Paginate(ctx context.Context, surface MeasurementSurface, m *markup.Rendered, g Geometry) Result {
	h, err := measure(ctx, surface, m, g)
	if err != nil {
		slog.Warn("pagination: measurement failed, assuming one page", "error", err)
		return Result{Pages: 1, Confidence: ConfidenceApproximate, Degraded: true}
	}
	return Result{Pages: PageCount(h, g.ContentHeightPx()), HeightPx: h, Confidence: ConfidenceApproximate}
}

// PageCount is max(1, ceil(height / contentHeight)).
func PageCount(height, contentHeight float64) int {
	if contentHeight <= 0 || height <= 0 || math.IsNaN(height) || math.IsInf(height, 0) {
		return 1
	}
	// tolerate sub-pixel rounding at exact page multiples
	n := int(math.Ceil(height/contentHeight - 1e-6))
	if n < 1 {
		return 1
	}
	return n
}

func measure(ctx context.Context, surface MeasurementSurface, m *markup.Rendered, g Geometry) (h float64, err error) {
	if surface == nil {
		return 0, errors.New("pagination: no measurement surface")
	}
	if m == nil {
		return 0, nil
	}
	if g.ContentWidthPx() <= 0 || g.ContentHeightPx() <= 0 {
		return 0, errGeometry
	}
	if err := surface.Attach(ctx, m, g.ContentWidthPx()); err != nil {
		return 0, fmt.Errorf("attach: %w", err)
	}
	defer func() {
		if derr := surface.Detach(); derr != nil && err == nil {
			err = fmt.Errorf("detach: %w", derr)
		}
	}()
	h, err = surface.Height(ctx)
	if err != nil {
		return 0, fmt.Errorf("height: %w", err)
	}
	return h, nil
}

// Window is the slice of the content block shown in one page frame.
type Window struct {
	Index    int     `json:"index"`
	OffsetPx float64 `json:"offsetPx"`
	HeightPx float64 `json:"heightPx"`
}

// Windows returns one window per page, offset by index × content height.
func Windows(r Result, g Geometry) []Window {
	pages := r.Pages
	if pages < 1 {
		pages = 1
	}
	ch := g.ContentHeightPx()
	out := make([]Window, pages)
	for i := range out {
		out[i] = Window{Index: i, OffsetPx: float64(i) * ch, HeightPx: ch}
	}
	return out
}
