package markup

import (
	"strings"

	"resume-builder/internal/style"
)

// CSS pixels per inch and points per inch.
const (
	PxPerInch = 96.0
	PtPerInch = 72.0
	mmPerInch = 25.4
)

// PageSize is a physical paper size.
type PageSize struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

var (
	A4     = PageSize{Name: "A4", WidthMM: 210, HeightMM: 297}
	Letter = PageSize{Name: "Letter", WidthMM: 215.9, HeightMM: 279.4}
)

// DefaultMarginIn is the page margin every backend uses.
const DefaultMarginIn = 0.5

// PageSizeByName returns the named paper size, A4 when unknown.
func PageSizeByName(name string) PageSize {
	if strings.EqualFold(strings.TrimSpace(name), Letter.Name) {
		return Letter
	}
	return A4
}

func (p PageSize) WidthIn() float64  { return p.WidthMM / mmPerInch }
func (p PageSize) HeightIn() float64 { return p.HeightMM / mmPerInch }
func (p PageSize) WidthPx() float64  { return p.WidthIn() * PxPerInch }
func (p PageSize) HeightPx() float64 { return p.HeightIn() * PxPerInch }

// PtToPx converts points to CSS pixels.
func PtToPx(pt float64) float64 { return pt * PxPerInch / PtPerInch }

// PxToPt converts CSS pixels to points.
func PxToPt(px float64) float64 { return px * PtPerInch / PxPerInch }

// Metrics are the typographic sizes shared by the stylesheet and the local
// PDF layout so both backends lay out the same boxes. Sizes are points.
type Metrics struct {
	BasePt         float64
	DetailPt       float64
	NamePt         float64
	HeaderPt       float64
	LineHeight     float64
	UnitGapPt      float64
	SectionGapPt   float64
	HeaderGapPt    float64
	BulletIndentPt float64
	AccentBarPt    float64
	RulePt         float64
	PhotoPt        float64
}

// MetricsFor derives Metrics from a resolved style.
func MetricsFor(cfg style.Config) Metrics {
	base := cfg.BaseFontSizePt
	if base <= 0 {
		base = style.Default().BaseFontSizePt
	}
	m := Metrics{
		BasePt:         base,
		DetailPt:       base * 0.92,
		NamePt:         base * 2,
		HeaderPt:       base * 1.2,
		LineHeight:     1.35,
		UnitGapPt:      8,
		SectionGapPt:   14,
		HeaderGapPt:    6,
		BulletIndentPt: 12,
		RulePt:         1,
		PhotoPt:        54,
	}
	switch cfg.Layout {
	case style.LayoutCompact:
		m.UnitGapPt = 5
		m.SectionGapPt = 9
		m.HeaderGapPt = 4
		m.LineHeight = 1.25
	case style.LayoutAccentBar:
		m.AccentBarPt = 6
	}
	return m
}
