package localpdf

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"

	"resume-builder/internal/markup"
	"resume-builder/internal/style"
)

type rgb struct{ r, g, b int }

var (
	colorText  = rgb{17, 24, 39}
	colorMuted = rgb{55, 65, 81}
	colorDate  = rgb{75, 85, 99}
)

type opKind int

const (
	opText opKind = iota
	opRule
	opFill
	opImage
)

// op is one drawing instruction, positioned relative to its block.
type op struct {
	kind       opKind
	x, y, w, h float64
	text       string
	style      string
	size       float64
	color      rgb
	align      string
	link       string
	image      string
}

// block is the laid-out form of an atomic unit or a section header.
type block struct {
	h   float64
	ops []op
}

func (b *block) add(o op) {
	b.ops = append(b.ops, o)
	if bottom := o.y + o.h; bottom > b.h {
		b.h = bottom
	}
}

// item is a block in document flow.
type item struct {
	b         block
	gapBefore float64
	// keepWithNext glues a section header to the section's first unit.
	keepWithNext bool
	section      int
}

// pen lays out tree units against one gofpdf document so that text widths
// come from the fonts that will draw them.
type pen struct {
	pdf    *gofpdf.Fpdf
	fonts  fontSet
	cfg    style.Config
	m      markup.Metrics
	width  float64
	accent rgb
	photos int
}

func newPen(pdf *gofpdf.Fpdf, fonts fontSet, cfg style.Config, width float64) *pen {
	r, g, b := cfg.AccentRGB()
	return &pen{pdf: pdf, fonts: fonts, cfg: cfg, m: markup.MetricsFor(cfg), width: width, accent: rgb{r, g, b}}
}

func (p *pen) lineH(size float64) float64 { return size * p.m.LineHeight }

func (p *pen) textWidth(st string, size float64, s string) float64 {
	p.pdf.SetFont(p.fonts.family, p.fonts.style(st), size)
	return p.pdf.GetStringWidth(p.fonts.tr(s))
}

// wrap breaks s into lines no wider than first (for the first line) and
// rest (for the others). Words longer than a line are split by rune.
func (p *pen) wrap(st string, size float64, s string, first, rest float64) []string {
	var lines []string
	limit := first
	line := ""
	flush := func() {
		lines = append(lines, line)
		line = ""
		limit = rest
	}
	for _, word := range strings.Fields(s) {
		cand := word
		if line != "" {
			cand = line + " " + word
		}
		if p.textWidth(st, size, cand) <= limit {
			line = cand
			continue
		}
		if line != "" {
			flush()
		}
		for p.textWidth(st, size, word) > limit && utf8.RuneCountInString(word) > 1 {
			head := p.fitRunes(st, size, word, limit)
			line = head
			flush()
			word = word[len(head):]
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// fitRunes returns the longest prefix of s, at least one rune, that fits.
func (p *pen) fitRunes(st string, size float64, s string, limit float64) string {
	end := 0
	for i, r := range s {
		next := i + utf8.RuneLen(r)
		if end > 0 && p.textWidth(st, size, s[:next]) > limit {
			break
		}
		end = next
	}
	return s[:end]
}

func (p *pen) paragraph(b *block, y, x, w float64, st string, size float64, c rgb, align, s string) float64 {
	lh := p.lineH(size)
	for _, line := range p.wrap(st, size, s, w, w) {
		b.add(op{kind: opText, x: x, y: y, w: w, h: lh, text: line, style: st, size: size, color: c, align: align})
		y += lh
	}
	return y
}

func (p *pen) centered() bool { return p.cfg.Layout == style.LayoutCentered }

func (p *pen) header(title string) block {
	var b block
	align := "L"
	if p.centered() {
		align = "C"
	}
	size := p.m.HeaderPt
	y := p.paragraph(&b, 0, 0, p.width, "B", size, p.accent, align, strings.ToUpper(title))
	y += 2
	b.add(op{kind: opRule, x: 0, y: y, w: p.width, h: p.m.RulePt, color: p.accent})
	b.h += p.m.HeaderGapPt
	return b
}

func (p *pen) unit(u markup.Unit) block {
	switch u.Kind {
	case markup.UnitContact:
		return p.contact(u)
	case markup.UnitParagraph:
		var b block
		y := 0.0
		for _, para := range u.Paragraphs {
			y = p.paragraph(&b, y, 0, p.width, "", p.m.BasePt, colorText, "L", para)
		}
		return b
	case markup.UnitEntry:
		return p.entry(u)
	case markup.UnitSkillLine:
		return p.skillLine(u)
	}
	return block{}
}

func (p *pen) contact(u markup.Unit) block {
	var b block
	y := 0.0
	if p.m.AccentBarPt > 0 {
		b.add(op{kind: opFill, w: p.width, h: p.m.AccentBarPt, color: p.accent})
		y = p.m.AccentBarPt + 6
	}

	textW := p.width
	if name := p.registerPhoto(u.Photo); name != "" {
		b.add(op{kind: opImage, x: p.width - p.m.PhotoPt, y: y, w: p.m.PhotoPt, h: p.m.PhotoPt, image: name})
		textW -= p.m.PhotoPt + 8
	}
	align := "L"
	if p.centered() {
		align = "C"
	}

	if u.Name != "" {
		lh := p.m.NamePt * 1.2
		for _, line := range p.wrap("B", p.m.NamePt, u.Name, textW, textW) {
			b.add(op{kind: opText, y: y, w: textW, h: lh, text: line, style: "B", size: p.m.NamePt, color: colorText, align: align})
			y += lh
		}
	}
	if len(u.Details) > 0 {
		y = p.paragraph(&b, y, 0, textW, "", p.m.DetailPt, colorMuted, align, strings.Join(u.Details, " | "))
	}
	if len(u.Links) > 0 {
		p.links(&b, y, textW, u.Links)
	}
	return b
}

// links flows link labels as clickable runs separated by " | ".
func (p *pen) links(b *block, y, width float64, links []markup.Link) {
	size := p.m.DetailPt
	lh := p.lineH(size)
	sep := " | "
	sepW := p.textWidth("", size, sep)

	type run struct {
		x, w  float64
		text  string
		link  string
		color rgb
	}
	var lines [][]run
	var cur []run
	x := 0.0
	for _, l := range links {
		w := p.textWidth("", size, l.Label)
		if len(cur) > 0 && x+sepW+w > width {
			lines = append(lines, cur)
			cur, x = nil, 0
		}
		if len(cur) > 0 {
			cur = append(cur, run{x: x, w: sepW, text: sep, color: colorMuted})
			x += sepW
		}
		cur = append(cur, run{x: x, w: w, text: l.Label, link: l.URL, color: p.accent})
		x += w
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}

	for _, line := range lines {
		shift := 0.0
		if p.centered() {
			last := line[len(line)-1]
			shift = (width - (last.x + last.w)) / 2
		}
		for _, r := range line {
			b.add(op{kind: opText, x: shift + r.x, y: y, w: r.w, h: lh, text: r.text, size: size, color: r.color, align: "L", link: r.link})
		}
		y += lh
	}
}

func (p *pen) entry(u markup.Unit) block {
	var b block
	base, detail := p.m.BasePt, p.m.DetailPt
	lh := p.lineH(base)

	titleW := p.width
	if u.Date != "" {
		dw := p.textWidth("", detail, u.Date)
		b.add(op{kind: opText, x: p.width - dw, y: 0, w: dw, h: lh, text: u.Date, size: detail, color: colorDate, align: "R"})
		titleW -= dw + 8
	}
	y := 0.0
	if u.Title != "" {
		y = p.paragraph(&b, y, 0, titleW, "B", base, colorText, "L", u.Title)
	} else {
		y = lh
	}
	if u.Subtitle != "" {
		y = p.paragraph(&b, y, 0, p.width, "", base, p.accent, "L", u.Subtitle)
	}
	if u.Detail != "" {
		y = p.paragraph(&b, y, 0, p.width, "", detail, colorMuted, "L", u.Detail)
	}
	if len(u.Bullets) > 0 {
		y += 2
		indent := p.m.BulletIndentPt
		for _, bullet := range u.Bullets {
			b.add(op{kind: opText, x: 2, y: y, w: indent - 2, h: lh, text: "•", size: base, color: colorText, align: "L"})
			y = p.paragraph(&b, y, indent, p.width-indent, "", base, colorText, "L", bullet)
		}
	}
	return b
}

func (p *pen) skillLine(u markup.Unit) block {
	var b block
	size := p.m.BasePt
	lh := p.lineH(size)
	label := u.Label + ":"
	lw := p.textWidth("B", size, label+" ")
	b.add(op{kind: opText, y: 0, w: lw, h: lh, text: label, style: "B", size: size, color: p.accent, align: "L"})

	lines := p.wrap("", size, strings.Join(u.Items, ", "), p.width-lw, p.width)
	y := 0.0
	for i, line := range lines {
		x := 0.0
		if i == 0 {
			x = lw
		}
		b.add(op{kind: opText, x: x, y: y, w: p.width - x, h: lh, text: line, size: size, color: colorText, align: "L"})
		y += lh
	}
	return b
}

// registerPhoto registers a PNG or JPEG data URL with the document and
// returns its image name. Remote URLs and undecodable images are skipped
// so a bad photo never fails the export.
func (p *pen) registerPhoto(src string) string {
	meta, data, ok := strings.Cut(strings.TrimSpace(src), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return ""
	}
	var imgType string
	switch strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64") {
	case "image/png":
		imgType = "PNG"
	case "image/jpeg", "image/jpg":
		imgType = "JPG"
	default:
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return ""
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(raw)); err != nil {
		return ""
	}
	p.photos++
	name := "photo-" + strconv.Itoa(p.photos)
	p.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: imgType}, bytes.NewReader(raw))
	return name
}

// items lays out every section of tree in reading order.
func (p *pen) items(tree *markup.Tree) []item {
	var out []item
	sectionGap := max(p.m.UnitGapPt, p.m.SectionGapPt)
	for si, s := range tree.Sections {
		for ui, u := range s.Units {
			gap := p.m.UnitGapPt
			if ui == 0 {
				gap = sectionGap
				if si == 0 {
					gap = 0
				}
				if s.Title != "" {
					out = append(out, item{b: p.header(s.Title), gapBefore: gap, keepWithNext: true, section: si})
					gap = 0
				}
			}
			out = append(out, item{b: p.unit(u), gapBefore: gap, section: si})
		}
	}
	return out
}

// pagedHeight is the height of items as the exporter breaks them into
// pages: every full page counts contentH and the last page counts the extent
// of what is placed on it. A measurer dividing by contentH therefore gets
// the exporter's page count.
func pagedHeight(items []item, contentH float64) float64 {
	ops, pages := paginate(items, contentH)
	last := 0.0
	for _, p := range ops {
		if p.page == pages-1 {
			last = max(last, p.top+p.op.h)
		}
	}
	// keep the last page inside (0, contentH) so rounding cannot add or
	// drop a page
	last = min(max(last, 0.5), contentH-0.5)
	return float64(pages-1)*contentH + last
}

const eps = 0.01

// placed is an op assigned to a page, top measured from the content box.
type placed struct {
	op   op
	page int
	top  float64
	item int
}

// paginate assigns every op to a page. An item that does not fit in the
// space left moves to the next page whole; a header moves together with
// the unit after it. Only an item taller than a full page is split, at op
// boundaries.
func paginate(items []item, contentH float64) ([]placed, int) {
	var out []placed
	page, y := 0, 0.0
	glued := false
	for i, it := range items {
		if y > 0 {
			y += it.gapBefore
		}
		need := it.b.h
		if it.keepWithNext && i+1 < len(items) {
			need += items[i+1].b.h
		}
		if !glued && y > eps && y+need > contentH+eps {
			page++
			y = 0
		}
		glued = it.keepWithNext

		shift := y
		for _, o := range it.b.ops {
			top := shift + o.y
			if top > eps && top+o.h > contentH+eps {
				page++
				shift = -o.y
				top = 0
			}
			out = append(out, placed{op: o, page: page, top: top, item: i})
		}
		y = shift + it.b.h
	}
	return out, page + 1
}
