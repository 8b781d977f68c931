package markup

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"resume-builder/internal/domain"
	"resume-builder/internal/style"
)

//go:embed templates/*
var templateFS embed.FS

var funcs = template.FuncMap{"join": strings.Join}

var (
	documentTpl   = template.Must(template.New("document.gohtml").Funcs(funcs).ParseFS(templateFS, "templates/document.gohtml"))
	sectionTpl    = template.Must(template.New("section.gohtml").Funcs(funcs).ParseFS(templateFS, "templates/section.gohtml"))
	stylesheetTpl = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/stylesheet.css.tmpl"))
)

// Options control page geometry of the generated markup.
type Options struct {
	Page     PageSize
	MarginIn float64
}

// DefaultOptions is A4 with half-inch margins.
func DefaultOptions() Options {
	return Options{Page: A4, MarginIn: DefaultMarginIn}
}

// Rendered is the canonical markup for one Document: the content tree and
// its HTML serialization.
type Rendered struct {
	Style      style.Config
	Options    Options
	Tree       *Tree
	Body       template.HTML
	Stylesheet template.CSS
	// HTML is a complete standalone page.
	HTML  string
	Title string
}

// Render resolves doc's template and renders it with default options.
func Render(doc *domain.Document) (*Rendered, error) {
	var id string
	if doc != nil {
		id = doc.TemplateID
	}
	return RenderWith(doc, style.Resolve(id), DefaultOptions())
}

// RenderWith renders doc using an already resolved style.
func RenderWith(doc *domain.Document, cfg style.Config, opts Options) (*Rendered, error) {
	if opts.Page.WidthMM <= 0 || opts.Page.HeightMM <= 0 {
		opts.Page = A4
	}
	if opts.MarginIn < 0 {
		opts.MarginIn = DefaultMarginIn
	}

	tree := BuildTree(doc, cfg)
	var body strings.Builder
	for i := range tree.Sections {
		frag, err := SectionHTML(&tree.Sections[i])
		if err != nil {
			return nil, err
		}
		body.WriteString(string(frag))
	}

	css, err := Stylesheet(cfg, opts)
	if err != nil {
		return nil, err
	}

	r := &Rendered{
		Style:      cfg,
		Options:    opts,
		Tree:       tree,
		Body:       template.HTML(body.String()),
		Stylesheet: css,
		Title:      DocumentTitle(doc),
	}

	var buf bytes.Buffer
	err = documentTpl.Execute(&buf, map[string]any{
		"Title":      r.Title,
		"FontURL":    cfg.WebFontURL(),
		"Stylesheet": r.Stylesheet,
		"Layout":     cfg.Layout,
		"Body":       r.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("markup: execute document template: %w", err)
	}
	r.HTML = buf.String()
	return r, nil
}

// SectionHTML serializes one section to a self-contained fragment.
func SectionHTML(s *Section) (template.HTML, error) {
	if s == nil || len(s.Units) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := sectionTpl.ExecuteTemplate(&buf, "section", s); err != nil {
		return "", fmt.Errorf("markup: execute section %s: %w", s.ID, err)
	}
	return template.HTML(buf.String()), nil
}

// Stylesheet generates the CSS for a style and page geometry, including the
// break-avoidance rules for atomic units and section headers.
func Stylesheet(cfg style.Config, opts Options) (template.CSS, error) {
	var buf bytes.Buffer
	err := stylesheetTpl.Execute(&buf, map[string]any{
		"PageName":  opts.Page.Name,
		"MarginIn":  opts.MarginIn,
		"FontStack": cfg.FontStack(),
		"Accent":    cfg.AccentColor,
		"Bold":      cfg.BoldWeight(),
		"Layout":    cfg.Layout,
		"M":         MetricsFor(cfg),
	})
	if err != nil {
		return "", fmt.Errorf("markup: execute stylesheet: %w", err)
	}
	return template.CSS(buf.String()), nil
}

// DocumentTitle is "<full name> - Resume", else the document name, else "Resume".
func DocumentTitle(doc *domain.Document) string {
	if doc == nil {
		return "Resume"
	}
	if n := strings.TrimSpace(doc.Contact.FullName); n != "" {
		return n + " - Resume"
	}
	if n := strings.TrimSpace(doc.Name); n != "" {
		return n
	}
	return "Resume"
}
