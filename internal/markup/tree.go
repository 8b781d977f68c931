// Package markup turns a Document and a resolved style into the one
// canonical content tree that every backend consumes, and serializes that
// tree to HTML for the browser-based backends.
package markup

import (
	"html/template"
	"strings"

	"resume-builder/internal/domain"
	"resume-builder/internal/style"
)

// UnitKind names the shape of an atomic unit.
type UnitKind string

const (
	UnitContact   UnitKind = "contact"
	UnitParagraph UnitKind = "paragraph"
	UnitEntry     UnitKind = "entry"
	UnitSkillLine UnitKind = "skill-line"
)

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Unit is a block that must never be split across a page boundary.
// Which fields are set depends on Kind.
type Unit struct {
	Kind UnitKind `json:"kind"`

	// contact
	Name    string   `json:"name,omitempty"`
	Details []string `json:"details,omitempty"`
	Links   []Link   `json:"links,omitempty"`
	Photo   string   `json:"photo,omitempty"`

	// paragraph
	Paragraphs []string `json:"paragraphs,omitempty"`

	// entry
	Title    string   `json:"title,omitempty"`
	Subtitle string   `json:"subtitle,omitempty"`
	Date     string   `json:"date,omitempty"`
	Detail   string   `json:"detail,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`

	// skill line
	Label string   `json:"label,omitempty"`
	Items []string `json:"items,omitempty"`
}

// Text is the unit's plain-text content, one line per visual row.
func (u Unit) Text() string {
	var lines []string
	add := func(s string) {
		if s != "" {
			lines = append(lines, s)
		}
	}
	switch u.Kind {
	case UnitContact:
		add(u.Name)
		add(strings.Join(u.Details, " | "))
		labels := make([]string, 0, len(u.Links))
		for _, l := range u.Links {
			labels = append(labels, l.Label)
		}
		add(strings.Join(labels, " | "))
	case UnitParagraph:
		for _, p := range u.Paragraphs {
			add(p)
		}
	case UnitEntry:
		add(strings.TrimSpace(u.Title + "  " + u.Date))
		add(u.Subtitle)
		add(u.Detail)
		for _, b := range u.Bullets {
			add("• " + b)
		}
	case UnitSkillLine:
		add(u.SkillText())
	}
	return strings.Join(lines, "\n")
}

// SkillText renders a skill line as "Label: a, b".
func (u Unit) SkillText() string {
	return u.Label + ": " + strings.Join(u.Items, ", ")
}

// PhotoSrc returns the photo as a trusted URL when it is an http(s) URL or
// an image data URL, and "" otherwise.
func (u Unit) PhotoSrc() template.URL {
	p := strings.TrimSpace(u.Photo)
	switch {
	case strings.HasPrefix(p, "data:image/png;base64,"),
		strings.HasPrefix(p, "data:image/jpeg;base64,"),
		strings.HasPrefix(p, "data:image/jpg;base64,"),
		strings.HasPrefix(p, "https://"),
		strings.HasPrefix(p, "http://"):
		return template.URL(p)
	}
	return ""
}

// Section is one rendered, non-empty section.
type Section struct {
	ID    string             `json:"id"`
	Type  domain.SectionType `json:"type"`
	Title string             `json:"title,omitempty"`
	Units []Unit             `json:"units"`
}

// Tree is the backend-neutral rendering of a Document.
type Tree struct {
	Style    style.Config `json:"style"`
	Sections []Section    `json:"sections"`
}

// Text concatenates the plain text of every section.
func (t *Tree) Text() string {
	var b strings.Builder
	for _, s := range t.Sections {
		if s.Title != "" {
			b.WriteString(s.Title)
			b.WriteByte('\n')
		}
		for _, u := range s.Units {
			b.WriteString(u.Text())
			b.WriteByte('\n')
		}
	}
	return b.String()
}
