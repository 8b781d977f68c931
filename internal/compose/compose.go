// Package compose linearizes a Document's built-in and custom sections into
// one ordered sequence.
package compose

import (
	"cmp"
	"fmt"
	"slices"

	"resume-builder/internal/domain"
)

// DefaultSections is the built-in list used when a Document carries none.
func DefaultSections() []domain.SectionDescriptor {
	return []domain.SectionDescriptor{
		{ID: "contact", Type: domain.SectionContact, Title: "", Order: 0, Visible: true},
		{ID: "summary", Type: domain.SectionSummary, Title: "Professional Summary", Order: 1, Visible: true},
		{ID: "experience", Type: domain.SectionExperience, Title: "Experience", Order: 2, Visible: true},
		{ID: "education", Type: domain.SectionEducation, Title: "Education", Order: 3, Visible: true},
		{ID: "skills", Type: domain.SectionSkills, Title: "Skills", Order: 4, Visible: true},
		{ID: "certifications", Type: domain.SectionCertifications, Title: "Certifications", Order: 5, Visible: true},
	}
}

// Ordered returns every section descriptor, hidden ones included, sorted by
// Order. Equal orders keep concatenation order: built-ins as declared, then
// custom sections in document order.
func Ordered(doc *domain.Document) []domain.SectionDescriptor {
	if doc == nil {
		return nil
	}
	builtins := doc.Sections
	if len(builtins) == 0 {
		builtins = DefaultSections()
	}

	out := make([]domain.SectionDescriptor, 0, len(builtins)+len(doc.CustomSections))
	for _, s := range builtins {
		if s.Type == domain.SectionCustom || !s.Type.Valid() {
			continue
		}
		out = append(out, s)
	}

	seen := make(map[string]bool, len(doc.CustomSections))
	for i, cs := range doc.CustomSections {
		id := CustomID(cs, i)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, domain.SectionDescriptor{
			ID:      id,
			Type:    domain.SectionCustom,
			Title:   cs.Title,
			Order:   cs.Order,
			Visible: cs.Visible,
		})
	}

	slices.SortStableFunc(out, func(a, b domain.SectionDescriptor) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}

// Compose returns the visible sections in render order.
func Compose(doc *domain.Document) []domain.SectionDescriptor {
	all := Ordered(doc)
	out := all[:0:0]
	for _, s := range all {
		if s.Visible {
			out = append(out, s)
		}
	}
	return out
}

// CustomID is the descriptor id synthesized for the custom section at index i.
func CustomID(cs domain.CustomSection, i int) string {
	if cs.ID != "" {
		return cs.ID
	}
	return fmt.Sprintf("custom-%d", i)
}

// FindCustom locates the custom section a descriptor refers to, applying the
// same id synthesis as Ordered.
func FindCustom(doc *domain.Document, id string) (*domain.CustomSection, bool) {
	if doc == nil {
		return nil, false
	}
	for i := range doc.CustomSections {
		if CustomID(doc.CustomSections[i], i) == id {
			return &doc.CustomSections[i], true
		}
	}
	return nil, false
}
