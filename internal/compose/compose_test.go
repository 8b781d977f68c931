package compose

import (
	"testing"

	"resume-builder/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func ids(ss []domain.SectionDescriptor) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.ID)
	}
	return out
}

func sampleDocument() *domain.Document {
	return &domain.Document{
		Sections: []domain.SectionDescriptor{
			{ID: "contact", Type: domain.SectionContact, Order: 0, Visible: true},
			{ID: "summary", Type: domain.SectionSummary, Order: 1, Visible: true},
			{ID: "experience", Type: domain.SectionExperience, Order: 3, Visible: true},
			{ID: "education", Type: domain.SectionEducation, Order: 2, Visible: true},
			{ID: "skills", Type: domain.SectionSkills, Order: 4, Visible: false},
			{ID: "legacy", Type: domain.SectionCustom, Order: 0, Visible: true},
		},
		CustomSections: []domain.CustomSection{
			{ID: "projects", Title: "Projects", Order: 3, Visible: true},
			{ID: "talks", Title: "Talks", Order: 1, Visible: true},
			{ID: "hidden", Title: "Hidden", Order: 0, Visible: false},
		},
	}
}

func TestOrderedSortsStablyAndKeepsHidden(t *testing.T) {
	got := ids(Ordered(sampleDocument()))
	want := []string{"contact", "hidden", "summary", "talks", "education", "experience", "projects", "skills"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Ordered mismatch (-want +got):\n%s", diff)
	}
}

func TestComposeFiltersHidden(t *testing.T) {
	got := ids(Compose(sampleDocument()))
	want := []string{"contact", "summary", "talks", "education", "experience", "projects"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Compose mismatch (-want +got):\n%s", diff)
	}
}

func TestComposeOrdersAreNonDecreasingAndIdempotent(t *testing.T) {
	doc := sampleDocument()
	first := Compose(doc)
	for i := 1; i < len(first); i++ {
		if first[i].Order < first[i-1].Order {
			t.Fatalf("order decreased at %d: %v", i, first)
		}
	}
	second := Compose(doc)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Compose not idempotent (-first +second):\n%s", diff)
	}
}

func TestTiesBreakBuiltinsBeforeCustomInArrayOrder(t *testing.T) {
	doc := &domain.Document{
		Sections: []domain.SectionDescriptor{
			{ID: "skills", Type: domain.SectionSkills, Order: 5, Visible: true},
			{ID: "summary", Type: domain.SectionSummary, Order: 5, Visible: true},
		},
		CustomSections: []domain.CustomSection{
			{ID: "b", Order: 5, Visible: true},
			{ID: "a", Order: 5, Visible: true},
		},
	}
	want := []string{"skills", "summary", "b", "a"}
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(want, ids(Compose(doc))); diff != "" {
			t.Fatalf("run %d tie-break mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestCustomSectionsInheritMetadata(t *testing.T) {
	doc := &domain.Document{
		Sections: []domain.SectionDescriptor{{ID: "summary", Type: domain.SectionSummary, Order: 0, Visible: true}},
		CustomSections: []domain.CustomSection{
			{ID: "vol", Title: "Volunteering", Order: 2, Visible: true},
		},
	}
	got := Compose(doc)
	want := domain.SectionDescriptor{ID: "vol", Type: domain.SectionCustom, Title: "Volunteering", Order: 2, Visible: true}
	if diff := cmp.Diff(want, got[1]); diff != "" {
		t.Fatalf("custom descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyCustomSectionIsStillComposed(t *testing.T) {
	doc := &domain.Document{
		Sections:       []domain.SectionDescriptor{{ID: "summary", Type: domain.SectionSummary, Order: 0, Visible: true}},
		CustomSections: []domain.CustomSection{{ID: "empty", Title: "Empty", Order: 1, Visible: true}},
	}
	if diff := cmp.Diff([]string{"summary", "empty"}, ids(Compose(doc))); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateAndBlankCustomIDs(t *testing.T) {
	doc := &domain.Document{
		Sections: []domain.SectionDescriptor{{ID: "summary", Type: domain.SectionSummary, Order: 0, Visible: true}},
		CustomSections: []domain.CustomSection{
			{ID: "dup", Title: "First", Order: 1, Visible: true},
			{ID: "dup", Title: "Second", Order: 1, Visible: true},
			{ID: "", Title: "Anonymous", Order: 1, Visible: true},
		},
	}
	got := Compose(doc)
	if diff := cmp.Diff([]string{"summary", "dup", "custom-2"}, ids(got)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if got[1].Title != "First" {
		t.Errorf("expected first duplicate to win, got %q", got[1].Title)
	}
	cs, ok := FindCustom(doc, "custom-2")
	if !ok || cs.Title != "Anonymous" {
		t.Errorf("FindCustom(custom-2) = %v, %v", cs, ok)
	}
}

func TestDefaultSectionsWhenNoneDeclared(t *testing.T) {
	got := ids(Compose(&domain.Document{}))
	want := []string{"contact", "summary", "experience", "education", "skills", "certifications"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownTypesAreDropped(t *testing.T) {
	doc := &domain.Document{Sections: []domain.SectionDescriptor{
		{ID: "x", Type: "portfolio", Order: 0, Visible: true},
		{ID: "summary", Type: domain.SectionSummary, Order: 1, Visible: true},
	}}
	if diff := cmp.Diff([]string{"summary"}, ids(Compose(doc))); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNilDocument(t *testing.T) {
	if got := Compose(nil); len(got) != 0 {
		t.Fatalf("expected no sections, got %v", got)
	}
}
