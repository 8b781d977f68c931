package markup

import (
	"strings"
	"testing"

	"resume-builder/internal/domain"
	"resume-builder/internal/style"

	"github.com/google/go-cmp/cmp"
)

func sections(types ...domain.SectionType) []domain.SectionDescriptor {
	out := make([]domain.SectionDescriptor, 0, len(types))
	for i, t := range types {
		out = append(out, domain.SectionDescriptor{ID: string(t), Type: t, Order: float64(i), Visible: true})
	}
	return out
}

func oneExperienceDocument() *domain.Document {
	return &domain.Document{
		ID:       "doc-1",
		Contact:  domain.Contact{FullName: "Jane Doe", Email: "jane@example.com"},
		Sections: sections(domain.SectionContact, domain.SectionExperience),
		Experience: []domain.Experience{{
			Company:   "Acme Corp",
			Title:     "Senior Engineer",
			StartDate: "Jan 2020",
			Current:   true,
			Bullets:   []string{"<p>Shipped the <strong>billing</strong> platform</p>"},
		}},
	}
}

func TestRenderExperienceEntry(t *testing.T) {
	r, err := Render(oneExperienceDocument())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(r.Tree.Sections) != 2 {
		t.Fatalf("expected contact and experience sections, got %d", len(r.Tree.Sections))
	}
	got := r.Tree.Sections[1].Units[0]
	want := Unit{
		Kind:     UnitEntry,
		Title:    "Senior Engineer",
		Subtitle: "Acme Corp",
		Date:     "Jan 2020 – Present",
		Bullets:  []string{"Shipped the billing platform"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
	for _, s := range []string{"Senior Engineer", "Acme Corp", "Shipped the billing platform", "Jane Doe"} {
		if !strings.Contains(r.HTML, s) {
			t.Errorf("HTML missing %q", s)
		}
	}
}

func TestBlankBulletsRenderNoListItems(t *testing.T) {
	doc := oneExperienceDocument()
	doc.Experience[0].Bullets = []string{"", "<p><br></p>", "   "}
	r, err := Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	u := r.Tree.Sections[1].Units[0]
	if len(u.Bullets) != 0 {
		t.Fatalf("expected zero bullets, got %q", u.Bullets)
	}
	if strings.Contains(string(r.Body), "<li") {
		t.Fatalf("body contains list items:\n%s", r.Body)
	}
}

func TestEmptySummaryIsAbsent(t *testing.T) {
	doc := &domain.Document{
		Summary:    "<p>  </p><p><br></p>",
		Sections:   sections(domain.SectionSummary, domain.SectionExperience),
		Experience: oneExperienceDocument().Experience,
	}
	r, err := Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, s := range r.Tree.Sections {
		if s.Type == domain.SectionSummary {
			t.Fatal("summary section rendered")
		}
	}
	if strings.Contains(string(r.Body), "Professional Summary") || strings.Contains(string(r.Body), "section-summary") {
		t.Fatalf("summary markup present:\n%s", r.Body)
	}
}

func TestSummaryParagraphs(t *testing.T) {
	doc := &domain.Document{Summary: "<p>First.</p><p>Second.</p>", Sections: sections(domain.SectionSummary)}
	s := RenderSection(doc.Sections[0], doc, style.Default())
	if s == nil {
		t.Fatal("summary not rendered")
	}
	if s.Title != "Professional Summary" {
		t.Errorf("default title = %q", s.Title)
	}
	if diff := cmp.Diff([]string{"First.", "Second."}, s.Units[0].Paragraphs); diff != "" {
		t.Errorf("paragraphs mismatch (-want +got):\n%s", diff)
	}
}

func TestSkillsGroupedByCategory(t *testing.T) {
	doc := &domain.Document{
		Sections: sections(domain.SectionSkills),
		Skills: []domain.Skill{
			{Name: "Go", Category: "Languages"},
			{Name: "", Category: "Languages"},
			{Name: "SQL", Category: "Languages"},
			{Name: "Docker", Category: ""},
			{Name: "Postgres", Category: "Databases"},
			{Name: "  ", Category: "Empty"},
		},
	}
	s := RenderSection(doc.Sections[0], doc, style.Default())
	if s == nil {
		t.Fatal("skills not rendered")
	}
	var lines []string
	for _, u := range s.Units {
		lines = append(lines, u.SkillText())
	}
	want := []string{"Languages: Go, SQL", "Other: Docker", "Databases: Postgres"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("skill lines mismatch (-want +got):\n%s", diff)
	}
	html, err := SectionHTML(s)
	if err != nil {
		t.Fatalf("SectionHTML: %v", err)
	}
	if !strings.Contains(string(html), `<strong class="skill-label">Languages:</strong> Go, SQL`) {
		t.Fatalf("skill line markup unexpected:\n%s", html)
	}
}

func TestEmptyCustomSectionRendersNothing(t *testing.T) {
	doc := &domain.Document{
		Sections:       sections(domain.SectionSummary),
		Summary:        "Hello",
		CustomSections: []domain.CustomSection{{ID: "empty", Title: "Projects", Order: 1, Visible: true}},
	}
	r, err := Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(r.Tree.Sections) != 1 {
		t.Fatalf("expected only the summary section, got %d", len(r.Tree.Sections))
	}
	if strings.Contains(string(r.Body), "empty") || strings.Contains(string(r.Body), "Projects") {
		t.Fatalf("empty custom section leaked into markup:\n%s", r.Body)
	}
}

func TestCustomSectionTechnologiesFlag(t *testing.T) {
	cs := domain.CustomSection{
		ID: "p", Title: "Projects", Order: 0, Visible: true,
		Items: []domain.CustomSectionItem{{Title: "Resume builder", Technologies: "Go, Chrome", Date: "2024", Bullets: []string{"Built it"}}},
	}
	doc := &domain.Document{Sections: []domain.SectionDescriptor{}, CustomSections: []domain.CustomSection{cs}}
	desc := domain.SectionDescriptor{ID: "p", Type: domain.SectionCustom, Title: "Projects", Visible: true}

	hidden := RenderSection(desc, doc, style.Default())
	if hidden.Units[0].Subtitle != "" {
		t.Errorf("technologies shown while flag is off: %q", hidden.Units[0].Subtitle)
	}
	doc.CustomSections[0].ShowTechnologies = true
	shown := RenderSection(desc, doc, style.Default())
	if shown.Units[0].Subtitle != "Go, Chrome" {
		t.Errorf("technologies = %q", shown.Units[0].Subtitle)
	}
}

func TestEducationAndCertificationDetails(t *testing.T) {
	doc := &domain.Document{
		Sections: sections(domain.SectionEducation, domain.SectionCertifications),
		Education: []domain.Education{{
			Institution: "State University", Degree: "BSc Computer Science",
			BatchStart: "2012", BatchEnd: "2016", GPA: "3.8", Honors: "<em>Magna cum laude</em>",
		}},
		Certifications: []domain.Certification{{
			Name: "CKA", Issuer: "CNCF", Date: "2023", ExpirationDate: "2026", CredentialID: "ABC-123",
		}},
	}
	tree := BuildTree(doc, style.Default())
	edu := tree.Sections[0].Units[0]
	if edu.Date != "2012 – 2016" || edu.Detail != "GPA: 3.8 · Magna cum laude" {
		t.Errorf("education unit = %+v", edu)
	}
	cert := tree.Sections[1].Units[0]
	if cert.Subtitle != "CNCF" || cert.Detail != "Expires 2026 · Credential ID: ABC-123" {
		t.Errorf("certification unit = %+v", cert)
	}
}

func TestContactHasNoHeader(t *testing.T) {
	doc := &domain.Document{
		Sections: sections(domain.SectionContact),
		Contact: domain.Contact{
			FullName: "Jane Doe", Phone: "555-0100", Location: "Berlin",
			LinkedIn: "linkedin.com/in/jane", Photo: "javascript:alert(1)",
		},
	}
	r, err := Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if r.Tree.Sections[0].Title != "" {
		t.Errorf("contact title = %q", r.Tree.Sections[0].Title)
	}
	if strings.Contains(string(r.Body), "section-header") {
		t.Error("contact rendered a header")
	}
	if strings.Contains(string(r.Body), "<img") {
		t.Error("unsafe photo URL rendered")
	}
	if !strings.Contains(string(r.Body), `href="https://linkedin.com/in/jane"`) {
		t.Errorf("profile link missing:\n%s", r.Body)
	}
}

func TestBreakAvoidanceAnnotations(t *testing.T) {
	r, err := Render(oneExperienceDocument())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	css := string(r.Stylesheet)
	for _, rule := range []string{"break-inside: avoid", "page-break-inside: avoid", "break-after: avoid", "@page { size: A4; margin: 0.5in; }"} {
		if !strings.Contains(css, rule) {
			t.Errorf("stylesheet missing %q", rule)
		}
	}
	if !strings.Contains(string(r.Body), `<div class="section-lead"><h2 class="section-header">Experience</h2><article class="unit unit-entry">`) {
		t.Errorf("header not grouped with first unit:\n%s", r.Body)
	}
}

func TestUnknownTemplateUsesDefaultStyle(t *testing.T) {
	doc := oneExperienceDocument()
	doc.TemplateID = "nonexistent-template-xyz"
	r, err := Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if r.Style.ID != style.DefaultID {
		t.Fatalf("style = %q", r.Style.ID)
	}
	if !strings.Contains(string(r.Stylesheet), "'Inter', sans-serif") || !strings.Contains(string(r.Stylesheet), "#2563eb") {
		t.Fatalf("default font/accent missing from stylesheet:\n%s", r.Stylesheet)
	}
	if !strings.Contains(r.HTML, "family=Inter") {
		t.Error("default web font not linked")
	}
}

func TestLayoutVariantRules(t *testing.T) {
	css, err := Stylesheet(style.Resolve("elegant"), DefaultOptions())
	if err != nil {
		t.Fatalf("Stylesheet: %v", err)
	}
	if !strings.Contains(string(css), ".layout-centered .unit-contact { text-align: center; }") {
		t.Errorf("centered layout rule missing:\n%s", css)
	}
	css, err = Stylesheet(style.Resolve("modern"), Options{Page: Letter, MarginIn: 0.75})
	if err != nil {
		t.Fatalf("Stylesheet: %v", err)
	}
	if !strings.Contains(string(css), "border-top: 6pt solid #7c3aed") || !strings.Contains(string(css), "size: Letter; margin: 0.75in") {
		t.Errorf("accent-bar/letter rules missing:\n%s", css)
	}
}

func TestMalformedDocumentRenders(t *testing.T) {
	doc := &domain.Document{
		Experience:     []domain.Experience{{}},
		Education:      []domain.Education{{}},
		Certifications: []domain.Certification{{}},
		Skills:         []domain.Skill{{}},
	}
	r, err := Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(r.Tree.Sections) != 0 {
		t.Fatalf("expected no sections, got %+v", r.Tree.Sections)
	}
	if r.Title != "Resume" {
		t.Errorf("title = %q", r.Title)
	}
	if _, err := Render(nil); err != nil {
		t.Fatalf("Render(nil): %v", err)
	}
}
