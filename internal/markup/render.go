package markup

import (
	"strings"

	"resume-builder/internal/compose"
	"resume-builder/internal/domain"
	"resume-builder/internal/style"
)

// "Other" collects skills with a blank category.
const otherCategory = "Other"

var defaultTitles = map[domain.SectionType]string{
	domain.SectionSummary:        "Professional Summary",
	domain.SectionExperience:     "Experience",
	domain.SectionEducation:      "Education",
	domain.SectionSkills:         "Skills",
	domain.SectionCertifications: "Certifications",
}

// BuildTree renders every visible section of doc, in composed order, into a
// Tree. Sections without content are left out.
func BuildTree(doc *domain.Document, cfg style.Config) *Tree {
	t := &Tree{Style: cfg}
	if doc == nil {
		return t
	}
	for _, desc := range compose.Compose(doc) {
		if s := RenderSection(desc, doc, cfg); s != nil {
			t.Sections = append(t.Sections, *s)
		}
	}
	return t
}

// RenderSection renders one section. It returns nil when the underlying
// collection is empty or all of its content is blank.
func RenderSection(desc domain.SectionDescriptor, doc *domain.Document, cfg style.Config) *Section {
	if doc == nil {
		return nil
	}
	var units []Unit
	switch desc.Type {
	case domain.SectionContact:
		if u, ok := contactUnit(doc.Contact); ok {
			units = append(units, u)
		}
	case domain.SectionSummary:
		if ps := Paragraphs(doc.Summary); len(ps) > 0 {
			units = append(units, Unit{Kind: UnitParagraph, Paragraphs: ps})
		}
	case domain.SectionExperience:
		for _, e := range doc.Experience {
			if u, ok := experienceUnit(e); ok {
				units = append(units, u)
			}
		}
	case domain.SectionEducation:
		for _, e := range doc.Education {
			if u, ok := educationUnit(e); ok {
				units = append(units, u)
			}
		}
	case domain.SectionSkills:
		units = skillUnits(doc.Skills)
	case domain.SectionCertifications:
		for _, c := range doc.Certifications {
			if u, ok := certificationUnit(c); ok {
				units = append(units, u)
			}
		}
	case domain.SectionCustom:
		cs, ok := compose.FindCustom(doc, desc.ID)
		if !ok {
			return nil
		}
		for _, it := range cs.Items {
			if u, ok := customUnit(it, cs.ShowTechnologies); ok {
				units = append(units, u)
			}
		}
	}
	if len(units) == 0 {
		return nil
	}

	title := strings.TrimSpace(desc.Title)
	if title == "" {
		title = defaultTitles[desc.Type]
	}
	if desc.Type == domain.SectionContact {
		title = ""
	}
	return &Section{ID: desc.ID, Type: desc.Type, Title: title, Units: units}
}

func contactUnit(c domain.Contact) (Unit, bool) {
	u := Unit{Kind: UnitContact, Name: strings.TrimSpace(c.FullName), Photo: strings.TrimSpace(c.Photo)}
	for _, d := range []string{c.Email, c.Phone, c.Location} {
		if d = strings.TrimSpace(d); d != "" {
			u.Details = append(u.Details, d)
		}
	}
	for _, raw := range []string{c.LinkedIn, c.GitHub, c.Website} {
		if l, ok := profileLink(raw); ok {
			u.Links = append(u.Links, l)
		}
	}
	if u.Name == "" && len(u.Details) == 0 && len(u.Links) == 0 {
		return Unit{}, false
	}
	return u, true
}

func experienceUnit(e domain.Experience) (Unit, bool) {
	u := Unit{
		Kind:     UnitEntry,
		Title:    Strip(e.Title),
		Subtitle: joinNonEmpty(" · ", Strip(e.Company), Strip(e.Location)),
		Date:     dateRange(e.StartDate, e.EndDate, e.Current),
		Bullets:  bullets(e.Bullets),
	}
	if strings.TrimSpace(e.StartDate) == "" && strings.TrimSpace(e.EndDate) == "" {
		// "Present" alone is not content
		u.Date = ""
	}
	return u, !u.entryEmpty()
}

func educationUnit(e domain.Education) (Unit, bool) {
	gpa := strings.TrimSpace(e.GPA)
	if gpa != "" {
		gpa = "GPA: " + gpa
	}
	u := Unit{
		Kind:     UnitEntry,
		Title:    Strip(e.Degree),
		Subtitle: joinNonEmpty(" · ", Strip(e.Institution), Strip(e.Location)),
		Date:     dateRange(e.BatchStart, e.BatchEnd, false),
		Detail:   joinNonEmpty(" · ", gpa, Strip(e.Honors)),
	}
	return u, !u.entryEmpty()
}

func certificationUnit(c domain.Certification) (Unit, bool) {
	exp := strings.TrimSpace(c.ExpirationDate)
	if exp != "" {
		exp = "Expires " + exp
	}
	cred := strings.TrimSpace(c.CredentialID)
	if cred != "" {
		cred = "Credential ID: " + cred
	}
	u := Unit{
		Kind:     UnitEntry,
		Title:    Strip(c.Name),
		Subtitle: Strip(c.Issuer),
		Date:     strings.TrimSpace(c.Date),
		Detail:   joinNonEmpty(" · ", exp, cred),
	}
	return u, !u.entryEmpty()
}

func customUnit(it domain.CustomSectionItem, showTech bool) (Unit, bool) {
	u := Unit{
		Kind:    UnitEntry,
		Title:   Strip(it.Title),
		Date:    strings.TrimSpace(it.Date),
		Bullets: bullets(it.Bullets),
	}
	if showTech {
		u.Subtitle = Strip(it.Technologies)
	}
	return u, !u.entryEmpty()
}

// skillUnits groups skills by exact category, in order of first appearance.
func skillUnits(skills []domain.Skill) []Unit {
	var order []string
	groups := map[string][]string{}
	for _, s := range skills {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		cat := strings.TrimSpace(s.Category)
		if cat == "" {
			cat = otherCategory
		}
		if _, ok := groups[cat]; !ok {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], name)
	}
	units := make([]Unit, 0, len(order))
	for _, cat := range order {
		units = append(units, Unit{Kind: UnitSkillLine, Label: cat, Items: groups[cat]})
	}
	return units
}

func bullets(in []string) []string {
	var out []string
	for _, b := range in {
		if s := Strip(b); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dateRange(start, end string, current bool) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if current {
		end = "Present"
	}
	switch {
	case start != "" && end != "":
		return start + " – " + end
	case start != "":
		return start
	default:
		return end
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func (u Unit) entryEmpty() bool {
	return u.Title == "" && u.Subtitle == "" && u.Date == "" && u.Detail == "" && len(u.Bullets) == 0
}
