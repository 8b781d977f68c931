package model

import (
	"strings"

	"resume-builder/internal/domain"
)

type Meta struct {
	Name     string            `json:"name"`
	Headline string            `json:"headline"`
	Contact  map[string]string `json:"contact,omitempty"`
}

// Snapshot is the headline block. SelectedProjects, when set, names the
// projects (by id or title) that make it into the document.
type Snapshot struct {
	Tech             string   `json:"tech"`
	Achievements     []string `json:"achievements"`
	SelectedProjects []string `json:"selected_projects"`
}

type Role struct {
	Company string   `json:"company"`
	Title   string   `json:"title"`
	Period  string   `json:"period,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
}

type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url,omitempty"`
	Stack       string   `json:"stack,omitempty"`
	Description string   `json:"description"`
	Bullets     []string `json:"bullets,omitempty"`
}

// Resume is the resume-for-print payload accepted by the print endpoint.
// It predates the section model and is converted to a Document before
// rendering, so print output follows the same templates as every export.
type Resume struct {
	Meta           Meta              `json:"meta"`
	Summary        string            `json:"summary"`
	Snapshot       Snapshot          `json:"snapshot"`
	Experience     []Role            `json:"experience"`
	Projects       []Project         `json:"projects"`
	Publications   []string          `json:"publications,omitempty"`
	Certifications []string          `json:"certifications,omitempty"`
	Extras         string            `json:"extras,omitempty"`
	Labels         map[string]string `json:"labels,omitempty"`
	TemplateID     string            `json:"templateId,omitempty"`
}

// ToDocument maps the print payload onto the section model. Labels
// override section titles by section id.
func (r *Resume) ToDocument() *domain.Document {
	doc := &domain.Document{
		Name:       r.Meta.Name,
		TemplateID: r.TemplateID,
		Summary:    r.Summary,
		Contact: domain.Contact{
			FullName: r.Meta.Name,
			Email:    r.contact("email"),
			Phone:    r.contact("phone"),
			Location: r.contact("location"),
			LinkedIn: r.contact("linkedin"),
			GitHub:   r.contact("github"),
			Website:  firstNonEmpty(r.contact("website"), r.contact("portfolio")),
		},
	}
	if r.Meta.Headline != "" && doc.Summary == "" {
		doc.Summary = r.Meta.Headline
	}

	for _, role := range r.Experience {
		doc.Experience = append(doc.Experience, domain.Experience{
			Company:   role.Company,
			Title:     role.Title,
			StartDate: role.Period,
			Bullets:   role.Bullets,
		})
	}
	if tech := strings.TrimSpace(r.Snapshot.Tech); tech != "" {
		for _, name := range strings.Split(tech, ",") {
			doc.Skills = append(doc.Skills, domain.Skill{Name: strings.TrimSpace(name), Category: r.label("tech", "Tech")})
		}
	}
	for _, c := range r.Certifications {
		doc.Certifications = append(doc.Certifications, domain.Certification{Name: c})
	}

	doc.Sections = []domain.SectionDescriptor{
		{ID: "contact", Type: domain.SectionContact, Order: 0, Visible: true},
		{ID: "summary", Type: domain.SectionSummary, Title: r.label("summary", ""), Order: 1, Visible: true},
		{ID: "skills", Type: domain.SectionSkills, Title: r.label("skills", ""), Order: 2, Visible: true},
		{ID: "experience", Type: domain.SectionExperience, Title: r.label("experience", ""), Order: 3, Visible: true},
		{ID: "certifications", Type: domain.SectionCertifications, Title: r.label("certifications", ""), Order: 6, Visible: true},
	}

	if len(r.Snapshot.Achievements) > 0 {
		doc.CustomSections = append(doc.CustomSections, domain.CustomSection{
			ID:      "achievements",
			Title:   r.label("achievements", "Key Achievements"),
			Items:   []domain.CustomSectionItem{{Bullets: r.Snapshot.Achievements}},
			Order:   2.5,
			Visible: true,
		})
	}
	if len(r.selectedProjects()) > 0 {
		cs := domain.CustomSection{
			ID:               "projects",
			Title:            r.label("projects", "Projects"),
			ShowTechnologies: true,
			Order:            4,
			Visible:          true,
		}
		for _, p := range r.selectedProjects() {
			bullets := p.Bullets
			if p.Description != "" {
				bullets = append([]string{p.Description}, bullets...)
			}
			cs.Items = append(cs.Items, domain.CustomSectionItem{
				ID:           p.ID,
				Title:        p.Title,
				Technologies: p.Stack,
				Date:         p.URL,
				Bullets:      bullets,
			})
		}
		doc.CustomSections = append(doc.CustomSections, cs)
	}
	if len(r.Publications) > 0 {
		doc.CustomSections = append(doc.CustomSections, domain.CustomSection{
			ID:      "publications",
			Title:   r.label("publications", "Publications"),
			Items:   []domain.CustomSectionItem{{Bullets: r.Publications}},
			Order:   5,
			Visible: true,
		})
	}
	if strings.TrimSpace(r.Extras) != "" {
		doc.CustomSections = append(doc.CustomSections, domain.CustomSection{
			ID:      "extras",
			Title:   r.label("extras", "Additional Information"),
			Items:   []domain.CustomSectionItem{{Bullets: []string{r.Extras}}},
			Order:   7,
			Visible: true,
		})
	}
	return doc
}

func (r *Resume) contact(key string) string {
	return strings.TrimSpace(r.Meta.Contact[key])
}

func (r *Resume) label(key, fallback string) string {
	if v := strings.TrimSpace(r.Labels[key]); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (r *Resume) selectedProjects() []Project {
	if len(r.Snapshot.SelectedProjects) == 0 {
		return r.Projects
	}
	want := make(map[string]bool, len(r.Snapshot.SelectedProjects))
	for _, k := range r.Snapshot.SelectedProjects {
		if k = strings.TrimSpace(k); k != "" {
			want[strings.ToLower(k)] = true
		}
	}
	var out []Project
	for _, p := range r.Projects {
		if want[strings.ToLower(p.ID)] || want[strings.ToLower(p.Title)] {
			out = append(out, p)
		}
	}
	return out
}
