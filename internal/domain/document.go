package domain

import (
	"slices"
	"time"
)

// SectionType enumerates the kinds of content block a Document can show.
type SectionType string

const (
	SectionContact        SectionType = "contact"
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionCertifications SectionType = "certifications"
	SectionCustom         SectionType = "custom"
)

// Valid reports whether t is one of the known section types.
func (t SectionType) Valid() bool {
	switch t {
	case SectionContact, SectionSummary, SectionExperience, SectionEducation,
		SectionSkills, SectionCertifications, SectionCustom:
		return true
	}
	return false
}

// SectionDescriptor carries ordering and visibility for one content block.
// For custom sections ID refers to a CustomSection.
type SectionDescriptor struct {
	ID      string      `json:"id" yaml:"id"`
	Type    SectionType `json:"type" yaml:"type"`
	Title   string      `json:"title" yaml:"title"`
	Order   float64     `json:"order" yaml:"order"`
	Visible bool        `json:"visible" yaml:"visible"`
}

type Contact struct {
	FullName string `json:"fullName" yaml:"fullName"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Location string `json:"location" yaml:"location"`
	LinkedIn string `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty" yaml:"github,omitempty"`
	Website  string `json:"website,omitempty" yaml:"website,omitempty"`
	// Photo is a URL or a data URL.
	Photo string `json:"photo,omitempty" yaml:"photo,omitempty"`
}

type Experience struct {
	ID        string `json:"id" yaml:"id"`
	Company   string `json:"company" yaml:"company"`
	Title     string `json:"title" yaml:"title"`
	Location  string `json:"location" yaml:"location"`
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate" yaml:"endDate"`
	// Current hides EndDate and shows the role as ongoing.
	Current bool `json:"current" yaml:"current"`
	// Bullets hold rich text; blank entries are placeholders from the editor.
	Bullets []string `json:"bullets" yaml:"bullets"`
}

type Education struct {
	ID          string `json:"id" yaml:"id"`
	Institution string `json:"institution" yaml:"institution"`
	Degree      string `json:"degree" yaml:"degree"`
	Location    string `json:"location" yaml:"location"`
	BatchStart  string `json:"batchStart" yaml:"batchStart"`
	BatchEnd    string `json:"batchEnd" yaml:"batchEnd"`
	GPA         string `json:"gpa,omitempty" yaml:"gpa,omitempty"`
	Honors      string `json:"honors,omitempty" yaml:"honors,omitempty"`
}

type Skill struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
}

type Certification struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Issuer         string `json:"issuer" yaml:"issuer"`
	Date           string `json:"date" yaml:"date"`
	ExpirationDate string `json:"expirationDate,omitempty" yaml:"expirationDate,omitempty"`
	CredentialID   string `json:"credentialId,omitempty" yaml:"credentialId,omitempty"`
}

type CustomSectionItem struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Technologies string   `json:"technologies,omitempty" yaml:"technologies,omitempty"`
	Date         string   `json:"date,omitempty" yaml:"date,omitempty"`
	Bullets      []string `json:"bullets" yaml:"bullets"`
}

type CustomSection struct {
	ID               string              `json:"id" yaml:"id"`
	Title            string              `json:"title" yaml:"title"`
	Items            []CustomSectionItem `json:"items" yaml:"items"`
	ShowTechnologies bool                `json:"showTechnologies" yaml:"showTechnologies"`
	Order            float64             `json:"order" yaml:"order"`
	Visible          bool                `json:"visible" yaml:"visible"`
}

// Document is the resume aggregate. Renderers treat it as an immutable
// snapshot; TemplateID may name a template that does not exist.
type Document struct {
	ID             string              `json:"id" yaml:"id"`
	Name           string              `json:"name" yaml:"name"`
	Contact        Contact             `json:"contact" yaml:"contact"`
	Summary        string              `json:"summary" yaml:"summary"`
	Experience     []Experience        `json:"experience" yaml:"experience"`
	Education      []Education         `json:"education" yaml:"education"`
	Skills         []Skill             `json:"skills" yaml:"skills"`
	Certifications []Certification     `json:"certifications" yaml:"certifications"`
	CustomSections []CustomSection     `json:"customSections" yaml:"customSections"`
	Sections       []SectionDescriptor `json:"sections" yaml:"sections"`
	TemplateID     string              `json:"templateId" yaml:"templateId"`
	CreatedAt      time.Time           `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" yaml:"updatedAt"`
}

// CustomSectionByID returns the custom section with the given id.
func (d *Document) CustomSectionByID(id string) (*CustomSection, bool) {
	for i := range d.CustomSections {
		if d.CustomSections[i].ID == id {
			return &d.CustomSections[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so callers can hold a snapshot that later edits
// to d cannot reach.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Experience = slices.Clone(d.Experience)
	for i := range c.Experience {
		c.Experience[i].Bullets = slices.Clone(c.Experience[i].Bullets)
	}
	c.Education = slices.Clone(d.Education)
	c.Skills = slices.Clone(d.Skills)
	c.Certifications = slices.Clone(d.Certifications)
	c.CustomSections = slices.Clone(d.CustomSections)
	for i := range c.CustomSections {
		items := slices.Clone(c.CustomSections[i].Items)
		for j := range items {
			items[j].Bullets = slices.Clone(items[j].Bullets)
		}
		c.CustomSections[i].Items = items
	}
	c.Sections = slices.Clone(d.Sections)
	return &c
}
