package model

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/*.json
var schemaFS embed.FS

var (
	documentSchema = mustSchema("schema/document.schema.json")
	resumeSchema   = mustSchema("schema/resume.schema.json")
)

func mustSchema(name string) *gojsonschema.Schema {
	b, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		panic(fmt.Sprintf("model: compile %s: %v", name, err))
	}
	return s
}

// ValidationError lists every schema violation of one payload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "schema validation failed: " + strings.Join(e.Problems, "; ")
}

// ValidateDocument checks a raw Document payload.
func ValidateDocument(raw json.RawMessage) error {
	return validate(documentSchema, gojsonschema.NewBytesLoader(raw))
}

// ValidateResume checks a raw resume-for-print payload.
func ValidateResume(raw json.RawMessage) error {
	return validate(resumeSchema, gojsonschema.NewBytesLoader(raw))
}

// ValidateMap validates an already decoded Document.
func ValidateMap(m map[string]interface{}) error {
	return validate(documentSchema, gojsonschema.NewGoLoader(m))
}

func validate(s *gojsonschema.Schema, doc gojsonschema.JSONLoader) error {
	res, err := s.Validate(doc)
	if err != nil {
		return &ValidationError{Problems: []string{err.Error()}}
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return &ValidationError{Problems: msgs}
}
