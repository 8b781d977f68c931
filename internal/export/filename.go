package export

import (
	"strings"
	"unicode"

	"resume-builder/internal/domain"
)

// DefaultFileName is used when neither a caller name nor a contact name is usable.
const DefaultFileName = "resume.pdf"

// FileName picks the output name: the caller-supplied name, then the
// contact's full name, then DefaultFileName. The result always ends in .pdf.
func FileName(doc *domain.Document, supplied string) string {
	if name := sanitize(strings.TrimSuffix(strings.TrimSpace(supplied), ".pdf")); name != "" {
		return name + ".pdf"
	}
	if doc != nil {
		if name := sanitize(doc.Contact.FullName); name != "" {
			return name + "_Resume.pdf"
		}
	}
	return DefaultFileName
}

// sanitize keeps letters, digits and dashes; runs of anything else
// collapse to one underscore.
func sanitize(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
