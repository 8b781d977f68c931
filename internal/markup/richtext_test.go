package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParagraphs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"blank markup", "<p><br></p><p>  </p>", nil},
		{"plain text", "Built   things\nfast", []string{"Built things fast"}},
		{"inline formatting", "<p>Led <strong>Go</strong> &amp; <em>SQL</em> work</p>", []string{"Led Go & SQL work"}},
		{"paragraphs", "<p>One</p><p>Two</p>", []string{"One", "Two"}},
		{"line break", "First<br>Second", []string{"First", "Second"}},
		{"list items", "<ul><li>a</li><li>b</li></ul>", []string{"a", "b"}},
		{"script dropped", "<p>Safe<script>alert(1)</script></p>", []string{"Safe"}},
		{"entities", "5 &lt; 6", []string{"5 < 6"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Paragraphs(tt.in)); diff != "" {
				t.Errorf("Paragraphs(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestStrip(t *testing.T) {
	if got := Strip("<p>Hello</p><p>world</p>"); got != "Hello world" {
		t.Fatalf("Strip = %q", got)
	}
	if got := Strip("<p></p>"); got != "" {
		t.Fatalf("Strip of empty markup = %q", got)
	}
}
