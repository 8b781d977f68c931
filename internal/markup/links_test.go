package markup

import "testing"

func TestProfileLink(t *testing.T) {
	tests := []struct {
		in        string
		wantLabel string
		wantURL   string
	}{
		{"https://www.linkedin.com/in/jane-doe/", "linkedin.com/in/jane-doe", "https://www.linkedin.com/in/jane-doe/"},
		{"github.com/jdoe", "github.com/jdoe", "https://github.com/jdoe"},
		{"https://jane.github.io", "jane.github.io", "https://jane.github.io"},
		{"http://example.co.uk/portfolio", "example.co.uk/portfolio", "http://example.co.uk/portfolio"},
	}
	for _, tt := range tests {
		l, ok := profileLink(tt.in)
		if !ok {
			t.Fatalf("profileLink(%q) not ok", tt.in)
		}
		if l.Label != tt.wantLabel || l.URL != tt.wantURL {
			t.Errorf("profileLink(%q) = %+v, want label %q url %q", tt.in, l, tt.wantLabel, tt.wantURL)
		}
	}
	if _, ok := profileLink("   "); ok {
		t.Error("blank link should be skipped")
	}
}
