package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Paragraphs strips rich-text markup from s and returns its non-empty
// paragraphs with whitespace collapsed. Block elements and <br> split
// paragraphs; script and style content is dropped.
func Paragraphs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var (
		out  []string
		cur  strings.Builder
		skip int
	)
	flush := func() {
		if p := collapse(cur.String()); p != "" {
			out = append(out, p)
		}
		cur.Reset()
	}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			flush()
			return out
		case html.TextToken:
			if skip == 0 {
				cur.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Script || a == atom.Style:
				skip++
			case a == atom.Br:
				flush()
			case isBlock(a):
				flush()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Script || a == atom.Style:
				if skip > 0 {
					skip--
				}
			case isBlock(a):
				flush()
			}
		}
	}
}

// Strip returns s without markup as a single line.
func Strip(s string) string {
	return strings.Join(Paragraphs(s), " ")
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.H1, atom.H2, atom.H3,
		atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Pre, atom.Section, atom.Article:
		return true
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
