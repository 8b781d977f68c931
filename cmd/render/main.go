// Command render turns a resume document (JSON or YAML) into a PDF, the
// standalone HTML page, or a page-count report, without a browser.
//
//	render -in resume.yaml -out resume.pdf
//	render -in resume.json -format html > resume.html
//	cat resume.json | render -format pages
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"resume-builder/internal/domain"
	"resume-builder/internal/markup"
	"resume-builder/internal/model"
	"resume-builder/internal/pagination"
	"resume-builder/internal/style"
	"resume-builder/pkg/localpdf"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(2)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	in := fs.String("in", "-", "input document, JSON or YAML (- for stdin)")
	out := fs.String("out", "", "output file (default stdout, or the derived file name for pdf)")
	format := fs.String("format", "pdf", "output format: pdf, html or pages")
	tpl := fs.String("template", "", "template id overriding the document's")
	fontDir := fs.String("fonts", os.Getenv("FONT_DIR"), "directory holding template TTF files")
	fontTimeout := fs.Duration("font-timeout", localpdf.DefaultFontTimeout, "font loading timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	doc, err := readDocument(*in, stdin)
	if err != nil {
		return err
	}
	if *tpl != "" {
		if !style.Known(*tpl) {
			return fmt.Errorf("unknown template %q", *tpl)
		}
		doc.TemplateID = *tpl
	}
	fonts := localpdf.NewFontLoader(*fontDir, *fontTimeout)

	switch *format {
	case "pdf":
		res, err := localpdf.NewExporter(fonts).Export(ctx, doc, localpdf.Options{})
		if err != nil {
			return err
		}
		name := *out
		if name == "" && *in != "-" {
			name = filepath.Join(filepath.Dir(*in), res.Filename)
		}
		if err := write(name, stdout, res.Bytes); err != nil {
			return err
		}
		if name != "" {
			fmt.Fprintf(stdout, "wrote %s (%d pages)\n", name, res.Pages)
		}
		return nil
	case "html":
		r, err := markup.Render(doc)
		if err != nil {
			return err
		}
		return write(*out, stdout, []byte(r.HTML))
	case "pages":
		r, err := markup.Render(doc)
		if err != nil {
			return err
		}
		res := pagination.Paginate(ctx, localpdf.NewSurface(fonts), r, pagination.GeometryFor(r.Options))
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		return write(*out, stdout, append(b, '\n'))
	}
	return fmt.Errorf("unknown format %q", *format)
}

// readDocument loads a document and checks it against the document schema.
// YAML is decoded when the file says so by extension or the content does
// not start like JSON.
func readDocument(path string, stdin io.Reader) (*domain.Document, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	trimmed := strings.TrimSpace(string(b))
	if ext == ".json" || (ext != ".yaml" && ext != ".yml" && strings.HasPrefix(trimmed, "{")) {
		if err := model.ValidateDocument(b); err != nil {
			return nil, err
		}
		var doc domain.Document
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return &doc, nil
	}

	var m map[string]interface{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if m == nil {
		return nil, errors.New("empty document")
	}
	if err := model.ValidateMap(normalize(m).(map[string]interface{})); err != nil {
		return nil, err
	}
	var doc domain.Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &doc, nil
}

// normalize turns YAML scalars the JSON schema does not know (timestamps)
// into strings.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, e := range t {
			t[k] = normalize(e)
		}
	case []interface{}:
		for i, e := range t {
			t[i] = normalize(e)
		}
	case time.Time:
		return t.Format(time.RFC3339)
	}
	return v
}

func write(path string, stdout io.Writer, b []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
