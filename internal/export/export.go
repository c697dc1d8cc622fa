package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/promptforge/internal/library"
)

// Exporter renders the prompt library as a static HTML site: an index page
// plus one page per prompt, with prompt content treated as markdown.
type Exporter struct {
	lib       *library.Store
	outputDir string
}

// NewExporter creates an exporter writing into outputDir.
func NewExporter(lib *library.Store, outputDir string) *Exporter {
	return &Exporter{lib: lib, outputDir: outputDir}
}

// Export writes the site and returns the number of prompt pages written.
func (e *Exporter) Export(ctx context.Context) (int, error) {
	prompts, err := e.lib.ListPrompts(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing prompts: %w", err)
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating output dir: %w", err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	pageTmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return 0, fmt.Errorf("parsing page template: %w", err)
	}
	indexTmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return 0, fmt.Errorf("parsing index template: %w", err)
	}

	written := 0
	for _, p := range prompts {
		if err := e.renderPrompt(md, pageTmpl, p); err != nil {
			return written, err
		}
		written++
	}

	if err := e.renderIndex(indexTmpl, prompts); err != nil {
		return written, err
	}
	return written, nil
}

func (e *Exporter) renderPrompt(md goldmark.Markdown, tmpl *template.Template, p library.Prompt) error {
	var content bytes.Buffer
	if err := md.Convert([]byte(p.Content), &content); err != nil {
		return fmt.Errorf("rendering %q: %w", p.Name, err)
	}

	var original template.HTML
	if p.OriginalContent != "" && p.OriginalContent != p.Content {
		var buf bytes.Buffer
		if err := md.Convert([]byte(p.OriginalContent), &buf); err != nil {
			return fmt.Errorf("rendering original of %q: %w", p.Name, err)
		}
		original = template.HTML(buf.String())
	}

	var page bytes.Buffer
	err := tmpl.Execute(&page, promptPage{
		Name:     p.Name,
		Labels:   p.Labels,
		Content:  template.HTML(content.String()),
		Original: original,
	})
	if err != nil {
		return fmt.Errorf("executing template for %q: %w", p.Name, err)
	}

	return os.WriteFile(filepath.Join(e.outputDir, p.Name+".html"), page.Bytes(), 0o644)
}

func (e *Exporter) renderIndex(tmpl *template.Template, prompts []library.Prompt) error {
	entries := make([]indexEntry, len(prompts))
	for i, p := range prompts {
		entries[i] = indexEntry{Name: p.Name, Labels: p.Labels}
	}

	var page bytes.Buffer
	if err := tmpl.Execute(&page, indexPage{Prompts: entries}); err != nil {
		return fmt.Errorf("executing index template: %w", err)
	}
	return os.WriteFile(filepath.Join(e.outputDir, "index.html"), page.Bytes(), 0o644)
}

type promptPage struct {
	Name     string
	Labels   []string
	Content  template.HTML
	Original template.HTML
}

type indexEntry struct {
	Name   string
	Labels []string
}

type indexPage struct {
	Prompts []indexEntry
}
