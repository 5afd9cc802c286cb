package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"docs-portal/internal/domain"
	"docs-portal/internal/render"
)

var slotPattern = regexp.MustCompile(`<div data-diagram-slot="(\d+)"></div>`)

// Part is a run of static markup or, when Diagram >= 0, the diagram with
// that index.
type Part struct {
	HTML    template.HTML
	Diagram int
}

// Doc is one documentation page ready for rendering.
type Doc struct {
	ID       string
	Title    string
	Parts    []Part
	Diagrams []string
}

// Render assembles the page body for ctx. Diagrams go through a
// BrowserOnly wrapper so non-browser passes only get placeholders.
func (d *Doc) Render(ctx render.Context, themes render.MermaidThemes) (template.HTML, error) {
	var b strings.Builder
	for _, p := range d.Parts {
		if p.Diagram < 0 {
			b.WriteString(string(p.HTML))
			continue
		}
		out, err := render.Diagram(d.ID, p.Diagram, d.Diagrams[p.Diagram], themes).Render(ctx)
		if err != nil {
			return "", fmt.Errorf("render %s diagram %d: %w", d.ID, p.Diagram, err)
		}
		b.WriteString(string(out))
	}
	return template.HTML(b.String()), nil
}

// Library holds every doc the sidebar references.
type Library struct {
	docs map[string]*Doc
}

// DocsFS returns dir as a filesystem, or the built-in docs when dir is
// empty.
func DocsFS(dir string) (fs.FS, error) {
	if dir != "" {
		return os.DirFS(dir), nil
	}
	return fs.Sub(content, "content/docs")
}

// LoadLibrary reads <id>.md for every id from fsys.
func LoadLibrary(fsys fs.FS, ids []string) (*Library, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy := newPolicy()

	lib := &Library{docs: make(map[string]*Doc, len(ids))}
	for _, id := range ids {
		src, err := fs.ReadFile(fsys, id+".md")
		if err != nil {
			return nil, fmt.Errorf("load doc %s: %w", id, err)
		}
		doc, err := parseDoc(md, policy, id, src)
		if err != nil {
			return nil, fmt.Errorf("parse doc %s: %w", id, err)
		}
		lib.docs[id] = doc
	}
	return lib, nil
}

// Get returns the doc with id.
func (l *Library) Get(id string) (*Doc, error) {
	doc, ok := l.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocNotFound, id)
	}
	return doc, nil
}

// Diagram returns the source of diagram index in doc id.
func (l *Library) Diagram(id string, index int) (string, error) {
	doc, err := l.Get(id)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(doc.Diagrams) {
		return "", fmt.Errorf("%w: %s/%d", domain.ErrDiagramNotFound, id, index)
	}
	return doc.Diagrams[index], nil
}

// Len returns the number of loaded docs.
func (l *Library) Len() int { return len(l.docs) }

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w-]+$`)).OnElements("code")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^mermaid$`)).OnElements("pre")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	return p
}

func parseDoc(md goldmark.Markdown, policy *bluemonday.Policy, id string, src []byte) (*Doc, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return nil, err
	}
	safe := policy.SanitizeBytes(buf.Bytes())

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(safe))
	if err != nil {
		return nil, err
	}

	doc := &Doc{ID: id, Title: strings.TrimSpace(page.Find("h1").First().Text())}
	if doc.Title == "" {
		doc.Title = id
	}

	page.Find("pre").Each(func(_ int, s *goquery.Selection) {
		if !isMermaid(s) {
			return
		}
		index := len(doc.Diagrams)
		doc.Diagrams = append(doc.Diagrams, strings.TrimSpace(s.Text()))
		s.ReplaceWithHtml(`<div data-diagram-slot="` + strconv.Itoa(index) + `"></div>`)
	})

	body, err := page.Find("body").Html()
	if err != nil {
		return nil, err
	}
	doc.Parts = splitParts(body)
	return doc, nil
}

// isMermaid matches fenced ```mermaid blocks and <pre class="mermaid">.
func isMermaid(s *goquery.Selection) bool {
	return s.HasClass("mermaid") || s.ChildrenFiltered("code.language-mermaid").Length() > 0
}

func splitParts(body string) []Part {
	var parts []Part
	last := 0
	for _, m := range slotPattern.FindAllStringSubmatchIndex(body, -1) {
		if m[0] > last {
			parts = append(parts, Part{HTML: template.HTML(body[last:m[0]]), Diagram: -1})
		}
		index, _ := strconv.Atoi(body[m[2]:m[3]])
		parts = append(parts, Part{Diagram: index})
		last = m[1]
	}
	if last < len(body) {
		parts = append(parts, Part{HTML: template.HTML(body[last:]), Diagram: -1})
	}
	return parts
}
