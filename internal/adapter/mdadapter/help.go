package mdadapter

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	_ "embed"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"

	"github.com/jgivc/causelist/internal/entity"
)

const defaultTitle = "Help"

//go:embed help.md
var defaultHelp []byte

const directiveTemplates = `
{{- define "COURT"}}<strong title="{{.Slug}}">{{.Label}}</strong>{{end -}}
{{- define "COURTS"}}{{range $i, $c := .}}{{if $i}}, {{end}}<strong title="{{$c.Slug}}">{{$c.Name}}</strong>{{end}}{{end -}}
`

type Frontmatter struct {
	Title string `yaml:"title"`
}

// Help is the rendered help section of the index page.
type Help struct {
	Title string
	HTML  template.HTML
}

type helpRenderer struct {
	md  goldmark.Markdown
	log *slog.Logger
}

func NewHelpRenderer(courts []entity.CourtComplex, log *slog.Logger) (*helpRenderer, error) {
	tmpl, err := newDirectiveTemplates()
	if err != nil {
		return nil, err
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&frontmatter.Extender{},
			NewCourtsExtension(newCourtResolver(courts), tmpl),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &helpRenderer{
		md:  md,
		log: log.With(slog.String("item", "HelpRenderer")),
	}, nil
}

func newDirectiveTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Parse(directiveTemplates)
	if err != nil {
		return nil, fmt.Errorf("cannot parse directive templates: %w", err)
	}

	return tmpl, nil
}

// Render converts the embedded help text.
func (h *helpRenderer) Render() (*Help, error) {
	return h.RenderSource(defaultHelp)
}

func (h *helpRenderer) RenderSource(src []byte) (*Help, error) {
	pc := parser.NewContext()

	var buf bytes.Buffer
	if err := h.md.Convert(src, &buf, parser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("cannot convert markdown: %w", err)
	}

	help := &Help{
		Title: defaultTitle,
		HTML:  template.HTML(buf.String()),
	}

	if data := frontmatter.Get(pc); data != nil {
		var fm Frontmatter
		if err := data.Decode(&fm); err != nil {
			return nil, fmt.Errorf("cannot decode frontmatter: %w", err)
		}

		if fm.Title != "" {
			help.Title = fm.Title
		}
	}

	h.log.Debug("Help rendered", slog.String("title", help.Title), slog.Int("size", buf.Len()))

	return help, nil
}
