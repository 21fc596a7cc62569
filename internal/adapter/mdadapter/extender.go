package mdadapter

import (
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/jgivc/causelist/internal/entity"
)

type CourtResolver interface {
	GetCourt(slug string) (entity.CourtComplex, error)
	GetCourts() []entity.CourtComplex
}

type CourtsExtension struct {
	r    CourtResolver
	tmpl *template.Template
}

func NewCourtsExtension(r CourtResolver, tmpl *template.Template) goldmark.Extender {
	return &CourtsExtension{r: r, tmpl: tmpl}
}

func (e *CourtsExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(NewCourtDirectiveParser(), 199),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(NewCourtDirectiveRenderer(e.r, e.tmpl), 199),
		),
	)
}
