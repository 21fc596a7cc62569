package mdadapter

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

const (
	tmplNameCourt  = "COURT"
	tmplNameCourts = "COURTS"
)

type CourtDirectiveRenderer struct {
	r    CourtResolver
	tmpl *template.Template
}

func NewCourtDirectiveRenderer(r CourtResolver, tmpl *template.Template) renderer.NodeRenderer {
	return &CourtDirectiveRenderer{r: r, tmpl: tmpl}
}

func (r *CourtDirectiveRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindCourtDirective, r.renderCourtDirective)
}

func (r *CourtDirectiveRenderer) renderCourtDirective(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	directive, ok := n.(*CourtDirective)
	if !ok {
		return ast.WalkStop, fmt.Errorf("unexpected node %T, expected *CourtDirective", n)
	}

	if directive.AllCourts {
		data, err := r.renderTemplate(tmplNameCourts, r.r.GetCourts())
		if err != nil {
			return ast.WalkStop, err
		}

		w.Write(data)

		return ast.WalkContinue, nil
	}

	court, err := r.r.GetCourt(directive.Slug)
	if err != nil {
		return ast.WalkStop, fmt.Errorf("cannot get court %s: %w", directive.Slug, err)
	}

	label := court.Name
	if directive.Label != "" {
		label = directive.Label
	}

	data, err := r.renderTemplate(tmplNameCourt, map[string]string{
		"Name":  court.Name,
		"Slug":  court.Slug,
		"Label": label,
	})
	if err != nil {
		return ast.WalkStop, err
	}

	w.Write(data)

	return ast.WalkContinue, nil
}

func (r *CourtDirectiveRenderer) renderTemplate(tmplName string, data any) ([]byte, error) {
	tmpl := r.tmpl.Lookup(tmplName)
	if tmpl == nil {
		return nil, fmt.Errorf("template with name %s must be defined", tmplName)
	}

	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("cannot execute template: %w", err)
	}

	return buf.Bytes(), nil
}
