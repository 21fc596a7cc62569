package mdadapter

import (
	"github.com/yuin/goldmark/ast"
)

var KindCourtDirective = ast.NewNodeKind("CourtDirective")

// CourtDirective is a [[slug]] or [[COURTS]] reference inside the help text.
type CourtDirective struct {
	ast.BaseInline
	Slug      string
	Label     string
	AllCourts bool
}

func (n *CourtDirective) Kind() ast.NodeKind {
	return KindCourtDirective
}

func (n *CourtDirective) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Slug":  n.Slug,
		"Label": n.Label,
	}, nil)
}
