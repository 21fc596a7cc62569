package mdadapter

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	startSeq  = []byte{'[', '['}
	endSeq    = []byte{']', ']'}
	labelSeq  = []byte{'|'}
	allCourts = []byte("COURTS")
)

/*
 * Wiki link
 * [[tis-hazari]]
 * [[tis-hazari|Tis Hazari]]
 * [[COURTS]] - all supported courts
 */
type CourtDirectiveParser struct{}

func NewCourtDirectiveParser() parser.InlineParser {
	return &CourtDirectiveParser{}
}

func (s *CourtDirectiveParser) Trigger() []byte {
	return startSeq
}

func (s *CourtDirectiveParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	b, _ := block.PeekLine()
	if !bytes.HasPrefix(b, startSeq) {
		return nil
	}

	end := bytes.Index(b, endSeq)
	if end < 0 {
		return nil
	}

	line := bytes.TrimSpace(b[len(startSeq):end])
	if len(line) == 0 {
		return nil
	}

	block.Advance(end + len(endSeq))

	if bytes.Equal(line, allCourts) {
		return &CourtDirective{AllCourts: true}
	}

	if slug, label, ok := bytes.Cut(line, labelSeq); ok {
		return &CourtDirective{
			Slug:  string(bytes.TrimSpace(slug)),
			Label: string(bytes.TrimSpace(label)),
		}
	}

	return &CourtDirective{Slug: string(line)}
}
