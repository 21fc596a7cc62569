package tpladapter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"os"

	"github.com/jgivc/causelist/internal/entity"
	"github.com/jgivc/causelist/internal/service/page"
)

const (
	templateNameIndex = "INDEX"
	templateNameJob   = "JOB"

	funcNameFileURL = "fileURL"

	pageTitle = "Delhi Courts Cause List Downloader"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

type pageContext struct {
	Title   string
	Refresh bool
	Page    *page.IndexPage
	Job     *entity.Job
}

type tplAdapter struct {
	tpl *template.Template
}

// NewTplAdapter parses the built-in templates. When templateFileName is set,
// the blocks it defines replace the built-in blocks of the same name.
func NewTplAdapter(templateFileName string) (*tplAdapter, error) {
	tpl := template.New("").Funcs(template.FuncMap{
		funcNameFileURL: fileURL,
	})

	if _, err := tpl.ParseFS(defaultTemplates, "templates/*.html"); err != nil {
		return nil, fmt.Errorf("cannot parse template: %w", err)
	}

	if templateFileName != "" {
		data, err := os.ReadFile(templateFileName)
		if err != nil {
			return nil, fmt.Errorf("cannot read template: %w", err)
		}

		if _, err := tpl.Parse(string(data)); err != nil {
			return nil, fmt.Errorf("cannot parse template %s: %w", templateFileName, err)
		}
	}

	for _, name := range []string{templateNameIndex, templateNameJob} {
		if tpl.Lookup(name) == nil {
			return nil, fmt.Errorf("template %s must be defined", name)
		}
	}

	return &tplAdapter{tpl: tpl}, nil
}

func (a *tplAdapter) RenderIndex(p *page.IndexPage) (string, error) {
	return a.execute(templateNameIndex, &pageContext{Title: pageTitle, Page: p})
}

// RenderJob renders the job page; it reloads itself until the job is finished.
func (a *tplAdapter) RenderJob(job *entity.Job) (string, error) {
	return a.execute(templateNameJob, &pageContext{
		Title:   fmt.Sprintf("%s: %s", pageTitle, job.Court.Name),
		Refresh: !job.State.IsFinished(),
		Job:     job,
	})
}

func (a *tplAdapter) execute(name string, data *pageContext) (string, error) {
	buf := bytes.Buffer{}
	if err := a.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("cannot execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

func fileURL(name string) string {
	return "/files/" + url.PathEscape(name)
}
