package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"
)

// Page names. No other name can be rendered.
const (
	PageConfigError = "configerror"
	PageResult      = "resultpage"
	PageSendMail    = "sendmail"
	PageJobFail     = "jobfail"
	PageEmail       = "email"
)

var pages = []string{PageConfigError, PageResult, PageSendMail, PageJobFail, PageEmail}

//go:embed templates/*.html
var templateFS embed.FS

// Data is everything a page may show.
type Data struct {
	Config         *model.JobConfig
	Description    model.Description
	Summary        *model.ResultSummary
	ImgTags        []template.HTML
	Errors         []string
	JobInfo        *model.JobInfo
	JobID          string
	Hostname       string
	UnsubscribeURL string
}

// Renderer renders the closed set of StarFit pages.
type Renderer struct {
	templates map[string]*template.Template
}

func New() (*Renderer, error) {
	funcs := template.FuncMap{
		// fit service output is HTML we produced ourselves
		"trusted": func(s string) template.HTML { return template.HTML(s) },
	}
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html",
			"templates/parameters.html",
			"templates/results.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, common.Errorf("failed to parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render executes the named page. Unknown names fail with common.ErrUnknownTemplate.
func (r *Renderer) Render(name string, data Data) (string, error) {
	t, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", common.ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return "", common.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// ImgTag embeds an image as a data URI: an iframe for pdf, an object otherwise.
func ImgTag(image []byte, format string) template.HTML {
	b64 := base64.StdEncoding.EncodeToString(image)
	if format == "pdf" {
		const typ = "application/pdf"
		return template.HTML(fmt.Sprintf(`<iframe src="data:%s;base64,%s" type="%s" width="100%%" height="70%%"></iframe>`, typ, b64, typ))
	}
	typ := "image/" + format
	if format == "svg" {
		typ += "+xml"
	}
	return template.HTML(fmt.Sprintf(`<object data="data:%s;base64,%s" type="%s" width="100%%"></object>`, typ, b64, typ))
}
