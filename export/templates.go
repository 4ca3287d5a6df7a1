package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"rptcore/config"
	"rptcore/layout"
	"rptcore/process"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Report     string
	Target     string
	PageHeight string
	Height     string
	Pages      int
	SourceFile string
}

func expandTemplate(res *process.Result, report, src string, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Report:     report,
		Target:     res.Target,
		PageHeight: layout.FormatLength(res.PageHeight),
		Height:     layout.FormatLength(res.Height),
		Pages:      len(res.Pages()),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
