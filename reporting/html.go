package reporting

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gradeops/autograder/templates"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const htmlTemplateName = "report.html.tmpl"

// HTMLFormatter renders report data as a standalone HTML page, for viewing a
// run's results without any tooling.
type HTMLFormatter struct{}

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter() *HTMLFormatter {
	return &HTMLFormatter{}
}

// Format renders the report data through the embedded HTML template
func (hf *HTMLFormatter) Format(data *ReportData) (string, error) {
	tmpl, err := template.New(htmlTemplateName).
		Funcs(templates.GetTemplateFunc()).
		ParseFS(templateFS, "templates/"+htmlTemplateName)
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report template: %w", err)
	}
	return buf.String(), nil
}
