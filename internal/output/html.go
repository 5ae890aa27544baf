package output

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/model"
)

//go:embed report_template.html
var templateFS embed.FS

var htmlTemplate = template.Must(template.New("report_template.html").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).ParseFS(templateFS, "report_template.html"))

func writeHTML(report model.Report, w io.Writer) error {
	return htmlTemplate.Execute(w, report)
}
