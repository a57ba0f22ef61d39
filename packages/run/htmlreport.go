package run

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

type htmlReport struct {
	ID       string
	Time     string
	Duration string
	Total    int
	Failed   int
	Files    []FileResult
}

const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>curlew run {{.ID}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 70rem; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #d0d7de; }
.pass { color: #1a7f37; }
.fail { color: #cf222e; }
.meta { color: #6e7781; }
</style>
</head>
<body>
<h1>curlew run report</h1>
<p class="meta">run {{.ID}} at {{.Time}}, {{.Duration}}, {{.Total}} entries, {{.Failed}} failed</p>
{{range .Files}}
<h2>{{.File}}</h2>
<table>
<tr><th>#</th><th>Request</th><th>Status</th><th>Duration</th><th>Result</th></tr>
{{range .Entries}}
<tr>
<td>{{.Index}}</td>
<td>{{.Method}} {{.URL}}</td>
<td>{{.Status}}</td>
<td>{{.Duration}}</td>
{{if .Passed}}<td class="pass">pass</td>{{else}}<td class="fail">fail</td>{{end}}
</tr>
{{end}}
</table>
{{end}}
</body>
</html>
`

// WriteHTML writes a standalone report document named after the run ID
// into the given directory and returns the written path.
func (r *Report) WriteHTML(dir string) (string, error) {
	tmpl, err := template.New("report").Parse(htmlReportTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML template: %w", err)
	}

	total, failed := r.Counts()
	page := htmlReport{
		ID:       r.ID,
		Time:     r.StartedAt.Format("2006-01-02 15:04:05"),
		Duration: r.Duration.Round(time.Millisecond).String(),
		Total:    total,
		Failed:   failed,
		Files:    r.Files,
	}

	path := filepath.Join(dir, "run-"+r.ID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cannot create report %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, page); err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}
	return path, nil
}
