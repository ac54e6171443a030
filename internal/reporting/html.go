package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/codewithboateng/storytest/internal/ir"
	"github.com/codewithboateng/storytest/internal/rules"
)

// WriteHTML renders a single self-contained page. reg is used for rule
// summaries and may be nil.
func WriteHTML(runID, outDir string, run *ir.Run, rep *Report, reg *rules.Registry) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, runID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Head + styles
	fmt.Fprintf(f, "<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(runID))
	fmt.Fprint(f, "<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace} .HIGH{color:#b00020} .MEDIUM{color:#b26a00}</style>")
	fmt.Fprint(f, "</head><body>")

	fmt.Fprintf(f, "<h1>storytest report – <span class='mono'>%s</span></h1>", html.EscapeString(runID))
	fmt.Fprintf(f, "<p>Units: %d &nbsp; Violations: %d &nbsp; HIGH %d / MEDIUM %d / LOW %d</p>",
		len(run.Context.Units), rep.Summary.Total,
		rep.Summary.BySeverity[ir.SeverityHigh],
		rep.Summary.BySeverity[ir.SeverityMedium],
		rep.Summary.BySeverity[ir.SeverityLow],
	)
	if run.Source != "" {
		fmt.Fprintf(f, "<p class='dim'>Source: <span class='mono'>%s</span></p>", html.EscapeString(run.Source))
	}

	fmt.Fprintf(f, "<p class='dim'>Severity threshold: %s", html.EscapeString(run.Context.SeverityThreshold))
	if n := len(run.Context.DisabledRules); n > 0 {
		fmt.Fprintf(f, " &nbsp; Disabled rules: %s", html.EscapeString(strings.Join(run.Context.DisabledRules, ", ")))
	}
	if n := len(run.Context.EnabledRules); n > 0 {
		fmt.Fprintf(f, " &nbsp; Opt-in rules: %s", html.EscapeString(strings.Join(run.Context.EnabledRules, ", ")))
	}
	fmt.Fprint(f, "</p>")

	if rep.Compliant() {
		fmt.Fprint(f, "<h2>All Violations</h2><p class='dim'>No violations. Code narrative is complete.</p></body></html>")
		return path, nil
	}

	// By rule
	fmt.Fprint(f, "<h2>By Rule</h2><table><tr><th>Rule</th><th>Count</th><th>Summary</th></tr>")
	for _, id := range rep.Summary.RuleOrder {
		summary := ""
		if reg != nil {
			if r, ok := reg.Get(id); ok {
				summary = r.Summary
			}
		}
		fmt.Fprintf(f, "<tr><td class='mono'>%s</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(id), rep.Summary.ByRule[id], html.EscapeString(summary))
	}
	fmt.Fprint(f, "</table>")

	// All violations
	fmt.Fprint(f, "<h2>All Violations</h2><table><tr><th>Severity</th><th>Rule</th><th>Unit</th><th>Symbol</th><th>Message</th></tr>")
	for _, v := range rep.Violations {
		fmt.Fprintf(f, "<tr><td class='%s'>%s</td><td class='mono'>%s</td><td>%s</td><td class='mono'>%s</td><td>%s</td></tr>",
			html.EscapeString(string(v.Severity)),
			html.EscapeString(string(v.Severity)),
			html.EscapeString(v.RuleID),
			html.EscapeString(v.Unit),
			html.EscapeString(v.Path()),
			html.EscapeString(v.Message),
		)
	}
	fmt.Fprint(f, "</table></body></html>")
	return path, nil
}
