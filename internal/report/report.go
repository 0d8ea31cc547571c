// Package report renders a recorded run as a self-contained HTML document.
package report

import (
	_ "embed"
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vincentbai/browsetrace-recorder/internal/models"
)

// FileName is the suggested download name for a report.
const FileName = "automation_report.html"

const timeLayout = "2006-01-02 15:04:05 UTC"

//go:embed report.html.tmpl
var reportSource string

var reportTemplate = template.Must(template.New("report").Parse(reportSource))

// Summary holds the counters shown at the top of the report.
type Summary struct {
	Steps  int // recorded user actions: clicks and types
	Clicks int
	Types  int
	Pages  int // start URL plus every URL introduced by a page wait
}

type row struct {
	Index    int
	Action   string
	Selector string
	Value    string
	When     string
	Page     string
}

type document struct {
	Started  string
	Ended    string
	Duration string
	StartURL string
	Summary  Summary
	Rows     []row
}

// Summarize counts the steps the way the report displays them.
func Summarize(steps []models.Step, startURL string) Summary {
	var s Summary
	pages := make(map[string]struct{})
	if startURL != "" {
		pages[startURL] = struct{}{}
	}
	for _, step := range steps {
		switch step.Kind {
		case models.StepClick:
			s.Clicks++
		case models.StepType:
			s.Types++
		case models.StepPageWait:
			pages[step.PageURL] = struct{}{}
		}
	}
	s.Steps = s.Clicks + s.Types
	s.Pages = len(pages)
	return s
}

// Build renders the report. All selectors, values and URLs are escaped for
// their HTML context by the template engine.
func Build(steps []models.Step, meta models.RunMetadata) string {
	doc := document{
		Started:  formatTimestamp(meta.StartedAt),
		Ended:    formatTimestamp(meta.EndedAt),
		Duration: formatDuration(meta.StartedAt, meta.EndedAt),
		StartURL: meta.StartURL,
		Summary:  Summarize(steps, meta.StartURL),
		Rows:     make([]row, 0, len(steps)),
	}
	for i, step := range steps {
		page := step.PageURL
		if page == "" {
			page = meta.StartURL
		}
		doc.Rows = append(doc.Rows, row{
			Index:    i + 1,
			Action:   actionLabel(step.Kind),
			Selector: step.Target,
			Value:    step.Value,
			When:     formatTimestamp(step.Timestamp),
			Page:     page,
		})
	}

	var b strings.Builder
	if err := reportTemplate.Execute(&b, doc); err != nil {
		return ""
	}
	return b.String()
}

func actionLabel(kind models.StepKind) string {
	switch kind {
	case models.StepClick:
		return "Click"
	case models.StepType:
		return "Type"
	case models.StepPageWait:
		return "Navigation / Wait"
	default:
		return string(kind)
	}
}

func formatTimestamp(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(timeLayout)
}

func formatDuration(startMs, endMs int64) string {
	if startMs <= 0 || endMs <= 0 || endMs < startMs {
		return "-"
	}
	if endMs-startMs < 1000 {
		return "0 seconds"
	}
	return strings.TrimSpace(humanize.RelTime(time.UnixMilli(startMs), time.UnixMilli(endMs), "", ""))
}
