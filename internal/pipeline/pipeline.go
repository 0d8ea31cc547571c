// Package pipeline is the entry point for turning a captured event snapshot
// into a script or a report. Steps are recomputed on every call.
package pipeline

import (
	"github.com/vincentbai/browsetrace-recorder/internal/emitter"
	"github.com/vincentbai/browsetrace-recorder/internal/models"
	"github.com/vincentbai/browsetrace-recorder/internal/normalize"
	"github.com/vincentbai/browsetrace-recorder/internal/report"
)

// GenerateScript normalizes events and renders them in format. The empty
// string means nothing was generated (unknown format).
func GenerateScript(events []models.RawEvent, initialURL, format string) string {
	if _, ok := emitter.Lookup(format); !ok {
		return ""
	}
	return emitter.Emit(format, normalize.Normalize(events, initialURL), initialURL)
}

// BuildReport normalizes events against meta.StartURL and renders the report.
func BuildReport(events []models.RawEvent, meta models.RunMetadata) string {
	return report.Build(normalize.Normalize(events, meta.StartURL), meta)
}

// Steps exposes the normalized sequence for callers that list it directly.
func Steps(events []models.RawEvent, initialURL string) []models.Step {
	return normalize.Normalize(events, initialURL)
}

// Formats lists the available script formats.
func Formats() []emitter.Format {
	return emitter.Formats()
}
