// Package emitter renders a normalized step sequence as source code for a
// browser automation framework.
//
// Every format is a dialect: a prologue that opens the start URL, one
// statement block per step and an epilogue that tears the session down. The
// step to statement mapping is the same for all of them:
//
//	page_wait    wait for the document to finish loading
//	click        wait for the target to be interactable, then click it
//	type         wait for the target to be present, then set its value
//
// Every literal embedded in the output goes through the dialect's quote
// function, so selectors, values and URLs containing quotes cannot terminate
// a string early.
package emitter

import (
	"strings"

	"github.com/vincentbai/browsetrace-recorder/internal/models"
)

// Format keys accepted by Emit.
const (
	Selenium         = "selenium"
	PlaywrightPython = "pw-python"
	PlaywrightJS     = "pw-js"
	Cypress          = "cypress"
)

// Format describes one output target.
type Format struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Extension string `json:"extension"`
}

// FileName is the suggested download name for a script in this format.
func (f Format) FileName() string {
	return "automation" + f.Extension
}

type dialect struct {
	Format
	indent   string
	prologue func(q quoter, startURL string) []string
	epilogue []string
	pageWait func(q quoter) []string
	click    func(q quoter, target string) []string
	fill     func(q quoter, target, value string) []string
	quote    quoter
}

type quoter func(string) string

var dialects = []dialect{
	seleniumDialect,
	playwrightPythonDialect,
	playwrightJSDialect,
	cypressDialect,
}

// Formats lists the supported formats in display order.
func Formats() []Format {
	formats := make([]Format, 0, len(dialects))
	for _, d := range dialects {
		formats = append(formats, d.Format)
	}
	return formats
}

// Lookup returns the format registered under key.
func Lookup(key string) (Format, bool) {
	d, ok := lookup(key)
	return d.Format, ok
}

func lookup(key string) (dialect, bool) {
	for _, d := range dialects {
		if d.Key == key {
			return d, true
		}
	}
	return dialect{}, false
}

// Emit renders steps as a program in the given format. An unknown format
// yields the empty string.
func Emit(format string, steps []models.Step, startURL string) string {
	d, ok := lookup(format)
	if !ok {
		return ""
	}
	return d.render(steps, startURL)
}

func (d dialect) render(steps []models.Step, startURL string) string {
	var b strings.Builder
	write := func(lines []string, indent string) {
		for _, line := range lines {
			if line != "" {
				b.WriteString(indent)
				b.WriteString(line)
			}
			b.WriteByte('\n')
		}
	}

	write(d.prologue(d.quote, startURL), "")
	for _, step := range steps {
		switch step.Kind {
		case models.StepPageWait:
			write(d.pageWait(d.quote), d.indent)
		case models.StepClick:
			write(d.click(d.quote, step.Target), d.indent)
		case models.StepType:
			write(d.fill(d.quote, step.Target, step.Value), d.indent)
		}
	}
	write(d.epilogue, "")
	return b.String()
}
