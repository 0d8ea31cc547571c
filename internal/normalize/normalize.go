// Package normalize turns a captured interaction log into generation-ready steps.
package normalize

import "github.com/vincentbai/browsetrace-recorder/internal/models"

// Normalize walks events once in capture order and returns the deduplicated,
// navigation-segmented step sequence. Events without a selector are skipped.
//
// Only one typed field is tracked at a time: an input on a different field
// replaces the pending one without emitting it.
func Normalize(events []models.RawEvent, initialURL string) []models.Step {
	n := normalizer{
		steps:      make([]models.Step, 0, len(events)),
		currentURL: initialURL,
	}
	for _, event := range events {
		n.add(event)
	}
	n.flush()
	return n.steps
}

type normalizer struct {
	steps      []models.Step
	pending    *models.Step
	lastClick  string
	currentURL string
}

func (n *normalizer) add(event models.RawEvent) {
	if event.Selector == "" {
		return
	}
	if event.Kind != models.KindClick && event.Kind != models.KindInput {
		return
	}

	pageURL := event.PageURL
	if pageURL == "" {
		pageURL = n.currentURL
	}
	if pageURL != n.currentURL {
		n.flush()
		n.steps = append(n.steps, models.PageWait(pageURL, event.Timestamp))
		n.currentURL = pageURL
		n.lastClick = ""
	}

	switch event.Kind {
	case models.KindInput:
		step := models.Type(event.Selector, event.Value, pageURL, event.Timestamp)
		n.pending = &step
	case models.KindClick:
		n.flush()
		if event.Selector != n.lastClick {
			n.steps = append(n.steps, models.Click(event.Selector, pageURL, event.Timestamp))
			n.lastClick = event.Selector
		}
	}
}

func (n *normalizer) flush() {
	if n.pending == nil {
		return
	}
	n.steps = append(n.steps, *n.pending)
	n.pending = nil
}
