package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentbai/browsetrace-recorder/internal/models"
)

func click(selector, url string, ts int64) models.RawEvent {
	return models.RawEvent{Kind: models.KindClick, Selector: selector, PageURL: url, Timestamp: ts}
}

func input(selector, value, url string, ts int64) models.RawEvent {
	return models.RawEvent{Kind: models.KindInput, Selector: selector, Value: value, PageURL: url, Timestamp: ts}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		events     []models.RawEvent
		initialURL string
		want       []models.Step
	}{
		{
			name:       "empty input yields no steps",
			events:     nil,
			initialURL: "http://x",
			want:       []models.Step{},
		},
		{
			name: "duplicate click collapses and type flushes before navigation",
			events: []models.RawEvent{
				click("#a", "http://x", 1),
				click("#a", "http://x", 2),
				input("#b", "hi", "http://x", 3),
				click("#c", "http://y", 4),
			},
			initialURL: "http://x",
			want: []models.Step{
				models.Click("#a", "http://x", 1),
				models.Type("#b", "hi", "http://x", 3),
				models.PageWait("http://y", 4),
				models.Click("#c", "http://y", 4),
			},
		},
		{
			name: "input run keeps the last value",
			events: []models.RawEvent{
				input("#q", "h", "http://x", 1),
				input("#q", "he", "http://x", 2),
				input("#q", "hello", "http://x", 3),
			},
			initialURL: "http://x",
			want: []models.Step{
				models.Type("#q", "hello", "http://x", 3),
			},
		},
		{
			name: "switching fields without a click keeps only the latest field",
			events: []models.RawEvent{
				input("#first", "Ada", "http://x", 1),
				input("#last", "Lovelace", "http://x", 2),
				click("#submit", "http://x", 3),
			},
			initialURL: "http://x",
			want: []models.Step{
				models.Type("#last", "Lovelace", "http://x", 2),
				models.Click("#submit", "http://x", 3),
			},
		},
		{
			name: "malformed and unknown events are skipped",
			events: []models.RawEvent{
				{Kind: models.KindClick, Selector: "", PageURL: "http://y", Timestamp: 1},
				{Kind: "scroll", Selector: "#page", PageURL: "http://y", Timestamp: 2},
				click("#a", "http://x", 3),
			},
			initialURL: "http://x",
			want: []models.Step{
				models.Click("#a", "http://x", 3),
			},
		},
		{
			name: "first event on a different page gets a leading wait",
			events: []models.RawEvent{
				click("#a", "http://other", 1),
			},
			initialURL: "http://x",
			want: []models.Step{
				models.PageWait("http://other", 1),
				models.Click("#a", "http://other", 1),
			},
		},
		{
			name: "navigation resets click deduplication",
			events: []models.RawEvent{
				click("#menu", "http://x", 1),
				click("#menu", "http://y", 2),
			},
			initialURL: "http://x",
			want: []models.Step{
				models.Click("#menu", "http://x", 1),
				models.PageWait("http://y", 2),
				models.Click("#menu", "http://y", 2),
			},
		},
		{
			name: "returning to a page is a new navigation",
			events: []models.RawEvent{
				click("#a", "http://y", 1),
				click("#b", "http://x", 2),
			},
			initialURL: "http://x",
			want: []models.Step{
				models.PageWait("http://y", 1),
				models.Click("#a", "http://y", 1),
				models.PageWait("http://x", 2),
				models.Click("#b", "http://x", 2),
			},
		},
		{
			name: "typing does not break click deduplication",
			events: []models.RawEvent{
				click("#a", "http://x", 1),
				input("#b", "v", "http://x", 2),
				click("#a", "http://x", 3),
			},
			initialURL: "http://x",
			want: []models.Step{
				models.Click("#a", "http://x", 1),
				models.Type("#b", "v", "http://x", 2),
			},
		},
		{
			name: "missing page url stays on the current page",
			events: []models.RawEvent{
				click("#a", "http://y", 1),
				{Kind: models.KindInput, Selector: "#b", Value: "v", Timestamp: 2},
			},
			initialURL: "http://x",
			want: []models.Step{
				models.PageWait("http://y", 1),
				models.Click("#a", "http://y", 1),
				models.Type("#b", "v", "http://y", 2),
			},
		},
		{
			name: "pending type flushes at end of list",
			events: []models.RawEvent{
				click("#a", "http://x", 1),
				input("#b", "tail", "http://x", 2),
			},
			initialURL: "http://x",
			want: []models.Step{
				models.Click("#a", "http://x", 1),
				models.Type("#b", "tail", "http://x", 2),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.events, tt.initialURL)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	events := []models.RawEvent{
		click("#a", "http://x", 1),
		input("#b", "one", "http://x", 2),
		input("#b", "two", "http://x", 3),
		click("#c", "http://y", 4),
		click("#c", "http://y", 5),
	}
	snapshot := append([]models.RawEvent(nil), events...)

	first := Normalize(events, "http://x")
	second := Normalize(events, "http://x")

	assert.Empty(t, cmp.Diff(first, second))
	assert.Equal(t, snapshot, events, "input must not be mutated")
}

func TestNormalizeNoConsecutiveDuplicateClicks(t *testing.T) {
	events := []models.RawEvent{
		click("#a", "http://x", 1),
		click("#a", "http://x", 2),
		input("#f", "v", "http://x", 3),
		click("#a", "http://x", 4),
		click("#b", "http://x", 5),
		click("#b", "http://x", 6),
		click("#a", "http://x", 7),
	}

	steps := Normalize(events, "http://x")

	var last string
	for _, step := range steps {
		switch step.Kind {
		case models.StepPageWait:
			last = ""
		case models.StepClick:
			require.NotEqual(t, last, step.Target, "consecutive click on the same target in %+v", steps)
			last = step.Target
		}
	}
}

func TestNormalizeNavigationBoundary(t *testing.T) {
	events := []models.RawEvent{
		click("#a", "http://x", 1),
		input("#b", "v", "http://x/2", 2),
		click("#c", "http://x/3", 3),
	}

	steps := Normalize(events, "http://x")

	// The type recorded on page 2 is flushed by the navigation to page 3.
	want := []models.Step{
		models.Click("#a", "http://x", 1),
		models.PageWait("http://x/2", 2),
		models.Type("#b", "v", "http://x/2", 2),
		models.PageWait("http://x/3", 3),
		models.Click("#c", "http://x/3", 3),
	}
	if diff := cmp.Diff(want, steps); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}
