package models

type EventKind string

const (
	KindClick EventKind = "click"
	KindInput EventKind = "input"
)

// RawEvent is one interaction as the browser extension captured it.
type RawEvent struct {
	Kind      EventKind `json:"kind"`
	Selector  string    `json:"selector"`
	Value     string    `json:"value,omitempty"` // input only
	Text      string    `json:"text,omitempty"`  // visible text of a clicked element, diagnostic
	Timestamp int64     `json:"ts"`              // ms since epoch
	PageURL   string    `json:"url"`
}

type Batch struct {
	Events []RawEvent `json:"events"`
}

type StepKind string

const (
	StepClick    StepKind = "click"
	StepType     StepKind = "type"
	StepPageWait StepKind = "page_wait"
)

// Step is a normalized instruction. Target and Value are empty where the kind
// does not carry them (page_wait has neither, click has no value).
type Step struct {
	Kind      StepKind `json:"action"`
	Target    string   `json:"target,omitempty"`
	Value     string   `json:"value,omitempty"`
	PageURL   string   `json:"page"`
	Timestamp int64    `json:"ts"`
}

func Click(target, pageURL string, ts int64) Step {
	return Step{Kind: StepClick, Target: target, PageURL: pageURL, Timestamp: ts}
}

func Type(target, value, pageURL string, ts int64) Step {
	return Step{Kind: StepType, Target: target, Value: value, PageURL: pageURL, Timestamp: ts}
}

func PageWait(pageURL string, ts int64) Step {
	return Step{Kind: StepPageWait, PageURL: pageURL, Timestamp: ts}
}

// RunMetadata describes a recording run for the report.
type RunMetadata struct {
	StartURL  string `json:"start_url"`
	StartedAt int64  `json:"started_at"` // ms since epoch
	EndedAt   int64  `json:"ended_at"`
}

// Session is the capture layer's recording state. Events are kept in capture order.
type Session struct {
	ID        string     `json:"id"`
	StartURL  string     `json:"start_url"`
	Recording bool       `json:"recording"`
	StartedAt int64      `json:"started_at"`
	EndedAt   *int64     `json:"ended_at"` // nullable while recording
	Events    []RawEvent `json:"events,omitempty"`
}

// Metadata derives report metadata from the session. A session still recording
// reports now as its end.
func (s Session) Metadata(now int64) RunMetadata {
	meta := RunMetadata{StartURL: s.StartURL, StartedAt: s.StartedAt, EndedAt: now}
	if s.EndedAt != nil {
		meta.EndedAt = *s.EndedAt
	}
	if len(s.Events) > 0 && s.Events[0].Timestamp > 0 {
		meta.StartedAt = s.Events[0].Timestamp
	}
	return meta
}
