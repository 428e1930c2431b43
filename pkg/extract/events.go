package extract

import "context"

// Event types of the progress protocol. Events are written to the caller as
// line-delimited records; "done" is always the last event of a successful or
// gracefully ended run.
const (
	EventStep        = "step"
	EventSuggestions = "suggestions"
	EventToolResult  = "tool_result"
	EventDelta       = "delta"
	EventError       = "error"
	EventDone        = "done"
)

// Pipeline stage names carried by step events.
const (
	StepCollect = "collect"
	StepParse   = "parse"
	StepAnalyze = "analyze"
	StepCreate  = "create"
)

// SuggestionSummary is the review-level view of one suggestion: what it is,
// not yet what it contains.
type SuggestionSummary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	// SourceHeading names the section of the input the suggestion came from,
	// when the model attributed one.
	SourceHeading string `json:"sourceHeading,omitempty"`
}

// Event is one record of the progress protocol.
type Event struct {
	Type string `json:"type"`

	Step    string `json:"step,omitempty"`
	Message string `json:"message,omitempty"`

	Suggestions []SuggestionSummary `json:"suggestions,omitempty"`

	ToolName   string `json:"toolName,omitempty"`
	ToolOutput string `json:"toolOutput,omitempty"`
	Group      string `json:"group,omitempty"`
	GroupIcon  string `json:"groupIcon,omitempty"`

	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// emitter delivers events to the run's channel. Every send races the
// context: once the caller is gone, send reports false and the pipeline must
// stop without issuing further writes.
type emitter struct {
	ctx context.Context
	ch  chan Event
}

func newEmitter(ctx context.Context) *emitter {
	return &emitter{ctx: ctx, ch: make(chan Event, 16)}
}

func (e *emitter) send(ev Event) bool {
	if e.ctx.Err() != nil {
		return false
	}
	select {
	case e.ch <- ev:
		return true
	case <-e.ctx.Done():
		return false
	}
}

func (e *emitter) step(step, message string) bool {
	return e.send(Event{Type: EventStep, Step: step, Message: message})
}

func (e *emitter) suggestions(summaries []SuggestionSummary) bool {
	return e.send(Event{Type: EventSuggestions, Suggestions: summaries})
}

func (e *emitter) toolResult(toolName, toolOutput, group, groupIcon string) bool {
	return e.send(Event{
		Type:       EventToolResult,
		ToolName:   toolName,
		ToolOutput: toolOutput,
		Group:      group,
		GroupIcon:  groupIcon,
	})
}

func (e *emitter) delta(content string) bool {
	return e.send(Event{Type: EventDelta, Content: content})
}

func (e *emitter) error(err error) bool {
	return e.send(Event{Type: EventError, Error: err.Error()})
}

func (e *emitter) done() bool {
	return e.send(Event{Type: EventDone})
}
