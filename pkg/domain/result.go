package domain

// StepKind tells which branch a turn took.
type StepKind string

const (
	// StepAsk means there is a next question; the caller must present Prompt.
	StepAsk StepKind = "ask"
	// StepDone means the form is complete; Record holds the answers.
	StepDone StepKind = "done"
)

// StepResult is the outcome of one turn.
type StepResult struct {
	Kind StepKind `json:"kind"`

	// Field and Prompt are set for StepAsk.
	Field  string `json:"field,omitempty"`
	Prompt string `json:"prompt,omitempty"`

	// Cursor is the session cursor after the turn.
	Cursor int `json:"cursor"`

	// Record is set for StepDone.
	Record Record `json:"record,omitempty"`
}

// AskNext builds the result that presents f.
func AskNext(f FieldDefinition, cursor int) StepResult {
	return StepResult{Kind: StepAsk, Field: f.Name, Prompt: f.Prompt, Cursor: cursor}
}

// Finished builds the completion result.
func Finished(r Record) StepResult {
	return StepResult{Kind: StepDone, Record: r}
}

// IsDone reports whether the turn completed the form.
func (r StepResult) IsDone() bool {
	return r.Kind == StepDone
}
