package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/regality/formchat/pkg/domain"
)

// Event types written by JSONHandler.
const (
	EventQuestion  = "question"
	EventSubmitted = "submitted"
	EventSystem    = "system"
)

// Event is one line of JSONHandler output.
type Event struct {
	Type     string        `json:"type"`
	Field    string        `json:"field,omitempty"`
	Question string        `json:"question,omitempty"`
	Cursor   int           `json:"cursor,omitempty"`
	Data     domain.Record `json:"data,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
//
// Each input line may be a JSON string ("Ravi"), an object ({"answer":"Ravi"})
// or raw text, which is taken as-is.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Ask(ctx context.Context, res domain.StepResult) error {
	return h.Encoder.Encode(Event{
		Type:     EventQuestion,
		Field:    res.Field,
		Question: res.Prompt,
		Cursor:   res.Cursor,
	})
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = trimNewline(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val, nil
	}

	var obj struct {
		Answer *string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj.Answer != nil {
		return *obj.Answer, nil
	}

	return text, nil
}

func (h *JSONHandler) Finish(ctx context.Context, record domain.Record) error {
	if record == nil {
		record = domain.Record{}
	}
	return h.Encoder.Encode(Event{Type: EventSubmitted, Message: "submitted", Data: record})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: EventSystem, Message: msg})
}
