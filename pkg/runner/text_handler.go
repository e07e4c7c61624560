package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/regality/formchat/pkg/domain"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	// Summary formats the finished record. Defaults to one "field: value" line per answer.
	Summary func(domain.Record) string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerSummary configures how the finished record is shown.
func WithTextHandlerSummary(summary func(domain.Record) string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Summary = summary
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Summary: PlainSummary,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// PlainSummary formats a record as "field: value" lines in order.
func PlainSummary(record domain.Record) string {
	var b strings.Builder
	for _, a := range record {
		fmt.Fprintf(&b, "%s: %s\n", a.Field, a.Value)
	}
	return b.String()
}

// The pump reads lines in the background so Input can honor ctx while a read is blocked.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')

		// A final line without a newline is still an answer.
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}

		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

func (h *TextHandler) Ask(ctx context.Context, res domain.StepResult) error {
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(h.render(res.Prompt)))
	return err
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		fmt.Fprint(h.Writer, "> ")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return trimNewline(res.text), nil
	}
}

func (h *TextHandler) Finish(ctx context.Context, record domain.Record) error {
	if _, err := fmt.Fprintln(h.Writer, "\nForm filled successfully! Collected data:"); err != nil {
		return err
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimRight(h.render(h.Summary(record)), "\n"))
	return err
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "\n[System] %s\n", msg)
	return err
}

func (h *TextHandler) render(s string) string {
	if h.Renderer == nil {
		return s
	}
	rendered, err := h.Renderer(s)
	if err != nil {
		return s
	}
	return rendered
}

// trimNewline removes only the line terminator; the answer is otherwise kept verbatim.
func trimNewline(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
