package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/regality/formchat"
	"github.com/regality/formchat/internal/logging"
	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/forms"
)

// Sessions is the part of session.Manager the tools need.
type Sessions interface {
	Step(ctx context.Context, sessionID string, answer *string) (domain.StepResult, error)
	Current(ctx context.Context, sessionID string) (domain.FieldDefinition, int, bool, error)
}

// TurnResponse is the structured result of a chat tool.
type TurnResponse struct {
	SessionID string        `json:"session_id" jsonschema_description:"The session the turn was applied to"`
	Field     string        `json:"field,omitempty" jsonschema_description:"Name of the field being asked"`
	Question  string        `json:"question,omitempty" jsonschema_description:"The question to present to the user"`
	Cursor    int           `json:"cursor" jsonschema_description:"Number of questions asked so far"`
	Done      bool          `json:"done" jsonschema_description:"True when the form was submitted"`
	Message   string        `json:"message,omitempty" jsonschema_description:"Set to 'submitted' on completion"`
	Data      domain.Record `json:"data,omitempty" jsonschema_description:"The submitted answers, in question order"`
}

// Server exposes the form dialogue as MCP tools.
type Server struct {
	sessions  Sessions
	forms     *forms.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithForms registers the form discovery tools.
func WithForms(r *forms.Registry) Option {
	return func(s *Server) { s.forms = r }
}

// WithLogger configures the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions Sessions, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("formchat-mcp", strings.TrimSpace(formchat.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server, e.g. to mount it on another transport.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// TOOL: submit_answer
	submitTool := mcp.NewTool("submit_answer",
		mcp.WithDescription("Advance the form dialogue by one turn. Omit answer on the first call of a session to get the first question."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Correlation id of the dialogue")),
		mcp.WithString("answer", mcp.Description("Answer to the question last returned for this session")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(submitTool, mcp.NewStructuredToolHandler(s.handleSubmitAnswer))

	// TOOL: current_question
	currentTool := mcp.NewTool("current_question",
		mcp.WithDescription("Return the outstanding question of a session without consuming a turn."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Correlation id of the dialogue")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(currentTool, mcp.NewStructuredToolHandler(s.handleCurrentQuestion))

	if s.forms == nil {
		return
	}

	// TOOL: get_form
	s.mcpServer.AddTool(mcp.NewTool("get_form",
		mcp.WithDescription("Get the title, document checklist and sample link of a form."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Form code, e.g. FC")),
	), s.handleGetForm)

	// TOOL: detect_form
	s.mcpServer.AddTool(mcp.NewTool("detect_form",
		mcp.WithDescription("Guess the form type mentioned in a piece of text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Free text, such as an uploaded document")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, _ := request.GetArguments()["text"].(string)
		formType := forms.DetectFormType(text)
		if formType == "" {
			return mcp.NewToolResultText("no form type detected"), nil
		}
		return mcp.NewToolResultText(formType), nil
	})
}

func (s *Server) handleSubmitAnswer(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResponse, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return TurnResponse{}, errors.New("session_id is required")
	}

	var answer *string
	if a, ok := args["answer"].(string); ok {
		answer = &a
	}

	res, err := s.sessions.Step(ctx, sessionID, answer)
	if err != nil {
		s.logger.Error("MCP submit_answer failed", "session_id", sessionID, "err", err)
		return TurnResponse{}, fmt.Errorf("step failed: %w", err)
	}

	if res.IsDone() {
		return TurnResponse{SessionID: sessionID, Done: true, Message: "submitted", Data: res.Record}, nil
	}
	return TurnResponse{
		SessionID: sessionID,
		Field:     res.Field,
		Question:  res.Prompt,
		Cursor:    res.Cursor,
	}, nil
}

func (s *Server) handleCurrentQuestion(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResponse, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return TurnResponse{}, errors.New("session_id is required")
	}

	field, cursor, asked, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("lookup failed: %w", err)
	}

	resp := TurnResponse{SessionID: sessionID, Cursor: cursor}
	if asked {
		resp.Field = field.Name
		resp.Question = field.Prompt
	}
	return resp, nil
}

func (s *Server) handleGetForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := request.GetArguments()["name"].(string)
	meta, err := s.forms.Lookup(name)
	if err != nil {
		if errors.Is(err, domain.ErrFormNotFound) {
			return mcp.NewToolResultError("Form not found"), nil
		}
		return nil, err
	}
	jsonBytes, _ := json.Marshal(meta)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
