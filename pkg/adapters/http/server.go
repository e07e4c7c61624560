package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/regality/formchat/internal/logging"
	"github.com/regality/formchat/pkg/auth"
	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/forms"
	"github.com/regality/formchat/pkg/ports"
)

// SessionHeader carries the correlation id of a chat session in both directions.
const SessionHeader = "X-Session-ID"

// UserSessionPrefix keys the sessions of bearer-verified users, so anonymous
// header ids can never name them.
const UserSessionPrefix = "user:"

// Sessions is the part of session.Manager the chat routes need.
type Sessions interface {
	Step(ctx context.Context, sessionID string, answer *string) (domain.StepResult, error)
	Current(ctx context.Context, sessionID string) (domain.FieldDefinition, int, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// Accounts registers users and issues tokens. auth.Service implements it.
type Accounts interface {
	Signup(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
}

// Server exposes the dialogue as one request per turn.
type Server struct {
	Sessions Sessions
	Accounts Accounts
	Verifier ports.IdentityVerifier
	// RequireAuth makes the chat routes demand a bearer token; the verified
	// identity becomes the session id.
	RequireAuth bool
	Forms       *forms.Registry
	Metrics     http.Handler
	CORSOrigin  string
	Logger      *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithAccounts mounts the signup and login routes.
func WithAccounts(a Accounts) Option {
	return func(s *Server) { s.Accounts = a }
}

// WithVerifier makes chat routes resolve the session from a bearer token.
// When required is true, requests without a valid token are rejected.
func WithVerifier(v ports.IdentityVerifier, required bool) Option {
	return func(s *Server) {
		s.Verifier = v
		s.RequireAuth = required
	}
}

// WithForms mounts the form discovery routes.
func WithForms(r *forms.Registry) Option {
	return func(s *Server) { s.Forms = r }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.Metrics = h }
}

// WithCORSOrigin sets the allowed origin. Defaults to "*".
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.CORSOrigin = origin }
}

// WithLogger configures the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// NewHandler creates the HTTP handler for the chat service.
func NewHandler(sessions Sessions, opts ...Option) http.Handler {
	s := &Server{
		Sessions:   sessions,
		CORSOrigin: "*",
		Logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(enableCORS(s.CORSOrigin))

	r.Get("/health", s.GetHealth)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	if s.Accounts != nil {
		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/signup", s.Signup)
			r.Post("/login", s.Login)
		})
	}

	if s.Forms != nil {
		r.Route("/api/forms", func(r chi.Router) {
			r.Get("/", s.ListForms)
			r.Get("/{formName}", s.GetForm)
		})
	}

	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/next", s.Next)
		r.Get("/state", s.State)
		r.Delete("/", s.Reset)
	})

	return r
}

func enableCORS(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+SessionHeader)
			w.Header().Set("Access-Control-Expose-Headers", SessionHeader)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// -- Chat --

// NextRequest is the body of POST /api/chat/next. Answer is absent on the first call.
type NextRequest struct {
	Answer *string `json:"answer"`
}

// QuestionResponse carries the next question. Question is always present,
// even when the catalog gives the field a blank prompt.
type QuestionResponse struct {
	Question string `json:"question"`
}

// SubmittedResponse carries the record of a completed form.
type SubmittedResponse struct {
	Message string        `json:"message"`
	Data    domain.Record `json:"data"`
}

// StateResponse describes the outstanding question without consuming a turn.
type StateResponse struct {
	Field    string `json:"field,omitempty"`
	Question string `json:"question,omitempty"`
	Cursor   int    `json:"cursor"`
}

// Next handles the POST /api/chat/next request: one dialogue turn.
func (s *Server) Next(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveSession(w, r, true)
	if !ok {
		return
	}

	var body NextRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Next: Invalid request body", "err", err)
		return
	}

	res, err := s.Sessions.Step(r.Context(), id, body.Answer)
	if err != nil {
		s.writeError(w, r, "Step", err)
		return
	}

	if res.IsDone() {
		s.Logger.Info("Form submitted", "session_id", id, "fields", res.Record.Len())
		writeJSON(w, http.StatusOK, SubmittedResponse{Message: "submitted", Data: res.Record})
		return
	}

	writeJSON(w, http.StatusOK, QuestionResponse{Question: res.Prompt})
}

// State handles the GET /api/chat/state request.
func (s *Server) State(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveSession(w, r, false)
	if !ok {
		return
	}

	field, cursor, asked, err := s.Sessions.Current(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "State", err)
		return
	}

	resp := StateResponse{Cursor: cursor}
	if asked {
		resp.Field = field.Name
		resp.Question = field.Prompt
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reset handles the DELETE /api/chat request: the session is discarded.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveSession(w, r, false)
	if !ok {
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, "Reset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveSession picks the correlation id of the request. A verified bearer
// identity wins over the header and is keyed under UserSessionPrefix; header
// ids may not use that prefix. When allocate is set and neither is present,
// a new id is generated; it is always echoed in SessionHeader.
func (s *Server) resolveSession(w http.ResponseWriter, r *http.Request, allocate bool) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	verified := false

	if s.Verifier != nil {
		token, hasToken := bearerToken(r)
		switch {
		case hasToken:
			identity, err := s.Verifier.Verify(r.Context(), token)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				s.Logger.Warn("Rejected bearer token", "err", err)
				return "", false
			}
			id = UserSessionPrefix + identity
			verified = true
		case s.RequireAuth:
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return "", false
		}
	}

	if !verified && strings.HasPrefix(id, UserSessionPrefix) {
		http.Error(w, "Session id prefix "+UserSessionPrefix+" is reserved for signed-in users", http.StatusBadRequest)
		s.Logger.Warn("Rejected reserved session id", "session_id", id)
		return "", false
	}

	if id == "" {
		if !allocate {
			http.Error(w, "Missing "+SessionHeader+" header", http.StatusBadRequest)
			return "", false
		}
		id = uuid.NewString()
	}
	w.Header().Set(SessionHeader, id)
	return id, true
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(h, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// -- Auth --

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles the POST /api/auth/signup request.
func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := s.Accounts.Signup(r.Context(), body.Email, body.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		http.Error(w, "Email and password are required", http.StatusBadRequest)
	case errors.Is(err, auth.ErrPasswordTooLong):
		http.Error(w, "Password must be at most 72 bytes", http.StatusBadRequest)
	case errors.Is(err, auth.ErrUserExists):
		http.Error(w, "User already exists", http.StatusConflict)
	case err != nil:
		s.writeError(w, r, "Signup", err)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "User registered!")
	}
}

// Login handles the POST /api/auth/login request.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := s.Accounts.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrMissingCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		s.writeError(w, r, "Login", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// -- Forms --

// GetForm handles the GET /api/forms/{formName} request.
func (s *Server) GetForm(w http.ResponseWriter, r *http.Request) {
	meta, err := s.Forms.Lookup(chi.URLParam(r, "formName"))
	if err != nil {
		s.writeError(w, r, "GetForm", err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// ListForms handles the GET /api/forms request. With ?detect=<text> it
// reports the form type mentioned in the text instead.
func (s *Server) ListForms(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("detect") {
		writeJSON(w, http.StatusOK, map[string]string{
			"form": forms.DetectFormType(r.URL.Query().Get("detect")),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"forms": s.Forms.Codes()})
}

// -- Helpers --

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := s.Logger.With("op", op, "request_id", chiMiddleware.GetReqID(r.Context()))

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrFormNotFound):
		http.Error(w, "Form not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrSubmissionFailed):
		logger.Error("Submission failed", "err", err)
		http.Error(w, "Submission failed, resend the last answer", http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn("Request aborted", "err", err)
		http.Error(w, "Request aborted", http.StatusServiceUnavailable)
	default:
		logger.Error("Request failed", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
