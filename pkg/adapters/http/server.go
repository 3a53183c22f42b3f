package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/invoke"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = session.ErrNotFound

type liveSession struct {
	id     string
	bridge *invoke.Bridge
	slots  *invoke.Slots
}

// Server hosts sessions of one workflow definition.
type Server struct {
	def     *domain.Definition
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	metrics http.Handler
	streams *StreamManager

	sessions *session.Manager[*liveSession]
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks observes every session's bridge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) ServerOption {
	return func(s *Server) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a server for def.
func NewServer(def *domain.Definition, opts ...ServerOption) *Server {
	s := &Server{
		def:    def,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)
	s.sessions = session.NewManager[*liveSession](session.WithLogger(s.logger))
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.getHealth)
	r.Get("/definition", s.getDefinition)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/events", s.sendEvent)
			r.Post("/invocations/{src}/resolve", s.resolve)
			r.Post("/invocations/{src}/reject", s.reject)
			r.Get("/stream", s.stream)
		})
	})
	return r
}

// Close stops every session.
func (s *Server) Close() {
	for id, sess := range s.sessions.Drain() {
		sess.bridge.Stop()
		s.streams.Close(id)
	}
}

func (s *Server) newSession(ctx context.Context) (*liveSession, error) {
	id := uuid.NewString()
	slots := invoke.NewSlots()
	hooks := domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			diff := domain.Diff(e.From, e.To)
			if diff == nil {
				return
			}
			if b, err := json.Marshal(diff); err == nil {
				s.streams.Broadcast(id, string(b))
			}
		},
	}
	bridge := invoke.New(s.def, slots.Services(s.def.Invocations()...),
		invoke.WithLogger(s.logger.With("session", id)),
		invoke.WithLifecycleHooks(slots.Hooks()),
		invoke.WithLifecycleHooks(s.hooks),
		invoke.WithLifecycleHooks(hooks),
	)
	if _, err := bridge.Start(ctx); err != nil {
		return nil, err
	}
	return &liveSession{id: id, bridge: bridge, slots: slots}, nil
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getDefinition(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, DefinitionResponse{
		ID:          s.def.ID(),
		Initial:     s.def.Initial(),
		States:      s.def.StateIDs(),
		Events:      s.def.Events(),
		Invocations: s.def.Invocations(),
		Transitions: s.def.TransitionKeys(),
	})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.newSession(context.WithoutCancel(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.sessions.Add(sess.id, sess)

	s.logger.Debug("session created", "session", sess.id)
	s.writeJSON(w, http.StatusCreated, s.response(sess))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.response(sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.sessions.WithLock(r.Context(), id, func(context.Context, *liveSession) error {
		sess, err := s.sessions.Remove(id)
		if err != nil {
			return err
		}
		sess.bridge.Stop()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.streams.Close(id)
	s.logger.Debug("session deleted", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendEvent(w http.ResponseWriter, r *http.Request) {
	var body EventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}
	if body.Name == "" {
		s.badRequest(w, "event name is required", nil)
		return
	}
	if domain.KindOf(body.Name) != domain.EventExternal {
		s.badRequest(w, "invocation outcomes are settled through /invocations", nil)
		return
	}
	var resp SessionResponse
	err := s.sessions.WithLock(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, sess *liveSession) error {
		if _, err := sess.bridge.Send(ctx, domain.NewEvent(body.Name, body.Payload)); err != nil {
			return err
		}
		resp = s.response(sess)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	var body ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}
	s.settle(w, r, func(sess *liveSession, src string) error {
		return sess.slots.Resolve(src, body.Data)
	})
}

func (s *Server) reject(w http.ResponseWriter, r *http.Request) {
	var body RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}
	cause := domain.ErrInvocationFailed
	if body.Error != "" {
		cause = errors.New(body.Error)
	}
	s.settle(w, r, func(sess *liveSession, src string) error {
		return sess.slots.Reject(src, cause)
	})
}

// settle completes the pending invocation src and responds once the bridge
// has routed the outcome.
func (s *Server) settle(w http.ResponseWriter, r *http.Request, complete func(*liveSession, string) error) {
	src := chi.URLParam(r, "src")
	var resp SessionResponse
	err := s.sessions.WithLock(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, sess *liveSession) error {
		if pending, ok := sess.bridge.Pending(); !ok || pending != src {
			return fmt.Errorf("%w: %q", invoke.ErrNoPendingSlot, src)
		}
		if err := complete(sess, src); err != nil {
			return err
		}
		if _, err := sess.bridge.AwaitSettled(ctx); err != nil {
			return err
		}
		resp = s.response(sess)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	ch, cancel := s.streams.Subscribe(sess.id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) response(sess *liveSession) SessionResponse {
	resp := SessionResponse{ID: sess.id, Snapshot: sess.bridge.Snapshot()}
	if src, ok := sess.bridge.Pending(); ok {
		resp.Pending = src
	}
	return resp
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string, err error) {
	s.logger.Warn("bad request", "reason", msg, "error", err)
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, invoke.ErrNoPendingSlot), errors.Is(err, invoke.ErrAlreadySettled):
		status = http.StatusConflict
	case errors.Is(err, invoke.ErrStopped):
		status = http.StatusGone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Warn("request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
