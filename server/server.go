// Package server exposes an editing session over HTTP and pushes state and
// playhead changes to websocket clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/user/reelcut/editor"
	"github.com/user/reelcut/logging"
	"github.com/user/reelcut/playback"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:7420"

var upgrader = websocket.Upgrader{
	// the API only listens on loopback
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the envelope of every websocket frame.
type Message struct {
	Type     string           `json:"type"`
	State    *editor.Snapshot `json:"state,omitempty"`
	Playhead *float64         `json:"playhead,omitempty"`
	Playing  *bool            `json:"playing,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Websocket message types.
const (
	MessageState    = "state"
	MessagePlayhead = "playhead"
	MessageError    = "error"
)

// Config wires a Server.
type Config struct {
	Addr    string
	Session *editor.Session
	// Logger defaults to the server component logger.
	Logger *zerolog.Logger
}

// Server is the HTTP API for one session.
type Server struct {
	httpServer *http.Server
	session    *editor.Session
	hub        *Hub
	log        zerolog.Logger
}

// New creates a Server and subscribes it to session changes.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	log := logging.WithComponent("server")
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	s := &Server{
		session: cfg.Session,
		hub:     NewHub(log),
		log:     log,
	}
	s.httpServer = &http.Server{
		Addr:        cfg.Addr,
		Handler:     s.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	cfg.Session.Subscribe(s.publishState)
	return s
}

// Router builds the chi routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/edits/{op}", s.handleEdit)
		r.Post("/playback/{action}", s.handlePlayback)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run starts the websocket hub and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// StartHub runs the websocket hub without the HTTP listener, for callers that
// mount Handler themselves.
func (s *Server) StartHub(ctx context.Context) {
	go s.hub.Run(ctx)
}

// PlaybackUpdate forwards synchronizer updates to websocket clients. Pass it
// to playback.Synchronizer.Subscribe.
func (s *Server) PlaybackUpdate(u playback.Update) {
	switch u.Kind {
	case playback.UpdatePlayhead, playback.UpdateState, playback.UpdateEnded:
		playhead, playing := u.Playhead, u.Playing
		s.send(Message{Type: MessagePlayhead, Playhead: &playhead, Playing: &playing})
	case playback.UpdateClip:
		snap := s.session.Snapshot()
		s.send(Message{Type: MessageState, State: &snap})
	case playback.UpdateError:
		if u.Err != nil {
			s.send(Message{Type: MessageError, Error: u.Err.Error()})
		}
	}
}

func (s *Server) publishState(snap editor.Snapshot) {
	s.send(Message{Type: MessageState, State: &snap})
}

func (s *Server) send(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		s.log.Error().Err(err).Str("type", m.Type).Msg("encode websocket message")
		return
	}
	s.hub.Broadcast(data)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	client := &Client{hub: s.hub, conn: conn, send: make(chan []byte, sendBuffer)}
	snap := s.session.Snapshot()
	if data, err := json.Marshal(Message{Type: MessageState, State: &snap}); err == nil {
		client.send <- data
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
