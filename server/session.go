package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/richinex/slidesmith/generation"
	"github.com/richinex/slidesmith/internal/logger"
)

// Client-facing session errors.
const (
	MsgNoPrompt       = "No prompt provided"
	MsgInvalidPayload = "Invalid request payload"
	MsgBusy           = "Server is busy, please try again"
)

// inboxSize bounds requests queued behind a running generation.
const inboxSize = 8

// Conn is the part of *websocket.Conn a session uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Request is one inbound client message.
type Request struct {
	Prompt string `json:"prompt"`
}

// session serves one connection. Requests are handled strictly one after
// another; only the serve goroutine writes data frames.
type session struct {
	id     string
	conn   Conn
	server *Server
	log    *logger.Logger
}

func newSession(conn Conn, s *Server) *session {
	id := uuid.NewString()
	return &session{
		id:     id,
		conn:   conn,
		server: s,
		log:    s.logger.With("session_id", id),
	}
}

func (s *session) serve(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s.log.Info("session opened")
	start := time.Now()

	var wg sync.WaitGroup
	inbox := make(chan []byte, inboxSize)

	wg.Add(2)
	go func() {
		defer wg.Done()
		s.readLoop(ctx, cancel, inbox)
	}()
	go func() {
		defer wg.Done()
		s.pingLoop(ctx)
	}()

	s.requestLoop(ctx, inbox)

	cancel()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(s.server.opts.WriteWait))
	_ = s.conn.Close()
	wg.Wait()

	s.log.Info("session closed", "duration_ms", time.Since(start).Milliseconds())
}

// readLoop feeds inbound frames to inbox until the connection fails or ctx
// ends. A read failure cancels the session.
func (s *session) readLoop(ctx context.Context, cancel context.CancelFunc, inbox chan<- []byte) {
	defer close(inbox)
	defer cancel()

	opts := s.server.opts
	s.conn.SetReadLimit(opts.ReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) &&
				ctx.Err() == nil {
				s.log.Warn("websocket read error", "error", err)
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(opts.PongWait))

		select {
		case inbox <- data:
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.server.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.server.opts.WriteWait)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.log.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

func (s *session) requestLoop(ctx context.Context, inbox <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-inbox:
			if !ok {
				return
			}
			if err := s.handle(ctx, data); err != nil {
				s.log.Error("relay failed", "error", err)
				// Best effort; the connection is being torn down anyway.
				_ = s.send(generation.Failure(err.Error()))
				return
			}
		}
	}
}

// handle serves one request. A returned error ends the session.
func (s *session) handle(ctx context.Context, data []byte) error {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.log.Debug("invalid request payload", "error", err)
		return s.send(generation.Failure(MsgInvalidPayload))
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return s.send(generation.Failure(MsgNoPrompt))
	}

	return s.relay(ctx, prompt)
}

// relay runs one generation and forwards its events in order.
func (s *session) relay(ctx context.Context, prompt string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	release, err := s.admit(ctx)
	if err != nil {
		s.log.Warn("generation not admitted", "error", err)
		return s.send(generation.Failure(MsgBusy))
	}
	defer release()

	var relayErr error
	for ev := range s.server.generator.Generate(ctx, prompt) {
		if relayErr != nil {
			continue
		}
		if err := s.send(ev); err != nil {
			relayErr = err
			cancel()
		}
	}
	return relayErr
}

func (s *session) admit(ctx context.Context) (func(), error) {
	if s.server.limiter == nil {
		return func() {}, nil
	}
	if release, ok := s.server.limiter.TryAcquire(); ok {
		return release, nil
	}
	s.log.Debug("waiting for a generation slot", "in_flight", s.server.limiter.InFlight())

	ctx, cancel := context.WithTimeout(ctx, s.server.opts.AdmissionTimeout)
	defer cancel()
	return s.server.limiter.Acquire(ctx)
}

func (s *session) send(ev generation.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Type, err)
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.server.opts.WriteWait)); err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s event: %w", ev.Type, err)
	}
	return nil
}
