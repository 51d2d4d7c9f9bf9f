// Package server exposes generation over a WebSocket session plus the small
// HTTP surface around it.
package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/richinex/slidesmith/generation"
	"github.com/richinex/slidesmith/internal/limiter"
	"github.com/richinex/slidesmith/internal/logger"
)

// Generator produces the event stream for one prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) <-chan generation.Event
}

// Options tunes session behavior. Zero values take defaults.
type Options struct {
	// FrontendURL lists allowed browser origins, comma separated.
	FrontendURL      string
	PingInterval     time.Duration
	PongWait         time.Duration
	WriteWait        time.Duration
	ReadLimit        int64
	AdmissionTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 64 * 1024
	}
	if o.AdmissionTimeout <= 0 {
		o.AdmissionTimeout = 30 * time.Second
	}
	return o
}

// Server owns the router and every live session.
type Server struct {
	generator Generator
	limiter   *limiter.Limiter
	logger    *logger.Logger
	opts      Options
	origins   []string
	upgrader  websocket.Upgrader

	// sessions are bound to ctx so Shutdown can end them. mu orders
	// sessions.Add against the Wait in Shutdown.
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	closing  bool
	sessions sync.WaitGroup
}

// New creates a server. lim may be nil to admit every request immediately.
func New(gen Generator, lim *limiter.Limiter, log *logger.Logger, opts Options) *Server {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		generator: gen,
		limiter:   lim,
		logger:    log,
		opts:      opts.withDefaults(),
		origins:   splitOrigins(opts.FrontendURL),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		},
	}
	return s
}

// Router builds the HTTP handler.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(s.cors())

	r.GET("/", s.root)
	r.GET("/health", s.health)
	r.GET("/ws/generate", s.handleWS)

	return r
}

// Shutdown ends all sessions and waits for them to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "SlideSmith AI Backend is running"})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleWS(c *gin.Context) {
	if !s.track() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is shutting down"})
		return
	}
	defer s.sessions.Done()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	newSession(conn, s).serve(s.ctx)
}

// track registers a session unless Shutdown has begun.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions.Add(1)
	return true
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	origin = strings.TrimSuffix(origin, "/")
	for _, allowed := range s.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func splitOrigins(list string) []string {
	var origins []string
	for _, o := range strings.Split(list, ",") {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
