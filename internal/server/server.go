// Package server exposes a Manager over a JSON HTTP API.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baiirun/tracker/internal/manager"
	"github.com/baiirun/tracker/internal/model"
)

// Server is the tracker HTTP server
type Server struct {
	mgr        *manager.Manager
	router     *gin.Engine
	logger     *slog.Logger
	afterWrite func() error
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithAfterWrite registers fn to run after every successful write. A
// failing hook turns the response into a 500.
func WithAfterWrite(fn func() error) Option {
	return func(s *Server) {
		s.afterWrite = fn
	}
}

// NewServer creates a new server for mgr
func NewServer(mgr *manager.Manager, opts ...Option) *Server {
	s := &Server{
		mgr:    mgr,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(s.logger))
	s.router = router

	for _, r := range []struct {
		path string
		kind model.Kind
	}{
		{"/tasks", model.KindTask},
		{"/epics", model.KindEpic},
		{"/subtasks", model.KindSubtask},
	} {
		g := router.Group(r.path)
		g.GET("", s.handleList(r.kind))
		g.POST("", s.handleSave(r.kind))
		g.DELETE("", s.handleClear(r.kind))
		g.GET("/:id", s.handleGet(r.kind))
		g.DELETE("/:id", s.handleDelete(r.kind))
	}
	router.GET("/epics/:id/subtasks", s.handleEpicSubtasks)
	router.GET("/history", s.handleHistory)
	router.GET("/prioritized", s.handlePrioritized)

	return s
}

// Handler returns the server's routes as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server
func (s *Server) Run(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.router.Run(addr)
}
