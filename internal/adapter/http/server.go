package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/adapter/http/middleware"
)

type Server struct {
	mux      *http.ServeMux
	handlers *Handlers
}

func NewServer(handlers *Handlers) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		handlers: handlers,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handlers.Home())
	s.mux.HandleFunc("GET /health", s.handlers.Health())
	s.mux.HandleFunc("GET /variants", s.handlers.Variants())
	s.mux.HandleFunc("POST /merge", s.handlers.Merge())
	s.mux.HandleFunc("GET /download/{filename}", s.handlers.Download())
	s.mux.HandleFunc("GET /jobs", s.handlers.Jobs())
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	middleware.SecurityHeaders(s.mux).ServeHTTP(w, r)
}
