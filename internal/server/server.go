package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/1F47E/go-bezier-renderer/internal/config"
	"github.com/1F47E/go-bezier-renderer/internal/dims"
	"github.com/1F47E/go-bezier-renderer/internal/logger"
	"github.com/1F47E/go-bezier-renderer/internal/pipeline"
	"github.com/1F47E/go-bezier-renderer/internal/storage"
)

//go:embed web/*
var webFS embed.FS

var log = logger.Scope("server")

// maxUploadSize bounds the multipart form kept in memory; larger files spill
// to disk.
const maxUploadSize = 32 << 20

// Renderer computes the expressions of one frame.
type Renderer interface {
	Frame(idx int) ([]pipeline.Expression, error)
}

type Server struct {
	cfg      config.Config
	store    *storage.Store
	renderer Renderer
	dims     *dims.Tracker
	runID    string
	page     *template.Template
	hub      *hub
}

func New(cfg config.Config, store *storage.Store, renderer Renderer, tracker *dims.Tracker, runID string) (*Server, error) {
	page, err := template.ParseFS(webFS, "web/index.html")
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		store:    store,
		renderer: renderer,
		dims:     tracker,
		runID:    runID,
		page:     page,
	}
	s.hub = newHub(s.hello)
	return s, nil
}

// Handler routes every endpoint behind the CORS and logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleQuery)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /frames", s.handleFrames)
	mux.HandleFunc("GET /calculator", s.handleCalculator)
	mux.HandleFunc("GET /ws", s.hub.handleWS)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metricsHandler())
	return withLogging(withCORS(mux))
}

// Addr is the listen address, host:port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	go s.hub.run(ctx)

	log.Infof("Listening on %s", httpServer.Addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) hello() any {
	w, h := s.dims.Size()
	total, _ := s.store.Count()
	return map[string]any{
		"type":         "config",
		"width":        w,
		"height":       h,
		"total_frames": total,
	}
}
