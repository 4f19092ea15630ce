package proxy

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/gin-gonic/gin"
)

// Router registers its routes on the engine.
type Router interface {
	Load(engine *gin.Engine)
}

type Server struct {
	cfg *config.Config
	srv *http.Server
}

func NewServer(cfg *config.Config, rs ...Router) *Server {
	g := gin.New()
	g.Use(gin.Recovery(), RequestID(), Logger())

	for _, r := range rs {
		r.Load(g)
	}

	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:    cfg.HTTP.Listen,
			Handler: g,
		},
	}
}

// Run blocks until the server stops. A stop caused by Shutdown is not an error.
func (s *Server) Run() error {
	slog.Info("proxy server started", slog.String("listen", s.cfg.HTTP.Listen))

	err := s.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("proxy server failed", slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	if err != nil {
		slog.Error("proxy server shutdown error", slog.String("err", err.Error()))
		return err
	}

	slog.Info("proxy server stopped", slog.String("listen", s.cfg.HTTP.Listen))
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
