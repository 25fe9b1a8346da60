// Package server is the HTTP surface: the rendered duty board page and the
// JSON API the frontend polls. Handlers only read the served snapshot; all
// data work happens in the roster service.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dutyboard/internal/schedule"
	"dutyboard/internal/services/roster"
)

//go:embed templates/*.html
var templateFS embed.FS

// Config controls the HTTP listener.
type Config struct {
	Addr    string
	DevMode bool
}

// Roster is the read-only slice of the roster service the handlers use.
type Roster interface {
	Today() (schedule.DutyRecord, bool)
	TwoWorkWeeks() [][]schedule.DutyRecord
	Health() roster.Health
	Now() time.Time
}

// Clock reports NTP sync state for the health endpoint.
type Clock interface {
	Synced() bool
	LastSync() time.Time
}

type Server struct {
	cfg    Config
	log    *slog.Logger
	roster Roster
	clock  Clock

	router *gin.Engine
	srv    *http.Server
}

func New(cfg Config, r Roster, c Clock, log *slog.Logger) *Server {
	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{cfg: cfg, log: log, roster: r, clock: c, router: router}

	tpl := template.Must(template.ParseFS(templateFS, "templates/*.html"))
	router.SetHTMLTemplate(tpl)

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.router.GET("/", s.handleIndex)

	api := s.router.Group("/api")
	{
		api.GET("/data", s.handleData)
		api.GET("/health", s.handleHealth)
		api.GET("/version", s.handleVersion)
	}
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start binds the listener and serves in the background. A bind failure is
// returned synchronously so startup can abort with a clear error.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server stopped", slog.Any("err", err))
		}
	}()
	s.log.Info("http server listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Stop drains in-flight requests bounded by ctx.
func (s *Server) Stop(ctx context.Context) {
	if s.srv == nil {
		return
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Warn("http shutdown incomplete", slog.Any("err", err))
	}
}
