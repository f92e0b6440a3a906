// Package api is the web surface: SSE streams, load endpoints, and the
// participant/facilitator pages. It holds no scheduling logic of its own.
package api

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crisisdrill/internal/config"
	"crisisdrill/internal/ingest"
	"crisisdrill/internal/scenario"
	"crisisdrill/internal/seed"
	"crisisdrill/internal/stream"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	echo       *echo.Echo
	cfg        *config.Config
	loc        *time.Location
	store      *scenario.Store
	parser     *ingest.Parser
	dispatcher *stream.Dispatcher
	feed       *seed.Feed
	log        *slog.Logger
	templates  *template.Template
}

func NewServer(cfg *config.Config, loc *time.Location, store *scenario.Store, parser *ingest.Parser, dispatcher *stream.Dispatcher, feed *seed.Feed, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:       e,
		cfg:        cfg,
		loc:        loc,
		store:      store,
		parser:     parser,
		dispatcher: dispatcher,
		feed:       feed,
		log:        log,
		templates:  template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.echo.GET("/", s.index)
	s.echo.GET("/socialmedia", s.socialmedia)
	s.echo.GET("/inbox", s.inbox)
	s.echo.POST("/inbox", s.inbox)
	s.echo.GET("/inbox/change", s.inboxChange)
	s.echo.POST("/inbox/change", s.inboxChange)
	s.echo.GET("/facilitator", s.facilitator)
	s.echo.POST("/facilitator", s.facilitator)
	s.echo.GET("/observer", s.observer)
	s.echo.POST("/observer", s.observer)
	s.echo.GET("/admin", s.admin)
	s.echo.POST("/admin", s.admin)
	s.echo.GET("/reset", s.resetConfirm)
	s.echo.POST("/reset", s.reset)

	s.echo.POST("/admin/scenario", s.loadScenario)
	s.echo.POST("/admin/tweets", s.loadTweets)
	s.echo.POST("/admin/feed", s.loadFeed)
	s.echo.POST("/admin/image", s.uploadImage)

	s.echo.GET("/stream/tweets", s.streamTweets)
	s.echo.GET("/stream/messages", s.streamMessages)
	s.echo.GET("/stream/timeline", s.streamTimeline)

	s.echo.GET("/api/upcoming", s.upcoming)
	s.echo.GET("/api/roles", s.roles)

	s.echo.GET("/healthz", s.health)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.Static("/images", s.cfg.Upload.ImageDir)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) now() time.Time {
	return time.Now().In(s.loc)
}

func (s *Server) render(c echo.Context, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	data["AppID"] = s.cfg.App.ID
	data["Tracking"] = s.cfg.App.Tracking
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	err := s.templates.ExecuteTemplate(c.Response(), name, data)
	if err != nil {
		s.log.Error("render failed", "template", name, "err", err)
	}
	return err
}
