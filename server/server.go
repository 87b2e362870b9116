// Package server wires the gin router: tool tabs and submissions, the login
// flow, and the JSON API.
package server

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smallhorseman/SEM37/logging"
	"github.com/smallhorseman/SEM37/middleware"
	"github.com/smallhorseman/SEM37/shell"
	"github.com/smallhorseman/SEM37/tool"
	"github.com/smallhorseman/SEM37/view"
)

// Statistics is what the statistics endpoint reports from.
type Statistics interface {
	middleware.VisitorTracker
	Statistics(devMode bool) map[string]any
}

// Options are the collaborators of a Server.
type Options struct {
	Workspaces    middleware.Workspaces
	Renderer      *view.Renderer
	Stats         Statistics
	Limiter       *middleware.RateLimiter
	Gatherer      prometheus.Gatherer
	Logger        *zap.Logger
	AuthEnabled   bool
	DevMode       bool
	SecureCookies bool
}

type Server struct {
	opts   Options
	logger *zap.Logger
	engine *gin.Engine
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{opts: opts, logger: logger.Named("http")}
	s.engine = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(logging.RequestLogger(s.logger))
	r.Use(middleware.ErrorHandler(s.logger))

	r.StaticFS("/static", http.FS(view.Static()))
	if s.opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api", middleware.CORS())
	{
		api.GET("/health", s.health)
		api.GET("/statistics", s.statistics)
	}

	ui := r.Group("/", middleware.Stats(s.opts.Stats), middleware.Workspace(s.opts.Workspaces, s.opts.SecureCookies, s.logger))
	{
		ui.GET("/login", s.loginPage)
		ui.POST("/login", s.limit(), s.login)
		ui.POST("/logout", s.logout)

		gated := ui.Group("/", middleware.RequireLogin())
		gated.GET("/", s.index)
		gated.GET("/tools/:tool", s.showTool)
		gated.POST("/tools/:tool", s.limit(), s.submit)
		gated.GET("/tools/:tool/state", s.toolState)
	}
	return r
}

func (s *Server) limit() gin.HandlerFunc {
	if s.opts.Limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return s.opts.Limiter.RateLimit()
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) statistics(c *gin.Context) {
	c.JSON(http.StatusOK, s.opts.Stats.Statistics(s.opts.DevMode))
}

func (s *Server) index(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	c.Redirect(http.StatusSeeOther, "/tools/"+string(ws.Shell.Active()))
}

// toolParam resolves :tool, answering 404 for names outside the tab set.
func (s *Server) toolParam(c *gin.Context) (tool.Kind, bool) {
	k, ok := tool.ParseKind(c.Param("tool"))
	if !ok {
		if c.Request.Method == http.MethodGet && c.FullPath() == "/tools/:tool/state" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Unknown tool"})
		} else {
			c.AbortWithStatus(http.StatusNotFound)
		}
	}
	return k, ok
}

func (s *Server) showTool(c *gin.Context) {
	k, ok := s.toolParam(c)
	if !ok {
		return
	}
	ws := middleware.CurrentWorkspace(c)
	if err := ws.Shell.Select(k); err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	s.renderShell(c, ws)
}

func (s *Server) submit(c *gin.Context) {
	k, ok := s.toolParam(c)
	if !ok {
		return
	}
	ws := middleware.CurrentWorkspace(c)
	_ = ws.Shell.Select(k)

	input := c.PostForm("input")
	if ws.Shell.Loading(k) && strings.TrimSpace(input) != "" {
		s.logger.Debug("superseding request in flight", zap.String("workspace", ws.ID), zap.String("tool", string(k)))
	}
	err := ws.Shell.Submit(k, input)
	var vErr *tool.ValidationError
	switch {
	case err == nil, errors.As(err, &vErr):
		// the validation message is part of the controller state
	case errors.Is(err, tool.ErrClosed):
		s.logger.Warn("submission to closed workspace", zap.String("workspace", ws.ID))
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	default:
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Redirect(http.StatusSeeOther, "/tools/"+string(k))
}

func (s *Server) toolState(c *gin.Context) {
	k, ok := s.toolParam(c)
	if !ok {
		return
	}
	state, err := middleware.CurrentWorkspace(c).Shell.Snapshot(k)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Unknown tool"})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) renderShell(c *gin.Context, ws *shell.Workspace) {
	page := view.Page{
		Active:      ws.Shell.Active(),
		Domain:      ws.Shell.Domain.Snapshot(),
		OnPage:      ws.Shell.OnPage.Snapshot(),
		Keyword:     ws.Shell.Keyword.Snapshot(),
		AuthEnabled: ws.Session != nil,
		LoggedIn:    ws.Session.LoggedIn(),
	}

	var buf bytes.Buffer
	if err := s.opts.Renderer.Render(&buf, page); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
