package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallhorseman/SEM37/middleware"
	"github.com/smallhorseman/SEM37/view"
)

func (s *Server) loginPage(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	if ws.Session == nil || ws.Session.LoggedIn() {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.renderLogin(c, http.StatusOK, view.LoginPage{})
}

func (s *Server) login(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	if ws.Session == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	email := c.PostForm("email")
	if !ws.Session.Login(c.Request.Context(), email, c.PostForm("password")) {
		s.renderLogin(c, http.StatusUnauthorized, view.LoginPage{Email: email, Failed: true})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) logout(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	if ws.Session != nil {
		// Logout already logged the store failure; memory is cleared either way.
		_ = ws.Session.Logout(c.Request.Context())
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) renderLogin(c *gin.Context, status int, p view.LoginPage) {
	var buf bytes.Buffer
	if err := s.opts.Renderer.RenderLogin(&buf, p); err != nil {
		s.logger.Error("failed to render login", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
