package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smallhorseman/SEM37/shell"
)

const (
	// CookieName holds the browser ID.
	CookieName   = "sem37_id"
	cookieMaxAge = 365 * 24 * 60 * 60
	workspaceKey = "workspace"
)

// Workspaces is the part of the registry the middleware needs.
type Workspaces interface {
	Get(ctx context.Context, id string) (*shell.Workspace, error)
}

// Workspace resolves the browser ID cookie, issuing a new one when it is
// missing or malformed, and attaches the browser's workspace to the context.
func Workspace(registry Workspaces, secureCookies bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieName, id, cookieMaxAge, "/", "", secureCookies, true)
		}

		ws, err := registry.Get(c.Request.Context(), id)
		if err != nil {
			logger.Error("failed to open workspace", zap.String("workspace", id), zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Set(workspaceKey, ws)
		c.Next()
	}
}

// CurrentWorkspace returns the workspace attached by Workspace.
func CurrentWorkspace(c *gin.Context) *shell.Workspace {
	v, ok := c.Get(workspaceKey)
	if !ok {
		return nil
	}
	ws, _ := v.(*shell.Workspace)
	return ws
}

// RequireLogin sends browsers without a session token to the login page.
// Workspaces without a session (auth disabled) always pass.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := CurrentWorkspace(c)
		if ws == nil || ws.Session == nil || ws.Session.LoggedIn() {
			c.Next()
			return
		}
		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}
