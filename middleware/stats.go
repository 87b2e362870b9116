package middleware

import "github.com/gin-gonic/gin"

// VisitorTracker records client IPs for the unique visitor count.
type VisitorTracker interface {
	TrackVisitor(ip string)
}

// Stats tracks every client that reaches the router.
func Stats(tracker VisitorTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracker.TrackVisitor(c.ClientIP())
		c.Next()
	}
}
