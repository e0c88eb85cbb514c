// Package middleware holds the gin middleware stack of the authgate server:
// recovery, request IDs, request logging, metrics, body limits and the
// authentication gate.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware is a standard net/http middleware.
type Middleware func(http.Handler) http.Handler

// GinWrap adapts a net/http Middleware to a gin handler. Request changes made
// by mw are propagated back to the gin context before the chain continues.
func GinWrap(mw Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})
		mw(next).ServeHTTP(c.Writer, c.Request)
	}
}
