package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RootMessage is the plain-text body served at the root path.
const RootMessage = "It's alive!"

// Root answers the root path with a fixed plain-text greeting.
func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, RootMessage)
	}
}

// Liveness confirms the process can serve HTTP. It never checks components.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
