package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/logger"
)

var quietPaths = map[string]bool{
	"/":       true,
	"/health": true,
	"/alive":  true,
}

// RequestLogger logs one line per request. Probe paths are skipped. The
// query string and request headers are never logged since they may carry
// credentials.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]interface{}{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"route":              c.FullPath(),
			"client":             c.ClientIP(),
			logger.FieldStatus:   status,
			logger.FieldDuration: elapsed.Milliseconds(),
		}
		if id := GetRequestID(c); id != "" {
			fields[logger.FieldRequestID] = id
		}
		if elapsed > 500*time.Millisecond {
			fields["slow"] = true
		}

		switch {
		case status >= 500:
			log.Error("request completed", fields)
		case status >= 400:
			log.Warn("request completed", fields)
		default:
			log.Debug("request completed", fields)
		}
	}
}
