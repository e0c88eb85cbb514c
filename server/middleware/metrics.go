package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/authgate/observability"
)

// Metrics wraps each request in a server span and records it on m.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanHTTPRequest,
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		observability.SetSpanAttribute(ctx, observability.AttrMethod, c.Request.Method)
		observability.SetSpanAttribute(ctx, observability.AttrRoute, route)
		if id := GetRequestID(c); id != "" {
			observability.SetSpanAttribute(ctx, observability.AttrRequestID, id)
		}

		start := time.Now()
		m.RecordRequestStart(ctx)
		c.Next()

		status := c.Writer.Status()
		observability.SetSpanAttribute(ctx, observability.AttrStatus, status)
		m.RecordRequestEnd(ctx, c.Request.Method, route, status, time.Since(start))
	}
}
