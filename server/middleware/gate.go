package middleware

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/auth/authctx"
	"github.com/kbukum/authgate/auth/bearer"
	"github.com/kbukum/authgate/auth/token"
	"github.com/kbukum/authgate/errors"
	"github.com/kbukum/authgate/logger"
)

// TokenVerifier verifies a raw token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Gate admits only requests carrying a valid token. Verified claims are bound
// to the request context with authctx and published on the gin context under
// authctx.GinKey. A request whose context already carries claims is passed
// through without verifying again.
//
// Rejections answer 401 with the standard error body and abort the chain.
// The header value and token are never logged.
func Gate(parser *bearer.Parser, verifier TokenVerifier, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		if authctx.Has(c.Request.Context()) {
			claims, err := authctx.GetOrError[*token.Claims](c.Request.Context())
			if err != nil {
				reject(c, log, errors.MalformedToken())
				return
			}
			if _, ok := c.Get(authctx.GinKey); !ok {
				c.Set(authctx.GinKey, claims)
			}
			c.Next()
			return
		}

		cred, err := parser.ParseRequest(c.Request)
		if err != nil {
			reject(c, log, headerError(err, cred.Scheme))
			return
		}

		claims, err := verifier.Verify(cred.Token)
		if err != nil {
			reject(c, log, tokenError(err))
			return
		}

		c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), claims))
		c.Set(authctx.GinKey, claims)
		c.Next()
	}
}

func headerError(err error, scheme string) *errors.AppError {
	switch {
	case stderrors.Is(err, bearer.ErrMissingHeader):
		return errors.MissingHeader()
	case stderrors.Is(err, bearer.ErrUnsupportedScheme):
		return errors.UnsupportedScheme(scheme)
	default:
		return errors.MalformedHeader()
	}
}

func tokenError(err error) *errors.AppError {
	switch {
	case stderrors.Is(err, token.ErrExpired):
		return errors.TokenExpired()
	case stderrors.Is(err, token.ErrSignature):
		return errors.InvalidSignature()
	default:
		return errors.MalformedToken()
	}
}

func reject(c *gin.Context, log *logger.Logger, appErr *errors.AppError) {
	fields := logger.Fields(
		logger.FieldRequestID, GetRequestID(c),
		logger.FieldOutcome, string(appErr.Code),
		"path", c.Request.URL.Path,
	)
	// A bad signature means the token was forged or signed with another key.
	if errors.HasCode(appErr, errors.ErrCodeInvalidSignature) {
		log.Warn("token signature rejected by gate", fields)
	} else {
		log.Debug("request rejected by gate", fields)
	}
	if c.Writer.Written() {
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
