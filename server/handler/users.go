package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/auth/authctx"
	"github.com/kbukum/authgate/auth/token"
	"github.com/kbukum/authgate/errors"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/server"
)

// Users serves the gated /api/users routes.
type Users struct {
	store UserLister
	log   *logger.Logger
}

// User is the public view of a stored record. It never carries the hash.
type User struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	Profile   map[string]any `json:"profile,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// List answers with every stored user.
func (h *Users) List(c *gin.Context) {
	recs, err := h.store.List(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, h.log, errors.StorageError(err))
		return
	}

	users := make([]User, 0, len(recs))
	for _, r := range recs {
		users = append(users, User{ID: r.ID, Username: r.Username, Profile: r.Profile, CreatedAt: r.CreatedAt})
	}
	server.RespondOK(c, users)
}

// Me answers with the claims the gate decoded for this request. It is only
// mounted behind the gate, so missing claims are a wiring bug.
func (h *Users) Me(c *gin.Context) {
	server.RespondOK(c, authctx.MustGet[*token.Claims](c.Request.Context()))
}
