// Package handler registers the authgate API routes on a gin router.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/flow"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/store"
)

// Authenticator runs the register and login flows.
type Authenticator interface {
	Register(ctx context.Context, in flow.RegisterInput) (*store.Record, error)
	Login(ctx context.Context, username, password string) (*flow.LoginResult, error)
}

// UserLister lists stored users.
type UserLister interface {
	List(ctx context.Context) ([]store.Record, error)
}

// Deps are the collaborators of the API routes.
type Deps struct {
	Flow  Authenticator
	Users UserLister
	// Gate guards the /api/users routes.
	Gate gin.HandlerFunc
	Log  *logger.Logger
}

// Register mounts /api/auth and the gated /api/users routes on r.
func Register(r gin.IRouter, d Deps) {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("handler")

	auth := &Auth{flow: d.Flow, log: log}
	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)

	users := &Users{store: d.Users, log: log}
	usersGroup := r.Group("/api/users", d.Gate)
	usersGroup.GET("", users.List)
	usersGroup.GET("/me", users.Me)
}
