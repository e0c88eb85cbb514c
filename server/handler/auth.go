package handler

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/errors"
	"github.com/kbukum/authgate/flow"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/server"
)

// Auth serves /api/auth.
type Auth struct {
	flow Authenticator
	log  *logger.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register accepts {username, password, ...profile} and answers 201 with the
// stored record. Extra fields are passed through verbatim and the password
// field carries the hash.
func (h *Auth) Register(c *gin.Context) {
	body, err := decodeObject(c)
	if err != nil {
		server.RespondWithError(c, h.log, err)
		return
	}

	username, uerr := stringField(body, "username")
	plaintext, perr := stringField(body, "password")
	if uerr != nil || perr != nil {
		server.RespondWithError(c, h.log, first(uerr, perr))
		return
	}
	delete(body, "username")
	delete(body, "password")

	rec, err := h.flow.Register(c.Request.Context(), flow.RegisterInput{
		Username: username,
		Password: plaintext,
		Profile:  body,
	})
	if err != nil {
		server.RespondWithError(c, h.log, flow.AppError(err))
		return
	}

	out := make(map[string]any, len(rec.Profile)+4)
	for k, v := range rec.Profile {
		out[k] = v
	}
	out["id"] = rec.ID
	out["username"] = rec.Username
	out["password"] = rec.PasswordHash
	out["created_at"] = rec.CreatedAt.UTC().Format(time.RFC3339)
	server.RespondCreated(c, out)
}

// Login accepts {username, password} and answers 200 {message, token}.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := decodeJSON(c, &req); err != nil {
		server.RespondWithError(c, h.log, err)
		return
	}

	res, err := h.flow.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		server.RespondWithError(c, h.log, flow.AppError(err))
		return
	}
	server.RespondOK(c, res)
}

// decodeObject reads the body as a JSON object, keeping numbers as written.
func decodeObject(c *gin.Context) (map[string]any, error) {
	var body map[string]any
	if err := decodeJSON(c, &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errBadBody()
	}
	return body, nil
}

// decodeJSON decodes exactly one JSON value from the body into v. Anything
// but whitespace after it is rejected.
func decodeJSON(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errBadBody()
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !stderrors.Is(err, io.EOF) {
		return errBadBody()
	}
	return nil
}

func errBadBody() error {
	return errors.InvalidInput("", "request body must be a JSON object")
}

// stringField returns body[name] when it is a string or absent.
func stringField(body map[string]any, name string) (string, error) {
	v, ok := body[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.InvalidInput(name, name+" must be a string")
	}
	return s, nil
}

func first(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
