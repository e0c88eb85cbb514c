// Package validation checks request payloads and credential inputs.
//
// Struct tag validation uses go-playground/validator with JSON field names
// in messages. It also registers a "username" tag that rejects whitespace
// and control characters.
//
//	type RegisterRequest struct {
//	    Username string `json:"username" validate:"required,username,max=64"`
//	    Password string `json:"password" validate:"required"`
//	}
//	err := validation.Validate(req)
//
// Ad hoc checks chain on a Validator:
//
//	err := validation.New().Present("username", u).Present("password", p).Validate()
//
// Both forms return *errors.AppError with code INVALID_INPUT and a
// "fields" detail listing each failure. Field values are never echoed.
package validation
