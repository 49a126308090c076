package api

import (
	"blog/pkg/errcodes"
	"blog/pkg/validation"
)

type ErrorResponse struct {
	Message string        `json:"message"`
	Code    errcodes.Code `json:"code,omitempty"`
}

type ValidationResponse struct {
	Errors validation.Errors `json:"errors"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}
