package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/service"
)

// AuthHandler serves account registration and login.
//
//   - HandleRegister → POST /register (JSON body)
//   - HandleLogin    → POST /login (form-encoded body, OAuth2 password
//     grant style)
type AuthHandler struct {
	accounts *service.AuthService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(accounts *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// HandleRegister creates an account.
//
// HTTP: POST /register
// BODY: {"username": "...", "password": "..."}
// 201 on success, 409 when the username is taken.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), creds)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin exchanges a username and password for an access token.
//
// HTTP: POST /login
// BODY: username=...&password=... (application/x-www-form-urlencoded)
//
// Both failure cases answer 401 with the same body.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("body", "request body must be form-encoded"))
		return
	}

	tok, err := h.accounts.Login(r.Context(), model.Credentials{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}
