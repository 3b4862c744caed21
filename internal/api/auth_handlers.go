package api

import (
	"net/http"

	"github.com/starford/canvas/internal/auth"
)

// AuthHandler serves account registration and sign-in.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles POST /api/auth/register.
//
//	@Summary		Create an account
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CredentialsRequest	true	"Email and password"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	u, err := h.svc.Register(r.Context(), auth.Credentials(req))
	if err != nil {
		writeError(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, UserResponse{ID: u.ID, Email: u.Email})
}

// Login handles POST /api/auth/login.
//
//	@Summary		Sign in and receive a session token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CredentialsRequest	true	"Email and password"
//	@Success		200		{object}	LoginResponse
//	@Failure		401		{object}	errResponse
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	sess, token, err := h.svc.Login(r.Context(), auth.Credentials(req))
	if err != nil {
		writeError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, UserID: sess.UserID, Email: sess.Email})
}

// Me handles GET /api/auth/me.
//
//	@Summary		Current account
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeError(w, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{ID: u.ID, Email: u.Email})
}
