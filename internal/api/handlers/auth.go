package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Noah170803/eventio/internal/auth"
	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/Noah170803/eventio/internal/metrics"
	"github.com/Noah170803/eventio/internal/validation"
)

type AuthHandler struct {
	Service       *users.Service
	Env           string
	CookieName    string
	SecureCookies bool
}

func NewAuthHandler(service *users.Service, env, cookieName string, secureCookies bool) *AuthHandler {
	if strings.TrimSpace(cookieName) == "" {
		cookieName = "session"
	}
	return &AuthHandler{Service: service, Env: env, CookieName: cookieName, SecureCookies: secureCookies}
}

type signupResponse struct {
	User userJSON `json:"user"`
}

type loginResponse struct {
	User  userJSON `json:"user"`
	Token string   `json:"token"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var params users.SignupParams
	if err := decodeJSON(r, &params); err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "invalid").Inc()
		writeDecodeError(w, r, err, h.Env)
		return
	}

	user, err := h.Service.Signup(r.Context(), params)
	metrics.AuthAttempts.WithLabelValues("signup", authResult(err)).Inc()
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{User: toUserJSON(user)})
}

// Login handles POST /api/auth/login. The token is returned in the body and
// also set as an HttpOnly cookie so browsers can log out without script
// access to it.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var params users.LoginParams
	if err := decodeJSON(r, &params); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		writeDecodeError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.Login(r.Context(), params)
	metrics.AuthAttempts.WithLabelValues("login", authResult(err)).Inc()
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{User: toUserJSON(result.User), Token: result.Token})
}

// Logout handles POST /api/auth/logout. The session comes from the cookie,
// falling back to a bearer token; a request carrying neither is already
// logged out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(h.CookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		token, _ = auth.BearerToken(r)
	}

	if strings.TrimSpace(token) == "" {
		metrics.AuthAttempts.WithLabelValues("logout", "noop").Inc()
		writeJSON(w, http.StatusOK, messageResponse{Message: "already logged out"})
		return
	}

	err := h.Service.Logout(r.Context(), token)
	metrics.AuthAttempts.WithLabelValues("logout", authResult(err)).Inc()
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func authResult(err error) string {
	var verr validation.Error
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, users.ErrEmailTaken):
		return "conflict"
	case errors.Is(err, users.ErrInvalidCredentials):
		return "unauthorized"
	default:
		return "error"
	}
}
