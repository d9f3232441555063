package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"pennybook.org/internal/audit"
	"pennybook.org/internal/auth"
	"pennybook.org/internal/obs"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Password string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAlreadyExists):
			writeError(w, r, http.StatusBadRequest, "User already exists")
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, "name, email and password are required")
		default:
			a.serverError(w, r, "register", err)
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "user.register", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	writeJSON(w, http.StatusOK, map[string]any{"msg": "User registered successfully"})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, expiresAt, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// One message for unknown email and wrong password alike.
			obs.ObserveLogin("denied")
			writeError(w, r, http.StatusBadRequest, "Invalid Credentials")
			return
		}
		a.serverError(w, r, "login", err)
		return
	}

	obs.ObserveLogin("ok")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"email":      req.Email,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	err := a.auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "User not found")
		case errors.Is(err, auth.ErrMailDelivery):
			a.serverErrorMsg(w, r, "forgot-password", err, "Failed to send reset email")
		default:
			a.serverError(w, r, "forgot-password", err)
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.password.forgot", map[string]any{
		"email": req.Email,
	})
	writeJSON(w, http.StatusOK, map[string]any{"msg": "Password reset email sent"})
}

func (a *API) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req resetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	err := a.auth.ResetPassword(r.Context(), token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrResetToken):
			writeError(w, r, http.StatusBadRequest, "Invalid or expired reset token")
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, "password is required")
		default:
			a.serverError(w, r, "reset-password", err)
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.password.reset", nil)
	writeJSON(w, http.StatusOK, map[string]any{"msg": "Password has been reset"})
}

// serverError logs internal detail and answers with an opaque 500. Store
// and crypto errors never reach the client.
func (a *API) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	a.serverErrorMsg(w, r, op, err, "Server error")
}

func (a *API) serverErrorMsg(w http.ResponseWriter, r *http.Request, op string, err error, msg string) {
	obs.LogError("internal error", map[string]any{
		"op":         op,
		"err":        err.Error(),
		"request_id": RequestIDFromContext(r.Context()),
	})
	writeError(w, r, http.StatusInternalServerError, msg)
}
