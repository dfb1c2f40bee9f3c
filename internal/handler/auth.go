package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/royalbikeclub/royalbike/internal/auth"
	"github.com/royalbikeclub/royalbike/internal/middleware"
	"github.com/royalbikeclub/royalbike/internal/model"
	"github.com/royalbikeclub/royalbike/internal/store"
)

const (
	awaitingCookieAge      = 15 * 60
	authenticatedCookieAge = 7 * 24 * 60 * 60
)

type AuthHandler struct {
	flow         *auth.Flow
	sessionStore *store.SessionStore
	templates    *template.Template
	logger       *slog.Logger
}

func NewAuthHandler(flow *auth.Flow, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	tmpl := template.Must(template.ParseGlob("web/templates/auth_*.html"))
	return &AuthHandler{
		flow:         flow,
		sessionStore: ss,
		templates:    tmpl,
		logger:       logger,
	}
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// currentSession returns the session for the request cookie, or nil.
func (h *AuthHandler) currentSession(r *http.Request) *model.Session {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := h.sessionStore.GetByToken(cookie.Value)
	if err != nil {
		h.logger.Error("session lookup", "error", err)
		return nil
	}
	return sess
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "auth_register.html", map[string]any{"Name": "", "Email": ""})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	_, err := h.flow.Register(name, email, password)
	switch {
	case errors.Is(err, auth.ErrDuplicateEmail):
		h.templates.ExecuteTemplate(w, "auth_register.html", map[string]any{
			"Message": "That email is already registered. Try logging in instead.",
			"Name":    name,
			"Email":   email,
		})
		return
	case errors.Is(err, auth.ErrInvalidEmail):
		h.templates.ExecuteTemplate(w, "auth_register.html", map[string]any{
			"Message": "Please fill in all fields with a valid email address.",
			"Name":    name,
			"Email":   email,
		})
		return
	case err != nil:
		h.logger.Error("register", "error", err)
		h.templates.ExecuteTemplate(w, "auth_register.html", map[string]any{
			"Message": "Registration failed. Try again.",
			"Name":    name,
			"Email":   email,
		})
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{"Email": ""})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	sess, err := h.flow.BeginLogin(email, password)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{
			"Message": "User not found. Please register first.",
			"Email":   email,
		})
		return
	case errors.Is(err, auth.ErrIncorrectPassword):
		h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{
			"Message": "Incorrect password. Please try again.",
			"Email":   email,
		})
		return
	case err != nil:
		h.logger.Error("login", "error", err)
		h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{
			"Message": "Login failed. Try again.",
			"Email":   email,
		})
		return
	}

	setSessionCookie(w, r, sess.Token, awaitingCookieAge)
	http.Redirect(w, r, "/verify-otp", http.StatusSeeOther)
}

func (h *AuthHandler) VerifyOTPPage(w http.ResponseWriter, r *http.Request) {
	sess := h.currentSession(r)
	if sess == nil || !sess.Awaiting() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.templates.ExecuteTemplate(w, "auth_verify_otp.html", map[string]any{})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		token = cookie.Value
	}

	result, err := h.flow.VerifyOTP(token, r.FormValue("otp"))
	switch {
	case errors.Is(err, auth.ErrNoPendingLogin):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case errors.Is(err, auth.ErrInvalidOTP), errors.Is(err, auth.ErrUserNotFound):
		h.templates.ExecuteTemplate(w, "auth_verify_otp.html", map[string]any{
			"Message": "Invalid or expired OTP. Please try again.",
		})
		return
	case err != nil:
		h.logger.Error("verify otp", "error", err)
		h.templates.ExecuteTemplate(w, "auth_verify_otp.html", map[string]any{
			"Message": "An error occurred. Please try again.",
		})
		return
	}

	if result.Purpose == model.PurposeReset {
		http.Redirect(w, r, "/reset-password", http.StatusSeeOther)
		return
	}

	setSessionCookie(w, r, result.Session.Token, authenticatedCookieAge)
	if result.IsAdmin {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/user-dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "auth_forgot_password.html", map[string]any{"Email": ""})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))

	sess, err := h.flow.BeginPasswordReset(email)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		h.templates.ExecuteTemplate(w, "auth_forgot_password.html", map[string]any{
			"Message": "User not found",
			"Email":   email,
		})
		return
	case err != nil:
		h.logger.Error("forgot password", "error", err)
		h.templates.ExecuteTemplate(w, "auth_forgot_password.html", map[string]any{
			"Message": "Error occurred. Please try again.",
			"Email":   email,
		})
		return
	}

	setSessionCookie(w, r, sess.Token, awaitingCookieAge)
	http.Redirect(w, r, "/verify-otp", http.StatusSeeOther)
}

func (h *AuthHandler) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	sess := h.currentSession(r)
	if sess == nil || !sess.Awaiting() || sess.Purpose != model.PurposeReset {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.templates.ExecuteTemplate(w, "auth_reset_password.html", map[string]any{
		"Email": sess.Email,
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		token = cookie.Value
	}

	err := h.flow.CompleteReset(token, r.FormValue("newPassword"))
	switch {
	case errors.Is(err, auth.ErrNoPendingLogin):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case errors.Is(err, auth.ErrUserNotFound):
		h.templates.ExecuteTemplate(w, "auth_reset_password.html", map[string]any{
			"Message": "User not found.",
		})
		return
	case err != nil:
		h.logger.Error("reset password", "error", err)
		h.templates.ExecuteTemplate(w, "auth_reset_password.html", map[string]any{
			"Message": "Error resetting password. Please try again.",
		})
		return
	}

	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.flow.Logout(cookie.Value); err != nil {
			h.logger.Error("logout", "error", err)
		}
	}

	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
