package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"stocksim/internal/auth"
	"stocksim/internal/dto"
	"stocksim/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionManager is what the auth handler needs from the session store.
// Implemented by *auth.Store.
type SessionManager interface {
	Create(ctx context.Context, userID int64) (string, error)
	Delete(ctx context.Context, id string) error
	TTL() time.Duration
}

// AuthHandler handles login, register and logout.
type AuthHandler struct {
	sessions SessionManager
	userSvc  *service.UserService
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(sessions SessionManager, userSvc *service.UserService) *AuthHandler {
	return &AuthHandler{sessions: sessions, userSvc: userSvc}
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// Login checks credentials and starts a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	_ = c.ShouldBind(&form)

	if form.Username == "" {
		apology(c, http.StatusBadRequest, "must provide username")
		return
	}
	if form.Password == "" {
		apology(c, http.StatusBadRequest, "must provide password")
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apology(c, http.StatusBadRequest, "invalid username and/or password")
			return
		}
		apology(c, http.StatusInternalServerError, "login failed")
		return
	}
	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		apology(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	c.SetCookie(auth.SessionCookieName, sessionID, int(h.sessions.TTL().Seconds()), "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowRegister renders the registration form.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", nil)
}

// Register creates a new account and sends the user to the login page.
func (h *AuthHandler) Register(c *gin.Context) {
	var form dto.RegisterForm
	_ = c.ShouldBind(&form)

	_, err := h.userSvc.Register(c.Request.Context(), form.Username, form.Password, form.Confirmation)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameRequired),
			errors.Is(err, service.ErrPasswordRequired),
			errors.Is(err, service.ErrPasswordTooShort),
			errors.Is(err, service.ErrPasswordMismatch),
			errors.Is(err, service.ErrUsernameTaken):
			apology(c, http.StatusBadRequest, err.Error())
		default:
			apology(c, http.StatusInternalServerError, "registration failed")
		}
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// Logout forgets the session and sends the user to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(auth.SessionCookieName)
	if err == nil && sessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/login")
}
