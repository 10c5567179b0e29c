package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campus-rms-console/internal/model"
	"campus-rms-console/internal/mw"
	"campus-rms-console/internal/password"
	"campus-rms-console/internal/policy"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Message    string            `json:"message"`
	Token      string            `json:"token"`
	ExpiresAt  time.Time         `json:"expires_at"`
	User       model.Identity    `json:"user"`
	Navigation policy.Navigation `json:"navigation"`
}

// Login opens a console session and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.backendFailed(c, "auth.login", err, false)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, sess.Token, int(time.Until(sess.ExpiresAt).Seconds()), "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, loginResponse{
		Message:    "Login successful",
		Token:      sess.Token,
		ExpiresAt:  sess.ExpiresAt,
		User:       sess.Identity,
		Navigation: policy.NavigationFor(sess.Identity.Role),
	})
}

// Logout ends the session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	token := mw.TokenFrom(c, h.session.CookieName)
	if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
		h.backendFailed(c, "auth.logout", err, false)
		return
	}
	c.SetCookie(h.session.CookieName, "", -1, "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

type registerRequest struct {
	Name            string     `json:"name" binding:"required"`
	Email           string     `json:"email" binding:"required,email"`
	Phone           string     `json:"phone" binding:"required"`
	Role            model.Role `json:"role" binding:"omitempty,oneof=STUDENT STAFF"`
	Password        string     `json:"password"`
	ConfirmPassword string     `json:"confirm_password"`
}

// Register creates an ACTIVE account. Password strength and confirmation are
// checked before the backend is called.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if !checkPassword(c, req.Password, true) {
		return
	}
	if err := password.CheckConfirmation(req.Password, req.ConfirmPassword); err != nil {
		respondError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}
	created, err := h.backend.CreateUser(c.Request.Context(), model.IdentityInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     role,
		Status:   model.IdentityActive,
	})
	if err != nil {
		h.backendFailed(c, "auth.register", err, false)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Me returns the session's identity and what it may see.
func (h *Handler) Me(c *gin.Context) {
	sess := currentSession(c)
	c.JSON(http.StatusOK, gin.H{
		"user":       sess.Identity,
		"expires_at": sess.ExpiresAt,
		"navigation": policy.NavigationFor(sess.Identity.Role),
	})
}

// checkPassword answers 422 with the unmet requirements and reports false when
// p violates the password policy.
func checkPassword(c *gin.Context, p string, required bool) bool {
	violations := password.Validate(p, required)
	if len(violations) == 0 {
		return true
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"error":        "Password does not meet the requirements",
		"requirements": violations,
	})
	return false
}
