package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/internal/application"
	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/internal/interface/middleware"
	"github.com/abiosite/abio-api/pkg/helpers"
	"github.com/abiosite/abio-api/pkg/mailer"
	"github.com/abiosite/abio-api/pkg/response"
)

type AuthHandler struct {
	Accounts *application.AccountService
	Cookies  *helpers.Manager
	Logger   *logrus.Logger
}

func NewAuthHandler(accounts *application.AccountService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Cookies: cookies, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type verifyEmailRequest struct {
	Token string `json:"token" binding:"required,len=6,numeric"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token" binding:"required,len=6"`
	Password        string `json:"password" binding:"required,password"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type updatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" binding:"required"`
	Password        string `json:"password" binding:"required,password"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type sessionResponse struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

// mailContext carries the requester's address and agent to the mail templates.
func mailContext(c *gin.Context) context.Context {
	return mailer.WithClient(c.Request.Context(), middleware.ClientIP(c), c.GetHeader("User-Agent"))
}

func (h *AuthHandler) startSession(c *gin.Context, s *application.Session, status int, message string) {
	h.Cookies.SetSession(c, s.Token)
	response.Success(c, status, sessionResponse{User: s.User, Token: s.Token}, message)
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.startSession(c, s, http.StatusOK, "Logged in successfully")
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "Logged out successfully")
}

// VerifyEmail POST /api/v1/auth/verify-email {token}
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Accounts.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.startSession(c, s, http.StatusOK, "Email verified successfully")
}

// ResendVerification POST /api/v1/auth/resend-verification-email {email}
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Accounts.ResendVerification(mailContext(c), req.Email); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Verification code sent to your email")
}

// ForgotPassword POST /api/v1/auth/forgot-password {email}
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Accounts.ForgotPassword(mailContext(c), req.Email); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Token sent to email!")
}

// ResetPassword POST /api/v1/auth/reset-password {token, password, passwordConfirm}
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Accounts.ResetPassword(c.Request.Context(), req.Token, req.Password, req.PasswordConfirm); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password reset successfully!")
}

// UpdatePassword PATCH /api/v1/auth/update-password (session)
// Tokens issued before the change stop working, so a fresh session is returned.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Accounts.UpdatePassword(c.Request.Context(), currentUserID(c), req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.startSession(c, s, http.StatusOK, "Password updated successfully!")
}
