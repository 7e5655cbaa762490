package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/internal/application"
	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/pkg/helpers"
	"github.com/abiosite/abio-api/pkg/response"
)

type UserHandler struct {
	Accounts *application.AccountService
	Profiles *application.ProfileService
	Prefs    *application.PreferenceService
	Cookies  *helpers.Manager
	Logger   *logrus.Logger
}

func NewUserHandler(accounts *application.AccountService, profiles *application.ProfileService, prefs *application.PreferenceService,
	cookies *helpers.Manager, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Accounts: accounts, Profiles: profiles, Prefs: prefs, Cookies: cookies, Logger: logger}
}

type signupRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,password"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type checkUsernameQuery struct {
	Username string `form:"username" binding:"required,username"`
}

type deleteUserRequest struct {
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Username    *string   `json:"username" binding:"omitempty,username"`
	DisplayName *string   `json:"displayName" binding:"omitempty,min=1,max=100"`
	Bio         *string   `json:"bio" binding:"omitempty,max=500"`
	Location    *string   `json:"location" binding:"omitempty,max=100"`
	Goals       *[]string `json:"goals" binding:"omitempty,max=10,dive,max=200"`
	AvatarURL   *string   `json:"avatarUrl" binding:"omitempty,http_url"`
	IsPublic    *bool     `json:"isPublic"`
}

type fontRequest struct {
	Name        string  `json:"name" binding:"required,max=50,fontname"`
	FillColor   string  `json:"fillColor" binding:"required,hexcolor"`
	StrokeColor *string `json:"strokeColor" binding:"omitempty,hexcolor"`
}

type cornerRequest struct {
	Type        string   `json:"type" binding:"required,max=30"`
	FillColor   *string  `json:"fillColor" binding:"omitempty,hexcolor"`
	StrokeColor *string  `json:"strokeColor" binding:"omitempty,hexcolor"`
	Opacity     *float64 `json:"opacity" binding:"omitempty,min=0,max=1"`
	ShadowSize  string   `json:"shadowSize" binding:"max=30"`
	ShadowColor string   `json:"shadowColor" binding:"omitempty,hexcolor"`
}

type themeRequest struct {
	Theme string `json:"theme" binding:"max=50"`
}

// Signup POST /api/v1/user/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Accounts.Register(mailContext(c), application.RegisterInput{
		Email:           req.Email,
		Name:            req.Name,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": u},
		"User created successfully. Please check your email for the verification code.")
}

// CheckUsername GET /api/v1/user/check-username?username=
func (h *UserHandler) CheckUsername(c *gin.Context) {
	var q checkUsernameQuery
	if !bindQuery(c, &q) {
		return
	}
	available, err := h.Profiles.CheckUsernameAvailability(c.Request.Context(), q.Username)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	msg := "Username is available"
	if !available {
		msg = "Username is already taken"
	}
	response.Success(c, http.StatusOK, gin.H{"username": q.Username, "available": available}, msg)
}

// Me GET /api/v1/user
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Accounts.CurrentUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "User retrieved successfully")
}

// Delete DELETE /api/v1/user {password}
func (h *UserHandler) Delete(c *gin.Context) {
	var req deleteUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Accounts.DeleteAccount(c.Request.Context(), currentUserID(c), req.Password); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "Account deleted successfully")
}

// GetProfile GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	p, err := h.Profiles.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "Profile found")
}

// UpdateProfile PATCH /api/v1/user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Profiles.UpdateProfile(c.Request.Context(), currentUserID(c), application.UpdateProfileInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
		Goals:       req.Goals,
		AvatarURL:   req.AvatarURL,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "Profile updated successfully")
}

// UpdateAvatar PATCH /api/v1/user/profile/avatar (multipart field "avatar")
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	up, err := readImage(c, "avatar")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	p, err := h.Profiles.UpdateAvatar(c.Request.Context(), currentUserID(c), up)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "Avatar updated successfully")
}

// GetPreferences GET /api/v1/user/preferences
func (h *UserHandler) GetPreferences(c *gin.Context) {
	d, err := h.Prefs.GetPreferences(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, d, "Settings retrieved")
}

// UpdateBackground POST /api/v1/user/preferences/background
func (h *UserHandler) UpdateBackground(c *gin.Context) {
	var req entity.WallpaperConfig
	if !bindJSON(c, &req) {
		return
	}
	h.respondPrefs(c)(h.Prefs.UpdateBackground(c.Request.Context(), currentUserID(c), req))
}

// UpdateFont POST /api/v1/user/preferences/fonts
func (h *UserHandler) UpdateFont(c *gin.Context) {
	var req fontRequest
	if !bindJSON(c, &req) {
		return
	}
	cfg := entity.FontConfig{Name: req.Name, FillColor: req.FillColor, StrokeColor: req.StrokeColor}
	h.respondPrefs(c)(h.Prefs.UpdateFont(c.Request.Context(), currentUserID(c), cfg))
}

// UpdateCorner POST /api/v1/user/preferences/corners
func (h *UserHandler) UpdateCorner(c *gin.Context) {
	var req cornerRequest
	if !bindJSON(c, &req) {
		return
	}
	cfg := entity.CornerConfig{
		Type:        req.Type,
		FillColor:   req.FillColor,
		StrokeColor: req.StrokeColor,
		Opacity:     req.Opacity,
		ShadowSize:  req.ShadowSize,
		ShadowColor: req.ShadowColor,
	}
	h.respondPrefs(c)(h.Prefs.UpdateCorner(c.Request.Context(), currentUserID(c), cfg))
}

// SelectTheme POST /api/v1/user/preferences/theme; an empty theme clears it.
func (h *UserHandler) SelectTheme(c *gin.Context) {
	var req themeRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondPrefs(c)(h.Prefs.SelectTheme(c.Request.Context(), currentUserID(c), req.Theme))
}

func (h *UserHandler) respondPrefs(c *gin.Context) func(*entity.DisplayPreference, error) {
	return func(d *entity.DisplayPreference, err error) {
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusOK, d, "Settings updated")
	}
}
