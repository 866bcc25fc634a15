package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// UserHandler implements registration, authentication, and profile
// endpoints.
type UserHandler struct {
	Users    UserStore
	Sessions SessionManager
	Relay    MediaRelay

	UploadDir     string
	MaxUploadSize int64
	NowFunc       func() time.Time
}

// Register handles POST /api/v1/users/register. The request is multipart:
// text fields plus a required avatar and optional cover image, both relayed
// to the media host before the account is created.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Sessions == nil || h.Relay == nil {
		logger.Error("registration dependencies unavailable",
			"hasUsers", h.Users != nil, "hasSessions", h.Sessions != nil, "hasRelay", h.Relay != nil)
		respondError(ctx, w, http.StatusInternalServerError, "registration services unavailable")
		return
	}

	if err := r.ParseMultipartForm(uploadLimit(h.MaxUploadSize)); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart request body")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || password == "" {
		respondError(ctx, w, http.StatusBadRequest, "all fields are required",
			"fullName, email, username, and password must not be blank")
		return
	}

	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}

	if len(password) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if _, err := h.Users.FindByUsername(ctx, username); err == nil {
		respondError(ctx, w, http.StatusConflict, "user with email or username already exists")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register username lookup failed", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify existing accounts")
		return
	}

	if _, err := h.Users.FindByEmail(ctx, email); err == nil {
		respondError(ctx, w, http.StatusConflict, "user with email or username already exists")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register email lookup failed", "error", err, "email", email)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify existing accounts")
		return
	}

	avatarPath, err := saveUpload(r, "avatar", h.UploadDir)
	if err != nil {
		logger.Warn("register avatar spool failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "unable to read avatar upload")
		return
	}
	if avatarPath == "" {
		respondError(ctx, w, http.StatusBadRequest, "avatar file is required")
		return
	}

	coverPath, err := saveUpload(r, "coverImage", h.UploadDir)
	if err != nil {
		discardUpload(avatarPath)
		logger.Warn("register cover spool failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "unable to read cover image upload")
		return
	}

	avatar, err := h.Relay.Upload(ctx, avatarPath)
	if err != nil {
		discardUpload(coverPath)
		logger.Error("register avatar upload failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "failed to upload avatar file")
		return
	}

	cover, err := h.Relay.Upload(ctx, coverPath)
	if err != nil {
		logger.Error("register cover upload failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "failed to upload cover image")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	now := h.now()
	user := models.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		FullName:      fullName,
		Password:      string(hashed),
		AvatarURL:     avatar.URL,
		CoverImageURL: cover.URL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "user with email or username already exists")
			return
		}
		logger.Error("register failed to create user", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong while registering user")
		return
	}

	respondData(ctx, w, http.StatusCreated, user.Public(), "User registered successfully")
}

// Login handles POST /api/v1/users/login. Callers may present either their
// email or username.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Sessions == nil {
		logger.Error("authentication dependencies unavailable", "hasUsers", h.Users != nil, "hasSessions", h.Sessions != nil)
		respondError(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	identifier := strings.TrimSpace(strings.ToLower(firstNonEmpty(req.Email, req.Username)))
	if identifier == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "username or email and password are required")
		return
	}

	var user models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = h.Users.FindByEmail(ctx, identifier)
	} else {
		user, err = h.Users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		logger.Warn("login user lookup failed", "identifier", identifier, "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("failed to issue session", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondData(ctx, w, http.StatusOK, authPayload{User: user.Public(), Tokens: tokens}, "User logged in successfully")
}

// Refresh handles POST /api/v1/users/refresh-token, rotating the refresh
// credential.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "session service unavailable")
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid refresh payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		respondError(ctx, w, http.StatusBadRequest, "refresh token is required")
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenExpired) || errors.Is(err, auth.ErrSessionNotFound) {
			respondError(ctx, w, http.StatusUnauthorized, "unable to refresh session")
			return
		}
		logger.Error("refresh failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to refresh session")
		return
	}

	respondData(ctx, w, http.StatusOK, authPayload{Tokens: tokens}, "Session refreshed successfully")
}

// Logout handles POST /api/v1/users/logout, revoking the caller's refresh
// credential.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	h.Sessions.Revoke(ctx, callerID)
	respondData(ctx, w, http.StatusOK, nil, "User logged out successfully")
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		respondError(ctx, w, http.StatusBadRequest, "old and new passwords are required")
		return
	}
	if len(req.NewPassword) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := h.Users.FindByID(ctx, callerID)
	if err != nil {
		logger.Error("change password lookup failed", "error", err, "userId", callerID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load account")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "old password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("change password hash failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	user.Password = string(hashed)
	user.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, user); err != nil {
		logger.Error("change password update failed", "error", err, "userId", callerID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update password")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "Password changed successfully")
}

// CurrentUser handles GET /api/v1/users/me.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()

	user, err := h.Users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "unable to load account")
		return
	}

	respondData(ctx, w, http.StatusOK, user.Public(), "Current user fetched successfully")
}

// UpdateAccount handles PATCH /api/v1/users/update-account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" && req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "full name or email is required")
		return
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid email address")
			return
		}
	}

	user, err := h.Users.FindByID(ctx, callerID)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "unable to load account")
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "email already in use")
			return
		}
		logger.Error("account update failed", "error", err, "userId", callerID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update account")
		return
	}

	respondData(ctx, w, http.StatusOK, user.Public(), "Account details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request, callerID string) {
	h.replaceImage(w, r, callerID, "avatar")
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request, callerID string) {
	h.replaceImage(w, r, callerID, "coverImage")
}

// replaceImage uploads the new asset, swaps the stored URL, and removes the
// old remote asset best-effort.
func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, callerID, field string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(uploadLimit(h.MaxUploadSize)); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart request body")
		return
	}

	localPath, err := saveUpload(r, field, h.UploadDir)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "unable to read upload")
		return
	}
	if localPath == "" {
		respondError(ctx, w, http.StatusBadRequest, field+" file is required")
		return
	}

	user, err := h.Users.FindByID(ctx, callerID)
	if err != nil {
		discardUpload(localPath)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load account")
		return
	}

	asset, err := h.Relay.Upload(ctx, localPath)
	if err != nil {
		logger.Error("image upload failed", "error", err, "field", field)
		respondError(ctx, w, http.StatusBadRequest, "error while uploading "+field)
		return
	}

	var previous string
	switch field {
	case "avatar":
		previous = user.AvatarURL
		user.AvatarURL = asset.URL
	default:
		previous = user.CoverImageURL
		user.CoverImageURL = asset.URL
	}
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		logger.Error("image update failed", "error", err, "userId", callerID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update account")
		return
	}

	if previous != "" {
		if err := h.Relay.Delete(ctx, previous); err != nil {
			logger.Warn("failed to delete previous asset", "error", err, "url", previous)
		}
	}

	message := "Avatar updated successfully"
	if field != "avatar" {
		message = "Cover image updated successfully"
	}
	respondData(ctx, w, http.StatusOK, user.Public(), message)
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type authPayload struct {
	User   models.PublicUser    `json:"user,omitzero"`
	Tokens models.SessionTokens `json:"tokens"`
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
