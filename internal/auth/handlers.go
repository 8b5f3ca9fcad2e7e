package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/alleghenyre/propsearch/internal/db"
	"github.com/alleghenyre/propsearch/internal/httputil"
	"github.com/alleghenyre/propsearch/internal/utils"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

var validate = validator.New()

type Handler struct {
	db  *gorm.DB
	log *zap.Logger
	// secureCookies marks the session cookie Secure and SameSite=None, for
	// deployments where the frontend is served from another origin over TLS.
	secureCookies bool
}

func NewHandler(db *gorm.DB, secureCookies bool, log *zap.Logger) *Handler {
	return &Handler{db: db, secureCookies: secureCookies, log: log}
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type userResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "A valid email and a password of at least 6 characters are required")
		return
	}

	var existing User
	if err := h.db.First(&existing, "email = ?", req.Email).Error; err == nil {
		httputil.WriteError(w, http.StatusConflict, "Email already registered")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "Server error hashing password")
		return
	}
	user := User{
		UserID:         utils.GenerateUUID(),
		Email:          req.Email,
		HashedPassword: string(hashed),
		Role:           RoleUser,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			httputil.WriteError(w, http.StatusConflict, "Email already registered")
			return
		}
		h.log.Error("Failed to register user", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	h.log.Info("User registered", zap.String("user_id", user.UserID))
	httputil.WriteJSON(w, http.StatusCreated, userResponse{UserID: user.UserID, Email: user.Email, Role: user.Role})
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	var user User
	if err := h.db.First(&user, "email = ?", normalizeEmail(req.Email)).Error; err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	session := Session{
		SessionID: utils.GenerateUUID(),
		UserID:    user.UserID,
		ExpiresAt: time.Now().Add(SessionTTL),
	}
	if err := h.db.Create(&session).Error; err != nil {
		h.log.Error("Failed to create session", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	// Expired sessions for this user are no longer useful.
	h.db.Where("user_id = ? AND expires_at < ?", user.UserID, time.Now()).Delete(&Session{})

	http.SetCookie(w, h.sessionCookie(session.SessionID, session.ExpiresAt))
	httputil.WriteJSON(w, http.StatusOK, userResponse{UserID: user.UserID, Email: user.Email, Role: user.Role})
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Couldn't find cookie")
		return
	}
	if err := h.db.Delete(&Session{}, "session_id = ?", cookie.Value).Error; err != nil {
		h.log.Error("Failed to delete session", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	expired := h.sessionCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	http.SetCookie(w, expired)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "Not logged in")
		return
	}

	var user User
	err := h.db.First(&user, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "Couldn't find user")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userResponse{UserID: user.UserID, Email: user.Email, Role: user.Role})
}

func (h *Handler) sessionCookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if h.secureCookies {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
