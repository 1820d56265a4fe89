package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamtunes/internal/models"
	"github.com/desertthunder/streamtunes/internal/repositories"
	"github.com/desertthunder/streamtunes/internal/shared"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthHandler implements account signup, login and Google sign-in.
type AuthHandler struct {
	users    *repositories.UserRepository
	secret   string
	tokenTTL time.Duration
	google   *oauth2.Config
	logger   *log.Logger
}

// NewAuthHandler creates an auth handler. The Google config may be nil if
// social sign-in is not configured.
func NewAuthHandler(users *repositories.UserRepository, cfg *shared.Config, logger *log.Logger) *AuthHandler {
	ttl := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	if ttl == 0 {
		ttl = 168 * time.Hour
	}

	var googleConf *oauth2.Config
	if cfg.Credentials.Google.ClientID != "" {
		googleConf = &oauth2.Config{
			ClientID:     cfg.Credentials.Google.ClientID,
			ClientSecret: cfg.Credentials.Google.ClientSecret,
			RedirectURL:  cfg.Credentials.Google.RedirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	return &AuthHandler{
		users:    users,
		secret:   cfg.Auth.JWTSecret,
		tokenTTL: ttl,
		google:   googleConf,
		logger:   logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// sessionResponse is the token + user payload returned by signup and login.
type sessionResponse struct {
	Token string          `json:"token"`
	User  models.UserView `json:"user"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Email and a password of at least 6 characters are required")
		return
	}

	if _, err := h.users.GetByEmail(req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "err", err)
		writeError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	user := models.NewUser(0, req.Email, req.Name)
	user.SetPasswordHash(string(hash))

	if err := h.users.Create(user); err != nil {
		h.logger.Error("failed to create user", "err", err)
		writeError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	h.respondWithSession(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.respondWithSession(w, http.StatusOK, user)
}

// Me handles GET /api/auth/me (requires authentication).
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(UserID(r))
	if err != nil {
		if errors.Is(err, shared.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to load user", "err", err)
		writeError(w, http.StatusInternalServerError, "Error fetching user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]models.UserView{"user": user.View()})
}

// GoogleBegin handles GET /api/auth/google: redirects to the consent screen.
func (h *AuthHandler) GoogleBegin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, http.StatusNotImplemented, "Google sign-in is not configured")
		return
	}

	state := shared.GenerateID()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   300,
	})

	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/auth/google/callback: exchanges the code,
// provisions the account on first sign-in and issues a session token.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, http.StatusNotImplemented, "Google sign-in is not configured")
		return
	}

	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	token, err := h.google.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error("google code exchange failed", "err", err)
		writeError(w, http.StatusUnauthorized, "Google authentication failed")
		return
	}

	info, err := h.fetchGoogleProfile(r, token)
	if err != nil {
		h.logger.Error("failed to fetch google profile", "err", err)
		writeError(w, http.StatusUnauthorized, "Google authentication failed")
		return
	}

	user, err := h.users.GetByEmail(info.Email)
	if errors.Is(err, shared.ErrUserNotFound) {
		user = models.NewUser(0, info.Email, info.Name)
		user.SetGoogleUser(true)
		user.SetProfilePicture(info.Picture)
		if err := h.users.Create(user); err != nil {
			h.logger.Error("failed to provision google user", "err", err)
			writeError(w, http.StatusInternalServerError, "Error creating user")
			return
		}
	} else if err != nil {
		h.logger.Error("failed to load user", "err", err)
		writeError(w, http.StatusInternalServerError, "Error fetching user")
		return
	}

	h.respondWithSession(w, http.StatusOK, user)
}

type googleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (h *AuthHandler) fetchGoogleProfile(r *http.Request, token *oauth2.Token) (*googleProfile, error) {
	client := h.google.Client(r.Context(), token)

	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("userinfo carried no email")
	}

	return &profile, nil
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, status int, user *models.User) {
	token, err := IssueToken(h.secret, user.ID(), h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to issue token", "err", err)
		writeError(w, http.StatusInternalServerError, "Error creating session")
		return
	}

	writeJSON(w, status, sessionResponse{Token: token, User: user.View()})
}
