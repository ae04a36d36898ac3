package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel/internal/auth"
	"github.com/prn-tf/sentinel/internal/service"
)

// DefaultMaxBodySize bounds request bodies when no limit is configured.
const DefaultMaxBodySize int64 = 1 << 20

// AuthHandler serves the login, register and identity endpoints.
type AuthHandler struct {
	authService *service.AuthService
	maxBodySize int64
	logger      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, maxBodySize int64, logger zerolog.Logger) *AuthHandler {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &AuthHandler{
		authService: authService,
		maxBodySize: maxBodySize,
		logger:      logger.With().Str("handler", "auth").Logger(),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type identityResponse struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// decodeJSON reads a bounded JSON body into dst.
func (h *AuthHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("invalid request body")
		writeJSON(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	output, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Username: output.Username,
		Token:    output.Token,
	})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msgRegistered})
}

// Me handles GET /api/auth/me and echoes the authenticated principal.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		// Only reachable when the route is mounted without the gate.
		w.Header().Set(auth.WWWAuthenticateHeader, auth.BearerScheme)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, identityResponse{
		UserID:    principal.UserID.String(),
		Username:  principal.Username,
		TokenID:   principal.TokenID,
		ExpiresAt: principal.ExpiresAt.UTC(),
	})
}
