package adaptor

import (
	"net/http"
	"net/url"
	"strings"

	"drone-delivery/internal/dto/request"
	"drone-delivery/internal/usecase"
	"drone-delivery/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service     usecase.AuthService
	frontendURL string
	log         *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, frontendURL string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:     service,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log.With(zap.String("handler", "auth")),
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "signup")
		return
	}

	utils.ResponseCreated(w, "User registered successfully", resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	user, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", user)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := utils.GetClaimsFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.service.Logout(r.Context(), claims); err != nil {
		handleServiceError(w, h.log, err, "logout")
		return
	}

	utils.ResponseSuccess(w, "Logout successful", nil)
}

// GoogleLogin handles GET /api/auth/google?role=
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	target, err := h.service.GoogleLoginURL(r.URL.Query().Get("role"))
	if err != nil {
		handleServiceError(w, h.log, err, "start google login")
		return
	}

	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/auth/google/callback. Success hands the
// token to the frontend, failure sends the browser back with an error code.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if oauthErr := query.Get("error"); oauthErr != "" {
		h.log.Warn("Google login declined", zap.String("error", oauthErr))
		h.redirectFrontend(w, r, url.Values{"error": {oauthErr}})
		return
	}

	resp, err := h.service.GoogleCallback(r.Context(), query.Get("code"), query.Get("state"))
	if err != nil {
		h.log.Warn("Google callback failed", zap.Error(err))
		h.redirectFrontend(w, r, url.Values{"error": {"authentication_failed"}})
		return
	}

	h.redirectFrontend(w, r, url.Values{"token": {resp.Token}})
}

func (h *AuthHandler) redirectFrontend(w http.ResponseWriter, r *http.Request, params url.Values) {
	target := h.frontendURL + "/auth/google/callback?" + params.Encode()
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
