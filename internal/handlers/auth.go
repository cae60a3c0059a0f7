package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse/apiserver/internal/services"
	"github.com/gatehouse/apiserver/internal/store"
	"github.com/gatehouse/apiserver/internal/token"
	"github.com/gatehouse/apiserver/types"
)

const dateOfBirthLayout = "2006-01-02"

// AuthHandler provides the JSON authentication endpoints.
type AuthHandler struct {
	authService *services.AuthService
	logger      *slog.Logger
	devMode     bool
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
// devMode controls whether unexpected errors echo their detail to the client.
func NewAuthHandler(authService *services.AuthService, logger *slog.Logger, devMode bool) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		logger:      logger,
		devMode:     devMode,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, authService *services.AuthService, logger *slog.Logger, devMode bool) {
	handler := NewAuthHandler(authService, logger, devMode)

	r.Post("/signup", handler.Signup)
	r.Post("/signin", handler.Signin)
	r.Get("/verify", handler.Verify)
	r.Post("/google-signup", handler.GoogleSignup)
	r.Post("/google-signin", handler.GoogleSignin)
}

type SignupRequest struct {
	FullName    string `json:"fullName"`
	DateOfBirth string `json:"dateOfBirth"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string     `json:"message"`
	Success bool       `json:"success"`
	Token   string     `json:"token"`
	User    types.View `json:"user"`
}

type VerifyResponse struct {
	Message string     `json:"message"`
	Success bool       `json:"success"`
	User    types.View `json:"user"`
}

// ErrorResponse is the uniform failure body across all auth endpoints.
type ErrorResponse struct {
	Message       string          `json:"message"`
	Success       bool            `json:"success"`
	MissingFields map[string]bool `json:"missing_fields,omitempty"`
	Expired       bool            `json:"expired,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// Signup creates a new account and returns its first session token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.DateOfBirth = strings.TrimSpace(req.DateOfBirth)
	req.Email = strings.TrimSpace(req.Email)

	if req.FullName == "" || req.DateOfBirth == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "All fields are required",
			MissingFields: map[string]bool{
				"fullName":    req.FullName == "",
				"dateOfBirth": req.DateOfBirth == "",
				"email":       req.Email == "",
				"password":    req.Password == "",
			},
		})
		return
	}

	dateOfBirth, err := time.Parse(dateOfBirthLayout, req.DateOfBirth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date of birth")
		return
	}

	user, tok, err := h.authService.Register(r.Context(), req.FullName, dateOfBirth, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, services.ErrMissingField):
			writeError(w, http.StatusBadRequest, "All fields are required")
		default:
			h.logger.Error("signup", slog.Any("error", err))
			h.writeInternalError(w, "Something went wrong", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "User created successfully",
		Success: true,
		Token:   tok,
		User:    user.View(),
	})
}

// Signin verifies credentials and returns a fresh session token.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "Email and password are required",
			MissingFields: map[string]bool{
				"email":    req.Email == "",
				"password": req.Password == "",
			},
		})
		return
	}

	user, tok, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		// One message for unknown email and wrong password alike.
		case errors.Is(err, services.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, services.ErrMissingField):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		default:
			h.logger.Error("signin", slog.Any("error", err))
			h.writeInternalError(w, "Something went wrong", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Sign in successful",
		Success: true,
		Token:   tok,
		User:    user.View(),
	})
}

// Verify validates the bearer token and returns the current account view.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	raw, err := bearerToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	user, err := h.authService.ResolveSession(r.Context(), raw)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			h.writeVerifyFailure(w, err)
			return
		}
		h.logger.Error("verify token", slog.Any("error", err))
		h.writeInternalError(w, "Token verification failed", err)
		return
	}

	writeJSON(w, http.StatusOK, VerifyResponse{
		Message: "Token verified successfully",
		Success: true,
		User:    user.View(),
	})
}

// GoogleSignup is a reserved extension point for Google OAuth registration.
func (h *AuthHandler) GoogleSignup(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, "Google signup not implemented yet")
}

// GoogleSignin is a reserved extension point for Google OAuth login.
func (h *AuthHandler) GoogleSignin(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, "Google signin not implemented yet")
}

// writeVerifyFailure maps each verifier rejection reason to its own 401
// message; the category stays visible while the status is uniform.
func (h *AuthHandler) writeVerifyFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, token.ErrExpired):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "Token has expired", Expired: true})
	case errors.Is(err, token.ErrNotYetValid):
		writeError(w, http.StatusUnauthorized, "Token not active yet")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, "Invalid token - user not found")
	default:
		// Malformed structure and bad signature collapse to one message.
		writeError(w, http.StatusUnauthorized, "Invalid token format")
	}
}

func (h *AuthHandler) writeInternalError(w http.ResponseWriter, message string, err error) {
	resp := ErrorResponse{Message: message}
	if h.devMode && err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}
