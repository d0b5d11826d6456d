package server

import (
	"errors"
	"net/http"

	"melodify/core/auth"
	"melodify/logger"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resendRequest struct {
	Email string `json:"email"`
}

// providerError maps identity provider rejections to 400 with the provider
// message; anything else is a 500.
func providerError(err error) *APIError {
	switch {
	case errors.Is(err, auth.ErrUserAlreadyExists),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrEmailNotConfirmed),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidToken):
		return badRequest(err.Error())
	default:
		return internalError(err)
	}
}

func (h *APIHandler) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, badRequest("Email and password are required"))
		return
	}

	user, err := h.auth.SignUp(r.Context(), auth.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		logger.Warn("[Signup] 注册失败", logger.ErrorField(err))
		writeError(w, r, providerError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User created successfully. Please check your email to confirm your account.",
		"user":    user,
	})
}

func (h *APIHandler) ResendVerificationHandler(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if req.Email == "" {
		writeError(w, r, badRequest("Email is required"))
		return
	}
	if err := h.auth.ResendVerification(r.Context(), req.Email); err != nil {
		writeError(w, r, providerError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification email resent"})
}

// VerifyEmailHandler is the target of the link sent by email.
func (h *APIHandler) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, r, badRequest("Missing verification token"))
		return
	}
	user, err := h.auth.VerifyEmail(r.Context(), token)
	if err != nil {
		writeError(w, r, providerError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Email confirmed",
		"user":    user,
	})
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, badRequest("Email and password are required"))
		return
	}

	session, user, err := h.auth.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("[Login] 登录失败", logger.String("email", req.Email), logger.ErrorField(err))
		writeError(w, r, providerError(err))
		return
	}

	logger.Info("[Login] 登录成功", logger.String("user_id", user.ID))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"session": session,
		"user":    user,
	})
}

func (h *APIHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, unauthorized("Missing auth token"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// LogoutHandler revokes the presented token's session, or every session of
// the user with ?scope=global.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := TokenFromContext(r.Context())
	if !ok {
		writeError(w, r, unauthorized("Missing auth token"))
		return
	}

	scope := auth.ScopeLocal
	switch r.URL.Query().Get("scope") {
	case "", string(auth.ScopeLocal):
	case string(auth.ScopeGlobal):
		scope = auth.ScopeGlobal
	default:
		writeError(w, r, badRequest("scope must be local or global"))
		return
	}

	if err := h.auth.SignOut(r.Context(), token, scope); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, r, unauthorized("Invalid token"))
			return
		}
		writeError(w, r, internalError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *APIHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, unauthorized("Missing auth token"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": map[string]string{"email": user.Email},
	})
}
