package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/visit-tracker/internal"
	"github.com/frahmantamala/visit-tracker/internal/transport"
	"github.com/frahmantamala/visit-tracker/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserByID(id string) (*User, error)
	ChangePassword(user *User, dto ChangePasswordDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err, "email", dto.Email)
		if appErr, ok := internal.IsAppError(err); ok {
			h.WriteMessage(w, appErr.StatusCode, appErr.Message)
			return
		}
		h.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Error("token refresh failed", "error", err)
		if appErr, ok := internal.IsAppError(err); ok {
			h.WriteMessage(w, appErr.StatusCode, appErr.Message)
			return
		}
		h.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the current user's profile, password-change flag included
// so clients know whether to force the change-password prompt.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to update password"})
		return
	}

	if err := h.Service.ChangePassword(user, dto); err != nil {
		h.Logger.Error("ChangePassword: service error", "error", err, "user_id", user.ID)
		if appErr, ok := internal.IsAppError(err); ok {
			h.WriteMessage(w, appErr.StatusCode, appErr.Message)
			return
		}
		h.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to update password"})
		return
	}

	h.WriteMessage(w, http.StatusOK, "Password updated successfully")
}

// AuthMiddleware resolves the bearer token to a full user record and
// injects it into the request context. Every failure mode is the same
// uniform 401; the response never says whether the token was missing,
// malformed or expired.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("auth middleware: token validation failed", "error", err)
			h.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user, err := h.Service.GetUserByID(claims.UserID)
		if err != nil || user == nil {
			h.Logger.Warn("auth middleware: user lookup failed", "user_id", claims.UserID, "error", err)
			h.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}
