package handler

import (
	"net/http"

	"clinic-scheduler/internal/delivery/http/middleware"
	"clinic-scheduler/internal/usecase"
	"clinic-scheduler/pkg/response"
)

// AuthHandler exposes session endpoints. Tokens are minted by the
// operator CLI; the API only revokes them.
type AuthHandler struct {
	sessionUsecase usecase.SessionUsecase
}

func NewAuthHandler(sessionUsecase usecase.SessionUsecase) *AuthHandler {
	return &AuthHandler{
		sessionUsecase: sessionUsecase,
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	if err := h.sessionUsecase.Logout(r.Context(), tokenID); err != nil {
		writeError(w, err, "Failed to logout")
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}
