package httptransport

import (
	"context"
	"net/http"
	"strings"

	"qualitivate/internal/domains"
	"qualitivate/internal/httpx"
)

type AuthHandlers struct {
	service AuthServices
}

type AuthServices interface {
	Login(ctx context.Context, email, password string) (string, string, error)
	Register(ctx context.Context, actor domains.Actor, userData domains.UserCreate) (domains.User, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	Me(ctx context.Context, token string) (domains.User, error)
}

func NewAuthHandlers(service AuthServices) *AuthHandlers {
	return &AuthHandlers{service: service}
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	loginData, err := httpx.ReadBody[LoginData](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.service.Login(r.Context(), loginData.Email, loginData.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
}

// Register creates a user below or at the caller's role ceiling. Runs
// behind the actor middleware.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.ActorFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userData, err := httpx.ReadBody[domains.UserCreate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), actor, userData)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	body, err := httpx.ReadBody[RefreshRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.service.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.Me(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
