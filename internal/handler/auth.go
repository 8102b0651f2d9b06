package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/segyhp/membership-fees/internal/domain"
	customError "github.com/segyhp/membership-fees/pkg/errors"
	"github.com/segyhp/membership-fees/pkg/response"
)

type AuthService interface {
	LoginAdmin(ctx context.Context, username, password string) (*domain.AdminLoginResponse, error)
	LoginCitizen(ctx context.Context, identifier, password string) (*domain.CitizenLoginResponse, error)
}

type AuthHandler struct {
	service   AuthService
	validator *validator.Validate
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: newValidator(),
	}
}

// AdminLogin handles POST /api/auth/admin/login
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON payload")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	resp, err := h.service.LoginAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, customError.ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid username or password")
			return
		}
		response.FromError(w, err)
		return
	}

	response.Success(w, resp)
}

// CitizenLogin handles POST /api/auth/citizen/login. The identifier is either
// the membership ID or the mobile number.
func (h *AuthHandler) CitizenLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.CitizenLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON payload")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	resp, err := h.service.LoginCitizen(r.Context(), req.Identifier, req.Password)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, resp)
}
