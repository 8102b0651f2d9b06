package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/pkg/response"
)

const (
	msgFamilyFieldsRequired = "Name, Relation and Age are required"
	msgFamilyMemberNotFound = "Family member not found"
)

type FamilyService interface {
	AddFamilyMember(ctx context.Context, citizenID uuid.UUID, req domain.AddFamilyMemberRequest) (*domain.FamilyMember, error)
	ListFamilyMembers(ctx context.Context, citizenID uuid.UUID) ([]*domain.FamilyMember, error)
	RemoveFamilyMember(ctx context.Context, citizenID, memberID uuid.UUID) error
}

// FamilyHandler serves the logged-in citizen's own family directory.
type FamilyHandler struct {
	service   FamilyService
	validator *validator.Validate
}

func NewFamilyHandler(service FamilyService) *FamilyHandler {
	return &FamilyHandler{service: service, validator: newValidator()}
}

// AddFamilyMember handles POST /api/family
func (h *FamilyHandler) AddFamilyMember(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		response.Unauthorized(w, msgNoToken)
		return
	}

	var req domain.AddFamilyMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON payload")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, familyValidationMessage(err))
		return
	}

	member, err := h.service.AddFamilyMember(r.Context(), p.ID, req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, member)
}

// ListFamilyMembers handles GET /api/family
func (h *FamilyHandler) ListFamilyMembers(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		response.Unauthorized(w, msgNoToken)
		return
	}

	members, err := h.service.ListFamilyMembers(r.Context(), p.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, members)
}

// DeleteFamilyMember handles DELETE /api/family/{id}
func (h *FamilyHandler) DeleteFamilyMember(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		response.Unauthorized(w, msgNoToken)
		return
	}

	memberID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		// A malformed id cannot name a stored member.
		response.NotFound(w, msgFamilyMemberNotFound)
		return
	}

	if err := h.service.RemoveFamilyMember(r.Context(), p.ID, memberID); err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, http.StatusOK, "Family member removed")
}

func familyValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "age" && fe.Tag() != "required" {
				return "age must be between 1 and 150"
			}
		}
	}
	return msgFamilyFieldsRequired
}
