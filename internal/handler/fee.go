package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/internal/export"
	"github.com/segyhp/membership-fees/pkg/response"
	"github.com/segyhp/membership-fees/pkg/utils"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LedgerService is what the fee endpoints need from the ledger layer.
type LedgerService interface {
	InitializeLedger(ctx context.Context, citizenID uuid.UUID, year int, monthlyAmount decimal.Decimal) (*domain.Ledger, error)
	SetPaymentStatus(ctx context.Context, citizenID uuid.UUID, monthLabel string, paid bool) (*domain.PaymentSlot, error)
	GetLedgersForCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.Ledger, error)
	GetAllLedgers(ctx context.Context, year *int) ([]*domain.LedgerWithCitizen, error)
}

type FeeHandler struct {
	service   LedgerService
	validator *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

func NewFeeHandler(service LedgerService, logger *slog.Logger) *FeeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeeHandler{
		service:   service,
		validator: newValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// InitializeFees handles POST /api/fees/initialize
func (h *FeeHandler) InitializeFees(w http.ResponseWriter, r *http.Request) {
	var req domain.InitializeLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON payload")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}
	if req.MonthlyAmount.IsZero() {
		response.BadRequest(w, msgMissingFields)
		return
	}

	citizenID, _ := uuid.Parse(req.CitizenID)
	ledger, err := h.service.InitializeLedger(r.Context(), citizenID, req.Year, req.MonthlyAmount)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, ledger)
}

// UpdateFeeStatus handles PUT /api/fees/status
func (h *FeeHandler) UpdateFeeStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON payload")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	citizenID, _ := uuid.Parse(req.CitizenID)
	if _, err := h.service.SetPaymentStatus(r.Context(), citizenID, req.MonthYear, *req.Paid); err != nil {
		response.FromError(w, err)
		return
	}

	state := "Unpaid"
	if *req.Paid {
		state = "Paid"
	}
	response.Message(w, http.StatusOK, fmt.Sprintf("Payment for %s marked as %s", req.MonthYear, state))
}

// GetAllFees handles GET /api/fees/all?year=
func (h *FeeHandler) GetAllFees(w http.ResponseWriter, r *http.Request) {
	year, ok, err := utils.ParseYear(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "Invalid year")
		return
	}

	var filter *int
	if ok {
		filter = &year
	}

	ledgers, err := h.service.GetAllLedgers(r.Context(), filter)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, ledgers)
}

// GetMyFees handles GET /api/fees/my-fees for the authenticated citizen.
func (h *FeeHandler) GetMyFees(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		response.Unauthorized(w, msgNoToken)
		return
	}

	ledgers, err := h.service.GetLedgersForCitizen(r.Context(), principal.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, ledgers)
}

// GetFees handles GET /api/fees/{citizenId}
func (h *FeeHandler) GetFees(w http.ResponseWriter, r *http.Request) {
	citizenID, err := uuid.Parse(mux.Vars(r)["citizenId"])
	if err != nil {
		response.BadRequest(w, "Invalid citizen id")
		return
	}

	ledgers, err := h.service.GetLedgersForCitizen(r.Context(), citizenID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, ledgers)
}

// ExportFees handles GET /api/fees/export?year= and streams an xlsx grid.
func (h *FeeHandler) ExportFees(w http.ResponseWriter, r *http.Request) {
	year, ok, err := utils.ParseYear(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "Invalid year")
		return
	}
	if !ok {
		year = h.now().Year()
	}

	ledgers, err := h.service.GetAllLedgers(r.Context(), &year)
	if err != nil {
		response.FromError(w, err)
		return
	}

	body, err := export.FeeGridXLSX(year, ledgers)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render fee grid", "year", year, "error", err)
		response.InternalServerError(w, "Failed to export fees")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="fees-%d.xlsx"`, year))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write fee grid", "error", err)
	}
}
