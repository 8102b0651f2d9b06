package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for requests and responses

type InitializeLedgerRequest struct {
	CitizenID     string          `json:"citizenId" validate:"required,uuid"`
	Year          int             `json:"year" validate:"required,min=1900,max=9999"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
}

type PaymentStatusRequest struct {
	CitizenID string `json:"citizenId" validate:"required,uuid"`
	MonthYear string `json:"monthYear" validate:"required"`
	Paid      *bool  `json:"paid" validate:"required"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CitizenLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type AdminLoginResponse struct {
	ID       uuid.UUID `json:"_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Token    string    `json:"token"`
}

type CitizenLoginResponse struct {
	ID           uuid.UUID `json:"_id"`
	Name         string    `json:"name"`
	MembershipID string    `json:"membershipId"`
	Role         string    `json:"role"`
	Token        string    `json:"token"`
}

// NewCitizen carries the fields needed to register a citizen from the CLI.
type NewCitizen struct {
	MembershipID string
	Mobile       string
	Name         string
	Address      string
	BloodGroup   string
	Password     string
}

// AddFamilyMemberRequest is the body of POST /api/family and the input of
// feectl add-family-member.
type AddFamilyMemberRequest struct {
	Name          string `json:"name" validate:"required"`
	Relation      string `json:"relation" validate:"required"`
	Age           int    `json:"age" validate:"required,min=1,max=150"`
	MaritalStatus string `json:"maritalStatus"`
	SpouseName    string `json:"spouseName"`
	BloodGroup    string `json:"bloodGroup"`
	Studying      string `json:"studying"`
	Working       string `json:"working"`
}
