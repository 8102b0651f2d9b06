package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin   = "admin"
	RoleCitizen = "citizen"
)

// Citizen is a registered household head. Only the fields the fee ledger and
// login flows need are modelled here.
type Citizen struct {
	ID           uuid.UUID `json:"_id" db:"id"`
	MembershipID string    `json:"membershipId" db:"membership_id"`
	Mobile       string    `json:"mobile" db:"mobile"`
	Name         string    `json:"name" db:"name"`
	Address      string    `json:"address" db:"address"`
	BloodGroup   *string   `json:"bloodGroup,omitempty" db:"blood_group"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Admin is a back-office operator account.
type Admin struct {
	ID           uuid.UUID `json:"_id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// FamilyMember is a dependant registered under a citizen. Counted on the
// dashboard as part of the Heads/Members split.
type FamilyMember struct {
	ID            uuid.UUID `json:"_id" db:"id"`
	CitizenID     uuid.UUID `json:"citizenId" db:"citizen_id"`
	Name          string    `json:"name" db:"name"`
	Relation      string    `json:"relation" db:"relation"`
	Age           int       `json:"age" db:"age"`
	MaritalStatus *string   `json:"maritalStatus,omitempty" db:"marital_status"`
	SpouseName    *string   `json:"spouseName,omitempty" db:"spouse_name"`
	BloodGroup    *string   `json:"bloodGroup,omitempty" db:"blood_group"`
	Studying      *string   `json:"studying,omitempty" db:"studying"`
	Working       *string   `json:"working,omitempty" db:"working"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}
