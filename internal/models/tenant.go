package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant status values. Only active tenants participate in the
// room-occupancy uniqueness check.
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
	TenantStatusMovedOut = "moved_out"
)

type Tenant struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	OwnerID       uuid.UUID  `json:"ownerId" db:"owner_id"`
	Name          string     `json:"name" db:"name"`
	Email         *string    `json:"email,omitempty" db:"email"`
	Phone         string     `json:"phone" db:"phone"`
	RoomNumber    string     `json:"roomNumber" db:"room_number"`
	RentAmount    float64    `json:"rentAmount" db:"rent_amount"`
	DepositAmount float64    `json:"depositAmount" db:"deposit_amount"`
	JoinDate      time.Time  `json:"joinDate" db:"join_date"`
	LeaseEndDate  *time.Time `json:"leaseEndDate,omitempty" db:"lease_end_date"`
	Status        string     `json:"status" db:"status"`
	Address       *string    `json:"address,omitempty" db:"address"`

	EmergencyName     *string `json:"emergencyName,omitempty" db:"emergency_name"`
	EmergencyPhone    *string `json:"emergencyPhone,omitempty" db:"emergency_phone"`
	EmergencyRelation *string `json:"emergencyRelation,omitempty" db:"emergency_relation"`

	IDProofType   *string `json:"idProofType,omitempty" db:"id_proof_type"`
	IDProofNumber *string `json:"idProofNumber,omitempty" db:"id_proof_number"`

	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// TenantStats aggregates the owner's tenant records in a single pass.
type TenantStats struct {
	TotalTenants    int     `json:"totalTenants"`
	ActiveTenants   int     `json:"activeTenants"`
	InactiveTenants int     `json:"inactiveTenants"`
	MovedOutTenants int     `json:"movedOutTenants"`
	TotalRentAmount float64 `json:"totalRentAmount"`
	AverageRent     float64 `json:"averageRent"`
}
