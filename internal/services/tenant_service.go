package services

import (
	"context"
	"math"
	"strings"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/google/uuid"
)

// TenantService is the tenant registry: owner-scoped CRUD with field
// validation and the active-room occupancy invariant.
type TenantService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, ownerID, tenantID uuid.UUID) (*models.Tenant, error)
	Update(ctx context.Context, ownerID, tenantID uuid.UUID, patch *UpdateTenantPatch) (*models.Tenant, error)
	Delete(ctx context.Context, ownerID, tenantID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, filter repositories.TenantFilter, page, limit int) ([]*models.Tenant, int, error)
	Stats(ctx context.Context, ownerID uuid.UUID) (*models.TenantStats, error)
}

type CreateTenantRequest struct {
	Name          string     `json:"name"`
	Email         *string    `json:"email"`
	Phone         string     `json:"phone"`
	RoomNumber    string     `json:"roomNumber"`
	RentAmount    float64    `json:"rentAmount"`
	DepositAmount *float64   `json:"depositAmount"`
	JoinDate      *time.Time `json:"joinDate"`
	LeaseEndDate  *time.Time `json:"leaseEndDate"`
	Status        *string    `json:"status"`
	Address       *string    `json:"address"`

	EmergencyName     *string `json:"emergencyName"`
	EmergencyPhone    *string `json:"emergencyPhone"`
	EmergencyRelation *string `json:"emergencyRelation"`

	IDProofType   *string `json:"idProofType"`
	IDProofNumber *string `json:"idProofNumber"`

	Notes *string `json:"notes"`
}

// UpdateTenantPatch is the explicit allow-list of patchable fields. Unknown
// request fields never reach the model.
type UpdateTenantPatch struct {
	Name          *string    `json:"name"`
	Email         *string    `json:"email"`
	Phone         *string    `json:"phone"`
	RoomNumber    *string    `json:"roomNumber"`
	RentAmount    *float64   `json:"rentAmount"`
	DepositAmount *float64   `json:"depositAmount"`
	JoinDate      *time.Time `json:"joinDate"`
	LeaseEndDate  *time.Time `json:"leaseEndDate"`
	Status        *string    `json:"status"`
	Address       *string    `json:"address"`

	EmergencyName     *string `json:"emergencyName"`
	EmergencyPhone    *string `json:"emergencyPhone"`
	EmergencyRelation *string `json:"emergencyRelation"`

	IDProofType   *string `json:"idProofType"`
	IDProofNumber *string `json:"idProofNumber"`

	Notes *string `json:"notes"`
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
}

func NewTenantService(tenantRepo repositories.TenantRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo}
}

func validTenantStatus(status string) bool {
	switch status {
	case models.TenantStatusActive, models.TenantStatusInactive, models.TenantStatusMovedOut:
		return true
	}
	return false
}

func (s *tenantService) Create(ctx context.Context, ownerID uuid.UUID, req *CreateTenantRequest) (*models.Tenant, error) {
	// Validation order: name, phone, charges.
	if err := common.ValidateName(req.Name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidatePhone(req.Phone, "phone"); err != nil {
		return nil, err
	}
	if err := common.ValidateCharge(req.RentAmount, "rentAmount"); err != nil {
		return nil, err
	}
	if req.DepositAmount != nil {
		if err := common.ValidateCharge(*req.DepositAmount, "depositAmount"); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(req.RoomNumber) == "" {
		return nil, common.NewValidationError("roomNumber", "Room number is required")
	}
	if err := common.ValidateNotes(req.Notes, "notes", 500); err != nil {
		return nil, err
	}

	status := models.TenantStatusActive
	if req.Status != nil {
		if !validTenantStatus(*req.Status) {
			return nil, common.NewValidationError("status", "Status must be one of: active, inactive, moved_out")
		}
		status = *req.Status
	}

	if status == models.TenantStatusActive {
		occupant, err := s.tenantRepo.FindActiveByRoom(ctx, ownerID, req.RoomNumber, uuid.Nil)
		if err != nil {
			return nil, common.NewDependencyError("Error checking room availability", err)
		}
		if occupant != nil {
			return nil, common.NewConflictError("Room number already occupied by an active tenant")
		}
	}

	joinDate := time.Now()
	if req.JoinDate != nil {
		joinDate = *req.JoinDate
	}

	tenant := &models.Tenant{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Name:              strings.TrimSpace(req.Name),
		Email:             req.Email,
		Phone:             strings.TrimSpace(req.Phone),
		RoomNumber:        strings.TrimSpace(req.RoomNumber),
		RentAmount:        req.RentAmount,
		DepositAmount:     common.SafeFloat64(req.DepositAmount),
		JoinDate:          joinDate,
		LeaseEndDate:      req.LeaseEndDate,
		Status:            status,
		Address:           req.Address,
		EmergencyName:     req.EmergencyName,
		EmergencyPhone:    req.EmergencyPhone,
		EmergencyRelation: req.EmergencyRelation,
		IDProofType:       req.IDProofType,
		IDProofNumber:     req.IDProofNumber,
		Notes:             req.Notes,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		if common.IsKind(err, common.KindConflict) {
			return nil, err
		}
		return nil, common.NewDependencyError("Error creating tenant", err)
	}

	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, ownerID, tenantID uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, ownerID, tenantID)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, common.NewNotFoundError("Tenant")
		}
		return nil, common.NewDependencyError("Error fetching tenant", err)
	}
	return tenant, nil
}

func (s *tenantService) Update(ctx context.Context, ownerID, tenantID uuid.UUID, patch *UpdateTenantPatch) (*models.Tenant, error) {
	// Field validations only apply to fields present in the patch.
	if patch.Name != nil {
		if err := common.ValidateName(*patch.Name, "name"); err != nil {
			return nil, err
		}
	}
	if patch.Phone != nil && *patch.Phone != "" {
		if err := common.ValidatePhone(*patch.Phone, "phone"); err != nil {
			return nil, err
		}
	}
	if patch.RentAmount != nil {
		if err := common.ValidateCharge(*patch.RentAmount, "rentAmount"); err != nil {
			return nil, err
		}
	}
	if patch.DepositAmount != nil {
		if err := common.ValidateCharge(*patch.DepositAmount, "depositAmount"); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil && !validTenantStatus(*patch.Status) {
		return nil, common.NewValidationError("status", "Status must be one of: active, inactive, moved_out")
	}
	if err := common.ValidateNotes(patch.Notes, "notes", 500); err != nil {
		return nil, err
	}

	tenant, err := s.GetByID(ctx, ownerID, tenantID)
	if err != nil {
		return nil, err
	}

	newRoom := tenant.RoomNumber
	if patch.RoomNumber != nil && strings.TrimSpace(*patch.RoomNumber) != "" {
		newRoom = strings.TrimSpace(*patch.RoomNumber)
	}
	newStatus := tenant.Status
	if patch.Status != nil {
		newStatus = *patch.Status
	}

	// Re-check occupancy when the tenant would hold a (possibly new) room
	// as active, excluding itself.
	if newStatus == models.TenantStatusActive && (newRoom != tenant.RoomNumber || newStatus != tenant.Status) {
		occupant, err := s.tenantRepo.FindActiveByRoom(ctx, ownerID, newRoom, tenant.ID)
		if err != nil {
			return nil, common.NewDependencyError("Error checking room availability", err)
		}
		if occupant != nil {
			return nil, common.NewConflictError("Room number already occupied by another active tenant")
		}
	}

	tenant.RoomNumber = newRoom
	tenant.Status = newStatus
	if patch.Name != nil {
		tenant.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		tenant.Email = patch.Email
	}
	if patch.Phone != nil && *patch.Phone != "" {
		tenant.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.RentAmount != nil {
		tenant.RentAmount = *patch.RentAmount
	}
	if patch.DepositAmount != nil {
		tenant.DepositAmount = *patch.DepositAmount
	}
	if patch.JoinDate != nil {
		tenant.JoinDate = *patch.JoinDate
	}
	if patch.LeaseEndDate != nil {
		tenant.LeaseEndDate = patch.LeaseEndDate
	}
	if patch.Address != nil {
		tenant.Address = patch.Address
	}
	if patch.EmergencyName != nil {
		tenant.EmergencyName = patch.EmergencyName
	}
	if patch.EmergencyPhone != nil {
		tenant.EmergencyPhone = patch.EmergencyPhone
	}
	if patch.EmergencyRelation != nil {
		tenant.EmergencyRelation = patch.EmergencyRelation
	}
	if patch.IDProofType != nil {
		tenant.IDProofType = patch.IDProofType
	}
	if patch.IDProofNumber != nil {
		tenant.IDProofNumber = patch.IDProofNumber
	}
	if patch.Notes != nil {
		tenant.Notes = patch.Notes
	}
	tenant.UpdatedAt = time.Now()

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		if common.IsKind(err, common.KindConflict) {
			return nil, err
		}
		return nil, common.NewDependencyError("Error updating tenant", err)
	}

	return tenant, nil
}

func (s *tenantService) Delete(ctx context.Context, ownerID, tenantID uuid.UUID) error {
	deleted, err := s.tenantRepo.Delete(ctx, ownerID, tenantID)
	if err != nil {
		return common.NewDependencyError("Error deleting tenant", err)
	}
	if !deleted {
		return common.NewNotFoundError("Tenant")
	}
	return nil
}

func (s *tenantService) List(ctx context.Context, ownerID uuid.UUID, filter repositories.TenantFilter, page, limit int) ([]*models.Tenant, int, error) {
	_, limit, offset := common.NormalizePagination(page, limit)

	tenants, err := s.tenantRepo.List(ctx, ownerID, filter, limit, offset)
	if err != nil {
		return nil, 0, common.NewDependencyError("Error fetching tenants", err)
	}
	total, err := s.tenantRepo.Count(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, common.NewDependencyError("Error counting tenants", err)
	}
	return tenants, total, nil
}

// Stats walks the owner's tenants once. AverageRent is the rounded mean of
// active tenants' rent, zero when there are none.
func (s *tenantService) Stats(ctx context.Context, ownerID uuid.UUID) (*models.TenantStats, error) {
	tenants, err := s.tenantRepo.ListAll(ctx, ownerID)
	if err != nil {
		return nil, common.NewDependencyError("Error fetching tenant statistics", err)
	}

	stats := &models.TenantStats{TotalTenants: len(tenants)}
	for _, t := range tenants {
		switch t.Status {
		case models.TenantStatusActive:
			stats.ActiveTenants++
			stats.TotalRentAmount += t.RentAmount
		case models.TenantStatusInactive:
			stats.InactiveTenants++
		case models.TenantStatusMovedOut:
			stats.MovedOutTenants++
		}
	}
	if stats.ActiveTenants > 0 {
		stats.AverageRent = math.Round(stats.TotalRentAmount / float64(stats.ActiveTenants))
	}
	return stats, nil
}
