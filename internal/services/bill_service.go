package services

import (
	"context"
	"strings"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/google/uuid"
)

// BillService is the billing engine: owner-scoped bill CRUD, total
// computation, the payment-status lifecycle, and aggregate statistics.
type BillService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req *CreateBillRequest) (*models.Bill, error)
	GetByID(ctx context.Context, ownerID, billID uuid.UUID) (*models.Bill, error)
	Update(ctx context.Context, ownerID, billID uuid.UUID, patch *UpdateBillPatch) (*models.Bill, error)
	UpdateStatus(ctx context.Context, ownerID, billID uuid.UUID, req *UpdateBillStatusRequest) (*models.Bill, error)
	Delete(ctx context.Context, ownerID, billID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, filter repositories.BillFilter, page, limit int) ([]*models.Bill, int, error)
	Stats(ctx context.Context, ownerID uuid.UUID) (*models.BillStats, error)
}

type CreateBillRequest struct {
	TenantID   *uuid.UUID `json:"tenantId"`
	TenantName string     `json:"tenantName"`
	RoomNumber string     `json:"roomNumber"`
	BillMonth  string     `json:"billMonth"`
	BillYear   int        `json:"billYear"`
	BillDate   *time.Time `json:"billDate"`
	DueDate    *time.Time `json:"dueDate"`

	RentAmount      float64  `json:"rentAmount"`
	ElectricityBill *float64 `json:"electricityBill"`
	WaterBill       *float64 `json:"waterBill"`
	MaintenanceFee  *float64 `json:"maintenanceFee"`
	OtherCharges    *float64 `json:"otherCharges"`
	Discount        *float64 `json:"discount"`

	// Explicit total wins over the computed formula.
	TotalAmount *float64 `json:"totalAmount"`

	Notes *string `json:"notes"`
}

// UpdateBillPatch is the explicit allow-list of patchable bill fields.
type UpdateBillPatch struct {
	TenantName *string    `json:"tenantName"`
	RoomNumber *string    `json:"roomNumber"`
	BillMonth  *string    `json:"billMonth"`
	BillYear   *int       `json:"billYear"`
	BillDate   *time.Time `json:"billDate"`
	DueDate    *time.Time `json:"dueDate"`

	RentAmount      *float64 `json:"rentAmount"`
	ElectricityBill *float64 `json:"electricityBill"`
	WaterBill       *float64 `json:"waterBill"`
	MaintenanceFee  *float64 `json:"maintenanceFee"`
	OtherCharges    *float64 `json:"otherCharges"`
	Discount        *float64 `json:"discount"`

	TotalAmount *float64 `json:"totalAmount"`

	Notes *string `json:"notes"`
}

type UpdateBillStatusRequest struct {
	PaymentStatus string     `json:"paymentStatus"`
	PaymentDate   *time.Time `json:"paymentDate"`
	PaymentMethod *string    `json:"paymentMethod"`
}

type billService struct {
	billRepo   repositories.BillRepository
	tenantRepo repositories.TenantRepository
}

func NewBillService(billRepo repositories.BillRepository, tenantRepo repositories.TenantRepository) BillService {
	return &billService{
		billRepo:   billRepo,
		tenantRepo: tenantRepo,
	}
}

// ComputeTotal applies the billing formula over the bill's charge fields.
func ComputeTotal(b *models.Bill) float64 {
	return b.RentAmount + b.ElectricityBill + b.WaterBill + b.MaintenanceFee + b.OtherCharges - b.Discount
}

// EvaluateOverdue derives the authoritative payment status: paid bills stay
// paid, anything unpaid past its due date is overdue, everything else keeps
// its stored status.
func EvaluateOverdue(b *models.Bill, now time.Time) string {
	if b.PaymentStatus == models.PaymentStatusPaid {
		return models.PaymentStatusPaid
	}
	if now.After(b.DueDate) {
		return models.PaymentStatusOverdue
	}
	return b.PaymentStatus
}

// applyOverdue writes the derived status back onto the bill. Called on every
// read and immediately before every persist so stored state converges.
func applyOverdue(b *models.Bill) {
	b.PaymentStatus = EvaluateOverdue(b, time.Now())
}

func validPaymentStatus(status string) bool {
	switch status {
	case models.PaymentStatusPaid, models.PaymentStatusPending, models.PaymentStatusOverdue:
		return true
	}
	return false
}

func validPaymentMethod(method string) bool {
	switch method {
	case models.PaymentMethodCash, models.PaymentMethodUPI, models.PaymentMethodBankTransfer, models.PaymentMethodCheque, models.PaymentMethodOnline:
		return true
	}
	return false
}

func (s *billService) validateCharges(rent, electricity, water, maintenance, other, discount float64) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"rentAmount", rent},
		{"electricityBill", electricity},
		{"waterBill", water},
		{"maintenanceFee", maintenance},
		{"otherCharges", other},
		{"discount", discount},
	}
	for _, f := range fields {
		if err := common.ValidateCharge(f.value, f.name); err != nil {
			return err
		}
	}
	return nil
}

func (s *billService) Create(ctx context.Context, ownerID uuid.UUID, req *CreateBillRequest) (*models.Bill, error) {
	if req.DueDate == nil {
		return nil, common.NewValidationError("dueDate", "Due date is required")
	}

	electricity := common.SafeFloat64(req.ElectricityBill)
	water := common.SafeFloat64(req.WaterBill)
	maintenance := common.SafeFloat64(req.MaintenanceFee)
	other := common.SafeFloat64(req.OtherCharges)
	discount := common.SafeFloat64(req.Discount)
	if err := s.validateCharges(req.RentAmount, electricity, water, maintenance, other, discount); err != nil {
		return nil, err
	}
	if err := common.ValidateNotes(req.Notes, "notes", 500); err != nil {
		return nil, err
	}

	tenantName := strings.TrimSpace(req.TenantName)
	roomNumber := strings.TrimSpace(req.RoomNumber)

	// Denormalize name and room from the tenant record when a reference is
	// supplied and the caller left them blank.
	if req.TenantID != nil {
		tenant, err := s.tenantRepo.GetByID(ctx, ownerID, *req.TenantID)
		if err != nil {
			if repositories.IsNoRows(err) {
				return nil, common.NewNotFoundError("Tenant")
			}
			return nil, common.NewDependencyError("Error fetching tenant for bill", err)
		}
		if tenantName == "" {
			tenantName = tenant.Name
		}
		if roomNumber == "" {
			roomNumber = tenant.RoomNumber
		}
	}

	if tenantName == "" {
		return nil, common.NewValidationError("tenantName", "Tenant name is required")
	}
	if roomNumber == "" {
		return nil, common.NewValidationError("roomNumber", "Room number is required")
	}

	billDate := time.Now()
	if req.BillDate != nil {
		billDate = *req.BillDate
	}

	bill := &models.Bill{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		TenantID:        req.TenantID,
		TenantName:      tenantName,
		RoomNumber:      roomNumber,
		BillMonth:       req.BillMonth,
		BillYear:        req.BillYear,
		BillDate:        billDate,
		DueDate:         *req.DueDate,
		RentAmount:      req.RentAmount,
		ElectricityBill: electricity,
		WaterBill:       water,
		MaintenanceFee:  maintenance,
		OtherCharges:    other,
		Discount:        discount,
		PaymentStatus:   models.PaymentStatusPending,
		Notes:           req.Notes,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if req.TotalAmount != nil {
		bill.TotalAmount = *req.TotalAmount
	} else {
		bill.TotalAmount = ComputeTotal(bill)
	}

	applyOverdue(bill)

	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, common.NewDependencyError("Error creating bill", err)
	}
	return bill, nil
}

func (s *billService) GetByID(ctx context.Context, ownerID, billID uuid.UUID) (*models.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, ownerID, billID)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, common.NewNotFoundError("Bill")
		}
		return nil, common.NewDependencyError("Error fetching bill", err)
	}
	applyOverdue(bill)
	return bill, nil
}

func (s *billService) Update(ctx context.Context, ownerID, billID uuid.UUID, patch *UpdateBillPatch) (*models.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, ownerID, billID)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, common.NewNotFoundError("Bill")
		}
		return nil, common.NewDependencyError("Error fetching bill", err)
	}

	if err := common.ValidateNotes(patch.Notes, "notes", 500); err != nil {
		return nil, err
	}

	chargesChanged := false
	applyCharge := func(field string, dst *float64, src *float64) error {
		if src == nil {
			return nil
		}
		if err := common.ValidateCharge(*src, field); err != nil {
			return err
		}
		*dst = *src
		chargesChanged = true
		return nil
	}

	if err := applyCharge("rentAmount", &bill.RentAmount, patch.RentAmount); err != nil {
		return nil, err
	}
	if err := applyCharge("electricityBill", &bill.ElectricityBill, patch.ElectricityBill); err != nil {
		return nil, err
	}
	if err := applyCharge("waterBill", &bill.WaterBill, patch.WaterBill); err != nil {
		return nil, err
	}
	if err := applyCharge("maintenanceFee", &bill.MaintenanceFee, patch.MaintenanceFee); err != nil {
		return nil, err
	}
	if err := applyCharge("otherCharges", &bill.OtherCharges, patch.OtherCharges); err != nil {
		return nil, err
	}
	if err := applyCharge("discount", &bill.Discount, patch.Discount); err != nil {
		return nil, err
	}

	if patch.TenantName != nil && strings.TrimSpace(*patch.TenantName) != "" {
		bill.TenantName = strings.TrimSpace(*patch.TenantName)
	}
	if patch.RoomNumber != nil && strings.TrimSpace(*patch.RoomNumber) != "" {
		bill.RoomNumber = strings.TrimSpace(*patch.RoomNumber)
	}
	if patch.BillMonth != nil {
		bill.BillMonth = *patch.BillMonth
	}
	if patch.BillYear != nil {
		bill.BillYear = *patch.BillYear
	}
	if patch.BillDate != nil {
		bill.BillDate = *patch.BillDate
	}
	if patch.DueDate != nil {
		bill.DueDate = *patch.DueDate
	}
	if patch.Notes != nil {
		bill.Notes = patch.Notes
	}

	// Explicit total wins; otherwise any charge change recomputes the total
	// from the full resulting set of charge fields.
	switch {
	case patch.TotalAmount != nil:
		bill.TotalAmount = *patch.TotalAmount
	case chargesChanged:
		bill.TotalAmount = ComputeTotal(bill)
	}

	bill.UpdatedAt = time.Now()
	applyOverdue(bill)

	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, common.NewDependencyError("Error updating bill", err)
	}
	return bill, nil
}

// UpdateStatus transitions the payment status. Marking paid stamps
// payment date (supplied or now) and method (supplied or cash); any other
// transition leaves the payment fields untouched.
func (s *billService) UpdateStatus(ctx context.Context, ownerID, billID uuid.UUID, req *UpdateBillStatusRequest) (*models.Bill, error) {
	if !validPaymentStatus(req.PaymentStatus) {
		return nil, common.NewValidationError("paymentStatus", "Payment status must be one of: paid, pending, overdue")
	}
	if req.PaymentMethod != nil && !validPaymentMethod(*req.PaymentMethod) {
		return nil, common.NewValidationError("paymentMethod", "Payment method must be one of: cash, upi, bank_transfer, cheque, online")
	}

	bill, err := s.billRepo.GetByID(ctx, ownerID, billID)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, common.NewNotFoundError("Bill")
		}
		return nil, common.NewDependencyError("Error fetching bill", err)
	}

	bill.PaymentStatus = req.PaymentStatus
	if req.PaymentStatus == models.PaymentStatusPaid {
		paidAt := time.Now()
		if req.PaymentDate != nil {
			paidAt = *req.PaymentDate
		}
		method := models.PaymentMethodCash
		if req.PaymentMethod != nil {
			method = *req.PaymentMethod
		}
		bill.PaymentDate = &paidAt
		bill.PaymentMethod = &method
	}

	bill.UpdatedAt = time.Now()
	applyOverdue(bill)

	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, common.NewDependencyError("Error updating bill status", err)
	}
	return bill, nil
}

func (s *billService) Delete(ctx context.Context, ownerID, billID uuid.UUID) error {
	deleted, err := s.billRepo.Delete(ctx, ownerID, billID)
	if err != nil {
		return common.NewDependencyError("Error deleting bill", err)
	}
	if !deleted {
		return common.NewNotFoundError("Bill")
	}
	return nil
}

func (s *billService) List(ctx context.Context, ownerID uuid.UUID, filter repositories.BillFilter, page, limit int) ([]*models.Bill, int, error) {
	_, limit, offset := common.NormalizePagination(page, limit)

	bills, err := s.billRepo.List(ctx, ownerID, filter, limit, offset)
	if err != nil {
		return nil, 0, common.NewDependencyError("Error fetching bills", err)
	}
	total, err := s.billRepo.Count(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, common.NewDependencyError("Error counting bills", err)
	}

	for _, b := range bills {
		applyOverdue(b)
	}
	return bills, total, nil
}

// Stats walks every bill for the owner once, bucketing by the derived
// status so an unpaid bill past due counts as overdue even before the
// sweep has persisted it.
func (s *billService) Stats(ctx context.Context, ownerID uuid.UUID) (*models.BillStats, error) {
	bills, err := s.billRepo.ListAll(ctx, ownerID)
	if err != nil {
		return nil, common.NewDependencyError("Error fetching bill statistics", err)
	}

	now := time.Now()
	stats := &models.BillStats{TotalBills: len(bills)}
	for _, b := range bills {
		switch EvaluateOverdue(b, now) {
		case models.PaymentStatusPaid:
			stats.PaidAmount += b.TotalAmount
			stats.PaidBills++
		case models.PaymentStatusPending:
			stats.PendingAmount += b.TotalAmount
			stats.PendingBills++
		case models.PaymentStatusOverdue:
			stats.OverdueAmount += b.TotalAmount
			stats.OverdueBills++
		}
	}
	stats.TotalRevenue = stats.PaidAmount
	return stats, nil
}
