package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment status lifecycle: pending -> overdue (derived from due date) -> paid.
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
	PaymentStatusOverdue = "overdue"
)

// Accepted payment methods when a bill is marked paid.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodUPI          = "upi"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCheque       = "cheque"
	PaymentMethodOnline       = "online"
)

type Bill struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	OwnerID  uuid.UUID  `json:"ownerId" db:"owner_id"`
	TenantID *uuid.UUID `json:"tenantId,omitempty" db:"tenant_id"`

	// Captured at creation so historical bills stay readable after the
	// tenant record is edited or deleted.
	TenantName string `json:"tenantName" db:"tenant_name"`
	RoomNumber string `json:"roomNumber" db:"room_number"`

	BillMonth string    `json:"billMonth" db:"bill_month"`
	BillYear  int       `json:"billYear" db:"bill_year"`
	BillDate  time.Time `json:"billDate" db:"bill_date"`
	DueDate   time.Time `json:"dueDate" db:"due_date"`

	RentAmount      float64 `json:"rentAmount" db:"rent_amount"`
	ElectricityBill float64 `json:"electricityBill" db:"electricity_bill"`
	WaterBill       float64 `json:"waterBill" db:"water_bill"`
	MaintenanceFee  float64 `json:"maintenanceFee" db:"maintenance_fee"`
	OtherCharges    float64 `json:"otherCharges" db:"other_charges"`
	Discount        float64 `json:"discount" db:"discount"`
	TotalAmount     float64 `json:"totalAmount" db:"total_amount"`

	PaymentStatus string     `json:"paymentStatus" db:"payment_status"`
	PaymentDate   *time.Time `json:"paymentDate,omitempty" db:"payment_date"`
	PaymentMethod *string    `json:"paymentMethod,omitempty" db:"payment_method"`

	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// BillStats aggregates the owner's bills in a single pass.
// TotalRevenue equals PaidAmount.
type BillStats struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	PaidAmount    float64 `json:"paidAmount"`
	PendingAmount float64 `json:"pendingAmount"`
	OverdueAmount float64 `json:"overdueAmount"`
	TotalBills    int     `json:"totalBills"`
	PaidBills     int     `json:"paidBills"`
	PendingBills  int     `json:"pendingBills"`
	OverdueBills  int     `json:"overdueBills"`
}
