package repositories

import (
	"context"
	"strconv"
	"strings"
	"time"

	"rentledger/internal/models"

	"github.com/google/uuid"
)

// BillFilter narrows List results.
type BillFilter struct {
	Status   string
	TenantID *uuid.UUID
	Month    string
	Year     int
}

type BillRepository interface {
	Create(ctx context.Context, bill *models.Bill) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Bill, error)
	Update(ctx context.Context, bill *models.Bill) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
	List(ctx context.Context, ownerID uuid.UUID, filter BillFilter, limit, offset int) ([]*models.Bill, error)
	Count(ctx context.Context, ownerID uuid.UUID, filter BillFilter) (int, error)
	ListAll(ctx context.Context, ownerID uuid.UUID) ([]*models.Bill, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type billRepo struct {
	db Database
}

func NewBillRepo(db Database) BillRepository {
	return &billRepo{db: db}
}

const billColumns = `id, owner_id, tenant_id, tenant_name, room_number, bill_month, bill_year, bill_date, due_date, rent_amount, electricity_bill, water_bill, maintenance_fee, other_charges, discount, total_amount, payment_status, payment_date, payment_method, notes, created_at, updated_at`

func (r *billRepo) Create(ctx context.Context, bill *models.Bill) error {
	query := `
		INSERT INTO bills (id, owner_id, tenant_id, tenant_name, room_number, bill_month, bill_year, bill_date, due_date, rent_amount, electricity_bill, water_bill, maintenance_fee, other_charges, discount, total_amount, payment_status, payment_date, payment_method, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, bill.ID, bill.OwnerID, bill.TenantID, bill.TenantName, bill.RoomNumber, bill.BillMonth, bill.BillYear, bill.BillDate, bill.DueDate, bill.RentAmount, bill.ElectricityBill, bill.WaterBill, bill.MaintenanceFee, bill.OtherCharges, bill.Discount, bill.TotalAmount, bill.PaymentStatus, bill.PaymentDate, bill.PaymentMethod, bill.Notes)
	return err
}

func (r *billRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE owner_id = $1 AND id = $2`
	return scanBill(r.db.QueryRow(ctx, query, ownerID, id))
}

func scanBill(row interface{ Scan(dest ...any) error }) (*models.Bill, error) {
	b := &models.Bill{}
	err := row.Scan(&b.ID, &b.OwnerID, &b.TenantID, &b.TenantName, &b.RoomNumber, &b.BillMonth, &b.BillYear, &b.BillDate, &b.DueDate, &b.RentAmount, &b.ElectricityBill, &b.WaterBill, &b.MaintenanceFee, &b.OtherCharges, &b.Discount, &b.TotalAmount, &b.PaymentStatus, &b.PaymentDate, &b.PaymentMethod, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *billRepo) Update(ctx context.Context, bill *models.Bill) error {
	query := `
		UPDATE bills
		SET tenant_id = $1, tenant_name = $2, room_number = $3, bill_month = $4, bill_year = $5, bill_date = $6, due_date = $7, rent_amount = $8, electricity_bill = $9, water_bill = $10, maintenance_fee = $11, other_charges = $12, discount = $13, total_amount = $14, payment_status = $15, payment_date = $16, payment_method = $17, notes = $18, updated_at = NOW()
		WHERE owner_id = $19 AND id = $20
	`
	_, err := r.db.Exec(ctx, query, bill.TenantID, bill.TenantName, bill.RoomNumber, bill.BillMonth, bill.BillYear, bill.BillDate, bill.DueDate, bill.RentAmount, bill.ElectricityBill, bill.WaterBill, bill.MaintenanceFee, bill.OtherCharges, bill.Discount, bill.TotalAmount, bill.PaymentStatus, bill.PaymentDate, bill.PaymentMethod, bill.Notes, bill.OwnerID, bill.ID)
	return err
}

func (r *billRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	query := `DELETE FROM bills WHERE owner_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, ownerID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (f BillFilter) clause(args *[]any) string {
	var sb strings.Builder
	if f.Status != "" {
		*args = append(*args, f.Status)
		sb.WriteString(` AND payment_status = $` + strconv.Itoa(len(*args)))
	}
	if f.TenantID != nil {
		*args = append(*args, *f.TenantID)
		sb.WriteString(` AND tenant_id = $` + strconv.Itoa(len(*args)))
	}
	if f.Month != "" {
		*args = append(*args, f.Month)
		sb.WriteString(` AND bill_month = $` + strconv.Itoa(len(*args)))
	}
	if f.Year != 0 {
		*args = append(*args, f.Year)
		sb.WriteString(` AND bill_year = $` + strconv.Itoa(len(*args)))
	}
	return sb.String()
}

func (r *billRepo) List(ctx context.Context, ownerID uuid.UUID, filter BillFilter, limit, offset int) ([]*models.Bill, error) {
	args := []any{ownerID}
	where := filter.clause(&args)
	args = append(args, limit, offset)
	query := `SELECT ` + billColumns + ` FROM bills WHERE owner_id = $1` + where +
		` ORDER BY bill_date DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (r *billRepo) Count(ctx context.Context, ownerID uuid.UUID, filter BillFilter) (int, error) {
	args := []any{ownerID}
	where := filter.clause(&args)
	query := `SELECT COUNT(*) FROM bills WHERE owner_id = $1` + where

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *billRepo) ListAll(ctx context.Context, ownerID uuid.UUID) ([]*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE owner_id = $1 ORDER BY bill_date DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// MarkOverdue persists the derived overdue status for every unpaid bill past
// its due date, across all owners. Reads derive the same answer on their own;
// the sweep just converges stored state.
func (r *billRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE bills
		SET payment_status = $1, updated_at = NOW()
		WHERE payment_status = $2 AND due_date < $3
	`
	tag, err := r.db.Exec(ctx, query, models.PaymentStatusOverdue, models.PaymentStatusPending, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
