package repositories

import (
	"context"
	"strconv"
	"strings"

	"rentledger/internal/common"
	"rentledger/internal/models"

	"github.com/google/uuid"
)

// TenantFilter narrows List results. SearchText matches name, room number,
// or phone substrings case-insensitively.
type TenantFilter struct {
	Status     string
	SearchText string
}

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
	List(ctx context.Context, ownerID uuid.UUID, filter TenantFilter, limit, offset int) ([]*models.Tenant, error)
	Count(ctx context.Context, ownerID uuid.UUID, filter TenantFilter) (int, error)
	ListAll(ctx context.Context, ownerID uuid.UUID) ([]*models.Tenant, error)
	FindActiveByRoom(ctx context.Context, ownerID uuid.UUID, roomNumber string, excludeID uuid.UUID) (*models.Tenant, error)
}

type tenantRepo struct {
	db Database
}

func NewTenantRepo(db Database) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, owner_id, name, email, phone, room_number, rent_amount, deposit_amount, join_date, lease_end_date, status, address, emergency_name, emergency_phone, emergency_relation, id_proof_type, id_proof_number, notes, created_at, updated_at`

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, owner_id, name, email, phone, room_number, rent_amount, deposit_amount, join_date, lease_end_date, status, address, emergency_name, emergency_phone, emergency_relation, id_proof_type, id_proof_number, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.OwnerID, tenant.Name, tenant.Email, tenant.Phone, tenant.RoomNumber, tenant.RentAmount, tenant.DepositAmount, tenant.JoinDate, tenant.LeaseEndDate, tenant.Status, tenant.Address, tenant.EmergencyName, tenant.EmergencyPhone, tenant.EmergencyRelation, tenant.IDProofType, tenant.IDProofNumber, tenant.Notes)
	if isUniqueViolation(err) {
		return common.NewConflictError("Room number already occupied by an active tenant")
	}
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE owner_id = $1 AND id = $2`
	return scanTenant(r.db.QueryRow(ctx, query, ownerID, id))
}

func scanTenant(row interface{ Scan(dest ...any) error }) (*models.Tenant, error) {
	t := &models.Tenant{}
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Email, &t.Phone, &t.RoomNumber, &t.RentAmount, &t.DepositAmount, &t.JoinDate, &t.LeaseEndDate, &t.Status, &t.Address, &t.EmergencyName, &t.EmergencyPhone, &t.EmergencyRelation, &t.IDProofType, &t.IDProofNumber, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, email = $2, phone = $3, room_number = $4, rent_amount = $5, deposit_amount = $6, join_date = $7, lease_end_date = $8, status = $9, address = $10, emergency_name = $11, emergency_phone = $12, emergency_relation = $13, id_proof_type = $14, id_proof_number = $15, notes = $16, updated_at = NOW()
		WHERE owner_id = $17 AND id = $18
	`
	_, err := r.db.Exec(ctx, query, tenant.Name, tenant.Email, tenant.Phone, tenant.RoomNumber, tenant.RentAmount, tenant.DepositAmount, tenant.JoinDate, tenant.LeaseEndDate, tenant.Status, tenant.Address, tenant.EmergencyName, tenant.EmergencyPhone, tenant.EmergencyRelation, tenant.IDProofType, tenant.IDProofNumber, tenant.Notes, tenant.OwnerID, tenant.ID)
	if isUniqueViolation(err) {
		return common.NewConflictError("Room number already occupied by another active tenant")
	}
	return err
}

func (r *tenantRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	query := `DELETE FROM tenants WHERE owner_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, ownerID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// filterClause builds the WHERE tail shared by List and Count. Arguments
// start after the owner_id placeholder.
func (f TenantFilter) clause(args *[]any) string {
	var sb strings.Builder
	if f.Status != "" {
		*args = append(*args, f.Status)
		sb.WriteString(` AND status = $` + strconv.Itoa(len(*args)))
	}
	if f.SearchText != "" {
		*args = append(*args, "%"+f.SearchText+"%")
		n := strconv.Itoa(len(*args))
		sb.WriteString(` AND (name ILIKE $` + n + ` OR room_number ILIKE $` + n + ` OR phone ILIKE $` + n + `)`)
	}
	return sb.String()
}

func (r *tenantRepo) List(ctx context.Context, ownerID uuid.UUID, filter TenantFilter, limit, offset int) ([]*models.Tenant, error) {
	args := []any{ownerID}
	where := filter.clause(&args)
	args = append(args, limit, offset)
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE owner_id = $1` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *tenantRepo) Count(ctx context.Context, ownerID uuid.UUID, filter TenantFilter) (int, error) {
	args := []any{ownerID}
	where := filter.clause(&args)
	query := `SELECT COUNT(*) FROM tenants WHERE owner_id = $1` + where

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *tenantRepo) ListAll(ctx context.Context, ownerID uuid.UUID) ([]*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// FindActiveByRoom looks up the active tenant holding a room, excluding the
// given tenant id (uuid.Nil to exclude nothing). Returns (nil, nil) when the
// room is free; the partial unique index remains the real guarantee.
func (r *tenantRepo) FindActiveByRoom(ctx context.Context, ownerID uuid.UUID, roomNumber string, excludeID uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE owner_id = $1 AND room_number = $2 AND status = $3 AND id <> $4`
	t, err := scanTenant(r.db.QueryRow(ctx, query, ownerID, roomNumber, models.TenantStatusActive, excludeID))
	if IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
