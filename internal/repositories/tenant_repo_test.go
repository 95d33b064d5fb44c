package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TenantRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    TenantRepository
	ownerID uuid.UUID
	ctx     context.Context
}

func (suite *TenantRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewTenantRepo(mock)
	suite.ownerID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *TenantRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestTenantRepoTestSuite(t *testing.T) {
	suite.Run(t, new(TenantRepoTestSuite))
}

func sampleTenant(ownerID uuid.UUID) *models.Tenant {
	return &models.Tenant{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Name:          "Ravi Kumar",
		Phone:         "9876543210",
		RoomNumber:    "101",
		RentAmount:    12000,
		DepositAmount: 24000,
		JoinDate:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:        models.TenantStatusActive,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func tenantRows(tenants ...*models.Tenant) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "owner_id", "name", "email", "phone", "room_number", "rent_amount", "deposit_amount",
		"join_date", "lease_end_date", "status", "address", "emergency_name", "emergency_phone",
		"emergency_relation", "id_proof_type", "id_proof_number", "notes", "created_at", "updated_at",
	})
	for _, t := range tenants {
		rows.AddRow(t.ID, t.OwnerID, t.Name, t.Email, t.Phone, t.RoomNumber, t.RentAmount, t.DepositAmount,
			t.JoinDate, t.LeaseEndDate, t.Status, t.Address, t.EmergencyName, t.EmergencyPhone,
			t.EmergencyRelation, t.IDProofType, t.IDProofNumber, t.Notes, t.CreatedAt, t.UpdatedAt)
	}
	return rows
}

func (suite *TenantRepoTestSuite) TestCreate_Success() {
	tenant := sampleTenant(suite.ownerID)

	suite.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tenants`)).
		WithArgs(tenant.ID, tenant.OwnerID, tenant.Name, tenant.Email, tenant.Phone, tenant.RoomNumber,
			tenant.RentAmount, tenant.DepositAmount, tenant.JoinDate, tenant.LeaseEndDate, tenant.Status,
			tenant.Address, tenant.EmergencyName, tenant.EmergencyPhone, tenant.EmergencyRelation,
			tenant.IDProofType, tenant.IDProofNumber, tenant.Notes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, tenant)
	assert.NoError(suite.T(), err)
}

func (suite *TenantRepoTestSuite) TestCreate_UniqueViolationBecomesConflict() {
	tenant := sampleTenant(suite.ownerID)

	suite.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tenants`)).
		WithArgs(tenant.ID, tenant.OwnerID, tenant.Name, tenant.Email, tenant.Phone, tenant.RoomNumber,
			tenant.RentAmount, tenant.DepositAmount, tenant.JoinDate, tenant.LeaseEndDate, tenant.Status,
			tenant.Address, tenant.EmergencyName, tenant.EmergencyPhone, tenant.EmergencyRelation,
			tenant.IDProofType, tenant.IDProofNumber, tenant.Notes).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "tenants_owner_room_active_key"})

	err := suite.repo.Create(suite.ctx, tenant)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *TenantRepoTestSuite) TestGetByID_Success() {
	tenant := sampleTenant(suite.ownerID)

	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM tenants WHERE owner_id = $1 AND id = $2`)).
		WithArgs(suite.ownerID, tenant.ID).
		WillReturnRows(tenantRows(tenant))

	got, err := suite.repo.GetByID(suite.ctx, suite.ownerID, tenant.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), tenant.ID, got.ID)
	assert.Equal(suite.T(), "101", got.RoomNumber)
}

func (suite *TenantRepoTestSuite) TestGetByID_NoRows() {
	tenantID := uuid.New()

	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM tenants WHERE owner_id = $1 AND id = $2`)).
		WithArgs(suite.ownerID, tenantID).
		WillReturnRows(tenantRows())

	got, err := suite.repo.GetByID(suite.ctx, suite.ownerID, tenantID)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), got)
	assert.True(suite.T(), IsNoRows(err))
}

func (suite *TenantRepoTestSuite) TestDelete_ReportsRowsAffected() {
	tenantID := uuid.New()

	suite.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tenants WHERE owner_id = $1 AND id = $2`)).
		WithArgs(suite.ownerID, tenantID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	deleted, err := suite.repo.Delete(suite.ctx, suite.ownerID, tenantID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), deleted)
}

func (suite *TenantRepoTestSuite) TestDelete_MissingRow() {
	tenantID := uuid.New()

	suite.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tenants WHERE owner_id = $1 AND id = $2`)).
		WithArgs(suite.ownerID, tenantID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := suite.repo.Delete(suite.ctx, suite.ownerID, tenantID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), deleted)
}

func (suite *TenantRepoTestSuite) TestList_StatusAndSearchFilter() {
	tenant := sampleTenant(suite.ownerID)
	filter := TenantFilter{Status: models.TenantStatusActive, SearchText: "Ravi"}

	suite.mock.ExpectQuery(regexp.QuoteMeta(`AND status = $2 AND (name ILIKE $3 OR room_number ILIKE $3 OR phone ILIKE $3) ORDER BY created_at DESC LIMIT $4 OFFSET $5`)).
		WithArgs(suite.ownerID, models.TenantStatusActive, "%Ravi%", 10, 0).
		WillReturnRows(tenantRows(tenant))

	got, err := suite.repo.List(suite.ctx, suite.ownerID, filter, 10, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 1)
}

func (suite *TenantRepoTestSuite) TestCount_WithFilter() {
	filter := TenantFilter{Status: models.TenantStatusActive}

	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM tenants WHERE owner_id = $1 AND status = $2`)).
		WithArgs(suite.ownerID, models.TenantStatusActive).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := suite.repo.Count(suite.ctx, suite.ownerID, filter)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, count)
}

func (suite *TenantRepoTestSuite) TestFindActiveByRoom_Free() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`AND room_number = $2 AND status = $3 AND id <> $4`)).
		WithArgs(suite.ownerID, "101", models.TenantStatusActive, uuid.Nil).
		WillReturnRows(tenantRows())

	got, err := suite.repo.FindActiveByRoom(suite.ctx, suite.ownerID, "101", uuid.Nil)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), got)
}

func (suite *TenantRepoTestSuite) TestFindActiveByRoom_Occupied() {
	tenant := sampleTenant(suite.ownerID)

	suite.mock.ExpectQuery(regexp.QuoteMeta(`AND room_number = $2 AND status = $3 AND id <> $4`)).
		WithArgs(suite.ownerID, "101", models.TenantStatusActive, uuid.Nil).
		WillReturnRows(tenantRows(tenant))

	got, err := suite.repo.FindActiveByRoom(suite.ctx, suite.ownerID, "101", uuid.Nil)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), got)
	assert.Equal(suite.T(), tenant.ID, got.ID)
}
