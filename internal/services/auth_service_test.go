package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceTestSuite struct {
	suite.Suite
	mockRepo   *MockUserRepository
	mockMailer *MockMailer
	service    AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockUserRepository{}
	suite.mockMailer = &MockMailer{}
	tokens := NewTokenService("test-secret", time.Hour)
	suite.service = NewAuthService(suite.mockRepo, tokens, suite.mockMailer)

	suite.mockRepo.Test(suite.T())
	suite.mockMailer.Test(suite.T())
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockMailer.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func hashPassword(t assert.TestingT, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func (suite *AuthServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()
	req := &RegisterRequest{
		Name:     "Asha Mehta",
		Email:    "Asha@Example.com",
		Password: "Str0ngpass",
	}

	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(nil, pgx.ErrNoRows)
	suite.mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Run(func(args mock.Arguments) {
		user := args.Get(1).(*models.User)
		assert.Equal(suite.T(), "asha@example.com", user.Email)
		assert.Equal(suite.T(), models.RoleAdmin, user.Role)
		assert.True(suite.T(), user.IsActive)
		assert.NotEqual(suite.T(), req.Password, user.PasswordHash)
	})
	suite.mockRepo.On("UpdateLastLogin", ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockMailer.On("SendWelcomeEmail", ctx, "asha@example.com", "Asha Mehta").Return(nil)

	result, err := suite.service.Register(ctx, req)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result)
	assert.NotEmpty(suite.T(), result.Token)
	assert.NotNil(suite.T(), result.User.LastLogin)
}

func (suite *AuthServiceTestSuite) TestRegister_WeakPassword() {
	ctx := context.Background()
	req := &RegisterRequest{
		Name:     "Asha Mehta",
		Email:    "asha@example.com",
		Password: "alllowercase1",
	}

	result, err := suite.service.Register(ctx, req)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}

func (suite *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	ctx := context.Background()
	req := &RegisterRequest{
		Name:     "Asha Mehta",
		Email:    "asha@example.com",
		Password: "Str0ngpass",
	}

	existing := &models.User{ID: uuid.New(), Email: "asha@example.com"}
	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(existing, nil)

	result, err := suite.service.Register(ctx, req)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *AuthServiceTestSuite) TestRegister_WelcomeEmailFailureIsNonFatal() {
	ctx := context.Background()
	req := &RegisterRequest{
		Name:     "Asha Mehta",
		Email:    "asha@example.com",
		Password: "Str0ngpass",
	}

	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(nil, pgx.ErrNoRows)
	suite.mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)
	suite.mockRepo.On("UpdateLastLogin", ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockMailer.On("SendWelcomeEmail", ctx, "asha@example.com", "Asha Mehta").Return(errors.New("smtp down"))

	result, err := suite.service.Register(ctx, req)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result)
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	ctx := context.Background()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		PasswordHash: hashPassword(suite.T(), "Str0ngpass"),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}

	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)
	suite.mockRepo.On("UpdateLastLogin", ctx, user.ID, mock.AnythingOfType("time.Time")).Return(nil)

	result, err := suite.service.Login(ctx, "asha@example.com", "Str0ngpass")
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), result.Token)
	assert.NotNil(suite.T(), result.User.LastLogin)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownEmailIsGeneric() {
	ctx := context.Background()

	suite.mockRepo.On("GetByEmail", ctx, "who@example.com").Return(nil, pgx.ErrNoRows)

	result, err := suite.service.Login(ctx, "who@example.com", "Str0ngpass")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
	assert.True(suite.T(), common.IsKind(err, common.KindAuth))
	assert.Contains(suite.T(), err.Error(), "Invalid email or password")
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPasswordIsGeneric() {
	ctx := context.Background()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		PasswordHash: hashPassword(suite.T(), "Str0ngpass"),
		IsActive:     true,
	}

	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)

	result, err := suite.service.Login(ctx, "asha@example.com", "WrongPass1")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
	assert.Contains(suite.T(), err.Error(), "Invalid email or password")
}

func (suite *AuthServiceTestSuite) TestLogin_DeactivatedAccount() {
	ctx := context.Background()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		PasswordHash: hashPassword(suite.T(), "Str0ngpass"),
		IsActive:     false,
	}

	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)

	result, err := suite.service.Login(ctx, "asha@example.com", "Str0ngpass")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
	assert.Contains(suite.T(), err.Error(), "deactivated")
}

func (suite *AuthServiceTestSuite) TestForgotPassword_StoresDigestAndSendsCode() {
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Email: "asha@example.com", Name: "Asha Mehta"}

	var storedHash string
	var sentCode string
	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)
	suite.mockRepo.On("SetResetToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(nil).Run(func(args mock.Arguments) {
			storedHash = args.Get(2).(string)
			expire := args.Get(3).(time.Time)
			assert.WithinDuration(suite.T(), time.Now().Add(15*time.Minute), expire, time.Minute)
		})
	suite.mockMailer.On("SendPasswordResetEmail", ctx, "asha@example.com", "Asha Mehta", mock.AnythingOfType("string")).
		Return(nil).Run(func(args mock.Arguments) {
			sentCode = args.Get(3).(string)
		})

	err := suite.service.ForgotPassword(ctx, "asha@example.com")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), sentCode, 6)
	// The mailed code is never stored verbatim.
	assert.NotEqual(suite.T(), sentCode, storedHash)
	assert.Equal(suite.T(), hashResetCode(sentCode), storedHash)
}

func (suite *AuthServiceTestSuite) TestForgotPassword_DeliveryFailureRollsBack() {
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Email: "asha@example.com", Name: "Asha Mehta"}

	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)
	suite.mockRepo.On("SetResetToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockMailer.On("SendPasswordResetEmail", ctx, "asha@example.com", "Asha Mehta", mock.AnythingOfType("string")).
		Return(errors.New("smtp down"))
	suite.mockRepo.On("ClearResetToken", ctx, user.ID).Return(nil)

	err := suite.service.ForgotPassword(ctx, "asha@example.com")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsKind(err, common.KindDependency))
}

func (suite *AuthServiceTestSuite) TestForgotPassword_UnknownAccount() {
	ctx := context.Background()

	suite.mockRepo.On("GetByEmail", ctx, "who@example.com").Return(nil, pgx.ErrNoRows)

	err := suite.service.ForgotPassword(ctx, "who@example.com")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsKind(err, common.KindNotFound))
}

func (suite *AuthServiceTestSuite) TestResetPassword_Success() {
	ctx := context.Background()
	code := "123456"
	tokenHash := hashResetCode(code)
	expire := time.Now().Add(10 * time.Minute)
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "asha@example.com",
		ResetPasswordToken:  &tokenHash,
		ResetPasswordExpire: &expire,
	}

	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)
	suite.mockRepo.On("UpdatePassword", ctx, user.ID, mock.AnythingOfType("string")).Return(nil).Run(func(args mock.Arguments) {
		hash := args.Get(2).(string)
		assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(hash), []byte("NewStr0ng")))
	})

	err := suite.service.ResetPassword(ctx, "asha@example.com", code, "NewStr0ng")
	assert.NoError(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestResetPassword_WrongCode() {
	ctx := context.Background()
	tokenHash := hashResetCode("123456")
	expire := time.Now().Add(10 * time.Minute)
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "asha@example.com",
		ResetPasswordToken:  &tokenHash,
		ResetPasswordExpire: &expire,
	}

	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)

	err := suite.service.ResetPassword(ctx, "asha@example.com", "654321", "NewStr0ng")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}

func (suite *AuthServiceTestSuite) TestResetPassword_ExpiredCode() {
	ctx := context.Background()
	code := "123456"
	tokenHash := hashResetCode(code)
	expire := time.Now().Add(-time.Minute)
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "asha@example.com",
		ResetPasswordToken:  &tokenHash,
		ResetPasswordExpire: &expire,
	}

	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)

	err := suite.service.ResetPassword(ctx, "asha@example.com", code, "NewStr0ng")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}

func (suite *AuthServiceTestSuite) TestResetPassword_NoOutstandingCode() {
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Email: "asha@example.com"}

	suite.mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)

	err := suite.service.ResetPassword(ctx, "asha@example.com", "123456", "NewStr0ng")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}

func (suite *AuthServiceTestSuite) TestUpdateProfile_InvalidPhone() {
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Email: "asha@example.com", Name: "Asha Mehta"}
	phone := "12"

	suite.mockRepo.On("GetByID", ctx, user.ID).Return(user, nil)

	updated, err := suite.service.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Phone: &phone})
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), updated)
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}
