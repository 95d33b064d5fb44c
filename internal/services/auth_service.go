package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const resetCodeTTL = 15 * time.Minute

// AuthService implements registration, login, and the password-reset flow.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error)
}

type RegisterRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Organization *string `json:"organization"`
	Phone        *string `json:"phone"`
}

type UpdateProfileRequest struct {
	Name         *string `json:"name"`
	Organization *string `json:"organization"`
	Phone        *string `json:"phone"`
}

// AuthResult pairs the persisted user with a freshly signed token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type authService struct {
	userRepo repositories.UserRepository
	tokens   TokenService
	mailer   Mailer
}

func NewAuthService(userRepo repositories.UserRepository, tokens TokenService, mailer Mailer) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common.NewValidationError("name", "Name is required")
	}
	if len(name) > 50 {
		return nil, common.NewValidationError("name", "Name cannot exceed 50 characters")
	}
	if err := common.ValidateEmail(req.Email, "email"); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(req.Password, "password"); err != nil {
		return nil, err
	}
	if req.Phone != nil && *req.Phone != "" {
		if err := common.ValidatePhone(*req.Phone, "phone"); err != nil {
			return nil, err
		}
	}

	email := common.NormalizeEmail(req.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !repositories.IsNoRows(err) {
		return nil, common.NewDependencyError("Error checking existing account", err)
	}
	if existing != nil {
		return nil, common.NewConflictError("User with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewDependencyError("Failed to hash password", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Organization: req.Organization,
		Phone:        req.Phone,
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if common.IsKind(err, common.KindConflict) {
			return nil, err
		}
		return nil, common.NewDependencyError("Error creating account", err)
	}

	token, err := s.tokens.Sign(user.ID, user.Role)
	if err != nil {
		return nil, common.NewDependencyError("Failed to issue token", err)
	}

	s.stampLastLogin(ctx, user)

	// Welcome mail is best-effort; registration already succeeded.
	if err := s.mailer.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
		log.Printf("register: welcome email to %s failed: %v", user.Email, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, common.NewValidationError("email", "Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, common.NewAuthError("Invalid email or password")
		}
		return nil, common.NewDependencyError("Error during login", err)
	}

	if !user.IsActive {
		return nil, common.NewAuthError("Your account has been deactivated. Please contact support.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.NewAuthError("Invalid email or password")
	}

	token, err := s.tokens.Sign(user.ID, user.Role)
	if err != nil {
		return nil, common.NewDependencyError("Failed to issue token", err)
	}

	s.stampLastLogin(ctx, user)

	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) stampLastLogin(ctx context.Context, user *models.User) {
	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Printf("auth: failed to stamp last login for user %s: %v", user.ID, err)
		return
	}
	user.LastLogin = &now
}

// ForgotPassword issues a one-time 6-digit reset code. Only the sha256
// digest is stored; if delivery fails the stored digest is cleared before
// the error surfaces, so an unknown-to-the-user code can never be redeemed.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	if err := common.ValidateEmail(email, "email"); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if repositories.IsNoRows(err) {
			return common.NewNotFoundError("Account")
		}
		return common.NewDependencyError("Error looking up account", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return common.NewDependencyError("Failed to generate reset code", err)
	}

	expire := time.Now().Add(resetCodeTTL)
	if err := s.userRepo.SetResetToken(ctx, user.ID, hashResetCode(code), expire); err != nil {
		return common.NewDependencyError("Error storing reset code", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, code); err != nil {
		log.Printf("auth: reset email to %s failed, rolling back reset token: %v", user.Email, err)
		if clearErr := s.userRepo.ClearResetToken(ctx, user.ID); clearErr != nil {
			log.Printf("auth: rollback of reset token for user %s failed: %v", user.ID, clearErr)
		}
		return common.NewDependencyError("Failed to send reset email", err)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := common.ValidateEmail(email, "email"); err != nil {
		return err
	}
	if err := common.ValidatePassword(newPassword, "newPassword"); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if repositories.IsNoRows(err) {
			return common.NewNotFoundError("Account")
		}
		return common.NewDependencyError("Error looking up account", err)
	}

	if user.ResetPasswordToken == nil || user.ResetPasswordExpire == nil {
		return common.NewValidationError("resetCode", "Invalid or expired reset code")
	}
	if time.Now().After(*user.ResetPasswordExpire) {
		return common.NewValidationError("resetCode", "Invalid or expired reset code")
	}

	supplied := hashResetCode(code)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(*user.ResetPasswordToken)) != 1 {
		return common.NewValidationError("resetCode", "Invalid or expired reset code")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.NewDependencyError("Failed to hash password", err)
	}

	// Password change and reset-field clearing happen in one statement.
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return common.NewDependencyError("Error updating password", err)
	}

	return nil
}

func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, common.NewNotFoundError("User")
		}
		return nil, common.NewDependencyError("Error fetching profile", err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, common.NewValidationError("name", "Name is required")
		}
		user.Name = name
	}
	if req.Organization != nil {
		user.Organization = req.Organization
	}
	if req.Phone != nil && *req.Phone != "" {
		if err := common.ValidatePhone(*req.Phone, "phone"); err != nil {
			return nil, err
		}
		user.Phone = req.Phone
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, common.NewDependencyError("Error updating profile", err)
	}
	return user, nil
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
