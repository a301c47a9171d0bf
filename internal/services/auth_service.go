package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/repositories"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// AuthService signs employees in and manages their accounts.
type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	RegisterEmployee(ctx context.Context, payload models.RegistrationPayload) (*models.Employee, error)
	GetProfile(ctx context.Context, employeeID int64) (*models.Employee, error)
}

type authService struct {
	authRepo repositories.AuthRepository
	db       *sqlx.DB
	jwt      *utils.JWTManager
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, db *sqlx.DB, jwt *utils.JWTManager) AuthService {
	return &authService{authRepo: authRepo, db: db, jwt: jwt}
}

// Login checks the password and issues an access token.
func (s *authService) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	employee, err := s.authRepo.GetEmployeeByUsername(ctx, strings.TrimSpace(creds.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	// err is bcrypt.ErrMismatchedHashAndPassword for wrong password
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !employee.IsActive {
		return nil, ErrInactiveAccount
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(employee.ID, employee.Username, employee.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	employee.PasswordHash = ""
	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
		Employee:    employee,
	}, nil
}

// RegisterEmployee creates an employee account with a hashed password.
func (s *authService) RegisterEmployee(ctx context.Context, payload models.RegistrationPayload) (*models.Employee, error) {
	payload.Username = strings.TrimSpace(payload.Username)
	payload.Role = strings.ToLower(strings.TrimSpace(payload.Role))
	switch payload.Role {
	case models.RoleAdmin, models.RolePharmacist, models.RoleCashier:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, payload.Role)
	}
	if !utils.IsValidPasswordLength(payload.Password, 8) {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var id int64
	err = runInTx(ctx, s.db, 1, ErrConcurrentUpdate, func(tx *sqlx.Tx) error {
		var txErr error
		id, txErr = s.authRepo.CreateEmployee(ctx, tx, payload, string(hash))
		return txErr
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to register employee: %w", err)
	}

	employee, err := s.authRepo.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("employee registered but failed to retrieve full details: %w", err)
	}
	employee.PasswordHash = ""
	utils.LogInfo("Employee registered", map[string]interface{}{"employee_id": id, "role": employee.Role})
	return employee, nil
}

func (s *authService) GetProfile(ctx context.Context, employeeID int64) (*models.Employee, error) {
	employee, err := s.authRepo.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee profile: %w", err)
	}
	employee.PasswordHash = ""
	return employee, nil
}
