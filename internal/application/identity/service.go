// Package identity handles companies, user accounts and authentication.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/identity"
	"github.com/retailcore/backend/internal/domain/shared"
)

// TokenManager issues and revokes access tokens. The infrastructure layer
// implements it with signed JWTs and a revocation list.
type TokenManager interface {
	Issue(userID, companyID uuid.UUID, role identity.Role) (token string, expiresAt time.Time, err error)
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
}

// RegisterInput creates a company together with its owner account.
type RegisterInput struct {
	CompanyName string
	Currency    string
	OwnerName   string
	Email       string
	Password    string
}

// Session is an authenticated user with a fresh token.
type Session struct {
	User      *identity.User `json:"user"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Service manages tenants and accounts.
type Service struct {
	companies identity.CompanyRepository
	users     identity.UserRepository
	tokens    TokenManager
	logger    *zap.Logger
}

// NewService wires the identity service.
func NewService(companies identity.CompanyRepository, users identity.UserRepository, tokens TokenManager, logger *zap.Logger) *Service {
	return &Service{companies: companies, users: users, tokens: tokens, logger: logger}
}

// Register creates a company and its owner, returning a live session.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	existing, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.WrapDomainError(shared.CodeDuplicateName,
			"email already registered", shared.ErrDuplicateName)
	}
	company, err := identity.NewCompany(input.CompanyName, input.Currency)
	if err != nil {
		return nil, err
	}
	if err := s.companies.Save(ctx, company); err != nil {
		return nil, err
	}
	owner, err := identity.NewUser(company.ID, input.Email, input.OwnerName, input.Password, identity.RoleOwner)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, owner); err != nil {
		return nil, err
	}
	s.logger.Info("company registered",
		zap.String("company_id", company.ID.String()),
		zap.String("owner_id", owner.ID.String()))
	return s.startSession(owner)
}

// Login authenticates by email and password.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !user.Active || !user.CheckPassword(password) {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "invalid credentials")
	}
	return s.startSession(user)
}

func (s *Service) startSession(user *identity.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.CompanyID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Refresh exchanges a live token for a fresh one. The presented token is
// revoked so each session has exactly one usable token.
func (s *Service) Refresh(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*Session, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "account disabled")
	}
	session, err := s.startSession(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Revoke(ctx, token, expiresAt); err != nil {
		s.logger.Warn("revoke replaced token", zap.Error(err))
	}
	return session, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	return s.tokens.Revoke(ctx, token, expiresAt)
}

// GetCompany fetches the tenant record.
func (s *Service) GetCompany(ctx context.Context, companyID uuid.UUID) (*identity.Company, error) {
	return s.companies.FindByID(ctx, companyID)
}

// UpdateSettings merges the incoming keys into the company settings.
// Untouched keys survive, nil values delete.
func (s *Service) UpdateSettings(ctx context.Context, companyID uuid.UUID, incoming identity.Settings) (*identity.Company, error) {
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	company.MergeSettings(incoming)
	if err := s.companies.Save(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// CreateUser adds a staff account to the company.
func (s *Service) CreateUser(ctx context.Context, companyID uuid.UUID, email, name, password string, role identity.Role) (*identity.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.WrapDomainError(shared.CodeDuplicateName,
			"email already registered", shared.ErrDuplicateName)
	}
	user, err := identity.NewUser(companyID, email, name, password, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser fetches one account, enforcing tenant scope.
func (s *Service) GetUser(ctx context.Context, companyID, userID uuid.UUID) (*identity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.CompanyID != companyID {
		return nil, shared.ErrEntityNotFound("user", userID.String())
	}
	return user, nil
}

// ListUsers pages through company accounts.
func (s *Service) ListUsers(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*identity.User], error) {
	filter.Normalize()
	return s.users.ListByCompany(ctx, companyID, filter)
}
