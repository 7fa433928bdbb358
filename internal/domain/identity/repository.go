package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// CompanyRepository persists companies.
type CompanyRepository interface {
	Save(ctx context.Context, company *Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*User], error)
}
