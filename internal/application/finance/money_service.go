// Package finance exposes the cash ledger operations: manual entries,
// category management, and period summaries. System-owned entries written
// by the trade flows can only be neutralized by reversing their documents.
package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/application/txn"
	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/shared"
)

// MovementInput carries a manual ledger entry request.
type MovementInput struct {
	Type          finance.MoneyType
	Amount        decimal.Decimal
	PaymentMethod string
	CategoryID    *uuid.UUID
	Description   string
}

// Service manages the money ledger.
type Service struct {
	scope      txn.Scope
	movements  finance.MoneyMovementRepository
	categories finance.MoneyCategoryRepository
	logger     *zap.Logger
}

// NewService wires the money ledger service.
func NewService(scope txn.Scope, movements finance.MoneyMovementRepository, categories finance.MoneyCategoryRepository, logger *zap.Logger) *Service {
	return &Service{scope: scope, movements: movements, categories: categories, logger: logger}
}

func (s *Service) resolveCategory(ctx context.Context, repos txn.Repositories, companyID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	_, err := repos.MoneyCategories().FindByID(ctx, companyID, *categoryID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeCategoryNotFound,
			fmt.Sprintf("money category %s not found", categoryID))
	}
	return err
}

// CreateMovement records a manual ledger entry. Manual entries never carry
// a document reference.
func (s *Service) CreateMovement(ctx context.Context, companyID, userID uuid.UUID, input MovementInput) (*finance.MoneyMovement, error) {
	var movement *finance.MoneyMovement
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		if err := s.resolveCategory(ctx, repos, companyID, input.CategoryID); err != nil {
			return err
		}
		var err error
		movement, err = finance.NewManualMoneyMovement(companyID, userID, input.Type,
			input.Amount, input.PaymentMethod, input.CategoryID, input.Description)
		if err != nil {
			return err
		}
		if err := repos.MoneyMovements().Save(ctx, movement); err != nil {
			return err
		}
		CountMoneyMovement(ctx, movement)
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"money.create", "money_movement", movement.ID,
			fmt.Sprintf("%s %s", movement.Type, movement.Amount)))
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// UpdateMovement edits a manual entry. System-owned entries are rejected
// with PROTECTED_RECORD.
func (s *Service) UpdateMovement(ctx context.Context, companyID, movementID, userID uuid.UUID, input MovementInput) (*finance.MoneyMovement, error) {
	var movement *finance.MoneyMovement
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		var err error
		movement, err = repos.MoneyMovements().FindByID(ctx, companyID, movementID)
		if err != nil {
			return err
		}
		if err := s.resolveCategory(ctx, repos, companyID, input.CategoryID); err != nil {
			return err
		}
		if err := movement.Update(input.Type, input.Amount, input.PaymentMethod,
			input.CategoryID, input.Description); err != nil {
			return err
		}
		if err := repos.MoneyMovements().Save(ctx, movement); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"money.update", "money_movement", movement.ID, ""))
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// DeleteMovement removes a manual entry. System-owned entries are rejected
// with PROTECTED_RECORD.
func (s *Service) DeleteMovement(ctx context.Context, companyID, movementID, userID uuid.UUID) error {
	return s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		movement, err := repos.MoneyMovements().FindByID(ctx, companyID, movementID)
		if err != nil {
			return err
		}
		if err := movement.GuardMutable(); err != nil {
			return err
		}
		if err := repos.MoneyMovements().Delete(ctx, companyID, movementID); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"money.delete", "money_movement", movementID, ""))
	})
}

// GetMovement fetches one ledger entry.
func (s *Service) GetMovement(ctx context.Context, companyID, movementID uuid.UUID) (*finance.MoneyMovement, error) {
	return s.movements.FindByID(ctx, companyID, movementID)
}

// ListMovements pages through the ledger.
func (s *Service) ListMovements(ctx context.Context, companyID uuid.UUID, filter finance.MovementFilter) (shared.Paginated[*finance.MoneyMovement], error) {
	filter.Normalize()
	return s.movements.List(ctx, companyID, filter)
}

// Summary aggregates the ledger over a period.
func (s *Service) Summary(ctx context.Context, companyID uuid.UUID, from, to time.Time) (*finance.LedgerSummary, error) {
	return s.movements.Summary(ctx, companyID, from, to)
}

// CreateCategory adds a ledger category with a per-company unique name.
func (s *Service) CreateCategory(ctx context.Context, companyID, userID uuid.UUID, name string, moneyType finance.MoneyType) (*finance.MoneyCategory, error) {
	var category *finance.MoneyCategory
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		existing, err := repos.MoneyCategories().FindByName(ctx, companyID, name)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.WrapDomainError(shared.CodeDuplicateName,
				fmt.Sprintf("money category %q already exists", name), shared.ErrDuplicateName)
		}
		category, err = finance.NewMoneyCategory(companyID, userID, name, moneyType)
		if err != nil {
			return err
		}
		return repos.MoneyCategories().Save(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories pages through categories.
func (s *Service) ListCategories(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*finance.MoneyCategory], error) {
	filter.Normalize()
	return s.categories.List(ctx, companyID, filter)
}

// DeleteCategory removes a category. Existing movements keep the dangling
// id; they render as uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, companyID, categoryID uuid.UUID) error {
	return s.categories.Delete(ctx, companyID, categoryID)
}
