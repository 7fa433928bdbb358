package identity

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Role is a coarse permission tier within a company.
type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// User is a staff account belonging to one company.
type User struct {
	shared.BaseAggregateRoot
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Email        string    `gorm:"size:200;not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null;default:STAFF" json:"role"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
}

func (User) TableName() string { return "users" }

// NewUser validates input and hashes the password.
func NewUser(companyID uuid.UUID, email, name, password string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.ErrValidation("email", "must be a valid address")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.ErrValidation("name", "must not be empty")
	}
	if len(password) < 8 {
		return nil, shared.ErrValidation("password", "must be at least 8 characters")
	}
	switch role {
	case RoleOwner, RoleAdmin, RoleStaff:
	default:
		return nil, shared.ErrValidation("role", "unknown role")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyID:         companyID,
		Email:             email,
		Name:              strings.TrimSpace(name),
		PasswordHash:      string(hash),
		Role:              role,
		Active:            true,
	}, nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword re-hashes and stores a new password.
func (u *User) ChangePassword(password string) error {
	if len(password) < 8 {
		return shared.ErrValidation("password", "must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.Touch()
	return nil
}

// CanManage reports whether the user may administer company resources.
func (u *User) CanManage() bool {
	return u.Role == RoleOwner || u.Role == RoleAdmin
}

// Deactivate locks the account out.
func (u *User) Deactivate() {
	u.Active = false
	u.Touch()
}
