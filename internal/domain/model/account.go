package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sermon-subscription-billing/internal/domain"
)

type AccountRole string

const (
	RoleUser  AccountRole = "user"
	RoleAdmin AccountRole = "admin"
)

// Account is a buyer identity. Email is the unique external key: every
// reconciliation path resolves accounts by email and nothing else.
type Account struct {
	ID    string // UUID
	Email string
	Name  string
	Phone string
	// PasswordHash is nil for accounts created from a purchase; the buyer
	// sets a password on first access.
	PasswordHash     *string
	NeedsPasswordSet bool
	Active           bool
	Role             AccountRole
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewAccount creates a buyer account from a purchase event. When no name
// is supplied the local part of the email is used.
func NewAccount(email, name, phone string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}
	now := time.Now()
	return &Account{
		ID:               uuid.NewString(),
		Email:            email,
		Name:             name,
		Phone:            phone,
		NeedsPasswordSet: true,
		Active:           true,
		Role:             RoleUser,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (a *Account) IsZero() bool { return a == nil || a.ID == "" }

// SetPassword hashes and stores the password and clears the first-access flag.
func (a *Account) SetPassword(raw string) error {
	if len(raw) < 8 {
		return domain.ErrInvalidArgument
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	h := string(hash)
	a.PasswordHash = &h
	a.NeedsPasswordSet = false
	a.UpdatedAt = time.Now()
	return nil
}

// CheckPassword verifies a candidate password against the stored hash.
func (a *Account) CheckPassword(raw string) bool {
	if a.PasswordHash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*a.PasswordHash), []byte(raw)) == nil
}
