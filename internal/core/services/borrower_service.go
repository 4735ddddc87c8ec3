package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/core/domain"
	"lendinghub/internal/pkg/password"

	"gorm.io/gorm"
)

// Borrower service errors
var (
	ErrOldPasswordWrong     = errors.New("old password is incorrect")
	ErrCannotDeactivateSelf = errors.New("cannot deactivate your own account")
)

// BorrowerService manages users and their borrower profiles.
// Every user gets exactly one profile, created in the same transaction.
type BorrowerService struct {
	store    *repositories.Store
	policy   domain.Policy
	hashCost int
}

// NewBorrowerService creates a new borrower service
func NewBorrowerService(store *repositories.Store, policy domain.Policy) *BorrowerService {
	return &BorrowerService{
		store:    store,
		policy:   policy,
		hashCost: password.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost (tests use bcrypt.MinCost)
func (s *BorrowerService) WithHashCost(cost int) *BorrowerService {
	s.hashCost = cost
	return s
}

// CreateUserInput represents create user input
type CreateUserInput struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	FullName        string `json:"full_name"`
	Password        string `json:"password" validate:"required,min=8"`
	Role            string `json:"role"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	MaxBooksAllowed *int   `json:"max_books_allowed"`
}

// UpdateBorrowerInput represents the lending settings an admin may change
type UpdateBorrowerInput struct {
	MaxBooksAllowed *int  `json:"max_books_allowed"`
	IsActive        *bool `json:"is_active"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// CreateUser creates a user together with its borrower profile
func (s *BorrowerService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.BorrowerProfile, error) {
	// 1. Validate input
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if len(input.Username) < 3 || input.Email == "" {
		return nil, fmt.Errorf("%w: username (3+ chars) and email are required", domain.ErrInvalidInput)
	}
	if !password.ValidatePassword(input.Password) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, password.MinLength)
	}
	role, err := parseRole(input.Role)
	if err != nil {
		return nil, err
	}
	maxBooks := s.policy.MaxBooksAllowed
	if input.MaxBooksAllowed != nil {
		if *input.MaxBooksAllowed < 0 {
			return nil, fmt.Errorf("%w: max_books_allowed must not be negative", domain.ErrInvalidInput)
		}
		maxBooks = *input.MaxBooksAllowed
	}

	// 2. Hash password
	hashedPassword, err := password.HashWithCost(input.Password, s.hashCost)
	if err != nil {
		return nil, err
	}

	// 3. Create user + profile
	var profile *models.BorrowerProfile
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		exists, err := tx.Users.ExistsByUsername(ctx, input.Username)
		if err != nil {
			return err
		}
		if !exists {
			exists, err = tx.Users.ExistsByEmail(ctx, input.Email)
			if err != nil {
				return err
			}
		}
		if exists {
			return domain.ErrDuplicateEntry
		}

		user := &models.User{
			Username: input.Username,
			Email:    input.Email,
			FullName: strings.TrimSpace(input.FullName),
			Password: hashedPassword,
			Role:     string(role),
			IsActive: true,
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			return duplicate(err)
		}

		profile = &models.BorrowerProfile{
			UserID:          user.ID,
			MaxBooksAllowed: maxBooks,
			IsActive:        true,
			Phone:           input.Phone,
			Address:         input.Address,
			User:            *user,
		}
		return duplicate(tx.Profiles.Create(ctx, profile))
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User created: %s (%s)", profile.User.Username, profile.User.Role)
	return profile, nil
}

// GetBorrower returns a user's borrower profile
func (s *BorrowerService) GetBorrower(ctx context.Context, userID uint) (*models.BorrowerProfile, error) {
	profile, err := s.store.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, domain.ErrBorrowerNotFound)
	}
	return profile, nil
}

// ListUsers lists users with pagination
func (s *BorrowerService) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.store.Users.List(ctx, offset, limit)
}

// UpdateBorrower changes a borrower's limit or active flag.
// Deactivation blocks new borrows and reservations; open loans stay open.
func (s *BorrowerService) UpdateBorrower(ctx context.Context, actorID, userID uint, input *UpdateBorrowerInput) (*models.BorrowerProfile, error) {
	if input.IsActive != nil && !*input.IsActive && actorID == userID {
		return nil, ErrCannotDeactivateSelf
	}
	if input.MaxBooksAllowed != nil && *input.MaxBooksAllowed < 0 {
		return nil, fmt.Errorf("%w: max_books_allowed must not be negative", domain.ErrInvalidInput)
	}

	var profile *models.BorrowerProfile
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		current, err := tx.Profiles.LockByUserID(ctx, userID)
		if err != nil {
			return notFound(err, domain.ErrBorrowerNotFound)
		}

		maxBooks, active := current.MaxBooksAllowed, current.IsActive
		if input.MaxBooksAllowed != nil {
			maxBooks = *input.MaxBooksAllowed
		}
		if input.IsActive != nil {
			active = *input.IsActive
		}
		if err := tx.Profiles.UpdateSettings(ctx, userID, maxBooks, active); err != nil {
			return err
		}

		profile, err = tx.Profiles.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Borrower %d updated (max %d, active %t)", userID, profile.MaxBooksAllowed, profile.IsActive)
	return profile, nil
}

// ChangePassword changes user's password
func (s *BorrowerService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return notFound(err, domain.ErrBorrowerNotFound)
	}

	// Verify old password
	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	// Validate new password
	if !password.ValidatePassword(input.NewPassword) {
		return fmt.Errorf("%w: new password must be at least %d characters", domain.ErrInvalidInput, password.MinLength)
	}

	// Hash new password
	hashedPassword, err := password.HashWithCost(input.NewPassword, s.hashCost)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.store.Users.Update(ctx, user)
}

func parseRole(role string) (domain.Role, error) {
	switch domain.Role(strings.ToUpper(strings.TrimSpace(role))) {
	case "", domain.RoleUser:
		return domain.RoleUser, nil
	case domain.RoleLibrarian:
		return domain.RoleLibrarian, nil
	case domain.RoleAdmin:
		return domain.RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
}

// duplicate maps a unique-key violation (gorm TranslateError) to ErrDuplicateEntry
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateEntry
	}
	return err
}
