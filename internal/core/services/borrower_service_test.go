package services

import (
	"testing"

	"lendinghub/internal/core/domain"
	"lendinghub/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)

	limit := 1
	profile, err := f.borrowers.CreateUser(f.ctx, &CreateUserInput{
		Username:        " librarian1 ",
		Email:           "Lib@Example.com",
		FullName:        "Libby Rarian",
		Password:        "password123",
		Role:            "librarian",
		MaxBooksAllowed: &limit,
	})
	require.NoError(t, err)
	assert.Equal(t, "librarian1", profile.User.Username)
	assert.Equal(t, "lib@example.com", profile.User.Email)
	assert.Equal(t, string(domain.RoleLibrarian), profile.User.Role)
	assert.Equal(t, 1, profile.MaxBooksAllowed)
	assert.True(t, profile.IsActive)
	assert.NotEqual(t, "password123", profile.User.Password)

	defaulted, err := f.borrowers.GetBorrower(f.ctx, f.borrower("reader"))
	require.NoError(t, err)
	assert.Equal(t, f.policy.MaxBooksAllowed, defaulted.MaxBooksAllowed)
	assert.Equal(t, string(domain.RoleUser), defaulted.User.Role)

	invalid := []struct {
		name  string
		input CreateUserInput
		want  error
	}{
		{"duplicate username", CreateUserInput{Username: "librarian1", Email: "other@example.com", Password: "password123"}, domain.ErrDuplicateEntry},
		{"duplicate email", CreateUserInput{Username: "other", Email: "LIB@example.com", Password: "password123"}, domain.ErrDuplicateEntry},
		{"short password", CreateUserInput{Username: "shorty", Email: "s@example.com", Password: "short"}, domain.ErrInvalidInput},
		{"short username", CreateUserInput{Username: "ab", Email: "ab@example.com", Password: "password123"}, domain.ErrInvalidInput},
		{"unknown role", CreateUserInput{Username: "rooty", Email: "r@example.com", Password: "password123", Role: "root"}, domain.ErrInvalidInput},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			input := tc.input
			_, err := f.borrowers.CreateUser(f.ctx, &input)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	users, total, err := f.borrowers.ListUsers(f.ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)
}

func TestUpdateBorrower(t *testing.T) {
	f := newFixture(t)
	admin := f.borrower("admin")
	userID := f.borrower("reader")
	itemID := f.item(2)

	inactive := false
	profile, err := f.borrowers.UpdateBorrower(f.ctx, admin, userID, &UpdateBorrowerInput{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, profile.IsActive)

	_, err = f.lending.Borrow(f.ctx, userID, itemID, 0)
	assert.ErrorIs(t, err, domain.ErrBorrowerInactive)

	_, err = f.borrowers.UpdateBorrower(f.ctx, admin, admin, &UpdateBorrowerInput{IsActive: &inactive})
	assert.ErrorIs(t, err, ErrCannotDeactivateSelf)

	negative := -1
	_, err = f.borrowers.UpdateBorrower(f.ctx, admin, userID, &UpdateBorrowerInput{MaxBooksAllowed: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.borrowers.UpdateBorrower(f.ctx, admin, 999, &UpdateBorrowerInput{})
	assert.ErrorIs(t, err, domain.ErrBorrowerNotFound)

	// A zero limit keeps the borrower active but stops new loans
	active, zero := true, 0
	profile, err = f.borrowers.UpdateBorrower(f.ctx, admin, userID, &UpdateBorrowerInput{IsActive: &active, MaxBooksAllowed: &zero})
	require.NoError(t, err)
	assert.True(t, profile.IsActive)
	assert.Equal(t, 0, profile.MaxBooksAllowed)

	_, err = f.lending.Borrow(f.ctx, userID, itemID, 0)
	assert.ErrorIs(t, err, domain.ErrBorrowLimitExceeded)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	userID := f.borrower("reader")

	err := f.borrowers.ChangePassword(f.ctx, userID, &ChangePasswordInput{OldPassword: "wrong-password", NewPassword: "newpassword1"})
	assert.ErrorIs(t, err, ErrOldPasswordWrong)

	err = f.borrowers.ChangePassword(f.ctx, userID, &ChangePasswordInput{OldPassword: "password123", NewPassword: "short"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, f.borrowers.ChangePassword(f.ctx, userID, &ChangePasswordInput{OldPassword: "password123", NewPassword: "newpassword1"}))

	user, err := f.store.Users.GetByID(f.ctx, userID)
	require.NoError(t, err)
	assert.True(t, password.Verify("newpassword1", user.Password))
	assert.False(t, password.Verify("password123", user.Password))
}
