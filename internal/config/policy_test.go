package config

import (
	"os"
	"path/filepath"
	"testing"

	"lendinghub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadPolicy(t *testing.T) {
	base := domain.DefaultPolicy()

	t.Run("no file", func(t *testing.T) {
		policy, err := LoadPolicy("", base)
		require.NoError(t, err)
		assert.Equal(t, base, policy)
	})

	t.Run("overlay", func(t *testing.T) {
		path := writePolicy(t, "loan_days: 21\ndaily_fine_rate: 0.5\nenforce_holds: false\n")
		policy, err := LoadPolicy(path, base)
		require.NoError(t, err)
		assert.Equal(t, 21, policy.LoanDays)
		assert.Equal(t, 0.5, policy.DailyFineRate)
		assert.False(t, policy.EnforceHolds)
		assert.Equal(t, base.RenewalDays, policy.RenewalDays)
		assert.Equal(t, base.MaxBooksAllowed, policy.MaxBooksAllowed)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writePolicy(t, "reservation_days: 0\n")
		_, err := LoadPolicy(path, base)
		assert.ErrorContains(t, err, "reservation_days")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writePolicy(t, "loan_days: [14\n")
		_, err := LoadPolicy(path, base)
		assert.ErrorContains(t, err, "parse policy file")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml"), base)
		assert.ErrorContains(t, err, "read policy file")
	})
}
