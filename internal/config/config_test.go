package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoad(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("PROD_DB_DRIVER", "postgres")
	t.Setenv("PROD_JWT_SECRET", "prod-secret")
	t.Setenv("LOAN_DAYS", "21")
	t.Setenv("DAILY_FINE_RATE", "0.25")
	t.Setenv("DUE_REMINDER_DAYS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "prod-secret", cfg.JWT.Secret)
	assert.Equal(t, 21, cfg.Policy.LoanDays)
	assert.Equal(t, 0.25, cfg.Policy.DailyFineRate)
	assert.Equal(t, 3, cfg.Sweep.DueReminderDays)
	assert.True(t, cfg.Sweep.Enabled)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"mode", map[string]string{"APP_MODE": "staging"}, "APP_MODE"},
		{"driver", map[string]string{"APP_MODE": "dev", "DEV_DB_DRIVER": "oracle"}, "DB_DRIVER"},
		{"reminder days", map[string]string{"APP_MODE": "dev", "DUE_REMINDER_DAYS": "-2"}, "DUE_REMINDER_DAYS"},
		{"policy", map[string]string{"APP_MODE": "dev", "LOAN_DAYS": "0"}, "loan_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{DriverMySQL, DriverPostgres, DriverSQLite} {
		d, err := Dialector(DatabaseConfig{Driver: driver, SQLitePath: "x.db"})
		require.NoError(t, err)
		assert.NotNil(t, d)
	}

	_, err := Dialector(DatabaseConfig{Driver: "mssql"})
	assert.ErrorContains(t, err, "unsupported")
}

func TestOpenDatabase_SQLite(t *testing.T) {
	db, err := OpenDatabase(DatabaseConfig{Driver: DriverSQLite, SQLitePath: t.TempDir() + "/test.db"}, logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Close())
}
