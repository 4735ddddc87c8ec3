package main

import (
	"fmt"
	"os"

	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/config"
	"lendinghub/internal/core/domain"
	"lendinghub/internal/core/services"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	cfg     *config.Config
	db      *gorm.DB
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lendctl",
	Short: "Administration tool for the LendingHub database",
	Long: `lendctl runs the maintenance tasks of a LendingHub deployment against
the database configured in .env: migrations, seeding, sweeps and account setup.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		level := logger.Silent
		if verbose {
			level = logger.Info
		}
		db, err = config.OpenDatabase(cfg.Database, level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log SQL statements")
}

// lendingService builds the lending core over the open database
func lendingService() *services.LendingService {
	return services.NewLendingService(repositories.NewStore(db), cfg.Policy, domain.SystemClock{})
}
