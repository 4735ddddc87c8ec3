package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reminderDays int

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a periodic sweep once",
}

var sweepExpiryCmd = &cobra.Command{
	Use:   "expiry",
	Short: "Expire reservations past their expiry date and promote the next in line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := lendingService().RunExpirySweep(context.Background())
		if result != nil {
			fmt.Printf("expired: %d, promoted: %d\n", len(result.ExpiredReservations), len(result.Promoted))
		}
		return err
	},
}

var sweepRemindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Send due-soon reminders and overdue notices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := reminderDays
		if !cmd.Flags().Changed("days") {
			days = cfg.Sweep.DueReminderDays
		}
		if days < 0 {
			return fmt.Errorf("--days must not be negative")
		}

		result, err := lendingService().RunDueReminderSweep(context.Background(), days)
		if result != nil {
			fmt.Printf("notifications created: %d\n", result.NotificationsCreated)
		}
		return err
	},
}

func init() {
	sweepRemindersCmd.Flags().IntVar(&reminderDays, "days", 2, "Remind loans due within this many days")
	sweepCmd.AddCommand(sweepExpiryCmd, sweepRemindersCmd)
	rootCmd.AddCommand(sweepCmd)
}
