package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/core/services"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	userEmail    string
	userFullName string
	userRole     string
	userMaxBooks int
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user and borrower profile, prompting for the password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readPassword()
		if err != nil {
			return err
		}

		input := &services.CreateUserInput{
			Username: args[0],
			Email:    userEmail,
			FullName: userFullName,
			Password: pw,
			Role:     userRole,
		}
		if cmd.Flags().Changed("max-books") {
			input.MaxBooksAllowed = &userMaxBooks
		}

		borrowers := services.NewBorrowerService(repositories.NewStore(db), cfg.Policy)
		profile, err := borrowers.CreateUser(context.Background(), input)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Created %s (id %d, role %s, limit %d)\n", profile.User.Username, profile.UserID, profile.User.Role, profile.MaxBooksAllowed)
		return nil
	},
}

var userDeactivateCmd = &cobra.Command{
	Use:   "deactivate <user-id>",
	Short: "Block a borrower from new loans and reservations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		active := false
		borrowers := services.NewBorrowerService(repositories.NewStore(db), cfg.Policy)
		if _, err := borrowers.UpdateBorrower(context.Background(), 0, uint(id), &services.UpdateBorrowerInput{IsActive: &active}); err != nil {
			return err
		}
		fmt.Printf("✅ Borrower %d deactivated\n", id)
		return nil
	},
}

// readPassword prompts twice on a terminal, or reads one line from a pipe
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var pw string
		if _, err := fmt.Fscanln(os.Stdin, &pw); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address (required)")
	userCreateCmd.Flags().StringVar(&userFullName, "name", "", "Full name")
	userCreateCmd.Flags().StringVar(&userRole, "role", "USER", "USER, LIBRARIAN or ADMIN")
	userCreateCmd.Flags().IntVar(&userMaxBooks, "max-books", 0, "Borrowing limit (defaults to the policy)")
	_ = userCreateCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd, userDeactivateCmd)
	rootCmd.AddCommand(userCmd)
}
