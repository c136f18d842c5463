package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/site-attendance/internal/config"
	"github.com/kozaktomas/site-attendance/internal/web/middleware"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin API token",
	Long: `Signs a bearer token for the admin API with ADMIN_JWT_SECRET.
Send it as "Authorization: Bearer <token>", or as ?token= for the live feed.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("subject", "admin", "Operator name recorded with admin overrides")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	subject := mustGetString(cmd, "subject")
	ttl := mustGetDuration(cmd, "ttl")

	cfg := config.Load()
	if !cfg.Auth.Enabled() {
		return errors.New("ADMIN_JWT_SECRET environment variable is required")
	}
	if ttl <= 0 {
		return errors.New("--ttl must be positive")
	}

	token, err := middleware.IssueAdminToken(cfg.Auth.JWTSecret, subject, ttl)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Println(token)
	return nil
}
