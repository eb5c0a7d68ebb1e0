package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-portal/internal/config"
	"github.com/jonathan/job-portal/internal/server"
	"github.com/jonathan/job-portal/internal/server/middleware"
)

var (
	tokenRole   string
	tokenUserID string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long: `Mint an HS256 token signed with JWT_SECRET. Accounts are managed elsewhere;
this is for local development and smoke tests of the recruiter endpoints.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", middleware.RoleRecruiter, "Role claim of the token")
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "User ID claim (random when empty)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(os.Stderr)
	if err != nil {
		return err
	}
	jwtConfig, err := cfg.JWT()
	if err != nil {
		return err
	}
	return mintToken(cmd.OutOrStdout(), jwtConfig, tokenUserID, tokenRole)
}

func mintToken(out io.Writer, jwtConfig *config.JWTConfig, userID, role string) error {
	id := uuid.New()
	if userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
		id = parsed
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(id, role)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
