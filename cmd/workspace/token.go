package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"company-workspace-backend/pkg/config"
	"company-workspace-backend/pkg/models"
	"company-workspace-backend/pkg/utils"
)

var (
	tokenUser     string
	tokenEmail    string
	tokenCompany  string
	tokenTimezone string
	tokenTTL      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long: `Sign an access token with JWT_SECRET for local testing of the API.
Real tokens are issued by the identity provider; this command refuses to run
in production.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User id (token subject)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "User email")
	tokenCmd.Flags().StringVar(&tokenCompany, "company", "", "company_name user metadata")
	tokenCmd.Flags().StringVar(&tokenTimezone, "timezone", "", "timezone user metadata")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", utils.DefaultAccessTokenTTL, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg := config.GetCached()
	if cfg.IsProduction() {
		return fmt.Errorf("token minting is disabled in production")
	}

	metadata := map[string]interface{}{}
	if c := strings.TrimSpace(tokenCompany); c != "" {
		metadata["company_name"] = c
	}
	if tz := strings.TrimSpace(tokenTimezone); tz != "" {
		metadata["timezone"] = tz
	}

	identity := &models.Identity{ID: strings.TrimSpace(tokenUser), Email: tokenEmail, Metadata: metadata}
	token, expiresAt, err := utils.NewJWTService(cfg.JWTSecret).GenerateAccessToken(identity, tokenTTL)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
	return nil
}
