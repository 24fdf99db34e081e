package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/api"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a bearer token for the HTTP API",
	Long:  "Signs a token with ADAPTIQ_JWT_SECRET for local testing of the API.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		secret, _ := cmd.Flags().GetString("secret")
		if secret == "" {
			secret = os.Getenv("ADAPTIQ_JWT_SECRET")
		}
		if len(secret) < 16 {
			return fmt.Errorf("a signing secret of at least 16 characters is required (--secret or ADAPTIQ_JWT_SECRET)")
		}
		issuer, _ := cmd.Flags().GetString("issuer")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		tok, err := api.NewAuth(secret, issuer).Issue(args[0], ttl)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("secret", "", "Signing secret (defaults to ADAPTIQ_JWT_SECRET)")
	tokenCmd.Flags().String("issuer", "adaptiq", "Token issuer")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
