package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropforge/gitdrop/internal/middleware"
)

var (
	tokenSource string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a service token for the front-door auth gate",
	Long: `Mints an HMAC-signed service token using GITDROP_AUTH_SECRET. Clients
present it via the X-Gitdrop-Token header. Only needed when the server
runs with the auth gate enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := middleware.GenerateToken(tokenSource, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSource, "source", "cli", "token source label (cli, ci)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
