package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "gitdrop",
	Short: "📦 gitdrop - publish file batches to GitHub as single commits",
	Long: `gitdrop is a small HTTP service that accepts a batch of files in one
multipart form submission and publishes them to a GitHub repository
branch as a single new commit, using the caller's access token.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetVersion returns the build version
func GetVersion() string {
	return version
}
