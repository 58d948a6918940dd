package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gitdrop version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gitdrop %s\n", GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
