/*
Copyright © 2025 Mardromus
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the Scrumdinger version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scrumdinger %s\n", GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
