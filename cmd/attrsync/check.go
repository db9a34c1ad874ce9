package main

import (
	"github.com/spf13/cobra"

	"attrsync/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.php|directory>",
	Short: "Report annotations that are out of sync with attributes",
	Long:  "Check reports every annotation that should become an attribute or duplicates one. It exits with status 1 when fixable problems or errors are found.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTarget(cmd, args[0], driver.ModeCheck)
	},
}
