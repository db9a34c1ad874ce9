package main

import (
	"github.com/spf13/cobra"

	"attrsync/internal/driver"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.php|directory>",
	Short: "Rewrite annotations as attributes",
	Long: `Fix applies the changes check reports, repeating until each file is stable.
With --dry-run nothing is written and a unified diff of the changes is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("dry-run", false, "print the changes instead of writing them")
}

func runFix(cmd *cobra.Command, args []string) error {
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	mode := driver.ModeFix
	if dryRun {
		mode = driver.ModeDryRun
	}
	return runTarget(cmd, args[0], mode)
}
