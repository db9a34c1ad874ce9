package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"attrsync/internal/diagfmt"
	"attrsync/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.php",
	Short: "Print the tokens of a PHP file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().Bool("dump", false, "dump the raw token structs")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	dump, err := cmd.Flags().GetBool("dump")
	if err != nil {
		return fmt.Errorf("failed to get dump flag: %w", err)
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	result, err := driver.Tokenize(args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	if result.Bag.Len() > 0 {
		colorFlag, _ := cmd.Flags().GetString("color")
		useColor, err := readColorMode(colorFlag, os.Stderr)
		if err != nil {
			return err
		}
		result.Bag.Sort()
		report := diagfmt.Report{Path: result.File.Path, Bag: result.Bag, FileSet: result.FileSet}
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), report, diagfmt.PrettyOpts{Color: useColor}); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Fdump(out, result.Snap.Tokens)
		return nil
	}
	switch format {
	case "pretty", "short":
		return diagfmt.FormatTokensPretty(out, result.Snap.Tokens, result.FileSet)
	case "json":
		return diagfmt.FormatTokensJSON(out, result.Snap.Tokens)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
