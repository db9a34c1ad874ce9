package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"attrsync/internal/version"
)

// errProblems makes the process exit with status 1 without printing an
// error; the diagnostics were printed already.
var errProblems = errors.New("problems found")

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "attrsync",
	Short: "Sync PHPUnit doc comment annotations with attributes",
	Long: `attrsync converts PHPUnit metadata annotations (@test, @dataProvider, @covers, ...)
into the equivalent PHP attributes, removes annotations that duplicate an attribute,
and with --retain-legacy keeps both forms in sync.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		built, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = built
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to .attrsync.toml (default: discovered from the target)")
	flags.Bool("retain-legacy", false, "keep annotations and add the missing ones instead of removing them")
	flags.String("format", "pretty", "output format (pretty|short|json)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Int("jobs", 0, "files processed in parallel (0 = GOMAXPROCS)")
	flags.Int("max-passes", 0, "maximum fix passes per file (0 = config value)")
	flags.Int("max-diagnostics", 0, "maximum diagnostics per file (0 = unlimited)")
	flags.Bool("timings", false, "show timing information")
	flags.String("ui", "off", "show a progress view (auto|on|off)")
	flags.Bool("no-cache", false, "do not read or write the result cache")
	flags.BoolP("verbose", "v", false, "log debug information to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errProblems) {
			fmt.Fprintln(os.Stderr, "attrsync:", err)
		}
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
