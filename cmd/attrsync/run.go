package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"attrsync/internal/diagfmt"
	"attrsync/internal/driver"
)

// runTarget processes every file under target in the given mode and prints
// the results.
func runTarget(cmd *cobra.Command, target string, mode driver.Mode) error {
	s, err := loadSettings(cmd, target)
	if err != nil {
		return err
	}
	files, err := driver.ListFiles(target, s.cfg)
	if err != nil {
		return err
	}
	logger.Debug("files selected", zap.String("target", target), zap.Int("count", len(files)), zap.String("config", s.cfg.Path))

	var cache *driver.DiskCache
	if s.cfg.Cache.Enabled && !s.noCache {
		cache, err = driver.OpenDiskCache(s.cfg.Cache.Dir, "attrsync")
		if err != nil {
			logger.Warn("cache disabled", zap.Error(err))
			cache = nil
		}
	}
	opts := driver.Options{
		Mode:           mode,
		Config:         s.cfg,
		Jobs:           s.jobs,
		MaxDiagnostics: s.maxDiagnostics,
		Cache:          cache,
		Timings:        s.timings,
		Logger:         logger,
	}

	var (
		results []*driver.FileResult
		sum     driver.Summary
	)
	if shouldUseTUI(s.ui) && len(files) > 0 {
		results, sum, err = runWithUI(cmd.Context(), mode.String(), files, opts)
	} else {
		results, sum, err = driver.Run(cmd.Context(), files, opts)
	}
	if err != nil {
		return err
	}

	if err := render(cmd.OutOrStdout(), results, s, mode); err != nil {
		return err
	}
	if s.format != "json" {
		printSummary(cmd.ErrOrStderr(), sum, mode)
	}

	switch {
	case sum.Errors > 0:
		return errProblems
	case mode == driver.ModeCheck && sum.Fixable > 0:
		return errProblems
	case mode == driver.ModeDryRun && sum.Changed > 0:
		return errProblems
	}
	return nil
}

func render(w io.Writer, results []*driver.FileResult, s *settings, mode driver.Mode) error {
	base, _ := os.Getwd()
	reports := make([]diagfmt.Report, 0, len(results))
	for _, r := range results {
		r.Bag.Sort()
		reports = append(reports, diagfmt.Report{Path: r.Path, Bag: r.Bag, FileSet: r.FileSet})
	}
	if s.format == "json" {
		return diagfmt.JSON(w, reports, diagfmt.JSONOpts{IncludePositions: true, BaseDir: base, IncludeNotes: true})
	}

	prettyOpts := diagfmt.PrettyOpts{Color: s.color, Context: 0, BaseDir: base, ShowNotes: true}
	for i, rep := range reports {
		var err error
		if s.format == "short" {
			err = diagfmt.Short(w, rep, prettyOpts)
		} else {
			err = diagfmt.Pretty(w, rep, prettyOpts)
		}
		if err != nil {
			return err
		}
		if mode == driver.ModeDryRun && results[i].Changed() {
			previewOpts := diagfmt.PreviewOpts{Color: s.color, Context: 3, BaseDir: base}
			if err := diagfmt.Preview(w, results[i].Path, results[i].Original, results[i].Output, previewOpts); err != nil {
				return err
			}
		}
	}
	return nil
}

func printSummary(w io.Writer, sum driver.Summary, mode driver.Mode) {
	files := fmt.Sprintf("%d file(s)", sum.Files)
	if sum.Cached > 0 {
		files += fmt.Sprintf(", %d cached", sum.Cached)
	}
	switch mode {
	case driver.ModeFix:
		fmt.Fprintf(w, "%s: %d fixed, %d unresolved, %d with errors\n", files, sum.Written, sum.Fixable, sum.Errors)
	case driver.ModeDryRun:
		fmt.Fprintf(w, "%s: %d would change, %d with errors\n", files, sum.Changed, sum.Errors)
	default:
		fmt.Fprintf(w, "%s: %d fixable problem(s), %d with errors\n", files, sum.Fixable, sum.Errors)
	}
}
