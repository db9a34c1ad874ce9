package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"attrsync/internal/config"
	"attrsync/internal/handler"
)

type settings struct {
	cfg            config.Config
	format         string
	color          bool
	jobs           int
	maxDiagnostics int
	timings        bool
	ui             uiMode
	noCache        bool
}

// loadSettings resolves the config for target and applies the flags on
// top of it.
func loadSettings(cmd *cobra.Command, target string) (*settings, error) {
	flags := cmd.Flags()
	s := &settings{}

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		s.cfg, err = config.Load(configPath)
	} else {
		s.cfg, err = config.Discover(target)
	}
	if err != nil {
		return nil, err
	}
	if err := s.cfg.Validate(handler.DefaultRegistry()); err != nil {
		return nil, err
	}
	if flags.Changed("retain-legacy") {
		if s.cfg.RetainLegacy, err = flags.GetBool("retain-legacy"); err != nil {
			return nil, err
		}
	}
	maxPasses, err := flags.GetInt("max-passes")
	if err != nil {
		return nil, err
	}
	if maxPasses < 0 {
		return nil, fmt.Errorf("--max-passes must not be negative")
	}
	if maxPasses > 0 {
		s.cfg.MaxPasses = maxPasses
	}

	format, err := flags.GetString("format")
	if err != nil {
		return nil, err
	}
	s.format = strings.ToLower(strings.TrimSpace(format))
	switch s.format {
	case "pretty", "short", "json":
	default:
		return nil, fmt.Errorf("invalid --format value %q (expected pretty|short|json)", format)
	}
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, err
	}
	if s.color, err = readColorMode(colorFlag, os.Stdout); err != nil {
		return nil, err
	}
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return nil, err
	}
	if s.ui, err = readUIMode(uiFlag); err != nil {
		return nil, err
	}
	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return nil, err
	}
	if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, err
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, err
	}
	if s.noCache, err = flags.GetBool("no-cache"); err != nil {
		return nil, err
	}
	return s, nil
}
