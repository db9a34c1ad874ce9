package driver

import (
	"go.uber.org/zap"

	"attrsync/internal/config"
	"attrsync/internal/handler"
)

// Mode selects what Run does with the reconciliation result.
type Mode uint8

const (
	// ModeCheck reports problems without touching files.
	ModeCheck Mode = iota
	// ModeFix writes the fixed content back.
	ModeFix
	// ModeDryRun computes the fixed content but does not write it.
	ModeDryRun
)

func (m Mode) fixing() bool { return m == ModeFix || m == ModeDryRun }

func (m Mode) String() string {
	switch m {
	case ModeFix:
		return "fix"
	case ModeDryRun:
		return "dry-run"
	default:
		return "check"
	}
}

type Options struct {
	Mode   Mode
	Config config.Config
	// Registry defaults to handler.DefaultRegistry minus the families the
	// config disables.
	Registry *handler.Registry
	// Jobs bounds the files processed at once; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps each file's bag; <= 0 means no limit.
	MaxDiagnostics int
	// Cache may be nil.
	Cache   *DiskCache
	Timings bool
	Logger  *zap.Logger
	// Progress may be nil.
	Progress ProgressSink
}

func (o *Options) normalize() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Registry == nil {
		o.Registry = o.Config.Registry(handler.DefaultRegistry())
	}
	if o.Config.MaxPasses <= 0 {
		o.Config.MaxPasses = config.DefaultMaxPasses
	}
}
