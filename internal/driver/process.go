package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"attrsync/internal/decl"
	"attrsync/internal/diag"
	"attrsync/internal/doccomment"
	"attrsync/internal/fix"
	"attrsync/internal/lexer"
	"attrsync/internal/observ"
	"attrsync/internal/op"
	"attrsync/internal/reconcile"
	"attrsync/internal/source"
	"attrsync/internal/token"
)

// FileResult is the outcome of processing one file.
type FileResult struct {
	Path    string
	FileSet *source.FileSet
	// Bag holds the diagnostics. In fix modes it lists the fixed messages of
	// every pass followed by what the last pass left unresolved.
	Bag *diag.Bag
	// Original and Output are the normalized contents before and after the
	// fix passes. Output equals Original when nothing changed.
	Original []byte
	Output   []byte
	Passes   int
	Written  bool
	Cached   bool
	Timing   *observ.Report
}

// Changed reports whether the fix passes produced new content.
func (r *FileResult) Changed() bool {
	return r != nil && string(r.Original) != string(r.Output)
}

// ProcessFile runs the reconciliation of one file. Problems with the file
// itself are reported in the bag; the error is reserved for cancellation.
func ProcessFile(ctx context.Context, path string, opts Options) (*FileResult, error) {
	opts.normalize()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := opts.Logger.With(zap.String("file", path))
	res := &FileResult{
		Path:    path,
		FileSet: source.NewFileSet(),
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}
	timer := observ.NewTimer()
	started := time.Now()
	defer func() {
		if opts.Timings {
			report := timer.Report()
			res.Timing = &report
			appendTimingDiagnostic(res.Bag, timingPayload{Kind: "file", Path: path, TotalMS: report.TotalMS, Phases: report.Phases})
		}
	}()

	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, fmt.Sprintf("failed to load file: %v", err)))
		emit(opts.Progress, Event{File: path, Status: StatusError, Err: err})
		return res, nil
	}
	fingerprint := opts.Config.Fingerprint(opts.Registry)
	key := CacheKey(raw, fingerprint)
	if clean, err := opts.Cache.IsClean(key); err != nil {
		log.Debug("cache read failed", zap.Error(err))
	} else if clean {
		log.Debug("cache hit")
		id := res.FileSet.AddRaw(path, raw)
		res.Original = res.FileSet.Get(id).Content
		res.Output = res.Original
		res.Cached = true
		emit(opts.Progress, Event{File: path, Status: StatusCached, Elapsed: time.Since(started)})
		return res, nil
	}

	id := res.FileSet.AddRaw(path, raw)
	flags := res.FileSet.Get(id).Flags
	res.Original = res.FileSet.Get(id).Content
	res.Output = res.Original

	fixed := diag.NewBag(0)
	var last *diag.Bag
	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Passes = pass
		p := runPass(res.FileSet, id, pass, opts, timer)
		for _, m := range p.fixed {
			d := m.Diagnostic()
			d.Fixed = true
			fixed.Add(d)
		}
		last = p.pending
		if p.changed {
			res.Output = p.output
			id = res.FileSet.Add(path, p.output, flags|source.FileVirtual)
		}
		if p.conflict {
			log.Info("fix loop stopped by conflict", zap.Int("pass", pass))
			break
		}
		if !p.changed {
			break
		}
		if pass >= opts.Config.MaxPasses {
			last.Add(diag.New(diag.SevWarning, diag.EngPassLimit, source.Span{File: id},
				fmt.Sprintf("file did not reach a stable state after %d passes", pass)))
			log.Warn("pass limit reached", zap.Int("passes", pass))
			break
		}
	}
	res.Bag.Merge(fixed)
	res.Bag.Merge(last)

	if opts.Mode == ModeFix && res.Changed() {
		idx := timer.Begin(string(StageWrite))
		emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusWorking, Pass: res.Passes})
		err := writeBack(path, raw, source.Restore(res.Output, flags))
		timer.End(idx, "")
		if err != nil {
			res.Bag.Unfix()
			var ce *fix.ConflictError
			if errors.As(err, &ce) {
				res.Bag.Add(diag.NewError(diag.EngConflict, source.Span{}, ce.Error()))
			} else {
				res.Bag.Add(diag.NewError(diag.IOWriteFileError, source.Span{}, fmt.Sprintf("failed to write file: %v", err)))
			}
			log.Warn("write failed", zap.Error(err))
			emit(opts.Progress, Event{File: path, Status: StatusError, Err: err, Elapsed: time.Since(started)})
			return res, nil
		}
		res.Written = true
		log.Info("file fixed", zap.Int("passes", res.Passes), zap.Int("fixed", fixed.Len()))
	}

	if last.Len() == 0 && (opts.Mode != ModeDryRun || !res.Changed()) {
		content := raw
		if res.Written {
			content = source.Restore(res.Output, flags)
		}
		if err := opts.Cache.MarkClean(CacheKey(content, fingerprint), path); err != nil {
			log.Debug("cache write failed", zap.Error(err))
		}
	}
	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	emit(opts.Progress, Event{File: path, Status: status, Pass: res.Passes, Elapsed: time.Since(started)})
	return res, nil
}

type passResult struct {
	output   []byte
	changed  bool
	conflict bool
	fixed    []*op.Message
	pending  *diag.Bag
}

// runPass tokenizes one version of the file and reconciles every
// declaration. Outside the fix modes nothing is committed.
func runPass(fs *source.FileSet, id source.FileID, pass int, opts Options, timer *observ.Timer) passResult {
	file := fs.Get(id)
	out := passResult{pending: diag.NewBag(opts.MaxDiagnostics)}
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: out.pending})
	note := fmt.Sprintf("pass %d", pass)

	emit(opts.Progress, Event{File: file.Path, Stage: StageLex, Status: StatusWorking, Pass: pass})
	idx := timer.Begin(string(StageLex))
	snap := lexer.Tokenize(file, lexer.Options{Reporter: reporter})
	timer.End(idx, note)

	emit(opts.Progress, Event{File: file.Path, Stage: StageReconcile, Status: StatusWorking, Pass: pass})
	idx = timer.Begin(string(StageReconcile))
	defer timer.End(idx, note)

	f := reconcile.NewFile(snap)
	buf := fix.NewBuffer(snap.Content())
	ropts := reconcile.Options{Retain: opts.Config.RetainLegacy, Registry: opts.Registry}
	for i, d := range f.Decls {
		ops, err := reconcile.Run(f, i, ropts)
		if err != nil {
			reporter.Report(structuralDiagnostic(snap, d, err))
			continue
		}
		cs, err := fix.Build(snap, d, ops, fix.Options{Resolver: f.Resolver})
		if err != nil {
			reporter.Report(structuralDiagnostic(snap, d, err))
			continue
		}
		if !opts.Mode.fixing() || out.conflict {
			report(reporter, cs.Messages, nil)
			continue
		}
		if err := buf.Commit(cs); err != nil {
			report(reporter, cs.Messages, nil)
			var ce *fix.ConflictError
			if !errors.As(err, &ce) {
				reporter.Report(diag.NewError(diag.EngConflict, snap.Tokens[d.Anchor].Span, err.Error()))
			} else {
				reporter.Report(diag.NewError(diag.EngConflict, ce.Span, ce.Error()).WithNote(ce.Span, ce.Diff()))
			}
			out.conflict = true
			continue
		}
		report(reporter, cs.Messages, cs.Fixed)
		out.fixed = append(out.fixed, cs.Fixed...)
	}
	if buf.Changed() {
		out.changed = true
		out.output = buf.Bytes()
	}
	return out
}

// report forwards the messages that were not fixed.
func report(r diag.Reporter, messages, fixed []*op.Message) {
	done := make(map[*op.Message]bool, len(fixed))
	for _, m := range fixed {
		done[m] = true
	}
	for _, m := range messages {
		if done[m] {
			continue
		}
		r.Report(m.Diagnostic())
	}
}

func structuralDiagnostic(snap *token.Snapshot, d decl.Decl, err error) diag.Diagnostic {
	code := diag.EngUnsupportedDeclaration
	if errors.Is(err, doccomment.ErrNotDocComment) {
		code = diag.EngNotDocComment
	}
	return diag.NewError(code, snap.Tokens[d.Anchor].Span, err.Error())
}
