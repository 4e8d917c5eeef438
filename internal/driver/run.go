package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	godiffpatch "github.com/sourcegraph/go-diff-patch"
	"golang.org/x/sync/errgroup"

	"downlevel/internal/ast"
	"downlevel/internal/astpack"
	"downlevel/internal/diag"
	"downlevel/internal/emitnode"
	"downlevel/internal/helpers"
	"downlevel/internal/observ"
	"downlevel/internal/printer"
	"downlevel/internal/source"
	"downlevel/internal/trace"
	"downlevel/internal/transform"
)

// Options configures one lowering run.
type Options struct {
	Target transform.Target
	// MaxDepth bounds both document nesting and the lowering visitor.
	MaxDepth int
	Jobs     int
	// OutDir receives the .js files. Empty keeps outputs in memory.
	OutDir string
	// BaseDir is stripped from input paths when laying out OutDir.
	BaseDir string
	Helpers printer.HelperMode
	Indent  string
	// Diff fills FileResult.Diff with a unified diff of the input as
	// printed before and after lowering.
	Diff           bool
	MaxDiagnostics int
	Progress       ProgressSink
	Timer          *observ.Timer
}

func (o Options) withDefaults() Options {
	if o.Target == 0 {
		o.Target = transform.DefaultTarget
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = transform.DefaultMaxDepth
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = 100
	}
	if o.Progress == nil {
		o.Progress = nopSink{}
	}
	if o.Timer == nil {
		o.Timer = observ.NewTimer()
	}
	return o
}

// FileResult is the outcome for one input document.
type FileResult struct {
	Input string
	// Output is where the code goes under OutDir; set even when OutDir is
	// empty so callers can name in-memory outputs.
	Output  string
	Code    []byte
	Diff    string
	Helpers []helpers.ID
	// Emitted lists the helpers whose definitions Code carries.
	Emitted []helpers.ID
	Changed bool
	Written bool
	Failed  bool
}

// Result collects the outputs and diagnostics of a run. Spans of every
// diagnostic resolve against Sources.
type Result struct {
	Files   []FileResult
	Sources *source.FileSet
	Bag     *diag.Bag
	Timings observ.Report
}

// Failed counts inputs that produced no output.
func (r *Result) Failed() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].Failed {
			n++
		}
	}
	return n
}

// ErrAborted is wrapped by Run's error when an internal defect stopped the run.
var ErrAborted = errors.New("run aborted by internal defect")

// AbortError carries the defect that stopped a run.
type AbortError struct {
	Path       string
	Diagnostic diag.Diagnostic
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Diagnostic.Code.ID(), e.Diagnostic.Message)
}

func (e *AbortError) Unwrap() error { return ErrAborted }

// fileError is an I/O failure on an input or output file.
type fileError struct {
	Code diag.Code
	Path string
	Err  error
}

func (e *fileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *fileError) Unwrap() error { return e.Err }

type runner struct {
	opts     Options
	sources  *lockedSources
	reporter *diag.LockedReporter
}

// Run lowers every input in parallel, one Builder per file. Bad input
// fails only its own file and is reported in Result.Bag. An internal
// defect or cancellation stops the run: files not yet started are
// skipped, nothing is written and the returned error says why.
func Run(ctx context.Context, inputs []string, opts Options) (res *Result, err error) {
	opts = opts.withDefaults()
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "run")
	span.WithExtra("files", strconv.Itoa(len(inputs))).WithExtra("target", opts.Target.String())
	phase := opts.Timer.Begin("run")
	defer func() {
		detail := "ok"
		if err != nil {
			detail = err.Error()
		}
		opts.Timer.End(phase, detail)
		span.End(detail)
	}()

	res = &Result{
		Files:   make([]FileResult, len(inputs)),
		Sources: source.NewFileSet(),
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}
	r := &runner{
		opts:     opts,
		sources:  &lockedSources{fs: res.Sources},
		reporter: diag.NewLockedReporter(diag.BagReporter{Bag: res.Bag}),
	}

	claimed := make(map[string]string, len(inputs))
	for i, in := range inputs {
		out := OutputPath(opts.OutDir, opts.BaseDir, in)
		res.Files[i] = FileResult{Input: in, Output: out}
		if prev, dup := claimed[out]; dup {
			res.Files[i].Failed = true
			diag.ReportError(r.reporter, diag.IOWriteFileError, source.NoSpan,
				fmt.Sprintf("output %s is also produced by %s", out, prev)).
				WithPath(in).
				WithNote(source.NoSpan, "outputs keep the input path relative to the base directory").
				Emit()
			continue
		}
		claimed[out] = in
		opts.Progress.OnEvent(Event{File: in, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(opts.Jobs, len(inputs))))
	for i := range res.Files {
		if res.Files[i].Failed {
			continue
		}
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				return err
			}
			return r.lowerFile(gctx, &res.Files[i])
		})
	}
	if err = g.Wait(); err != nil {
		res.Files = nil
		return res, err
	}
	if err = ctx.Err(); err != nil {
		res.Files = nil
		return res, err
	}

	if opts.OutDir != "" {
		r.writeAll(ctx, res.Files)
	}
	for i := range res.Files {
		if !res.Files[i].Failed {
			opts.Progress.OnEvent(Event{File: res.Files[i].Input, Status: StatusDone})
		}
	}
	res.Timings = opts.Timer.Report()
	return res, nil
}

// lowerFile runs decode, lower and print for one input. Failures caused by
// the input are recorded on fr; only defects come back as an error.
func (r *runner) lowerFile(ctx context.Context, fr *FileResult) (err error) {
	ctx, span := trace.Start(ctx, trace.ScopeFile, "file")
	span.WithExtra("path", fr.Input)
	defer func() {
		detail := "ok"
		switch {
		case err != nil:
			detail = err.Error()
		case fr.Failed:
			detail = "failed"
		}
		span.End(detail)
	}()
	defer r.recoverDefect(ctx, fr, &err)

	b := ast.NewBuilder(ast.Hints{})
	table := emitnode.NewTable(b)

	var file ast.FileID
	if err := r.stage(ctx, fr.Input, StageDecode, func() error {
		var derr error
		file, derr = r.decode(b, fr.Input)
		return derr
	}); err != nil {
		r.fail(fr, StageDecode, err)
		return nil
	}

	var before []byte
	if r.opts.Diff {
		orig, err := printer.Print(b, table, file, nil, printer.Options{Indent: r.opts.Indent, Helpers: printer.HelpersNone})
		if err != nil {
			return r.abort(ctx, fr, diag.NewError(diag.DefectInternal, source.NoSpan, err.Error()))
		}
		before = orig.Code
	}

	var out *transform.Output
	if err := r.stage(ctx, fr.Input, StageLower, func() error {
		c := transform.NewContext(b, table, transform.Options{
			Target:     r.opts.Target,
			MaxDepth:   r.opts.MaxDepth,
			Tracer:     trace.FromContext(ctx),
			ParentSpan: trace.ParentID(ctx),
		})
		var lerr error
		out, lerr = transform.Lower(c, file)
		return lerr
	}); err != nil {
		r.fail(fr, StageLower, err)
		return nil
	}

	var printed *printer.Result
	if err := r.stage(ctx, fr.Input, StagePrint, func() error {
		var perr error
		printed, perr = printer.Print(b, table, file, out.Stmts, printer.Options{Indent: r.opts.Indent, Helpers: r.opts.Helpers})
		return perr
	}); err != nil {
		// The printer only fails on trees the engine itself produced.
		return r.abort(ctx, fr, diag.NewError(diag.DefectInternal, source.NoSpan, err.Error()))
	}

	fr.Code = printed.Code
	fr.Helpers = printed.Required
	fr.Emitted = printed.Emitted
	fr.Changed = out.Changed
	if r.opts.Diff {
		name := filepath.ToSlash(OutputPath("", r.opts.BaseDir, fr.Input))
		fr.Diff = godiffpatch.GeneratePatch(name, string(before), string(printed.Code))
	}
	span.WithExtra("helpers", strconv.Itoa(len(fr.Helpers)))
	return nil
}

// stage runs fn as one pipeline step: progress event, pass span and timer.
// transform.Lower opens its own pass span, so StageLower gets none here.
func (r *runner) stage(ctx context.Context, path string, st Stage, fn func() error) error {
	r.opts.Progress.OnEvent(Event{File: path, Stage: st, Status: StatusWorking})
	span := &trace.Span{}
	if st != StageLower {
		_, span = trace.Start(ctx, trace.ScopePass, string(st))
	}
	err := r.opts.Timer.Measure(string(st), fn)
	detail := "ok"
	if err != nil {
		detail = err.Error()
	}
	span.End(detail)
	return err
}

func (r *runner) decode(b *ast.Builder, path string) (ast.FileID, error) {
	format, ok := astpack.FormatForPath(path)
	if !ok {
		return 0, &astpack.Error{Code: diag.PackBadFormat, Path: path,
			Msg: "unknown document extension, want .jspack or .json"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, &fileError{Code: diag.PackReadError, Path: path, Err: err}
	}
	return astpack.Decode(b, r.sources, path, data, format, astpack.Options{MaxDepth: r.opts.MaxDepth})
}

func (r *runner) fail(fr *FileResult, st Stage, err error) {
	fr.Failed = true
	r.reporter.Add(diagnosticFor(fr.Input, err))
	r.opts.Progress.OnEvent(Event{File: fr.Input, Stage: st, Status: StatusError, Err: err})
}

// diagnosticFor maps an ordinary file failure to its diagnostic.
func diagnosticFor(path string, err error) diag.Diagnostic {
	var pe *astpack.Error
	var de *transform.DepthError
	var fe *fileError
	switch {
	case errors.As(err, &pe):
		return pe.Diagnostic()
	case errors.As(err, &de):
		return diag.NewError(diag.LowerDepthExceeded, de.Span,
			fmt.Sprintf("expression nesting exceeds the limit of %d", de.Limit)).WithPath(path)
	case errors.As(err, &fe):
		return diag.NewError(fe.Code, source.NoSpan, fe.Err.Error()).WithPath(fe.Path)
	}
	return diag.NewError(diag.UnknownCode, source.NoSpan, err.Error()).WithPath(path)
}

// recoverDefect turns a defect panic of the file's worker into an abort.
// Any other panic is not ours and keeps unwinding.
func (r *runner) recoverDefect(ctx context.Context, fr *FileResult, errp *error) {
	rec := recover()
	if rec == nil {
		return
	}
	var d diag.Diagnostic
	switch v := rec.(type) {
	case *transform.Defect:
		d = diag.NewError(v.Code, v.Span, v.Msg)
	case *emitnode.UnresolvedNodeError:
		d = diag.NewError(diag.DefectUnresolvedNode, source.NoSpan, v.Error())
	default:
		panic(rec)
	}
	*errp = r.abort(ctx, fr, d)
}

func (r *runner) abort(ctx context.Context, fr *FileResult, d diag.Diagnostic) error {
	d = d.WithPath(fr.Input)
	fr.Failed = true
	r.reporter.Add(d)
	trace.Point(trace.FromContext(ctx), trace.ScopeFile, "defect", d.Message, trace.ParentID(ctx))
	abort := &AbortError{Path: fr.Input, Diagnostic: d}
	r.opts.Progress.OnEvent(Event{File: fr.Input, Status: StatusError, Err: abort})
	return abort
}

// writeAll stores the outputs once every file lowered cleanly, so a run
// aborted halfway leaves OutDir untouched.
func (r *runner) writeAll(ctx context.Context, files []FileResult) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.opts.Jobs))
	for i := range files {
		fr := &files[i]
		if fr.Failed {
			continue
		}
		g.Go(func() error {
			err := r.stage(gctx, fr.Input, StageWrite, func() error {
				if err := writeFileAtomic(fr.Output, fr.Code); err != nil {
					return &fileError{Code: diag.IOWriteFileError, Path: fr.Output, Err: err}
				}
				return nil
			})
			if err != nil {
				r.fail(fr, StageWrite, err)
				return nil
			}
			fr.Written = true
			return nil
		})
	}
	_ = g.Wait()
}
