package driver

import (
	"context"
	"fmt"
	"time"

	"paraflow/internal/ast"
	"paraflow/internal/constfold"
	"paraflow/internal/locality"
	"paraflow/internal/observ"
	"paraflow/internal/poly"
	"paraflow/internal/sema"
	"paraflow/internal/source"
	"paraflow/internal/symbols"
	"paraflow/internal/trace"
	"paraflow/internal/treeio"
)

// Result is the outcome of compiling one tree.
type Result struct {
	Path   string
	FileID source.FileID
	// Tree and Table are nil for cached verdicts.
	Tree  *ast.Tree
	Table *symbols.Table
	// Err is the first error of the compilation, usually a *diag.Error.
	Err    error
	Cached bool
	Folded int
	Timing *observ.Report
}

// OK reports whether the tree passed every check.
func (r *Result) OK() bool { return r.Err == nil }

// CompileOptions tunes a single compilation.
type CompileOptions struct {
	Progress ProgressSink
	Timings  bool
	// Through stops after the given stage; empty runs every pass.
	Through Stage
}

// Compile runs the whole pipeline over one loaded tree dump. It stops at
// the first error, which is returned in Result.Err.
func Compile(ctx context.Context, fs *source.FileSet, id source.FileID, opts CompileOptions) *Result {
	res := &Result{FileID: id}
	file := fs.Get(id)
	if file == nil {
		res.Err = fmt.Errorf("file %d is not loaded", id)
		return res
	}
	res.Path = file.Path

	tr := trace.FromContext(ctx)
	fileSpan := trace.Begin(tr, trace.ScopeFile, file.Path, trace.ParentOf(ctx))
	parent := fileSpan.ID()
	if parent == 0 {
		parent = trace.ParentOf(ctx)
	}

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	pc := &passRunner{ctx: ctx, tracer: tr, parent: parent, path: file.Path, timer: timer, sink: opts.Progress}

	passes := []struct {
		stage Stage
		fn    func() (string, error)
	}{
		{StageLoad, func() (string, error) {
			tree, err := treeio.Load(fs, id)
			if err != nil {
				return "", err
			}
			res.Tree = tree
			res.Table = symbols.NewTable(symbols.Hints{Scopes: uint(tree.Len() / 4), Vars: uint(tree.Len() / 2)}, nil)
			return fmt.Sprintf("nodes=%d", tree.Len()), nil
		}},
		{StageBind, func() (string, error) {
			symbols.AssignScopes(res.Tree, res.Table)
			return "", symbols.Bind(res.Tree, res.Table)
		}},
		{StageFold, func() (string, error) {
			n, err := constfold.Fold(res.Tree, res.Table)
			res.Folded = n
			return fmt.Sprintf("folded=%d", n), err
		}},
		{StageCheck, func() (string, error) {
			return "", sema.Check(res.Tree, res.Table)
		}},
		// poly and locality only read the checked tree
		{StagePoly, func() (string, error) {
			return "", poly.Resolve(res.Tree, res.Table)
		}},
		{StageLocality, func() (string, error) {
			return "", locality.Check(res.Tree, res.Table)
		}},
	}
	for _, p := range passes {
		if res.Err = pc.run(p.stage, p.fn); res.Err != nil || p.stage == opts.Through {
			break
		}
	}

	if timer != nil {
		report := timer.Report()
		res.Timing = &report
	}
	status := StatusDone
	verdict := "ok"
	if res.Err != nil {
		status = StatusError
		verdict = "error"
	}
	fileSpan.WithExtra("verdict", verdict).End("")
	notify(opts.Progress, Event{File: file.Path, Status: status, Err: res.Err})
	return res
}

// passRunner wraps each pass in a trace span, a timer entry and progress events.
type passRunner struct {
	ctx    context.Context
	tracer trace.Tracer
	parent uint64
	path   string
	timer  *observ.Timer
	sink   ProgressSink
}

func (p *passRunner) run(stage Stage, fn func() (string, error)) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	notify(p.sink, Event{File: p.path, Stage: stage, Status: StatusWorking})
	span := trace.Begin(p.tracer, trace.ScopePass, string(stage), p.parent).WithExtra("file", p.path)
	idx := -1
	if p.timer != nil {
		idx = p.timer.Begin(string(stage))
	}
	start := time.Now()

	note, err := fn()
	if err != nil {
		note = "error"
	}

	if p.timer != nil {
		p.timer.End(idx, note)
	}
	span.End(note)
	if err != nil {
		notify(p.sink, Event{File: p.path, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(start)})
	}
	return err
}
