// Package driver checks many files concurrently over one shared atom/type
// interner, fanning work out across a bounded worker pool and collecting
// one diag.Bag per file — grounded on internal/driver/parallel.go's
// DiagnoseDirWithOptions: an errgroup.Group with SetLimit(jobs), a
// pre-sized result slice indexed by file position so workers never
// contend on a shared append. CheckDir has no per-file load step: every
// unit it reaches is checked and yields a Result with a Bag.
//
// This repo has no scanner/parser of its own (spec.md §9 places lexical
// scanning and concrete syntax parsing out of scope), so CheckDir takes
// already-built Units rather than file paths: a caller loads or
// constructs each file's AST/symbol table/inheritance graph (typically
// through internal/fixture, or a real binder a future phase adds) and
// hands the result to CheckDir, which owns only the per-file semantic
// analysis fan-out.
package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"tschecker/internal/atom"
	"tschecker/internal/checker"
	"tschecker/internal/config"
	"tschecker/internal/diag"
	"tschecker/internal/extcore"
	"tschecker/internal/querycache"
	"tschecker/internal/types"
)

// Unit is one file's worth of already-built program, ready to check.
// Path is used only for labeling Results/Events; it need not be a real
// filesystem path.
type Unit struct {
	Path     string
	AST      extcore.ASTArena
	Flow     extcore.FlowArena
	Syms     extcore.SymbolTable
	Graph    extcore.InheritanceGraph
	Root     extcore.NodeID
	ExprType checker.ExprTypeFunc
}

// Result is one Unit's outcome: its diagnostics. Err is for a unit that
// could not be checked at all; CheckDir itself never sets it.
type Result struct {
	Path string
	Bag  *diag.Bag
	Err  error
}

// Stage narrows buildpipeline.Stage's richer parse/lower/build/link/run
// pipeline down to the two phases a pure semantic-analysis driver
// actually has.
type Stage uint8

const (
	StageLoad Stage = iota
	StageCheck
)

// Status mirrors buildpipeline.Status.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event is one progress notification, consumed by internal/progressui
// the same way internal/ui.NewProgressModel consumes a
// <-chan buildpipeline.Event.
type Event struct {
	Path   string
	Stage  Stage
	Status Status
}

// Shared bundles the read-only tables every worker's Session is built
// over: one atom store and type interner for the whole run (so a type
// interned while checking one file is the same TypeID when another file
// references it), one querycache.Cache (already documented safe for
// concurrent use across exactly this caller), and the CheckerOptions
// every Session must honor consistently.
type Shared struct {
	Interner *types.Interner
	Atoms    *atom.Interner
	Apparent *types.ApparentTypes
	Cache    *querycache.Cache
	Options  extcore.CheckerOptions
}

// NewShared builds a fresh, empty Shared table set from cfg's checker
// options, for a caller that has no pre-existing interner/atom store of
// its own to reuse.
func NewShared(cfg config.Config) *Shared {
	atoms := atom.New()
	interner := types.New()
	return &Shared{
		Interner: interner,
		Atoms:    atoms,
		Apparent: types.NewApparentTypes(interner, atoms),
		Cache:    querycache.New(),
		Options:  cfg.Checker,
	}
}

// CheckDir runs CheckSourceFile over every unit, at most jobs at a time
// (jobs<=0 means runtime.GOMAXPROCS(0), matching cmd/surge's own
// "0=auto" --jobs convention), emitting one Event per stage transition on
// events if non-nil. Results are returned in the same order as units,
// not completion order, exactly like DiagnoseDirWithOptions's
// index-addressed results slice.
func CheckDir(ctx context.Context, units []Unit, shared *Shared, maxDiagnostics, jobs int, events chan<- Event) ([]Result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if len(units) == 0 {
		return nil, nil
	}

	results := make([]Result, len(units))
	emit := func(ev Event) {
		if events != nil {
			events <- ev
		}
	}
	for _, u := range units {
		emit(Event{Path: u.Path, Stage: StageLoad, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))

	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			emit(Event{Path: u.Path, Stage: StageCheck, Status: StatusWorking})

			bag := diag.NewBag(maxDiagnostics)
			sess := checker.NewSession(
				shared.Interner, shared.Atoms, shared.Apparent, shared.Options,
				u.AST, u.Flow, u.Syms, u.Graph, u.ExprType, shared.Cache, bag,
			)
			sess.CheckSourceFile(u.Root)

			status := StatusDone
			if bag.HasErrors() {
				status = StatusError
			}
			emit(Event{Path: u.Path, Stage: StageCheck, Status: status})

			results[i] = Result{Path: u.Path, Bag: bag}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
