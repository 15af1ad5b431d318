package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"tschecker/internal/checker"
	"tschecker/internal/config"
	"tschecker/internal/diag"
	"tschecker/internal/diagfmt"
	"tschecker/internal/driver"
	"tschecker/internal/fixture"
	"tschecker/internal/progressui"
	"tschecker/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.json|directory>",
	Short: "Check fixture source files for type and flow errors",
	Long: `check loads one fixture program (or every *.json fixture program under a
directory) and runs every assignability, definite-assignment, and
unreachability check over it, printing the resulting diagnostics`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory checking (0=auto)")
	checkCmd.Flags().Int("max-diagnostics", 0, "maximum diagnostics to collect per file (0=use config default)")
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
}

// runCheck resolves configuration and flags, discovers the fixture programs
// named by path, checks them all through a shared driver.CheckDir run, and
// prints the result - grounded on cmd/surge/diagnose.go's runDiagnose, with
// the stage/directive/HIR machinery dropped (this driver has no parser,
// HIR, or monomorphizer of its own to drive).
func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	configPath, err := loadConfigFlag(cmd)
	if err != nil {
		return err
	}
	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	if v, _ := cmd.Flags().GetInt("jobs"); v != 0 {
		cfg.Jobs = v
	}
	if v, _ := cmd.Flags().GetInt("max-diagnostics"); v != 0 {
		cfg.MaxDiagnostics = v
	}
	if v, _ := cmd.Flags().GetBool("no-warnings"); v {
		cfg.NoWarnings = true
	}
	if v, _ := cmd.Flags().GetBool("warnings-as-errors"); v {
		cfg.WarningsAsErrors = true
	}
	if cfg.NoWarnings && cfg.WarningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors cannot both be set")
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return err
	}

	paths, err := discoverFixtures(path)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%s: no fixture programs found", path)
	}

	shared := driver.NewShared(cfg)
	units := make([]driver.Unit, 0, len(paths))
	for _, p := range paths {
		prog, err := fixture.LoadProgram(p)
		if err != nil {
			return err
		}
		b := fixture.NewBuilder(shared.Atoms)
		syms := fixture.NewSymbols()
		graph := fixture.NewInheritanceGraph()
		root, err := prog.Build(b, syms, shared.Interner)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		units = append(units, driver.Unit{
			Path:     p,
			AST:      b.Arena(),
			Flow:     b.Arena(),
			Syms:     syms,
			Graph:    graph,
			Root:     root,
			ExprType: checker.ExprTypeFunc(b.Arena().ExprType),
		})
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	var results []driver.Result
	if quiet || !isTerminal(os.Stdout) {
		results, err = driver.CheckDir(cmd.Context(), units, shared, cfg.MaxDiagnostics, cfg.Jobs, nil)
	} else {
		results, err = runCheckWithUI(cmd.Context(), "checking", paths, units, shared, cfg)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	hasErrors := false
	for _, r := range results {
		if r.Bag.HasErrors() {
			hasErrors = true
		}
		if cfg.WarningsAsErrors && r.Bag.HasWarnings() {
			hasErrors = true
		}
		if err := printResult(os.Stdout, r, format, withNotes, useColor(cmd, os.Stdout)); err != nil {
			return err
		}
	}

	if hasErrors {
		// Diagnostics are already printed; suppress cobra's usage dump and
		// return a silent error just to make main() exit 1.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

type checkOutcome struct {
	results []driver.Result
	err     error
}

func runCheckWithUI(ctx context.Context, title string, paths []string, units []driver.Unit, shared *driver.Shared, cfg config.Config) ([]driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		results, err := driver.CheckDir(ctx, units, shared, cfg.MaxDiagnostics, cfg.Jobs, events)
		outcomeCh <- checkOutcome{results: results, err: err}
		close(events)
	}()

	model := progressui.New(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

// discoverFixtures resolves path to a sorted list of fixture JSON files: the
// file itself if path names a file, or every *.json file under it if path
// names a directory.
func discoverFixtures(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var paths []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(p) == ".json" {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// printResult renders one file's diagnostics. Fixture-built programs carry
// no real source text, so every diagnostic's span resolves against a fresh,
// empty virtual file registered under the file's own path: positions always
// come out as line 1, column 1, but the path and message are accurate. This
// avoids diagfmt.Pretty panicking on the zero-value span internal/fixture's
// arena always reports (see internal/fixture/astarena.go's Span method).
func printResult(w *os.File, r driver.Result, format string, withNotes, color bool) error {
	fs := source.NewFileSet()
	fs.AddVirtual(r.Path, nil)

	switch format {
	case "pretty":
		diagfmt.Pretty(w, r.Bag, fs, diagfmt.PrettyOpts{
			Color:     color,
			Context:   2,
			PathMode:  diagfmt.PathModeRelative,
			ShowNotes: withNotes,
		})
	case "short":
		out := diag.FormatGoldenDiagnostics(r.Bag.Items(), fs, withNotes)
		if out != "" {
			fmt.Fprintln(w, out)
		}
	case "json":
		if err := diagfmt.JSON(w, r.Bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			IncludeNotes:     withNotes,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
