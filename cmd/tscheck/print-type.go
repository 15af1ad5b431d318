package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tschecker/internal/atom"
	"tschecker/internal/fixture"
	"tschecker/internal/types"
	"tschecker/internal/typeprint"
)

var printTypeCmd = &cobra.Command{
	Use:   "print-type <file.json> <declaration>",
	Short: "Print the declared type of one binding in a fixture program",
	Long:  `print-type loads a fixture program and renders the declared type of the named "let" binding`,
	Args:  cobra.ExactArgs(2),
	RunE:  runPrintType,
}

func runPrintType(cmd *cobra.Command, args []string) error {
	path, name := args[0], args[1]

	prog, err := fixture.LoadProgram(path)
	if err != nil {
		return err
	}

	var decl *fixture.Declaration
	for i := range prog.Declarations {
		if prog.Declarations[i].Name == name {
			decl = &prog.Declarations[i]
			break
		}
	}
	if decl == nil {
		return fmt.Errorf("%s: no declaration named %q", path, name)
	}

	atoms := atom.New()
	interner := types.New()
	b := fixture.NewBuilder(atoms)
	syms := fixture.NewSymbols()
	if _, err := prog.Build(b, syms, interner); err != nil {
		return err
	}

	declaredType, err := literalTypeIDForPrint(atoms, interner, decl)
	if err != nil {
		return err
	}

	printer := typeprint.New(interner, atoms, nil)
	fmt.Fprintln(cmd.OutOrStdout(), printer.Print(declaredType))
	return nil
}

// literalTypeIDForPrint re-derives decl's declared TypeID the same way
// fixture.Program.Build does internally, since Build doesn't hand that
// TypeID back to its caller (it only returns the built root node).
func literalTypeIDForPrint(atoms *atom.Interner, interner *types.Interner, decl *fixture.Declaration) (types.TypeID, error) {
	switch decl.Type.Kind {
	case "number":
		return interner.LiteralNumber(decl.Type.Num), nil
	case "string":
		return interner.LiteralString(atoms.Intern(decl.Type.Str)), nil
	default:
		return types.Error, fmt.Errorf("unknown literal kind %q", decl.Type.Kind)
	}
}
