package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tschecker/internal/diag"
)

var explainCmd = &cobra.Command{
	Use:   "explain <code>",
	Short: "Print the description registered for a diagnostic code",
	Long:  `explain looks a code such as "TS2000" or "TS-FLOW5000" up by its ID and prints its title`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	code, ok := diag.LookupByID(args[0])
	if !ok {
		return fmt.Errorf("unknown diagnostic code %q", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), code.String())
	return nil
}
