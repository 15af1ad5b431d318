package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "tscheck",
	Short: "A standalone TypeScript-style semantic checker",
	Long:  `tscheck drives the assignability, inference, and flow cores over fixture source files`,
}

// main configures the root command, registers subcommands and persistent
// flags, and executes it, exiting with status 1 if execution fails -
// grounded on cmd/surge/main.go's rootCmd wiring, trimmed to the flags
// this CLI's subcommands actually read (no tracing/profiling/timeout: this
// driver has no long-running compile pipeline to instrument).
func main() {
	rootCmd.Version = "0.1.0"

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(printTypeCmd)
	rootCmd.AddCommand(fixCmd)

	rootCmd.PersistentFlags().String("config", "", "path to a tscheck.toml config file")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress the progress view and print results in batch")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command, out *os.File) bool {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	return mode == "on" || (mode == "auto" && isTerminal(out))
}

func loadConfigFlag(cmd *cobra.Command) (string, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return "", fmt.Errorf("failed to read config flag: %w", err)
	}
	return path, nil
}
