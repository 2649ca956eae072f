// Package commands builds the barrageopt command tree.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the CLI.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "barrageopt",
		Short: "Multi-objective operating-strategy optimiser for tidal barrages",
		Long: `barrageopt searches for Pareto-optimal operating strategies of a tidal
barrage power plant: head thresholds per tidal segment trading annual
energy yield against levelised unit cost of electricity.

Scenarios are YAML files describing the tide record, the plant and the
optimiser tuning. A few built-in scenarios ship with the binary; run
"barrageopt scenarios" to list them.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newOptimizeCommand(),
		newBenchmarkCommand(),
		newScenariosCommand(),
	)
	return root
}
