package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/barrageopt/barrageopt/pkg/optimizer"
)

func newScenariosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "name\tsource\tsamples\tpopulation\tgenerations")
			for _, name := range optimizer.Scenarios() {
				scenario, err := optimizer.Scenario(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
					scenario.Name, scenario.Tide.Source, scenario.Tide.Samples,
					scenario.Algorithm.PopulationSize, scenario.Algorithm.Generations)
			}
			return tw.Flush()
		},
	}
}
