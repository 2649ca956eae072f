package commands

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/barrageopt/barrageopt/pkg/analysis"
	"github.com/barrageopt/barrageopt/pkg/metrics"
	"github.com/barrageopt/barrageopt/pkg/optimizer"
)

func newOptimizeCommand() *cobra.Command {
	var (
		scenarioFile string
		seed         uint64
		workers      int
		plotPath     string
		metricsAddr  string
		showSchedule bool
	)

	cmd := &cobra.Command{
		Use:   "optimize [scenario]",
		Short: "Run an optimisation scenario and print the ranked front",
		Long: `Run the NSGA-II search for one scenario and print the final Pareto
front as a ranked table, best weighted trade-off first. The scenario is
either a built-in name or a YAML file passed with --file.`,
		Example: `  # Built-in spring-neap study
  barrageopt optimize spring-neap

  # Custom scenario, fresh seed, front plot
  barrageopt optimize --file study.yaml --seed 0 --plot front.html

  # Watch a long run through Prometheus
  barrageopt optimize spring-neap --metrics-addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := loadScenario(scenarioFile, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				scenario.Seed = seed
			}
			if cmd.Flags().Changed("workers") {
				scenario.Algorithm.Workers = workers
			}

			runner := optimizer.Runner{PlotPath: plotPath}
			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				rec, err := metrics.NewRecorder(reg)
				if err != nil {
					return err
				}
				runner.Recorder = rec
				srv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler(reg)}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						klog.ErrorS(err, "Metrics server failed", "addr", metricsAddr)
					}
				}()
				defer func() { _ = srv.Close() }()
			}

			out, err := runner.Run(cmd.Context(), scenario)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := out.Report.Render(w); err != nil {
				return err
			}
			if showSchedule && len(out.Report.Solutions) > 0 {
				fmt.Fprintln(w)
				if err := analysis.RenderSchedule(w, out.Report.Solutions[0]); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scenarioFile, "file", "f", "", "Scenario YAML file (instead of a built-in name)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Override the scenario seed (0 seeds from the clock)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Override the evaluation fan-out (0 uses every CPU)")
	cmd.Flags().StringVar(&plotPath, "plot", "", "Write an HTML scatter of the final front to this path")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")
	cmd.Flags().BoolVar(&showSchedule, "schedule", false, "Print the generation schedule of the top-ranked strategy")
	return cmd
}

// loadScenario resolves the scenario: an explicit file wins, otherwise
// the positional argument names a built-in.
func loadScenario(file string, args []string) (*optimizer.Args, error) {
	if file != "" {
		return optimizer.LoadArgs(file)
	}
	if len(args) == 1 {
		return optimizer.Scenario(args[0])
	}
	return nil, fmt.Errorf("name a built-in scenario or pass --file; built-ins: %v", optimizer.Scenarios())
}
