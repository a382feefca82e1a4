package main

import (
	"github.com/rgehrsitz/tanda/internal/config"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/rgehrsitz/tanda/internal/output"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	var (
		group     string
		format    string
		horizon   int
		debugMode bool
		save      bool
	)

	cmd := &cobra.Command{
		Use:   "simulate [input-file]",
		Short: "Simulate tanda groups month by month",
		Long: `Runs every group in the configuration (or only --group) and prints the
monthly inflow, debt service, savings and awards.

Examples:
  tanda simulate groups.yaml
  tanda simulate groups.yaml --group "Ruta Norte" --horizon 60
  tanda simulate groups.yaml --format csv --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			if horizon > 0 {
				settings.HorizonMonths = horizon
			}

			parser := config.NewInputParser()
			cfg, err := parser.LoadFromFile(args[0])
			if err != nil {
				return err
			}

			var runs []domain.TandaRun
			if group != "" {
				run, err := parser.TandaRun(cfg, group)
				if err != nil {
					return err
				}
				runs = []domain.TandaRun{run}
			} else {
				runs, err = parser.TandaRuns(cfg)
				if err != nil {
					return err
				}
			}
			for i := range runs {
				runs[i].HorizonMonths = settings.Horizon(runs[i].HorizonMonths)
			}

			engine, flush, err := newEngine(debugMode || settings.Debug)
			if err != nil {
				return err
			}
			defer flush()

			results, err := engine.RunTandas(cmd.Context(), runs)
			if err != nil {
				return err
			}
			return render(cmd, &output.Report{Simulations: results}, resolveFormat(format, settings), save)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Simulate only this group")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (console, console-lite, csv, json; default from TANDA_FORMAT)")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "Override every group's horizon in months")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Log every award and deficit month")
	cmd.Flags().BoolVar(&save, "save", false, "Write the report to a timestamped file instead of stdout")
	return cmd
}
