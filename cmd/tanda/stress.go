package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rgehrsitz/tanda/internal/calculation"
	"github.com/rgehrsitz/tanda/internal/config"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/rgehrsitz/tanda/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newStressCmd() *cobra.Command {
	var (
		group     string
		runs      int
		missRate  string
		seed      int64
		workers   int
		format    string
		debugMode bool
	)

	cmd := &cobra.Command{
		Use:   "stress [input-file]",
		Short: "Estimate how often a group succeeds when members miss payments",
		Long: `Runs a group many times, letting every paying member miss each month's
contribution with the given probability. A run succeeds when every member
receives a unit and debt service is always covered.

Examples:
  tanda stress groups.yaml --group "Ruta Norte"
  tanda stress groups.yaml --group "Ruta Norte" --miss-rate 0.15 --runs 2000 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if group == "" {
				return errors.New("--group flag is required")
			}
			rate, err := decimal.NewFromString(missRate)
			if err != nil {
				return fmt.Errorf("invalid --miss-rate value %q: %w", missRate, err)
			}
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}

			parser := config.NewInputParser()
			cfg, err := parser.LoadFromFile(args[0])
			if err != nil {
				return err
			}
			run, err := parser.TandaRun(cfg, group)
			if err != nil {
				return err
			}
			run.HorizonMonths = settings.Horizon(run.HorizonMonths)

			engine, flush, err := newEngine(debugMode || settings.Debug)
			if err != nil {
				return err
			}
			defer flush()

			stressCfg := calculation.DefaultStressConfig()
			stressCfg.NumSimulations = runs
			stressCfg.MissRate = rate
			stressCfg.Seed = seed
			if workers > 0 {
				stressCfg.Workers = workers
			}

			res, err := calculation.NewStressEngine(engine, stressCfg).Run(cmd.Context(), run)
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "table", "console", "":
				fmt.Fprint(cmd.OutOrStdout(), formatStress(res, run.Group.Market))
			case "json":
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			default:
				return fmt.Errorf("unknown output format: %s (valid: table, json)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Group to stress")
	cmd.Flags().IntVar(&runs, "runs", 500, "Number of randomized runs")
	cmd.Flags().StringVar(&missRate, "miss-rate", "0.05", "Chance that a member misses a month's contribution")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed; the same seed reproduces the same runs")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel workers (default: number of CPUs)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Log the stress summary")
	return cmd
}

func formatStress(res *calculation.StressResult, market domain.Market) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("STRESS TEST: %s\n", res.GroupName))
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Runs:                %d over %d months\n", res.NumSimulations, res.HorizonMonths))
	sb.WriteString(fmt.Sprintf("Miss rate:           %s\n", output.FormatPercentage(res.MissRate)))
	sb.WriteString(fmt.Sprintf("Success rate:        %s\n", output.FormatPercentage(res.SuccessRate)))
	sb.WriteString(fmt.Sprintf("Runs with deficit:   %s\n", output.FormatPercentage(res.DeficitRate)))
	if res.MedianFirstAward > 0 {
		sb.WriteString(fmt.Sprintf("Median first award:  month %d\n", res.MedianFirstAward))
	} else {
		sb.WriteString("Median first award:  none\n")
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("%-12s %12s %14s %20s\n", "Percentile", "First award", "Deficit months", "Final savings"))
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	for _, p := range []string{"10th", "25th", "50th", "75th", "90th"} {
		sb.WriteString(fmt.Sprintf("%-12s %12d %14d %20s\n", p,
			res.PercentileRanges.FirstAwardMonth[p],
			res.PercentileRanges.DeficitMonths[p],
			output.FormatCurrency(res.PercentileRanges.FinalSavings[p], market)))
	}
	return sb.String()
}
