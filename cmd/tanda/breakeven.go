package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgehrsitz/tanda/internal/breakeven"
	"github.com/rgehrsitz/tanda/internal/config"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newBreakEvenCmd() *cobra.Command {
	var (
		group       string
		goal        string
		target      string
		targetMonth int
		minAmount   string
		maxAmount   string
		maxHorizon  int
		format      string
		debugMode   bool
	)

	cmd := &cobra.Command{
		Use:   "break-even [input-file]",
		Short: "Find the smallest contribution or horizon that reaches a goal",
		Long: `Searches for the smallest uniform monthly contribution (or the shortest horizon)
at which a group reaches a goal. Without --goal every goal is solved and the
binding one is reported.

Goals:
  first_award_by  first unit delivered by --month
  all_awarded     every queued member receives a unit
  no_deficit      units delivered and debt service always covered

Examples:
  tanda break-even groups.yaml --group "Ruta Norte" --goal first_award_by --month 3
  tanda break-even groups.yaml --group "Ruta Norte" --goal all_awarded --target horizon
  tanda break-even groups.yaml --group "Ruta Norte" --max 8000 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if group == "" {
				return errors.New("--group flag is required")
			}
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}

			constraints := breakeven.Constraints{TargetMonth: targetMonth, MaxHorizon: maxHorizon}
			if constraints.MinContribution, err = optionalAmount("min", minAmount); err != nil {
				return err
			}
			if constraints.MaxContribution, err = optionalAmount("max", maxAmount); err != nil {
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
			solver := breakeven.NewDefaultSolver(engine)

			if goal == "" {
				md, err := solver.OptimizeAllGoals(cmd.Context(), run, constraints)
				if err != nil {
					return err
				}
				return writeBreakEven(cmd, format,
					func() string { return (&breakeven.TableFormatter{}).FormatMultiDimensional(md) },
					func() (string, error) { return (&breakeven.JSONFormatter{Pretty: true}).FormatMultiDimensional(md) })
			}

			res, err := solver.Optimize(cmd.Context(), breakeven.OptimizationRequest{
				Base:        run,
				Target:      breakeven.OptimizationTarget(target),
				Goal:        breakeven.OptimizationGoal(goal),
				Constraints: constraints,
			})
			if err != nil {
				return err
			}
			return writeBreakEven(cmd, format,
				func() string { return (&breakeven.TableFormatter{}).Format(res) },
				func() (string, error) { return (&breakeven.JSONFormatter{Pretty: true}).Format(res) })
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Group to solve for")
	cmd.Flags().StringVar(&goal, "goal", "", "Goal to reach (first_award_by, all_awarded, no_deficit); empty solves all")
	cmd.Flags().StringVar(&target, "target", string(breakeven.OptimizeContribution), "Parameter to search (contribution, horizon)")
	cmd.Flags().IntVar(&targetMonth, "month", 0, "Month the first award must happen by")
	cmd.Flags().StringVar(&minAmount, "min", "", "Lowest monthly contribution to consider")
	cmd.Flags().StringVar(&maxAmount, "max", "", "Highest monthly contribution to consider (default: unit price)")
	cmd.Flags().IntVar(&maxHorizon, "max-horizon", 0, "Longest horizon the horizon search tries")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Log every simulated run")
	return cmd
}

func optionalAmount(flag, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s value %q: %w", flag, raw, err)
	}
	return &v, nil
}

func writeBreakEven(cmd *cobra.Command, format string, table func() string, jsonOut func() (string, error)) error {
	var out string
	switch strings.ToLower(format) {
	case "table", "console", "":
		out = table()
	case "json":
		s, err := jsonOut()
		if err != nil {
			return fmt.Errorf("failed to format json: %w", err)
		}
		out = s + "\n"
	default:
		return fmt.Errorf("unknown output format: %s (valid: table, json)", format)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
