package main

import (
	"fmt"

	"github.com/rgehrsitz/tanda/internal/config"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/rgehrsitz/tanda/internal/output"
	"github.com/spf13/cobra"
)

func newRestructureCmd() *cobra.Command {
	var (
		contract  string
		market    string
		format    string
		debugMode bool
		save      bool
	)

	cmd := &cobra.Command{
		Use:   "restructure [input-file]",
		Short: "Evaluate relief policies for active contracts",
		Long: `Evaluates deferral, reschedule, step-down and collective rescue for every
contract in the configuration (or only --contract) using the file's protection options.

Examples:
  tanda restructure groups.yaml
  tanda restructure groups.yaml --contract CT-001 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			m := domain.Market(market)
			if !m.Valid() {
				return fmt.Errorf("unsupported market %q (valid: mx, us)", market)
			}

			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			contracts := cfg.Contracts
			if contract != "" {
				c, ok := cfg.Contract(contract)
				if !ok {
					return fmt.Errorf("contract %s not found in configuration", contract)
				}
				contracts = []domain.ContratoBase{*c}
			}
			if len(contracts) == 0 {
				return fmt.Errorf("configuration %s has no contracts", args[0])
			}

			engine, flush, err := newEngine(debugMode || settings.Debug)
			if err != nil {
				return err
			}
			defer flush()

			report := &output.Report{ContractMarket: m}
			for _, c := range contracts {
				res, err := engine.Restructure(cmd.Context(), c, cfg.Protection)
				if err != nil {
					return err
				}
				report.Restructurings = append(report.Restructurings, res)
			}
			return render(cmd, report, resolveFormat(format, settings), save)
		},
	}

	cmd.Flags().StringVarP(&contract, "contract", "c", "", "Evaluate only this contract")
	cmd.Flags().StringVar(&market, "market", string(domain.MarketMX), "Market used to render amounts (mx, us)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (console, console-lite, csv, json; default from TANDA_FORMAT)")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Log every evaluated scenario")
	cmd.Flags().BoolVar(&save, "save", false, "Write the report to a timestamped file instead of stdout")
	return cmd
}
