package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgehrsitz/tanda/internal/compare"
	"github.com/rgehrsitz/tanda/internal/config"
	"github.com/rgehrsitz/tanda/internal/transform"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var (
		group         string
		with          string
		transforms    []string
		groups        []string
		contract      string
		format        string
		listTemplates bool
		debugMode     bool
	)

	cmd := &cobra.Command{
		Use:   "compare [input-file]",
		Short: "Compare a group against what-if templates, other groups, or rank relief policies",
		Long: `Compare a base group against alternative runs built from templates or ad hoc
transforms, against other groups in the file, or rank the relief policies for a contract.

Examples:
  tanda compare groups.yaml --group "Ruta Norte" --with missed_payment_m3,late_joiner_m4
  tanda compare groups.yaml --group "Ruta Norte" --transform miss_payment:month=2 --transform extra_payment:month=3,amount=2000
  tanda compare groups.yaml --group "Ruta Norte" --groups "Eastside Drivers" --format csv
  tanda compare groups.yaml --contract CT-001
  tanda compare --list-templates`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if listTemplates {
				fmt.Fprint(out, transform.GetTemplateHelp(transform.CreateBuiltInTemplates()))
				fmt.Fprintf(out, "\nAd hoc transforms: %s\n", strings.Join(transform.NewTransformRegistry().List(), ", "))
				return nil
			}
			if len(args) == 0 {
				return errors.New("input file required for comparison (use --list-templates to see available templates)")
			}

			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			engine, flush, err := newEngine(debugMode || settings.Debug)
			if err != nil {
				return err
			}
			defer flush()
			compareEngine := compare.NewCompareEngine(engine)

			if contract != "" {
				rc, err := compareEngine.CompareRestructuring(cmd.Context(), cfg, contract)
				if err != nil {
					return fmt.Errorf("comparison failed: %w", err)
				}
				return writeRestructuringComparison(cmd, rc, format)
			}

			if group == "" {
				return errors.New("--group flag is required to specify the base group (or --contract to rank relief policies)")
			}

			var compSet *compare.ComparisonSet
			switch {
			case len(groups) > 0:
				compSet, err = compareEngine.CompareGroups(cmd.Context(), cfg, group, groups)
			default:
				templateNames := transform.ParseTemplateList(with)
				if len(templateNames) == 0 && len(transforms) == 0 {
					return errors.New("--with, --transform or --groups is required (use --list-templates to see available templates)")
				}
				compSet, err = compareEngine.Compare(cmd.Context(), cfg, compare.CompareOptions{
					GroupName:  group,
					Templates:  templateNames,
					Transforms: transforms,
				})
			}
			if err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}
			compSet.ConfigPath = args[0]
			return writeComparison(cmd, compSet, format)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Base group to compare against")
	cmd.Flags().StringVar(&with, "with", "", "Comma-separated list of templates to compare")
	cmd.Flags().StringArrayVar(&transforms, "transform", nil, "Ad hoc transform spec name:key=value,... (repeatable, applied together)")
	cmd.Flags().StringSliceVar(&groups, "groups", nil, "Other groups in the file to compare with the base group")
	cmd.Flags().StringVarP(&contract, "contract", "c", "", "Rank relief policies for this contract instead")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, csv, json)")
	cmd.Flags().BoolVar(&listTemplates, "list-templates", false, "List all available templates")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Log every award and scenario")
	return cmd
}

func writeComparison(cmd *cobra.Command, compSet *compare.ComparisonSet, format string) error {
	var (
		out string
		err error
	)
	switch strings.ToLower(format) {
	case "csv":
		out, err = (&compare.CSVFormatter{}).Format(compSet)
	case "json":
		out, err = (&compare.JSONFormatter{Pretty: true}).Format(compSet)
	case "table", "console", "":
		out = (&compare.TableFormatter{}).Format(compSet)
	case "compact":
		out = (&compare.TableFormatter{}).FormatCompact(compSet) + "\n"
	default:
		return fmt.Errorf("unknown output format: %s (valid: table, compact, csv, json)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", format, err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func writeRestructuringComparison(cmd *cobra.Command, rc *compare.RestructuringComparison, format string) error {
	var (
		out string
		err error
	)
	switch strings.ToLower(format) {
	case "csv":
		out, err = (&compare.CSVFormatter{}).FormatRestructuring(rc)
	case "json":
		out, err = (&compare.JSONFormatter{Pretty: true}).FormatRestructuring(rc)
	case "table", "console", "":
		out = (&compare.TableFormatter{}).FormatRestructuring(rc)
	default:
		return fmt.Errorf("unknown output format: %s (valid: table, csv, json)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", format, err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
