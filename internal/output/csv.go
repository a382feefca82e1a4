package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"Record", "Subject", "Month", "Date", "Inflow", "DebtDue", "Surplus", "Savings", "Awards", "Risk",
	"Policy", "NewMonthlyPayment", "NewTerm", "TotalCostDelta", "EffectiveAnnualRate", "RateAcceptable", "Warnings",
}

// CSVFormatter writes one row per simulated month and one row per restructuring scenario
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, res := range report.Simulations {
		for _, m := range res.Months {
			date := ""
			if m.Date.IsValid() {
				date = m.Date.String()
			}
			row := []string{
				"month", res.GroupName, strconv.Itoa(m.Month), date,
				m.Inflow.StringFixed(2), m.DebtDue.StringFixed(2), m.Surplus.StringFixed(2), m.Savings.StringFixed(2),
				awardIDs(m.Awards), string(m.Risk),
				"", "", "", "", "", "", "",
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("write month %d of %s: %w", m.Month, res.GroupName, err)
			}
		}
	}

	for _, res := range report.Restructurings {
		for _, s := range res.Scenarios {
			row := []string{
				"scenario", res.ContractID, "", "", "", "", "", "", "", "",
				string(s.Policy), s.NewMonthlyPayment.StringFixed(2), strconv.Itoa(s.NewTerm),
				s.TotalCostDelta.StringFixed(2), s.EffectiveAnnualRate.StringFixed(4),
				strconv.FormatBool(s.RateAcceptable), strings.Join(s.Warnings, "; "),
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("write %s scenario of %s: %w", s.Policy, res.ContractID, err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
