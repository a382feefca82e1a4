package calculation

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/tanda/internal/domain"
)

// CalculationEngine runs the tanda simulator and the restructuring engine on
// validated inputs and reports what happened through its Logger
type CalculationEngine struct {
	Logger Logger
	Debug  bool // log every award and scenario
}

// NewCalculationEngine creates an engine with a no-op logger
func NewCalculationEngine() *CalculationEngine {
	return &CalculationEngine{Logger: NopLogger{}}
}

// SetLogger replaces the logger; nil restores the no-op logger
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

func (ce *CalculationEngine) logger() Logger {
	if ce.Logger == nil {
		return NopLogger{}
	}
	return ce.Logger
}

// RunTanda simulates one group
func (ce *CalculationEngine) RunTanda(ctx context.Context, run domain.TandaRun) (*domain.SimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("simulate group %s: %w", run.Group.Name, err)
	}
	log := ce.logger()
	log.Infof("simulating group %s: %d members, %d months, %d events",
		run.Group.Name, len(run.Group.Members), run.HorizonMonths, len(run.Events))

	result := RunTandaSimulation(run.Group, run.HorizonMonths, run.Events)

	if ce.Debug {
		for _, m := range result.Months {
			for _, a := range m.Awards {
				log.Debugf("month %d: awarded %s, MDS %s", a.Month, a.MemberID, a.MonthlyDebtService.StringFixed(2))
			}
		}
	}
	if n := result.DeficitMonths(); n > 0 {
		log.Warnf("group %s: %d months with contributions below debt service", run.Group.Name, n)
	}
	if len(result.Unawarded) > 0 {
		log.Infof("group %s: %d members still waiting after %d months",
			run.Group.Name, len(result.Unawarded), len(result.Months))
	}
	return &result, nil
}

// RunTandas simulates several groups in order, stopping at the first failure
func (ce *CalculationEngine) RunTandas(ctx context.Context, runs []domain.TandaRun) ([]*domain.SimulationResult, error) {
	results := make([]*domain.SimulationResult, 0, len(runs))
	for _, run := range runs {
		res, err := ce.RunTanda(ctx, run)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Restructure evaluates the four relief scenarios for one contract
func (ce *CalculationEngine) Restructure(ctx context.Context, contract domain.ContratoBase, options domain.ProtectionOptions) (*domain.RestructuringResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("restructure contract %s: %w", contract.ID, err)
	}
	log := ce.logger()
	result := BuildRestructuringResult(contract, options)
	log.Infof("contract %s: outstanding balance %s over %d remaining months",
		contract.ID, result.OutstandingBalance.StringFixed(2), result.RemainingTerm)

	for _, s := range result.Scenarios {
		if ce.Debug {
			log.Debugf("contract %s %s: payment %s, term %d, cost delta %s",
				contract.ID, s.Policy, s.NewMonthlyPayment.StringFixed(2), s.NewTerm, s.TotalCostDelta.StringFixed(2))
		}
		if !s.RateAcceptable {
			log.Warnf("contract %s %s: annual rate %s is above the %s ceiling",
				contract.ID, s.Policy, s.EffectiveAnnualRate.StringFixed(4), MaxAcceptableAnnualRate.String())
		}
	}
	return &result, nil
}
