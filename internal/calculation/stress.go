package calculation

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"slices"
	"sync"

	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
)

// StressEngine runs a group many times with randomly missed payments
type StressEngine struct {
	engine *CalculationEngine
	config StressConfig
}

// StressConfig holds configuration for payment reliability simulations
type StressConfig struct {
	NumSimulations int
	MissRate       decimal.Decimal // chance that a paying member misses a given month
	Seed           int64
	Workers        int
	KeepRuns       bool // keep every simulation in the result
}

// StressResult summarizes all simulations of one group
type StressResult struct {
	GroupName        string                 `json:"groupName"`
	NumSimulations   int                    `json:"numSimulations"`
	HorizonMonths    int                    `json:"horizonMonths"`
	MissRate         decimal.Decimal        `json:"missRate"`
	SuccessRate      decimal.Decimal        `json:"successRate"`
	DeficitRate      decimal.Decimal        `json:"deficitRate"`
	MedianFirstAward int                    `json:"medianFirstAward"`
	PercentileRanges StressPercentileRanges `json:"percentileRanges"`
	Simulations      []StressSimulation     `json:"simulations,omitempty"`
}

// StressSimulation is the outcome of a single randomized run
type StressSimulation struct {
	SimulationID    int             `json:"simulationId"`
	MissedPayments  int             `json:"missedPayments"`
	FirstAwardMonth int             `json:"firstAwardMonth"`
	Awarded         int             `json:"awarded"`
	DeficitMonths   int             `json:"deficitMonths"`
	FinalSavings    decimal.Decimal `json:"finalSavings"`
	Success         bool            `json:"success"`
	FailureReason   string          `json:"failureReason,omitempty"`
}

// StressPercentileRanges holds the 10th, 25th, 50th, 75th and 90th percentiles
type StressPercentileRanges struct {
	FirstAwardMonth map[string]int             `json:"firstAwardMonth"` // runs with at least one award
	DeficitMonths   map[string]int             `json:"deficitMonths"`
	FinalSavings    map[string]decimal.Decimal `json:"finalSavings"`
}

// DefaultStressConfig returns 500 runs at a 5% miss rate
func DefaultStressConfig() StressConfig {
	return StressConfig{
		NumSimulations: 500,
		MissRate:       decimal.NewFromFloat(0.05),
		Seed:           1,
		Workers:        runtime.NumCPU(),
	}
}

// NewStressEngine creates a stress engine; a nil engine gets the default
func NewStressEngine(engine *CalculationEngine, config StressConfig) *StressEngine {
	if engine == nil {
		engine = NewCalculationEngine()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &StressEngine{engine: engine, config: config}
}

// Run simulates the group NumSimulations times. Run i draws from a source
// seeded with Seed+i, so results do not depend on scheduling.
func (se *StressEngine) Run(ctx context.Context, run domain.TandaRun) (*StressResult, error) {
	if se.config.NumSimulations < 1 {
		return nil, fmt.Errorf("stress group %s: number of simulations must be positive", run.Group.Name)
	}
	if se.config.MissRate.IsNegative() || se.config.MissRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("stress group %s: miss rate must be between 0 and 1, got %s", run.Group.Name, se.config.MissRate)
	}

	simulations := make([]StressSimulation, se.config.NumSimulations)
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < se.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				simulations[id] = se.runSingle(run, id)
			}
		}()
	}

	var err error
dispatch:
	for i := 0; i < se.config.NumSimulations; i++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err != nil {
		return nil, fmt.Errorf("stress group %s: %w", run.Group.Name, err)
	}

	result := se.summarize(run, simulations)
	se.engine.logger().Infof("group %s: %d stress runs at %s miss rate, success rate %s",
		run.Group.Name, result.NumSimulations, se.config.MissRate.String(), result.SuccessRate.StringFixed(3))
	return result, nil
}

func (se *StressEngine) runSingle(run domain.TandaRun, id int) StressSimulation {
	rng := rand.New(rand.NewSource(se.config.Seed + int64(id)))
	misses := missedPayments(run, rng, se.config.MissRate.InexactFloat64())

	events := append(append([]domain.SimulationEvent(nil), run.Events...), misses...)
	res := RunTandaSimulation(run.Group, run.HorizonMonths, events)

	sim := StressSimulation{
		SimulationID:    id,
		MissedPayments:  len(misses),
		FirstAwardMonth: res.FirstAwardMonth(),
		Awarded:         len(res.Awards),
		DeficitMonths:   res.DeficitMonths(),
		FinalSavings:    res.FinalSavings(),
	}
	switch {
	case sim.DeficitMonths > 0:
		sim.FailureReason = fmt.Sprintf("debt deficit in %d months", sim.DeficitMonths)
	case len(res.Unawarded) > 0:
		sim.FailureReason = fmt.Sprintf("%d members still waiting", len(res.Unawarded))
	case sim.Awarded == 0:
		sim.FailureReason = "no unit delivered"
	default:
		sim.Success = true
	}
	return sim
}

// missedPayments draws one Bernoulli trial per paying member and month. A member
// pays from the month they join until the month they leave; a member who leaves
// after delivery keeps paying in the simulator but draws no further misses.
func missedPayments(run domain.TandaRun, rng *rand.Rand, rate float64) []domain.SimulationEvent {
	type payer struct {
		member      domain.Member
		first, last int
	}
	var payers []payer
	index := make(map[string]int)
	for _, m := range run.Group.Members {
		if m.Status == domain.StatusActive {
			index[m.ID] = len(payers)
			payers = append(payers, payer{member: m, first: 1, last: run.HorizonMonths})
		}
	}
	for _, ev := range run.Events {
		switch e := ev.(type) {
		case domain.MemberJoins:
			if _, ok := index[e.Member.ID]; !ok && (e.Member.Status == "" || e.Member.Status == domain.StatusActive) {
				index[e.Member.ID] = len(payers)
				payers = append(payers, payer{member: e.Member, first: e.Month, last: run.HorizonMonths})
			}
		case domain.MemberLeaves:
			if i, ok := index[e.MemberID]; ok && e.Month-1 < payers[i].last {
				payers[i].last = e.Month - 1
			}
		}
	}

	var misses []domain.SimulationEvent
	for month := 1; month <= run.HorizonMonths; month++ {
		for _, p := range payers {
			if month < p.first || month > p.last {
				continue
			}
			if rng.Float64() < rate {
				misses = append(misses, domain.MissedPayment{
					Month:    month,
					MemberID: p.member.ID,
					Amount:   p.member.BaseContribution.Neg(),
				})
			}
		}
	}
	return misses
}

func (se *StressEngine) summarize(run domain.TandaRun, simulations []StressSimulation) *StressResult {
	var (
		successes, withDeficit int
		firstAwards            []int
		deficits               = make([]int, 0, len(simulations))
		savings                = make([]decimal.Decimal, 0, len(simulations))
	)
	for _, sim := range simulations {
		if sim.Success {
			successes++
		}
		if sim.DeficitMonths > 0 {
			withDeficit++
		}
		if sim.FirstAwardMonth > 0 {
			firstAwards = append(firstAwards, sim.FirstAwardMonth)
		}
		deficits = append(deficits, sim.DeficitMonths)
		savings = append(savings, sim.FinalSavings)
	}

	total := decimal.NewFromInt(int64(len(simulations)))
	result := &StressResult{
		GroupName:        run.Group.Name,
		NumSimulations:   len(simulations),
		HorizonMonths:    run.HorizonMonths,
		MissRate:         se.config.MissRate,
		SuccessRate:      decimal.NewFromInt(int64(successes)).Div(total),
		DeficitRate:      decimal.NewFromInt(int64(withDeficit)).Div(total),
		MedianFirstAward: calculateMedianInt(firstAwards),
		PercentileRanges: StressPercentileRanges{
			FirstAwardMonth: calculatePercentilesInt(firstAwards),
			DeficitMonths:   calculatePercentilesInt(deficits),
			FinalSavings:    calculatePercentiles(savings),
		},
	}
	if se.config.KeepRuns {
		result.Simulations = simulations
	}
	return result
}

var percentileLabels = []struct {
	label string
	p     float64
}{
	{"10th", 0.1}, {"25th", 0.25}, {"50th", 0.5}, {"75th", 0.75}, {"90th", 0.9},
}

func calculateMedianInt(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func calculatePercentiles(values []decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(percentileLabels))
	sorted := slices.Clone(values)
	slices.SortFunc(sorted, func(a, b decimal.Decimal) int { return a.Cmp(b) })
	for _, pl := range percentileLabels {
		out[pl.label] = getPercentile(sorted, pl.p)
	}
	return out
}

func calculatePercentilesInt(values []int) map[string]int {
	out := make(map[string]int, len(percentileLabels))
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	for _, pl := range percentileLabels {
		out[pl.label] = getPercentileInt(sorted, pl.p)
	}
	return out
}

// getPercentile interpolates linearly between the two closest ranks
func getPercentile(sorted []decimal.Decimal, percentile float64) decimal.Decimal {
	if len(sorted) == 0 {
		return decimal.Zero
	}
	index := percentile * float64(len(sorted)-1)
	lo := int(index)
	if lo == len(sorted)-1 {
		return sorted[lo]
	}
	fraction := decimal.NewFromFloat(index - float64(lo))
	return sorted[lo].Add(sorted[lo+1].Sub(sorted[lo]).Mul(fraction))
}

func getPercentileInt(sorted []int, percentile float64) int {
	if len(sorted) == 0 {
		return 0
	}
	index := percentile * float64(len(sorted)-1)
	lo := int(index)
	if lo == len(sorted)-1 {
		return sorted[lo]
	}
	return sorted[lo] + int(float64(sorted[lo+1]-sorted[lo])*(index-float64(lo)))
}
