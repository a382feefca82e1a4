package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/tanda/internal/calculation"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/rgehrsitz/tanda/internal/transform"
	"github.com/shopspring/decimal"
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// Solver searches for the smallest contribution or horizon that lets a group reach a goal
type Solver struct {
	CalcEngine *calculation.CalculationEngine
	Options    SolverOptions
}

// NewSolver creates a new break-even solver
func NewSolver(calcEngine *calculation.CalculationEngine, options SolverOptions) *Solver {
	if calcEngine == nil {
		calcEngine = calculation.NewCalculationEngine()
	}
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.CalculationEngine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// Optimize performs the search described by req
func (s *Solver) Optimize(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error) {
	if err := req.Constraints.Validate(req.Goal); err != nil {
		return nil, err
	}

	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}

	switch req.Target {
	case OptimizeContribution:
		return s.optimizeContribution(ctx, req)
	case OptimizeHorizon:
		return s.optimizeHorizon(ctx, req)
	default:
		return nil, &BreakEvenError{
			Operation: "optimize",
			Message:   fmt.Sprintf("unsupported optimization target: %s", req.Target),
		}
	}
}

// optimizeContribution binary searches the uniform monthly contribution. The
// upper end of the bracket always meets the goal, so the answer does too.
func (s *Solver) optimizeContribution(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error) {
	lo := decimal.Zero
	hi := req.Base.Group.Package.Price
	if req.Constraints.MinContribution != nil {
		lo = *req.Constraints.MinContribution
	}
	if req.Constraints.MaxContribution != nil {
		hi = *req.Constraints.MaxContribution
	}
	if !hi.IsPositive() {
		return nil, &BreakEvenError{
			Operation: "optimize_contribution",
			Message:   "maximum contribution must be positive",
		}
	}

	base, err := s.CalcEngine.RunTanda(ctx, req.Base)
	if err != nil {
		return nil, &BreakEvenError{Operation: "optimize_contribution", Message: "failed to simulate base run", Cause: err}
	}

	iterations := 1
	best, err := s.simulateContribution(ctx, req, hi)
	if err != nil {
		return nil, err
	}
	if !goalMet(req, best) {
		return nil, &BreakEvenError{
			Operation: "optimize_contribution",
			Message:   fmt.Sprintf("goal %s not reachable with a contribution of %s", req.Goal, hi.StringFixed(2)),
		}
	}

	iterations++
	low, err := s.simulateContribution(ctx, req, lo)
	if err != nil {
		return nil, err
	}
	if goalMet(req, low) {
		result := s.evaluateResult(req, base, low, iterations)
		result.OptimalContribution = &lo
		result.ContributionDiffFromBase = lo.Sub(averageContribution(req.Base.Group))
		result.Success = true
		result.ConvergenceInfo = "Goal already met at the minimum contribution"
		return result, nil
	}

	for hi.Sub(lo).GreaterThan(req.Tolerance) && iterations < req.MaxIterations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		iterations++
		mid := lo.Add(hi).Div(two)
		sim, err := s.simulateContribution(ctx, req, mid)
		if err != nil {
			return nil, err
		}
		if goalMet(req, sim) {
			hi = mid
			best = sim
		} else {
			lo = mid
		}
	}
	converged := hi.Sub(lo).LessThanOrEqual(req.Tolerance)

	// Contributions are collected in whole cents
	if rounded := hi.Mul(hundred).Ceil().Div(hundred); !rounded.Equal(hi) {
		iterations++
		sim, err := s.simulateContribution(ctx, req, rounded)
		if err != nil {
			return nil, err
		}
		if goalMet(req, sim) {
			hi = rounded
			best = sim
		}
	}

	result := s.evaluateResult(req, base, best, iterations)
	result.OptimalContribution = &hi
	result.ContributionDiffFromBase = hi.Sub(averageContribution(req.Base.Group))
	result.Success = converged
	if converged {
		result.ConvergenceInfo = fmt.Sprintf("Binary search converged within %s", req.Tolerance.StringFixed(2))
	} else {
		result.ConvergenceInfo = fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations)
	}
	return result, nil
}

// optimizeHorizon binary searches the number of simulated months. Only goals
// that stay met once reached can be searched this way.
func (s *Solver) optimizeHorizon(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error) {
	if req.Goal == GoalNoDeficit {
		return nil, &BreakEvenError{
			Operation: "optimize_horizon",
			Message:   "horizon search supports first_award_by and all_awarded only",
		}
	}

	maxHorizon := req.Constraints.MaxHorizon
	if maxHorizon == 0 {
		maxHorizon = DefaultMaxHorizon
	}

	base, err := s.CalcEngine.RunTanda(ctx, req.Base)
	if err != nil {
		return nil, &BreakEvenError{Operation: "optimize_horizon", Message: "failed to simulate base run", Cause: err}
	}

	iterations := 1
	best, err := s.simulateHorizon(ctx, req, maxHorizon)
	if err != nil {
		return nil, err
	}
	if !goalMet(req, best) {
		return nil, &BreakEvenError{
			Operation: "optimize_horizon",
			Message:   fmt.Sprintf("goal %s not reachable within %d months", req.Goal, maxHorizon),
		}
	}

	lo, hi := 1, maxHorizon
	for lo < hi && iterations < req.MaxIterations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		iterations++
		mid := (lo + hi) / 2
		sim, err := s.simulateHorizon(ctx, req, mid)
		if err != nil {
			return nil, err
		}
		if goalMet(req, sim) {
			hi = mid
			best = sim
		} else {
			lo = mid + 1
		}
	}

	result := s.evaluateResult(req, base, best, iterations)
	result.OptimalHorizon = &hi
	result.Success = lo == hi
	if result.Success {
		result.ConvergenceInfo = fmt.Sprintf("Goal first met after %d months", hi)
	} else {
		result.ConvergenceInfo = fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations)
	}
	return result, nil
}

func (s *Solver) simulateContribution(ctx context.Context, req OptimizationRequest, amount decimal.Decimal) (*domain.SimulationResult, error) {
	return s.simulate(ctx, req, &transform.SetContribution{Amount: amount})
}

func (s *Solver) simulateHorizon(ctx context.Context, req OptimizationRequest, months int) (*domain.SimulationResult, error) {
	return s.simulate(ctx, req, &transform.ChangeHorizon{Months: months})
}

func (s *Solver) simulate(ctx context.Context, req OptimizationRequest, tr transform.RunTransform) (*domain.SimulationResult, error) {
	run, err := transform.ApplyTransforms(req.Base, []transform.RunTransform{tr})
	if err != nil {
		return nil, &BreakEvenError{
			Operation: "optimize_" + string(req.Target),
			Message:   "failed to apply transform",
			Cause:     err,
		}
	}
	sim, err := s.CalcEngine.RunTanda(ctx, run)
	if err != nil {
		return nil, &BreakEvenError{
			Operation: "optimize_" + string(req.Target),
			Message:   "failed to simulate group",
			Cause:     err,
		}
	}
	return sim, nil
}

// evaluateResult creates an optimization result from the simulation at the optimum
func (s *Solver) evaluateResult(req OptimizationRequest, base, sim *domain.SimulationResult, iterations int) *OptimizationResult {
	return &OptimizationResult{
		Request:             req,
		GroupName:           req.Base.Group.Name,
		Iterations:          iterations,
		Simulation:          sim,
		FirstAwardMonth:     sim.FirstAwardMonth(),
		Awarded:             len(sim.Awards),
		Unawarded:           len(sim.Unawarded),
		DeficitMonths:       sim.DeficitMonths(),
		FinalSavings:        sim.FinalSavings(),
		BaseFirstAwardMonth: base.FirstAwardMonth(),
		BaseDeficitMonths:   base.DeficitMonths(),
		BaseGoalMet:         goalMet(req, base),
	}
}

// goalMet reports whether sim reaches the request's goal. Goals other than
// first_award_by need at least one delivered unit.
func goalMet(req OptimizationRequest, sim *domain.SimulationResult) bool {
	switch req.Goal {
	case GoalFirstAwardBy:
		m := sim.FirstAwardMonth()
		return m > 0 && m <= req.Constraints.TargetMonth
	case GoalAllAwarded:
		return len(sim.Awards) > 0 && len(sim.Unawarded) == 0
	case GoalNoDeficit:
		return len(sim.Awards) > 0 && sim.DeficitMonths() == 0
	default:
		return false
	}
}

// averageContribution is the mean contribution of the members in the queue
func averageContribution(g domain.Group) decimal.Decimal {
	total := decimal.Zero
	n := 0
	for _, m := range g.Members {
		if m.Status.Queueable() {
			total = total.Add(m.BaseContribution)
			n++
		}
	}
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}
