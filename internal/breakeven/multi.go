package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/tanda/internal/domain"
)

// OptimizeMultiDimensional finds the minimum contribution for each goal and
// names the one that binds. Goals that cannot be reached are reported as
// failures rather than errors.
func (s *Solver) OptimizeMultiDimensional(
	ctx context.Context,
	base domain.TandaRun,
	constraints Constraints,
	goals []OptimizationGoal,
) (*MultiDimensionalResult, error) {
	mdResult := &MultiDimensionalResult{
		GroupName: base.Group.Name,
		Failures:  make(map[string]string),
	}

	for _, goal := range goals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := s.Optimize(ctx, OptimizationRequest{
			Base:          base,
			Target:        OptimizeContribution,
			Goal:          goal,
			Constraints:   constraints,
			MaxIterations: s.Options.MaxIterations,
			Tolerance:     s.Options.Tolerance,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			mdResult.Failures[string(goal)] = err.Error()
			continue
		}
		mdResult.Results = append(mdResult.Results, *result)
	}

	if len(mdResult.Results) == 0 {
		return nil, &BreakEvenError{
			Operation: "optimize_multi_dimensional",
			Message:   fmt.Sprintf("no goal reachable for group %s", base.Group.Name),
		}
	}

	for i := range mdResult.Results {
		r := &mdResult.Results[i]
		if mdResult.Binding == nil || r.OptimalContribution.GreaterThan(*mdResult.Binding.OptimalContribution) {
			mdResult.Binding = r
		}
	}

	mdResult.Recommendations = s.generateMultiDimensionalRecommendations(mdResult)
	return mdResult, nil
}

// OptimizeAllGoals runs every goal; first_award_by is skipped when no target month is set
func (s *Solver) OptimizeAllGoals(ctx context.Context, base domain.TandaRun, constraints Constraints) (*MultiDimensionalResult, error) {
	goals := make([]OptimizationGoal, 0, len(Goals))
	for _, g := range Goals {
		if g == GoalFirstAwardBy && constraints.TargetMonth == 0 {
			continue
		}
		goals = append(goals, g)
	}
	return s.OptimizeMultiDimensional(ctx, base, constraints, goals)
}

func (s *Solver) generateMultiDimensionalRecommendations(result *MultiDimensionalResult) []string {
	var recommendations []string

	for _, r := range result.Results {
		if r.BaseGoalMet {
			recommendations = append(recommendations,
				fmt.Sprintf("Current contributions already %s", DescribeGoal(r.Request.Goal, r.Request.Constraints)))
			continue
		}
		recommendations = append(recommendations,
			fmt.Sprintf("To %s: contribute at least %s per member per month (%s vs today)",
				DescribeGoal(r.Request.Goal, r.Request.Constraints),
				r.OptimalContribution.StringFixed(2),
				signedAmount(r.ContributionDiffFromBase)))
	}

	if b := result.Binding; b != nil && len(result.Results) > 1 {
		recommendations = append(recommendations,
			fmt.Sprintf("⭐ %s per month is the binding requirement (%s)", b.OptimalContribution.StringFixed(2), b.Request.Goal))
	}

	for _, g := range Goals {
		if _, failed := result.Failures[string(g)]; failed {
			recommendations = append(recommendations,
				fmt.Sprintf("Goal %s cannot be reached within the contribution bounds", g))
		}
	}

	return recommendations
}

// DescribeGoal renders a goal as a verb phrase
func DescribeGoal(goal OptimizationGoal, c Constraints) string {
	switch goal {
	case GoalFirstAwardBy:
		return fmt.Sprintf("deliver the first unit by month %d", c.TargetMonth)
	case GoalAllAwarded:
		return "deliver a unit to every member"
	case GoalNoDeficit:
		return "deliver units without a debt deficit"
	default:
		return string(goal)
	}
}
