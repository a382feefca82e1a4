package breakeven

import (
	"fmt"

	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
)

// OptimizationTarget defines what parameter to search over
type OptimizationTarget string

const (
	OptimizeContribution OptimizationTarget = "contribution"
	OptimizeHorizon      OptimizationTarget = "horizon"
)

// OptimizationGoal defines what outcome the group must reach
type OptimizationGoal string

const (
	GoalFirstAwardBy OptimizationGoal = "first_award_by" // first unit delivered by Constraints.TargetMonth
	GoalAllAwarded   OptimizationGoal = "all_awarded"    // every queued member receives a unit
	GoalNoDeficit    OptimizationGoal = "no_deficit"     // units delivered and debt service always covered
)

// Goals lists every goal in display order
var Goals = []OptimizationGoal{GoalFirstAwardBy, GoalAllAwarded, GoalNoDeficit}

// Valid reports whether g is a known goal
func (g OptimizationGoal) Valid() bool {
	switch g {
	case GoalFirstAwardBy, GoalAllAwarded, GoalNoDeficit:
		return true
	}
	return false
}

// Constraints define bounds for the search
type Constraints struct {
	// Uniform monthly contribution bounds; defaults are zero and the unit price
	MinContribution *decimal.Decimal `json:"minContribution,omitempty"`
	MaxContribution *decimal.Decimal `json:"maxContribution,omitempty"`

	// Longest horizon the horizon search will try
	MaxHorizon int `json:"maxHorizon,omitempty"`

	// Month the first award must happen by, for GoalFirstAwardBy
	TargetMonth int `json:"targetMonth,omitempty"`
}

// DefaultMaxHorizon bounds the horizon search when no constraint is given
const DefaultMaxHorizon = 240

// OptimizationRequest defines the parameters for one search
type OptimizationRequest struct {
	Base          domain.TandaRun    `json:"-"`
	Target        OptimizationTarget `json:"target"`
	Goal          OptimizationGoal   `json:"goal"`
	Constraints   Constraints        `json:"constraints"`
	MaxIterations int                `json:"-"`
	Tolerance     decimal.Decimal    `json:"-"` // contribution bracket width at which the search stops
}

// OptimizationResult contains the outcome of one search
type OptimizationResult struct {
	Request         OptimizationRequest `json:"request"`
	GroupName       string              `json:"groupName"`
	Success         bool                `json:"success"`
	Iterations      int                 `json:"iterations"`
	ConvergenceInfo string              `json:"convergenceInfo"`

	OptimalContribution *decimal.Decimal `json:"optimalContribution,omitempty"`
	OptimalHorizon      *int             `json:"optimalHorizon,omitempty"`

	// Results at the optimal parameter
	Simulation      *domain.SimulationResult `json:"-"`
	FirstAwardMonth int                      `json:"firstAwardMonth"`
	Awarded         int                      `json:"awarded"`
	Unawarded       int                      `json:"unawarded"`
	DeficitMonths   int                      `json:"deficitMonths"`
	FinalSavings    decimal.Decimal          `json:"finalSavings"`

	// Comparison to the unmodified run
	BaseFirstAwardMonth      int             `json:"baseFirstAwardMonth"`
	BaseDeficitMonths        int             `json:"baseDeficitMonths"`
	BaseGoalMet              bool            `json:"baseGoalMet"`
	ContributionDiffFromBase decimal.Decimal `json:"contributionDiffFromBase"`
}

// MultiDimensionalResult collects one result per goal
type MultiDimensionalResult struct {
	GroupName       string               `json:"groupName"`
	Results         []OptimizationResult `json:"results"`
	Failures        map[string]string    `json:"failures,omitempty"`
	Binding         *OptimizationResult  `json:"binding,omitempty"`
	Recommendations []string             `json:"recommendations"`
}

// SolverOptions configures the solver algorithm
type SolverOptions struct {
	Tolerance     decimal.Decimal // Stop when the contribution bracket is narrower than this
	MaxIterations int
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromInt(1),
		MaxIterations: 50,
	}
}

// Validate checks if constraints are internally consistent
func (c *Constraints) Validate(goal OptimizationGoal) error {
	if !goal.Valid() {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   fmt.Sprintf("unknown goal %q", goal),
		}
	}
	if goal == GoalFirstAwardBy && c.TargetMonth < 1 {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "target month must be at least 1 for first_award_by",
		}
	}
	if c.MinContribution != nil && c.MinContribution.IsNegative() {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "min contribution cannot be negative",
		}
	}
	if c.MinContribution != nil && c.MaxContribution != nil && c.MinContribution.GreaterThan(*c.MaxContribution) {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "min contribution cannot be greater than max contribution",
		}
	}
	if c.MaxHorizon < 0 {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "max horizon cannot be negative",
		}
	}
	return nil
}

// BreakEvenError represents errors from break-even solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
