package compare

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgehrsitz/tanda/internal/calculation"
	"github.com/rgehrsitz/tanda/internal/config"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/rgehrsitz/tanda/internal/transform"
)

// CompareEngine orchestrates what-if comparison
type CompareEngine struct {
	CalcEngine        *calculation.CalculationEngine
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
}

// NewCompareEngine creates a new comparison engine with the built-in templates
func NewCompareEngine(calcEngine *calculation.CalculationEngine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
		TemplateRegistry:  transform.CreateBuiltInTemplates(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	GroupName  string   // Group whose file events form the base run
	Templates  []string // Template names, each producing one alternative
	Transforms []string // Ad hoc transform specs, applied together as one alternative
}

// Compare runs a group and one variant per template
func (ce *CompareEngine) Compare(
	ctx context.Context,
	cfg *domain.Configuration,
	options CompareOptions,
) (*ComparisonSet, error) {
	base, err := config.NewInputParser().TandaRun(cfg, options.GroupName)
	if err != nil {
		return nil, err
	}

	alternatives, err := ce.templateRuns(base, options.Templates)
	if err != nil {
		return nil, err
	}

	if len(options.Transforms) > 0 {
		registry := transform.NewTransformRegistry()
		transforms := make([]transform.RunTransform, 0, len(options.Transforms))
		for _, spec := range options.Transforms {
			tr, err := registry.ParseTransformSpec(spec)
			if err != nil {
				return nil, fmt.Errorf("failed to parse transform %q: %w", spec, err)
			}
			transforms = append(transforms, tr)
		}
		modified, err := transform.ApplyTransforms(base, transforms)
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, namedRun{
			name:        base.Group.Name + "_custom",
			description: describe(transforms),
			run:         modified,
		})
	}

	return ce.compareRuns(ctx, base, alternatives)
}

// CompareTemplates compares a resolved run against every named template
func (ce *CompareEngine) CompareTemplates(ctx context.Context, base domain.TandaRun, templates []string) (*ComparisonSet, error) {
	alternatives, err := ce.templateRuns(base, templates)
	if err != nil {
		return nil, err
	}
	return ce.compareRuns(ctx, base, alternatives)
}

func (ce *CompareEngine) templateRuns(base domain.TandaRun, templates []string) ([]namedRun, error) {
	runs := make([]namedRun, 0, len(templates)+1)
	for _, templateName := range templates {
		template, ok := ce.TemplateRegistry.Get(templateName)
		if !ok {
			return nil, fmt.Errorf("template %s not found", templateName)
		}

		modified, err := transform.ApplyTemplate(base, template)
		if err != nil {
			return nil, fmt.Errorf("failed to apply template %s: %w", templateName, err)
		}
		runs = append(runs, namedRun{
			name:        base.Group.Name + "_" + template.Name,
			description: template.Description,
			run:         modified,
		})
	}
	return runs, nil
}

// CompareGroups compares explicit groups from the configuration (not using templates)
func (ce *CompareEngine) CompareGroups(
	ctx context.Context,
	cfg *domain.Configuration,
	baseGroupName string,
	alternativeGroupNames []string,
) (*ComparisonSet, error) {
	parser := config.NewInputParser()
	base, err := parser.TandaRun(cfg, baseGroupName)
	if err != nil {
		return nil, fmt.Errorf("base group: %w", err)
	}

	alternatives := make([]namedRun, 0, len(alternativeGroupNames))
	for _, name := range alternativeGroupNames {
		run, err := parser.TandaRun(cfg, name)
		if err != nil {
			return nil, fmt.Errorf("alternative group: %w", err)
		}
		alternatives = append(alternatives, namedRun{name: name, run: run})
	}
	return ce.compareRuns(ctx, base, alternatives)
}

// CompareRestructuring evaluates and ranks the relief policies for one contract
func (ce *CompareEngine) CompareRestructuring(
	ctx context.Context,
	cfg *domain.Configuration,
	contractID string,
) (*RestructuringComparison, error) {
	contract, ok := cfg.Contract(contractID)
	if !ok {
		return nil, fmt.Errorf("contract %s not found in configuration", contractID)
	}

	result, err := ce.CalcEngine.Restructure(ctx, *contract, cfg.Protection)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate contract %s: %w", contractID, err)
	}
	return RankRestructuring(result, contract.OriginalTerm), nil
}

type namedRun struct {
	name        string
	description string
	run         domain.TandaRun
}

func (ce *CompareEngine) compareRuns(ctx context.Context, base domain.TandaRun, alternatives []namedRun) (*ComparisonSet, error) {
	baseSim, err := ce.CalcEngine.RunTanda(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to simulate base group: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(base.Group.Name, baseSim)

	results := make([]ComparisonResult, 0, len(alternatives))
	for _, alt := range alternatives {
		sim, err := ce.CalcEngine.RunTanda(ctx, alt.run)
		if err != nil {
			return nil, fmt.Errorf("failed to simulate %s: %w", alt.name, err)
		}

		altResult := ce.MetricsCalculator.CalculateMetrics(alt.name, sim)
		altResult.Description = alt.description
		altResult = ce.MetricsCalculator.CalculateComparison(altResult, baseResult)

		results = append(results, altResult)
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   base.Group.Name,
		BaseResult:         &baseResult,
		AlternativeResults: results,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

func describe(transforms []transform.RunTransform) string {
	parts := make([]string, len(transforms))
	for i, tr := range transforms {
		parts[i] = tr.Description()
	}
	return strings.Join(parts, "; ")
}
