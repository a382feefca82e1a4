package transform

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rgehrsitz/tanda/internal/domain"
)

// TemplateRegistry manages built-in what-if templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []RunTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names in alphabetical order
func (tr *TemplateRegistry) List() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CreateBuiltInTemplates creates a template registry with the common stress scenarios.
// Templates that name no member target whoever is first in award order.
func CreateBuiltInTemplates() *TemplateRegistry {
	registry := NewTemplateRegistry()

	registry.Register(Template{
		Name:        "missed_payment_m3",
		Description: "First member in line misses the month 3 payment",
		Transforms:  []RunTransform{&MissPayment{Month: 3}},
	})

	registry.Register(Template{
		Name:        "double_missed_m3_m4",
		Description: "First member in line misses the month 3 and month 4 payments",
		Transforms: []RunTransform{
			&MissPayment{Month: 3},
			&MissPayment{Month: 4},
		},
	})

	registry.Register(Template{
		Name:        "extra_contribution_m2",
		Description: "First member in line pays twice in month 2",
		Transforms:  []RunTransform{&ExtraPayment{Month: 2}},
	})

	registry.Register(Template{
		Name:        "first_member_leaves_m6",
		Description: "First member in line leaves the group in month 6",
		Transforms:  []RunTransform{&RemoveMember{Month: 6}},
	})

	registry.Register(Template{
		Name:        "late_joiner_m4",
		Description: "A new member with the same contribution joins in month 4",
		Transforms:  []RunTransform{&AddMember{Month: 4}},
	})

	return registry
}

// ApplyTemplate applies a template to a base run
func ApplyTemplate(base domain.TandaRun, template Template) (domain.TandaRun, error) {
	return ApplyTransforms(base, template.Transforms)
}

// ParseTemplateList parses a comma-separated list of template names
func ParseTemplateList(templateList string) []string {
	if templateList == "" {
		return nil
	}

	parts := strings.Split(templateList, ",")
	templates := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			templates = append(templates, trimmed)
		}
	}
	return templates
}

// GetTemplateHelp returns formatted help text for all templates
func GetTemplateHelp(registry *TemplateRegistry) string {
	if len(registry.templates) == 0 {
		return "No templates registered"
	}

	var sb strings.Builder
	sb.WriteString("Available Templates:\n\n")

	categories := map[string][]Template{
		"Payment Shocks":  {},
		"Roster Changes":  {},
		"Other Templates": {},
	}

	for _, name := range registry.List() {
		template := registry.templates[name]
		switch {
		case strings.Contains(name, "missed") || strings.Contains(name, "contribution"):
			categories["Payment Shocks"] = append(categories["Payment Shocks"], template)
		case strings.Contains(name, "leaves") || strings.Contains(name, "joiner"):
			categories["Roster Changes"] = append(categories["Roster Changes"], template)
		default:
			categories["Other Templates"] = append(categories["Other Templates"], template)
		}
	}

	for _, category := range []string{"Payment Shocks", "Roster Changes", "Other Templates"} {
		templates := categories[category]
		if len(templates) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("%s:\n", category))
		for _, t := range templates {
			sb.WriteString(fmt.Sprintf("  %-30s %s\n", t.Name, t.Description))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Usage:\n")
	sb.WriteString("  tanda compare groups.yaml --group \"Ruta Norte\" --with missed_payment_m3,late_joiner_m4\n")

	return sb.String()
}
