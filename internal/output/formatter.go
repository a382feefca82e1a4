package output

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/rgehrsitz/tanda/internal/domain"
)

// Report bundles the results of one CLI invocation
type Report struct {
	Simulations    []*domain.SimulationResult    `json:"simulations,omitempty"`
	Restructurings []*domain.RestructuringResult `json:"restructurings,omitempty"`
	// ContractMarket selects currency rendering for contracts, which carry no market of their own
	ContractMarket domain.Market `json:"contractMarket,omitempty"`
}

// Formatter renders a report in one output format
type Formatter interface {
	Name() string
	Format(report *Report) ([]byte, error)
}

// FormatterFunc adapts a plain function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(report *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report *Report) ([]byte, error) { return f.F(report) }

var formatters = map[string]Formatter{
	"console":      ConsoleFormatter{},
	"console-lite": ConsoleLiteFormatter{},
	"csv":          CSVFormatter{},
	"json":         JSONFormatter{Pretty: true},
}

var formatAliases = map[string]string{
	"text":    "console",
	"table":   "console",
	"summary": "console-lite",
}

// GetFormatterByName returns the formatter registered under name or alias, or nil
func GetFormatterByName(name string) Formatter {
	if target, ok := formatAliases[name]; ok {
		name = target
	}
	return formatters[name]
}

// AvailableFormatterNames lists registered formatter names
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AvailableFormatAliases lists accepted aliases
func AvailableFormatAliases() []string {
	names := make([]string, 0, len(formatAliases))
	for name := range formatAliases {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// WriteFormatted renders the report and saves it to a timestamped file in
// the working directory, returning the file name
func WriteFormatted(f Formatter, report *Report, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", fmt.Errorf("format %s: %w", f.Name(), err)
	}
	filename := fmt.Sprintf("tanda_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	return filename, nil
}
