package calculation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLogger records formatted messages by level
type TestLogger struct {
	messages []string
}

func (l *TestLogger) Debugf(format string, args ...any) { l.add("DEBUG", format, args...) }
func (l *TestLogger) Infof(format string, args ...any)  { l.add("INFO", format, args...) }
func (l *TestLogger) Warnf(format string, args ...any)  { l.add("WARN", format, args...) }
func (l *TestLogger) Errorf(format string, args ...any) { l.add("ERROR", format, args...) }

func (l *TestLogger) add(level, format string, args ...any) {
	l.messages = append(l.messages, level+": "+fmt.Sprintf(format, args...))
}

func (l *TestLogger) count(prefix string) int {
	n := 0
	for _, m := range l.messages {
		if strings.HasPrefix(m, prefix) {
			n++
		}
	}
	return n
}

func TestNewCalculationEngine(t *testing.T) {
	engine := NewCalculationEngine()

	assert.NotNil(t, engine, "Should create engine")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should default to no-op logger")
}

func TestCalculationEngine_SetLogger(t *testing.T) {
	engine := NewCalculationEngine()

	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)
	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	engine.SetLogger(nil)
	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func TestCalculationEngine_RunTanda(t *testing.T) {
	logger := &TestLogger{}
	engine := NewCalculationEngine()
	engine.SetLogger(logger)
	engine.Debug = true

	frozen := member("B", 2, 500)
	frozen.Status = domain.StatusFrozen
	run := domain.TandaRun{
		Group: domain.Group{
			Name:    "deficit",
			Package: domain.ProductPackage{Price: dec(10000), AnnualRate: decimal.Zero, TermMonths: 10, MinDownPaymentPct: decimal.NewFromFloat(0.1)},
			Members: []domain.Member{member("A", 1, 500), frozen},
		},
		HorizonMonths: 6,
	}

	result, err := engine.RunTanda(context.Background(), run)

	require.NoError(t, err)
	assert.Len(t, result.Months, 6)
	assert.Equal(t, 1, logger.count("DEBUG: month 2: awarded A"))
	assert.Equal(t, 1, logger.count("WARN: group deficit: 4 months"))
}

func TestCalculationEngine_RunTanda_CanceledContext(t *testing.T) {
	engine := NewCalculationEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.RunTanda(ctx, domain.TandaRun{Group: threeMemberGroup(), HorizonMonths: 12})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculationEngine_RunTandas(t *testing.T) {
	engine := NewCalculationEngine()
	runs := []domain.TandaRun{
		{Group: threeMemberGroup(), HorizonMonths: 12},
		{Group: domain.Group{Name: "empty", Package: zeroRatePackage()}, HorizonMonths: 3},
	}

	results, err := engine.RunTandas(context.Background(), runs)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Ruta Norte", results[0].GroupName)
	assert.Len(t, results[1].Months, 3)
}

func TestCalculationEngine_Restructure(t *testing.T) {
	logger := &TestLogger{}
	engine := NewCalculationEngine()
	engine.SetLogger(logger)

	c := scenarioAContract()
	c.MonthlyRate = decimal.NewFromFloat(0.03)

	result, err := engine.Restructure(context.Background(), c, defaultOptions())

	require.NoError(t, err)
	assert.Equal(t, "CT-001", result.ContractID)
	assert.Len(t, result.Scenarios, 4)
	assert.Equal(t, 3, logger.count("WARN: contract CT-001"), "three scenarios sit above the rate ceiling")
}
