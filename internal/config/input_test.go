package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
products:
  - id: sedan
    market: mx
    price: "300000"
    annual_rate: "0.12"
    term_months: 48
    min_down_payment_pct: "0.15"
groups:
  - name: g1
    market: mx
    product: sedan
    horizon_months: 12
    members:
      - id: a
        priority: 1
        base_contribution: "5000"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfiguration() *domain.Configuration {
	return &domain.Configuration{
		Products: []domain.ProductPackage{{
			ID:                "sedan",
			Market:            domain.MarketMX,
			Price:             decimal.NewFromInt(300000),
			AnnualRate:        decimal.NewFromFloat(0.12),
			TermMonths:        48,
			MinDownPaymentPct: decimal.NewFromFloat(0.15),
		}},
		Groups: []domain.GroupConfig{{
			Name:          "g1",
			Market:        domain.MarketMX,
			ProductID:     "sedan",
			HorizonMonths: 12,
			Members: []domain.Member{
				{ID: "a", Priority: 1, BaseContribution: decimal.NewFromInt(5000)},
				{ID: "b", Priority: 2, Status: domain.StatusFrozen, BaseContribution: decimal.NewFromInt(5000)},
			},
		}},
		Contracts: []domain.ContratoBase{{
			ID:                "CT-1",
			OriginalPrincipal: decimal.NewFromInt(200000),
			MonthlyRate:       decimal.NewFromFloat(0.02),
			OriginalTerm:      48,
			OriginalPayment:   decimal.NewFromInt(5800),
			PaymentsMade:      12,
		}},
	}
}

func TestLoadFromFile_Sample(t *testing.T) {
	parser := NewInputParser()

	cfg, err := parser.LoadFromFile(filepath.Join("..", "..", "testdata", "sample.yaml"))

	require.NoError(t, err)
	require.Len(t, cfg.Products, 2)
	require.Len(t, cfg.Groups, 2)
	require.Len(t, cfg.Contracts, 1)

	sedan, ok := cfg.Product("sedan-mx")
	require.True(t, ok)
	assert.True(t, sedan.Price.Equal(decimal.NewFromInt(300000)))
	assert.True(t, sedan.RequiredDownPayment().Equal(decimal.NewFromInt(45000)))

	g, ok := cfg.Group("Ruta Norte")
	require.True(t, ok)
	assert.Equal(t, "2025-01-01", g.StartDate)
	require.Len(t, g.Events, 2)
	assert.Equal(t, domain.KindMemberJoins, g.Events[1].Type)
	require.NotNil(t, g.Events[1].Member)
	assert.Equal(t, "m4", g.Events[1].Member.ID)

	c, ok := cfg.Contract("CT-001")
	require.True(t, ok)
	assert.Equal(t, 36, c.RemainingTerm())
	assert.True(t, cfg.Protection.StepDown.Reduction.Equal(decimal.NewFromFloat(0.25)))
	assert.True(t, cfg.Protection.CollectiveRescue.Requested)
}

func TestLoadFromFile_Errors(t *testing.T) {
	parser := NewInputParser()

	t.Run("missing file", func(t *testing.T) {
		_, err := parser.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), "failed to read file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := parser.LoadFromFile(writeConfig(t, "groups: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML")
	})

	t.Run("invalid content", func(t *testing.T) {
		_, err := parser.LoadFromFile(writeConfig(t, "products: []\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration validation failed")
	})
}

func TestLoadFromFile_Minimal(t *testing.T) {
	cfg, err := NewInputParser().LoadFromFile(writeConfig(t, minimalYAML))

	require.NoError(t, err)
	require.Len(t, cfg.Groups, 1)
	assert.Equal(t, 12, cfg.Groups[0].HorizonMonths)
	assert.True(t, cfg.Groups[0].Members[0].BaseContribution.Equal(decimal.NewFromInt(5000)))
}

func TestValidateConfiguration_Valid(t *testing.T) {
	assert.NoError(t, NewInputParser().ValidateConfiguration(validConfiguration()))
}

func TestValidateConfiguration_Sentinels(t *testing.T) {
	parser := NewInputParser()

	t.Run("no products", func(t *testing.T) {
		cfg := validConfiguration()
		cfg.Products = nil
		assert.ErrorIs(t, parser.ValidateConfiguration(cfg), ErrNoProducts)
	})

	t.Run("unknown product", func(t *testing.T) {
		cfg := validConfiguration()
		cfg.Groups[0].ProductID = "truck"
		assert.ErrorIs(t, parser.ValidateConfiguration(cfg), ErrUnknownProduct)
	})

	t.Run("zero product term", func(t *testing.T) {
		cfg := validConfiguration()
		cfg.Products[0].TermMonths = 0
		assert.ErrorIs(t, parser.ValidateConfiguration(cfg), ErrInvalidTerm)
	})

	t.Run("zero contract term", func(t *testing.T) {
		cfg := validConfiguration()
		cfg.Contracts[0].OriginalTerm = 0
		assert.ErrorIs(t, parser.ValidateConfiguration(cfg), ErrInvalidTerm)
	})
}

func TestValidateConfiguration_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *domain.Configuration)
		wantErr string
	}{
		{"empty configuration", func(cfg *domain.Configuration) {
			*cfg = domain.Configuration{}
		}, "no groups or contracts"},
		{"negative price", func(cfg *domain.Configuration) {
			cfg.Products[0].Price = decimal.NewFromInt(-1)
		}, "price cannot be negative"},
		{"negative rate", func(cfg *domain.Configuration) {
			cfg.Products[0].AnnualRate = decimal.NewFromFloat(-0.01)
		}, "annual rate cannot be negative"},
		{"down payment above one", func(cfg *domain.Configuration) {
			cfg.Products[0].MinDownPaymentPct = decimal.NewFromFloat(1.5)
		}, "min_down_payment_pct"},
		{"unknown market", func(cfg *domain.Configuration) {
			cfg.Products[0].Market = "br"
		}, "unsupported market"},
		{"duplicate product", func(cfg *domain.Configuration) {
			cfg.Products = append(cfg.Products, cfg.Products[0])
		}, "duplicate product id sedan"},
		{"market mismatch", func(cfg *domain.Configuration) {
			cfg.Groups[0].Market = domain.MarketUS
		}, "does not match product"},
		{"negative horizon", func(cfg *domain.Configuration) {
			cfg.Groups[0].HorizonMonths = -1
		}, "horizon_months cannot be negative"},
		{"bad start date", func(cfg *domain.Configuration) {
			cfg.Groups[0].StartDate = "2025-13-01"
		}, "invalid start_date"},
		{"duplicate member", func(cfg *domain.Configuration) {
			cfg.Groups[0].Members[1].ID = "a"
		}, "duplicate member id a"},
		{"unknown status", func(cfg *domain.Configuration) {
			cfg.Groups[0].Members[0].Status = "paused"
		}, "unknown status"},
		{"negative contribution", func(cfg *domain.Configuration) {
			cfg.Groups[0].Members[0].BaseContribution = decimal.NewFromInt(-10)
		}, "base contribution cannot be negative"},
		{"positive missed payment", func(cfg *domain.Configuration) {
			cfg.Groups[0].Events = []domain.EventSpec{{Type: domain.KindMissedPayment, Month: 2, MemberID: "a", Amount: decimal.NewFromInt(100)}}
		}, "missed payment amount must be zero or negative"},
		{"negative extra contribution", func(cfg *domain.Configuration) {
			cfg.Groups[0].Events = []domain.EventSpec{{Type: domain.KindExtraContribution, Month: 2, MemberID: "a", Amount: decimal.NewFromInt(-100)}}
		}, "extra contribution amount cannot be negative"},
		{"event in month zero", func(cfg *domain.Configuration) {
			cfg.Groups[0].Events = []domain.EventSpec{{Type: domain.KindMemberLeaves, MemberID: "a"}}
		}, "month must be at least 1"},
		{"unknown event type", func(cfg *domain.Configuration) {
			cfg.Groups[0].Events = []domain.EventSpec{{Type: "BONUS", Month: 1}}
		}, "unknown event type"},
		{"join without member", func(cfg *domain.Configuration) {
			cfg.Groups[0].Events = []domain.EventSpec{{Type: domain.KindMemberJoins, Month: 1}}
		}, "has no member"},
		{"join with existing id", func(cfg *domain.Configuration) {
			cfg.Groups[0].Events = []domain.EventSpec{{Type: domain.KindMemberJoins, Month: 3, Member: &domain.Member{ID: "b"}}}
		}, "joining member id b already exists"},
		{"payments made equals term", func(cfg *domain.Configuration) {
			cfg.Contracts[0].PaymentsMade = 48
		}, "k must be between 0 and 47"},
		{"negative monthly rate", func(cfg *domain.Configuration) {
			cfg.Contracts[0].MonthlyRate = decimal.NewFromFloat(-0.02)
		}, "r cannot be negative"},
		{"duplicate contract", func(cfg *domain.Configuration) {
			cfg.Contracts = append(cfg.Contracts, cfg.Contracts[0])
		}, "duplicate contract id CT-1"},
		{"negative deferral", func(cfg *domain.Configuration) {
			cfg.Protection.Deferral.Months = -2
		}, "deferral months cannot be negative"},
		{"reduction above one", func(cfg *domain.Configuration) {
			cfg.Protection.StepDown.Reduction = decimal.NewFromFloat(1.1)
		}, "step_down reduction"},
	}

	parser := NewInputParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfiguration()
			tt.mutate(cfg)

			err := parser.ValidateConfiguration(cfg)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfiguration_ContractsOnly(t *testing.T) {
	cfg := validConfiguration()
	cfg.Products = nil
	cfg.Groups = nil

	assert.NoError(t, NewInputParser().ValidateConfiguration(cfg))
}

func TestValidateConfiguration_JoinedMemberCanLeaveLater(t *testing.T) {
	cfg := validConfiguration()
	cfg.Groups[0].Events = []domain.EventSpec{
		{Type: domain.KindMemberJoins, Month: 2, Member: &domain.Member{ID: "z", BaseContribution: decimal.NewFromInt(100)}},
		{Type: domain.KindMemberLeaves, Month: 5, MemberID: "z"},
	}

	assert.NoError(t, NewInputParser().ValidateConfiguration(cfg))
}

func TestTandaRun(t *testing.T) {
	parser := NewInputParser()
	cfg := validConfiguration()
	cfg.Groups[0].StartDate = "2025-03-01"
	cfg.Groups[0].Events = []domain.EventSpec{
		{Type: domain.KindMissedPayment, Month: 2, MemberID: "a", Amount: decimal.NewFromInt(-5000)},
		{Type: domain.KindMemberJoins, Month: 3, Member: &domain.Member{ID: "c", Priority: 9, BaseContribution: decimal.NewFromInt(5000)}},
	}
	require.NoError(t, parser.ValidateConfiguration(cfg))

	run, err := parser.TandaRun(cfg, "g1")

	require.NoError(t, err)
	assert.Equal(t, "g1", run.Group.Name)
	assert.Equal(t, "sedan", run.Group.Package.ID)
	assert.Equal(t, civil.Date{Year: 2025, Month: 3, Day: 1}, run.Group.StartDate)
	assert.Equal(t, 12, run.HorizonMonths)
	assert.Equal(t, domain.StatusActive, run.Group.Members[0].Status, "empty status defaults to active")
	assert.Equal(t, domain.StatusFrozen, run.Group.Members[1].Status)

	require.Len(t, run.Events, 2)
	assert.IsType(t, domain.MissedPayment{}, run.Events[0])
	join, ok := run.Events[1].(domain.MemberJoins)
	require.True(t, ok)
	assert.Equal(t, domain.StatusActive, join.Member.Status)
}

func TestTandaRun_UnknownGroup(t *testing.T) {
	_, err := NewInputParser().TandaRun(validConfiguration(), "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "group missing not found")
}

func TestTandaRuns(t *testing.T) {
	parser := NewInputParser()
	cfg, err := parser.LoadFromFile(filepath.Join("..", "..", "testdata", "sample.yaml"))
	require.NoError(t, err)

	runs, err := parser.TandaRuns(cfg)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "Ruta Norte", runs[0].Group.Name)
	assert.Equal(t, "Eastside Drivers", runs[1].Group.Name)
	assert.Equal(t, civil.Date{}, runs[1].Group.StartDate)
}

func TestTandaRuns_PropagatesErrors(t *testing.T) {
	cfg := validConfiguration()
	cfg.Groups[0].ProductID = "gone"

	_, err := NewInputParser().TandaRuns(cfg)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProduct))
}
