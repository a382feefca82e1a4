package config

import (
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/civil"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoProducts     = errors.New("no product packages provided")
	ErrUnknownProduct = errors.New("unknown product package")
	ErrInvalidTerm    = errors.New("term must be positive")
)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a YAML document
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration rejects inputs the engines must never see.
// The engines themselves do not validate.
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if len(config.Groups) == 0 && len(config.Contracts) == 0 {
		return fmt.Errorf("configuration has no groups or contracts")
	}
	if len(config.Groups) > 0 && len(config.Products) == 0 {
		return ErrNoProducts
	}

	seen := map[string]bool{}
	for i, p := range config.Products {
		if err := ip.validateProduct(&p); err != nil {
			return fmt.Errorf("product %d (%s) validation failed: %w", i, p.ID, err)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate product id %s", p.ID)
		}
		seen[p.ID] = true
	}

	seen = map[string]bool{}
	for i := range config.Groups {
		g := &config.Groups[i]
		if err := ip.validateGroup(config, g); err != nil {
			return fmt.Errorf("group %d (%s) validation failed: %w", i, g.Name, err)
		}
		if seen[g.Name] {
			return fmt.Errorf("duplicate group name %s", g.Name)
		}
		seen[g.Name] = true
	}

	seen = map[string]bool{}
	for i, c := range config.Contracts {
		if err := ip.validateContract(&c); err != nil {
			return fmt.Errorf("contract %d (%s) validation failed: %w", i, c.ID, err)
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate contract id %s", c.ID)
		}
		seen[c.ID] = true
	}

	if err := ip.validateProtection(&config.Protection); err != nil {
		return fmt.Errorf("protection options validation failed: %w", err)
	}
	return nil
}

func (ip *InputParser) validateProduct(p *domain.ProductPackage) error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !p.Market.Valid() {
		return fmt.Errorf("unsupported market %q", p.Market)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if p.AnnualRate.IsNegative() {
		return fmt.Errorf("annual rate cannot be negative")
	}
	if p.TermMonths <= 0 {
		return fmt.Errorf("term_months %d: %w", p.TermMonths, ErrInvalidTerm)
	}
	if !between(p.MinDownPaymentPct, decimal.Zero, decimal.NewFromInt(1)) {
		return fmt.Errorf("min_down_payment_pct must be between 0 and 1")
	}
	return nil
}

func (ip *InputParser) validateGroup(config *domain.Configuration, g *domain.GroupConfig) error {
	if g.Name == "" {
		return fmt.Errorf("name is required")
	}
	product, ok := config.Product(g.ProductID)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownProduct, g.ProductID)
	}
	if !g.Market.Valid() {
		return fmt.Errorf("unsupported market %q", g.Market)
	}
	if g.Market != product.Market {
		return fmt.Errorf("group market %s does not match product %s market %s", g.Market, product.ID, product.Market)
	}
	if g.HorizonMonths < 0 {
		return fmt.Errorf("horizon_months cannot be negative")
	}
	if g.StartDate != "" {
		if _, err := civil.ParseDate(g.StartDate); err != nil {
			return fmt.Errorf("invalid start_date: %w", err)
		}
	}

	ids := map[string]bool{}
	for i := range g.Members {
		m := &g.Members[i]
		if err := ip.validateMember(m); err != nil {
			return fmt.Errorf("member %d (%s) validation failed: %w", i, m.ID, err)
		}
		if ids[m.ID] {
			return fmt.Errorf("duplicate member id %s", m.ID)
		}
		ids[m.ID] = true
	}

	for i, spec := range g.Events {
		if err := ip.validateEvent(spec, ids); err != nil {
			return fmt.Errorf("event %d validation failed: %w", i, err)
		}
	}
	return nil
}

func (ip *InputParser) validateMember(m *domain.Member) error {
	if m.ID == "" {
		return fmt.Errorf("id is required")
	}
	if m.Status != "" && !m.Status.Valid() {
		return fmt.Errorf("unknown status %q", m.Status)
	}
	if m.BaseContribution.IsNegative() {
		return fmt.Errorf("base contribution cannot be negative")
	}
	return nil
}

// validateEvent checks one event; joiners are added to ids so later events may refer to them
func (ip *InputParser) validateEvent(spec domain.EventSpec, ids map[string]bool) error {
	ev, err := spec.ToEvent()
	if err != nil {
		return err
	}
	if ev.EventMonth() < 1 {
		return fmt.Errorf("%s month must be at least 1", ev.Kind())
	}

	switch e := ev.(type) {
	case domain.ExtraContribution:
		if e.Amount.IsNegative() {
			return fmt.Errorf("extra contribution amount cannot be negative")
		}
	case domain.MissedPayment:
		if e.Amount.IsPositive() {
			return fmt.Errorf("missed payment amount must be zero or negative")
		}
	case domain.MemberLeaves:
		if e.MemberID == "" {
			return fmt.Errorf("member_id is required")
		}
	case domain.MemberJoins:
		if err := ip.validateMember(&e.Member); err != nil {
			return fmt.Errorf("joining member validation failed: %w", err)
		}
		if ids[e.Member.ID] {
			return fmt.Errorf("joining member id %s already exists", e.Member.ID)
		}
		ids[e.Member.ID] = true
	}
	return nil
}

func (ip *InputParser) validateContract(c *domain.ContratoBase) error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}
	if c.OriginalPrincipal.IsNegative() {
		return fmt.Errorf("p0 cannot be negative")
	}
	if c.MonthlyRate.IsNegative() {
		return fmt.Errorf("r cannot be negative")
	}
	if c.OriginalTerm <= 0 {
		return fmt.Errorf("n %d: %w", c.OriginalTerm, ErrInvalidTerm)
	}
	if c.PaymentsMade < 0 || c.PaymentsMade >= c.OriginalTerm {
		return fmt.Errorf("k must be between 0 and %d", c.OriginalTerm-1)
	}
	if c.OriginalPayment.IsNegative() {
		return fmt.Errorf("m0 cannot be negative")
	}
	return nil
}

func (ip *InputParser) validateProtection(p *domain.ProtectionOptions) error {
	if p.Deferral.Months < 0 {
		return fmt.Errorf("deferral months cannot be negative")
	}
	if p.Reschedule.ExtraMonths < 0 {
		return fmt.Errorf("reschedule extra_months cannot be negative")
	}
	if p.StepDown.Months < 0 {
		return fmt.Errorf("step_down months cannot be negative")
	}
	if !between(p.StepDown.Reduction, decimal.Zero, decimal.NewFromInt(1)) {
		return fmt.Errorf("step_down reduction must be between 0 and 1")
	}
	return nil
}

// TandaRun resolves a validated group into simulator input
func (ip *InputParser) TandaRun(config *domain.Configuration, groupName string) (domain.TandaRun, error) {
	g, ok := config.Group(groupName)
	if !ok {
		return domain.TandaRun{}, fmt.Errorf("group %s not found in configuration", groupName)
	}
	product, ok := config.Product(g.ProductID)
	if !ok {
		return domain.TandaRun{}, fmt.Errorf("group %s: %w %q", g.Name, ErrUnknownProduct, g.ProductID)
	}

	var start civil.Date
	if g.StartDate != "" {
		d, err := civil.ParseDate(g.StartDate)
		if err != nil {
			return domain.TandaRun{}, fmt.Errorf("group %s: invalid start_date: %w", g.Name, err)
		}
		start = d
	}

	members := make([]domain.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = withDefaultStatus(m)
	}

	events := make([]domain.SimulationEvent, 0, len(g.Events))
	for i, spec := range g.Events {
		ev, err := spec.ToEvent()
		if err != nil {
			return domain.TandaRun{}, fmt.Errorf("group %s event %d: %w", g.Name, i, err)
		}
		if join, ok := ev.(domain.MemberJoins); ok {
			join.Member = withDefaultStatus(join.Member)
			ev = join
		}
		events = append(events, ev)
	}

	return domain.TandaRun{
		Group: domain.Group{
			Name:      g.Name,
			Market:    g.Market,
			Package:   product,
			Members:   members,
			StartDate: start,
		},
		HorizonMonths: g.HorizonMonths,
		Events:        events,
	}, nil
}

// TandaRuns resolves every group in file order
func (ip *InputParser) TandaRuns(config *domain.Configuration) ([]domain.TandaRun, error) {
	runs := make([]domain.TandaRun, 0, len(config.Groups))
	for _, g := range config.Groups {
		run, err := ip.TandaRun(config, g.Name)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func withDefaultStatus(m domain.Member) domain.Member {
	if m.Status == "" {
		m.Status = domain.StatusActive
	}
	return m
}

func between(v, lo, hi decimal.Decimal) bool {
	return v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi)
}
