package transform

import (
	"fmt"
	"slices"

	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
)

// MissPayment makes one member skip their contribution in a given month.
// An empty MemberID targets the first member in award order.
type MissPayment struct {
	Month    int
	MemberID string
}

func (mp *MissPayment) Name() string {
	return "miss_payment"
}

func (mp *MissPayment) Description() string {
	return fmt.Sprintf("%s misses the month %d payment", memberLabel(mp.MemberID), mp.Month)
}

func (mp *MissPayment) Validate(base domain.TandaRun) error {
	if err := validateMonth(mp.Name(), mp.Month, base); err != nil {
		return err
	}
	if _, err := resolveMember(mp.Name(), base, mp.MemberID); err != nil {
		return err
	}
	return nil
}

func (mp *MissPayment) Apply(base domain.TandaRun) (domain.TandaRun, error) {
	m, err := resolveMember(mp.Name(), base, mp.MemberID)
	if err != nil {
		return domain.TandaRun{}, err
	}
	return withEvents(base, domain.MissedPayment{
		Month:    mp.Month,
		MemberID: m.ID,
		Amount:   m.BaseContribution.Neg(),
	}), nil
}

// ExtraPayment adds a one-off contribution. A zero Amount doubles the
// member's regular contribution for that month.
type ExtraPayment struct {
	Month    int
	MemberID string
	Amount   decimal.Decimal
}

func (ep *ExtraPayment) Name() string {
	return "extra_payment"
}

func (ep *ExtraPayment) Description() string {
	amount := "one extra contribution"
	if !ep.Amount.IsZero() {
		amount = ep.Amount.StringFixed(2)
	}
	return fmt.Sprintf("%s pays %s in month %d", memberLabel(ep.MemberID), amount, ep.Month)
}

func (ep *ExtraPayment) Validate(base domain.TandaRun) error {
	if err := validateMonth(ep.Name(), ep.Month, base); err != nil {
		return err
	}
	if ep.Amount.IsNegative() {
		return NewTransformError(ep.Name(), "validate", "amount cannot be negative", nil)
	}
	if _, err := resolveMember(ep.Name(), base, ep.MemberID); err != nil {
		return err
	}
	return nil
}

func (ep *ExtraPayment) Apply(base domain.TandaRun) (domain.TandaRun, error) {
	m, err := resolveMember(ep.Name(), base, ep.MemberID)
	if err != nil {
		return domain.TandaRun{}, err
	}
	amount := ep.Amount
	if amount.IsZero() {
		amount = m.BaseContribution
	}
	return withEvents(base, domain.ExtraContribution{Month: ep.Month, MemberID: m.ID, Amount: amount}), nil
}

// RemoveMember makes a member leave the group at the start of a month
type RemoveMember struct {
	Month    int
	MemberID string
}

func (rm *RemoveMember) Name() string {
	return "remove_member"
}

func (rm *RemoveMember) Description() string {
	return fmt.Sprintf("%s leaves the group in month %d", memberLabel(rm.MemberID), rm.Month)
}

func (rm *RemoveMember) Validate(base domain.TandaRun) error {
	if err := validateMonth(rm.Name(), rm.Month, base); err != nil {
		return err
	}
	if _, err := resolveMember(rm.Name(), base, rm.MemberID); err != nil {
		return err
	}
	return nil
}

func (rm *RemoveMember) Apply(base domain.TandaRun) (domain.TandaRun, error) {
	m, err := resolveMember(rm.Name(), base, rm.MemberID)
	if err != nil {
		return domain.TandaRun{}, err
	}
	return withEvents(base, domain.MemberLeaves{Month: rm.Month, MemberID: m.ID}), nil
}

// AddMember brings a new member into the group. A zero Contribution copies
// the contribution of the first member in award order.
type AddMember struct {
	Month        int
	MemberID     string
	Contribution decimal.Decimal
}

func (am *AddMember) Name() string {
	return "add_member"
}

func (am *AddMember) Description() string {
	return fmt.Sprintf("%s joins the group in month %d", am.joinerID(), am.Month)
}

func (am *AddMember) joinerID() string {
	if am.MemberID != "" {
		return am.MemberID
	}
	return fmt.Sprintf("joiner-m%d", am.Month)
}

func (am *AddMember) Validate(base domain.TandaRun) error {
	if err := validateMonth(am.Name(), am.Month, base); err != nil {
		return err
	}
	if am.Contribution.IsNegative() {
		return NewTransformError(am.Name(), "validate", "contribution cannot be negative", nil)
	}
	if _, ok := findMember(base, am.joinerID()); ok {
		return NewTransformError(am.Name(), "validate", fmt.Sprintf("member %s already exists", am.joinerID()), nil)
	}
	if am.Contribution.IsZero() && len(queueOrder(base.Group)) == 0 {
		return NewTransformError(am.Name(), "validate", "contribution is required when the group has no members", nil)
	}
	return nil
}

func (am *AddMember) Apply(base domain.TandaRun) (domain.TandaRun, error) {
	contribution := am.Contribution
	if contribution.IsZero() {
		order := queueOrder(base.Group)
		if len(order) == 0 {
			return domain.TandaRun{}, NewTransformError(am.Name(), "apply", "no member to copy the contribution from", nil)
		}
		contribution = order[0].BaseContribution
	}
	id := am.joinerID()
	return withEvents(base, domain.MemberJoins{
		Month: am.Month,
		Member: domain.Member{
			ID:               id,
			Name:             id,
			Status:           domain.StatusActive,
			BaseContribution: contribution,
		},
	}), nil
}

// ChangeHorizon sets the number of months to simulate
type ChangeHorizon struct {
	Months int
}

func (ch *ChangeHorizon) Name() string {
	return "set_horizon"
}

func (ch *ChangeHorizon) Description() string {
	return fmt.Sprintf("Simulate %d months", ch.Months)
}

func (ch *ChangeHorizon) Validate(base domain.TandaRun) error {
	if ch.Months < 0 {
		return NewTransformError(ch.Name(), "validate", fmt.Sprintf("months must be non-negative, got %d", ch.Months), nil)
	}
	return nil
}

func (ch *ChangeHorizon) Apply(base domain.TandaRun) (domain.TandaRun, error) {
	run := copyRun(base)
	run.HorizonMonths = ch.Months
	return run, nil
}

// SetContribution gives every member, including later joiners, the same
// monthly contribution
type SetContribution struct {
	Amount decimal.Decimal
}

func (sc *SetContribution) Name() string {
	return "set_contribution"
}

func (sc *SetContribution) Description() string {
	return fmt.Sprintf("Every member contributes %s per month", sc.Amount.StringFixed(2))
}

func (sc *SetContribution) Validate(base domain.TandaRun) error {
	if sc.Amount.IsNegative() {
		return NewTransformError(sc.Name(), "validate", "contribution cannot be negative", nil)
	}
	return nil
}

func (sc *SetContribution) Apply(base domain.TandaRun) (domain.TandaRun, error) {
	run := copyRun(base)
	for i := range run.Group.Members {
		run.Group.Members[i].BaseContribution = sc.Amount
	}
	for i, ev := range run.Events {
		if join, ok := ev.(domain.MemberJoins); ok {
			join.Member.BaseContribution = sc.Amount
			run.Events[i] = join
		}
	}
	return run, nil
}

func validateMonth(name string, month int, base domain.TandaRun) error {
	if month < 1 {
		return NewTransformError(name, "validate", fmt.Sprintf("month must be at least 1, got %d", month), nil)
	}
	if month > base.HorizonMonths {
		return NewTransformError(name, "validate", fmt.Sprintf("month %d is beyond the %d month horizon", month, base.HorizonMonths), nil)
	}
	return nil
}

// resolveMember finds id among the roster and earlier joins; empty id means
// the first member in award order
func resolveMember(name string, base domain.TandaRun, id string) (domain.Member, error) {
	if id == "" {
		order := queueOrder(base.Group)
		if len(order) == 0 {
			return domain.Member{}, NewTransformError(name, "validate", "group has no queued members", nil)
		}
		return order[0], nil
	}
	m, ok := findMember(base, id)
	if !ok {
		return domain.Member{}, NewTransformError(name, "validate", fmt.Sprintf("member %s not found in group %s", id, base.Group.Name), nil)
	}
	return m, nil
}

func findMember(base domain.TandaRun, id string) (domain.Member, bool) {
	for _, m := range base.Group.Members {
		if m.ID == id {
			return m, true
		}
	}
	for _, ev := range base.Events {
		if join, ok := ev.(domain.MemberJoins); ok && join.Member.ID == id {
			return join.Member, true
		}
	}
	return domain.Member{}, false
}

// queueOrder lists queueable members in the order the simulator awards them
func queueOrder(g domain.Group) []domain.Member {
	var order []domain.Member
	for _, m := range g.Members {
		if m.Status.Queueable() {
			order = append(order, m)
		}
	}
	slices.SortStableFunc(order, func(a, b domain.Member) int {
		return a.Priority - b.Priority
	})
	return order
}

func memberLabel(id string) string {
	if id == "" {
		return "First member in line"
	}
	return "Member " + id
}
