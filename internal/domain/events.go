package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EventKind tags the variants of SimulationEvent
type EventKind string

const (
	KindExtraContribution EventKind = "EXTRA_CONTRIBUTION"
	KindMissedPayment     EventKind = "MISSED_PAYMENT"
	KindMemberLeaves      EventKind = "MEMBER_LEAVES"
	KindMemberJoins       EventKind = "MEMBER_JOINS"
)

// SimulationEvent is a what-if perturbation injected at a given month.
// The set of implementations is closed to this package.
type SimulationEvent interface {
	EventMonth() int
	Kind() EventKind
	simulationEvent()
}

// ExtraContribution adds Amount to the inflow of one month
type ExtraContribution struct {
	Month    int
	MemberID string
	Amount   decimal.Decimal
}

// MissedPayment carries a non-positive Amount that reduces one month's inflow
type MissedPayment struct {
	Month    int
	MemberID string
	Amount   decimal.Decimal
}

// MemberLeaves removes a member from the roster and the award queue
type MemberLeaves struct {
	Month    int
	MemberID string
}

// MemberJoins appends a member to the roster and the tail of the award queue
type MemberJoins struct {
	Month  int
	Member Member
}

func (e ExtraContribution) EventMonth() int { return e.Month }
func (e MissedPayment) EventMonth() int     { return e.Month }
func (e MemberLeaves) EventMonth() int      { return e.Month }
func (e MemberJoins) EventMonth() int       { return e.Month }

func (ExtraContribution) Kind() EventKind { return KindExtraContribution }
func (MissedPayment) Kind() EventKind     { return KindMissedPayment }
func (MemberLeaves) Kind() EventKind      { return KindMemberLeaves }
func (MemberJoins) Kind() EventKind       { return KindMemberJoins }

func (ExtraContribution) simulationEvent() {}
func (MissedPayment) simulationEvent()     {}
func (MemberLeaves) simulationEvent()      {}
func (MemberJoins) simulationEvent()       {}

// EventSpec is the flat file representation of a SimulationEvent
type EventSpec struct {
	Type     EventKind       `yaml:"type" json:"type"`
	Month    int             `yaml:"month" json:"month"`
	MemberID string          `yaml:"member_id,omitempty" json:"memberId,omitempty"`
	Amount   decimal.Decimal `yaml:"amount,omitempty" json:"amount,omitempty"`
	Member   *Member         `yaml:"member,omitempty" json:"member,omitempty"`
}

// ToEvent converts the spec into its typed variant
func (s EventSpec) ToEvent() (SimulationEvent, error) {
	switch s.Type {
	case KindExtraContribution:
		return ExtraContribution{Month: s.Month, MemberID: s.MemberID, Amount: s.Amount}, nil
	case KindMissedPayment:
		return MissedPayment{Month: s.Month, MemberID: s.MemberID, Amount: s.Amount}, nil
	case KindMemberLeaves:
		return MemberLeaves{Month: s.Month, MemberID: s.MemberID}, nil
	case KindMemberJoins:
		if s.Member == nil {
			return nil, fmt.Errorf("%s event in month %d has no member", s.Type, s.Month)
		}
		return MemberJoins{Month: s.Month, Member: *s.Member}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", s.Type)
	}
}

// SpecOf converts a typed event back to its flat form
func SpecOf(ev SimulationEvent) EventSpec {
	switch e := ev.(type) {
	case ExtraContribution:
		return EventSpec{Type: e.Kind(), Month: e.Month, MemberID: e.MemberID, Amount: e.Amount}
	case MissedPayment:
		return EventSpec{Type: e.Kind(), Month: e.Month, MemberID: e.MemberID, Amount: e.Amount}
	case MemberLeaves:
		return EventSpec{Type: e.Kind(), Month: e.Month, MemberID: e.MemberID}
	case MemberJoins:
		m := e.Member
		return EventSpec{Type: e.Kind(), Month: e.Month, MemberID: m.ID, Member: &m}
	default:
		panic(fmt.Sprintf("unhandled simulation event %T", ev))
	}
}
