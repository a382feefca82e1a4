package calculation

import (
	"slices"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
)

// RunTandaSimulation projects a group's shared savings month by month over
// [1, horizonMonths], applying events and awarding units in queue order whenever
// savings cover the package down payment.
//
// The group is copied on entry and never modified. The run stops early once every
// queued member has been awarded. Business conditions such as an unfilled queue or
// a debt deficit are reported in the result, never as errors.
func RunTandaSimulation(group domain.Group, horizonMonths int, events []domain.SimulationEvent) domain.SimulationResult {
	st := newTandaState(group.Clone())
	byMonth := eventsByMonth(events)

	result := domain.SimulationResult{
		GroupName: group.Name,
		Market:    group.Market,
		Awards:    make(map[string]domain.Award),
	}

	for month := 1; month <= horizonMonths; month++ {
		adjustment := st.applyEvents(byMonth[month])
		state := st.advance(month, adjustment)
		for _, a := range state.Awards {
			result.Awards[a.MemberID] = a
		}
		result.Months = append(result.Months, state)

		if st.queue.Len() == 0 && st.everHadMembers {
			break
		}
	}

	result.Unawarded = st.queue.Pending()
	return result
}

// tandaState is the simulator's owned working copy of a group
type tandaState struct {
	group          domain.Group
	roster         []domain.Member
	queue          *awardQueue
	awarded        map[string]bool
	savings        decimal.Decimal
	debtService    decimal.Decimal
	everHadMembers bool
}

func newTandaState(group domain.Group) *tandaState {
	roster := make([]domain.Member, 0, len(group.Members))
	for _, m := range group.Members {
		if m.Status.Queueable() {
			roster = append(roster, m)
		}
	}

	ordered := append([]domain.Member(nil), roster...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})
	queue := newAwardQueue()
	for _, m := range ordered {
		queue.Push(m.ID)
	}

	return &tandaState{
		group:          group,
		roster:         roster,
		queue:          queue,
		awarded:        make(map[string]bool),
		savings:        decimal.Zero,
		debtService:    decimal.Zero,
		everHadMembers: len(roster) > 0,
	}
}

// applyEvents applies structural events in list order and returns the signed
// inflow adjustment of the monetary ones
func (s *tandaState) applyEvents(events []domain.SimulationEvent) decimal.Decimal {
	adjustment := decimal.Zero
	for _, ev := range events {
		switch e := ev.(type) {
		case domain.MemberLeaves:
			s.leave(e.MemberID)
		case domain.MemberJoins:
			s.join(e.Member)
		case domain.ExtraContribution:
			adjustment = adjustment.Add(e.Amount)
		case domain.MissedPayment:
			adjustment = adjustment.Add(e.Amount)
		}
	}
	return adjustment
}

// leave is a no-op for members already awarded
func (s *tandaState) leave(id string) {
	if s.awarded[id] {
		return
	}
	s.roster = slices.DeleteFunc(s.roster, func(m domain.Member) bool { return m.ID == id })
	s.queue.Remove(id)
}

// join appends m to the roster and the queue tail; priority does not move it forward
func (s *tandaState) join(m domain.Member) {
	if s.awarded[m.ID] || slices.ContainsFunc(s.roster, func(r domain.Member) bool { return r.ID == m.ID }) {
		return
	}
	if m.Status == "" {
		m.Status = domain.StatusActive
	}
	s.roster = append(s.roster, m)
	s.queue.Push(m.ID)
	s.everHadMembers = true
}

// advance computes one month's cash flow and runs the award loop
func (s *tandaState) advance(month int, adjustment decimal.Decimal) domain.MonthState {
	inflow := adjustment
	for _, m := range s.roster {
		if m.Status == domain.StatusActive {
			inflow = inflow.Add(m.BaseContribution)
		}
	}

	debtDue := s.debtService
	surplus := inflow.Sub(debtDue)
	risk := domain.RiskOK
	if surplus.IsNegative() {
		risk = domain.RiskDebtDeficit
	} else {
		s.savings = s.savings.Add(surplus)
	}

	awards := []domain.Award{}
	pkg := s.group.Package
	downPayment := pkg.RequiredDownPayment()
	for s.savings.GreaterThanOrEqual(downPayment) && s.queue.Len() > 0 {
		id, _ := s.queue.Pop()
		s.savings = s.savings.Sub(downPayment)
		principal := pkg.Price.Sub(downPayment)
		award := domain.Award{
			MemberID:           id,
			Month:              month,
			UnitPrice:          pkg.Price,
			DownPayment:        downPayment,
			RemainingPrincipal: principal,
			MonthlyDebtService: AnnuityPayment(principal, pkg.AnnualRate, pkg.TermMonths),
		}
		s.awarded[id] = true
		awards = append(awards, award)
	}
	for _, a := range awards {
		s.debtService = s.debtService.Add(a.MonthlyDebtService)
	}

	return domain.MonthState{
		Month:   month,
		Date:    monthDate(s.group.StartDate, month),
		Inflow:  inflow,
		DebtDue: debtDue,
		Surplus: surplus,
		Savings: s.savings,
		Awards:  awards,
		Risk:    risk,
	}
}

func eventsByMonth(events []domain.SimulationEvent) map[int][]domain.SimulationEvent {
	out := make(map[int][]domain.SimulationEvent)
	for _, ev := range events {
		out[ev.EventMonth()] = append(out[ev.EventMonth()], ev)
	}
	return out
}

// monthDate labels simulated month n with the first day of its calendar month.
// Groups without a start date get a zero date.
func monthDate(start civil.Date, n int) civil.Date {
	if start == (civil.Date{}) {
		return civil.Date{}
	}
	t := time.Date(start.Year, start.Month+time.Month(n-1), 1, 0, 0, 0, 0, time.UTC)
	return civil.DateOf(t)
}
