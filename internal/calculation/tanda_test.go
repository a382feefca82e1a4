package calculation

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func member(id string, prio int, contribution int64) domain.Member {
	return domain.Member{
		ID:               id,
		Name:             "Member " + id,
		Priority:         prio,
		Status:           domain.StatusActive,
		BaseContribution: dec(contribution),
	}
}

// zeroRatePackage has down payment 10000 and an MDS of 900
func zeroRatePackage() domain.ProductPackage {
	return domain.ProductPackage{
		ID:                "city-car",
		Market:            domain.MarketMX,
		Price:             dec(100000),
		AnnualRate:        decimal.Zero,
		TermMonths:        100,
		MinDownPaymentPct: decimal.NewFromFloat(0.1),
	}
}

func threeMemberGroup() domain.Group {
	return domain.Group{
		Name:    "Ruta Norte",
		Market:  domain.MarketMX,
		Package: zeroRatePackage(),
		Members: []domain.Member{
			member("A", 1, 5000),
			member("B", 2, 5000),
			member("C", 3, 5000),
		},
	}
}

func awardOrder(res domain.SimulationResult) []string {
	var ids []string
	for _, m := range res.Months {
		for _, a := range m.Awards {
			ids = append(ids, a.MemberID)
		}
	}
	return ids
}

func TestRunTandaSimulation_FirstAwardAfterDownPaymentAccumulates(t *testing.T) {
	group := domain.Group{
		Name:   "Scenario B",
		Market: domain.MarketMX,
		Package: domain.ProductPackage{
			ID:                "sedan",
			Market:            domain.MarketMX,
			Price:             dec(300000),
			AnnualRate:        decimal.NewFromFloat(0.12),
			TermMonths:        48,
			MinDownPaymentPct: decimal.NewFromFloat(0.15),
		},
		Members: []domain.Member{
			member("m1", 1, 5000),
			member("m2", 2, 5000),
			member("m3", 3, 5000),
		},
	}

	res := RunTandaSimulation(group, 24, nil)

	require.NotEmpty(t, res.Months)
	assert.GreaterOrEqual(t, res.FirstAwardMonth(), 3)
	assert.Equal(t, 3, res.FirstAwardMonth())
	assert.Equal(t, "m1", res.Months[2].Awards[0].MemberID)

	award := res.Awards["m1"]
	assert.True(t, award.DownPayment.Equal(dec(45000)))
	assert.True(t, award.RemainingPrincipal.Equal(dec(255000)))
	assert.InDelta(t, 6715.13, award.MonthlyDebtService.InexactFloat64(), 0.01)
	assert.True(t, res.Months[3].DebtDue.Equal(award.MonthlyDebtService), "debt due starts the month after the award")
}

func TestRunTandaSimulation_InitialQueueFollowsPriority(t *testing.T) {
	group := threeMemberGroup()
	group.Members = []domain.Member{
		member("X", 3, 5000),
		member("Y", 1, 5000),
		member("Z", 2, 5000),
	}

	res := RunTandaSimulation(group, 12, nil)

	assert.Equal(t, []string{"Y", "Z", "X"}, awardOrder(res))
}

func TestRunTandaSimulation_StopsWhenQueueEmpties(t *testing.T) {
	group := threeMemberGroup()
	group.Package.Price = dec(10000) // down payment 1000

	res := RunTandaSimulation(group, 24, nil)

	require.Len(t, res.Months, 1)
	assert.Len(t, res.Months[0].Awards, 3, "one month of savings covers every down payment")
	assert.Empty(t, res.Unawarded)
	assert.True(t, res.Months[0].Savings.Equal(dec(12000)))
}

func TestRunTandaSimulation_DeficitDoesNotReduceSavings(t *testing.T) {
	frozen := member("B", 2, 500)
	frozen.Status = domain.StatusFrozen
	group := domain.Group{
		Name:    "deficit",
		Market:  domain.MarketMX,
		Package: domain.ProductPackage{Price: dec(10000), AnnualRate: decimal.Zero, TermMonths: 10, MinDownPaymentPct: decimal.NewFromFloat(0.1)},
		Members: []domain.Member{member("A", 1, 500), frozen},
	}

	res := RunTandaSimulation(group, 6, nil)

	require.Len(t, res.Months, 6)
	assert.Equal(t, 2, res.FirstAwardMonth())
	assert.Equal(t, 4, res.DeficitMonths())
	assert.Equal(t, []string{"B"}, res.Unawarded)
	for _, m := range res.Months[2:] {
		assert.Equal(t, domain.RiskDebtDeficit, m.Risk)
		assert.True(t, m.Surplus.Equal(dec(-400)), "month %d surplus %s", m.Month, m.Surplus)
		assert.True(t, m.Savings.IsZero(), "month %d savings %s", m.Month, m.Savings)
	}
}

func TestRunTandaSimulation_Conservation(t *testing.T) {
	events := []domain.SimulationEvent{
		domain.MissedPayment{Month: 2, MemberID: "A", Amount: dec(-5000)},
		domain.ExtraContribution{Month: 5, MemberID: "C", Amount: dec(2500)},
	}
	group := threeMemberGroup()
	group.Members = append(group.Members, member("D", 4, 1000), member("E", 5, 1000))

	res := RunTandaSimulation(group, 36, events)

	prev := decimal.Zero
	for _, m := range res.Months {
		if len(m.Awards) == 0 {
			expected := prev.Add(decimal.Max(m.Surplus, decimal.Zero))
			assert.True(t, m.Savings.Equal(expected), "month %d: savings %s, expected %s", m.Month, m.Savings, expected)
		}
		assert.False(t, m.Savings.IsNegative())
		prev = m.Savings
	}
}

func TestRunTandaSimulation_EachMemberAwardedOnce(t *testing.T) {
	events := []domain.SimulationEvent{
		domain.MemberJoins{Month: 2, Member: member("D", 0, 5000)},
		domain.MemberLeaves{Month: 3, MemberID: "A"},
		domain.MemberJoins{Month: 4, Member: member("A", 0, 5000)},
	}

	res := RunTandaSimulation(threeMemberGroup(), 48, events)

	seen := map[string]int{}
	for _, id := range awardOrder(res) {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "member %s awarded %d times", id, n)
	}
	assert.Len(t, res.Awards, len(seen))
}

func TestRunTandaSimulation_JoinerGoesToQueueTail(t *testing.T) {
	events := []domain.SimulationEvent{
		domain.MemberJoins{Month: 2, Member: member("C", 0, 5000)},
	}
	group := threeMemberGroup()
	group.Members = group.Members[:2]

	res := RunTandaSimulation(group, 12, events)

	assert.Equal(t, []string{"A", "B", "C"}, awardOrder(res))
	assert.Equal(t, 3, res.Awards["C"].Month)
	require.Len(t, res.Months, 3)
	assert.True(t, res.Months[1].Inflow.Equal(dec(15000)), "joiner contributes in the month it joins")
}

func TestRunTandaSimulation_MemberLeaves(t *testing.T) {
	events := []domain.SimulationEvent{
		domain.MemberLeaves{Month: 2, MemberID: "B"},
	}

	res := RunTandaSimulation(threeMemberGroup(), 12, events)

	assert.Equal(t, []string{"A", "C"}, awardOrder(res))
	_, ok := res.Awards["B"]
	assert.False(t, ok)
	require.Len(t, res.Months, 2)
	assert.True(t, res.Months[1].Inflow.Equal(dec(10000)))
	assert.Equal(t, 2, res.Awards["C"].Month)
}

func TestRunTandaSimulation_AwardedMemberLeavingIsNoOp(t *testing.T) {
	events := []domain.SimulationEvent{
		domain.MemberLeaves{Month: 2, MemberID: "A"},
	}

	res := RunTandaSimulation(threeMemberGroup(), 12, events)

	require.GreaterOrEqual(t, len(res.Months), 2)
	assert.True(t, res.Months[1].Inflow.Equal(dec(15000)), "A keeps contributing after its award")
}

func TestRunTandaSimulation_MonetaryEventsAffectOneMonth(t *testing.T) {
	events := []domain.SimulationEvent{
		domain.MissedPayment{Month: 1, MemberID: "ghost", Amount: dec(-5000)},
		domain.ExtraContribution{Month: 1, MemberID: "A", Amount: dec(2500)},
	}
	group := threeMemberGroup()
	group.Package.MinDownPaymentPct = decimal.NewFromFloat(0.5)

	res := RunTandaSimulation(group, 3, events)

	require.Len(t, res.Months, 3)
	assert.True(t, res.Months[0].Inflow.Equal(dec(12500)))
	assert.True(t, res.Months[1].Inflow.Equal(dec(15000)))
}

func TestRunTandaSimulation_DoesNotMutateGroup(t *testing.T) {
	group := threeMemberGroup()
	snapshot := group.Clone()
	events := []domain.SimulationEvent{
		domain.MemberLeaves{Month: 1, MemberID: "B"},
		domain.MemberJoins{Month: 2, Member: member("D", 0, 1000)},
	}

	RunTandaSimulation(group, 12, events)

	assert.Equal(t, snapshot, group)
}

func TestRunTandaSimulation_Idempotent(t *testing.T) {
	events := []domain.SimulationEvent{
		domain.MemberJoins{Month: 3, Member: member("D", 0, 4000)},
		domain.MissedPayment{Month: 4, MemberID: "A", Amount: dec(-5000)},
	}
	group := threeMemberGroup()
	group.Package.AnnualRate = decimal.NewFromFloat(0.18)
	group.Package.TermMonths = 36

	first := RunTandaSimulation(group, 24, events)
	second := RunTandaSimulation(group, 24, events)

	assert.Equal(t, first, second)
}

func TestRunTandaSimulation_EmptyGroupRunsFullHorizon(t *testing.T) {
	group := domain.Group{Name: "empty", Package: zeroRatePackage()}

	res := RunTandaSimulation(group, 5, nil)

	assert.Len(t, res.Months, 5)
	assert.Empty(t, res.Awards)
}

func TestRunTandaSimulation_ZeroHorizon(t *testing.T) {
	res := RunTandaSimulation(threeMemberGroup(), 0, nil)

	assert.Empty(t, res.Months)
	assert.Equal(t, []string{"A", "B", "C"}, res.Unawarded)
}

func TestRunTandaSimulation_SkipsLeftAndDeliveredMembers(t *testing.T) {
	group := threeMemberGroup()
	group.Members[0].Status = domain.StatusDelivered
	group.Members[1].Status = domain.StatusLeft

	res := RunTandaSimulation(group, 12, nil)

	assert.Equal(t, []string{"C"}, awardOrder(res))
	assert.True(t, res.Months[0].Inflow.Equal(dec(5000)))
}

func TestRunTandaSimulation_MonthDates(t *testing.T) {
	group := threeMemberGroup()
	group.Package.MinDownPaymentPct = decimal.NewFromInt(1)
	group.StartDate = civil.Date{Year: 2026, Month: 11, Day: 15}

	res := RunTandaSimulation(group, 3, nil)

	require.Len(t, res.Months, 3)
	assert.Equal(t, civil.Date{Year: 2026, Month: 11, Day: 1}, res.Months[0].Date)
	assert.Equal(t, civil.Date{Year: 2027, Month: 1, Day: 1}, res.Months[2].Date)
}

func TestAwardQueue(t *testing.T) {
	q := newAwardQueue("a", "b", "c")

	assert.False(t, q.Push("b"), "already waiting")
	assert.True(t, q.Remove("b"))
	assert.False(t, q.Remove("b"))
	assert.True(t, q.Push("b"))
	assert.Equal(t, []string{"a", "c", "b"}, q.Pending())
	assert.Equal(t, 3, q.Len())

	id, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, "a", id)
	id, _ = q.Pop()
	assert.Equal(t, "c", id)
	id, _ = q.Pop()
	assert.Equal(t, "b", id)

	_, ok = q.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}
