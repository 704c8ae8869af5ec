/*
strategy.go - End-of-game strategy report

PURPOSE:
  Reads a game's ledger and explains how closely the player followed the
  avalanche method: where the money went, how many minimums were missed,
  and which mistakes cost the most.

MISTAKE RULES:
  - Less than 40% of all payments went to the highest-rate account.
  - Any late fee was charged.
  - The lowest-rate account received more than the highest-rate one
    (and more than 100 in total).

SEE ALSO:
  - score.go: EfficiencyScore, Grade
  - engine/ledger.go: PaymentLog, LateFees, PayoffMilestones
*/
package analytics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/avalanche-engine/engine"
)

var (
	focusThreshold        = 0.4
	lowRateMistakeMinimum = engine.NewMoneyFromInt(100)
)

// AccountPayments aggregates the payments made to one account.
type AccountPayments struct {
	AccountID    engine.AccountID `json:"account_id"`
	Name         string           `json:"name"`
	InterestRate decimal.Decimal  `json:"interest_rate"`
	Total        engine.Money     `json:"total"`
	Count        int              `json:"count"`
	Share        float64          `json:"share"`
}

// Milestone is a payoff milestone with its account id attached.
type Milestone struct {
	AccountID engine.AccountID `json:"account_id"`
	engine.PayoffMilestone
}

// StrategyReport is the end-of-game analysis.
type StrategyReport struct {
	Months               int               `json:"months"`
	TotalPaid            engine.Money      `json:"total_paid"`
	InitialDebt          engine.Money      `json:"initial_debt"`
	ExtraCostPercent     float64           `json:"extra_cost_percent"`
	AverageDailyInterest float64           `json:"average_daily_interest"`
	ByAccount            []AccountPayments `json:"by_account"`
	AvalancheRatio       float64           `json:"avalanche_ratio"`
	MissedMinimums       int               `json:"missed_minimums"`
	Mistakes             []string          `json:"mistakes"`
	Milestones           []Milestone       `json:"milestones"`
	Score                float64           `json:"score"`
	Grade                string            `json:"grade"`
}

// AnalyzeStrategy builds the report for a game state.
func AnalyzeStrategy(s engine.GameState) StrategyReport {
	ranked := RankByRate(s.Accounts)
	total := s.Ledger.TotalPaid()

	byAccount := make([]AccountPayments, 0, len(ranked))
	for _, a := range ranked {
		ap := AccountPayments{
			AccountID:    a.ID,
			Name:         a.Name,
			InterestRate: a.InterestRate,
			Total:        engine.ZeroMoney(),
		}
		for _, p := range s.Ledger.PaymentsFor(a.ID) {
			ap.Total = ap.Total.Add(p.AmountPaid)
			ap.Count++
		}
		ap.Share = ratio(ap.Total, total)
		byAccount = append(byAccount, ap)
	}

	report := StrategyReport{
		Months:               monthsElapsed(s.CurrentDay),
		TotalPaid:            total,
		InitialDebt:          initialDebt(s),
		ByAccount:            byAccount,
		MissedMinimums:       len(s.Ledger.LateFees),
		Milestones:           Milestones(s),
		Mistakes:             []string{},
		AverageDailyInterest: s.TotalInterestPaid.Float64() / float64(max(1, int(s.CurrentDay))),
	}
	report.ExtraCostPercent = 100 * ratio(s.TotalInterestPaid.Add(s.TotalLateFees), report.InitialDebt)
	report.Score = EfficiencyScore(s)
	report.Grade = Grade(report.Score)

	if len(byAccount) == 0 {
		return report
	}
	highest := byAccount[0]
	lowest := byAccount[len(byAccount)-1]
	report.AvalancheRatio = highest.Share

	if report.AvalancheRatio < focusThreshold {
		report.Mistakes = append(report.Mistakes, fmt.Sprintf(
			"Should have focused more on %s (%s%% APR), the highest rate card",
			highest.Name, highest.InterestRate))
	}
	if s.TotalLateFees.IsPositive() {
		report.Mistakes = append(report.Mistakes, fmt.Sprintf(
			"Missed %d minimum %s resulting in %s in late fees",
			report.MissedMinimums, plural(report.MissedMinimums, "payment", "payments"), s.TotalLateFees))
	}
	if lowest.AccountID != highest.AccountID &&
		lowest.Total.GreaterThan(highest.Total) &&
		lowest.Total.GreaterThan(lowRateMistakeMinimum) {
		report.Mistakes = append(report.Mistakes, fmt.Sprintf(
			"Paid more to %s (%s%% APR) than %s (%s%% APR)",
			lowest.Name, lowest.InterestRate, highest.Name, highest.InterestRate))
	}
	return report
}

// Milestones returns the payoff milestones ordered by day.
func Milestones(s engine.GameState) []Milestone {
	out := make([]Milestone, 0, len(s.Ledger.PayoffMilestones))
	for id, m := range s.Ledger.PayoffMilestones {
		out = append(out, Milestone{AccountID: id, PayoffMilestone: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

// initialDebt reads the opening snapshot, or sums current balances when no
// snapshot was recorded.
func initialDebt(s engine.GameState) engine.Money {
	if len(s.Ledger.DailySnapshots) > 0 {
		return s.Ledger.DailySnapshots[0].TotalBalanceAcrossAccounts
	}
	return engine.TotalOutstanding(s)
}

func monthsElapsed(d engine.Day) int {
	return (int(d) + engine.DaysPerMonth - 1) / engine.DaysPerMonth
}

func ratio(part, whole engine.Money) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Float64() / whole.Float64()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
