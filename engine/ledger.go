/*
ledger.go - Append-only audit trail of a game

PURPOSE:
  The Ledger records enough history to reconstruct and score the player's
  strategy after the fact: every payment, every late fee, every earning,
  the day each account was paid off, and a balance time series.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: Entries are never edited or removed
  2. WRITE-ONCE MILESTONES: A payoff milestone is set the first time an
     account reaches zero and never overwritten
  3. COPY-ON-WRITE: Append helpers return a new Ledger; a Ledger held by an
     older GameState never changes

ORDERING:
  PaymentLog is ordered by insertion. Several payments can share a day.

SEE ALSO:
  - payment.go: Appends payment entries and milestones
  - advance.go: Appends fee entries and snapshots
  - analytics/: Reads the ledger for scoring and comparison
*/
package engine

// =============================================================================
// LEDGER ENTRIES
// =============================================================================

// PaymentLogEntry is an immutable record of one payment.
type PaymentLogEntry struct {
	Day              Day       `json:"day"`
	AccountID        AccountID `json:"account_id"`
	AmountPaid       Money     `json:"amount_paid"`
	InterestAccrued  Money     `json:"interest_accrued"`
	ResultingBalance Money     `json:"resulting_balance"`
}

// PayoffMilestone is written once, the first time an account reaches zero.
type PayoffMilestone struct {
	Day                        Day    `json:"day"`
	CumulativeInterestAtPayoff Money  `json:"cumulative_interest_at_payoff"`
	AccountName                string `json:"account_name"`
	InterestRate               string `json:"interest_rate"`
}

// DailySnapshot is one point of the aggregate debt time series.
type DailySnapshot struct {
	Day                        Day   `json:"day"`
	TotalBalanceAcrossAccounts Money `json:"total_balance"`
	CumulativeInterestPaid     Money `json:"cumulative_interest_paid"`
	AccountsRemaining          int   `json:"accounts_remaining"`
}

// LateFeeEntry records a posted late fee.
type LateFeeEntry struct {
	Day       Day       `json:"day"`
	AccountID AccountID `json:"account_id"`
	Month     int       `json:"month"`
	Amount    Money     `json:"amount"`
}

// EarningEntry records cash credited by CompleteEarning.
type EarningEntry struct {
	Day    Day   `json:"day"`
	Amount Money `json:"amount"`
}

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	PaymentLog       []PaymentLogEntry             `json:"payment_log"`
	PayoffMilestones map[AccountID]PayoffMilestone `json:"payoff_milestones"`
	DailySnapshots   []DailySnapshot               `json:"daily_snapshots"`
	LateFees         []LateFeeEntry                `json:"late_fees"`
	Earnings         []EarningEntry                `json:"earnings"`
}

// NewLedger returns an empty ledger with a non-nil milestone map.
func NewLedger() Ledger {
	return Ledger{
		PaymentLog:       []PaymentLogEntry{},
		PayoffMilestones: map[AccountID]PayoffMilestone{},
		DailySnapshots:   []DailySnapshot{},
		LateFees:         []LateFeeEntry{},
		Earnings:         []EarningEntry{},
	}
}

func (l Ledger) withPayment(e PaymentLogEntry) Ledger {
	l.PaymentLog = appendCopy(l.PaymentLog, e)
	return l
}

func (l Ledger) withSnapshot(s DailySnapshot) Ledger {
	l.DailySnapshots = appendCopy(l.DailySnapshots, s)
	return l
}

func (l Ledger) withLateFee(e LateFeeEntry) Ledger {
	l.LateFees = appendCopy(l.LateFees, e)
	return l
}

func (l Ledger) withEarning(e EarningEntry) Ledger {
	l.Earnings = appendCopy(l.Earnings, e)
	return l
}

// withMilestone records m unless the account already has a milestone.
func (l Ledger) withMilestone(id AccountID, m PayoffMilestone) Ledger {
	if _, exists := l.PayoffMilestones[id]; exists {
		return l
	}
	next := make(map[AccountID]PayoffMilestone, len(l.PayoffMilestones)+1)
	for k, v := range l.PayoffMilestones {
		next[k] = v
	}
	next[id] = m
	l.PayoffMilestones = next
	return l
}

func (l Ledger) clone() Ledger {
	c := Ledger{
		PaymentLog:       append([]PaymentLogEntry{}, l.PaymentLog...),
		PayoffMilestones: make(map[AccountID]PayoffMilestone, len(l.PayoffMilestones)),
		DailySnapshots:   append([]DailySnapshot{}, l.DailySnapshots...),
		LateFees:         append([]LateFeeEntry{}, l.LateFees...),
		Earnings:         append([]EarningEntry{}, l.Earnings...),
	}
	for k, v := range l.PayoffMilestones {
		c.PayoffMilestones[k] = v
	}
	return c
}

// PaymentsFor returns the payments made to one account, in order.
func (l Ledger) PaymentsFor(id AccountID) []PaymentLogEntry {
	var out []PaymentLogEntry
	for _, p := range l.PaymentLog {
		if p.AccountID == id {
			out = append(out, p)
		}
	}
	return out
}

// TotalPaid sums every logged payment.
func (l Ledger) TotalPaid() Money {
	total := ZeroMoney()
	for _, p := range l.PaymentLog {
		total = total.Add(p.AmountPaid)
	}
	return total
}

// appendCopy appends to a fresh backing array so slices shared with older
// ledgers are never written through.
func appendCopy[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// TakeSnapshot summarizes the aggregate debt of a state.
func TakeSnapshot(s GameState) DailySnapshot {
	return DailySnapshot{
		Day:                        s.CurrentDay,
		TotalBalanceAcrossAccounts: TotalOutstanding(s),
		CumulativeInterestPaid:     s.TotalInterestPaid,
		AccountsRemaining:          AccountsRemaining(s),
	}
}

// TotalOutstanding sums posted balances, rounded to whole units.
func TotalOutstanding(s GameState) Money {
	total := ZeroMoney()
	for _, a := range s.Accounts {
		total = total.Add(a.Balance.ClampZero())
	}
	return total.Round()
}

// AccountsRemaining counts accounts that still carry a balance.
func AccountsRemaining(s GameState) int {
	n := 0
	for _, a := range s.Accounts {
		if a.HasBalance() {
			n++
		}
	}
	return n
}
