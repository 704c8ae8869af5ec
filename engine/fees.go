/*
fees.go - Late fee policy

PURPOSE:
  Decides whether crossing an account's due day costs a late fee.

RULES:
  A fee posts when the simulation reaches an account's due day in month M
  and all of the following hold:
  1. The balance (clamped, rounded) is still positive
  2. Cumulative payments have not reached the minimum in month M
     (LastMinimumPaymentMonth is nil or < M)
  3. No fee has posted for that account in month M yet

  A fee adds to the balance and to the game's late-fee total. It is not a
  payment: LastMinimumPaymentMonth is never touched.

SEE ALSO:
  - advance.go: Calls Assess while scanning crossed days
*/
package engine

// DefaultLateFee is the fixed fee per account per missed month.
var DefaultLateFee = NewMoneyFromInt(35)

// LateFeePolicy holds the fee amount levied on a missed minimum.
type LateFeePolicy struct {
	Amount Money `json:"amount"`
}

func DefaultLateFeePolicy() LateFeePolicy {
	return LateFeePolicy{Amount: DefaultLateFee}
}

// Eligible reports whether the account owes a fee for a due day in month.
func (p LateFeePolicy) Eligible(a Account, month int) bool {
	if !a.HasBalance() {
		return false
	}
	if a.LastMinimumPaymentMonth != nil && *a.LastMinimumPaymentMonth >= month {
		return false
	}
	if a.LastLateFeeMonth != nil && *a.LastLateFeeMonth >= month {
		return false
	}
	return true
}

// Assess posts the fee on a copy of the account if it is eligible, and
// returns the fee charged (zero if none).
func (p LateFeePolicy) Assess(a Account, month int) (Account, Money) {
	if !p.Amount.IsPositive() || !p.Eligible(a, month) {
		return a, ZeroMoney()
	}
	a.Balance = a.Balance.Add(p.Amount).Round()
	a.LastLateFeeMonth = intPtr(month)
	return a, p.Amount
}
