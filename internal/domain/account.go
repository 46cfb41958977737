package domain

import "time"

// AccountKind classifies a user's money pool.
type AccountKind string

const (
	AccountKindCash    AccountKind = "cash"
	AccountKindBank    AccountKind = "bank"
	AccountKindSavings AccountKind = "savings"
)

// DefaultAccountKinds are provisioned for every new user.
var DefaultAccountKinds = []AccountKind{AccountKindCash, AccountKindBank, AccountKindSavings}

// Valid reports whether k is a known account kind.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountKindCash, AccountKindBank, AccountKindSavings:
		return true
	}
	return false
}

// Account is one user-owned money pool. Both running balances start at zero
// and are only ever moved by relative deltas; at any quiescent moment they
// equal the sum of all currently-applied transaction deltas.
type Account struct {
	ID              string
	UserID          string
	Name            string
	Kind            AccountKind
	BalanceBGNCents int64
	BalanceEURCents int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
