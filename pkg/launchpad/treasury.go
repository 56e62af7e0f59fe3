package launchpad

import (
	"sync"

	"github.com/holiman/uint256"
)

// Treasury accumulates protocol fees across all assets. Credits happen under
// each asset's trade lock; the treasury carries its own mutex because it is
// the only cross-asset shared resource.
type Treasury struct {
	mu      sync.Mutex
	balance *uint256.Int
}

func NewTreasury() *Treasury {
	return &Treasury{balance: uint256.NewInt(0)}
}

func (t *Treasury) Credit(amount *uint256.Int) {
	if amount == nil || amount.IsZero() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balance.Add(t.balance, amount)
}

// Withdraw debits the claimable balance and returns the balance remaining.
func (t *Treasury) Withdraw(amount *uint256.Int) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.balance.Lt(amount) {
		return nil, ErrInsufficientTreasury
	}
	t.balance.Sub(t.balance, amount)
	return new(uint256.Int).Set(t.balance), nil
}

func (t *Treasury) Balance() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(uint256.Int).Set(t.balance)
}
