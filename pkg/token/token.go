package token

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrNotAuthorized       = errors.New("token: caller not authorized")
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrPoolClosed rejects transfers into the future venue address before
	// graduation, so the venue cannot be pre-funded to skew its opening price.
	ErrPoolClosed       = errors.New("token: venue address locked until graduation")
	ErrAlreadyGraduated = errors.New("token: already graduated")
	ErrAlreadyMinted    = errors.New("token: supply already minted")
	ErrZeroAmount       = errors.New("token: zero amount")
)

// Token is the per-asset balance ledger handed to the orchestrator at
// issuance. It guards the future venue address while trading is still on the
// curve and carries the one-way graduated flag.
type Token struct {
	mu sync.RWMutex

	name   string
	symbol string

	totalSupply *uint256.Int
	balances    map[common.Address]*uint256.Int

	poolGuard  common.Address
	graduated  bool
	authorized map[common.Address]bool // orchestrator/strategy pair
}

// New creates a token with no supply. The authority is the only identity
// allowed to mint, set the venue guard, extend authorization and graduate.
func New(name, symbol string, authority common.Address) *Token {
	return &Token{
		name:        name,
		symbol:      symbol,
		totalSupply: uint256.NewInt(0),
		balances:    make(map[common.Address]*uint256.Int),
		authorized:  map[common.Address]bool{authority: true},
	}
}

func (t *Token) Name() string   { return t.name }
func (t *Token) Symbol() string { return t.symbol }

func (t *Token) TotalSupply() *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(uint256.Int).Set(t.totalSupply)
}

func (t *Token) BalanceOf(addr common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if b, ok := t.balances[addr]; ok {
		return new(uint256.Int).Set(b)
	}
	return uint256.NewInt(0)
}

func (t *Token) Graduated() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.graduated
}

// Mint issues the full fixed supply to the curve custody account. One shot.
func (t *Token) Mint(caller, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.authorized[caller] {
		return ErrNotAuthorized
	}
	if !t.totalSupply.IsZero() {
		return ErrAlreadyMinted
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	t.totalSupply = new(uint256.Int).Set(amount)
	t.balances[to] = new(uint256.Int).Set(amount)
	return nil
}

// SetPoolGuard records the future venue address. Transfers into it are
// rejected until MarkGraduated.
func (t *Token) SetPoolGuard(caller, pool common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.authorized[caller] {
		return ErrNotAuthorized
	}
	t.poolGuard = pool
	return nil
}

// Authorize extends the graduated-flag authority to the migration strategy.
func (t *Token) Authorize(caller, addr common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.authorized[caller] {
		return ErrNotAuthorized
	}
	t.authorized[addr] = true
	return nil
}

// Transfer moves amount between accounts. While not graduated, the future
// venue address cannot receive funds.
func (t *Token) Transfer(from, to common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.graduated && t.poolGuard != (common.Address{}) && to == t.poolGuard {
		return ErrPoolClosed
	}
	bal, ok := t.balances[from]
	if !ok || bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	dst, ok := t.balances[to]
	if !ok {
		dst = uint256.NewInt(0)
		t.balances[to] = dst
	}
	dst.Add(dst, amount)
	return nil
}

// MarkGraduated flips the one-way graduated flag. Only the orchestrator or
// its migration strategy may call it, and only once.
func (t *Token) MarkGraduated(caller common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.authorized[caller] {
		return ErrNotAuthorized
	}
	if t.graduated {
		return ErrAlreadyGraduated
	}
	t.graduated = true
	return nil
}
