package venue

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Locker custodies venue liquidity forever. There is deliberately no
// withdrawal path; graduated liquidity is permanent.
type Locker struct {
	mu     sync.RWMutex
	locked map[common.Hash]*uint256.Int
}

func NewLocker() *Locker {
	return &Locker{locked: make(map[common.Hash]*uint256.Int)}
}

func (l *Locker) Lock(assetID common.Hash, liquidity *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, ok := l.locked[assetID]
	if !ok {
		cur = uint256.NewInt(0)
		l.locked[assetID] = cur
	}
	cur.Add(cur, liquidity)
}

func (l *Locker) Locked(assetID common.Hash) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if v, ok := l.locked[assetID]; ok {
		return new(uint256.Int).Set(v)
	}
	return uint256.NewInt(0)
}
