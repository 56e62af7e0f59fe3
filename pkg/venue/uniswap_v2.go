package venue

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// minimumLiquidity is burned on first mint, uniswap-v2 style, so a pool can
// never be fully drained.
var minimumLiquidity = uint256.NewInt(1000)

// V2Pool is the constant-product pool backing a graduated asset.
type V2Pool struct {
	Address      common.Address
	TokenReserve *uint256.Int
	EthReserve   *uint256.Int
	Liquidity    *uint256.Int
}

// UniswapV2Strategy creates a constant-product pool per graduated asset and
// locks the full LP position in the locker.
type UniswapV2Strategy struct {
	mu       sync.Mutex
	locker   *Locker
	prepared map[common.Hash]common.Address
	pools    map[common.Hash]*V2Pool
}

func NewUniswapV2Strategy(locker *Locker) *UniswapV2Strategy {
	return &UniswapV2Strategy{
		locker:   locker,
		prepared: make(map[common.Hash]common.Address),
		pools:    make(map[common.Hash]*V2Pool),
	}
}

// Prepare derives the deterministic pool address for the asset and reserves
// its slot. The orchestrator guards this address in the token ledger until
// graduation.
func (s *UniswapV2Strategy) Prepare(assetID common.Hash) (common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prepared[assetID]; ok {
		return common.Address{}, ErrAlreadyPrepared
	}
	addr := common.BytesToAddress(crypto.Keccak256([]byte("univ2-pool"), assetID.Bytes())[12:])
	s.prepared[assetID] = addr
	return addr, nil
}

// Migrate deposits both amounts into a fresh pool, mints
// liquidity = floor(sqrt(tokenAmount*ethAmount)), burns the minimum
// liquidity and locks the remainder. A second call for the same asset fails
// without touching the existing pool.
func (s *UniswapV2Strategy) Migrate(assetID common.Hash, tokenAmount, ethAmount *uint256.Int) (*Migration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr, ok := s.prepared[assetID]
	if !ok {
		return nil, ErrNotPrepared
	}
	if _, ok := s.pools[assetID]; ok {
		return nil, ErrAlreadyMigrated
	}

	product, overflow := new(uint256.Int).MulOverflow(tokenAmount, ethAmount)
	if overflow {
		return nil, ErrAmountTooLarge
	}
	liquidity := new(uint256.Int).Sqrt(product)
	if liquidity.Cmp(minimumLiquidity) <= 0 {
		return nil, ErrZeroLiquidity
	}
	locked := new(uint256.Int).Sub(liquidity, minimumLiquidity)

	s.pools[assetID] = &V2Pool{
		Address:      addr,
		TokenReserve: new(uint256.Int).Set(tokenAmount),
		EthReserve:   new(uint256.Int).Set(ethAmount),
		Liquidity:    new(uint256.Int).Set(liquidity),
	}
	s.locker.Lock(assetID, locked)

	return &Migration{
		Pool:            addr,
		TokenAmount:     new(uint256.Int).Set(tokenAmount),
		EthAmount:       new(uint256.Int).Set(ethAmount),
		Liquidity:       liquidity,
		LockedLiquidity: locked,
		TokenDust:       uint256.NewInt(0),
		EthDust:         uint256.NewInt(0),
	}, nil
}

// Pool returns the pool created for the asset, or nil before migration.
func (s *UniswapV2Strategy) Pool(assetID common.Hash) *V2Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pools[assetID]
	if !ok {
		return nil
	}
	return &V2Pool{
		Address:      p.Address,
		TokenReserve: new(uint256.Int).Set(p.TokenReserve),
		EthReserve:   new(uint256.Int).Set(p.EthReserve),
		Liquidity:    new(uint256.Int).Set(p.Liquidity),
	}
}
