package venue

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// q96 is the fixed-point scale for sqrt prices.
var q96 = new(uint256.Int).Lsh(uint256.NewInt(1), 96)

// V4Position is a single concentrated-liquidity position minted at
// graduation. The range is effectively full-range, so the position behaves
// like a constant-product pool seeded at the graduation price.
type V4Position struct {
	Address      common.Address
	SqrtPriceX96 *uint256.Int
	Liquidity    *uint256.Int
	TokenUsed    *uint256.Int
	EthUsed      *uint256.Int
}

// UniswapV4Strategy mints one permanent position per graduated asset at the
// sqrt price implied by the deposited amounts.
type UniswapV4Strategy struct {
	mu        sync.Mutex
	locker    *Locker
	prepared  map[common.Hash]common.Address
	positions map[common.Hash]*V4Position
}

func NewUniswapV4Strategy(locker *Locker) *UniswapV4Strategy {
	return &UniswapV4Strategy{
		locker:    locker,
		prepared:  make(map[common.Hash]common.Address),
		positions: make(map[common.Hash]*V4Position),
	}
}

func (s *UniswapV4Strategy) Prepare(assetID common.Hash) (common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prepared[assetID]; ok {
		return common.Address{}, ErrAlreadyPrepared
	}
	addr := common.BytesToAddress(crypto.Keccak256([]byte("univ4-pool"), assetID.Bytes())[12:])
	s.prepared[assetID] = addr
	return addr, nil
}

// Migrate prices the deposit at sqrtPriceX96 = sqrt(eth/token) in X96 fixed
// point, mints liquidity = min(liquidity from token side, liquidity from eth
// side) and reports the unconsumed remainders as dust.
func (s *UniswapV4Strategy) Migrate(assetID common.Hash, tokenAmount, ethAmount *uint256.Int) (*Migration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr, ok := s.prepared[assetID]
	if !ok {
		return nil, ErrNotPrepared
	}
	if _, ok := s.positions[assetID]; ok {
		return nil, ErrAlreadyMigrated
	}
	if tokenAmount.IsZero() || ethAmount.IsZero() {
		return nil, ErrZeroLiquidity
	}
	// eth << 192 must stay inside 256 bits.
	if ethAmount.BitLen() > 64 {
		return nil, ErrAmountTooLarge
	}

	ratio := new(uint256.Int).Lsh(ethAmount, 192)
	ratio.Div(ratio, tokenAmount)
	sqrtPrice := new(uint256.Int).Sqrt(ratio)
	if sqrtPrice.IsZero() {
		return nil, ErrZeroLiquidity
	}

	// liquidity = amount0 * sqrtP / Q96 for the token side,
	// liquidity = amount1 * Q96 / sqrtP for the eth side.
	liqToken := new(uint256.Int).Mul(tokenAmount, sqrtPrice)
	liqToken.Rsh(liqToken, 96)
	liqEth := new(uint256.Int).Lsh(ethAmount, 96)
	liqEth.Div(liqEth, sqrtPrice)

	liquidity := liqToken
	if liqEth.Lt(liqToken) {
		liquidity = liqEth
	}
	if liquidity.IsZero() {
		return nil, ErrZeroLiquidity
	}

	tokenUsed := new(uint256.Int).Lsh(liquidity, 96)
	tokenUsed.Div(tokenUsed, sqrtPrice)
	ethUsed := new(uint256.Int).Mul(liquidity, sqrtPrice)
	ethUsed.Rsh(ethUsed, 96)

	s.positions[assetID] = &V4Position{
		Address:      addr,
		SqrtPriceX96: sqrtPrice,
		Liquidity:    new(uint256.Int).Set(liquidity),
		TokenUsed:    new(uint256.Int).Set(tokenUsed),
		EthUsed:      new(uint256.Int).Set(ethUsed),
	}
	s.locker.Lock(assetID, liquidity)

	return &Migration{
		Pool:            addr,
		TokenAmount:     new(uint256.Int).Set(tokenAmount),
		EthAmount:       new(uint256.Int).Set(ethAmount),
		Liquidity:       new(uint256.Int).Set(liquidity),
		LockedLiquidity: new(uint256.Int).Set(liquidity),
		TokenDust:       new(uint256.Int).Sub(tokenAmount, tokenUsed),
		EthDust:         new(uint256.Int).Sub(ethAmount, ethUsed),
	}, nil
}

// Position returns the position minted for the asset, or nil before migration.
func (s *UniswapV4Strategy) Position(assetID common.Hash) *V4Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[assetID]
	if !ok {
		return nil
	}
	return &V4Position{
		Address:      p.Address,
		SqrtPriceX96: new(uint256.Int).Set(p.SqrtPriceX96),
		Liquidity:    new(uint256.Int).Set(p.Liquidity),
		TokenUsed:    new(uint256.Int).Set(p.TokenUsed),
		EthUsed:      new(uint256.Int).Set(p.EthUsed),
	}
}
