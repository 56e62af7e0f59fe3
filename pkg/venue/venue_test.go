package venue

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eth(dec string) *uint256.Int {
	return uint256.MustFromDecimal(dec)
}

var (
	assetA = common.HexToHash("0x01")
	assetB = common.HexToHash("0x02")
)

func TestUniswapV2Migrate(t *testing.T) {
	locker := NewLocker()
	strat := NewUniswapV2Strategy(locker)

	addr, err := strat.Prepare(assetA)
	require.NoError(t, err)
	require.NotEqual(t, common.Address{}, addr)

	t.Run("prepare is single shot", func(t *testing.T) {
		_, err := strat.Prepare(assetA)
		assert.ErrorIs(t, err, ErrAlreadyPrepared)
	})

	t.Run("migrate without prepare rejected", func(t *testing.T) {
		_, err := strat.Migrate(assetB, eth("100"), eth("100"))
		assert.ErrorIs(t, err, ErrNotPrepared)
	})

	tokens := eth("200000000000000000000000000") // 200M tokens
	ethIn := eth("8000000000000000000")          // 8 eth

	mig, err := strat.Migrate(assetA, tokens, ethIn)
	require.NoError(t, err)
	assert.Equal(t, addr, mig.Pool)

	t.Run("lp math and permanent lock", func(t *testing.T) {
		product := new(uint256.Int).Mul(tokens, ethIn)
		wantLiq := new(uint256.Int).Sqrt(product)
		assert.Equal(t, wantLiq, mig.Liquidity)

		wantLocked := new(uint256.Int).Sub(wantLiq, minimumLiquidity)
		assert.Equal(t, wantLocked, mig.LockedLiquidity)
		assert.Equal(t, wantLocked, locker.Locked(assetA))
	})

	t.Run("no dust in constant product deposit", func(t *testing.T) {
		assert.True(t, mig.TokenDust.IsZero())
		assert.True(t, mig.EthDust.IsZero())
	})

	t.Run("pool snapshot", func(t *testing.T) {
		p := strat.Pool(assetA)
		require.NotNil(t, p)
		assert.Equal(t, tokens, p.TokenReserve)
		assert.Equal(t, ethIn, p.EthReserve)
	})

	t.Run("second migrate rejected", func(t *testing.T) {
		_, err := strat.Migrate(assetA, tokens, ethIn)
		assert.ErrorIs(t, err, ErrAlreadyMigrated)
		assert.Equal(t, tokens, strat.Pool(assetA).TokenReserve)
	})

	t.Run("dust deposits rejected", func(t *testing.T) {
		_, err := strat.Prepare(assetB)
		require.NoError(t, err)
		_, err = strat.Migrate(assetB, uint256.NewInt(10), uint256.NewInt(10))
		assert.ErrorIs(t, err, ErrZeroLiquidity)
	})
}

func TestUniswapV4Migrate(t *testing.T) {
	locker := NewLocker()
	strat := NewUniswapV4Strategy(locker)

	_, err := strat.Prepare(assetA)
	require.NoError(t, err)

	tokens := eth("200000000000000000000000000")
	ethIn := eth("8000000000000000000")

	mig, err := strat.Migrate(assetA, tokens, ethIn)
	require.NoError(t, err)

	pos := strat.Position(assetA)
	require.NotNil(t, pos)

	t.Run("price squares back to the deposit ratio", func(t *testing.T) {
		// (sqrtP/Q96)^2 ~= eth/token, checked via sqrtP^2 * token ~ eth << 192.
		sq := new(uint256.Int).Mul(pos.SqrtPriceX96, pos.SqrtPriceX96)
		lhs := new(uint256.Int).Mul(sq, tokens)
		rhs := new(uint256.Int).Lsh(ethIn, 192)
		assert.True(t, lhs.Cmp(rhs) <= 0)
	})

	t.Run("dust within a millionth of supply", func(t *testing.T) {
		supply := eth("1000000000000000000000000000") // 1B token issue the deposit came from
		tokenBound := new(uint256.Int).Div(supply, uint256.NewInt(1000000))
		assert.True(t, mig.TokenDust.Cmp(tokenBound) <= 0, "token dust %s exceeds %s", mig.TokenDust.Dec(), tokenBound.Dec())
		ethBound := new(uint256.Int).Div(ethIn, uint256.NewInt(1000000))
		assert.True(t, mig.EthDust.Cmp(ethBound) <= 0, "eth dust %s exceeds %s", mig.EthDust.Dec(), ethBound.Dec())

		used := new(uint256.Int).Add(pos.TokenUsed, mig.TokenDust)
		assert.Equal(t, tokens, used)
		used = new(uint256.Int).Add(pos.EthUsed, mig.EthDust)
		assert.Equal(t, ethIn, used)
	})

	t.Run("whole position is locked", func(t *testing.T) {
		assert.Equal(t, mig.Liquidity, mig.LockedLiquidity)
		assert.Equal(t, mig.Liquidity, locker.Locked(assetA))
	})

	t.Run("second migrate rejected", func(t *testing.T) {
		_, err := strat.Migrate(assetA, tokens, ethIn)
		assert.ErrorIs(t, err, ErrAlreadyMigrated)
	})

	t.Run("oversized eth deposit rejected", func(t *testing.T) {
		_, err := strat.Prepare(assetB)
		require.NoError(t, err)
		huge := new(uint256.Int).Lsh(uint256.NewInt(1), 65)
		_, err = strat.Migrate(assetB, tokens, huge)
		assert.ErrorIs(t, err, ErrAmountTooLarge)
	})

	t.Run("zero side rejected", func(t *testing.T) {
		_, err := strat.Migrate(assetB, uint256.NewInt(0), ethIn)
		assert.ErrorIs(t, err, ErrZeroLiquidity)
	})
}

func TestLocker(t *testing.T) {
	l := NewLocker()
	assert.True(t, l.Locked(assetA).IsZero())

	l.Lock(assetA, uint256.NewInt(500))
	l.Lock(assetA, uint256.NewInt(250))
	assert.Equal(t, uint256.NewInt(750), l.Locked(assetA))
	assert.True(t, l.Locked(assetB).IsZero())
}
