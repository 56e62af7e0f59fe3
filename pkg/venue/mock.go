package venue

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// MockStrategy records calls and supports failure injection in tests.
type MockStrategy struct {
	mu sync.Mutex

	PrepareErr error
	MigrateErr error

	PrepareCalls int
	MigrateCalls int

	LastTokenAmount *uint256.Int
	LastEthAmount   *uint256.Int

	migrated map[common.Hash]bool
}

func NewMockStrategy() *MockStrategy {
	return &MockStrategy{migrated: make(map[common.Hash]bool)}
}

func (m *MockStrategy) Prepare(assetID common.Hash) (common.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PrepareCalls++
	if m.PrepareErr != nil {
		return common.Address{}, m.PrepareErr
	}
	return common.BytesToAddress(crypto.Keccak256([]byte("mock-pool"), assetID.Bytes())[12:]), nil
}

func (m *MockStrategy) Migrate(assetID common.Hash, tokenAmount, ethAmount *uint256.Int) (*Migration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MigrateCalls++
	if m.MigrateErr != nil {
		return nil, m.MigrateErr
	}
	if m.migrated[assetID] {
		return nil, ErrAlreadyMigrated
	}
	m.migrated[assetID] = true
	m.LastTokenAmount = new(uint256.Int).Set(tokenAmount)
	m.LastEthAmount = new(uint256.Int).Set(ethAmount)
	return &Migration{
		Pool:            common.BytesToAddress(crypto.Keccak256([]byte("mock-pool"), assetID.Bytes())[12:]),
		TokenAmount:     new(uint256.Int).Set(tokenAmount),
		EthAmount:       new(uint256.Int).Set(ethAmount),
		Liquidity:       new(uint256.Int).Sqrt(new(uint256.Int).Mul(tokenAmount, ethAmount)),
		LockedLiquidity: uint256.NewInt(0),
		TokenDust:       uint256.NewInt(0),
		EthDust:         uint256.NewInt(0),
	}, nil
}
