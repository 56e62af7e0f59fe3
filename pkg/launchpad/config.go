package launchpad

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MaxFeeBps caps trade fees at 100%.
const MaxFeeBps = 10000

// Defaults are the global issuance settings. They are copied into each
// AssetConfig at launch time, so later admin changes never touch an already
// issued asset.
type Defaults struct {
	BuyFeeBps  uint64
	SellFeeBps uint64

	GraduationThreshold *uint256.Int
	ExcessCap           *uint256.Int
	MigrationFee        *uint256.Int
	CreatorAllocation   *uint256.Int

	CurveID    string
	StrategyID string
}

// ProductionDefaults mirrors the mainnet parameterization: 1% trade fees,
// 8.5 ETH graduation with a 0.5 ETH overshoot window, 0.5 ETH migration fee
// and a 1% creator allocation.
func ProductionDefaults() Defaults {
	return Defaults{
		BuyFeeBps:           100,
		SellFeeBps:          100,
		GraduationThreshold: uint256.MustFromDecimal("8500000000000000000"),
		ExcessCap:           uint256.MustFromDecimal("500000000000000000"),
		MigrationFee:        uint256.MustFromDecimal("500000000000000000"),
		CreatorAllocation:   uint256.MustFromDecimal("10000000000000000000000000"),
		CurveID:             "cp-grad8.5",
		StrategyID:          "univ2",
	}
}

func (d Defaults) validate() error {
	if d.BuyFeeBps > MaxFeeBps || d.SellFeeBps > MaxFeeBps {
		return ErrFeeOutOfRange
	}
	if d.GraduationThreshold == nil || d.GraduationThreshold.IsZero() {
		return ErrZeroThreshold
	}
	if d.ExcessCap == nil || d.MigrationFee == nil || d.CreatorAllocation == nil {
		return ErrInvalidConfig
	}
	if !d.MigrationFee.Lt(d.GraduationThreshold) {
		return ErrInvalidConfig
	}
	if d.CurveID == "" || d.StrategyID == "" {
		return ErrInvalidConfig
	}
	return nil
}

// AssetConfig is immutable once the asset is launched.
type AssetConfig struct {
	AssetID common.Hash
	Name    string
	Symbol  string
	Creator common.Address

	CurveID    string
	StrategyID string

	BuyFeeBps  uint64
	SellFeeBps uint64

	GraduationThreshold *uint256.Int
	ExcessCap           *uint256.Int
	MigrationFee        *uint256.Int
	CreatorAllocation   *uint256.Int

	TotalSupply *uint256.Int

	// Custody holds the unsold supply while trading is on the curve.
	Custody common.Address
	// Venue is the pool address reserved by the strategy at issuance.
	Venue common.Address

	CreatedAt time.Time
}

// AssetState is the mutable per-asset ledger.
type AssetState struct {
	EthCollected   *uint256.Int
	ReleasedSupply *uint256.Int
	Graduated      bool
}

// Snapshot is the read-only view of an asset returned to integrators.
type Snapshot struct {
	Config AssetConfig

	EthCollected   *uint256.Int
	ReleasedSupply *uint256.Int
	Graduated      bool

	// Virtual reserves backing the current curve spot price. Nil once
	// graduated: price discovery has moved to the venue.
	VirtualTokenReserve *uint256.Int
	VirtualEthReserve   *uint256.Int
}
