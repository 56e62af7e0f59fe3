package venue

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrAlreadyPrepared = errors.New("venue: slot already prepared for asset")
	ErrNotPrepared     = errors.New("venue: asset has no prepared slot")
	ErrAlreadyMigrated = errors.New("venue: asset already migrated")
	ErrZeroLiquidity   = errors.New("venue: amounts too small to mint liquidity")
	ErrAmountTooLarge  = errors.New("venue: amount outside supported range")
)

// Migration reports the permanent liquidity position created at graduation.
type Migration struct {
	Pool        common.Address
	TokenAmount *uint256.Int
	EthAmount   *uint256.Int
	// Liquidity minted for the deposit, in the venue's own units.
	Liquidity *uint256.Int
	// LockedLiquidity is the share custodied forever by the locker.
	LockedLiquidity *uint256.Int
	// TokenDust / EthDust are the integer-rounding leftovers the venue could
	// not absorb. Bounded by tests to a tiny fraction of supply.
	TokenDust *uint256.Int
	EthDust   *uint256.Int
}

// Strategy bootstraps the permanent trading venue for a graduated asset.
// Prepare is called once at issuance to reserve the venue address before any
// trading occurs; Migrate exactly once during graduation. Migrate must fail
// cleanly (no partial state) so the orchestrator can reject the whole
// graduating trade.
type Strategy interface {
	Prepare(assetID common.Hash) (common.Address, error)
	Migrate(assetID common.Hash, tokenAmount, ethAmount *uint256.Int) (*Migration, error)
}
