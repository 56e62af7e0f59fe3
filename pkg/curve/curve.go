package curve

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	// ErrZeroAmount is returned when a quote is requested for a zero trade size.
	ErrZeroAmount = errors.New("curve: zero trade amount")
	// ErrOutOfDomain is returned when a query would push the curve outside its
	// valid reserve range instead of silently producing a malformed result.
	ErrOutOfDomain = errors.New("curve: query outside valid reserve domain")
)

// Curve prices trades against a bonding curve. All amounts are wei-scale
// integers. soldAmount is the circulating supply already released by the
// curve, collectedAmount the eth it has absorbed. Implementations must be
// pure, deterministic, monotonic in the trade-size argument, and round
// against the trader.
type Curve interface {
	// BuyExactIn returns the tokens released for ethIn paid into the curve.
	BuyExactIn(soldAmount, collectedAmount, ethIn *uint256.Int) (*uint256.Int, error)
	// BuyExactOut returns the eth required to release exactly tokensOut.
	BuyExactOut(soldAmount, collectedAmount, tokensOut *uint256.Int) (*uint256.Int, error)
	// SellExactIn returns the eth paid out for tokensIn returned to the curve.
	SellExactIn(soldAmount, collectedAmount, tokensIn *uint256.Int) (*uint256.Int, error)
	// SellExactOut returns the tokens that must be returned to withdraw exactly ethOut.
	SellExactOut(soldAmount, collectedAmount, ethOut *uint256.Int) (*uint256.Int, error)

	// Supply is the total token amount the curve can ever release.
	Supply() *uint256.Int
	// VirtualReserves exposes the virtual token/eth reserves backing the
	// current spot price (price = vEth/vToken).
	VirtualReserves(soldAmount, collectedAmount *uint256.Int) (vToken, vEth *uint256.Int, err error)
}
