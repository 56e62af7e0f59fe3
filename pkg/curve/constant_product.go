package curve

import (
	"github.com/holiman/uint256"
)

// ConstantProduct is a constant-product curve over virtual reserves.
// Remaining token reserves follow r(e) = K/(e+E0) - T0 with K = (S+T0)*E0,
// so r(0) == S exactly and the eth the curve can ever absorb is hard-capped
// at K/T0 - E0. The offsets are tuned so the graduation threshold sits far
// below that ceiling.
type ConstantProduct struct {
	supply *uint256.Int // S, total tokens allocated to the curve
	e0     *uint256.Int // virtual eth offset
	t0     *uint256.Int // virtual token offset
}

// NewConstantProduct builds a curve from its virtual-reserve constants.
func NewConstantProduct(supply, e0, t0 *uint256.Int) (*ConstantProduct, error) {
	if supply == nil || e0 == nil || t0 == nil || supply.IsZero() || e0.IsZero() || t0.IsZero() {
		return nil, ErrOutOfDomain
	}
	return &ConstantProduct{
		supply: new(uint256.Int).Set(supply),
		e0:     new(uint256.Int).Set(e0),
		t0:     new(uint256.Int).Set(t0),
	}, nil
}

// GraduateAt8ETH returns the curve tuned so that a net 8 ETH raise releases
// exactly 800M of the 1B supply, leaving 200M for the migration venue.
// Ceiling: 37.5 ETH.
func GraduateAt8ETH() *ConstantProduct {
	c, _ := NewConstantProduct(
		uint256.MustFromDecimal("1000000000000000000000000000"),
		uint256.MustFromDecimal("2727272727272727272"),
		uint256.MustFromDecimal("72727272727272727200000000"),
	)
	return c
}

// GraduateAt8Point5ETH returns the default production tuning: ~200M tokens
// remaining at an 8.5 ETH raise, ceiling ~36.4 ETH.
func GraduateAt8Point5ETH() *ConstantProduct {
	c, _ := NewConstantProduct(
		uint256.MustFromDecimal("1000000000000000000000000000"),
		uint256.MustFromDecimal("3000000000000000000"),
		uint256.MustFromDecimal("82352941176470588235294117"),
	)
	return c
}

func (c *ConstantProduct) Supply() *uint256.Int {
	return new(uint256.Int).Set(c.supply)
}

// VirtualReserves returns vToken = (S - sold) + T0 and vEth = collected + E0.
func (c *ConstantProduct) VirtualReserves(soldAmount, collectedAmount *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if soldAmount.Gt(c.supply) {
		return nil, nil, ErrOutOfDomain
	}
	vToken := new(uint256.Int).Sub(c.supply, soldAmount)
	vToken.Add(vToken, c.t0)
	vEth := new(uint256.Int).Add(collectedAmount, c.e0)
	return vToken, vEth, nil
}

func (c *ConstantProduct) BuyExactIn(soldAmount, collectedAmount, ethIn *uint256.Int) (*uint256.Int, error) {
	if ethIn == nil || ethIn.IsZero() {
		return nil, ErrZeroAmount
	}
	vToken, vEth, err := c.VirtualReserves(soldAmount, collectedAmount)
	if err != nil {
		return nil, err
	}
	k, overflow := new(uint256.Int).MulOverflow(vToken, vEth)
	if overflow {
		return nil, ErrOutOfDomain
	}
	vEthNew := new(uint256.Int).Add(vEth, ethIn)
	// New token reserves round up, so the released amount rounds down.
	vTokenNew := ceilDiv(k, vEthNew)
	if vTokenNew.Lt(c.t0) {
		// Past the curve ceiling: real reserves would go negative.
		return nil, ErrOutOfDomain
	}
	if vTokenNew.Gt(vToken) {
		return uint256.NewInt(0), nil
	}
	return new(uint256.Int).Sub(vToken, vTokenNew), nil
}

func (c *ConstantProduct) BuyExactOut(soldAmount, collectedAmount, tokensOut *uint256.Int) (*uint256.Int, error) {
	if tokensOut == nil || tokensOut.IsZero() {
		return nil, ErrZeroAmount
	}
	remaining := new(uint256.Int).Sub(c.supply, soldAmount)
	if soldAmount.Gt(c.supply) || tokensOut.Gt(remaining) {
		return nil, ErrOutOfDomain
	}
	vToken, vEth, err := c.VirtualReserves(soldAmount, collectedAmount)
	if err != nil {
		return nil, err
	}
	k, overflow := new(uint256.Int).MulOverflow(vToken, vEth)
	if overflow {
		return nil, ErrOutOfDomain
	}
	vTokenNew := new(uint256.Int).Sub(vToken, tokensOut)
	// Required input rounds up.
	vEthNew := ceilDiv(k, vTokenNew)
	if vEthNew.Lt(vEth) {
		return uint256.NewInt(0), nil
	}
	return new(uint256.Int).Sub(vEthNew, vEth), nil
}

func (c *ConstantProduct) SellExactIn(soldAmount, collectedAmount, tokensIn *uint256.Int) (*uint256.Int, error) {
	if tokensIn == nil || tokensIn.IsZero() {
		return nil, ErrZeroAmount
	}
	if tokensIn.Gt(soldAmount) {
		// Cannot return more than the curve has released.
		return nil, ErrOutOfDomain
	}
	vToken, vEth, err := c.VirtualReserves(soldAmount, collectedAmount)
	if err != nil {
		return nil, err
	}
	k, overflow := new(uint256.Int).MulOverflow(vToken, vEth)
	if overflow {
		return nil, ErrOutOfDomain
	}
	vTokenNew := new(uint256.Int).Add(vToken, tokensIn)
	// New eth reserves round up, so the payout rounds down.
	vEthNew := ceilDiv(k, vTokenNew)
	if vEthNew.Gt(vEth) {
		return uint256.NewInt(0), nil
	}
	return new(uint256.Int).Sub(vEth, vEthNew), nil
}

func (c *ConstantProduct) SellExactOut(soldAmount, collectedAmount, ethOut *uint256.Int) (*uint256.Int, error) {
	if ethOut == nil || ethOut.IsZero() {
		return nil, ErrZeroAmount
	}
	if ethOut.Gt(collectedAmount) {
		return nil, ErrOutOfDomain
	}
	vToken, vEth, err := c.VirtualReserves(soldAmount, collectedAmount)
	if err != nil {
		return nil, err
	}
	k, overflow := new(uint256.Int).MulOverflow(vToken, vEth)
	if overflow {
		return nil, ErrOutOfDomain
	}
	vEthNew := new(uint256.Int).Sub(vEth, ethOut)
	if vEthNew.IsZero() {
		return nil, ErrOutOfDomain
	}
	// Required token input rounds up.
	vTokenNew := ceilDiv(k, vEthNew)
	tokensIn := new(uint256.Int).Sub(vTokenNew, vToken)
	if vTokenNew.Lt(vToken) {
		return uint256.NewInt(0), nil
	}
	maxTokens := new(uint256.Int).Add(c.t0, c.supply)
	if vTokenNew.Gt(maxTokens) {
		return nil, ErrOutOfDomain
	}
	return tokensIn, nil
}

func ceilDiv(a, b *uint256.Int) *uint256.Int {
	q := new(uint256.Int)
	r := new(uint256.Int)
	q.DivMod(a, b, r)
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q
}
