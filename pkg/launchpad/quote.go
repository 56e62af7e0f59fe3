package launchpad

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// BuyQuote breaks a prospective buy into its fee-inclusive and fee-exclusive
// parts. Gross is what the buyer pays, Net what reaches the curve.
type BuyQuote struct {
	Gross  *uint256.Int
	Fee    *uint256.Int
	Net    *uint256.Int
	Tokens *uint256.Int

	WouldGraduate bool
}

// SellQuote is the symmetric breakdown for a sale: Gross leaves the curve,
// Net reaches the seller.
type SellQuote struct {
	Tokens *uint256.Int
	Gross  *uint256.Int
	Fee    *uint256.Int
	Net    *uint256.Int
}

// QuoteBuyExactIn prices a buy paying exactly ethIn.
func (e *Engine) QuoteBuyExactIn(assetID common.Hash, ethIn *uint256.Int) (*BuyQuote, error) {
	a, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Graduated {
		return nil, ErrAlreadyGraduated
	}
	if ethIn == nil || ethIn.IsZero() {
		return nil, ErrInvalidAmount
	}
	fee := feeOn(ethIn, a.cfg.BuyFeeBps)
	net := new(uint256.Int).Sub(ethIn, fee)
	if net.IsZero() {
		return nil, ErrInvalidAmount
	}
	tokens, err := a.crv.BuyExactIn(a.state.ReleasedSupply, a.state.EthCollected, net)
	if err != nil {
		return nil, fmt.Errorf("buy quote: %w", err)
	}
	next := new(uint256.Int).Add(a.state.EthCollected, net)
	return &BuyQuote{
		Gross:         new(uint256.Int).Set(ethIn),
		Fee:           fee,
		Net:           net,
		Tokens:        tokens,
		WouldGraduate: !next.Lt(a.cfg.GraduationThreshold),
	}, nil
}

// QuoteBuyExactOut prices the smallest gross payment that releases exactly
// tokensOut.
func (e *Engine) QuoteBuyExactOut(assetID common.Hash, tokensOut *uint256.Int) (*BuyQuote, error) {
	a, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Graduated {
		return nil, ErrAlreadyGraduated
	}
	if tokensOut == nil || tokensOut.IsZero() {
		return nil, ErrInvalidAmount
	}
	net, err := a.crv.BuyExactOut(a.state.ReleasedSupply, a.state.EthCollected, tokensOut)
	if err != nil {
		return nil, fmt.Errorf("buy quote: %w", err)
	}
	gross := grossForNet(net, a.cfg.BuyFeeBps)
	fee := feeOn(gross, a.cfg.BuyFeeBps)
	next := new(uint256.Int).Add(a.state.EthCollected, new(uint256.Int).Sub(gross, fee))
	return &BuyQuote{
		Gross:         gross,
		Fee:           fee,
		Net:           new(uint256.Int).Sub(gross, fee),
		Tokens:        new(uint256.Int).Set(tokensOut),
		WouldGraduate: !next.Lt(a.cfg.GraduationThreshold),
	}, nil
}

// QuoteSellExactIn prices a sale of exactly tokensIn.
func (e *Engine) QuoteSellExactIn(assetID common.Hash, tokensIn *uint256.Int) (*SellQuote, error) {
	a, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Graduated {
		return nil, ErrAlreadyGraduated
	}
	if tokensIn == nil || tokensIn.IsZero() {
		return nil, ErrInvalidAmount
	}
	gross, err := a.crv.SellExactIn(a.state.ReleasedSupply, a.state.EthCollected, tokensIn)
	if err != nil {
		return nil, fmt.Errorf("sell quote: %w", err)
	}
	fee := feeOn(gross, a.cfg.SellFeeBps)
	return &SellQuote{
		Tokens: new(uint256.Int).Set(tokensIn),
		Gross:  gross,
		Fee:    fee,
		Net:    new(uint256.Int).Sub(gross, fee),
	}, nil
}

// QuoteSellExactOut prices the tokens that must be sold for the seller to
// receive exactly ethOut after the fee.
func (e *Engine) QuoteSellExactOut(assetID common.Hash, ethOut *uint256.Int) (*SellQuote, error) {
	a, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Graduated {
		return nil, ErrAlreadyGraduated
	}
	if ethOut == nil || ethOut.IsZero() {
		return nil, ErrInvalidAmount
	}
	gross := grossForNet(ethOut, a.cfg.SellFeeBps)
	tokens, err := a.crv.SellExactOut(a.state.ReleasedSupply, a.state.EthCollected, gross)
	if err != nil {
		return nil, fmt.Errorf("sell quote: %w", err)
	}
	fee := feeOn(gross, a.cfg.SellFeeBps)
	return &SellQuote{
		Tokens: tokens,
		Gross:  gross,
		Fee:    fee,
		Net:    new(uint256.Int).Sub(gross, fee),
	}, nil
}

// MaxBuy returns the largest gross eth a single buy can carry before the
// excess-cap guard would reject it. Integrators can use it to pre-compute a
// safe upper bound instead of probing for the revert boundary.
func (e *Engine) MaxBuy(assetID common.Hash) (*BuyQuote, error) {
	a, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Graduated {
		return nil, ErrAlreadyGraduated
	}
	capLimit := new(uint256.Int).Add(a.cfg.GraduationThreshold, a.cfg.ExcessCap)
	maxNet := new(uint256.Int).Sub(capLimit, a.state.EthCollected)
	gross := maxGrossForNet(maxNet, a.cfg.BuyFeeBps)
	fee := feeOn(gross, a.cfg.BuyFeeBps)
	net := new(uint256.Int).Sub(gross, fee)
	next := new(uint256.Int).Add(a.state.EthCollected, net)
	return &BuyQuote{
		Gross:         gross,
		Fee:           fee,
		Net:           net,
		WouldGraduate: !next.Lt(a.cfg.GraduationThreshold),
	}, nil
}

// Snapshot returns the current ledger view of an asset.
func (e *Engine) Snapshot(assetID common.Hash) (*Snapshot, error) {
	a, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	snap := &Snapshot{
		Config:         a.cfg,
		EthCollected:   new(uint256.Int).Set(a.state.EthCollected),
		ReleasedSupply: new(uint256.Int).Set(a.state.ReleasedSupply),
		Graduated:      a.state.Graduated,
	}
	if !a.state.Graduated {
		vTok, vEth, err := a.crv.VirtualReserves(a.state.ReleasedSupply, a.state.EthCollected)
		if err == nil {
			snap.VirtualTokenReserve = vTok
			snap.VirtualEthReserve = vEth
		}
	}
	return snap, nil
}

// Assets lists the ids of every issued asset.
func (e *Engine) Assets() []common.Hash {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]common.Hash, 0, len(e.assets))
	for id := range e.assets {
		out = append(out, id)
	}
	return out
}

// grossForNet finds the smallest gross amount whose post-fee remainder is at
// least net. The fee rounds up, so the algebraic estimate can undershoot by
// a unit or two.
func grossForNet(net *uint256.Int, bps uint64) *uint256.Int {
	if bps == 0 {
		return new(uint256.Int).Set(net)
	}
	if bps >= MaxFeeBps {
		// A 100% fee never yields a positive net amount.
		return uint256.NewInt(0)
	}
	denom := uint256.NewInt(MaxFeeBps - bps)
	gross := new(uint256.Int).Mul(net, uint256.NewInt(MaxFeeBps))
	gross.Div(gross, denom)
	for {
		remain := new(uint256.Int).Sub(gross, feeOn(gross, bps))
		if !remain.Lt(net) {
			return gross
		}
		gross.AddUint64(gross, 1)
	}
}

// maxGrossForNet finds the largest gross amount whose post-fee remainder
// does not exceed maxNet.
func maxGrossForNet(maxNet *uint256.Int, bps uint64) *uint256.Int {
	if maxNet.IsZero() {
		return uint256.NewInt(0)
	}
	if bps == 0 {
		return new(uint256.Int).Set(maxNet)
	}
	gross := grossForNet(maxNet, bps)
	for {
		remain := new(uint256.Int).Sub(gross, feeOn(gross, bps))
		if !remain.Gt(maxNet) {
			return gross
		}
		gross.SubUint64(gross, 1)
	}
}
