package launchpad

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	logger "github.com/sirupsen/logrus"

	"launchcontrol/pkg/curve"
	"launchcontrol/pkg/token"
	"launchcontrol/pkg/venue"
)

// Engine is the trading orchestrator. Every buy/sell/graduation runs under a
// single per-asset mutex, so each operation either commits fully or leaves
// state untouched; there is no partial visibility between callers.
type Engine struct {
	registry *Registry
	defaults Defaults
	treasury *Treasury
	log      *Log
	logger   *logger.Entry

	// identity used as the token-ledger authority.
	self common.Address

	mu     sync.RWMutex
	assets map[common.Hash]*asset
	nonce  uint64

	evMu    sync.Mutex
	nextSeq uint64
	sinks   []EventSink

	now func() time.Time
}

type asset struct {
	mu    sync.Mutex
	cfg   AssetConfig
	state AssetState
	tok   *token.Token
	crv   curve.Curve
	strat venue.Strategy
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithClock replaces the deadline clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine validates the issuance defaults and wires the orchestrator.
func NewEngine(reg *Registry, defaults Defaults, log *logger.Entry, opts ...Option) (*Engine, error) {
	if reg == nil {
		return nil, ErrInvalidConfig
	}
	if err := defaults.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewEntry(logger.StandardLogger())
	}
	e := &Engine{
		registry: reg,
		defaults: defaults,
		treasury: NewTreasury(),
		log:      NewLog(),
		logger:   log,
		self:     common.BytesToAddress(crypto.Keccak256([]byte("launchcontrol-engine"))[12:]),
		assets:   make(map[common.Hash]*asset),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EventLog exposes the ordered in-memory event store.
func (e *Engine) EventLog() *Log { return e.log }

// AddSink registers an additional event consumer. Call before trading starts.
func (e *Engine) AddSink(s EventSink) {
	e.evMu.Lock()
	defer e.evMu.Unlock()
	e.sinks = append(e.sinks, s)
}

// Defaults returns a copy of the issuance defaults in force.
func (e *Engine) Defaults() Defaults { return e.defaults }

// LaunchParams describe a new asset. Curve/strategy ids default to the
// engine-wide defaults when empty; everything else is copied from them.
type LaunchParams struct {
	Name    string
	Symbol  string
	Creator common.Address

	CurveID    string
	StrategyID string
}

// Launch issues a new asset: snapshots the defaults into an immutable
// config, mints the fixed supply into curve custody and reserves the venue
// slot with the migration strategy.
func (e *Engine) Launch(p LaunchParams) (*AssetConfig, error) {
	if p.Name == "" || p.Symbol == "" || p.Creator == (common.Address{}) {
		return nil, ErrInvalidConfig
	}
	curveID := p.CurveID
	if curveID == "" {
		curveID = e.defaults.CurveID
	}
	strategyID := p.StrategyID
	if strategyID == "" {
		strategyID = e.defaults.StrategyID
	}
	crv, ok := e.registry.Curve(curveID)
	if !ok {
		return nil, ErrUnknownCurve
	}
	strat, ok := e.registry.Strategy(strategyID)
	if !ok {
		return nil, ErrUnknownStrategy
	}
	if !e.registry.PairAllowed(curveID, strategyID) {
		return nil, ErrPairNotAllowed
	}

	// The worst-case buy lands at threshold+excessCap; the curve must still
	// hold enough unsold supply there to fund the creator allocation.
	capAmount := new(uint256.Int).Add(e.defaults.GraduationThreshold, e.defaults.ExcessCap)
	soldAtCap, err := crv.BuyExactIn(uint256.NewInt(0), uint256.NewInt(0), capAmount)
	if err != nil {
		return nil, fmt.Errorf("curve rejects graduation window: %w", err)
	}
	remainingAtCap := new(uint256.Int).Sub(crv.Supply(), soldAtCap)
	if remainingAtCap.Lt(e.defaults.CreatorAllocation) {
		return nil, ErrInvalidConfig
	}

	e.mu.Lock()
	e.nonce++
	nonce := e.nonce
	e.mu.Unlock()

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	assetID := common.BytesToHash(crypto.Keccak256(p.Creator.Bytes(), []byte(p.Symbol), nonceBytes[:]))
	custody := common.BytesToAddress(crypto.Keccak256([]byte("curve-custody"), assetID.Bytes())[12:])

	tok := token.New(p.Name, p.Symbol, e.self)
	if err := tok.Mint(e.self, custody, crv.Supply()); err != nil {
		return nil, fmt.Errorf("mint supply: %w", err)
	}
	venueAddr, err := strat.Prepare(assetID)
	if err != nil {
		return nil, fmt.Errorf("prepare venue: %w", err)
	}
	if err := tok.SetPoolGuard(e.self, venueAddr); err != nil {
		return nil, fmt.Errorf("guard venue: %w", err)
	}

	cfg := AssetConfig{
		AssetID:             assetID,
		Name:                p.Name,
		Symbol:              p.Symbol,
		Creator:             p.Creator,
		CurveID:             curveID,
		StrategyID:          strategyID,
		BuyFeeBps:           e.defaults.BuyFeeBps,
		SellFeeBps:          e.defaults.SellFeeBps,
		GraduationThreshold: new(uint256.Int).Set(e.defaults.GraduationThreshold),
		ExcessCap:           new(uint256.Int).Set(e.defaults.ExcessCap),
		MigrationFee:        new(uint256.Int).Set(e.defaults.MigrationFee),
		CreatorAllocation:   new(uint256.Int).Set(e.defaults.CreatorAllocation),
		TotalSupply:         crv.Supply(),
		Custody:             custody,
		Venue:               venueAddr,
		CreatedAt:           e.now(),
	}

	a := &asset{
		cfg: cfg,
		state: AssetState{
			EthCollected:   uint256.NewInt(0),
			ReleasedSupply: uint256.NewInt(0),
		},
		tok:   tok,
		crv:   crv,
		strat: strat,
	}

	e.mu.Lock()
	e.assets[assetID] = a
	e.mu.Unlock()

	e.emit(Event{
		Type:    EventIssuance,
		AssetID: assetID.Hex(),
		Issuance: &IssuanceDetail{
			Name:        cfg.Name,
			Symbol:      cfg.Symbol,
			Creator:     cfg.Creator.Hex(),
			CurveID:     cfg.CurveID,
			StrategyID:  cfg.StrategyID,
			Venue:       cfg.Venue.Hex(),
			TotalSupply: cfg.TotalSupply.Dec(),
			Threshold:   cfg.GraduationThreshold.Dec(),
		},
	})
	e.logger.WithFields(logger.Fields{
		"asset":    assetID.Hex(),
		"symbol":   cfg.Symbol,
		"curve":    curveID,
		"strategy": strategyID,
	}).Info("asset launched")

	cfgCopy := cfg
	return &cfgCopy, nil
}

// Token returns the token ledger collaborator for an asset.
func (e *Engine) Token(assetID common.Hash) (*token.Token, error) {
	a, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	return a.tok, nil
}

// BuyParams is an exact-input buy with slippage and staleness bounds.
// A zero Deadline means no staleness check.
type BuyParams struct {
	AssetID      common.Hash
	Buyer        common.Address
	EthIn        *uint256.Int
	MinTokensOut *uint256.Int
	Deadline     time.Time
}

// SellParams is the symmetric exact-input sell.
type SellParams struct {
	AssetID   common.Hash
	Seller    common.Address
	TokensIn  *uint256.Int
	MinEthOut *uint256.Int
	Deadline  time.Time
}

// TradeReceipt is returned for every committed trade. For buys, Gross is the
// eth paid in, Net the portion credited to the curve; for sells, Gross is
// the curve payout and Net what the seller receives after the fee. The
// conservation law callerΔ + treasuryΔ + reserveΔ == 0 holds exactly:
// Gross == Fee + Net in both directions.
type TradeReceipt struct {
	Ref     string
	AssetID common.Hash
	Side    string
	Trader  common.Address

	Gross  *uint256.Int
	Fee    *uint256.Int
	Net    *uint256.Int
	Tokens *uint256.Int

	Graduated bool
	Migration *venue.Migration
	Seq       uint64
}

// Buy executes an exact-input purchase against the curve and, if the net
// amount crosses the graduation threshold, migrates the asset to its venue
// atomically within the same call.
func (e *Engine) Buy(p BuyParams) (*TradeReceipt, error) {
	a, err := e.asset(p.AssetID)
	if err != nil {
		return nil, err
	}
	if p.Buyer == (common.Address{}) {
		return nil, ErrInvalidConfig
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Graduated {
		return nil, ErrAlreadyGraduated
	}
	if p.EthIn == nil || p.EthIn.IsZero() {
		return nil, ErrInvalidAmount
	}
	if !p.Deadline.IsZero() && e.now().After(p.Deadline) {
		return nil, ErrDeadlineExceeded
	}

	fee := feeOn(p.EthIn, a.cfg.BuyFeeBps)
	net := new(uint256.Int).Sub(p.EthIn, fee)
	if net.IsZero() {
		return nil, ErrInvalidAmount
	}

	next := new(uint256.Int).Add(a.state.EthCollected, net)
	capLimit := new(uint256.Int).Add(a.cfg.GraduationThreshold, a.cfg.ExcessCap)
	if next.Gt(capLimit) {
		return nil, ErrExcessCapExceeded
	}

	tokensOut, err := a.crv.BuyExactIn(a.state.ReleasedSupply, a.state.EthCollected, net)
	if err != nil {
		return nil, fmt.Errorf("buy quote: %w", err)
	}
	if tokensOut.IsZero() {
		return nil, ErrInvalidAmount
	}
	if p.MinTokensOut != nil && tokensOut.Lt(p.MinTokensOut) {
		return nil, ErrSlippageExceeded
	}

	receipt := &TradeReceipt{
		Ref:     uuid.NewString(),
		AssetID: p.AssetID,
		Side:    "buy",
		Trader:  p.Buyer,
		Gross:   new(uint256.Int).Set(p.EthIn),
		Fee:     fee,
		Net:     net,
		Tokens:  tokensOut,
	}

	if next.Lt(a.cfg.GraduationThreshold) {
		// Plain buy: credit reserves and release tokens.
		if err := a.tok.Transfer(a.cfg.Custody, p.Buyer, tokensOut); err != nil {
			return nil, fmt.Errorf("release tokens: %w", err)
		}
		a.state.EthCollected.Set(next)
		a.state.ReleasedSupply.Add(a.state.ReleasedSupply, tokensOut)
		e.treasury.Credit(fee)
		receipt.Seq = e.emitTrade(a, receipt)
		return receipt, nil
	}

	// Threshold crossed (inclusive up to threshold+excessCap): graduate as
	// part of this same operation.
	mig, err := e.graduate(a, receipt, next, tokensOut)
	if err != nil {
		return nil, err
	}
	receipt.Graduated = true
	receipt.Migration = mig
	return receipt, nil
}

// graduate runs the single-shot Trading→Graduated transition. The strategy
// call is the only fallible step and happens before any mutation, so a venue
// failure rejects the whole triggering buy with state byte-identical to
// before.
func (e *Engine) graduate(a *asset, receipt *TradeReceipt, collectedAfter, tokensOut *uint256.Int) (*venue.Migration, error) {
	releasedAfter := new(uint256.Int).Add(a.state.ReleasedSupply, tokensOut)
	remaining := new(uint256.Int).Sub(a.cfg.TotalSupply, releasedAfter)
	if remaining.Lt(a.cfg.CreatorAllocation) {
		return nil, ErrInvalidConfig
	}
	tokensToVenue := new(uint256.Int).Sub(remaining, a.cfg.CreatorAllocation)
	if collectedAfter.Lt(a.cfg.MigrationFee) {
		return nil, ErrInvalidConfig
	}
	ethToVenue := new(uint256.Int).Sub(collectedAfter, a.cfg.MigrationFee)

	mig, err := a.strat.Migrate(a.cfg.AssetID, tokensToVenue, ethToVenue)
	if err != nil {
		return nil, fmt.Errorf("venue migration: %w", err)
	}

	// Commit. None of the steps below can fail: balances were validated
	// above and the custody account holds exactly tokensOut + creator
	// allocation + venue share.
	if err := a.tok.MarkGraduated(e.self); err != nil {
		return nil, fmt.Errorf("mark graduated: %w", err)
	}
	if err := a.tok.Transfer(a.cfg.Custody, receipt.Trader, tokensOut); err != nil {
		return nil, fmt.Errorf("release tokens: %w", err)
	}
	if !a.cfg.CreatorAllocation.IsZero() {
		if err := a.tok.Transfer(a.cfg.Custody, a.cfg.Creator, a.cfg.CreatorAllocation); err != nil {
			return nil, fmt.Errorf("creator allocation: %w", err)
		}
	}
	if !tokensToVenue.IsZero() {
		if err := a.tok.Transfer(a.cfg.Custody, mig.Pool, tokensToVenue); err != nil {
			return nil, fmt.Errorf("fund venue: %w", err)
		}
	}
	e.treasury.Credit(receipt.Fee)
	e.treasury.Credit(a.cfg.MigrationFee)

	a.state.ReleasedSupply = releasedAfter
	a.state.EthCollected = uint256.NewInt(0)
	a.state.Graduated = true

	receipt.Seq = e.emitTrade(a, receipt)
	e.emit(Event{
		Type:    EventGraduation,
		AssetID: a.cfg.AssetID.Hex(),
		Graduation: &GraduationDetail{
			Pool:              mig.Pool.Hex(),
			TokensToVenue:     tokensToVenue.Dec(),
			EthToVenue:        ethToVenue.Dec(),
			MigrationFee:      a.cfg.MigrationFee.Dec(),
			CreatorAllocation: a.cfg.CreatorAllocation.Dec(),
			Liquidity:         mig.Liquidity.Dec(),
			TokenDust:         mig.TokenDust.Dec(),
		},
	})
	e.logger.WithFields(logger.Fields{
		"asset":      a.cfg.AssetID.Hex(),
		"pool":       mig.Pool.Hex(),
		"eth":        ethToVenue.Dec(),
		"tokens":     tokensToVenue.Dec(),
		"liquidity":  mig.Liquidity.Dec(),
		"token_dust": mig.TokenDust.Dec(),
	}).Info("asset graduated")
	return mig, nil
}

// Sell executes an exact-input sale back into the curve. Disallowed once the
// asset has graduated.
func (e *Engine) Sell(p SellParams) (*TradeReceipt, error) {
	a, err := e.asset(p.AssetID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Graduated {
		return nil, ErrAlreadyGraduated
	}
	if p.TokensIn == nil || p.TokensIn.IsZero() {
		return nil, ErrInvalidAmount
	}
	if !p.Deadline.IsZero() && e.now().After(p.Deadline) {
		return nil, ErrDeadlineExceeded
	}
	if a.tok.BalanceOf(p.Seller).Lt(p.TokensIn) {
		return nil, ErrInsufficientBalance
	}

	gross, err := a.crv.SellExactIn(a.state.ReleasedSupply, a.state.EthCollected, p.TokensIn)
	if err != nil {
		return nil, fmt.Errorf("sell quote: %w", err)
	}
	if gross.IsZero() {
		return nil, ErrInvalidAmount
	}
	fee := feeOn(gross, a.cfg.SellFeeBps)
	net := new(uint256.Int).Sub(gross, fee)
	if p.MinEthOut != nil && net.Lt(p.MinEthOut) {
		return nil, ErrSlippageExceeded
	}

	if err := a.tok.Transfer(p.Seller, a.cfg.Custody, p.TokensIn); err != nil {
		return nil, fmt.Errorf("return tokens: %w", err)
	}
	a.state.EthCollected.Sub(a.state.EthCollected, gross)
	a.state.ReleasedSupply.Sub(a.state.ReleasedSupply, p.TokensIn)
	e.treasury.Credit(fee)

	receipt := &TradeReceipt{
		Ref:     uuid.NewString(),
		AssetID: p.AssetID,
		Side:    "sell",
		Trader:  p.Seller,
		Gross:   gross,
		Fee:     fee,
		Net:     net,
		Tokens:  new(uint256.Int).Set(p.TokensIn),
	}
	receipt.Seq = e.emitTrade(a, receipt)
	return receipt, nil
}

// TreasuryBalance returns the claimable protocol fee balance.
func (e *Engine) TreasuryBalance() *uint256.Int {
	return e.treasury.Balance()
}

// WithdrawTreasury debits the treasury. Trading state is unaffected.
func (e *Engine) WithdrawTreasury(to common.Address, amount *uint256.Int) (*uint256.Int, error) {
	if to == (common.Address{}) {
		return nil, ErrInvalidConfig
	}
	remaining, err := e.treasury.Withdraw(amount)
	if err != nil {
		return nil, err
	}
	e.emit(Event{
		Type: EventTreasuryWithdrawal,
		Withdrawal: &WithdrawalDetail{
			To:        to.Hex(),
			Amount:    amount.Dec(),
			Remaining: remaining.Dec(),
		},
	})
	return remaining, nil
}

func (e *Engine) asset(id common.Hash) (*asset, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.assets[id]
	if !ok {
		return nil, ErrUnknownAsset
	}
	return a, nil
}

// emitTrade records the trade event and returns its sequence number.
// Called with the asset lock held.
func (e *Engine) emitTrade(a *asset, r *TradeReceipt) uint64 {
	return e.emit(Event{
		Type:    EventTrade,
		AssetID: a.cfg.AssetID.Hex(),
		Trade: &TradeDetail{
			Ref:            r.Ref,
			Side:           r.Side,
			Trader:         r.Trader.Hex(),
			Gross:          r.Gross.Dec(),
			Fee:            r.Fee.Dec(),
			Net:            r.Net.Dec(),
			Tokens:         r.Tokens.Dec(),
			EthCollected:   a.state.EthCollected.Dec(),
			ReleasedSupply: a.state.ReleasedSupply.Dec(),
			Graduated:      a.state.Graduated,
		},
	})
}

func (e *Engine) emit(ev Event) uint64 {
	e.evMu.Lock()
	e.nextSeq++
	ev.Seq = e.nextSeq
	ev.ID = uuid.NewString()
	ev.At = e.now()
	e.log.Publish(ev)
	sinks := make([]EventSink, len(e.sinks))
	copy(sinks, e.sinks)
	e.evMu.Unlock()

	for _, s := range sinks {
		s.Publish(ev)
	}
	return ev.Seq
}

func feeOn(amount *uint256.Int, bps uint64) *uint256.Int {
	if bps == 0 {
		return uint256.NewInt(0)
	}
	n := new(uint256.Int).Mul(amount, uint256.NewInt(bps))
	return ceilDiv(n, uint256.NewInt(MaxFeeBps))
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
