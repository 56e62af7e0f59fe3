package launchpad

import (
	"sync"
	"time"
)

type EventType string

const (
	EventIssuance           EventType = "issuance"
	EventTrade              EventType = "trade"
	EventGraduation         EventType = "graduation"
	EventTreasuryWithdrawal EventType = "treasury_withdrawal"
)

// Event is a durable, ordered record of a state transition. Amounts are
// decimal strings so records survive JSON round trips to the database, the
// message queue and websocket clients without precision loss.
type Event struct {
	Seq     uint64    `json:"seq"`
	ID      string    `json:"id"`
	Type    EventType `json:"type"`
	AssetID string    `json:"asset_id,omitempty"`
	At      time.Time `json:"at"`

	Issuance   *IssuanceDetail   `json:"issuance,omitempty"`
	Trade      *TradeDetail      `json:"trade,omitempty"`
	Graduation *GraduationDetail `json:"graduation,omitempty"`
	Withdrawal *WithdrawalDetail `json:"withdrawal,omitempty"`
}

type IssuanceDetail struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Creator     string `json:"creator"`
	CurveID     string `json:"curve_id"`
	StrategyID  string `json:"strategy_id"`
	Venue       string `json:"venue"`
	TotalSupply string `json:"total_supply"`
	Threshold   string `json:"threshold"`
}

type TradeDetail struct {
	Ref    string `json:"ref"`
	Side   string `json:"side"`
	Trader string `json:"trader"`
	Gross  string `json:"gross"`
	Fee    string `json:"fee"`
	Net    string `json:"net"`
	Tokens string `json:"tokens"`

	EthCollected   string `json:"eth_collected"`
	ReleasedSupply string `json:"released_supply"`
	Graduated      bool   `json:"graduated"`
}

type GraduationDetail struct {
	Pool              string `json:"pool"`
	TokensToVenue     string `json:"tokens_to_venue"`
	EthToVenue        string `json:"eth_to_venue"`
	MigrationFee      string `json:"migration_fee"`
	CreatorAllocation string `json:"creator_allocation"`
	Liquidity         string `json:"liquidity"`
	TokenDust         string `json:"token_dust"`
}

type WithdrawalDetail struct {
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Remaining string `json:"remaining"`
}

// EventSink receives every event exactly once, in sequence order. Sinks must
// not block the trading path; slow consumers should buffer internally.
type EventSink interface {
	Publish(Event)
}

// Log is the in-memory ordered event store backing the read surface.
type Log struct {
	mu     sync.RWMutex
	events []Event
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Publish(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

// Events returns up to limit events with Seq > sinceSeq.
func (l *Log) Events(sinceSeq uint64, limit int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, 0, limit)
	for _, ev := range l.events {
		if ev.Seq <= sinceSeq {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
