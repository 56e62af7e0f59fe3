package models

import "time"

// TraderStat is the per-trader, per-asset aggregate maintained by the worker
// from the event stream. Amounts are decimal wei strings.
type TraderStat struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Trader  string `gorm:"size:42;uniqueIndex:idx_trader_asset;not null" json:"trader"`
	AssetID string `gorm:"size:66;uniqueIndex:idx_trader_asset;not null" json:"asset_id"`

	BuyCount  uint64 `gorm:"default:0" json:"buy_count"`
	SellCount uint64 `gorm:"default:0" json:"sell_count"`

	EthIn  string `gorm:"size:80;default:'0'" json:"eth_in"`
	EthOut string `gorm:"size:80;default:'0'" json:"eth_out"`

	LastSeq   uint64    `gorm:"default:0" json:"last_seq"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TraderStat) TableName() string {
	return "trader_stats"
}
