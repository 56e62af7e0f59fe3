package models

import "time"

// TradeRecord persists one committed buy or sell.
type TradeRecord struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Ref     string `gorm:"size:36;uniqueIndex;not null" json:"ref"`
	AssetID string `gorm:"size:66;index;not null" json:"asset_id"`
	Side    string `gorm:"size:4;not null" json:"side"`
	Trader  string `gorm:"size:42;index;not null" json:"trader"`

	Gross  string `gorm:"size:80;not null" json:"gross"`
	Fee    string `gorm:"size:80;not null" json:"fee"`
	Net    string `gorm:"size:80;not null" json:"net"`
	Tokens string `gorm:"size:80;not null" json:"tokens"`

	Graduated bool   `gorm:"default:false" json:"graduated"`
	Seq       uint64 `gorm:"index" json:"seq"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TradeRecord) TableName() string {
	return "trade_records"
}
