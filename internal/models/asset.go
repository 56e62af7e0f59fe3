package models

import "time"

// Asset mirrors the engine's immutable per-asset config plus the lifecycle
// flags the read API serves without touching the engine.
type Asset struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	AssetID    string `gorm:"size:66;uniqueIndex;not null" json:"asset_id"`
	Name       string `gorm:"size:64;not null" json:"name"`
	Symbol     string `gorm:"size:16;not null" json:"symbol"`
	Creator    string `gorm:"size:42;not null" json:"creator"`
	CurveID    string `gorm:"size:32;not null" json:"curve_id"`
	StrategyID string `gorm:"size:32;not null" json:"strategy_id"`

	BuyFeeBps  uint64 `gorm:"not null" json:"buy_fee_bps"`
	SellFeeBps uint64 `gorm:"not null" json:"sell_fee_bps"`

	// Wei amounts are stored as decimal strings; they exceed bigint range.
	GraduationThreshold string `gorm:"size:80;not null" json:"graduation_threshold"`
	ExcessCap           string `gorm:"size:80;not null" json:"excess_cap"`
	MigrationFee        string `gorm:"size:80;not null" json:"migration_fee"`
	CreatorAllocation   string `gorm:"size:80;not null" json:"creator_allocation"`
	TotalSupply         string `gorm:"size:80;not null" json:"total_supply"`

	Custody string `gorm:"size:42;not null" json:"custody"`
	Venue   string `gorm:"size:42;not null" json:"venue"`

	Graduated bool `gorm:"default:false" json:"graduated"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Asset) TableName() string {
	return "assets"
}
