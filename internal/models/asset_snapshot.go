package models

import "time"

// AssetSnapshot is a periodic record of curve progress, written by the
// schedule job for charting.
type AssetSnapshot struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	AssetID string `gorm:"size:66;index;not null" json:"asset_id"`

	EthCollected   string `gorm:"size:80;not null" json:"eth_collected"`
	ReleasedSupply string `gorm:"size:80;not null" json:"released_supply"`
	Graduated      bool   `gorm:"default:false" json:"graduated"`

	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	CreatedAtByZeroSec time.Time `gorm:"index" json:"created_at_by_zero_sec"`
}

func (AssetSnapshot) TableName() string {
	return "asset_snapshots"
}
