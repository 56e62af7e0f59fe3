package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// EventRecord is the durable copy of the engine event stream. Seq is the
// engine-assigned total order.
type EventRecord struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Seq     uint64 `gorm:"uniqueIndex;not null" json:"seq"`
	EventID string `gorm:"size:36;not null" json:"event_id"`
	Type    string `gorm:"size:32;index;not null" json:"type"`
	AssetID string `gorm:"size:66;index" json:"asset_id"`
	Payload JSONB  `gorm:"type:jsonb" json:"payload"`

	At        time.Time `json:"at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (EventRecord) TableName() string {
	return "event_records"
}

// JSONB is a custom type to handle JSONB data
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}
