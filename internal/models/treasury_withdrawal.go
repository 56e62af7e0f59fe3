package models

import "time"

// TreasuryWithdrawal is the audit trail for protocol fee payouts.
type TreasuryWithdrawal struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	To        string    `gorm:"size:42;not null" json:"to"`
	Amount    string    `gorm:"size:80;not null" json:"amount"`
	Remaining string    `gorm:"size:80;not null" json:"remaining"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TreasuryWithdrawal) TableName() string {
	return "treasury_withdrawals"
}
