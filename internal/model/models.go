package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OwnedAccount is a wallet-owned ledger account on the active network.
type OwnedAccount struct {
	ID            uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Address       string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_address_network" json:"address"`
	NetworkID     uint8          `gorm:"not null;uniqueIndex:idx_address_network" json:"network_id"`
	DisplayLabel  string         `gorm:"type:varchar(255);not null" json:"display_label"`
	AppearanceTag int            `gorm:"not null;default:0" json:"appearance_tag"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// SubmissionRecord is the audit trail row for one submission attempt.
// Written on approval and updated as the state machine advances, so a
// crashed process still leaves evidence that an intent may be live.
type SubmissionRecord struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID     string          `gorm:"type:varchar(64);not null;index" json:"session_id"`
	IntentID      string          `gorm:"type:varchar(128);index" json:"intent_id"`
	TxID          string          `gorm:"type:varchar(128)" json:"tx_id"`
	Phase         string          `gorm:"type:varchar(32);not null" json:"phase"`
	FailureReason string          `gorm:"type:text" json:"failure_reason"`
	OutcomeKnown  bool            `gorm:"not null;default:false" json:"outcome_known"`
	Fee           decimal.Decimal `gorm:"type:decimal(32,18);not null;default:0" json:"fee"`
	NetworkID     uint8           `gorm:"not null" json:"network_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (OwnedAccount) TableName() string {
	return "owned_accounts"
}

func (SubmissionRecord) TableName() string {
	return "submission_records"
}
