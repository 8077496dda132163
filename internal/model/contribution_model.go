package model

import (
	"time"
)

// ContributionModel 贡献记录
type ContributionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TakeoverId      int64   `json:"takeover_id" gorm:"not null;index"`
	TakeoverAddress string  `json:"takeover_address" gorm:"not null;index"`
	Contributor     string  `json:"contributor" gorm:"not null;index"`
	Amount          Amount  `json:"amount" gorm:"type:numeric(20,0);not null"`
	TxSignature     *string `json:"transaction_signature,omitempty" gorm:"uniqueIndex"`

	// 领取
	Claimed     bool       `json:"claimed" gorm:"not null;default:false"`
	ClaimAmount *Amount    `json:"claim_amount,omitempty" gorm:"type:numeric(20,0)"`
	ClaimType   string     `json:"claim_type,omitempty"` // reward, refund
	ClaimedAt   *time.Time `json:"claimed_at"`
}

// TableName 自定义表名
func (ContributionModel) TableName() string {
	return "contribution"
}
