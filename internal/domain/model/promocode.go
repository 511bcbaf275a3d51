package model

import "time"

// プロモコード。codeは大文字で保存する。
// usage_countはusage_limitを超えない（条件付きUPDATEで守る）。
type Promocode struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	//割引率（%）
	Discount   int64      `gorm:"not null" json:"discount"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	UsageLimit *int64     `json:"usage_limit"`
	UsageCount int64      `gorm:"not null;default:0" json:"usage_count"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
