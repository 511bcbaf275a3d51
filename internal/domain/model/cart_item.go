package model

import "time"

// カートの明細。
// (user_id, product_id, color_variant_id) につき1行。
// 一意性はDB制約ではなく「探してから作る」で守る。
type CartItem struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64  `gorm:"not null;index" json:"user_id"`
	ProductID      int64  `gorm:"not null;index" json:"product_id"`
	ColorVariantID *int64 `gorm:"index" json:"color_variant_id"`
	Quantity       int64  `gorm:"not null" json:"quantity"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
