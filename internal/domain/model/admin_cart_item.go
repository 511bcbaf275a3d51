package model

import "time"

// 運用アカウント専用のshadowカート。
// 通常ユーザーのcart_itemsを汚さないために分離している。
type AdminCartItem struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID      int64  `gorm:"not null;index" json:"product_id"`
	ColorVariantID *int64 `gorm:"index" json:"color_variant_id"`
	Quantity       int64  `gorm:"not null" json:"quantity"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
