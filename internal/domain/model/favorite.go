package model

import "time"

// お気に入り。(user_id, product_id) で一意。
type Favorite struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_favorites_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_favorites_user_product" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
