package model

import "time"

// レビュー。作成時点では未承認（is_approved=false）。
type Review struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  int64  `gorm:"not null;index" json:"product_id"`
	UserID     int64  `gorm:"not null;index" json:"user_id"`
	Rating     int    `gorm:"not null" json:"rating"`
	Comment    string `gorm:"type:text;not null" json:"comment"`
	IsApproved bool   `gorm:"not null;default:false" json:"is_approved"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
