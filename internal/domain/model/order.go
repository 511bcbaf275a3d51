package model

import "time"

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusShipped  OrderStatus = "SHIPPED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

type Order struct {
	ID     int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64       `gorm:"not null;index" json:"user_id"`
	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//配送先（住所帳は持たず注文に直接持つ）
	CustomerName string `gorm:"type:varchar(255);not null" json:"customer_name"`
	Phone        string `gorm:"type:varchar(30);not null" json:"phone"`
	Address      string `gorm:"type:varchar(500);not null" json:"address"`

	//適用されたプロモコード（なければ空）
	Promocode       string `gorm:"type:varchar(50)" json:"promocode"`
	DiscountPercent int64  `gorm:"not null;default:0" json:"discount_percent"`

	TotalPrice     int64  `gorm:"not null" json:"total_price"`
	IdempotencyKey string `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
