package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	//URL用の一意な識別子。名前から自動生成する。
	Slug        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`
	//割引率（%）。nilなら割引なし。
	Discount *int64 `json:"discount"`
	Material string `gorm:"type:varchar(255)" json:"material"`
	InStock  bool   `gorm:"not null;default:true" json:"in_stock"`

	CategoryID    *int64 `gorm:"index" json:"category_id"`
	SubcategoryID *int64 `gorm:"index" json:"subcategory_id"`

	ColorVariants []ColorVariant `gorm:"constraint:OnDelete:CASCADE" json:"color_variants"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
