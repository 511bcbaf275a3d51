package repository

import (
	"context"

	"app/internal/domain/model"
)

// 通常ユーザーのカート。
type CartItemRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	// 同一(user, product, colorVariant)は数量加算
	Upsert(ctx context.Context, userID int64, productID int64, colorVariantID *int64, addQty int64) error
	// PATCH/DELETE用の検索。colorVariantは見ない（観測された挙動のまま）。
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	DeleteByUserID(ctx context.Context, userID int64) error
}

// 運用アカウント用のshadowカート。user列を持たない。
type AdminCartItemRepository interface {
	List(ctx context.Context) ([]model.AdminCartItem, error)
	Upsert(ctx context.Context, productID int64, colorVariantID *int64, addQty int64) error
	FindByProduct(ctx context.Context, productID int64) (model.AdminCartItem, error)
	UpdateQuantity(ctx context.Context, itemID int64, qty int64) error
	DeleteByID(ctx context.Context, itemID int64) error
}
