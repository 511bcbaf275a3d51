package repository

import (
	"context"

	"app/internal/domain/model"
)

type FavoriteRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.Favorite, error)
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.Favorite, error)
	Create(ctx context.Context, f model.Favorite) error
	DeleteByUserAndProduct(ctx context.Context, userID int64, productID int64) error
}

type AdminFavoriteRepository interface {
	List(ctx context.Context) ([]model.AdminFavorite, error)
	FindByProduct(ctx context.Context, productID int64) (model.AdminFavorite, error)
	Create(ctx context.Context, f model.AdminFavorite) error
	DeleteByProduct(ctx context.Context, productID int64) error
}
