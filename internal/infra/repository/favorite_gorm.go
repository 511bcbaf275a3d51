package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
)

type FavoriteGormRepository struct {
	db *gorm.DB
}

// DI
func NewFavoriteGormRepository(db *gorm.DB) *FavoriteGormRepository {
	return &FavoriteGormRepository{db: db}
}

func (r *FavoriteGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Favorite, error) {
	var favorites []model.Favorite

	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&favorites).Error
	if err != nil {
		return []model.Favorite{}, err
	}

	return favorites, nil
}

func (r *FavoriteGormRepository) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.Favorite, error) {
	var f model.Favorite

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&f).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Favorite{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Favorite{}, err
	}
	return f, nil
}

func (r *FavoriteGormRepository) Create(ctx context.Context, f model.Favorite) error {
	return r.db.WithContext(ctx).Create(&f).Error
}

func (r *FavoriteGormRepository) DeleteByUserAndProduct(ctx context.Context, userID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.Favorite{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// shadowお気に入り（admin_favorites）のGORM実装。
type AdminFavoriteGormRepository struct {
	db *gorm.DB
}

// DI
func NewAdminFavoriteGormRepository(db *gorm.DB) *AdminFavoriteGormRepository {
	return &AdminFavoriteGormRepository{db: db}
}

func (r *AdminFavoriteGormRepository) List(ctx context.Context) ([]model.AdminFavorite, error) {
	var favorites []model.AdminFavorite

	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("id asc").
		Find(&favorites).Error
	if err != nil {
		return []model.AdminFavorite{}, err
	}

	return favorites, nil
}

func (r *AdminFavoriteGormRepository) FindByProduct(ctx context.Context, productID int64) (model.AdminFavorite, error) {
	var f model.AdminFavorite

	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&f).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.AdminFavorite{}, repo.ErrNotFound
	}
	if err != nil {
		return model.AdminFavorite{}, err
	}
	return f, nil
}

func (r *AdminFavoriteGormRepository) Create(ctx context.Context, f model.AdminFavorite) error {
	return r.db.WithContext(ctx).Create(&f).Error
}

func (r *AdminFavoriteGormRepository) DeleteByProduct(ctx context.Context, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.AdminFavorite{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
