package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

// DI
func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

func (r *ReviewGormRepository) ListByProductID(ctx context.Context, productID int64, onlyApproved bool) ([]model.Review, error) {
	var reviews []model.Review

	tx := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID)

	if onlyApproved {
		tx = tx.Where("is_approved = ?", true)
	}

	if err := tx.Order("created_at desc").Find(&reviews).Error; err != nil {
		return []model.Review{}, err
	}

	return reviews, nil
}

func (r *ReviewGormRepository) ListAll(ctx context.Context) ([]model.Review, error) {
	var reviews []model.Review

	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		return []model.Review{}, err
	}

	return reviews, nil
}

func (r *ReviewGormRepository) FindByID(ctx context.Context, id int64) (model.Review, error) {
	var rv model.Review

	err := r.db.WithContext(ctx).First(&rv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Review{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Review{}, err
	}
	return rv, nil
}

func (r *ReviewGormRepository) Create(ctx context.Context, rv model.Review) (model.Review, error) {
	if err := r.db.WithContext(ctx).Create(&rv).Error; err != nil {
		return model.Review{}, err
	}
	return rv, nil
}

func (r *ReviewGormRepository) SetApproved(ctx context.Context, id int64, approved bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("id = ?", id).
		Update("is_approved", approved)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ReviewGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
