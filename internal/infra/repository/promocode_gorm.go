package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PromocodeGormRepository struct {
	db *gorm.DB
}

// DI
func NewPromocodeGormRepository(db *gorm.DB) *PromocodeGormRepository {
	return &PromocodeGormRepository{db: db}
}

func (r *PromocodeGormRepository) List(ctx context.Context) ([]model.Promocode, error) {
	var codes []model.Promocode

	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Find(&codes).Error
	if err != nil {
		return []model.Promocode{}, err
	}

	return codes, nil
}

// 公開側に出せるコードだけ返す。
func (r *PromocodeGormRepository) ListActive(ctx context.Context) ([]model.Promocode, error) {
	var codes []model.Promocode

	err := r.db.WithContext(ctx).
		Where("is_active = ? AND (expires_at IS NULL OR expires_at > NOW())", true).
		Order("created_at desc").
		Find(&codes).Error
	if err != nil {
		return []model.Promocode{}, err
	}

	return codes, nil
}

func (r *PromocodeGormRepository) FindByID(ctx context.Context, id int64) (model.Promocode, error) {
	var p model.Promocode

	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Promocode{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Promocode{}, err
	}
	return p, nil
}

func (r *PromocodeGormRepository) FindByCode(ctx context.Context, code string) (model.Promocode, error) {
	var p model.Promocode

	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Promocode{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Promocode{}, err
	}
	return p, nil
}

func (r *PromocodeGormRepository) Create(ctx context.Context, p model.Promocode) (model.Promocode, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Promocode{}, err
	}
	return p, nil
}

func (r *PromocodeGormRepository) Update(ctx context.Context, p model.Promocode) error {
	res := r.db.WithContext(ctx).Model(&model.Promocode{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"code":        p.Code,
		"discount":    p.Discount,
		"is_active":   p.IsActive,
		"usage_limit": p.UsageLimit,
		"expires_at":  p.ExpiresAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PromocodeGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Promocode{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 使用回数のカウントアップ。読み→書きの2段にせず、
// 上限チェックごと1回のUPDATEで行う。0行なら上限到達。
func (r *PromocodeGormRepository) IncrementUsageIfAllowed(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Promocode{}).
		Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}
