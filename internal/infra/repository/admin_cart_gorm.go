package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// shadowカート（admin_cart_items）のGORM実装。
type AdminCartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewAdminCartItemGormRepository(db *gorm.DB) *AdminCartItemGormRepository {
	return &AdminCartItemGormRepository{db: db}
}

func (r *AdminCartItemGormRepository) List(ctx context.Context) ([]model.AdminCartItem, error) {
	var items []model.AdminCartItem

	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.AdminCartItem{}, err
	}

	return items, nil
}

func (r *AdminCartItemGormRepository) Upsert(ctx context.Context, productID int64, colorVariantID *int64, addQty int64) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.AdminCartItem

		q := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", productID)
		q = whereColorVariant(q, colorVariantID)

		err := q.First(&item).Error

		if err == nil {
			res := tx.Model(&model.AdminCartItem{}).
				Where("id = ?", item.ID).
				Update("quantity", item.Quantity+addQty)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		newItem := model.AdminCartItem{
			ProductID:      productID,
			ColorVariantID: colorVariantID,
			Quantity:       addQty,
		}

		return tx.Create(&newItem).Error
	})
}

func (r *AdminCartItemGormRepository) FindByProduct(ctx context.Context, productID int64) (model.AdminCartItem, error) {
	var item model.AdminCartItem

	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id asc").
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.AdminCartItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.AdminCartItem{}, err
	}
	return item, nil
}

func (r *AdminCartItemGormRepository) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.AdminCartItem{}).
		Where("id = ?", itemID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *AdminCartItemGormRepository) DeleteByID(ctx context.Context, itemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.AdminCartItem{}, itemID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
