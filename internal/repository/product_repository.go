package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string
}

// 商品の永続化（保存・取得）だけを約束。
// slugの一意性チェックは削除済みも含めて全件が対象（Unscoped）。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	//エクスポート用。ページングなしで全商品（削除済みは除く）
	ListAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	FindBySlug(ctx context.Context, slug string) (model.Product, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	//バリエーションは全入れ替え
	ReplaceColorVariants(ctx context.Context, productID int64, variants []model.ColorVariant) error

	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	ListDeleted(ctx context.Context) ([]model.Product, error)
}
