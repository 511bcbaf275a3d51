package repository

import (
	"context"

	"app/internal/domain/model"
)

type PromocodeRepository interface {
	List(ctx context.Context) ([]model.Promocode, error)
	//公開バナー用。有効かつ期限内のものだけ
	ListActive(ctx context.Context) ([]model.Promocode, error)
	FindByID(ctx context.Context, id int64) (model.Promocode, error)
	//codeは大文字化済みで渡す
	FindByCode(ctx context.Context, code string) (model.Promocode, error)
	Create(ctx context.Context, p model.Promocode) (model.Promocode, error)
	Update(ctx context.Context, p model.Promocode) error
	Delete(ctx context.Context, id int64) error

	// 上限未満のときだけ usage_count を+1する（1回のUPDATEで）。
	// 加算できたらtrue。falseは上限到達。
	IncrementUsageIfAllowed(ctx context.Context, id int64) (bool, error)
}
