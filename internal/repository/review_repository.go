package repository

import (
	"context"

	"app/internal/domain/model"
)

type ReviewRepository interface {
	//onlyApproved=trueなら承認済みのみ
	ListByProductID(ctx context.Context, productID int64, onlyApproved bool) ([]model.Review, error)
	//管理画面用の全件（新しい順）
	ListAll(ctx context.Context) ([]model.Review, error)
	FindByID(ctx context.Context, id int64) (model.Review, error)
	Create(ctx context.Context, r model.Review) (model.Review, error)
	SetApproved(ctx context.Context, id int64, approved bool) error
	Delete(ctx context.Context, id int64) error
}
