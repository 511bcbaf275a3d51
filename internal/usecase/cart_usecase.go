package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// カートの操作主体。Serviceが真なら運用アカウントとしてshadowテーブル側に流す。
type Shopper struct {
	UserID  int64
	Service bool
}

// API側に返すカート行。通常/shadowの両方をこの形に寄せる。
type CartItemOutput struct {
	ID             int64          `json:"id"`
	ProductID      int64          `json:"productId"`
	ColorVariantID *int64         `json:"colorVariantId"`
	Quantity       int64          `json:"quantity"`
	Product        *model.Product `json:"product,omitempty"`
}

type CartUsecase struct {
	cartRepo      repo.CartItemRepository
	adminCartRepo repo.AdminCartItemRepository
	productRepo   repo.ProductRepository
}

// DI
func NewCartUsecase(
	cartRepo repo.CartItemRepository,
	adminCartRepo repo.AdminCartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:      cartRepo,
		adminCartRepo: adminCartRepo,
		productRepo:   productRepo,
	}
}

func (u *CartUsecase) GetCart(ctx context.Context, s Shopper) ([]CartItemOutput, error) {
	if !s.Service && s.UserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if s.Service {
		items, err := u.adminCartRepo.List(ctx)
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out := make([]CartItemOutput, 0, len(items))
		for _, it := range items {
			out = append(out, CartItemOutput{
				ID:             it.ID,
				ProductID:      it.ProductID,
				ColorVariantID: it.ColorVariantID,
				Quantity:       it.Quantity,
				Product:        it.Product,
			})
		}
		return out, nil
	}

	items, err := u.cartRepo.ListByUserID(ctx, s.UserID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	out := make([]CartItemOutput, 0, len(items))
	for _, it := range items {
		out = append(out, CartItemOutput{
			ID:             it.ID,
			ProductID:      it.ProductID,
			ColorVariantID: it.ColorVariantID,
			Quantity:       it.Quantity,
			Product:        it.Product,
		})
	}
	return out, nil
}

type AddToCartInput struct {
	ProductID      int64  `json:"productId"`
	ColorVariantID *int64 `json:"colorVariantId"`
	Quantity       int64  `json:"quantity"`
}

// 同一(product, colorVariant)の行があれば数量を加算する。
func (u *CartUsecase) AddToCart(ctx context.Context, s Shopper, in AddToCartInput) error {
	if !s.Service && s.UserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Quantity < 1 {
		return NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
	}

	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if s.Service {
		if err := u.adminCartRepo.Upsert(ctx, in.ProductID, in.ColorVariantID, in.Quantity); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	}

	if err := u.cartRepo.Upsert(ctx, s.UserID, in.ProductID, in.ColorVariantID, in.Quantity); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 数量変更。行の特定は(user, product)で行い、色バリエーションは見ない。
func (u *CartUsecase) UpdateQuantityByProduct(ctx context.Context, s Shopper, productID int64, qty int64) error {
	if !s.Service && s.UserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if qty < 1 {
		return NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
	}

	if s.Service {
		item, err := u.adminCartRepo.FindByProduct(ctx, productID)
		if err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "cart item not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := u.adminCartRepo.UpdateQuantity(ctx, item.ID, qty); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	}

	item, err := u.cartRepo.FindByUserAndProduct(ctx, s.UserID, productID)
	if err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.cartRepo.UpdateQuantity(ctx, item.ID, qty); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 削除も(user, product)で1行特定する。
func (u *CartUsecase) RemoveByProduct(ctx context.Context, s Shopper, productID int64) error {
	if !s.Service && s.UserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if s.Service {
		item, err := u.adminCartRepo.FindByProduct(ctx, productID)
		if err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "cart item not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := u.adminCartRepo.DeleteByID(ctx, item.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	}

	item, err := u.cartRepo.FindByUserAndProduct(ctx, s.UserID, productID)
	if err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.cartRepo.DeleteByID(ctx, item.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
