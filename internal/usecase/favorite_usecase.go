package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type FavoriteUsecase struct {
	favoriteRepo      repo.FavoriteRepository
	adminFavoriteRepo repo.AdminFavoriteRepository
	productRepo       repo.ProductRepository
}

// DI
func NewFavoriteUsecase(
	favoriteRepo repo.FavoriteRepository,
	adminFavoriteRepo repo.AdminFavoriteRepository,
	productRepo repo.ProductRepository,
) *FavoriteUsecase {
	return &FavoriteUsecase{
		favoriteRepo:      favoriteRepo,
		adminFavoriteRepo: adminFavoriteRepo,
		productRepo:       productRepo,
	}
}

type FavoriteOutput struct {
	ProductID int64          `json:"productId"`
	Product   *model.Product `json:"product,omitempty"`
}

func (u *FavoriteUsecase) List(ctx context.Context, s Shopper) ([]FavoriteOutput, error) {
	if !s.Service && s.UserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if s.Service {
		favs, err := u.adminFavoriteRepo.List(ctx)
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out := make([]FavoriteOutput, 0, len(favs))
		for _, f := range favs {
			out = append(out, FavoriteOutput{ProductID: f.ProductID, Product: f.Product})
		}
		return out, nil
	}

	favs, err := u.favoriteRepo.ListByUserID(ctx, s.UserID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	out := make([]FavoriteOutput, 0, len(favs))
	for _, f := range favs {
		out = append(out, FavoriteOutput{ProductID: f.ProductID, Product: f.Product})
	}
	return out, nil
}

type ToggleFavoriteOutput struct {
	Favorited bool `json:"favorited"`
}

// あれば外す、なければ付ける。結果の状態を返す。
func (u *FavoriteUsecase) Toggle(ctx context.Context, s Shopper, productID int64) (ToggleFavoriteOutput, error) {
	if !s.Service && s.UserID <= 0 {
		return ToggleFavoriteOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return ToggleFavoriteOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return ToggleFavoriteOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return ToggleFavoriteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if s.Service {
		_, err := u.adminFavoriteRepo.FindByProduct(ctx, productID)
		if err == nil {
			if err := u.adminFavoriteRepo.DeleteByProduct(ctx, productID); err != nil {
				return ToggleFavoriteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			return ToggleFavoriteOutput{Favorited: false}, nil
		}
		if err != repo.ErrNotFound {
			return ToggleFavoriteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := u.adminFavoriteRepo.Create(ctx, model.AdminFavorite{ProductID: productID}); err != nil {
			return ToggleFavoriteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return ToggleFavoriteOutput{Favorited: true}, nil
	}

	_, err := u.favoriteRepo.FindByUserAndProduct(ctx, s.UserID, productID)
	if err == nil {
		if err := u.favoriteRepo.DeleteByUserAndProduct(ctx, s.UserID, productID); err != nil {
			return ToggleFavoriteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return ToggleFavoriteOutput{Favorited: false}, nil
	}
	if err != repo.ErrNotFound {
		return ToggleFavoriteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.favoriteRepo.Create(ctx, model.Favorite{UserID: s.UserID, ProductID: productID}); err != nil {
		return ToggleFavoriteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ToggleFavoriteOutput{Favorited: true}, nil
}
