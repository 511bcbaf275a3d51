package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type PromocodeUsecase struct {
	promocodeRepo repo.PromocodeRepository
}

// DI
func NewPromocodeUsecase(promocodeRepo repo.PromocodeRepository) *PromocodeUsecase {
	return &PromocodeUsecase{promocodeRepo: promocodeRepo}
}

type ValidatePromocodeOutput struct {
	Code     string `json:"code"`
	Discount int64  `json:"discount"`
}

// コードの検証と消費。判定の順番は exists → active → expired → limit。
// 消費はIncrementUsageIfAllowedの1回のUPDATEに任せる。
func (u *PromocodeUsecase) Validate(ctx context.Context, code string) (ValidatePromocodeOutput, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ValidatePromocodeOutput{}, NewHTTPError(http.StatusBadRequest, "code required")
	}

	p, err := u.promocodeRepo.FindByCode(ctx, code)
	if err == repo.ErrNotFound {
		return ValidatePromocodeOutput{}, NewHTTPError(http.StatusNotFound, "promocode not found")
	}
	if err != nil {
		return ValidatePromocodeOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsActive {
		return ValidatePromocodeOutput{}, NewHTTPError(http.StatusBadRequest, "promocode is not active")
	}
	if p.ExpiresAt != nil && p.ExpiresAt.Before(time.Now()) {
		return ValidatePromocodeOutput{}, NewHTTPError(http.StatusBadRequest, "promocode has expired")
	}

	ok, err := u.promocodeRepo.IncrementUsageIfAllowed(ctx, p.ID)
	if err != nil {
		return ValidatePromocodeOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !ok {
		return ValidatePromocodeOutput{}, NewHTTPError(http.StatusBadRequest, "promocode usage limit reached")
	}

	return ValidatePromocodeOutput{Code: p.Code, Discount: p.Discount}, nil
}

// 公開側に出すバナー。コードから文言を組み立てる。
type PromotionBanner struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Discount    int64      `json:"discount"`
	ValidUntil  *time.Time `json:"valid_until"`
	Code        string     `json:"code"`
}

// 有効かつ期限内のコードをバナーとして返す。
func (u *PromocodeUsecase) ActivePromotions(ctx context.Context) ([]PromotionBanner, error) {
	codes, err := u.promocodeRepo.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	banners := make([]PromotionBanner, 0, len(codes))
	for _, p := range codes {
		banners = append(banners, PromotionBanner{
			ID:          p.ID,
			Title:       fmt.Sprintf("Скидка %d%%", p.Discount),
			Description: fmt.Sprintf("Используйте промокод %s для получения скидки", p.Code),
			Discount:    p.Discount,
			ValidUntil:  p.ExpiresAt,
			Code:        p.Code,
		})
	}
	return banners, nil
}

type AdminPromocodeInput struct {
	Code       string     `json:"code"`
	Discount   int64      `json:"discount"`
	IsActive   bool       `json:"isActive"`
	UsageLimit *int64     `json:"usageLimit"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

func (in AdminPromocodeInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return NewHTTPError(http.StatusBadRequest, "code required")
	}
	if in.Discount < 1 || in.Discount > 100 {
		return NewHTTPError(http.StatusBadRequest, "discount must be 1-100")
	}
	if in.UsageLimit != nil && *in.UsageLimit < 1 {
		return NewHTTPError(http.StatusBadRequest, "usage limit must be >= 1")
	}
	return nil
}

func (u *PromocodeUsecase) AdminList(ctx context.Context) ([]model.Promocode, error) {
	list, err := u.promocodeRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *PromocodeUsecase) AdminCreate(ctx context.Context, in AdminPromocodeInput) (model.Promocode, error) {
	if err := in.validate(); err != nil {
		return model.Promocode{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(in.Code))

	if _, err := u.promocodeRepo.FindByCode(ctx, code); err == nil {
		return model.Promocode{}, NewHTTPError(http.StatusConflict, "promocode already exists")
	} else if err != repo.ErrNotFound {
		return model.Promocode{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p, err := u.promocodeRepo.Create(ctx, model.Promocode{
		Code:       code,
		Discount:   in.Discount,
		IsActive:   in.IsActive,
		UsageLimit: in.UsageLimit,
		ExpiresAt:  in.ExpiresAt,
	})
	if err != nil {
		return model.Promocode{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *PromocodeUsecase) AdminUpdate(ctx context.Context, id int64, in AdminPromocodeInput) (model.Promocode, error) {
	if id <= 0 {
		return model.Promocode{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return model.Promocode{}, err
	}

	current, err := u.promocodeRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Promocode{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Promocode{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	current.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	current.Discount = in.Discount
	current.IsActive = in.IsActive
	current.UsageLimit = in.UsageLimit
	current.ExpiresAt = in.ExpiresAt

	if err := u.promocodeRepo.Update(ctx, current); err != nil {
		if err == repo.ErrNotFound {
			return model.Promocode{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Promocode{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return current, nil
}

func (u *PromocodeUsecase) AdminDelete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.promocodeRepo.Delete(ctx, id); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
