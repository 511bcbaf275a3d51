package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type PromoRepoMock struct{ mock.Mock }

func (m *PromoRepoMock) List(ctx context.Context) ([]model.Promocode, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Promocode)
	return list, args.Error(1)
}

func (m *PromoRepoMock) ListActive(ctx context.Context) ([]model.Promocode, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Promocode)
	return list, args.Error(1)
}

func (m *PromoRepoMock) FindByID(ctx context.Context, id int64) (model.Promocode, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Promocode)
	return p, args.Error(1)
}

func (m *PromoRepoMock) FindByCode(ctx context.Context, code string) (model.Promocode, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(model.Promocode)
	return p, args.Error(1)
}

func (m *PromoRepoMock) Create(ctx context.Context, p model.Promocode) (model.Promocode, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Promocode)
	return created, args.Error(1)
}

func (m *PromoRepoMock) Update(ctx context.Context, p model.Promocode) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PromoRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PromoRepoMock) IncrementUsageIfAllowed(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func assertHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok, "expected HTTPError, got %v", err)
	if ok {
		assert.Equal(t, want, he.Status)
	}
}

// =====================
// Validate
// =====================

func TestPromocodeUsecase_Validate_UppercasesCode(t *testing.T) {
	pRepo := new(PromoRepoMock)
	uc := usecase.NewPromocodeUsecase(pRepo)

	//小文字入力でも大文字で照合される
	pRepo.On("FindByCode", mock.Anything, "SUMMER10").
		Return(model.Promocode{ID: 1, Code: "SUMMER10", Discount: 10, IsActive: true}, nil)
	pRepo.On("IncrementUsageIfAllowed", mock.Anything, int64(1)).Return(true, nil)

	out, err := uc.Validate(context.Background(), "summer10")
	assert.NoError(t, err)
	assert.Equal(t, "SUMMER10", out.Code)
	assert.Equal(t, int64(10), out.Discount)

	pRepo.AssertExpectations(t)
}

func TestPromocodeUsecase_Validate_NotFound(t *testing.T) {
	pRepo := new(PromoRepoMock)
	uc := usecase.NewPromocodeUsecase(pRepo)

	pRepo.On("FindByCode", mock.Anything, "NOPE").
		Return(model.Promocode{}, repo.ErrNotFound)

	_, err := uc.Validate(context.Background(), "nope")
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestPromocodeUsecase_Validate_Inactive(t *testing.T) {
	pRepo := new(PromoRepoMock)
	uc := usecase.NewPromocodeUsecase(pRepo)

	pRepo.On("FindByCode", mock.Anything, "OLD").
		Return(model.Promocode{ID: 2, Code: "OLD", Discount: 5, IsActive: false}, nil)

	_, err := uc.Validate(context.Background(), "OLD")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	//無効コードではカウンタに触らない
	pRepo.AssertNotCalled(t, "IncrementUsageIfAllowed", mock.Anything, mock.Anything)
}

func TestPromocodeUsecase_Validate_Expired(t *testing.T) {
	pRepo := new(PromoRepoMock)
	uc := usecase.NewPromocodeUsecase(pRepo)

	past := time.Now().Add(-time.Hour)
	pRepo.On("FindByCode", mock.Anything, "GONE").
		Return(model.Promocode{ID: 3, Code: "GONE", Discount: 5, IsActive: true, ExpiresAt: &past}, nil)

	_, err := uc.Validate(context.Background(), "GONE")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	pRepo.AssertNotCalled(t, "IncrementUsageIfAllowed", mock.Anything, mock.Anything)
}

func TestPromocodeUsecase_Validate_LimitReached(t *testing.T) {
	pRepo := new(PromoRepoMock)
	uc := usecase.NewPromocodeUsecase(pRepo)

	limit := int64(1)
	pRepo.On("FindByCode", mock.Anything, "ONCE").
		Return(model.Promocode{ID: 4, Code: "ONCE", Discount: 15, IsActive: true, UsageLimit: &limit, UsageCount: 1}, nil)
	//条件付きUPDATEが0行 → 上限到達
	pRepo.On("IncrementUsageIfAllowed", mock.Anything, int64(4)).Return(false, nil)

	_, err := uc.Validate(context.Background(), "ONCE")
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestPromocodeUsecase_Validate_SingleUse(t *testing.T) {
	pRepo := new(PromoRepoMock)
	uc := usecase.NewPromocodeUsecase(pRepo)

	limit := int64(1)
	promo := model.Promocode{ID: 5, Code: "SINGLE", Discount: 20, IsActive: true, UsageLimit: &limit}

	pRepo.On("FindByCode", mock.Anything, "SINGLE").Return(promo, nil)
	//1回目は成功、2回目は上限
	pRepo.On("IncrementUsageIfAllowed", mock.Anything, int64(5)).Return(true, nil).Once()
	pRepo.On("IncrementUsageIfAllowed", mock.Anything, int64(5)).Return(false, nil).Once()

	out, err := uc.Validate(context.Background(), "single")
	assert.NoError(t, err)
	assert.Equal(t, int64(20), out.Discount)

	_, err = uc.Validate(context.Background(), "single")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	pRepo.AssertExpectations(t)
}

func TestPromocodeUsecase_Validate_EmptyCode(t *testing.T) {
	uc := usecase.NewPromocodeUsecase(new(PromoRepoMock))

	_, err := uc.Validate(context.Background(), "   ")
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// =====================
// Admin CRUD
// =====================

func TestPromocodeUsecase_AdminCreate_StoresUppercase(t *testing.T) {
	pRepo := new(PromoRepoMock)
	uc := usecase.NewPromocodeUsecase(pRepo)

	pRepo.On("FindByCode", mock.Anything, "WINTER5").
		Return(model.Promocode{}, repo.ErrNotFound)
	pRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Promocode) bool {
		return p.Code == "WINTER5" && p.Discount == 5
	})).Return(model.Promocode{ID: 9, Code: "WINTER5", Discount: 5}, nil)

	out, err := uc.AdminCreate(context.Background(), usecase.AdminPromocodeInput{
		Code:     "winter5",
		Discount: 5,
		IsActive: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, "WINTER5", out.Code)

	pRepo.AssertExpectations(t)
}

func TestPromocodeUsecase_AdminCreate_Duplicate(t *testing.T) {
	pRepo := new(PromoRepoMock)
	uc := usecase.NewPromocodeUsecase(pRepo)

	pRepo.On("FindByCode", mock.Anything, "DUP").
		Return(model.Promocode{ID: 1, Code: "DUP"}, nil)

	_, err := uc.AdminCreate(context.Background(), usecase.AdminPromocodeInput{
		Code:     "dup",
		Discount: 10,
	})
	assertHTTPStatus(t, err, http.StatusConflict)
}

func TestPromocodeUsecase_AdminCreate_InvalidDiscount(t *testing.T) {
	uc := usecase.NewPromocodeUsecase(new(PromoRepoMock))

	_, err := uc.AdminCreate(context.Background(), usecase.AdminPromocodeInput{
		Code:     "BAD",
		Discount: 0,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	_, err = uc.AdminCreate(context.Background(), usecase.AdminPromocodeInput{
		Code:     "BAD",
		Discount: 101,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// =====================
// ActivePromotions
// =====================

func TestPromocodeUsecase_ActivePromotions_BuildsBanners(t *testing.T) {
	pRepo := new(PromoRepoMock)
	uc := usecase.NewPromocodeUsecase(pRepo)

	until := time.Now().Add(24 * time.Hour)
	pRepo.On("ListActive", mock.Anything).Return([]model.Promocode{
		{ID: 1, Code: "SALE20", Discount: 20, IsActive: true, ExpiresAt: &until},
		{ID: 2, Code: "WELCOME", Discount: 5, IsActive: true},
	}, nil)

	out, err := uc.ActivePromotions(context.Background())
	assert.NoError(t, err)
	assert.Len(t, out, 2)

	assert.Equal(t, "Скидка 20%", out[0].Title)
	assert.Equal(t, "Используйте промокод SALE20 для получения скидки", out[0].Description)
	assert.Equal(t, "SALE20", out[0].Code)
	assert.Equal(t, &until, out[0].ValidUntil)

	//期限なしのコードはvalid_untilがnull
	assert.Nil(t, out[1].ValidUntil)
}

func TestPromocodeUsecase_ActivePromotions_EmptyList(t *testing.T) {
	pRepo := new(PromoRepoMock)
	uc := usecase.NewPromocodeUsecase(pRepo)

	pRepo.On("ListActive", mock.Anything).Return([]model.Promocode{}, nil)

	out, err := uc.ActivePromotions(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, out)
}
