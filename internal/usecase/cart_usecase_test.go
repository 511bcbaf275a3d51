package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartRepoMock) Upsert(ctx context.Context, userID int64, productID int64, colorVariantID *int64, addQty int64) error {
	args := m.Called(ctx, userID, productID, colorVariantID, addQty)
	return args.Error(0)
}

func (m *CartRepoMock) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartItem, error) {
	args := m.Called(ctx, userID, productID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartRepoMock) DeleteByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type AdminCartRepoMock struct{ mock.Mock }

func (m *AdminCartRepoMock) List(ctx context.Context) ([]model.AdminCartItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.AdminCartItem)
	return items, args.Error(1)
}

func (m *AdminCartRepoMock) Upsert(ctx context.Context, productID int64, colorVariantID *int64, addQty int64) error {
	args := m.Called(ctx, productID, colorVariantID, addQty)
	return args.Error(0)
}

func (m *AdminCartRepoMock) FindByProduct(ctx context.Context, productID int64) (model.AdminCartItem, error) {
	args := m.Called(ctx, productID)
	it, _ := args.Get(0).(model.AdminCartItem)
	return it, args.Error(1)
}

func (m *AdminCartRepoMock) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	args := m.Called(ctx, itemID, qty)
	return args.Error(0)
}

func (m *AdminCartRepoMock) DeleteByID(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CartProductRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) ReplaceColorVariants(ctx context.Context, productID int64, variants []model.ColorVariant) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Restore(ctx context.Context, id int64) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) ListDeleted(ctx context.Context) ([]model.Product, error) {
	panic("not used in CartUsecase tests")
}

func newCartUsecase() (*usecase.CartUsecase, *CartRepoMock, *AdminCartRepoMock, *CartProductRepoMock) {
	cartRepo := new(CartRepoMock)
	adminRepo := new(AdminCartRepoMock)
	prodRepo := new(CartProductRepoMock)
	return usecase.NewCartUsecase(cartRepo, adminRepo, prodRepo), cartRepo, adminRepo, prodRepo
}

// =====================
// AddToCart
// =====================

func TestCartUsecase_AddToCart_Unauthorized(t *testing.T) {
	uc, _, _, _ := newCartUsecase()

	err := uc.AddToCart(context.Background(), usecase.Shopper{}, usecase.AddToCartInput{
		ProductID: 1,
		Quantity:  1,
	})
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

func TestCartUsecase_AddToCart_MergesQuantity(t *testing.T) {
	uc, cartRepo, _, prodRepo := newCartUsecase()

	s := usecase.Shopper{UserID: 7}
	variant := int64(3)

	prodRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10}, nil)
	//同一(product, variant)はUpsertで加算
	cartRepo.On("Upsert", mock.Anything, int64(7), int64(10), &variant, int64(2)).Return(nil)

	err := uc.AddToCart(context.Background(), s, usecase.AddToCartInput{
		ProductID:      10,
		ColorVariantID: &variant,
		Quantity:       2,
	})
	assert.NoError(t, err)

	cartRepo.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_ProductNotFound(t *testing.T) {
	uc, _, _, prodRepo := newCartUsecase()

	prodRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	err := uc.AddToCart(context.Background(), usecase.Shopper{UserID: 7}, usecase.AddToCartInput{
		ProductID: 99,
		Quantity:  1,
	})
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	uc, _, _, _ := newCartUsecase()

	err := uc.AddToCart(context.Background(), usecase.Shopper{UserID: 7}, usecase.AddToCartInput{
		ProductID: 10,
		Quantity:  0,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// 運用アカウントはshadowテーブル側へ行く。user側は触らない。
func TestCartUsecase_AddToCart_ServiceUsesShadowTable(t *testing.T) {
	uc, cartRepo, adminRepo, prodRepo := newCartUsecase()

	s := usecase.Shopper{UserID: 1, Service: true}

	prodRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10}, nil)
	adminRepo.On("Upsert", mock.Anything, int64(10), (*int64)(nil), int64(1)).Return(nil)

	err := uc.AddToCart(context.Background(), s, usecase.AddToCartInput{
		ProductID: 10,
		Quantity:  1,
	})
	assert.NoError(t, err)

	adminRepo.AssertExpectations(t)
	cartRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// UpdateQuantity / Remove
// =====================

// 数量変更は(user, product)で行を探す。バリエーション違いの行が
// 複数あっても最初の1行が対象になる。
func TestCartUsecase_UpdateQuantityByProduct_LooksUpByProduct(t *testing.T) {
	uc, cartRepo, _, _ := newCartUsecase()

	s := usecase.Shopper{UserID: 7}

	cartRepo.On("FindByUserAndProduct", mock.Anything, int64(7), int64(10)).
		Return(model.CartItem{ID: 55, UserID: 7, ProductID: 10}, nil)
	cartRepo.On("UpdateQuantity", mock.Anything, int64(55), int64(4)).Return(nil)

	err := uc.UpdateQuantityByProduct(context.Background(), s, 10, 4)
	assert.NoError(t, err)

	cartRepo.AssertExpectations(t)
}

func TestCartUsecase_UpdateQuantityByProduct_NotFound(t *testing.T) {
	uc, cartRepo, _, _ := newCartUsecase()

	cartRepo.On("FindByUserAndProduct", mock.Anything, int64(7), int64(10)).
		Return(model.CartItem{}, repo.ErrNotFound)

	err := uc.UpdateQuantityByProduct(context.Background(), usecase.Shopper{UserID: 7}, 10, 4)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestCartUsecase_RemoveByProduct_DeletesFoundRow(t *testing.T) {
	uc, cartRepo, _, _ := newCartUsecase()

	s := usecase.Shopper{UserID: 7}

	cartRepo.On("FindByUserAndProduct", mock.Anything, int64(7), int64(10)).
		Return(model.CartItem{ID: 55, UserID: 7, ProductID: 10}, nil)
	cartRepo.On("DeleteByID", mock.Anything, int64(55)).Return(nil)

	err := uc.RemoveByProduct(context.Background(), s, 10)
	assert.NoError(t, err)

	cartRepo.AssertExpectations(t)
}

func TestCartUsecase_RemoveByProduct_ServiceUsesShadowTable(t *testing.T) {
	uc, cartRepo, adminRepo, _ := newCartUsecase()

	s := usecase.Shopper{UserID: 1, Service: true}

	adminRepo.On("FindByProduct", mock.Anything, int64(10)).
		Return(model.AdminCartItem{ID: 8, ProductID: 10}, nil)
	adminRepo.On("DeleteByID", mock.Anything, int64(8)).Return(nil)

	err := uc.RemoveByProduct(context.Background(), s, 10)
	assert.NoError(t, err)

	adminRepo.AssertExpectations(t)
	cartRepo.AssertNotCalled(t, "FindByUserAndProduct", mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// GetCart
// =====================

func TestCartUsecase_GetCart_ReturnsUserItems(t *testing.T) {
	uc, cartRepo, _, _ := newCartUsecase()

	cartRepo.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, UserID: 7, ProductID: 10, Quantity: 2},
		{ID: 2, UserID: 7, ProductID: 11, Quantity: 1},
	}, nil)

	out, err := uc.GetCart(context.Background(), usecase.Shopper{UserID: 7})
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, int64(10), out[0].ProductID)
}

func TestCartUsecase_GetCart_ServiceUsesShadowTable(t *testing.T) {
	uc, cartRepo, adminRepo, _ := newCartUsecase()

	adminRepo.On("List", mock.Anything).Return([]model.AdminCartItem{
		{ID: 1, ProductID: 10, Quantity: 3},
	}, nil)

	out, err := uc.GetCart(context.Background(), usecase.Shopper{UserID: 1, Service: true})
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, int64(3), out[0].Quantity)

	cartRepo.AssertNotCalled(t, "ListByUserID", mock.Anything, mock.Anything)
}
