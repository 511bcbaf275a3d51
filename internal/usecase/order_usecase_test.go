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

type CoOrderRepoMock struct{ mock.Mock }

func (m *CoOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *CoOrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *CoOrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CoOrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	panic("not used in OrderUsecase tests")
}

func (m *CoOrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *CoOrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	panic("not used in OrderUsecase tests")
}

type CoOrderItemRepoMock struct{ mock.Mock }

func (m *CoOrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *CoOrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

// Tx境界を素通しするスタブ。fnには本物と同じリポジトリ束を渡す。
type txReposStub struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	cartItems  repo.CartItemRepository
	products   repo.ProductRepository
	promocodes repo.PromocodeRepository
}

func (s txReposStub) Orders() repo.OrderRepository         { return s.orders }
func (s txReposStub) OrderItems() repo.OrderItemRepository { return s.orderItems }
func (s txReposStub) CartItems() repo.CartItemRepository   { return s.cartItems }
func (s txReposStub) Products() repo.ProductRepository     { return s.products }
func (s txReposStub) Promocodes() repo.PromocodeRepository { return s.promocodes }

type txManagerStub struct{ repos txReposStub }

func (s txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(s.repos)
}

type checkoutFixture struct {
	uc       *usecase.OrderUsecase
	orders   *CoOrderRepoMock
	items    *CoOrderItemRepoMock
	cart     *CartRepoMock
	products *CartProductRepoMock
	promos   *PromoRepoMock
}

func newCheckoutFixture() checkoutFixture {
	f := checkoutFixture{
		orders:   new(CoOrderRepoMock),
		items:    new(CoOrderItemRepoMock),
		cart:     new(CartRepoMock),
		products: new(CartProductRepoMock),
		promos:   new(PromoRepoMock),
	}
	tx := txManagerStub{repos: txReposStub{
		orders:     f.orders,
		orderItems: f.items,
		cartItems:  f.cart,
		products:   f.products,
		promocodes: f.promos,
	}}
	f.uc = usecase.NewOrderUsecase(tx, f.orders, f.items, f.promos)
	return f
}

func validCheckoutInput() usecase.CheckoutInput {
	return usecase.CheckoutInput{
		CustomerName:   "Иван Петров",
		Phone:          "+79001234567",
		Address:        "Москва, ул. Ленина 1",
		IdempotencyKey: "key-1",
	}
}

// =====================
// Checkout
// =====================

func TestOrderUsecase_Checkout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "key-1").
		Return(model.Order{}, false, nil)
	f.cart.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	_, err := f.uc.Checkout(context.Background(), 7, validCheckoutInput())
	assertHTTPStatus(t, err, http.StatusBadRequest)

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_MissingIdempotencyKey(t *testing.T) {
	f := newCheckoutFixture()

	in := validCheckoutInput()
	in.IdempotencyKey = ""

	_, err := f.uc.Checkout(context.Background(), 7, in)
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// 確定時点の実効単価（商品割引適用後）が明細に焼き込まれる。
func TestOrderUsecase_Checkout_SnapshotsDiscountedPrice(t *testing.T) {
	f := newCheckoutFixture()

	discount := int64(10)

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "key-1").
		Return(model.Order{}, false, nil)
	f.cart.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, UserID: 7, ProductID: 10, Quantity: 2},
	}, nil)
	f.products.On("FindByID", mock.Anything, int64(10)).
		Return(model.Product{ID: 10, Name: "Диван", Price: 1000, Discount: &discount}, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalPrice == 1800 && o.Status == model.OrderStatusPending
	})).Return(int64(42), nil)
	f.items.On("CreateBulk", mock.Anything, int64(42), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 &&
			items[0].UnitPriceSnapshot == 900 &&
			items[0].ProductNameSnapshot == "Диван"
	})).Return(nil)
	f.cart.On("DeleteByUserID", mock.Anything, int64(7)).Return(nil)

	out, err := f.uc.Checkout(context.Background(), 7, validCheckoutInput())
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.Order.ID)
	assert.Equal(t, int64(1800), out.Order.TotalPrice)

	f.orders.AssertExpectations(t)
	f.items.AssertExpectations(t)
	f.cart.AssertExpectations(t)
}

func TestOrderUsecase_Checkout_AppliesPromocode(t *testing.T) {
	f := newCheckoutFixture()

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "key-1").
		Return(model.Order{}, false, nil)
	f.cart.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, UserID: 7, ProductID: 10, Quantity: 1},
	}, nil)
	f.promos.On("FindByCode", mock.Anything, "SALE20").
		Return(model.Promocode{ID: 5, Code: "SALE20", Discount: 20, IsActive: true}, nil)
	f.promos.On("IncrementUsageIfAllowed", mock.Anything, int64(5)).Return(true, nil)
	f.products.On("FindByID", mock.Anything, int64(10)).
		Return(model.Product{ID: 10, Name: "Стол", Price: 1000}, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalPrice == 800 && o.Promocode == "SALE20" && o.DiscountPercent == 20
	})).Return(int64(43), nil)
	f.items.On("CreateBulk", mock.Anything, int64(43), mock.Anything).Return(nil)
	f.cart.On("DeleteByUserID", mock.Anything, int64(7)).Return(nil)

	in := validCheckoutInput()
	in.Promocode = "sale20"

	out, err := f.uc.Checkout(context.Background(), 7, in)
	assert.NoError(t, err)
	assert.Equal(t, int64(800), out.Order.TotalPrice)

	f.promos.AssertExpectations(t)
}

func TestOrderUsecase_Checkout_PromocodeLimitReached(t *testing.T) {
	f := newCheckoutFixture()

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "key-1").
		Return(model.Order{}, false, nil)
	f.cart.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, UserID: 7, ProductID: 10, Quantity: 1},
	}, nil)
	f.promos.On("FindByCode", mock.Anything, "ONCE").
		Return(model.Promocode{ID: 6, Code: "ONCE", Discount: 10, IsActive: true}, nil)
	f.promos.On("IncrementUsageIfAllowed", mock.Anything, int64(6)).Return(false, nil)

	in := validCheckoutInput()
	in.Promocode = "ONCE"

	_, err := f.uc.Checkout(context.Background(), 7, in)
	assertHTTPStatus(t, err, http.StatusBadRequest)

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 同じキーの再送は既存の注文を返すだけ。新しい注文は作らない。
func TestOrderUsecase_Checkout_IdempotentReplay(t *testing.T) {
	f := newCheckoutFixture()

	existing := model.Order{ID: 42, UserID: 7, Status: model.OrderStatusPending, TotalPrice: 1800}
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "key-1").
		Return(existing, true, nil)
	f.items.On("ListByOrderID", mock.Anything, int64(42)).
		Return([]model.OrderItem{{ID: 1, OrderID: 42, ProductID: 10, Quantity: 2}}, nil)

	out, err := f.uc.Checkout(context.Background(), 7, validCheckoutInput())
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.Order.ID)
	assert.Len(t, out.Items, 1)

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.cart.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
}

// カートに入れた後で商品が消えていたら409で止める。
func TestOrderUsecase_Checkout_ProductGone(t *testing.T) {
	f := newCheckoutFixture()

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "key-1").
		Return(model.Order{}, false, nil)
	f.cart.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 1, UserID: 7, ProductID: 99, Quantity: 1},
	}, nil)
	f.products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := f.uc.Checkout(context.Background(), 7, validCheckoutInput())
	assertHTTPStatus(t, err, http.StatusConflict)
}

// =====================
// My orders
// =====================

func TestOrderUsecase_GetMyOrder_HidesOthersOrders(t *testing.T) {
	f := newCheckoutFixture()

	f.orders.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: 8}, nil)

	_, err := f.uc.GetMyOrder(context.Background(), 7, 42)
	assertHTTPStatus(t, err, http.StatusNotFound)

	f.items.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
}

func TestOrderUsecase_ListMyOrders_NormalizesPaging(t *testing.T) {
	f := newCheckoutFixture()

	f.orders.On("ListByUserID", mock.Anything, int64(7), 1, 20).
		Return([]model.Order{{ID: 1, UserID: 7}}, int64(1), nil)

	out, err := f.uc.ListMyOrders(context.Background(), 7, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)

	f.orders.AssertExpectations(t)
}
