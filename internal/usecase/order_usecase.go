package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type OrderUsecase struct {
	txManager     repo.TransactionManager
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
	promocodeRepo repo.PromocodeRepository
}

// DI
func NewOrderUsecase(
	txManager repo.TransactionManager,
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	promocodeRepo repo.PromocodeRepository,
) *OrderUsecase {
	return &OrderUsecase{
		txManager:     txManager,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		promocodeRepo: promocodeRepo,
	}
}

type CheckoutInput struct {
	CustomerName   string `json:"customerName"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Promocode      string `json:"promocode"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type OrderOutput struct {
	Order model.Order       `json:"order"`
	Items []model.OrderItem `json:"items"`
}

// チェックアウト。
// カートのスナップショットから注文を作り、カートを空にする。全体を1Txで行う。
// 同じIdempotencyKeyでの再送は既存の注文を返すだけ。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "customer name required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "phone required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "address required")
	}
	if strings.TrimSpace(in.IdempotencyKey) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "idempotency key required")
	}

	var out OrderOutput

	err := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		//再送なら既存の注文をそのまま返す
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, in.IdempotencyKey)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			items, err := u.orderItemRepo.ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = OrderOutput{Order: existing, Items: items}
			return nil
		}

		cartItems, err := r.CartItems().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		var discountPercent int64
		var promoCode string
		if code := strings.ToUpper(strings.TrimSpace(in.Promocode)); code != "" {
			p, err := r.Promocodes().FindByCode(ctx, code)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid promocode")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive || (p.ExpiresAt != nil && p.ExpiresAt.Before(time.Now())) {
				return NewHTTPError(http.StatusBadRequest, "invalid promocode")
			}
			ok, err := r.Promocodes().IncrementUsageIfAllowed(ctx, p.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "promocode usage limit reached")
			}
			discountPercent = p.Discount
			promoCode = p.Code
		}

		//確定時点の名前と実効単価を明細に焼き込む
		var total int64
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusConflict, "product no longer available")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			unit := p.Price
			if p.Discount != nil {
				unit = unit - unit*(*p.Discount)/100
			}
			total += unit * ci.Quantity
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   unit,
				Quantity:            ci.Quantity,
			})
		}

		if discountPercent > 0 {
			total = total - total*discountPercent/100
		}

		order := model.Order{
			UserID:          userID,
			Status:          model.OrderStatusPending,
			CustomerName:    strings.TrimSpace(in.CustomerName),
			Phone:           strings.TrimSpace(in.Phone),
			Address:         strings.TrimSpace(in.Address),
			Promocode:       promoCode,
			DiscountPercent: discountPercent,
			TotalPrice:      total,
			IdempotencyKey:  in.IdempotencyKey,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.CartItems().DeleteByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		for i := range orderItems {
			orderItems[i].OrderID = orderID
		}
		out = OrderOutput{Order: order, Items: orderItems}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return OrderOutput{}, err
		}
		logger.Error().Err(err).Int64("user_id", userID).Msg("checkout failed")
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return out, nil
}

type OrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := u.orderRepo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 自分の注文だけ明細付きで見られる。
func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if order.UserID != userID {
		//他人の注文は存在ごと隠す
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	items, err := u.orderItemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderOutput{Order: order, Items: items}, nil
}
