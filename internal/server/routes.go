package server

import (
	"app/internal/config"
	"app/internal/handler"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
)

// Handlers は全ルートの持ち主。
type Handlers struct {
	Product      *handler.ProductHandler
	Category     *handler.CategoryHandler
	Cart         *handler.CartHandler
	Favorite     *handler.FavoriteHandler
	Promocode    *handler.PromocodeHandler
	Review       *handler.ReviewHandler
	Order        *handler.OrderHandler
	Auth         *handler.AuthHandler
	AdminProduct *handler.AdminProductHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminUser    *handler.AdminUserHandler
}

// RegisterAll で全ルートを登録する。
func (h Handlers) RegisterAll(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	h.Product.RegisterRoutes(e)
	h.Category.RegisterRoutes(e, cfg, userRepo)
	h.Cart.RegisterRoutes(e, cfg, userRepo)
	h.Favorite.RegisterRoutes(e, cfg, userRepo)
	h.Promocode.RegisterRoutes(e, cfg, userRepo)
	h.Review.RegisterRoutes(e, cfg, userRepo)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e, cfg, userRepo)
}
