package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /promocodes/validate（公開）と /admin/promocodes（管理）のHTTP
type PromocodeHandler struct {
	uc *usecase.PromocodeUsecase
}

// DI
func NewPromocodeHandler(uc *usecase.PromocodeUsecase) *PromocodeHandler {
	return &PromocodeHandler{uc: uc}
}

type ValidatePromocodeRequest struct {
	Code string `json:"code"`
}

type PromocodeRequest struct {
	Code       string     `json:"code"`
	Discount   int64      `json:"discount"`
	IsActive   bool       `json:"is_active"`
	UsageLimit *int64     `json:"usage_limit"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

func (h *PromocodeHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	//検証はカート画面から誰でも叩ける
	e.POST("/promocodes/validate", h.validate)
	//トップのバナー用
	e.GET("/promocodes/active", h.active)

	g := e.Group("/admin/promocodes")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.GET("", h.adminList)
	g.POST("", h.adminCreate)
	g.PUT("/:id", h.adminUpdate)
	g.DELETE("/:id", h.adminDelete)
}

func (h *PromocodeHandler) validate(c echo.Context) error {
	var req ValidatePromocodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Validate(c.Request().Context(), req.Code)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PromocodeHandler) active(c echo.Context) error {
	out, err := h.uc.ActivePromotions(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PromocodeHandler) adminList(c echo.Context) error {
	out, err := h.uc.AdminList(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PromocodeHandler) adminCreate(c echo.Context) error {
	var req PromocodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AdminCreate(c.Request().Context(), usecase.AdminPromocodeInput{
		Code:       req.Code,
		Discount:   req.Discount,
		IsActive:   req.IsActive,
		UsageLimit: req.UsageLimit,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *PromocodeHandler) adminUpdate(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req PromocodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AdminUpdate(c.Request().Context(), id, usecase.AdminPromocodeInput{
		Code:       req.Code,
		Discount:   req.Discount,
		IsActive:   req.IsActive,
		UsageLimit: req.UsageLimit,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PromocodeHandler) adminDelete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.AdminDelete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, usecase.SuccessResponse{Message: "deleted"})
}
