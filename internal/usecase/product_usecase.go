package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"app/internal/domain/model"
	"app/internal/infra/cache"
	repo "app/internal/repository"
	"app/internal/slug"

	"github.com/rs/zerolog"
	"github.com/tealeg/xlsx"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	reviewRepo  repo.ReviewRepository
	auditRepo   repo.AuditLogRepository
	cache       *cache.ProductCache
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	reviewRepo repo.ReviewRepository,
	auditRepo repo.AuditLogRepository,
	productCache *cache.ProductCache,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		auditRepo:   auditRepo,
		cache:       productCache,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// 商品詳細（承認済みレビュー付き）
type ProductDetailOutput struct {
	Product model.Product  `json:"product"`
	Reviews []model.Review `json:"reviews"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Sort:       in.Sort,
	})
	if err != nil {
		logger.Error().Err(err).Msg("list products failed")
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// slugで商品詳細を取得。キャッシュ→DBの順で引く。
func (u *ProductUsecase) GetProductBySlug(ctx context.Context, s string) (ProductDetailOutput, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ProductDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	p, hit := u.cache.GetBySlug(ctx, s)
	if !hit {
		var err error
		p, err = u.productRepo.FindBySlug(ctx, s)
		if err == repo.ErrNotFound {
			return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			logger.Error().Err(err).Str("slug", s).Msg("find product failed")
			return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		u.cache.Set(ctx, p)
	}

	reviews, err := u.reviewRepo.ListByProductID(ctx, p.ID, true)
	if err != nil {
		logger.Error().Err(err).Int64("product_id", p.ID).Msg("list reviews failed")
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductDetailOutput{Product: p, Reviews: reviews}, nil
}

type AdminProductInput struct {
	Name          string
	Description   string
	Price         int64
	Discount      *int64
	Material      string
	InStock       bool
	CategoryID    *int64
	SubcategoryID *int64
	ColorVariants []model.ColorVariant
}

func (in AdminProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Discount != nil && (*in.Discount < 0 || *in.Discount > 100) {
		return NewHTTPError(http.StatusBadRequest, "discount must be 0-100")
	}
	return nil
}

// 作成。slugは名前から生成する。
func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	name := strings.TrimSpace(in.Name)

	s, err := slug.Generate(ctx, u.productRepo, name, 0)
	if err != nil {
		logger.Error().Err(err).Msg("slug generation failed")
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Name:          name,
		Slug:          s,
		Description:   in.Description,
		Price:         in.Price,
		Discount:      in.Discount,
		Material:      in.Material,
		InStock:       in.InStock,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		ColorVariants: in.ColorVariants,
	})
	if err != nil {
		logger.Error().Err(err).Msg("create product failed")
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit(ctx, adminUserID, model.AuditActionCreateProduct, p.ID, "", fmt.Sprintf(`{"slug":%q}`, p.Slug))

	return p, nil
}

// 更新。名前が変わったときだけslugを作り直す（自分自身は衝突対象から除外）。
func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	current, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	name := strings.TrimSpace(in.Name)

	newSlug := current.Slug
	if name != current.Name {
		newSlug, err = slug.Generate(ctx, u.productRepo, name, productID)
		if err != nil {
			logger.Error().Err(err).Msg("slug generation failed")
			return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	updated := model.Product{
		ID:            productID,
		Name:          name,
		Slug:          newSlug,
		Description:   in.Description,
		Price:         in.Price,
		Discount:      in.Discount,
		Material:      in.Material,
		InStock:       in.InStock,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
	}

	if err := u.productRepo.Update(ctx, updated); err != nil {
		if err == repo.ErrNotFound {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//バリエーションは全入れ替え
	if err := u.productRepo.ReplaceColorVariants(ctx, productID, in.ColorVariants); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//旧slugと新slugの両方を消す
	u.cache.Invalidate(ctx, current.Slug)
	u.cache.Invalidate(ctx, newSlug)

	u.audit(ctx, adminUserID, model.AuditActionUpdateProduct, productID,
		fmt.Sprintf(`{"name":%q,"slug":%q}`, current.Name, current.Slug),
		fmt.Sprintf(`{"name":%q,"slug":%q}`, name, newSlug))

	updated.ColorVariants = in.ColorVariants
	return updated, nil
}

// 複製。名前に「 (копия)」を付けて新規作成する。
// slugは新しい名前から作り直し、バリエーションもコピーする。
func (u *ProductUsecase) AdminCopyProduct(ctx context.Context, adminUserID int64, productID int64) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	src, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	name := src.Name + " (копия)"

	s, err := slug.Generate(ctx, u.productRepo, name, 0)
	if err != nil {
		logger.Error().Err(err).Msg("slug generation failed")
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	variants := make([]model.ColorVariant, 0, len(src.ColorVariants))
	for _, v := range src.ColorVariants {
		variants = append(variants, model.ColorVariant{Name: v.Name, Hex: v.Hex})
	}

	copied, err := u.productRepo.Create(ctx, model.Product{
		Name:          name,
		Slug:          s,
		Description:   src.Description,
		Price:         src.Price,
		Discount:      src.Discount,
		Material:      src.Material,
		InStock:       src.InStock,
		CategoryID:    src.CategoryID,
		SubcategoryID: src.SubcategoryID,
		ColorVariants: variants,
	})
	if err != nil {
		logger.Error().Err(err).Int64("source_id", productID).Msg("copy product failed")
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit(ctx, adminUserID, model.AuditActionCopyProduct, copied.ID,
		fmt.Sprintf(`{"source_id":%d}`, productID),
		fmt.Sprintf(`{"slug":%q}`, copied.Slug))

	return copied, nil
}

// id指定のまとめ取り（カート/お気に入りの表示用）。
// 空なら空で返す。見つからないidはエラーにしない。
func (u *ProductUsecase) GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	if len(ids) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "too many ids")
	}
	for _, id := range ids {
		if id <= 0 {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid product id")
		}
	}

	products, err := u.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		logger.Error().Err(err).Msg("batch find products failed")
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return products, nil
}

// 削除はdeleted_atを立てるだけ。slugは解放しない。
func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	current, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.productRepo.SoftDelete(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.cache.Invalidate(ctx, current.Slug)
	u.audit(ctx, adminUserID, model.AuditActionDeleteProduct, productID, "", "")

	return nil
}

func (u *ProductUsecase) AdminRestoreProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := u.productRepo.Restore(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit(ctx, adminUserID, model.AuditActionRestoreProduct, productID, "", "")

	return nil
}

func (u *ProductUsecase) AdminListDeletedProducts(ctx context.Context, adminUserID int64) ([]model.Product, error) {
	if adminUserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	products, err := u.productRepo.ListDeleted(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return products, nil
}

// カタログをxlsxで書き出す（管理画面のエクスポート）。
func (u *ProductUsecase) AdminExportProducts(ctx context.Context, adminUserID int64) ([]byte, error) {
	if adminUserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングせず全商品を出す
	items, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "export error")
	}

	header := sheet.AddRow()
	for _, h := range []string{"ID", "Name", "Slug", "Price", "Discount", "InStock"} {
		header.AddCell().SetString(h)
	}

	for _, p := range items {
		row := sheet.AddRow()
		row.AddCell().SetInt64(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Slug)
		row.AddCell().SetInt64(p.Price)
		if p.Discount != nil {
			row.AddCell().SetInt64(*p.Discount)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(fmt.Sprintf("%t", p.InStock))
	}

	var buf strings.Builder
	if err := file.Write(&buf); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "export error")
	}

	return []byte(buf.String()), nil
}

func (u *ProductUsecase) audit(ctx context.Context, actorID int64, action model.AuditAction, resourceID int64, before string, after string) {
	err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   resourceID,
		BeforeJSON:   before,
		AfterJSON:    after,
	})
	if err != nil {
		logger.Error().Err(err).Int64("resource_id", resourceID).Msg("audit log write failed")
	}
}
