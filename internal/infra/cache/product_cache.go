package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"app/internal/domain/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const productTTL = 10 * time.Minute

// ProductCache は商品詳細（slug引き）のread-throughキャッシュ。
// 管理側の書き込みでInvalidateする。
type ProductCache struct {
	rdb *redis.Client
}

func NewProductCache(rdb *redis.Client) *ProductCache {
	return &ProductCache{rdb: rdb}
}

func productKey(slug string) string {
	return fmt.Sprintf("product:slug:%s", slug)
}

// GetBySlug はキャッシュヒット時に商品とtrueを返す。
// redisのエラーはミス扱いにしてDBへフォールバックさせる。
func (c *ProductCache) GetBySlug(ctx context.Context, slug string) (model.Product, bool) {
	raw, err := c.rdb.Get(ctx, productKey(slug)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Str("slug", slug).Msg("product cache read failed")
		}
		return model.Product{}, false
	}

	var p model.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		logger.Error().Err(err).Str("slug", slug).Msg("product cache unmarshal failed")
		return model.Product{}, false
	}

	return p, true
}

func (c *ProductCache) Set(ctx context.Context, p model.Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, productKey(p.Slug), raw, productTTL).Err(); err != nil {
		logger.Error().Err(err).Str("slug", p.Slug).Msg("product cache write failed")
	}
}

func (c *ProductCache) Invalidate(ctx context.Context, slug string) {
	if slug == "" {
		return
	}
	if err := c.rdb.Del(ctx, productKey(slug)).Err(); err != nil {
		logger.Error().Err(err).Str("slug", slug).Msg("product cache invalidate failed")
	}
}
