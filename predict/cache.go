package predict

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/internal/observability"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
	"github.com/YuminosukeSato/housepricer/pkg/log"
)

// DefaultCacheTTL は予測結果をキャッシュに保持する既定の期間
const DefaultCacheTTL = 15 * time.Minute

const keyPrefix = "housepricer:predict:"

// Cache は Redis に予測結果を保存する
type Cache struct {
	c   *redis.Client
	ttl time.Duration
}

// NewCache は Redis への接続設定から Cache を作る
func NewCache(addr, pass string, db int, ttl time.Duration) *Cache {
	return NewCacheFromClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), ttl)
}

// NewCacheFromClient は既存のクライアントを使う Cache を作る
func NewCacheFromClient(c *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{c: c, ttl: ttl}
}

// Get はキーに対応する価格を返す。存在しなければ false
func (r *Cache) Get(ctx context.Context, key string) (float64, bool, error) {
	v, err := r.c.Get(ctx, key).Float64()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return 0, false, nil
	}
	if err != nil {
		observability.ObserveCache("redis", "error")
		return 0, false, err
	}
	observability.ObserveCache("redis", "hit")
	return v, true, nil
}

// Set は価格を TTL 付きで保存する
func (r *Cache) Set(ctx context.Context, key string, price float64) error {
	if err := r.c.Set(ctx, key, price, r.ttl).Err(); err != nil {
		observability.ObserveCache("redis", "error")
		return err
	}
	observability.ObserveCache("redis", "set")
	return nil
}

// Close は Redis との接続を閉じる
func (r *Cache) Close() error { return r.c.Close() }

// CacheKey はモデル ID とレコードのダイジェストからキーを作る
//
// 同じ成果物に同じレコードを渡したときだけ同じキーになります。
// JSON のオブジェクトのキーは辞書順に並ぶため、マップの反復順には依存しません。
func CacheKey(modelID string, rec dataset.Record) (string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return "", errors.Wrap(err, "encode record")
	}
	sum := sha256.Sum256(b)
	return keyPrefix + modelID + ":" + hex.EncodeToString(sum[:]), nil
}

// CachedPredictor は Predictor の結果を Redis にキャッシュする
//
// キャッシュの読み書きに失敗しても予測は失敗させず、元の Predictor の結果を返します。
// 失敗した予測はキャッシュしません。
type CachedPredictor struct {
	Predictor
	cache  *Cache
	logger log.Logger
}

// NewCachedPredictor は p を cache で包む
func NewCachedPredictor(p Predictor, cache *Cache) *CachedPredictor {
	return &CachedPredictor{Predictor: p, cache: cache, logger: log.GetLoggerWithName("predict.cache")}
}

// Predict はキャッシュを引き、なければ元の Predictor で推定して保存する
func (p *CachedPredictor) Predict(ctx context.Context, rec dataset.Record) (float64, error) {
	info, ok := p.Info()
	if !ok {
		return p.Predictor.Predict(ctx, rec)
	}
	key, err := CacheKey(info.ID, rec)
	if err != nil {
		return p.Predictor.Predict(ctx, rec)
	}

	price, hit, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Debug("Prediction cache read failed", err)
	} else if hit {
		return price, nil
	}

	price, err = p.Predictor.Predict(ctx, rec)
	if err != nil {
		return 0, err
	}
	if err := p.cache.Set(ctx, key, price); err != nil {
		p.logger.Debug("Prediction cache write failed", err)
	}
	return price, nil
}
