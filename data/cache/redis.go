package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/investview/invest_tracker_api/config"
	"github.com/investview/invest_tracker_api/internal/model/quoteModel"
	"github.com/investview/invest_tracker_api/utils"
	"github.com/redis/go-redis/v9"
)

const assetKeyPrefix = "asset:"

// RedisCache stores asset reference metadata (ticker, display name, type)
// with a TTL. Quotes are deliberately not cached here: every aggregation
// pass fetches fresh prices.
type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetAssets(ctx context.Context, assets []quoteModel.AssetInfo) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetAssets start", slog.String("rqID", rqID))

	pipe := r.redis.Pipeline()
	for _, asset := range assets {
		assetJson, err := json.Marshal(asset)
		if err != nil {
			slog.Error(
				"can't marshall asset in SetAssets",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.Any("asset", asset),
			)
			return errors.New("can't marshall asset")
		}

		pipe.Set(ctx, assetKeyPrefix+asset.Ticker, assetJson, r.cfg.Cache.AssetsExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetAssets completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetAsset(ctx context.Context, ticker string) (quoteModel.AssetInfo, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetAsset start", slog.String("rqID", rqID))

	res, err := r.redis.Get(ctx, assetKeyPrefix+ticker).Result()
	if err != nil {
		slog.Warn("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", ticker))
		return quoteModel.AssetInfo{}, err
	}

	asset := quoteModel.AssetInfo{}
	err = json.Unmarshal([]byte(res), &asset)
	if err != nil {
		slog.Error(
			"can't unmarshall asset in GetAsset",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return quoteModel.AssetInfo{}, errors.New("can't unmarshall asset")
	}

	slog.Debug("GetAsset finished", slog.String("rqID", rqID))

	return asset, nil
}
