package trackerService

import (
	"context"
	"log/slog"

	"github.com/investview/invest_tracker_api/utils"
)

// RefreshAssetsCache reloads the asset reference metadata into the cache.
// Runs as a scheduled job.
func (s *TrackerService) RefreshAssetsCache(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.RefreshAssetsCache"

	slog.Debug("RefreshAssetsCache start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshAssetsCache finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	assets, err := s.quoteApi.ListAssets(ctx)
	if err != nil {
		slog.Error("got error from quoteApi.ListAssets", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if len(assets) == 0 {
		slog.Warn("quoteApi.ListAssets returned nothing, keeping current cache", slog.String("rqID", rqID), slog.String("op", op))
		return nil
	}

	err = s.cache.SetAssets(ctx, assets)
	if err != nil {
		slog.Error("got error from cache.SetAssets", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}
