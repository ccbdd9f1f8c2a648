package trackerService

import (
	"context"
	"log/slog"

	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/investview/invest_tracker_api/utils"
)

// GeneratePortfolioReport runs an aggregation pass and renders it as a
// downloadable spreadsheet.
func (s *TrackerService) GeneratePortfolioReport(ctx context.Context, userID int64, walletID *int64, req model.AggregationRequest) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.GeneratePortfolioReport"

	slog.Debug("GeneratePortfolioReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GeneratePortfolioReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	overview, err := s.GetPortfolioOverview(ctx, userID, walletID, req)
	if err != nil {
		return nil, "", err
	}

	wallets, err := s.repo.GetWallets(ctx, userID)
	if err != nil {
		slog.Error("can't fetch wallets", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	fileBytes, fileExtension, err = s.reportGenerator.Generate(ctx, overview, wallets)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	return fileBytes, fileExtension, nil
}
