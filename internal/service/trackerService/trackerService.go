package trackerService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/investview/invest_tracker_api/config"
	"github.com/investview/invest_tracker_api/data/repository"
	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/investview/invest_tracker_api/internal/model/quoteModel"
	"github.com/investview/invest_tracker_api/internal/service"
	"github.com/investview/invest_tracker_api/utils"
	"github.com/shopspring/decimal"
)

type QuoteApi interface {
	GetQuote(ctx context.Context, ticker string) (decimal.Decimal, error)
	GetQuotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error)
	ListAssets(ctx context.Context) ([]quoteModel.AssetInfo, error)
	CurrentHourLabel() string
}

type Cache interface {
	GetAsset(ctx context.Context, ticker string) (quoteModel.AssetInfo, error)
	SetAssets(ctx context.Context, assets []quoteModel.AssetInfo) error
}

type Repository interface {
	GetLots(ctx context.Context, userID int64) ([]model.Lot, error)
	GetLotsByWallet(ctx context.Context, userID, walletID int64) ([]model.Lot, error)
	GetLot(ctx context.Context, lotID, userID int64) (model.Lot, error)
	InsertLot(ctx context.Context, lot model.Lot) (lotID int64, err error)
	UpdateLot(ctx context.Context, lot model.Lot) error
	CloseLot(ctx context.Context, lotID, userID int64, sellDate time.Time, sellPrice decimal.Decimal) error
	ReopenLot(ctx context.Context, lotID, userID int64) error
	DeleteLot(ctx context.Context, lotID, userID int64) error
	GetDividends(ctx context.Context, lotID, userID int64) ([]model.Dividend, error)
	InsertDividend(ctx context.Context, dividend model.Dividend) (dividendID int64, err error)
	DeleteDividend(ctx context.Context, dividendID, userID int64) error
	GetWallets(ctx context.Context, userID int64) ([]model.Wallet, error)
	GetWallet(ctx context.Context, walletID, userID int64) (model.Wallet, error)
	InsertWallet(ctx context.Context, name string, userID int64) (walletID int64, err error)
	RenameWallet(ctx context.Context, walletID, userID int64, name string) error
	DeleteWallet(ctx context.Context, walletID, userID int64) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, overview model.PortfolioOverview, wallets []model.Wallet) (fileBytes []byte, fileExtension string, err error)
}

type TrackerService struct {
	cfg             *config.Config
	repo            Repository
	cache           Cache
	quoteApi        QuoteApi
	reportGenerator ReportGenerator
}

func New(cfg *config.Config, repo Repository, cache Cache, quoteApi QuoteApi, reportGenerator ReportGenerator) *TrackerService {
	return &TrackerService{
		cfg:             cfg,
		repo:            repo,
		cache:           cache,
		quoteApi:        quoteApi,
		reportGenerator: reportGenerator,
	}
}

func validateLot(lot model.Lot) error {
	if lot.Ticker == "" {
		return fmt.Errorf("%w: ticker is required", service.ErrValidation)
	}
	if !lot.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", service.ErrValidation)
	}
	if !lot.BuyPrice.IsPositive() {
		return fmt.Errorf("%w: buy price must be positive", service.ErrValidation)
	}
	if (lot.SellDate == nil) != (lot.SellPrice == nil) {
		return fmt.Errorf("%w: sell date and sell price must be set together", service.ErrValidation)
	}
	if lot.SellPrice != nil && lot.SellPrice.IsNegative() {
		return fmt.Errorf("%w: sell price can't be negative", service.ErrValidation)
	}
	return nil
}

func (s *TrackerService) CreateLot(ctx context.Context, lot model.Lot) (model.Lot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.CreateLot"

	slog.Debug("CreateLot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", lot.Ticker))
	defer func() {
		slog.Debug("CreateLot finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", lot.Ticker))
	}()

	if err := validateLot(lot); err != nil {
		return model.Lot{}, err
	}

	s.fillAssetDetails(ctx, &lot)

	if _, err := s.repo.GetWallet(ctx, lot.WalletID, lot.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Lot{}, fmt.Errorf("%w: wallet %d", service.ErrNotFound, lot.WalletID)
		}
		slog.Error("got error from repo.GetWallet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Lot{}, err
	}

	lotID, err := s.repo.InsertLot(ctx, lot)
	if err != nil {
		slog.Error("got error from repo.InsertLot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		if errors.Is(err, repository.ErrNotFound) {
			return model.Lot{}, service.ErrNotFound
		}
		return model.Lot{}, err
	}

	lot.LotID = lotID
	return lot, nil
}

func (s *TrackerService) UpdateLot(ctx context.Context, lot model.Lot) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.UpdateLot"

	slog.Debug("UpdateLot start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", lot.LotID))
	defer func() {
		slog.Debug("UpdateLot finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", lot.LotID))
	}()

	if err := validateLot(lot); err != nil {
		return err
	}

	err := s.repo.UpdateLot(ctx, lot)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.UpdateLot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *TrackerService) SellLot(ctx context.Context, lotID, userID int64, sellDate time.Time, sellPrice decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.SellLot"

	slog.Debug("SellLot start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", lotID))
	defer func() {
		slog.Debug("SellLot finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", lotID))
	}()

	if sellPrice.IsNegative() {
		return fmt.Errorf("%w: sell price can't be negative", service.ErrValidation)
	}
	if sellDate.IsZero() {
		return fmt.Errorf("%w: sell date is required", service.ErrValidation)
	}

	err := s.repo.CloseLot(ctx, lotID, userID, sellDate, sellPrice)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.CloseLot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *TrackerService) ReopenLot(ctx context.Context, lotID, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.ReopenLot"

	slog.Debug("ReopenLot start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", lotID))
	defer func() {
		slog.Debug("ReopenLot finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", lotID))
	}()

	err := s.repo.ReopenLot(ctx, lotID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.ReopenLot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *TrackerService) DeleteLot(ctx context.Context, lotID, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.DeleteLot"

	slog.Debug("DeleteLot start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", lotID))
	defer func() {
		slog.Debug("DeleteLot finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", lotID))
	}()

	err := s.repo.DeleteLot(ctx, lotID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteLot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *TrackerService) GetDividends(ctx context.Context, lotID, userID int64) ([]model.Dividend, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.GetDividends"

	slog.Debug("GetDividends start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", lotID))
	defer func() {
		slog.Debug("GetDividends finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", lotID))
	}()

	dividends, err := s.repo.GetDividends(ctx, lotID, userID)
	if err != nil {
		slog.Error("got error from repo.GetDividends", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return dividends, nil
}

func (s *TrackerService) CreateDividend(ctx context.Context, userID int64, dividend model.Dividend) (model.Dividend, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.CreateDividend"

	slog.Debug("CreateDividend start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", dividend.LotID))
	defer func() {
		slog.Debug("CreateDividend finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("lotID", dividend.LotID))
	}()

	if dividend.Date.IsZero() {
		return model.Dividend{}, fmt.Errorf("%w: dividend date is required", service.ErrValidation)
	}

	// the lot must belong to the requesting user
	if _, err := s.repo.GetLot(ctx, dividend.LotID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Dividend{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetLot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Dividend{}, err
	}

	dividendID, err := s.repo.InsertDividend(ctx, dividend)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Dividend{}, service.ErrNotFound
		}
		slog.Error("got error from repo.InsertDividend", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Dividend{}, err
	}

	dividend.DividendID = dividendID
	return dividend, nil
}

func (s *TrackerService) DeleteDividend(ctx context.Context, dividendID, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.DeleteDividend"

	slog.Debug("DeleteDividend start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("dividendID", dividendID))
	defer func() {
		slog.Debug("DeleteDividend finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("dividendID", dividendID))
	}()

	err := s.repo.DeleteDividend(ctx, dividendID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteDividend", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *TrackerService) GetWallets(ctx context.Context, userID int64) ([]model.Wallet, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.GetWallets"

	slog.Debug("GetWallets start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetWallets finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	wallets, err := s.repo.GetWallets(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetWallets", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return wallets, nil
}

func (s *TrackerService) CreateWallet(ctx context.Context, name string, userID int64) (model.Wallet, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.CreateWallet"

	slog.Debug("CreateWallet start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name))
	defer func() {
		slog.Debug("CreateWallet finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name))
	}()

	if name == "" {
		return model.Wallet{}, fmt.Errorf("%w: wallet name is required", service.ErrValidation)
	}

	walletID, err := s.repo.InsertWallet(ctx, name, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.Wallet{}, service.ErrAlreadyExists
		}
		slog.Error("got error from repo.InsertWallet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Wallet{}, err
	}

	return model.Wallet{WalletID: walletID, Name: name, UserID: userID}, nil
}

func (s *TrackerService) RenameWallet(ctx context.Context, walletID, userID int64, name string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.RenameWallet"

	slog.Debug("RenameWallet start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("walletID", walletID))
	defer func() {
		slog.Debug("RenameWallet finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("walletID", walletID))
	}()

	if name == "" {
		return fmt.Errorf("%w: wallet name is required", service.ErrValidation)
	}

	err := s.repo.RenameWallet(ctx, walletID, userID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.RenameWallet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *TrackerService) DeleteWallet(ctx context.Context, walletID, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.DeleteWallet"

	slog.Debug("DeleteWallet start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("walletID", walletID))
	defer func() {
		slog.Debug("DeleteWallet finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("walletID", walletID))
	}()

	err := s.repo.DeleteWallet(ctx, walletID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteWallet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// fillAssetDetails completes name and asset type from the reference cache
// when the client sent only a ticker. A cache miss is not an error.
func (s *TrackerService) fillAssetDetails(ctx context.Context, lot *model.Lot) {
	if lot.Name != "" && lot.Type != "" {
		return
	}

	rqID := utils.GetRequestIDFromCtx(ctx)

	asset, err := s.cache.GetAsset(ctx, lot.Ticker)
	if err != nil {
		slog.Warn("can't get asset info from cache", slog.String("rqID", rqID), slog.String("ticker", lot.Ticker), slog.String("err", err.Error()))
		return
	}

	if lot.Name == "" {
		lot.Name = asset.Name
	}
	if lot.Type == "" {
		lot.Type = model.AssetType(asset.Type)
	}
}
