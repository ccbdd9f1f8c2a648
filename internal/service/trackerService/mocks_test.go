package trackerService

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/investview/invest_tracker_api/data/repository"
	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/investview/invest_tracker_api/internal/model/quoteModel"
	"github.com/shopspring/decimal"
)

// stubQuoteApi serves canned quotes and counts fetches per ticker.
type stubQuoteApi struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	fail   map[string]bool
	calls  map[string]int
	label  string
}

func newStubQuoteApi(prices map[string]decimal.Decimal) *stubQuoteApi {
	return &stubQuoteApi{
		prices: prices,
		fail:   make(map[string]bool),
		calls:  make(map[string]int),
		label:  "01/01/2024 12:00",
	}
}

func (s *stubQuoteApi) GetQuote(_ context.Context, ticker string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[ticker]++
	if s.fail[ticker] {
		return decimal.Zero, errors.New("provider unavailable")
	}
	price, ok := s.prices[ticker]
	if !ok {
		return decimal.Zero, errors.New("unknown ticker")
	}
	return price, nil
}

func (s *stubQuoteApi) GetQuotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error) {
	quotes := make(map[string]decimal.Decimal, len(tickers))
	for _, ticker := range tickers {
		price, err := s.GetQuote(ctx, ticker)
		if err != nil {
			return nil, err
		}
		quotes[ticker] = price
	}
	return quotes, nil
}

func (s *stubQuoteApi) ListAssets(context.Context) ([]quoteModel.AssetInfo, error) {
	return nil, nil
}

func (s *stubQuoteApi) CurrentHourLabel() string {
	return s.label
}

func (s *stubQuoteApi) callCount(ticker string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[ticker]
}

// stubCache is an in-memory Cache.
type stubCache struct {
	assets map[string]quoteModel.AssetInfo
}

func newStubCache() *stubCache {
	return &stubCache{assets: make(map[string]quoteModel.AssetInfo)}
}

func (s *stubCache) GetAsset(_ context.Context, ticker string) (quoteModel.AssetInfo, error) {
	asset, ok := s.assets[ticker]
	if !ok {
		return quoteModel.AssetInfo{}, errors.New("cache miss")
	}
	return asset, nil
}

func (s *stubCache) SetAssets(_ context.Context, assets []quoteModel.AssetInfo) error {
	for _, asset := range assets {
		s.assets[asset.Ticker] = asset
	}
	return nil
}

// stubRepository is an in-memory Repository preloaded with fixtures.
type stubRepository struct {
	lots    []model.Lot
	wallets []model.Wallet

	nextID      int64
	insertedLot *model.Lot
	err         error
}

func (s *stubRepository) GetLots(_ context.Context, userID int64) ([]model.Lot, error) {
	if s.err != nil {
		return nil, s.err
	}
	lots := make([]model.Lot, 0, len(s.lots))
	for _, lot := range s.lots {
		if lot.UserID == userID {
			lots = append(lots, lot)
		}
	}
	return lots, nil
}

func (s *stubRepository) GetLotsByWallet(ctx context.Context, userID, walletID int64) ([]model.Lot, error) {
	all, err := s.GetLots(ctx, userID)
	if err != nil {
		return nil, err
	}
	lots := make([]model.Lot, 0, len(all))
	for _, lot := range all {
		if lot.WalletID == walletID {
			lots = append(lots, lot)
		}
	}
	return lots, nil
}

func (s *stubRepository) GetLot(_ context.Context, lotID, userID int64) (model.Lot, error) {
	if s.err != nil {
		return model.Lot{}, s.err
	}
	for _, lot := range s.lots {
		if lot.LotID == lotID && lot.UserID == userID {
			return lot, nil
		}
	}
	return model.Lot{}, s.notFound()
}

func (s *stubRepository) InsertLot(_ context.Context, lot model.Lot) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	lot.LotID = s.nextID
	s.insertedLot = &lot
	s.lots = append(s.lots, lot)
	return lot.LotID, nil
}

func (s *stubRepository) UpdateLot(context.Context, model.Lot) error { return s.err }

func (s *stubRepository) CloseLot(context.Context, int64, int64, time.Time, decimal.Decimal) error {
	return s.err
}

func (s *stubRepository) ReopenLot(context.Context, int64, int64) error { return s.err }

func (s *stubRepository) DeleteLot(context.Context, int64, int64) error { return s.err }

func (s *stubRepository) GetDividends(context.Context, int64, int64) ([]model.Dividend, error) {
	return nil, s.err
}

func (s *stubRepository) InsertDividend(context.Context, model.Dividend) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	return s.nextID, nil
}

func (s *stubRepository) DeleteDividend(context.Context, int64, int64) error { return s.err }

func (s *stubRepository) GetWallets(_ context.Context, userID int64) ([]model.Wallet, error) {
	if s.err != nil {
		return nil, s.err
	}
	wallets := make([]model.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		if w.UserID == userID {
			wallets = append(wallets, w)
		}
	}
	return wallets, nil
}

func (s *stubRepository) GetWallet(_ context.Context, walletID, userID int64) (model.Wallet, error) {
	if s.err != nil {
		return model.Wallet{}, s.err
	}
	for _, w := range s.wallets {
		if w.WalletID == walletID && w.UserID == userID {
			return w, nil
		}
	}
	return model.Wallet{}, s.notFound()
}

func (s *stubRepository) InsertWallet(_ context.Context, name string, userID int64) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	for _, w := range s.wallets {
		if w.UserID == userID && w.Name == name {
			return 0, s.alreadyExists()
		}
	}
	s.nextID++
	s.wallets = append(s.wallets, model.Wallet{WalletID: s.nextID, Name: name, UserID: userID})
	return s.nextID, nil
}

func (s *stubRepository) RenameWallet(context.Context, int64, int64, string) error { return s.err }

func (s *stubRepository) DeleteWallet(context.Context, int64, int64) error { return s.err }

func (s *stubRepository) notFound() error      { return repository.ErrNotFound }
func (s *stubRepository) alreadyExists() error { return repository.ErrAlreadyExists }
