package trackerService

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/investview/invest_tracker_api/utils"
	"github.com/shopspring/decimal"
)

// GetPortfolioOverview fetches a fresh snapshot of the user's lots and
// wallets and runs one aggregation pass over it. walletID narrows the
// snapshot to a single wallet.
func (s *TrackerService) GetPortfolioOverview(ctx context.Context, userID int64, walletID *int64, req model.AggregationRequest) (model.PortfolioOverview, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.GetPortfolioOverview"

	slog.Debug("GetPortfolioOverview start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetPortfolioOverview finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	var lots []model.Lot
	var err error
	if walletID != nil {
		lots, err = s.repo.GetLotsByWallet(ctx, userID, *walletID)
	} else {
		lots, err = s.repo.GetLots(ctx, userID)
	}
	if err != nil {
		slog.Error("can't fetch lots", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioOverview{}, err
	}

	wallets, err := s.repo.GetWallets(ctx, userID)
	if err != nil {
		slog.Error("can't fetch wallets", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioOverview{}, err
	}

	return s.RunAggregation(ctx, lots, wallets, req), nil
}

// RunAggregation is one aggregation pass: quote fetch, consolidation (or
// raw pass-through), filtering, valuation, portfolio metrics and chart
// series. Deterministic for a fixed lot/wallet snapshot and quote set.
func (s *TrackerService) RunAggregation(ctx context.Context, lots []model.Lot, wallets []model.Wallet, req model.AggregationRequest) model.PortfolioOverview {
	quotes := s.fetchQuotes(ctx, distinctTickers(lots))

	var positions []model.Position
	if req.Consolidate {
		keys, groups := groupLots(lots)
		positions = make([]model.Position, 0, len(keys))
		for _, key := range keys {
			if pos, ok := consolidateGroup(key, groups[key], quotes[key.Ticker]); ok {
				positions = append(positions, pos)
			}
		}
	} else {
		positions = make([]model.Position, 0, len(lots))
		for _, lot := range lots {
			positions = append(positions, positionFromLot(lot, quotes[lot.Ticker]))
		}
	}

	positions = filterPositions(positions, req.Search, req.TypeFilter)

	for i := range positions {
		positions[i].Valuation = valuate(positions[i])
	}

	return model.PortfolioOverview{
		Positions:       positions,
		Metrics:         portfolioMetrics(positions),
		Series:          chartSeries(req.GroupMode, positions, wallets),
		PricesUpdatedAt: s.quoteApi.CurrentHourLabel(),
	}
}

// fetchQuotes is the per-pass quote cache: one concurrent fetch per
// distinct ticker. A failed fetch values the ticker at zero so a provider
// outage on one paper never takes down the whole portfolio view.
func (s *TrackerService) fetchQuotes(ctx context.Context, tickers []string) map[string]decimal.Decimal {
	rqID := utils.GetRequestIDFromCtx(ctx)

	quotes := make(map[string]decimal.Decimal, len(tickers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ticker := range tickers {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()

			price, err := s.quoteApi.GetQuote(ctx, ticker)
			if err != nil {
				slog.Warn(
					"quote fetch failed, valuing ticker at zero",
					slog.String("rqID", rqID),
					slog.String("ticker", ticker),
					slog.String("err", err.Error()),
				)
				price = decimal.Zero
			}

			mu.Lock()
			quotes[ticker] = price
			mu.Unlock()
		}(ticker)
	}

	wg.Wait()

	return quotes
}

func distinctTickers(lots []model.Lot) []string {
	seen := make(map[string]struct{}, len(lots))
	tickers := make([]string, 0, len(lots))
	for _, lot := range lots {
		if _, ok := seen[lot.Ticker]; ok {
			continue
		}
		seen[lot.Ticker] = struct{}{}
		tickers = append(tickers, lot.Ticker)
	}
	return tickers
}

// groupLots partitions lots by (ticker, wallet). Every lot lands in
// exactly one group; first-seen key order is preserved.
func groupLots(lots []model.Lot) ([]model.GroupKey, map[model.GroupKey][]model.Lot) {
	keys := make([]model.GroupKey, 0)
	groups := make(map[model.GroupKey][]model.Lot)

	for _, lot := range lots {
		key := model.GroupKey{Ticker: lot.Ticker, WalletID: lot.WalletID}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], lot)
	}

	return keys, groups
}

// positionFromLot is the consolidation-off path: the raw lot, with its
// price overwritten by the freshly fetched quote.
func positionFromLot(lot model.Lot, price decimal.Decimal) model.Position {
	return model.Position{
		Kind:      model.KindLot,
		LotID:     lot.LotID,
		Key:       model.GroupKey{Ticker: lot.Ticker, WalletID: lot.WalletID},
		Name:      lot.Name,
		Type:      lot.Type,
		WalletID:  lot.WalletID,
		Quantity:  lot.Quantity,
		BuyPrice:  lot.BuyPrice,
		SellDate:  lot.SellDate,
		SellPrice: lot.SellPrice,
		Price:     price,
		Dividends: lot.Dividends,
	}
}

// filterPositions keeps entries matching the case-insensitive search over
// ticker or name and the exact asset-type filter ("all" disables it).
func filterPositions(positions []model.Position, search, typeFilter string) []model.Position {
	search = strings.ToLower(strings.TrimSpace(search))
	filterAll := typeFilter == "" || typeFilter == model.TypeFilterAll

	filtered := make([]model.Position, 0, len(positions))
	for _, p := range positions {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Key.Ticker), search) &&
			!strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if !filterAll && string(p.Type) != typeFilter {
			continue
		}
		filtered = append(filtered, p)
	}

	return filtered
}
