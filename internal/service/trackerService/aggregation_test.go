package trackerService

import (
	"context"
	"testing"

	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestService(quoteApi QuoteApi, repo Repository) *TrackerService {
	if repo == nil {
		repo = &stubRepository{}
	}
	return New(nil, repo, newStubCache(), quoteApi, nil)
}

func TestGroupLotsPartition(t *testing.T) {
	lots := []model.Lot{
		openLot("PETR4", 1, "10", "30"),
		openLot("PETR4", 2, "5", "28"),
		openLot("PETR4", 1, "3", "31"),
		openLot("HGLG11", 1, "2", "160"),
	}

	keys, groups := groupLots(lots)

	require.Equal(t, []model.GroupKey{
		{Ticker: "PETR4", WalletID: 1},
		{Ticker: "PETR4", WalletID: 2},
		{Ticker: "HGLG11", WalletID: 1},
	}, keys)

	// every lot lands in exactly one group
	total := 0
	for _, key := range keys {
		total += len(groups[key])
	}
	require.Equal(t, len(lots), total)
	require.Len(t, groups[model.GroupKey{Ticker: "PETR4", WalletID: 1}], 2)
}

func TestRunAggregationConsolidated(t *testing.T) {
	quoteApi := newStubQuoteApi(map[string]decimal.Decimal{
		"PETR4":  d("35"),
		"HGLG11": d("170"),
	})
	srv := newTestService(quoteApi, nil)

	lots := []model.Lot{
		withType(openLot("PETR4", 1, "10", "30"), model.AssetAcao),
		withType(openLot("PETR4", 1, "10", "32"), model.AssetAcao),
		withType(openLot("HGLG11", 1, "2", "160"), model.AssetFII),
	}
	wallets := []model.Wallet{{WalletID: 1, Name: "Principal"}}

	overview := srv.RunAggregation(context.Background(), lots, wallets, model.AggregationRequest{
		Consolidate: true,
		GroupMode:   model.GroupByAsset,
	})

	require.Len(t, overview.Positions, 2)
	require.Equal(t, "01/01/2024 12:00", overview.PricesUpdatedAt)

	petr := overview.Positions[0]
	require.Equal(t, model.KindConsolidatedActive, petr.Kind)
	require.True(t, petr.Quantity.Equal(d("20")))
	require.True(t, petr.BuyPrice.Equal(d("31")))
	require.True(t, petr.Valuation.TotalInvested.Equal(d("620")))
	require.True(t, petr.Valuation.CurrentValue.Equal(d("700")))
	require.True(t, petr.Valuation.TotalProfit.Equal(d("80")))

	// one fetch per distinct ticker, not per lot
	require.Equal(t, 1, quoteApi.callCount("PETR4"))
	require.Equal(t, 1, quoteApi.callCount("HGLG11"))

	// series by asset covers the same value mass as the active positions
	require.Len(t, overview.Series, 2)
	seriesTotal := decimal.Zero
	for _, point := range overview.Series {
		seriesTotal = seriesTotal.Add(point.Value)
	}
	require.True(t, seriesTotal.Equal(overview.Metrics.CurrentValue))
}

func TestRunAggregationRawLots(t *testing.T) {
	quoteApi := newStubQuoteApi(map[string]decimal.Decimal{"PETR4": d("35")})
	srv := newTestService(quoteApi, nil)

	first := openLot("PETR4", 1, "10", "30")
	first.LotID = 1
	first.Price = d("99") // stale stored price must be overwritten
	second := openLot("PETR4", 1, "5", "32")
	second.LotID = 2

	overview := srv.RunAggregation(context.Background(), []model.Lot{first, second}, nil, model.AggregationRequest{
		Consolidate: false,
		GroupMode:   model.GroupByAsset,
	})

	require.Len(t, overview.Positions, 2)
	require.Equal(t, model.KindLot, overview.Positions[0].Kind)
	require.Equal(t, "lot-1", overview.Positions[0].RefID())
	require.Equal(t, "lot-2", overview.Positions[1].RefID())
	require.True(t, overview.Positions[0].Price.Equal(d("35")))
	require.Equal(t, 1, quoteApi.callCount("PETR4"))
}

func TestRunAggregationQuoteFailureIsolated(t *testing.T) {
	quoteApi := newStubQuoteApi(map[string]decimal.Decimal{"PETR4": d("35")})
	quoteApi.fail["XYZW3"] = true
	srv := newTestService(quoteApi, nil)

	lots := []model.Lot{
		openLot("PETR4", 1, "10", "30"),
		openLot("XYZW3", 1, "5", "10"),
	}

	overview := srv.RunAggregation(context.Background(), lots, nil, model.AggregationRequest{
		Consolidate: true,
		GroupMode:   model.GroupByAsset,
	})

	require.Len(t, overview.Positions, 2)

	// the healthy ticker keeps its real quote; the failed one is valued at zero
	require.True(t, overview.Positions[0].Valuation.CurrentValue.Equal(d("350")))
	require.True(t, overview.Positions[1].Valuation.CurrentValue.IsZero())
	require.True(t, overview.Positions[1].Valuation.TotalProfit.Equal(d("-50")))
}

func TestRunAggregationDeterministic(t *testing.T) {
	quoteApi := newStubQuoteApi(map[string]decimal.Decimal{
		"PETR4":  d("35"),
		"HGLG11": d("170"),
	})
	srv := newTestService(quoteApi, nil)

	lots := []model.Lot{
		openLot("PETR4", 1, "10", "30"),
		soldLot("PETR4", 2, "5", "28", "33", "2023-06-01"),
		openLot("HGLG11", 1, "2", "160"),
	}
	wallets := []model.Wallet{{WalletID: 1, Name: "Principal"}, {WalletID: 2, Name: "Especulação"}}
	req := model.AggregationRequest{Consolidate: true, GroupMode: model.GroupByWallet}

	first := srv.RunAggregation(context.Background(), lots, wallets, req)
	second := srv.RunAggregation(context.Background(), lots, wallets, req)

	require.Equal(t, first, second)
}

func TestFilterPositionsSearchAndType(t *testing.T) {
	positions := []model.Position{
		{Key: model.GroupKey{Ticker: "PETR4"}, Name: "Petrobras", Type: model.AssetAcao},
		{Key: model.GroupKey{Ticker: "HGLG11"}, Name: "CSHG Logística", Type: model.AssetFII},
		{Key: model.GroupKey{Ticker: "BOVA11"}, Name: "iShares Ibovespa", Type: model.AssetETF},
	}

	require.Len(t, filterPositions(positions, "", ""), 3)
	require.Len(t, filterPositions(positions, "", model.TypeFilterAll), 3)

	// search is case-insensitive over ticker and name
	byTicker := filterPositions(positions, "petr", model.TypeFilterAll)
	require.Len(t, byTicker, 1)
	require.Equal(t, "PETR4", byTicker[0].Key.Ticker)

	byName := filterPositions(positions, "logística", model.TypeFilterAll)
	require.Len(t, byName, 1)
	require.Equal(t, "HGLG11", byName[0].Key.Ticker)

	byType := filterPositions(positions, "", string(model.AssetFII))
	require.Len(t, byType, 1)
	require.Equal(t, "HGLG11", byType[0].Key.Ticker)

	// both filters compose
	require.Empty(t, filterPositions(positions, "petr", string(model.AssetFII)))
}

func TestGetPortfolioOverviewScopesByWallet(t *testing.T) {
	repo := &stubRepository{
		lots: []model.Lot{
			withUser(openLot("PETR4", 1, "10", "30"), 7),
			withUser(openLot("HGLG11", 2, "2", "160"), 7),
			withUser(openLot("PETR4", 1, "99", "30"), 8), // another user's lot
		},
		wallets: []model.Wallet{
			{WalletID: 1, Name: "Principal", UserID: 7},
			{WalletID: 2, Name: "FIIs", UserID: 7},
		},
	}
	quoteApi := newStubQuoteApi(map[string]decimal.Decimal{"PETR4": d("35"), "HGLG11": d("170")})
	srv := newTestService(quoteApi, repo)

	all, err := srv.GetPortfolioOverview(context.Background(), 7, nil, model.AggregationRequest{Consolidate: true})
	require.NoError(t, err)
	require.Len(t, all.Positions, 2)

	walletID := int64(1)
	scoped, err := srv.GetPortfolioOverview(context.Background(), 7, &walletID, model.AggregationRequest{Consolidate: true})
	require.NoError(t, err)
	require.Len(t, scoped.Positions, 1)
	require.Equal(t, "PETR4", scoped.Positions[0].Key.Ticker)
	require.True(t, scoped.Positions[0].Quantity.Equal(d("10")))
}

func withType(lot model.Lot, assetType model.AssetType) model.Lot {
	lot.Type = assetType
	return lot
}

func withUser(lot model.Lot, userID int64) model.Lot {
	lot.UserID = userID
	return lot
}
