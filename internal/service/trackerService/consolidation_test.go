package trackerService

import (
	"testing"
	"time"

	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func soldLot(ticker string, walletID int64, quantity, buyPrice, sellPrice string, sellDate string) model.Lot {
	sd := date(sellDate)
	sp := d(sellPrice)
	return model.Lot{
		Ticker:    ticker,
		Quantity:  d(quantity),
		BuyPrice:  d(buyPrice),
		SellDate:  &sd,
		SellPrice: &sp,
		WalletID:  walletID,
	}
}

func openLot(ticker string, walletID int64, quantity, buyPrice string) model.Lot {
	return model.Lot{
		Ticker:   ticker,
		Quantity: d(quantity),
		BuyPrice: d(buyPrice),
		WalletID: walletID,
	}
}

func TestConsolidateGroupFullyClosed(t *testing.T) {
	key := model.GroupKey{Ticker: "PETR4", WalletID: 1}
	lots := []model.Lot{
		soldLot("PETR4", 1, "10", "100", "110", "2023-03-01"),
		soldLot("PETR4", 1, "5", "200", "190", "2023-01-15"),
	}

	pos, ok := consolidateGroup(key, lots, d("33"))

	require.True(t, ok)
	require.Equal(t, model.KindConsolidatedSold, pos.Kind)
	require.True(t, pos.IsSold())
	require.True(t, pos.Quantity.Equal(d("15")))

	// weighted averages: (10*100 + 5*200) / 15 and (10*110 + 5*190) / 15
	require.True(t, pos.BuyPrice.Equal(d("2000").Div(d("15"))), "avg buy price, got %s", pos.BuyPrice)
	require.NotNil(t, pos.SellPrice)
	require.True(t, pos.SellPrice.Equal(d("2050").Div(d("15"))), "avg sell price, got %s", pos.SellPrice)

	// most recent sell date wins
	require.NotNil(t, pos.SellDate)
	require.Equal(t, date("2023-03-01"), *pos.SellDate)

	require.Equal(t, "consolidated-sold-PETR4-1", pos.RefID())
}

func TestConsolidateGroupMixedDropsSoldLots(t *testing.T) {
	key := model.GroupKey{Ticker: "HGLG11", WalletID: 2}
	lots := []model.Lot{
		openLot("HGLG11", 2, "10", "100"),
		soldLot("HGLG11", 2, "5", "90", "95", "2023-01-01"),
	}

	pos, ok := consolidateGroup(key, lots, d("120"))

	require.True(t, ok)
	require.Equal(t, model.KindConsolidatedActive, pos.Kind)
	require.False(t, pos.IsSold())
	require.True(t, pos.Quantity.Equal(d("10")))
	require.True(t, pos.BuyPrice.Equal(d("100")))
	require.Nil(t, pos.SellDate)
	require.Nil(t, pos.SellPrice)
	require.True(t, pos.Price.Equal(d("120")))
	require.Equal(t, "consolidated-active-HGLG11-2", pos.RefID())
}

func TestConsolidateGroupOpenLotsAveraged(t *testing.T) {
	key := model.GroupKey{Ticker: "BOVA11", WalletID: 1}
	lots := []model.Lot{
		openLot("BOVA11", 1, "4", "80"),
		openLot("BOVA11", 1, "6", "120"),
	}

	pos, ok := consolidateGroup(key, lots, d("100"))

	require.True(t, ok)
	require.True(t, pos.Quantity.Equal(d("10")))
	// (4*80 + 6*120) / 10 = 104
	require.True(t, pos.BuyPrice.Equal(d("104")))
}

func TestConsolidateGroupConcatsDividendsWithoutDedup(t *testing.T) {
	div := model.Dividend{Amount: d("1.5"), Date: date("2023-02-01")}
	first := openLot("ITSA4", 1, "10", "9")
	first.Dividends = []model.Dividend{div, div}
	second := openLot("ITSA4", 1, "10", "10")
	second.Dividends = []model.Dividend{div}

	pos, ok := consolidateGroup(model.GroupKey{Ticker: "ITSA4", WalletID: 1}, []model.Lot{first, second}, d("11"))

	require.True(t, ok)
	require.Len(t, pos.Dividends, 3)
}

func TestConsolidateGroupMixedDropsSoldDividends(t *testing.T) {
	sold := soldLot("ITSA4", 1, "5", "8", "9", "2023-01-01")
	sold.Dividends = []model.Dividend{{Amount: d("2")}}
	open := openLot("ITSA4", 1, "10", "9")
	open.Dividends = []model.Dividend{{Amount: d("1")}}

	pos, ok := consolidateGroup(model.GroupKey{Ticker: "ITSA4", WalletID: 1}, []model.Lot{sold, open}, d("10"))

	require.True(t, ok)
	require.Len(t, pos.Dividends, 1)
	require.True(t, pos.Dividends[0].Amount.Equal(d("1")))
}

func TestConsolidateGroupEmptyInput(t *testing.T) {
	_, ok := consolidateGroup(model.GroupKey{Ticker: "PETR4", WalletID: 1}, nil, d("10"))
	require.False(t, ok)
}
