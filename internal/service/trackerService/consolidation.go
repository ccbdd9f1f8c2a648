package trackerService

import (
	"time"

	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/shopspring/decimal"
)

// consolidateGroup merges every lot of one (ticker, wallet) group into a
// single position.
//
// A group where every lot is sold becomes one sold position with weighted
// average buy and sell prices and the most recent sell date. Any other
// group becomes one active position over its open lots only: the sold
// remainder of a mixed group does not contribute. Dividends are
// concatenated in group order, without dedup.
//
// ok is false when nothing should be emitted for the group.
func consolidateGroup(key model.GroupKey, lots []model.Lot, price decimal.Decimal) (pos model.Position, ok bool) {
	if len(lots) == 0 {
		return model.Position{}, false
	}

	sold := 0
	for _, lot := range lots {
		if lot.IsSold() {
			sold++
		}
	}

	first := lots[0]

	if sold == len(lots) {
		totalQuantity := decimal.Zero
		totalBuyValue := decimal.Zero
		totalSellValue := decimal.Zero
		var latestSellDate time.Time
		var dividends []model.Dividend

		for _, lot := range lots {
			totalQuantity = totalQuantity.Add(lot.Quantity)
			totalBuyValue = totalBuyValue.Add(lot.BuyPrice.Mul(lot.Quantity))
			totalSellValue = totalSellValue.Add(lot.SellPrice.Mul(lot.Quantity))
			if lot.SellDate.After(latestSellDate) { // strict: ties keep the earlier lot's date
				latestSellDate = *lot.SellDate
			}
			dividends = append(dividends, lot.Dividends...)
		}

		avgSellPrice := totalSellValue.Div(totalQuantity)

		return model.Position{
			Kind:      model.KindConsolidatedSold,
			Key:       key,
			Name:      first.Name,
			Type:      first.Type,
			WalletID:  key.WalletID,
			Quantity:  totalQuantity,
			BuyPrice:  totalBuyValue.Div(totalQuantity),
			SellDate:  &latestSellDate,
			SellPrice: &avgSellPrice,
			Price:     price,
			Dividends: dividends,
		}, true
	}

	totalQuantity := decimal.Zero
	totalBuyValue := decimal.Zero
	var dividends []model.Dividend

	for _, lot := range lots {
		if lot.IsSold() {
			continue
		}
		totalQuantity = totalQuantity.Add(lot.Quantity)
		totalBuyValue = totalBuyValue.Add(lot.BuyPrice.Mul(lot.Quantity))
		dividends = append(dividends, lot.Dividends...)
	}

	// unreachable when the sold count above is right, but never divide by zero
	if totalQuantity.IsZero() {
		return model.Position{}, false
	}

	return model.Position{
		Kind:      model.KindConsolidatedActive,
		Key:       key,
		Name:      first.Name,
		Type:      first.Type,
		WalletID:  key.WalletID,
		Quantity:  totalQuantity,
		BuyPrice:  totalBuyValue.Div(totalQuantity),
		Price:     price,
		Dividends: dividends,
	}, true
}
