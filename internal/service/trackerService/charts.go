package trackerService

import (
	"github.com/investview/invest_tracker_api/internal/model"
)

// unknownWalletLabel stands in when a position points at a wallet that
// can't be resolved (deleted or foreign). Never an error.
const unknownWalletLabel = "Carteira Desconhecida"

// chartSeries regroups the valued active positions along one dimension.
// An empty input yields an empty series.
func chartSeries(mode model.GroupMode, positions []model.Position, wallets []model.Wallet) []model.ChartPoint {
	active := make([]model.Position, 0, len(positions))
	for _, p := range positions {
		if !p.IsSold() {
			active = append(active, p)
		}
	}

	switch mode {
	case model.GroupByType:
		return seriesByType(active)
	case model.GroupByWallet:
		return seriesByWallet(active, wallets)
	}
	return seriesByAsset(active)
}

// seriesByAsset emits one point per position; consolidation already merged
// same-ticker entries when it was enabled.
func seriesByAsset(positions []model.Position) []model.ChartPoint {
	series := make([]model.ChartPoint, 0, len(positions))
	for _, p := range positions {
		series = append(series, model.ChartPoint{
			Label:    p.Key.Ticker,
			Value:    p.Valuation.CurrentValue,
			Type:     p.Type,
			WalletID: p.WalletID,
		})
	}
	return series
}

func seriesByType(positions []model.Position) []model.ChartPoint {
	buckets := make(map[model.AssetType]int)

	series := make([]model.ChartPoint, 0)
	for _, p := range positions {
		idx, ok := buckets[p.Type]
		if !ok {
			idx = len(series)
			buckets[p.Type] = idx
			series = append(series, model.ChartPoint{Label: p.Type.Label(), Type: p.Type})
		}
		series[idx].Value = series[idx].Value.Add(p.Valuation.CurrentValue)
	}

	return series
}

func seriesByWallet(positions []model.Position, wallets []model.Wallet) []model.ChartPoint {
	names := make(map[int64]string, len(wallets))
	for _, w := range wallets {
		names[w.WalletID] = w.Name
	}

	buckets := make(map[int64]int)

	series := make([]model.ChartPoint, 0)
	for _, p := range positions {
		idx, ok := buckets[p.WalletID]
		if !ok {
			label, resolved := names[p.WalletID]
			if !resolved {
				label = unknownWalletLabel
			}
			idx = len(series)
			buckets[p.WalletID] = idx
			series = append(series, model.ChartPoint{Label: label, WalletID: p.WalletID})
		}
		series[idx].Value = series[idx].Value.Add(p.Valuation.CurrentValue)
	}

	return series
}
