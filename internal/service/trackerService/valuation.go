package trackerService

import (
	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/shopspring/decimal"
)

// valuate computes the four derived numbers of one position. Pure: same
// input, same output, no side effects.
//
// Open positions are valued at the current market price; sold positions
// at their realized sell price, which no longer moves with the market.
// The profit percentage is 0 when nothing was invested, never NaN.
func valuate(p model.Position) model.Valuation {
	totalInvested := p.BuyPrice.Mul(p.Quantity)

	var currentValue decimal.Decimal
	if p.IsSold() && p.SellPrice != nil {
		currentValue = p.SellPrice.Mul(p.Quantity)
	} else {
		currentValue = p.Price.Mul(p.Quantity)
	}

	totalProfit := currentValue.Sub(totalInvested)

	percentage := decimal.Zero
	if !totalInvested.IsZero() {
		percentage = totalProfit.Div(totalInvested)
	}

	return model.Valuation{
		TotalInvested:         totalInvested,
		CurrentValue:          currentValue,
		TotalProfit:           totalProfit,
		TotalProfitPercentage: percentage,
	}
}

// portfolioMetrics sums the valuations of the active subset. Sold
// positions stay visible in listings but never count towards the
// top-line numbers.
func portfolioMetrics(positions []model.Position) model.PortfolioMetrics {
	metrics := model.PortfolioMetrics{
		PortfolioValue:        decimal.Zero,
		CurrentValue:          decimal.Zero,
		TotalProfit:           decimal.Zero,
		TotalProfitPercentage: decimal.Zero,
	}

	for _, p := range positions {
		if p.IsSold() {
			continue
		}
		metrics.PortfolioValue = metrics.PortfolioValue.Add(p.Valuation.TotalInvested)
		metrics.CurrentValue = metrics.CurrentValue.Add(p.Valuation.CurrentValue)
		metrics.TotalProfit = metrics.TotalProfit.Add(p.Valuation.TotalProfit)
	}

	if metrics.PortfolioValue.IsPositive() {
		metrics.TotalProfitPercentage = metrics.TotalProfit.Div(metrics.PortfolioValue)
	}

	return metrics
}
