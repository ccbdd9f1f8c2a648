package model

import "github.com/shopspring/decimal"

type GroupMode string

const (
	GroupByAsset  GroupMode = "asset"
	GroupByType   GroupMode = "type"
	GroupByWallet GroupMode = "wallet"
)

// TypeFilterAll disables asset-type filtering.
const TypeFilterAll = "all"

// AggregationRequest is the immutable input of one aggregation pass.
type AggregationRequest struct {
	Search      string
	TypeFilter  string
	Consolidate bool
	GroupMode   GroupMode
}

// PortfolioMetrics are the top-line numbers over the active (unsold)
// subset of the filtered position set.
type PortfolioMetrics struct {
	PortfolioValue        decimal.Decimal
	CurrentValue          decimal.Decimal
	TotalProfit           decimal.Decimal
	TotalProfitPercentage decimal.Decimal
}

// ChartPoint is one named slice of a chart series.
type ChartPoint struct {
	Label    string
	Value    decimal.Decimal
	Type     AssetType
	WalletID int64
}

// PortfolioOverview is the result of one aggregation pass.
type PortfolioOverview struct {
	Positions       []Position
	Metrics         PortfolioMetrics
	Series          []ChartPoint
	PricesUpdatedAt string
}
