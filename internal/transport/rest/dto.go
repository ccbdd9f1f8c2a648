package rest

import (
	"fmt"
	"time"

	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type lotRequest struct {
	Ticker    string          `json:"ticker" binding:"required"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	BuyPrice  decimal.Decimal `json:"buyPrice"`
	BuyDate   string          `json:"buyDate" binding:"required"`
	SellDate  *string         `json:"sellDate"`
	SellPrice *decimal.Decimal `json:"sellPrice"`
	WalletID  int64           `json:"walletId" binding:"required"`
}

func (r lotRequest) toModel(userID int64) (model.Lot, error) {
	buyDate, err := time.Parse(dateLayout, r.BuyDate)
	if err != nil {
		return model.Lot{}, fmt.Errorf("invalid buyDate %q: want YYYY-MM-DD", r.BuyDate)
	}

	var sellDate *time.Time
	if r.SellDate != nil {
		parsed, err := time.Parse(dateLayout, *r.SellDate)
		if err != nil {
			return model.Lot{}, fmt.Errorf("invalid sellDate %q: want YYYY-MM-DD", *r.SellDate)
		}
		sellDate = &parsed
	}

	return model.Lot{
		Ticker:    r.Ticker,
		Name:      r.Name,
		Type:      model.AssetType(r.Type),
		Quantity:  r.Quantity,
		BuyPrice:  r.BuyPrice,
		BuyDate:   buyDate,
		SellDate:  sellDate,
		SellPrice: r.SellPrice,
		WalletID:  r.WalletID,
		UserID:    userID,
	}, nil
}

type sellLotRequest struct {
	SellDate  string          `json:"sellDate" binding:"required"`
	SellPrice decimal.Decimal `json:"sellPrice"`
}

type dividendRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date" binding:"required"`
	Description string          `json:"description"`
}

type walletRequest struct {
	Name string `json:"name" binding:"required"`
}

type dividendResponse struct {
	DividendID  int64           `json:"id"`
	LotID       int64           `json:"lotId"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

type positionResponse struct {
	RefID                 string             `json:"refId"`
	Consolidated          bool               `json:"consolidated"`
	Ticker                string             `json:"ticker"`
	Name                  string             `json:"name"`
	Type                  string             `json:"type"`
	WalletID              int64              `json:"walletId"`
	Quantity              decimal.Decimal    `json:"quantity"`
	BuyPrice              decimal.Decimal    `json:"buyPrice"`
	SellDate              *string            `json:"sellDate,omitempty"`
	SellPrice             *decimal.Decimal   `json:"sellPrice,omitempty"`
	Price                 decimal.Decimal    `json:"price"`
	Sold                  bool               `json:"sold"`
	TotalInvested         decimal.Decimal    `json:"totalInvested"`
	CurrentValue          decimal.Decimal    `json:"currentValue"`
	TotalProfit           decimal.Decimal    `json:"totalProfit"`
	TotalProfitPercentage decimal.Decimal    `json:"totalProfitPercentage"`
	Dividends             []dividendResponse `json:"dividends"`
}

type metricsResponse struct {
	PortfolioValue        decimal.Decimal `json:"portfolioValue"`
	CurrentValue          decimal.Decimal `json:"currentValue"`
	TotalProfit           decimal.Decimal `json:"totalProfit"`
	TotalProfitPercentage decimal.Decimal `json:"totalProfitPercentage"`
}

type chartPointResponse struct {
	Label    string          `json:"label"`
	Value    decimal.Decimal `json:"value"`
	Type     string          `json:"type,omitempty"`
	WalletID int64           `json:"walletId,omitempty"`
}

type overviewResponse struct {
	Positions       []positionResponse   `json:"positions"`
	Metrics         metricsResponse      `json:"metrics"`
	Series          []chartPointResponse `json:"series"`
	PricesUpdatedAt string               `json:"pricesUpdatedAt"`
}

type walletResponse struct {
	WalletID int64  `json:"id"`
	Name     string `json:"name"`
}

func convertDividend(d model.Dividend) dividendResponse {
	return dividendResponse{
		DividendID:  d.DividendID,
		LotID:       d.LotID,
		Amount:      d.Amount,
		Date:        d.Date.Format(dateLayout),
		Description: d.Description,
	}
}

func convertPosition(p model.Position) positionResponse {
	resp := positionResponse{
		RefID:                 p.RefID(),
		Consolidated:          p.Kind != model.KindLot,
		Ticker:                p.Key.Ticker,
		Name:                  p.Name,
		Type:                  string(p.Type),
		WalletID:              p.WalletID,
		Quantity:              p.Quantity,
		BuyPrice:              p.BuyPrice,
		SellPrice:             p.SellPrice,
		Price:                 p.Price,
		Sold:                  p.IsSold(),
		TotalInvested:         p.Valuation.TotalInvested,
		CurrentValue:          p.Valuation.CurrentValue,
		TotalProfit:           p.Valuation.TotalProfit,
		TotalProfitPercentage: p.Valuation.TotalProfitPercentage,
		Dividends:             make([]dividendResponse, 0, len(p.Dividends)),
	}

	if p.SellDate != nil {
		formatted := p.SellDate.Format(dateLayout)
		resp.SellDate = &formatted
	}

	for _, d := range p.Dividends {
		resp.Dividends = append(resp.Dividends, convertDividend(d))
	}

	return resp
}

func convertOverview(overview model.PortfolioOverview) overviewResponse {
	resp := overviewResponse{
		Positions: make([]positionResponse, 0, len(overview.Positions)),
		Metrics: metricsResponse{
			PortfolioValue:        overview.Metrics.PortfolioValue,
			CurrentValue:          overview.Metrics.CurrentValue,
			TotalProfit:           overview.Metrics.TotalProfit,
			TotalProfitPercentage: overview.Metrics.TotalProfitPercentage,
		},
		Series:          make([]chartPointResponse, 0, len(overview.Series)),
		PricesUpdatedAt: overview.PricesUpdatedAt,
	}

	for _, p := range overview.Positions {
		resp.Positions = append(resp.Positions, convertPosition(p))
	}

	for _, point := range overview.Series {
		resp.Series = append(resp.Series, chartPointResponse{
			Label:    point.Label,
			Value:    point.Value,
			Type:     string(point.Type),
			WalletID: point.WalletID,
		})
	}

	return resp
}

func convertWallet(w model.Wallet) walletResponse {
	return walletResponse{WalletID: w.WalletID, Name: w.Name}
}
