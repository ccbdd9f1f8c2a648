package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetType string

const (
	AssetAcao AssetType = "acao"
	AssetFII  AssetType = "fii"
	AssetETF  AssetType = "etf"
)

// Label returns the human readable name of the asset type.
// Unknown types pass through as-is so new types keep rendering.
func (t AssetType) Label() string {
	switch t {
	case AssetAcao:
		return "Ações"
	case AssetFII:
		return "FIIs"
	case AssetETF:
		return "ETFs"
	}
	return string(t)
}

// Lot is one recorded purchase (and optional full sale) of a ticker inside a wallet.
// SellDate and SellPrice are either both nil (open lot) or both set (sold lot).
type Lot struct {
	LotID     int64
	Ticker    string
	Name      string
	Type      AssetType
	Quantity  decimal.Decimal
	BuyPrice  decimal.Decimal
	BuyDate   time.Time
	SellDate  *time.Time
	SellPrice *decimal.Decimal
	Price     decimal.Decimal // last observed market price
	WalletID  int64
	UserID    int64
	Dividends []Dividend
}

func (l Lot) IsSold() bool {
	return l.SellDate != nil
}

type Dividend struct {
	DividendID  int64
	LotID       int64
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

type Wallet struct {
	WalletID int64
	Name     string
	UserID   int64
}
