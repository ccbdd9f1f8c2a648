package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GroupKey identifies a consolidation group. Struct equality is the
// grouping criterion, so tickers containing separator characters can't
// collide with another ticker/wallet pair.
type GroupKey struct {
	Ticker   string
	WalletID int64
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s-%d", k.Ticker, k.WalletID)
}

type PositionKind int

const (
	KindLot PositionKind = iota
	KindConsolidatedActive
	KindConsolidatedSold
)

// Position is one row of the portfolio view: either a raw lot or the
// consolidation of every same-ticker-same-wallet lot. Ephemeral, rebuilt
// on every aggregation pass.
type Position struct {
	Kind      PositionKind
	LotID     int64 // set only when Kind == KindLot
	Key       GroupKey
	Name      string
	Type      AssetType
	WalletID  int64
	Quantity  decimal.Decimal
	BuyPrice  decimal.Decimal // weighted average for consolidated kinds
	SellDate  *time.Time
	SellPrice *decimal.Decimal
	Price     decimal.Decimal
	Dividends []Dividend
	Valuation Valuation
}

func (p Position) IsSold() bool {
	return p.Kind == KindConsolidatedSold || p.SellDate != nil
}

// RefID is a stable synthetic identity for UI keying. Real lot ids can
// never collide with consolidated ones because the kind is part of the tag.
func (p Position) RefID() string {
	switch p.Kind {
	case KindConsolidatedSold:
		return "consolidated-sold-" + p.Key.String()
	case KindConsolidatedActive:
		return "consolidated-active-" + p.Key.String()
	}
	return fmt.Sprintf("lot-%d", p.LotID)
}

// Valuation holds the four derived numbers of a single position.
type Valuation struct {
	TotalInvested         decimal.Decimal
	CurrentValue          decimal.Decimal
	TotalProfit           decimal.Decimal
	TotalProfitPercentage decimal.Decimal
}
