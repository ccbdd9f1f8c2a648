package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Lot struct {
	LotID     int64            `db:"lot_id"`
	Ticker    string           `db:"ticker"`
	Name      string           `db:"name"`
	AssetType string           `db:"asset_type"`
	Quantity  decimal.Decimal  `db:"quantity"`
	BuyPrice  decimal.Decimal  `db:"buy_price"`
	BuyDate   time.Time        `db:"buy_date"`
	SellDate  *time.Time       `db:"sell_date"`
	SellPrice *decimal.Decimal `db:"sell_price"`
	WalletID  int64            `db:"wallet_id"`
	UserID    int64            `db:"user_id"`
}

type Dividend struct {
	DividendID  int64           `db:"dividend_id"`
	LotID       int64           `db:"lot_id"`
	Amount      decimal.Decimal `db:"amount"`
	Dt          time.Time       `db:"dt"`
	Description string          `db:"description"`
}

type Wallet struct {
	WalletID int64  `db:"wallet_id"`
	Name     string `db:"name"`
	UserID   int64  `db:"user_id"`
}
