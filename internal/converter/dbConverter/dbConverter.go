package dbConverter

import (
	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/investview/invest_tracker_api/internal/model/dbModel"
)

func ConvertLot(dbLot dbModel.Lot, dbDividends []dbModel.Dividend) model.Lot {
	lot := model.Lot{
		LotID:     dbLot.LotID,
		Ticker:    dbLot.Ticker,
		Name:      dbLot.Name,
		Type:      model.AssetType(dbLot.AssetType),
		Quantity:  dbLot.Quantity,
		BuyPrice:  dbLot.BuyPrice,
		BuyDate:   dbLot.BuyDate,
		SellDate:  dbLot.SellDate,
		SellPrice: dbLot.SellPrice,
		WalletID:  dbLot.WalletID,
		UserID:    dbLot.UserID,
	}

	for _, d := range dbDividends {
		lot.Dividends = append(lot.Dividends, ConvertDividend(d))
	}

	return lot
}

func ConvertDividend(dbDividend dbModel.Dividend) model.Dividend {
	return model.Dividend{
		DividendID:  dbDividend.DividendID,
		LotID:       dbDividend.LotID,
		Amount:      dbDividend.Amount,
		Date:        dbDividend.Dt,
		Description: dbDividend.Description,
	}
}

func ConvertWallet(dbWallet dbModel.Wallet) model.Wallet {
	return model.Wallet{
		WalletID: dbWallet.WalletID,
		Name:     dbWallet.Name,
		UserID:   dbWallet.UserID,
	}
}
