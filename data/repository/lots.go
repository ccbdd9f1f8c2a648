package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/investview/invest_tracker_api/internal/converter/dbConverter"
	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/investview/invest_tracker_api/internal/model/dbModel"
	"github.com/investview/invest_tracker_api/utils"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func (r *Postgres) getLots(ctx context.Context, query string, args ...any) (lots []model.Lot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("getLots start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("getLots failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("getLots completed", slog.String("rqID", rqID))
		}
	}()

	q := r.txOrDb(ctx)

	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	lotIDs := make([]int64, 0)
	dbLots := make([]dbModel.Lot, 0)
	for rows.Next() {
		var lot dbModel.Lot
		err = rows.StructScan(&lot)
		if err != nil {
			return nil, err
		}
		dbLots = append(dbLots, lot)
		lotIDs = append(lotIDs, lot.LotID)
	}

	if len(dbLots) == 0 {
		return []model.Lot{}, nil
	}

	dividendsByLot, err := r.getDividendsForLots(ctx, lotIDs)
	if err != nil {
		return nil, err
	}

	lots = make([]model.Lot, 0, len(dbLots))
	for _, dbLot := range dbLots {
		lots = append(lots, dbConverter.ConvertLot(dbLot, dividendsByLot[dbLot.LotID]))
	}

	return lots, nil
}

func (r *Postgres) GetLots(ctx context.Context, userID int64) ([]model.Lot, error) {
	query := `
		SELECT lot_id, ticker, name, asset_type, quantity, buy_price, buy_date, sell_date, sell_price, wallet_id, user_id
		FROM lots
		WHERE user_id = $1
		ORDER BY lot_id
		`

	return r.getLots(ctx, query, userID)
}

func (r *Postgres) GetLotsByWallet(ctx context.Context, userID, walletID int64) ([]model.Lot, error) {
	query := `
		SELECT lot_id, ticker, name, asset_type, quantity, buy_price, buy_date, sell_date, sell_price, wallet_id, user_id
		FROM lots
		WHERE user_id = $1
		AND wallet_id = $2
		ORDER BY lot_id
		`

	return r.getLots(ctx, query, userID, walletID)
}

func (r *Postgres) GetLot(ctx context.Context, lotID, userID int64) (lot model.Lot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT lot_id, ticker, name, asset_type, quantity, buy_price, buy_date, sell_date, sell_price, wallet_id, user_id
		FROM lots
		WHERE lot_id = $1
		AND user_id = $2
		`

	slog.Debug("GetLot start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetLot failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetLot completed", slog.String("rqID", rqID))
		}
	}()

	dbLot := dbModel.Lot{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, lotID, userID).StructScan(&dbLot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Lot{}, ErrNotFound
		}
		return model.Lot{}, err
	}

	dividends, err := r.getDividendsForLots(ctx, []int64{lotID})
	if err != nil {
		return model.Lot{}, err
	}

	return dbConverter.ConvertLot(dbLot, dividends[lotID]), nil
}

func (r *Postgres) InsertLot(ctx context.Context, lot model.Lot) (lotID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO lots(ticker, name, asset_type, quantity, buy_price, buy_date, sell_date, sell_price, wallet_id, user_id)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING lot_id
		`

	slog.Debug("InsertLot start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertLot failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertLot completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowxContext(
		ctx,
		query,
		lot.Ticker,
		lot.Name,
		string(lot.Type),
		lot.Quantity,
		lot.BuyPrice,
		lot.BuyDate,
		lot.SellDate,
		lot.SellPrice,
		lot.WalletID,
		lot.UserID,
	).Scan(&lotID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return 0, ErrNotFound // wallet reference does not exist
		}
		return 0, err
	}

	return lotID, nil
}

func (r *Postgres) UpdateLot(ctx context.Context, lot model.Lot) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE lots
		SET
			ticker = $1,
			name = $2,
			asset_type = $3,
			quantity = $4,
			buy_price = $5,
			buy_date = $6,
			wallet_id = $7
		WHERE
			lot_id = $8
			AND user_id = $9
		`

	slog.Debug("UpdateLot start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateLot failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateLot completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(
		ctx,
		query,
		lot.Ticker,
		lot.Name,
		string(lot.Type),
		lot.Quantity,
		lot.BuyPrice,
		lot.BuyDate,
		lot.WalletID,
		lot.LotID,
		lot.UserID,
	)
	if err != nil {
		return err
	}

	return errNotFoundOnZeroRows(res)
}

// CloseLot marks the lot as fully sold. Sell date and sell price always
// change together, never one without the other.
func (r *Postgres) CloseLot(ctx context.Context, lotID, userID int64, sellDate time.Time, sellPrice decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE lots
		SET sell_date = $1, sell_price = $2
		WHERE lot_id = $3
		AND user_id = $4
		`

	slog.Debug("CloseLot start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("CloseLot failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("CloseLot completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, sellDate, sellPrice, lotID, userID)
	if err != nil {
		return err
	}

	return errNotFoundOnZeroRows(res)
}

// ReopenLot clears the sale, returning the lot to the open state.
func (r *Postgres) ReopenLot(ctx context.Context, lotID, userID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE lots
		SET sell_date = NULL, sell_price = NULL
		WHERE lot_id = $1
		AND user_id = $2
		`

	slog.Debug("ReopenLot start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("ReopenLot failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("ReopenLot completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, lotID, userID)
	if err != nil {
		return err
	}

	return errNotFoundOnZeroRows(res)
}

func (r *Postgres) DeleteLot(ctx context.Context, lotID, userID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		DELETE FROM lots
		WHERE lot_id = $1
		AND user_id = $2
		`

	slog.Debug("DeleteLot start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteLot failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteLot completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, lotID, userID)
	if err != nil {
		return err
	}

	return errNotFoundOnZeroRows(res)
}

func errNotFoundOnZeroRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
