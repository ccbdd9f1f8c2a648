package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/investview/invest_tracker_api/internal/converter/dbConverter"
	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/investview/invest_tracker_api/internal/model/dbModel"
	"github.com/investview/invest_tracker_api/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

// getDividendsForLots loads the dividends of several lots in one query and
// groups them by lot id, preserving insertion order per lot.
func (r *Postgres) getDividendsForLots(ctx context.Context, lotIDs []int64) (dividends map[int64][]dbModel.Dividend, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT dividend_id, lot_id, amount, dt, description
		FROM dividends
		WHERE lot_id = ANY($1)
		ORDER BY dividend_id
		`

	slog.Debug("getDividendsForLots start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("getDividendsForLots failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("getDividendsForLots completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, lotIDs)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	dividends = make(map[int64][]dbModel.Dividend)
	for rows.Next() {
		var d dbModel.Dividend
		err = rows.StructScan(&d)
		if err != nil {
			return nil, err
		}
		dividends[d.LotID] = append(dividends[d.LotID], d)
	}

	return dividends, nil
}

func (r *Postgres) GetDividends(ctx context.Context, lotID, userID int64) (dividends []model.Dividend, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT d.dividend_id, d.lot_id, d.amount, d.dt, d.description
		FROM dividends d
		JOIN lots l USING(lot_id)
		WHERE d.lot_id = $1
		AND l.user_id = $2
		ORDER BY d.dividend_id
		`

	slog.Debug("GetDividends start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetDividends failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetDividends completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, lotID, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	dividends = make([]model.Dividend, 0)
	for rows.Next() {
		var d dbModel.Dividend
		err = rows.StructScan(&d)
		if err != nil {
			return nil, err
		}
		dividends = append(dividends, dbConverter.ConvertDividend(d))
	}

	return dividends, nil
}

func (r *Postgres) InsertDividend(ctx context.Context, dividend model.Dividend) (dividendID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO dividends(lot_id, amount, dt, description)
		VALUES($1, $2, $3, $4)
		RETURNING dividend_id
		`

	slog.Debug("InsertDividend start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertDividend failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertDividend completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowxContext(
		ctx,
		query,
		dividend.LotID,
		dividend.Amount,
		dividend.Date,
		dividend.Description,
	).Scan(&dividendID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return 0, ErrNotFound // lot reference does not exist
		}
		return 0, err
	}

	return dividendID, nil
}

func (r *Postgres) DeleteDividend(ctx context.Context, dividendID, userID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		DELETE FROM dividends d
		USING lots l
		WHERE d.lot_id = l.lot_id
		AND d.dividend_id = $1
		AND l.user_id = $2
		`

	slog.Debug("DeleteDividend start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteDividend failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteDividend completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, dividendID, userID)
	if err != nil {
		return err
	}

	return errNotFoundOnZeroRows(res)
}
