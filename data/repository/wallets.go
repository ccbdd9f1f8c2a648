package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/investview/invest_tracker_api/internal/converter/dbConverter"
	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/investview/invest_tracker_api/internal/model/dbModel"
	"github.com/investview/invest_tracker_api/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *Postgres) GetWallets(ctx context.Context, userID int64) (wallets []model.Wallet, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT wallet_id, name, user_id
		FROM wallets
		WHERE user_id = $1
		ORDER BY wallet_id
		`

	slog.Debug("GetWallets start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetWallets failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetWallets completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	wallets = make([]model.Wallet, 0)
	for rows.Next() {
		var wallet dbModel.Wallet
		err = rows.StructScan(&wallet)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, dbConverter.ConvertWallet(wallet))
	}

	return wallets, nil
}

func (r *Postgres) GetWallet(ctx context.Context, walletID, userID int64) (wallet model.Wallet, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT wallet_id, name, user_id
		FROM wallets
		WHERE wallet_id = $1
		AND user_id = $2
		`

	slog.Debug("GetWallet start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetWallet failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetWallet completed", slog.String("rqID", rqID))
		}
	}()

	dbWallet := dbModel.Wallet{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, walletID, userID).StructScan(&dbWallet)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Wallet{}, ErrNotFound
		}
		return model.Wallet{}, err
	}

	return dbConverter.ConvertWallet(dbWallet), nil
}

func (r *Postgres) InsertWallet(ctx context.Context, name string, userID int64) (walletID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `INSERT INTO wallets(name, user_id) VALUES($1, $2) RETURNING wallet_id`

	slog.Debug("InsertWallet start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertWallet failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertWallet completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, name, userID).Scan(&walletID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}

	return walletID, nil
}

func (r *Postgres) RenameWallet(ctx context.Context, walletID, userID int64, name string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE wallets
		SET name = $1
		WHERE wallet_id = $2
		AND user_id = $3
		`

	slog.Debug("RenameWallet start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("RenameWallet failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("RenameWallet completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, name, walletID, userID)
	if err != nil {
		return err
	}

	return errNotFoundOnZeroRows(res)
}

// DeleteWallet removes the wallet together with its lots. Runs inside a
// transaction so a half-deleted wallet never becomes visible.
func (r *Postgres) DeleteWallet(ctx context.Context, walletID, userID int64) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.deleteWalletLots(ctx, walletID, userID); err != nil {
			return err
		}
		return r.deleteWallet(ctx, walletID, userID)
	})
}

func (r *Postgres) deleteWalletLots(ctx context.Context, walletID, userID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		DELETE FROM lots
		WHERE wallet_id = $1
		AND user_id = $2
		`

	slog.Debug("deleteWalletLots start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("deleteWalletLots failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("deleteWalletLots completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, walletID, userID)
	return err
}

func (r *Postgres) deleteWallet(ctx context.Context, walletID, userID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		DELETE FROM wallets
		WHERE wallet_id = $1
		AND user_id = $2
		`

	slog.Debug("deleteWallet start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("deleteWallet failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("deleteWallet completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, walletID, userID)
	if err != nil {
		return err
	}

	return errNotFoundOnZeroRows(res)
}
