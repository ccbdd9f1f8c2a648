package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/investview/invest_tracker_api/internal/service"
	customMW "github.com/investview/invest_tracker_api/internal/transport/rest/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// stubTrackerService lets each test override just the methods it exercises.
type stubTrackerService struct {
	getPortfolioOverview func(ctx context.Context, userID int64, walletID *int64, req model.AggregationRequest) (model.PortfolioOverview, error)
	createLot            func(ctx context.Context, lot model.Lot) (model.Lot, error)
	sellLot              func(ctx context.Context, lotID, userID int64, sellDate time.Time, sellPrice decimal.Decimal) error
	createWallet         func(ctx context.Context, name string, userID int64) (model.Wallet, error)
	deleteLot            func(ctx context.Context, lotID, userID int64) error
}

func (s *stubTrackerService) GetPortfolioOverview(ctx context.Context, userID int64, walletID *int64, req model.AggregationRequest) (model.PortfolioOverview, error) {
	if s.getPortfolioOverview != nil {
		return s.getPortfolioOverview(ctx, userID, walletID, req)
	}
	return model.PortfolioOverview{}, nil
}

func (s *stubTrackerService) GeneratePortfolioReport(context.Context, int64, *int64, model.AggregationRequest) ([]byte, string, error) {
	return []byte("xlsx"), ".xlsx", nil
}

func (s *stubTrackerService) CreateLot(ctx context.Context, lot model.Lot) (model.Lot, error) {
	if s.createLot != nil {
		return s.createLot(ctx, lot)
	}
	lot.LotID = 1
	return lot, nil
}

func (s *stubTrackerService) UpdateLot(context.Context, model.Lot) error { return nil }

func (s *stubTrackerService) SellLot(ctx context.Context, lotID, userID int64, sellDate time.Time, sellPrice decimal.Decimal) error {
	if s.sellLot != nil {
		return s.sellLot(ctx, lotID, userID, sellDate, sellPrice)
	}
	return nil
}

func (s *stubTrackerService) ReopenLot(context.Context, int64, int64) error { return nil }

func (s *stubTrackerService) DeleteLot(ctx context.Context, lotID, userID int64) error {
	if s.deleteLot != nil {
		return s.deleteLot(ctx, lotID, userID)
	}
	return nil
}

func (s *stubTrackerService) GetDividends(context.Context, int64, int64) ([]model.Dividend, error) {
	return nil, nil
}

func (s *stubTrackerService) CreateDividend(_ context.Context, _ int64, dividend model.Dividend) (model.Dividend, error) {
	dividend.DividendID = 1
	return dividend, nil
}

func (s *stubTrackerService) DeleteDividend(context.Context, int64, int64) error { return nil }

func (s *stubTrackerService) GetWallets(context.Context, int64) ([]model.Wallet, error) {
	return nil, nil
}

func (s *stubTrackerService) CreateWallet(ctx context.Context, name string, userID int64) (model.Wallet, error) {
	if s.createWallet != nil {
		return s.createWallet(ctx, name, userID)
	}
	return model.Wallet{WalletID: 1, Name: name, UserID: userID}, nil
}

func (s *stubTrackerService) RenameWallet(context.Context, int64, int64, string) error { return nil }

func (s *stubTrackerService) DeleteWallet(context.Context, int64, int64) error { return nil }

func newTestRouter(srv TrackerService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewController(srv)

	router := gin.New()
	authed := router.Group("/", customMW.Auth())
	authed.GET("/portfolio", ctrl.GetPortfolio)
	authed.POST("/lots", ctrl.CreateLot)
	authed.POST("/lots/:id/sell", ctrl.SellLot)
	authed.DELETE("/lots/:id", ctrl.DeleteLot)
	authed.POST("/wallets", ctrl.CreateWallet)
	return router
}

func doRequest(router *gin.Engine, method, path string, body []byte, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("X-User-ID", "7")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(&stubTrackerService{})

	rec := doRequest(router, http.MethodGet, "/portfolio", nil, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetPortfolio(t *testing.T) {
	srv := &stubTrackerService{
		getPortfolioOverview: func(_ context.Context, userID int64, walletID *int64, req model.AggregationRequest) (model.PortfolioOverview, error) {
			require.Equal(t, int64(7), userID)
			require.Nil(t, walletID)
			require.True(t, req.Consolidate)
			require.Equal(t, model.TypeFilterAll, req.TypeFilter)
			require.Equal(t, model.GroupByAsset, req.GroupMode)

			return model.PortfolioOverview{
				Positions: []model.Position{{
					Kind:     model.KindConsolidatedActive,
					Key:      model.GroupKey{Ticker: "PETR4", WalletID: 1},
					WalletID: 1,
					Quantity: decimal.NewFromInt(10),
				}},
				PricesUpdatedAt: "01/01/2024 12:00",
			}, nil
		},
	}
	router := newTestRouter(srv)

	rec := doRequest(router, http.MethodGet, "/portfolio", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp overviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Positions, 1)
	require.Equal(t, "consolidated-active-PETR4-1", resp.Positions[0].RefID)
	require.True(t, resp.Positions[0].Consolidated)
	require.Equal(t, "01/01/2024 12:00", resp.PricesUpdatedAt)
}

func TestGetPortfolioQueryParams(t *testing.T) {
	srv := &stubTrackerService{
		getPortfolioOverview: func(_ context.Context, _ int64, walletID *int64, req model.AggregationRequest) (model.PortfolioOverview, error) {
			require.NotNil(t, walletID)
			require.Equal(t, int64(3), *walletID)
			require.False(t, req.Consolidate)
			require.Equal(t, "petr", req.Search)
			require.Equal(t, "fii", req.TypeFilter)
			require.Equal(t, model.GroupByWallet, req.GroupMode)
			return model.PortfolioOverview{}, nil
		},
	}
	router := newTestRouter(srv)

	rec := doRequest(router, http.MethodGet, "/portfolio?wallet=3&consolidate=false&search=petr&type=fii&group=wallet", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetPortfolioInvalidWallet(t *testing.T) {
	router := newTestRouter(&stubTrackerService{})

	rec := doRequest(router, http.MethodGet, "/portfolio?wallet=abc", nil, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLot(t *testing.T) {
	router := newTestRouter(&stubTrackerService{})

	body := []byte(`{"ticker":"PETR4","quantity":"10","buyPrice":"30.5","buyDate":"2023-01-15","walletId":1}`)
	rec := doRequest(router, http.MethodPost, "/lots", body, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp["id"])
}

func TestCreateLotInvalidDate(t *testing.T) {
	router := newTestRouter(&stubTrackerService{})

	body := []byte(`{"ticker":"PETR4","quantity":"10","buyPrice":"30.5","buyDate":"15/01/2023","walletId":1}`)
	rec := doRequest(router, http.MethodPost, "/lots", body, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLotValidationError(t *testing.T) {
	srv := &stubTrackerService{
		createLot: func(context.Context, model.Lot) (model.Lot, error) {
			return model.Lot{}, service.ErrValidation
		},
	}
	router := newTestRouter(srv)

	body := []byte(`{"ticker":"PETR4","quantity":"0","buyPrice":"30.5","buyDate":"2023-01-15","walletId":1}`)
	rec := doRequest(router, http.MethodPost, "/lots", body, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSellLotInvalidDate(t *testing.T) {
	router := newTestRouter(&stubTrackerService{})

	body := []byte(`{"sellDate":"not-a-date","sellPrice":"33"}`)
	rec := doRequest(router, http.MethodPost, "/lots/1/sell", body, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteLotNotFound(t *testing.T) {
	srv := &stubTrackerService{
		deleteLot: func(context.Context, int64, int64) error { return service.ErrNotFound },
	}
	router := newTestRouter(srv)

	rec := doRequest(router, http.MethodDelete, "/lots/99", nil, true)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteLotInvalidID(t *testing.T) {
	router := newTestRouter(&stubTrackerService{})

	rec := doRequest(router, http.MethodDelete, "/lots/abc", nil, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateWalletConflict(t *testing.T) {
	srv := &stubTrackerService{
		createWallet: func(context.Context, string, int64) (model.Wallet, error) {
			return model.Wallet{}, service.ErrAlreadyExists
		},
	}
	router := newTestRouter(srv)

	body := []byte(`{"name":"Principal"}`)
	rec := doRequest(router, http.MethodPost, "/wallets", body, true)
	require.Equal(t, http.StatusConflict, rec.Code)
}
