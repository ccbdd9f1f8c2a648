package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/investview/invest_tracker_api/internal/service"
	"github.com/investview/invest_tracker_api/internal/transport/rest/middleware"
	"github.com/investview/invest_tracker_api/utils"
	"github.com/shopspring/decimal"
)

type TrackerService interface {
	GetPortfolioOverview(ctx context.Context, userID int64, walletID *int64, req model.AggregationRequest) (model.PortfolioOverview, error)
	GeneratePortfolioReport(ctx context.Context, userID int64, walletID *int64, req model.AggregationRequest) (fileBytes []byte, fileExtension string, err error)
	CreateLot(ctx context.Context, lot model.Lot) (model.Lot, error)
	UpdateLot(ctx context.Context, lot model.Lot) error
	SellLot(ctx context.Context, lotID, userID int64, sellDate time.Time, sellPrice decimal.Decimal) error
	ReopenLot(ctx context.Context, lotID, userID int64) error
	DeleteLot(ctx context.Context, lotID, userID int64) error
	GetDividends(ctx context.Context, lotID, userID int64) ([]model.Dividend, error)
	CreateDividend(ctx context.Context, userID int64, dividend model.Dividend) (model.Dividend, error)
	DeleteDividend(ctx context.Context, dividendID, userID int64) error
	GetWallets(ctx context.Context, userID int64) ([]model.Wallet, error)
	CreateWallet(ctx context.Context, name string, userID int64) (model.Wallet, error)
	RenameWallet(ctx context.Context, walletID, userID int64, name string) error
	DeleteWallet(ctx context.Context, walletID, userID int64) error
}

type Controller struct {
	trackerService TrackerService
}

func NewController(trackerService TrackerService) *Controller {
	return &Controller{trackerService: trackerService}
}

func requestCtx(c *gin.Context) context.Context {
	return utils.CtxWithRqID(c.Request.Context(), c.GetString(middleware.RqIDKey))
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(middleware.UserIDKey)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrAlreadyExists):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, service.ErrValidation):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func respondBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func aggregationParams(c *gin.Context) (model.AggregationRequest, *int64, error) {
	req := model.AggregationRequest{
		Search:      c.Query("search"),
		TypeFilter:  c.DefaultQuery("type", model.TypeFilterAll),
		Consolidate: c.DefaultQuery("consolidate", "true") == "true",
		GroupMode:   model.GroupMode(c.DefaultQuery("group", string(model.GroupByAsset))),
	}

	var walletID *int64
	if rawWallet := c.Query("wallet"); rawWallet != "" {
		id, err := strconv.ParseInt(rawWallet, 10, 64)
		if err != nil || id <= 0 {
			return model.AggregationRequest{}, nil, errors.New("invalid wallet")
		}
		walletID = &id
	}

	return req, walletID, nil
}

func (ctrl *Controller) GetPortfolio(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	req, walletID, err := aggregationParams(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	overview, err := ctrl.trackerService.GetPortfolioOverview(ctx, userID(c), walletID, req)
	if err != nil {
		slog.Error("got error from trackerService.GetPortfolioOverview", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertOverview(overview))
}

func (ctrl *Controller) GetPortfolioReport(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	req, walletID, err := aggregationParams(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	fileBytes, fileExtension, err := ctrl.trackerService.GeneratePortfolioReport(ctx, userID(c), walletID, req)
	if err != nil {
		slog.Error("got error from trackerService.GeneratePortfolioReport", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	filename := "portfolio" + fileExtension
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fileBytes)
}

func (ctrl *Controller) CreateLot(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req lotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	lot, err := req.toModel(userID(c))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	created, err := ctrl.trackerService.CreateLot(ctx, lot)
	if err != nil {
		slog.Error("got error from trackerService.CreateLot", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": created.LotID})
}

func (ctrl *Controller) UpdateLot(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	lotID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req lotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	lot, err := req.toModel(userID(c))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	lot.LotID = lotID

	if err := ctrl.trackerService.UpdateLot(ctx, lot); err != nil {
		slog.Error("got error from trackerService.UpdateLot", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) SellLot(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	lotID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req sellLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	sellDate, err := time.Parse(dateLayout, req.SellDate)
	if err != nil {
		respondBadRequest(c, errors.New("invalid sellDate: want YYYY-MM-DD"))
		return
	}

	if err := ctrl.trackerService.SellLot(ctx, lotID, userID(c), sellDate, req.SellPrice); err != nil {
		slog.Error("got error from trackerService.SellLot", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) ReopenLot(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	lotID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.trackerService.ReopenLot(ctx, lotID, userID(c)); err != nil {
		slog.Error("got error from trackerService.ReopenLot", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) DeleteLot(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	lotID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.trackerService.DeleteLot(ctx, lotID, userID(c)); err != nil {
		slog.Error("got error from trackerService.DeleteLot", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) GetDividends(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	lotID, ok := pathID(c, "id")
	if !ok {
		return
	}

	dividends, err := ctrl.trackerService.GetDividends(ctx, lotID, userID(c))
	if err != nil {
		slog.Error("got error from trackerService.GetDividends", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	resp := make([]dividendResponse, 0, len(dividends))
	for _, d := range dividends {
		resp = append(resp, convertDividend(d))
	}

	c.JSON(http.StatusOK, resp)
}

func (ctrl *Controller) CreateDividend(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	lotID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dividendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		respondBadRequest(c, errors.New("invalid date: want YYYY-MM-DD"))
		return
	}

	dividend := model.Dividend{
		LotID:       lotID,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
	}

	created, err := ctrl.trackerService.CreateDividend(ctx, userID(c), dividend)
	if err != nil {
		slog.Error("got error from trackerService.CreateDividend", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, convertDividend(created))
}

func (ctrl *Controller) DeleteDividend(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	dividendID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.trackerService.DeleteDividend(ctx, dividendID, userID(c)); err != nil {
		slog.Error("got error from trackerService.DeleteDividend", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) GetWallets(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	wallets, err := ctrl.trackerService.GetWallets(ctx, userID(c))
	if err != nil {
		slog.Error("got error from trackerService.GetWallets", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	resp := make([]walletResponse, 0, len(wallets))
	for _, w := range wallets {
		resp = append(resp, convertWallet(w))
	}

	c.JSON(http.StatusOK, resp)
}

func (ctrl *Controller) CreateWallet(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	wallet, err := ctrl.trackerService.CreateWallet(ctx, req.Name, userID(c))
	if err != nil {
		slog.Error("got error from trackerService.CreateWallet", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, convertWallet(wallet))
}

func (ctrl *Controller) RenameWallet(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	walletID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := ctrl.trackerService.RenameWallet(ctx, walletID, userID(c), req.Name); err != nil {
		slog.Error("got error from trackerService.RenameWallet", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) DeleteWallet(c *gin.Context) {
	ctx := requestCtx(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	walletID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.trackerService.DeleteWallet(ctx, walletID, userID(c)); err != nil {
		slog.Error("got error from trackerService.DeleteWallet", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
