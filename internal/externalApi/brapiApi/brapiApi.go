package brapiApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/investview/invest_tracker_api/config"
	"github.com/investview/invest_tracker_api/internal/externalApi"
	"github.com/investview/invest_tracker_api/internal/model/quoteModel"
	"github.com/investview/invest_tracker_api/utils"
	"github.com/shopspring/decimal"
)

type BrapiApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *BrapiApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.QuoteApi.Url).
		SetQueryParam("token", cfg.API.QuoteApi.Token)
	return &BrapiApi{client: client}
}

// GetQuote returns the current market price for one ticker.
func (a *BrapiApi) GetQuote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	quotes, err := a.GetQuotes(ctx, []string{ticker})
	if err != nil {
		return decimal.Zero, err
	}

	price, ok := quotes[ticker]
	if !ok {
		return decimal.Zero, externalApi.ErrNotFound
	}

	return price, nil
}

// GetQuotes returns current market prices keyed by ticker. Tickers absent
// from the provider response are absent from the map.
func (a *BrapiApi) GetQuotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error) {
	rqId := utils.GetRequestIDFromCtx(ctx)
	url := fmt.Sprintf("/api/quote/%s", strings.Join(tickers, ","))

	slog.Debug("start BrapiApi.GetQuotes request", slog.String("rqID", rqId), slog.Any("tickers", tickers))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)

	if err != nil {
		slog.Error("error while dialing BrapiApi", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return nil, err
	}

	if resp.StatusCode() == 404 {
		return nil, externalApi.ErrNotFound
	}

	if resp.IsError() {
		slog.Error("BrapiApi returned error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqId))
		return nil, fmt.Errorf("brapi responded with status %d", resp.StatusCode())
	}

	rawQuotes := quoteModel.RawQuotesResponse{}
	err = json.Unmarshal(resp.Body(), &rawQuotes)
	if err != nil {
		slog.Error("can't unmarshall response into quoteModel.RawQuotesResponse", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return nil, err
	}

	res, err := a.parseRawQuotes(rawQuotes)
	if err != nil {
		slog.Error("can't parse raw quotes", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return nil, err
	}

	slog.Debug("BrapiApi.GetQuotes request complete", slog.String("rqID", rqId))

	return res, nil
}

// ListAssets returns reference metadata for every listed asset. Used by the
// cache refresh job, not by the aggregation pass.
func (a *BrapiApi) ListAssets(ctx context.Context) ([]quoteModel.AssetInfo, error) {
	rqId := utils.GetRequestIDFromCtx(ctx)
	url := "/api/quote/list"

	slog.Debug("start BrapiApi.ListAssets request", slog.String("rqID", rqId))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)

	if err != nil {
		slog.Error("error while dialing BrapiApi", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return nil, err
	}

	if resp.IsError() {
		slog.Error("BrapiApi returned error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqId))
		return nil, fmt.Errorf("brapi responded with status %d", resp.StatusCode())
	}

	rawAssets := quoteModel.RawAssetsResponse{}
	err = json.Unmarshal(resp.Body(), &rawAssets)
	if err != nil {
		slog.Error("can't unmarshall response into quoteModel.RawAssetsResponse", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return nil, err
	}

	assets := make([]quoteModel.AssetInfo, 0, len(rawAssets.Stocks))
	for _, raw := range rawAssets.Stocks {
		assets = append(assets, quoteModel.AssetInfo{
			Ticker: raw.Stock,
			Name:   raw.Name,
			Type:   convertAssetType(raw.Type),
		})
	}

	slog.Debug("BrapiApi.ListAssets request complete", slog.String("rqID", rqId), slog.Int("assets", len(assets)))

	return assets, nil
}

// CurrentHourLabel is a display-only "prices as of" label, truncated to the
// hour. Not used in any calculation.
func (a *BrapiApi) CurrentHourLabel() string {
	return time.Now().Truncate(time.Hour).Format("02/01/2006 15:04")
}

func (a *BrapiApi) parseRawQuotes(rawQuotes quoteModel.RawQuotesResponse) (map[string]decimal.Decimal, error) {
	res := make(map[string]decimal.Decimal, len(rawQuotes.Results))

	for _, raw := range rawQuotes.Results {
		if raw.Symbol == "" {
			return nil, fmt.Errorf("quote without symbol in response")
		}

		if raw.RegularMarketPrice == nil {
			continue // suspended paper, no price available
		}

		res[raw.Symbol] = decimal.NewFromFloat(*raw.RegularMarketPrice)
	}

	return res, nil
}

func convertAssetType(rawType string) string {
	switch rawType {
	case "fund":
		return "fii"
	case "stock":
		return "acao"
	}
	return rawType
}
