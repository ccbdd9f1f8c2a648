package quoteModel

import "github.com/shopspring/decimal"

// RawQuotesResponse is the wire shape of the quote endpoint.
type RawQuotesResponse struct {
	Results []RawQuote `json:"results"`
}

type RawQuote struct {
	Symbol             string   `json:"symbol"`
	ShortName          string   `json:"shortName"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
}

// RawAssetsResponse is the wire shape of the asset listing endpoint.
type RawAssetsResponse struct {
	Stocks []RawAsset `json:"stocks"`
}

type RawAsset struct {
	Stock string `json:"stock"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

// AssetInfo is the parsed reference metadata for one ticker.
type AssetInfo struct {
	Ticker string
	Name   string
	Type   string
}

// Quote is a point-in-time market price for one ticker.
type Quote struct {
	Ticker string
	Price  decimal.Decimal
}
