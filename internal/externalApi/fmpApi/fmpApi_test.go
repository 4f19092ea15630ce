package fmpApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type response struct {
	status int
	body   string
}

func newTestApi(t *testing.T, responses map[string]response) *FmpApi {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		resp, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if resp.status != 0 {
			w.WriteHeader(resp.status)
		}
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.Timeout = 5 * time.Second
	cfg.API.FMP.Url = srv.URL
	cfg.API.FMP.ApiKey = "test-key"

	return New(cfg)
}

func TestSearch(t *testing.T) {
	api := newTestApi(t, map[string]response{
		searchPath: {body: `[
			{"symbol": "AAPL", "name": "Apple Inc.", "currency": "USD", "exchangeFullName": "NASDAQ Global Select", "exchange": "NASDAQ"},
			{"symbol": "APLE", "name": "Apple Hospitality REIT, Inc.", "currency": "USD", "exchangeFullName": "New York Stock Exchange", "exchange": "NYSE"}
		]`},
	})

	matches, err := api.Search(context.Background(), "apple")

	require.NoError(t, err)
	assert.Equal(t, []model.SearchMatch{
		{Symbol: "AAPL", Name: "Apple Inc.", Region: "NASDAQ Global Select"},
		{Symbol: "APLE", Name: "Apple Hospitality REIT, Inc.", Region: "New York Stock Exchange"},
	}, matches)
}

func TestSearchErrorObject(t *testing.T) {
	api := newTestApi(t, map[string]response{
		searchPath: {status: http.StatusUnauthorized, body: `{"Error Message": "Invalid API KEY."}`},
	})

	_, err := api.Search(context.Background(), "apple")

	assert.ErrorIs(t, err, externalApi.ErrUpstream)
	assert.ErrorContains(t, err, "Invalid API KEY.")
}

func TestGetQuote(t *testing.T) {
	api := newTestApi(t, map[string]response{
		quotePath:  {body: `[{"symbol": "AAPL", "name": "Apple Inc.", "price": 196.45, "exchange": "NASDAQ"}]`},
		ratiosPath: {body: `[{"symbol": "AAPL", "priceToEarningsRatioTTM": 30.6, "netIncomePerShareTTM": 6.41}]`},
	})

	quote, err := api.GetQuote(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, model.ExchangeNASDAQ, quote.Exchange)
	assert.True(t, decimal.RequireFromString("196.45").Equal(quote.Price))
	require.True(t, quote.PERatio.Valid)
	assert.True(t, decimal.RequireFromString("30.6").Equal(quote.PERatio.Decimal))
	require.True(t, quote.EPS.Valid)
	assert.True(t, decimal.RequireFromString("6.41").Equal(quote.EPS.Decimal))
	assert.Empty(t, quote.Sector)
}

func TestGetQuoteWithoutRatios(t *testing.T) {
	api := newTestApi(t, map[string]response{
		quotePath:  {body: `[{"symbol": "RELIANCE.NS", "name": "Reliance Industries", "price": 1420.1, "exchange": "NSE"}]`},
		ratiosPath: {body: `[]`},
	})

	quote, err := api.GetQuote(context.Background(), "RELIANCE.NS")

	require.NoError(t, err)
	assert.Equal(t, model.ExchangeNSE, quote.Exchange)
	assert.False(t, quote.PERatio.Valid)
	assert.False(t, quote.EPS.Valid)
}

func TestGetQuoteErrors(t *testing.T) {
	tests := []struct {
		name      string
		responses map[string]response
		wantErr   error
	}{
		{
			name:      "unknown symbol",
			responses: map[string]response{quotePath: {body: `[]`}},
			wantErr:   externalApi.ErrNotFound,
		},
		{
			name:      "null price",
			responses: map[string]response{quotePath: {body: `[{"symbol": "X", "name": "X", "price": null, "exchange": "NYSE"}]`}, ratiosPath: {body: `[]`}},
			wantErr:   externalApi.ErrMalformed,
		},
		{
			name:      "bad gateway",
			responses: map[string]response{quotePath: {status: http.StatusBadGateway, body: `oops`}},
			wantErr:   externalApi.ErrUpstream,
		},
		{
			name:      "not an array",
			responses: map[string]response{quotePath: {body: `{"symbol": "X"}`}},
			wantErr:   externalApi.ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestApi(t, tt.responses)

			_, err := api.GetQuote(context.Background(), "X")

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
