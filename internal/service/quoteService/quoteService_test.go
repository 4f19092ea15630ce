package quoteService

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/data/cache"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVendor struct {
	name        string
	matches     []model.SearchMatch
	quotes      map[string]model.Quote
	err         error
	searchCalls int
	quoteCalls  int
}

func (f *fakeVendor) Name() string { return f.name }

func (f *fakeVendor) Search(ctx context.Context, query string) ([]model.SearchMatch, error) {
	f.searchCalls++
	return f.matches, f.err
}

func (f *fakeVendor) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	f.quoteCalls++
	if f.err != nil {
		return model.Quote{}, f.err
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return model.Quote{}, externalApi.ErrNotFound
	}
	return q, nil
}

func newVendor() *fakeVendor {
	return &fakeVendor{
		name: "fake",
		matches: []model.SearchMatch{
			{Symbol: "IBM", Name: "International Business Machines"},
			{Symbol: "IBMN", Name: "iShares iBonds"},
			{Symbol: "IBM.LON", Name: "International Business Machines"},
		},
		quotes: map[string]model.Quote{
			"IBM": {Symbol: "IBM", Name: "International Business Machines", Exchange: model.ExchangeNYSE, Price: decimal.RequireFromString("250.5")},
			"TCS": {Symbol: "TCS", Name: "Tata Consultancy Services", Exchange: model.ExchangeNSE, Price: decimal.RequireFromString("3500")},
		},
	}
}

func newTestCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{}
	cfg.Cache.QuotesExpiration = time.Minute
	cfg.Cache.SearchExpiration = time.Hour

	return cache.NewRedisCache(rdb, cfg), mr
}

func TestSearchUsesCache(t *testing.T) {
	c, _ := newTestCache(t)
	vendor := newVendor()
	s := New(vendor, vendor, c, 2)

	first, err := s.Search(context.Background(), " ibm ")
	require.NoError(t, err)
	second, err := s.Search(context.Background(), "IBM")
	require.NoError(t, err)

	assert.Len(t, first, 2, "limited to searchLimit")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, vendor.searchCalls)
}

func TestSearchEmptyQuery(t *testing.T) {
	c, _ := newTestCache(t)
	vendor := newVendor()
	s := New(vendor, vendor, c, 10)

	_, err := s.Search(context.Background(), "  ")

	assert.ErrorIs(t, err, service.ErrEmptyQuery)
	assert.Zero(t, vendor.searchCalls)
}

func TestSearchVendorFailure(t *testing.T) {
	c, _ := newTestCache(t)
	vendor := newVendor()
	vendor.err = externalApi.ErrUpstream
	s := New(vendor, vendor, c, 10)

	_, err := s.Search(context.Background(), "ibm")

	assert.ErrorIs(t, err, service.ErrUpstream)
}

func TestGetQuoteUsesCache(t *testing.T) {
	c, _ := newTestCache(t)
	vendor := newVendor()
	s := New(vendor, vendor, c, 10)

	first, err := s.GetQuote(context.Background(), "ibm")
	require.NoError(t, err)
	second, err := s.GetQuote(context.Background(), "IBM")
	require.NoError(t, err)

	assert.Equal(t, "IBM", first.Symbol)
	assert.True(t, first.Price.Equal(second.Price))
	assert.Equal(t, 1, vendor.quoteCalls)
}

func TestGetQuoteErrors(t *testing.T) {
	tests := []struct {
		name      string
		vendorErr error
		symbol    string
		wantErr   error
	}{
		{name: "unknown symbol", symbol: "NOPE", wantErr: service.ErrNotFound},
		{name: "upstream failure", symbol: "IBM", vendorErr: externalApi.ErrUpstream, wantErr: service.ErrUpstream},
		{name: "malformed payload", symbol: "IBM", vendorErr: externalApi.ErrMalformed, wantErr: service.ErrUpstream},
		{name: "empty symbol", symbol: " ", wantErr: service.ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCache(t)
			vendor := newVendor()
			vendor.err = tt.vendorErr
			s := New(vendor, vendor, c, 10)

			_, err := s.GetQuote(context.Background(), tt.symbol)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCacheOutageFallsThrough(t *testing.T) {
	c, mr := newTestCache(t)
	vendor := newVendor()
	s := New(vendor, vendor, c, 10)
	mr.Close()

	quote, err := s.GetQuote(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, "IBM", quote.Symbol)

	matches, err := s.Search(context.Background(), "ibm")
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestRefreshTrackedQuotes(t *testing.T) {
	c, mr := newTestCache(t)
	vendor := newVendor()
	s := New(vendor, vendor, c, 10)
	ctx := context.Background()

	_, err := s.GetQuote(ctx, "IBM")
	require.NoError(t, err)
	_, err = s.GetQuote(ctx, "TCS")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	vendor.quoteCalls = 0

	require.NoError(t, s.RefreshTrackedQuotes(ctx))
	assert.Equal(t, 2, vendor.quoteCalls)

	_, err = s.GetQuote(ctx, "TCS")
	require.NoError(t, err)
	assert.Equal(t, 2, vendor.quoteCalls, "served from the warmed cache")
}

func TestRefreshTrackedQuotesReportsFailures(t *testing.T) {
	c, _ := newTestCache(t)
	vendor := newVendor()
	s := New(vendor, vendor, c, 10)
	ctx := context.Background()

	_, err := s.GetQuote(ctx, "IBM")
	require.NoError(t, err)

	vendor.err = externalApi.ErrUpstream

	err = s.RefreshTrackedQuotes(ctx)
	assert.ErrorIs(t, err, service.ErrUpstream)
	assert.ErrorContains(t, err, "IBM")
}
