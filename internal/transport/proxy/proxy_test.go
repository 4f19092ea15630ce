package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	lastQuery  string
	lastSymbol string
	err        error
}

func (f *fakeService) Search(ctx context.Context, query string) ([]model.SearchMatch, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	if query == "" {
		return nil, service.ErrEmptyQuery
	}
	return []model.SearchMatch{{Symbol: "RELIANCE.BSE", Name: "Reliance Industries", Region: "India/Bombay"}}, nil
}

func (f *fakeService) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	f.lastSymbol = symbol
	if f.err != nil {
		return model.Quote{}, f.err
	}
	return model.Quote{
		Symbol:   "RELIANCE.BSE",
		Name:     "Reliance Industries",
		Exchange: model.ExchangeBSE,
		Price:    decimal.RequireFromString("1420.15"),
		Sector:   "ENERGY",
		EPS:      decimal.NewNullDecimal(decimal.RequireFromString("51.2")),
	}, nil
}

func newTestServer(svc *fakeService) http.Handler {
	cfg := &config.Config{}
	return NewServer(cfg, NewQuoteRouter(NewHandler(svc))).Handler()
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	h.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	w := do(t, newTestServer(&fakeService{}), "/ping")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestSearch(t *testing.T) {
	svc := &fakeService{}
	h := newTestServer(svc)

	w := do(t, h, "/search?query=reliance")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"symbol":"RELIANCE.BSE","name":"Reliance Industries","region":"India/Bombay"}]`, w.Body.String())
	assert.Equal(t, "reliance", svc.lastQuery)
	assert.NotEmpty(t, w.Header().Get(rqIDHeader))
}

func TestSearchAlias(t *testing.T) {
	svc := &fakeService{}

	w := do(t, newTestServer(svc), "/search?q=tata%20motors")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tata motors", svc.lastQuery)
}

func TestSearchMissingQuery(t *testing.T) {
	w := do(t, newTestServer(&fakeService{}), "/search")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"query is required"}`, w.Body.String())
}

func TestGetQuote(t *testing.T) {
	svc := &fakeService{}

	w := do(t, newTestServer(svc), "/quote/RELIANCE.BSE")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "RELIANCE.BSE", svc.lastSymbol)
	assert.JSONEq(t, `{"symbol":"RELIANCE.BSE","name":"Reliance Industries","exchange":"BSE","price":1420.15,"sector":"ENERGY","peratio":null,"eps":51.2}`, w.Body.String())
}

func TestGetQuoteErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: service.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "upstream", err: service.ErrUpstream, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(&fakeService{err: tt.err}), "/quote/XYZ")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestServer(&fakeService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(rqIDHeader, "rq-42")

	h.ServeHTTP(w, req)

	assert.Equal(t, "rq-42", w.Header().Get(rqIDHeader))
}
