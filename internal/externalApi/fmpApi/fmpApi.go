package fmpApi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/fmpModel"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/go-resty/resty/v2"
)

const (
	searchPath = "/stable/search-name"
	quotePath  = "/stable/quote"
	ratiosPath = "/stable/ratios-ttm"
)

type FmpApi struct {
	client *resty.Client
	apiKey string
}

func New(cfg *config.Config) *FmpApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.FMP.Url)
	return &FmpApi{client: client, apiKey: cfg.API.FMP.ApiKey}
}

func (a *FmpApi) Name() string {
	return config.VendorFMP
}

func (a *FmpApi) Search(ctx context.Context, query string) ([]model.SearchMatch, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FmpApi.Search"

	slog.Debug("start FmpApi.Search request", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))

	var raw []fmpModel.RawSearchMatch
	err := a.get(ctx, searchPath, map[string]string{"query": query}, &raw)
	if err != nil {
		slog.Error("FmpApi.Search failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	res := make([]model.SearchMatch, 0, len(raw))
	for _, m := range raw {
		if m.Symbol == "" {
			continue
		}
		res = append(res, model.SearchMatch{
			Symbol: m.Symbol,
			Name:   m.Name,
			Region: m.ExchangeFullName,
		})
	}

	slog.Debug("FmpApi.Search request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Int("matches", len(res)))

	return res, nil
}

// GetQuote combines the quote endpoint (price) with ratios-ttm (P/E, EPS).
// Missing ratios leave the fundamentals absent.
func (a *FmpApi) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FmpApi.GetQuote"

	slog.Debug("start FmpApi.GetQuote request", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))

	var rawQuotes []fmpModel.RawQuote
	err := a.get(ctx, quotePath, map[string]string{"symbol": symbol}, &rawQuotes)
	if err != nil {
		slog.Error("FmpApi quote request failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	if len(rawQuotes) == 0 {
		slog.Warn("symbol not found", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
		return model.Quote{}, externalApi.ErrNotFound
	}

	var rawRatios []fmpModel.RawRatiosTTM
	err = a.get(ctx, ratiosPath, map[string]string{"symbol": symbol}, &rawRatios)
	if err != nil {
		slog.Error("FmpApi ratios request failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	ratios := fmpModel.RawRatiosTTM{}
	if len(rawRatios) > 0 {
		ratios = rawRatios[0]
	}

	res, err := ParseQuote(rawQuotes[0], ratios)
	if err != nil {
		slog.Error("can't parse raw quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	slog.Debug("FmpApi.GetQuote request complete", slog.String("rqID", rqID), slog.String("op", op))

	return res, nil
}

// get decodes a JSON array into out. FMP reports failures as an object
// carrying "Error Message" in place of the array.
func (a *FmpApi) get(ctx context.Context, path string, params map[string]string, out any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		SetQueryParam("apikey", a.apiKey).
		Get(path)
	if err != nil {
		slog.Error("error while dialing FmpApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return fmt.Errorf("%w: %w", externalApi.ErrUpstream, err)
	}

	body := bytes.TrimSpace(resp.Body())

	if bytes.HasPrefix(body, []byte("{")) {
		rawErr := fmpModel.RawError{}
		if err = json.Unmarshal(body, &rawErr); err == nil && rawErr.ErrorMessage != "" {
			return fmt.Errorf("%w: %s", externalApi.ErrUpstream, rawErr.ErrorMessage)
		}
	}

	if resp.IsError() {
		slog.Error("FmpApi responded with error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID))
		return fmt.Errorf("%w: status %d", externalApi.ErrUpstream, resp.StatusCode())
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		slog.Error("can't unmarshall FmpApi response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return fmt.Errorf("%w: %w", externalApi.ErrMalformed, err)
	}

	return nil
}

// ParseQuote maps the raw quote and TTM ratios onto a quote.
// FMP quotes carry no sector.
func ParseQuote(rawQuote fmpModel.RawQuote, ratios fmpModel.RawRatiosTTM) (model.Quote, error) {
	if rawQuote.Symbol == "" || rawQuote.Name == "" || rawQuote.Exchange == "" {
		return model.Quote{}, fmt.Errorf("%w: quote misses symbol, name or exchange", externalApi.ErrMalformed)
	}

	if !rawQuote.Price.Valid || rawQuote.Price.Decimal.IsNegative() {
		return model.Quote{}, fmt.Errorf("%w: invalid price for %s", externalApi.ErrMalformed, rawQuote.Symbol)
	}

	res := model.Quote{
		Symbol:   strings.ToUpper(rawQuote.Symbol),
		Name:     rawQuote.Name,
		Exchange: model.ParseExchange(rawQuote.Exchange),
		Price:    rawQuote.Price.Decimal,
	}

	if ratios.Symbol == "" || strings.EqualFold(ratios.Symbol, rawQuote.Symbol) {
		res.PERatio = ratios.PriceToEarningsRatioTTM
		res.EPS = ratios.NetIncomePerShareTTM
	}

	return res, nil
}
