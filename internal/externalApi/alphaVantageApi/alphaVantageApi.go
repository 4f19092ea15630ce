package alphaVantageApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/alphaVantageModel"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const queryPath = "/query"

type AlphaVantageApi struct {
	client *resty.Client
	apiKey string
}

func New(cfg *config.Config) *AlphaVantageApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.AlphaVantage.Url)
	return &AlphaVantageApi{client: client, apiKey: cfg.API.AlphaVantage.ApiKey}
}

func (a *AlphaVantageApi) Name() string {
	return config.VendorAlphaVantage
}

func (a *AlphaVantageApi) Search(ctx context.Context, query string) ([]model.SearchMatch, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlphaVantageApi.Search"

	slog.Debug("start AlphaVantageApi.Search request", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))

	raw := alphaVantageModel.RawSearch{}
	err := a.get(ctx, map[string]string{"function": "SYMBOL_SEARCH", "keywords": query}, &raw)
	if err != nil {
		return nil, err
	}

	if err = checkEnvelope(raw.Envelope); err != nil {
		slog.Error("AlphaVantageApi returned error envelope", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	res := ParseSearch(raw)

	slog.Debug("AlphaVantageApi.Search request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Int("matches", len(res)))

	return res, nil
}

// GetQuote combines GLOBAL_QUOTE (price) and OVERVIEW (fundamentals).
func (a *AlphaVantageApi) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlphaVantageApi.GetQuote"

	slog.Debug("start AlphaVantageApi.GetQuote request", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))

	rawQuote := alphaVantageModel.RawGlobalQuote{}
	err := a.get(ctx, map[string]string{"function": "GLOBAL_QUOTE", "symbol": symbol}, &rawQuote)
	if err != nil {
		return model.Quote{}, err
	}

	if err = checkEnvelope(rawQuote.Envelope); err != nil {
		slog.Error("AlphaVantageApi returned error envelope on GLOBAL_QUOTE", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	if rawQuote.GlobalQuote.Symbol == "" && rawQuote.GlobalQuote.Price == "" {
		slog.Warn("symbol not found in GLOBAL_QUOTE", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
		return model.Quote{}, externalApi.ErrNotFound
	}

	rawOverview := alphaVantageModel.RawOverview{}
	err = a.get(ctx, map[string]string{"function": "OVERVIEW", "symbol": symbol}, &rawOverview)
	if err != nil {
		return model.Quote{}, err
	}

	if err = checkEnvelope(rawOverview.Envelope); err != nil {
		slog.Error("AlphaVantageApi returned error envelope on OVERVIEW", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	if rawOverview.Symbol == "" && rawOverview.Name == "" {
		slog.Warn("symbol not found in OVERVIEW", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
		return model.Quote{}, externalApi.ErrNotFound
	}

	res, err := ParseQuote(rawQuote.GlobalQuote, rawOverview)
	if err != nil {
		slog.Error("can't parse raw quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	slog.Debug("AlphaVantageApi.GetQuote request complete", slog.String("rqID", rqID), slog.String("op", op))

	return res, nil
}

func (a *AlphaVantageApi) get(ctx context.Context, params map[string]string, out any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		SetQueryParam("apikey", a.apiKey).
		Get(queryPath)
	if err != nil {
		slog.Error("error while dialing AlphaVantageApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return fmt.Errorf("%w: %w", externalApi.ErrUpstream, err)
	}

	if resp.IsError() {
		slog.Error("AlphaVantageApi responded with error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID))
		return fmt.Errorf("%w: status %d", externalApi.ErrUpstream, resp.StatusCode())
	}

	err = json.Unmarshal(resp.Body(), out)
	if err != nil {
		slog.Error("can't unmarshall AlphaVantageApi response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return fmt.Errorf("%w: %w", externalApi.ErrMalformed, err)
	}

	return nil
}

func checkEnvelope(e alphaVantageModel.Envelope) error {
	switch {
	case e.ErrorMessage != "":
		return fmt.Errorf("%w: %s", externalApi.ErrUpstream, e.ErrorMessage)
	case e.Note != "":
		return fmt.Errorf("%w: %s", externalApi.ErrUpstream, e.Note)
	case e.Information != "":
		return fmt.Errorf("%w: %s", externalApi.ErrUpstream, e.Information)
	}
	return nil
}

// ParseSearch maps the SYMBOL_SEARCH payload onto search matches.
func ParseSearch(raw alphaVantageModel.RawSearch) []model.SearchMatch {
	res := make([]model.SearchMatch, 0, len(raw.BestMatches))
	for _, m := range raw.BestMatches {
		if m.Symbol == "" {
			continue
		}
		res = append(res, model.SearchMatch{
			Symbol: m.Symbol,
			Name:   m.Name,
			Region: m.Region,
		})
	}
	return res
}

// ParseQuote maps GLOBAL_QUOTE and OVERVIEW payloads onto a quote.
// Symbol, name, exchange and price are required.
func ParseQuote(rawQuote alphaVantageModel.RawQuote, rawOverview alphaVantageModel.RawOverview) (model.Quote, error) {
	if rawOverview.Symbol == "" || rawOverview.Name == "" || rawOverview.Exchange == "" {
		return model.Quote{}, fmt.Errorf("%w: overview misses symbol, name or exchange", externalApi.ErrMalformed)
	}

	if rawQuote.Symbol != "" && !strings.EqualFold(rawQuote.Symbol, rawOverview.Symbol) {
		return model.Quote{}, fmt.Errorf("%w: quote symbol %s != overview symbol %s", externalApi.ErrMalformed, rawQuote.Symbol, rawOverview.Symbol)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(rawQuote.Price))
	if err != nil || price.IsNegative() {
		return model.Quote{}, fmt.Errorf("%w: invalid price %q", externalApi.ErrMalformed, rawQuote.Price)
	}

	return model.Quote{
		Symbol:   strings.ToUpper(rawOverview.Symbol),
		Name:     rawOverview.Name,
		Exchange: model.ParseExchange(rawOverview.Exchange),
		Price:    price,
		Sector:   rawOverview.Sector,
		PERatio:  parseOptional(rawOverview.PERatio),
		EPS:      parseOptional(rawOverview.EPS),
	}, nil
}

// "None", "-" and other non numeric values mean the figure is not reported
func parseOptional(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
