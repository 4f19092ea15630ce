package quoteApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/converter/proxyConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/proxyModel"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/go-resty/resty/v2"
)

const rqIDHeader = "X-Request-ID"

// QuoteApi is the client of the quote proxy.
type QuoteApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *QuoteApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.Proxy.Url)
	return &QuoteApi{client: client}
}

func (a *QuoteApi) Search(ctx context.Context, query string) ([]model.SearchMatch, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteApi.Search"

	slog.Debug("start QuoteApi.Search request", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))

	var raw []proxyModel.SearchMatch
	err := a.get(ctx, "/search", map[string]string{"query": query}, &raw)
	if err != nil {
		return nil, err
	}

	slog.Debug("QuoteApi.Search request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Int("matches", len(raw)))

	return proxyConverter.ConvertProxyToSearch(raw), nil
}

func (a *QuoteApi) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteApi.GetQuote"

	slog.Debug("start QuoteApi.GetQuote request", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))

	raw := proxyModel.Quote{}
	err := a.get(ctx, "/quote/"+url.PathEscape(symbol), nil, &raw)
	if err != nil {
		return model.Quote{}, err
	}

	res, err := proxyConverter.ConvertProxyToQuote(raw)
	if err != nil {
		slog.Error("can't convert proxy quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, fmt.Errorf("%w: %w", externalApi.ErrMalformed, err)
	}

	slog.Debug("QuoteApi.GetQuote request complete", slog.String("rqID", rqID), slog.String("op", op))

	return res, nil
}

func (a *QuoteApi) get(ctx context.Context, path string, params map[string]string, out any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader(rqIDHeader, rqID).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		slog.Error("error while dialing quote proxy", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return fmt.Errorf("%w: %w", externalApi.ErrUpstream, err)
	}

	if resp.IsError() {
		proxyErr := proxyModel.Error{}
		_ = json.Unmarshal(resp.Body(), &proxyErr)

		slog.Error("quote proxy responded with error", slog.Int("status", resp.StatusCode()), slog.String("error", proxyErr.Error), slog.String("rqID", rqID))

		if resp.StatusCode() == http.StatusNotFound {
			return fmt.Errorf("%w: %s", externalApi.ErrNotFound, proxyErr.Error)
		}
		return fmt.Errorf("%w: status %d: %s", externalApi.ErrUpstream, resp.StatusCode(), proxyErr.Error)
	}

	err = json.Unmarshal(resp.Body(), out)
	if err != nil {
		slog.Error("can't unmarshall quote proxy response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return fmt.Errorf("%w: %w", externalApi.ErrMalformed, err)
	}

	return nil
}
