package quoteService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/data/cache"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

type Vendor interface {
	Name() string
	Search(ctx context.Context, query string) ([]model.SearchMatch, error)
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
}

type Cache interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	SetQuote(ctx context.Context, quote model.Quote) error
	GetSearch(ctx context.Context, vendor, query string) ([]model.SearchMatch, error)
	SetSearch(ctx context.Context, vendor, query string, matches []model.SearchMatch) error
	TrackedSymbols(ctx context.Context) ([]string, error)
}

// QuoteService answers proxy requests from the cache, falling back to the
// configured vendors. Cache failures never fail a request.
type QuoteService struct {
	searchVendor Vendor
	quoteVendor  Vendor
	cache        Cache
	searchLimit  int
}

func New(searchVendor, quoteVendor Vendor, cache Cache, searchLimit int) *QuoteService {
	return &QuoteService{
		searchVendor: searchVendor,
		quoteVendor:  quoteVendor,
		cache:        cache,
		searchLimit:  searchLimit,
	}
}

func (s *QuoteService) Search(ctx context.Context, query string) ([]model.SearchMatch, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteService.Search"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, service.ErrEmptyQuery
	}

	slog.Debug("Search start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		slog.Debug("Search finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	vendor := s.searchVendor.Name()

	matches, err := s.cache.GetSearch(ctx, vendor, query)
	if err == nil {
		return s.limit(matches), nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		slog.Warn("search cache unavailable, asking vendor", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	matches, err = s.searchVendor.Search(ctx, query)
	if err != nil {
		slog.Error("got error from vendor.Search", slog.String("rqID", rqID), slog.String("op", op), slog.String("vendor", vendor), slog.String("err", err.Error()))
		return nil, mapVendorErr(err)
	}

	if err = s.cache.SetSearch(ctx, vendor, query, matches); err != nil {
		slog.Warn("can't cache search result", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return s.limit(matches), nil
}

func (s *QuoteService) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteService.GetQuote"

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return model.Quote{}, service.ErrEmptyQuery
	}

	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("GetQuote finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	quote, err := s.cache.GetQuote(ctx, symbol)
	if err == nil {
		return quote, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		slog.Warn("quote cache unavailable, asking vendor", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return s.fetchQuote(ctx, symbol)
}

// RefreshTrackedQuotes re-fetches every symbol the proxy has served so the
// next request is answered from a warm cache. A failing symbol does not stop
// the others.
func (s *QuoteService) RefreshTrackedQuotes(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteService.RefreshTrackedQuotes"

	symbols, err := s.cache.TrackedSymbols(ctx)
	if err != nil {
		slog.Error("got error from cache.TrackedSymbols", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Info("refreshing tracked quotes", slog.String("rqID", rqID), slog.String("op", op), slog.Int("symbols", len(symbols)))

	var errs []error
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err = s.fetchQuote(ctx, symbol); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
		}
	}

	return errors.Join(errs...)
}

func (s *QuoteService) fetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteService.fetchQuote"

	quote, err := s.quoteVendor.GetQuote(ctx, symbol)
	if err != nil {
		slog.Error("got error from vendor.GetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("vendor", s.quoteVendor.Name()), slog.String("err", err.Error()))
		return model.Quote{}, mapVendorErr(err)
	}

	if err = s.cache.SetQuote(ctx, quote); err != nil {
		slog.Warn("can't cache quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return quote, nil
}

func (s *QuoteService) limit(matches []model.SearchMatch) []model.SearchMatch {
	if s.searchLimit > 0 && len(matches) > s.searchLimit {
		return matches[:s.searchLimit]
	}
	return matches
}

func mapVendorErr(err error) error {
	if errors.Is(err, externalApi.ErrNotFound) {
		return fmt.Errorf("%w: %w", service.ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", service.ErrUpstream, err)
}
