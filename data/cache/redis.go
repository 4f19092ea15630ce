package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("error not found in cache")

const trackedSymbolsKey = "tracked_symbols"

// RedisCache keeps proxy responses. Quotes live for Cache.QuotesExpiration,
// search results for Cache.SearchExpiration. Every cached quote symbol is
// also remembered in the tracked set so the refresh job can warm it.
type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func quoteKey(symbol string) string {
	return "quote:" + strings.ToUpper(symbol)
}

func searchKey(vendor, query string) string {
	return "search:" + vendor + ":" + strings.ToLower(strings.TrimSpace(query))
}

func (r *RedisCache) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("symbol", symbol))

	quote := model.Quote{}
	err := r.get(ctx, quoteKey(symbol), &quote)
	if err != nil {
		return model.Quote{}, err
	}

	slog.Debug("GetQuote finished", slog.String("rqID", rqID))

	return quote, nil
}

// SetQuote stores the quote and adds its symbol to the tracked set in one transaction.
func (r *RedisCache) SetQuote(ctx context.Context, quote model.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start SetQuote", slog.String("rqID", rqID), slog.String("symbol", quote.Symbol))

	quoteJson, err := json.Marshal(quote)
	if err != nil {
		slog.Error("can't marshall quote in SetQuote", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.Any("quote", quote))
		return fmt.Errorf("can't marshall quote: %w", err)
	}

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, quoteKey(quote.Symbol), quoteJson, r.cfg.Cache.QuotesExpiration)
		pipe.SAdd(ctx, trackedSymbolsKey, strings.ToUpper(quote.Symbol))
		return nil
	})
	if err != nil {
		slog.Error("failed on TxPipelined", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuote completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetSearch(ctx context.Context, vendor, query string) ([]model.SearchMatch, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetSearch start", slog.String("rqID", rqID), slog.String("query", query))

	var matches []model.SearchMatch
	err := r.get(ctx, searchKey(vendor, query), &matches)
	if err != nil {
		return nil, err
	}

	slog.Debug("GetSearch finished", slog.String("rqID", rqID), slog.Int("matches", len(matches)))

	return matches, nil
}

func (r *RedisCache) SetSearch(ctx context.Context, vendor, query string, matches []model.SearchMatch) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if matches == nil {
		matches = []model.SearchMatch{}
	}

	matchesJson, err := json.Marshal(matches)
	if err != nil {
		slog.Error("can't marshall matches in SetSearch", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return fmt.Errorf("can't marshall matches: %w", err)
	}

	err = r.redis.Set(ctx, searchKey(vendor, query), matchesJson, r.cfg.Cache.SearchExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (r *RedisCache) TrackedSymbols(ctx context.Context) ([]string, error) {
	symbols, err := r.redis.SMembers(ctx, trackedSymbolsKey).Result()
	if err != nil {
		slog.Error("failed on redis.SMembers", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return nil, err
	}
	return symbols, nil
}

func (r *RedisCache) get(ctx context.Context, key string, out any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	err = json.Unmarshal([]byte(res), out)
	if err != nil {
		slog.Error(
			"can't unmarshall cached value",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("key", key),
			slog.String("resultFromRedis", res),
		)
		return fmt.Errorf("can't unmarshall cached value: %w", err)
	}

	return nil
}
