package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("error session not found")

// RedisSession stores one model.Session per chat. Every write renews the
// expiration, so an abandoned session disappears after SessionExpiration.
type RedisSession struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisSession(redisClient *redis.Client, cfg *config.Config) *RedisSession {
	return &RedisSession{redis: redisClient, cfg: cfg}
}

func sessionKey(chatID int64) string {
	return "session:" + strconv.FormatInt(chatID, 10)
}

func (r *RedisSession) GetSession(ctx context.Context, chatID int64) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, sessionKey(chatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.Int64("chatID", chatID))
		return model.Session{}, err
	}

	s := model.Session{}
	err = json.Unmarshal([]byte(res), &s)
	if err != nil {
		slog.Error("can't unmarshall session", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.Int64("chatID", chatID))
		return model.Session{}, fmt.Errorf("can't unmarshall session: %w", err)
	}

	return s, nil
}

func (r *RedisSession) SetSession(ctx context.Context, chatID int64, s model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	sessionJson, err := json.Marshal(s)
	if err != nil {
		slog.Error("can't marshall session", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.Int64("chatID", chatID))
		return fmt.Errorf("can't marshall session: %w", err)
	}

	err = r.redis.Set(ctx, sessionKey(chatID), sessionJson, r.cfg.SessionExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.Int64("chatID", chatID))
		return err
	}

	return nil
}

func (r *RedisSession) DeleteSession(ctx context.Context, chatID int64) error {
	err := r.redis.Del(ctx, sessionKey(chatID)).Err()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()), slog.Int64("chatID", chatID))
		return err
	}
	return nil
}
