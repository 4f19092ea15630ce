package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

// RqIDKey is the tele.Context key holding the request id of an update.
const RqIDKey = "rqID"

func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set(RqIDKey, rqID)

			var chatID int64
			if c.Chat() != nil {
				chatID = c.Chat().ID
			}

			slog.Info(
				"start request",
				slog.String("rqID", rqID),
				slog.Int64("chatID", chatID),
			)

			err := next(c)

			if err != nil {
				slog.Error("request failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
			}

			slog.Info(
				"request finished",
				slog.String("rqID", rqID),
				slog.Duration("duration", time.Since(now)),
			)

			return err
		}
	}
}
