package tgbot

import (
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model/tg/tgCallback"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/telegram"
	customMW "github.com/KotFed0t/portfolio_tracker/internal/transport/telegram/middleware"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot  *tele.Bot
	ctrl *telegram.Controller
}

// New creates the bot. Updates are handled one at a time so a chat never sees
// two events racing on its session.
func New(cfg *config.Config, ctrl *telegram.Controller) (*TGBot, error) {
	settings := tele.Settings{
		Token:       cfg.Telegram.Token,
		Poller:      &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
		Synchronous: true,
		OnError: func(err error, c tele.Context) {
			slog.Error("telebot error", slog.String("err", err.Error()))
		},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		return nil, fmt.Errorf("tele.NewBot: %w", err)
	}

	return &TGBot{bot: b, ctrl: ctrl}, nil
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/portfolio", b.ctrl.ShowPortfolio)
	b.bot.Handle("/add", b.ctrl.InitAddStock)
	b.bot.Handle("/cancel", b.ctrl.Cancel)
	b.bot.Handle("/export", b.ctrl.Export)

	b.bot.Handle(tele.OnText, b.ctrl.OnText)

	b.bot.Handle(&tele.Btn{Unique: tgCallback.AddStock}, b.ctrl.InitAddStock)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.SelectStock}, b.ctrl.SelectStock)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Sort}, b.ctrl.Sort)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Page}, b.ctrl.Page)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Cancel}, b.ctrl.Cancel)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.ShowPortfolio}, b.ctrl.ShowPortfolio)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Export}, b.ctrl.Export)
}
