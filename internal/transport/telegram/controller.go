package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/data/session"
	"github.com/KotFed0t/portfolio_tracker/internal/addPositionFlow"
	"github.com/KotFed0t/portfolio_tracker/internal/converter/telebotConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/portfolio"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/telegram/middleware"
	"github.com/KotFed0t/portfolio_tracker/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg    = "Something went wrong, please try again later."
	upstreamErrMsg    = "Market data is unavailable right now, please try again."
	idleHintMsg       = "Use /add to add a stock or /portfolio to see your portfolio."
	commitInputHint   = "Enter purchase price and quantity separated by a space, e.g. 152.5 10"
	exportTooLargeMsg = "The export is too large to be sent."
	exportFilename    = "portfolio"
)

type QuoteClient interface {
	Search(ctx context.Context, query string) ([]model.SearchMatch, error)
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
}

type Session interface {
	GetSession(ctx context.Context, chatID int64) (model.Session, error)
	SetSession(ctx context.Context, chatID int64, s model.Session) error
	DeleteSession(ctx context.Context, chatID int64) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, rows []portfolio.Row, summary portfolio.Summary) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type Controller struct {
	cfg             *config.Config
	quotes          QuoteClient
	session         Session
	reportGenerator ReportGenerator
	// nil when exports above the telegram limit can't be uploaded
	cloudStorage CloudStorage
}

func NewController(cfg *config.Config, quotes QuoteClient, session Session, reportGenerator ReportGenerator, cloudStorage CloudStorage) *Controller {
	return &Controller{
		cfg:             cfg,
		quotes:          quotes,
		session:         session,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
	}
}

// chat is the per-event view over a chat session.
type chat struct {
	id      int64
	session model.Session
	store   *portfolio.Store
	flow    *addPositionFlow.Flow
}

func (ctrl *Controller) loadChat(ctx context.Context, c tele.Context) (*chat, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	chatID := c.Chat().ID

	chatSession, err := ctrl.session.GetSession(ctx, chatID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return nil, err
		}
		chatSession = model.Session{}
	}

	store := portfolio.NewStore(chatSession.Positions...)

	return &chat{
		id:      chatID,
		session: chatSession,
		store:   store,
		flow:    addPositionFlow.Restore(store, ctrl.quotes, chatSession.Flow),
	}, nil
}

func (ctrl *Controller) saveChat(ctx context.Context, ch *chat) error {
	ch.session.Flow = ch.flow.Snapshot()
	ch.session.Positions = ch.store.Positions()

	err := ctrl.session.SetSession(ctx, ch.id, ch.session)
	if err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
	}
	return err
}

func (ctrl *Controller) portfolioView(ch *chat) (string, *tele.ReplyMarkup) {
	table := portfolio.NewTable(ch.session.Sorting)
	positions := ch.store.Positions()
	return telebotConverter.PortfolioResponse(portfolio.Summarize(positions), table.Rows(positions), table.Sorting(), ch.session.Page, ctrl.cfg.StocksPerPage)
}

func (ctrl *Controller) Start(c tele.Context) error {
	ctx := ctxFromTele(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	if err := ctrl.session.DeleteSession(ctx, c.Chat().ID); err != nil {
		slog.Error("got error from session.DeleteSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send("Hello! I track your stock portfolio: add stocks, watch gain/loss and sort the table.", telebotConverter.ShowPortfolioMarkup())
}

func (ctrl *Controller) ShowPortfolio(c tele.Context) error {
	ctx := ctxFromTele(c)
	_ = c.Respond()

	ch, err := ctrl.loadChat(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	text, markup := ctrl.portfolioView(ch)
	return c.Send(text, markup, tele.ModeHTML)
}

// InitAddStock opens the add-position flow, restarting a flow left in progress.
func (ctrl *Controller) InitAddStock(c tele.Context) error {
	ctx := ctxFromTele(c)
	_ = c.Respond()

	ch, err := ctrl.loadChat(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	ch.flow.Cancel()
	if err = ch.flow.Open(); err != nil {
		slog.Error("got error from flow.Open", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	if err = ctrl.saveChat(ctx, ch); err != nil {
		return c.Send(internalErrMsg)
	}

	text, markup := telebotConverter.SearchPromptResponse()
	return c.Send(text, markup)
}

// OnText routes free text by the flow state: a search query while searching,
// "price quantity" once a stock is selected.
func (ctrl *Controller) OnText(c tele.Context) error {
	ctx := ctxFromTele(c)

	ch, err := ctrl.loadChat(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	switch ch.flow.State() {
	case model.FlowSearchOpen, model.FlowResultsShown:
		return ctrl.processSearch(ctx, c, ch)
	case model.FlowStockSelected:
		return ctrl.processCommit(ctx, c, ch)
	default:
		return c.Send(idleHintMsg)
	}
}

func (ctrl *Controller) processSearch(ctx context.Context, c tele.Context, ch *chat) error {
	query := c.Text()

	results, err := ch.flow.Search(ctx, query)
	if err != nil {
		if errors.Is(err, addPositionFlow.ErrEmptyQuery) {
			return c.Send("The search query is empty. Enter a company name or ticker:")
		}
		return c.Send(upstreamErrMsg)
	}

	if err = ctrl.saveChat(ctx, ch); err != nil {
		return c.Send(internalErrMsg)
	}

	text, markup := telebotConverter.SearchResultsResponse(strings.TrimSpace(query), results)
	return c.Send(text, markup, tele.ModeHTML)
}

func (ctrl *Controller) processCommit(ctx context.Context, c tele.Context, ch *chat) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	fields := strings.Fields(c.Text())
	if len(fields) != 2 {
		return c.Send(commitInputHint)
	}

	position, err := ch.flow.Commit(ctx, fields[0], fields[1])
	switch {
	case errors.Is(err, addPositionFlow.ErrInvalidPrice):
		return c.Send("Purchase price must be a positive number. " + commitInputHint)
	case errors.Is(err, addPositionFlow.ErrInvalidQuantity):
		return c.Send("Quantity must be a positive number. " + commitInputHint)
	case errors.Is(err, addPositionFlow.ErrDuplicateSymbol), errors.Is(err, portfolio.ErrAlreadyExists):
		ch.flow.Cancel()
		_ = ctrl.saveChat(ctx, ch)
		return c.Send("This stock is already in your portfolio.", telebotConverter.ShowPortfolioMarkup())
	case err != nil:
		slog.Error("got error from flow.Commit", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(upstreamErrMsg)
	}

	// back to the first page after an add
	ch.session.Page = 0

	if err = ctrl.saveChat(ctx, ch); err != nil {
		return c.Send(internalErrMsg)
	}

	slog.Info("position added", slog.String("rqID", rqID), slog.Int64("chatID", ch.id), slog.String("symbol", position.Symbol))

	if err = c.Send(telebotConverter.PositionAddedText(position), tele.ModeHTML); err != nil {
		return err
	}

	text, markup := ctrl.portfolioView(ch)
	return c.Send(text, markup, tele.ModeHTML)
}

func (ctrl *Controller) SelectStock(c tele.Context) error {
	ctx := ctxFromTele(c)
	_ = c.Respond()

	ch, err := ctrl.loadChat(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	err = ch.flow.Select(c.Data())
	switch {
	case errors.Is(err, addPositionFlow.ErrDuplicateSymbol):
		return c.Send("This stock is already in your portfolio. Pick another one or enter a new query.")
	case errors.Is(err, addPositionFlow.ErrUnknownSymbol), errors.Is(err, addPositionFlow.ErrInvalidTransition):
		return c.Send("These search results are outdated. " + idleHintMsg)
	case err != nil:
		return c.Send(internalErrMsg)
	}

	if err = ctrl.saveChat(ctx, ch); err != nil {
		return c.Send(internalErrMsg)
	}

	text, markup := telebotConverter.CommitPromptResponse(ch.flow.Selected())
	return c.Send(text, markup, tele.ModeHTML)
}

// Sort toggles the column from the callback payload and redraws the table in place.
func (ctrl *Controller) Sort(c tele.Context) error {
	ctx := ctxFromTele(c)
	_ = c.Respond()

	column, err := strconv.Atoi(c.Data())
	if err != nil || !portfolio.IsColumn(model.Column(column)) {
		slog.Warn("unexpected sort payload", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("data", c.Data()))
		return nil
	}

	ch, err := ctrl.loadChat(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	table := portfolio.NewTable(ch.session.Sorting)
	table.Toggle(model.Column(column))
	ch.session.Sorting = table.Sorting()
	ch.session.Page = 0

	if err = ctrl.saveChat(ctx, ch); err != nil {
		return c.Send(internalErrMsg)
	}

	text, markup := ctrl.portfolioView(ch)
	return c.Edit(text, markup, tele.ModeHTML)
}

// Page switches the portfolio view to the page from the callback payload.
func (ctrl *Controller) Page(c tele.Context) error {
	ctx := ctxFromTele(c)
	_ = c.Respond()

	page, err := strconv.Atoi(c.Data())
	if err != nil || page < 0 {
		slog.Warn("unexpected page payload", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("data", c.Data()))
		return nil
	}

	ch, err := ctrl.loadChat(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	ch.session.Page = page

	if err = ctrl.saveChat(ctx, ch); err != nil {
		return c.Send(internalErrMsg)
	}

	text, markup := ctrl.portfolioView(ch)
	return c.Edit(text, markup, tele.ModeHTML)
}

func (ctrl *Controller) Cancel(c tele.Context) error {
	ctx := ctxFromTele(c)
	_ = c.Respond()

	ch, err := ctrl.loadChat(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	if ch.flow.State() == model.FlowIdle {
		return c.Send(idleHintMsg)
	}

	ch.flow.Cancel()
	if err = ctrl.saveChat(ctx, ch); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send("Cancelled.", telebotConverter.ShowPortfolioMarkup())
}

// Export sends the current table view as an xlsx document. Files above the
// telegram limit are uploaded to cloud storage and sent as a link.
func (ctrl *Controller) Export(c tele.Context) error {
	ctx := ctxFromTele(c)
	rqID := utils.GetRequestIDFromCtx(ctx)
	_ = c.Respond()

	ch, err := ctrl.loadChat(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	positions := ch.store.Positions()
	if len(positions) == 0 {
		return c.Send("Your portfolio is empty, nothing to export.")
	}

	rows := portfolio.NewTable(ch.session.Sorting).Rows(positions)

	fileBytes, ext, err := ctrl.reportGenerator.Generate(ctx, rows, portfolio.Summarize(positions))
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	filename := exportFilename + ext

	if len(fileBytes) <= ctrl.cfg.Telegram.FileLimitInBytes {
		return c.Send(&tele.Document{File: tele.FromReader(bytes.NewReader(fileBytes)), FileName: filename})
	}

	if ctrl.cloudStorage == nil {
		slog.Warn("export exceeds telegram limit and cloud storage is disabled", slog.String("rqID", rqID), slog.Int("size", len(fileBytes)))
		return c.Send(exportTooLargeMsg)
	}

	link, err := ctrl.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), fmt.Sprintf("%s_%d%s", exportFilename, ch.id, ext))
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send("The export is too large for telegram, download it here: " + link)
}

func ctxFromTele(c tele.Context) context.Context {
	rqID, _ := c.Get(middleware.RqIDKey).(string)
	return utils.CtxWithRqID(context.Background(), rqID)
}
