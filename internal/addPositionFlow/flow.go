package addPositionFlow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/portfolio"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyQuery        = errors.New("empty search query")
	ErrInvalidPrice      = errors.New("purchase price must be a positive number")
	ErrInvalidQuantity   = errors.New("quantity must be a positive number")
	ErrDuplicateSymbol   = errors.New("stock is already in the portfolio")
	ErrUnknownSymbol     = errors.New("symbol is not among the search results")
	ErrInvalidTransition = errors.New("action is not allowed in the current state")
)

type QuoteClient interface {
	Search(ctx context.Context, query string) ([]model.SearchMatch, error)
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
}

// Flow walks a user through search -> select -> price/quantity -> commit and
// appends the resulting position to the store.
type Flow struct {
	state    model.FlowState
	query    string
	results  []string
	selected string

	store  *portfolio.Store
	quotes QuoteClient
}

func New(store *portfolio.Store, quotes QuoteClient) *Flow {
	return &Flow{store: store, quotes: quotes}
}

// Restore rebuilds a flow from a snapshot. A snapshot taken mid-commit is
// restored as StockSelected since the commit never finished.
func Restore(store *portfolio.Store, quotes QuoteClient, snapshot model.FlowSnapshot) *Flow {
	f := New(store, quotes)
	f.state = snapshot.State
	f.query = snapshot.Query
	f.results = slices.Clone(snapshot.Results)
	f.selected = snapshot.SelectedSymbol

	if f.state == model.FlowCommitting {
		f.state = model.FlowStockSelected
	}

	return f
}

func (f *Flow) Snapshot() model.FlowSnapshot {
	return model.FlowSnapshot{
		State:          f.state,
		Query:          f.query,
		Results:        slices.Clone(f.results),
		SelectedSymbol: f.selected,
	}
}

func (f *Flow) State() model.FlowState {
	return f.state
}

func (f *Flow) Results() []string {
	return slices.Clone(f.results)
}

func (f *Flow) Selected() string {
	return f.selected
}

// Open shows the search form.
func (f *Flow) Open() error {
	if f.state != model.FlowIdle {
		return f.transitionErr("open")
	}
	f.state = model.FlowSearchOpen
	return nil
}

// Search looks up symbols matching query. On failure the flow keeps its state.
func (f *Flow) Search(ctx context.Context, query string) ([]string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "addPositionFlow.Search"

	if f.state != model.FlowSearchOpen && f.state != model.FlowResultsShown {
		return nil, f.transitionErr("search")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	slog.Debug("Search start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))

	matches, err := f.quotes.Search(ctx, query)
	if err != nil {
		slog.Error("got error from quotes.Search", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	results := make([]string, 0, len(matches))
	for _, m := range matches {
		symbol := portfolio.NormalizeSymbol(m.Symbol)
		if symbol == "" || slices.Contains(results, symbol) {
			continue
		}
		results = append(results, symbol)
	}

	f.query = query
	f.results = results
	f.state = model.FlowResultsShown

	slog.Debug("Search finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("results", len(results)))

	return slices.Clone(results), nil
}

// Select picks one of the shown symbols. Symbols already held are rejected.
func (f *Flow) Select(symbol string) error {
	if f.state != model.FlowResultsShown {
		return f.transitionErr("select")
	}

	symbol = portfolio.NormalizeSymbol(symbol)

	if !slices.Contains(f.results, symbol) {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	if f.store.Contains(symbol) {
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, symbol)
	}

	f.selected = symbol
	f.results = nil
	f.state = model.FlowStockSelected
	return nil
}

// Commit validates the entered price and quantity, fetches the live quote for
// the selected symbol and adds the new position to the head of the store.
// Invalid input is rejected before any network call. A failed fetch returns
// the flow to StockSelected with the store untouched.
func (f *Flow) Commit(ctx context.Context, priceInput, quantityInput string) (model.Position, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "addPositionFlow.Commit"

	if f.state != model.FlowStockSelected {
		return model.Position{}, f.transitionErr("commit")
	}

	price, err := parsePositive(priceInput)
	if err != nil {
		return model.Position{}, ErrInvalidPrice
	}

	quantity, err := parsePositive(quantityInput)
	if err != nil {
		return model.Position{}, ErrInvalidQuantity
	}

	if f.store.Contains(f.selected) {
		return model.Position{}, fmt.Errorf("%w: %s", ErrDuplicateSymbol, f.selected)
	}

	slog.Debug("Commit start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", f.selected))

	f.state = model.FlowCommitting

	quote, err := f.quotes.GetQuote(ctx, f.selected)
	if err != nil {
		f.state = model.FlowStockSelected
		slog.Error("got error from quotes.GetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Position{}, fmt.Errorf("get quote %s: %w", f.selected, err)
	}

	position := model.Position{
		Symbol:         f.selected,
		Name:           quote.Name,
		Exchange:       quote.Exchange,
		Sector:         quote.Sector,
		PurchasePrice:  price,
		Quantity:       quantity,
		CurrentPrice:   quote.Price,
		PERatio:        quote.PERatio,
		LatestEarnings: quote.EPS,
	}

	err = f.store.Add(position)
	if err != nil {
		f.state = model.FlowStockSelected
		slog.Error("got error from store.Add", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Position{}, err
	}

	f.reset()

	slog.Debug("Commit finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", position.Symbol))

	return position, nil
}

// Cancel abandons the flow from any state.
func (f *Flow) Cancel() {
	f.reset()
}

func (f *Flow) reset() {
	f.state = model.FlowIdle
	f.query = ""
	f.results = nil
	f.selected = ""
}

func (f *Flow) transitionErr(action string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, action, f.state)
}

func parsePositive(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, errors.New("empty value")
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}

	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("non positive value %s", v)
	}

	return v, nil
}
