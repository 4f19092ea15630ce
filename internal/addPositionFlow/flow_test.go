package addPositionFlow

import (
	"context"
	"errors"
	"testing"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/portfolio"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuotes struct {
	matches     []model.SearchMatch
	quote       model.Quote
	searchErr   error
	quoteErr    error
	searchCalls int
	quoteCalls  int
}

func (f *fakeQuotes) Search(ctx context.Context, query string) ([]model.SearchMatch, error) {
	f.searchCalls++
	return f.matches, f.searchErr
}

func (f *fakeQuotes) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	f.quoteCalls++
	if f.quoteErr != nil {
		return model.Quote{}, f.quoteErr
	}
	return f.quote, nil
}

func newFakeQuotes() *fakeQuotes {
	return &fakeQuotes{
		matches: []model.SearchMatch{
			{Symbol: "IBM", Name: "International Business Machines"},
			{Symbol: "ibm", Name: "duplicate in lower case"},
			{Symbol: "IBMN", Name: "iShares"},
		},
		quote: model.Quote{
			Symbol:   "IBM",
			Name:     "International Business Machines",
			Exchange: model.ExchangeNYSE,
			Price:    decimal.RequireFromString("250.5"),
			Sector:   "TECHNOLOGY",
			PERatio:  decimal.NewNullDecimal(decimal.RequireFromString("40.1")),
			EPS:      decimal.NewNullDecimal(decimal.RequireFromString("6.25")),
		},
	}
}

// selectedFlow returns a flow that has IBM selected.
func selectedFlow(t *testing.T, store *portfolio.Store, quotes *fakeQuotes) *Flow {
	t.Helper()

	f := New(store, quotes)
	require.NoError(t, f.Open())
	_, err := f.Search(context.Background(), "international business")
	require.NoError(t, err)
	require.NoError(t, f.Select("ibm"))
	require.Equal(t, model.FlowStockSelected, f.State())
	return f
}

func TestFlowHappyPath(t *testing.T) {
	store := portfolio.NewStore()
	quotes := newFakeQuotes()
	f := New(store, quotes)

	require.NoError(t, f.Open())
	assert.Equal(t, model.FlowSearchOpen, f.State())

	results, err := f.Search(context.Background(), "  international business ")
	require.NoError(t, err)
	assert.Equal(t, []string{"IBM", "IBMN"}, results)
	assert.Equal(t, model.FlowResultsShown, f.State())

	require.NoError(t, f.Select("IBM"))
	assert.Equal(t, "IBM", f.Selected())

	position, err := f.Commit(context.Background(), "200", "4")
	require.NoError(t, err)

	assert.Equal(t, model.FlowIdle, f.State())
	assert.Equal(t, "IBM", position.Symbol)
	assert.Equal(t, model.ExchangeNYSE, position.Exchange)
	assert.True(t, position.Investment().Equal(decimal.NewFromInt(800)))
	assert.True(t, position.CurrentPrice.Equal(decimal.RequireFromString("250.5")))
	assert.True(t, position.PERatio.Valid)

	require.Equal(t, 1, store.Len())
	assert.Equal(t, position, store.Positions()[0])
	assert.Equal(t, model.FlowSnapshot{}, f.Snapshot())
}

func TestFlowSearchEmptyQuery(t *testing.T) {
	quotes := newFakeQuotes()
	f := New(portfolio.NewStore(), quotes)
	require.NoError(t, f.Open())

	_, err := f.Search(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Equal(t, model.FlowSearchOpen, f.State())
	assert.Zero(t, quotes.searchCalls)
}

func TestFlowSearchFailureKeepsState(t *testing.T) {
	quotes := newFakeQuotes()
	quotes.searchErr = errors.New("boom")
	f := New(portfolio.NewStore(), quotes)
	require.NoError(t, f.Open())

	_, err := f.Search(context.Background(), "ibm")

	assert.Error(t, err)
	assert.Equal(t, model.FlowSearchOpen, f.State())
}

func TestFlowSearchNoResults(t *testing.T) {
	quotes := newFakeQuotes()
	quotes.matches = nil
	f := New(portfolio.NewStore(), quotes)
	require.NoError(t, f.Open())

	results, err := f.Search(context.Background(), "nothing")

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, model.FlowResultsShown, f.State())
}

func TestFlowSelectDuplicate(t *testing.T) {
	store := portfolio.NewStore(model.Position{
		Symbol:        "IBM",
		PurchasePrice: decimal.NewFromInt(1),
		Quantity:      decimal.NewFromInt(1),
	})
	f := New(store, newFakeQuotes())
	require.NoError(t, f.Open())
	_, err := f.Search(context.Background(), "ibm")
	require.NoError(t, err)

	err = f.Select("IBM")

	assert.ErrorIs(t, err, ErrDuplicateSymbol)
	assert.Equal(t, model.FlowResultsShown, f.State())
	assert.Equal(t, 1, store.Len())
}

func TestFlowSelectUnknownSymbol(t *testing.T) {
	f := New(portfolio.NewStore(), newFakeQuotes())
	require.NoError(t, f.Open())
	_, err := f.Search(context.Background(), "ibm")
	require.NoError(t, err)

	assert.ErrorIs(t, f.Select("AAPL"), ErrUnknownSymbol)
	assert.Equal(t, model.FlowResultsShown, f.State())
}

func TestFlowCommitInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity string
		wantErr  error
	}{
		{name: "empty price", price: "", quantity: "1", wantErr: ErrInvalidPrice},
		{name: "zero quantity", price: "10", quantity: "0", wantErr: ErrInvalidQuantity},
		{name: "negative price", price: "-1", quantity: "1", wantErr: ErrInvalidPrice},
		{name: "non numeric quantity", price: "10", quantity: "ten", wantErr: ErrInvalidQuantity},
		{name: "empty quantity", price: "10", quantity: " ", wantErr: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := portfolio.NewStore()
			quotes := newFakeQuotes()
			f := selectedFlow(t, store, quotes)

			_, err := f.Commit(context.Background(), tt.price, tt.quantity)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, quotes.quoteCalls, "no network call for invalid input")
			assert.Equal(t, model.FlowStockSelected, f.State())
			assert.Zero(t, store.Len())
		})
	}
}

func TestFlowCommitDecimalComma(t *testing.T) {
	store := portfolio.NewStore()
	f := selectedFlow(t, store, newFakeQuotes())

	position, err := f.Commit(context.Background(), "10,5", "2")

	require.NoError(t, err)
	assert.True(t, position.PurchasePrice.Equal(decimal.RequireFromString("10.5")))
}

func TestFlowCommitFetchFailure(t *testing.T) {
	store := portfolio.NewStore()
	quotes := newFakeQuotes()
	quotes.quoteErr = errors.New("upstream down")
	f := selectedFlow(t, store, quotes)

	_, err := f.Commit(context.Background(), "100", "1")

	assert.ErrorIs(t, err, quotes.quoteErr)
	assert.Equal(t, model.FlowStockSelected, f.State())
	assert.Equal(t, "IBM", f.Selected())
	assert.Zero(t, store.Len())
}

func TestFlowCancel(t *testing.T) {
	store := portfolio.NewStore()
	f := selectedFlow(t, store, newFakeQuotes())

	f.Cancel()

	assert.Equal(t, model.FlowIdle, f.State())
	assert.Empty(t, f.Selected())
	require.NoError(t, f.Open(), "flow can be reopened after cancel")
}

func TestFlowInvalidTransitions(t *testing.T) {
	f := New(portfolio.NewStore(), newFakeQuotes())

	_, err := f.Search(context.Background(), "ibm")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.ErrorIs(t, f.Select("IBM"), ErrInvalidTransition)

	_, err = f.Commit(context.Background(), "1", "1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, f.Open())
	assert.ErrorIs(t, f.Open(), ErrInvalidTransition)
}

func TestFlowRestore(t *testing.T) {
	store := portfolio.NewStore()
	quotes := newFakeQuotes()

	f := Restore(store, quotes, model.FlowSnapshot{
		State:   model.FlowResultsShown,
		Query:   "ibm",
		Results: []string{"IBM"},
	})
	require.NoError(t, f.Select("IBM"))

	snapshot := f.Snapshot()
	assert.Equal(t, model.FlowSnapshot{State: model.FlowStockSelected, Query: "ibm", SelectedSymbol: "IBM"}, snapshot)

	restored := Restore(store, quotes, model.FlowSnapshot{State: model.FlowCommitting, SelectedSymbol: "IBM"})
	assert.Equal(t, model.FlowStockSelected, restored.State())

	_, err := restored.Commit(context.Background(), "1", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}
