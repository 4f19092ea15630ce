package portfolio

import (
	"slices"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

type columnDef struct {
	header string
	cmp    func(a, b Row) int
}

var columns = map[model.Column]columnDef{
	model.ColumnSymbol: {
		header: "Stock",
		cmp:    func(a, b Row) int { return strings.Compare(a.Symbol, b.Symbol) },
	},
	model.ColumnPurchasePrice: {
		header: "Purchase Price",
		cmp:    byDecimal(func(r Row) decimal.Decimal { return r.PurchasePrice }),
	},
	model.ColumnQuantity: {
		header: "Qty",
		cmp:    byDecimal(func(r Row) decimal.Decimal { return r.Quantity }),
	},
	model.ColumnInvestment: {
		header: "Investment",
		cmp:    byDecimal(func(r Row) decimal.Decimal { return r.Investment }),
	},
	model.ColumnPortfolioPercentage: {
		header: "Portfolio %",
		cmp:    byNullDecimal(func(r Row) decimal.NullDecimal { return r.PortfolioPercentage }),
	},
	model.ColumnCurrentPrice: {
		header: "CMP",
		cmp:    byDecimal(func(r Row) decimal.Decimal { return r.CurrentPrice }),
	},
	model.ColumnPresentValue: {
		header: "Present Value",
		cmp:    byDecimal(func(r Row) decimal.Decimal { return r.PresentValue }),
	},
	model.ColumnGainLoss: {
		header: "Gain/Loss",
		cmp:    byDecimal(func(r Row) decimal.Decimal { return r.GainLoss }),
	},
	model.ColumnPERatio: {
		header: "P/E Ratio",
		cmp:    byNullDecimal(func(r Row) decimal.NullDecimal { return r.PERatio }),
	},
	model.ColumnLatestEarnings: {
		header: "Latest EPS",
		cmp:    byNullDecimal(func(r Row) decimal.NullDecimal { return r.LatestEarnings }),
	},
}

// Columns lists the table columns in display order.
func Columns() []model.Column {
	return []model.Column{
		model.ColumnSymbol,
		model.ColumnPurchasePrice,
		model.ColumnQuantity,
		model.ColumnInvestment,
		model.ColumnPortfolioPercentage,
		model.ColumnCurrentPrice,
		model.ColumnPresentValue,
		model.ColumnGainLoss,
		model.ColumnPERatio,
		model.ColumnLatestEarnings,
	}
}

func IsColumn(c model.Column) bool {
	_, ok := columns[c]
	return ok
}

func Header(c model.Column) string {
	return columns[c].header
}

// Toggle activates column c: the same column cycles asc -> desc -> unsorted,
// another column replaces the current sorting with ascending.
func Toggle(s model.Sorting, c model.Column) model.Sorting {
	if s.Column != c || s.Direction == model.Unsorted {
		return model.Sorting{Column: c, Direction: model.Ascending}
	}

	if s.Direction == model.Ascending {
		return model.Sorting{Column: c, Direction: model.Descending}
	}

	return model.Sorting{}
}

// Table is the sortable view over a position list.
type Table struct {
	sorting model.Sorting
}

func NewTable(sorting model.Sorting) *Table {
	if !IsColumn(sorting.Column) {
		sorting = model.Sorting{}
	}
	return &Table{sorting: sorting}
}

func (t *Table) Toggle(c model.Column) {
	if !IsColumn(c) {
		return
	}
	t.sorting = Toggle(t.sorting, c)
}

func (t *Table) Sorting() model.Sorting {
	return t.sorting
}

// Rows evaluates positions and orders the result by the active sorting.
// The input slice is never reordered.
func (t *Table) Rows(positions []model.Position) []Row {
	rows := Evaluate(positions)

	if t.sorting.Direction == model.Unsorted {
		return rows
	}

	slices.SortStableFunc(rows, columns[t.sorting.Column].cmp)

	// descending is the exact mirror of ascending, ties included
	if t.sorting.Direction == model.Descending {
		slices.Reverse(rows)
	}

	return rows
}

// Paginate returns one page (zero based) of rows. Out of range pages are
// clamped to the first or the last one.
func Paginate(rows []Row, page, perPage int) (pageRows []Row, curPage, totalPages int) {
	if perPage <= 0 {
		return rows, 0, 1
	}

	totalPages = max(1, (len(rows)+perPage-1)/perPage)
	curPage = min(max(page, 0), totalPages-1)

	start := curPage * perPage
	end := min(start+perPage, len(rows))

	return rows[start:end], curPage, totalPages
}

func byDecimal(key func(Row) decimal.Decimal) func(a, b Row) int {
	return func(a, b Row) int {
		return key(a).Cmp(key(b))
	}
}

// absent values sort before any present one
func byNullDecimal(key func(Row) decimal.NullDecimal) func(a, b Row) int {
	return func(a, b Row) int {
		ka, kb := key(a), key(b)
		switch {
		case !ka.Valid && !kb.Valid:
			return 0
		case !ka.Valid:
			return -1
		case !kb.Valid:
			return 1
		}
		return ka.Decimal.Cmp(kb.Decimal)
	}
}
