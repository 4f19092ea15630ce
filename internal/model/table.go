package model

// Column identifies a column of the positions table.
type Column int

const (
	ColumnSymbol Column = iota
	ColumnPurchasePrice
	ColumnQuantity
	ColumnInvestment
	ColumnPortfolioPercentage
	ColumnCurrentPrice
	ColumnPresentValue
	ColumnGainLoss
	ColumnPERatio
	ColumnLatestEarnings
)

type SortDirection int

const (
	Unsorted SortDirection = iota
	Ascending
	Descending
)

// Sorting is the sort state of the positions table. At most one column is sorted.
type Sorting struct {
	Column    Column
	Direction SortDirection
}
