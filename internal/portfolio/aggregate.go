package portfolio

import (
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// Summary holds the portfolio-wide figures. Percentages are whole percents.
type Summary struct {
	TotalInvestment   decimal.Decimal
	TotalCurrentValue decimal.Decimal
	TotalGainLoss     decimal.Decimal
	// invalid when TotalInvestment is zero
	TotalGainLossPercent decimal.NullDecimal
	PositionsCount       int
}

// Row is a position together with its derived figures.
type Row struct {
	model.Position
	Investment          decimal.Decimal
	PresentValue        decimal.Decimal
	GainLoss            decimal.Decimal
	GainLossPercent     decimal.NullDecimal
	PortfolioPercentage decimal.NullDecimal
}

// Summarize computes the totals of positions. It keeps no state between calls.
func Summarize(positions []model.Position) Summary {
	summary := Summary{PositionsCount: len(positions)}

	for _, p := range positions {
		summary.TotalInvestment = summary.TotalInvestment.Add(p.Investment())
		summary.TotalCurrentValue = summary.TotalCurrentValue.Add(p.PresentValue())
	}

	summary.TotalGainLoss = summary.TotalCurrentValue.Sub(summary.TotalInvestment)
	summary.TotalGainLossPercent = model.Percent(summary.TotalGainLoss, summary.TotalInvestment)

	return summary
}

// Evaluate derives per-position figures, with portfolio shares taken against
// the current total investment of positions.
func Evaluate(positions []model.Position) []Row {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.Investment())
	}

	rows := make([]Row, 0, len(positions))
	for _, p := range positions {
		investment := p.Investment()
		rows = append(rows, Row{
			Position:            p,
			Investment:          investment,
			PresentValue:        p.PresentValue(),
			GainLoss:            p.GainLoss(),
			GainLossPercent:     p.GainLossPercent(),
			PortfolioPercentage: model.Percent(investment, total),
		})
	}

	return rows
}
