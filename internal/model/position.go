package model

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Position is a held ticker. Only the entered and fetched fields are stored,
// everything else is derived on demand.
type Position struct {
	Symbol         string
	Name           string
	Exchange       Exchange
	Sector         string
	PurchasePrice  decimal.Decimal
	Quantity       decimal.Decimal
	CurrentPrice   decimal.Decimal
	PERatio        decimal.NullDecimal
	LatestEarnings decimal.NullDecimal
}

func (p Position) Investment() decimal.Decimal {
	return p.PurchasePrice.Mul(p.Quantity)
}

func (p Position) PresentValue() decimal.Decimal {
	return p.CurrentPrice.Mul(p.Quantity)
}

func (p Position) GainLoss() decimal.Decimal {
	return p.PresentValue().Sub(p.Investment())
}

// GainLossPercent is the return in whole percent, absent for a zero investment.
func (p Position) GainLossPercent() decimal.NullDecimal {
	return Percent(p.GainLoss(), p.Investment())
}

// Percent returns part/whole*100, absent when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.NullDecimal {
	if whole.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(part.Div(whole).Mul(hundred))
}
