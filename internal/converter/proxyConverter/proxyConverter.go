package proxyConverter

import (
	"encoding/json"
	"fmt"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/proxyModel"
	"github.com/shopspring/decimal"
)

func ConvertQuoteToProxy(q model.Quote) proxyModel.Quote {
	return proxyModel.Quote{
		Symbol:   q.Symbol,
		Name:     q.Name,
		Exchange: string(q.Exchange),
		Price:    json.Number(q.Price.String()),
		Sector:   q.Sector,
		PERatio:  nullDecimalToNumber(q.PERatio),
		EPS:      nullDecimalToNumber(q.EPS),
	}
}

func ConvertProxyToQuote(q proxyModel.Quote) (model.Quote, error) {
	if q.Symbol == "" || q.Name == "" || q.Exchange == "" {
		return model.Quote{}, fmt.Errorf("quote misses symbol, name or exchange")
	}

	price, err := decimal.NewFromString(q.Price.String())
	if err != nil {
		return model.Quote{}, fmt.Errorf("invalid price %q: %w", q.Price, err)
	}

	peRatio, err := numberToNullDecimal(q.PERatio)
	if err != nil {
		return model.Quote{}, fmt.Errorf("invalid peratio: %w", err)
	}

	eps, err := numberToNullDecimal(q.EPS)
	if err != nil {
		return model.Quote{}, fmt.Errorf("invalid eps: %w", err)
	}

	return model.Quote{
		Symbol:   q.Symbol,
		Name:     q.Name,
		Exchange: model.ParseExchange(q.Exchange),
		Price:    price,
		Sector:   q.Sector,
		PERatio:  peRatio,
		EPS:      eps,
	}, nil
}

func ConvertSearchToProxy(matches []model.SearchMatch) []proxyModel.SearchMatch {
	res := make([]proxyModel.SearchMatch, 0, len(matches))
	for _, m := range matches {
		res = append(res, proxyModel.SearchMatch{Symbol: m.Symbol, Name: m.Name, Region: m.Region})
	}
	return res
}

func ConvertProxyToSearch(matches []proxyModel.SearchMatch) []model.SearchMatch {
	res := make([]model.SearchMatch, 0, len(matches))
	for _, m := range matches {
		res = append(res, model.SearchMatch{Symbol: m.Symbol, Name: m.Name, Region: m.Region})
	}
	return res
}

func nullDecimalToNumber(d decimal.NullDecimal) *json.Number {
	if !d.Valid {
		return nil
	}
	n := json.Number(d.Decimal.String())
	return &n
}

func numberToNullDecimal(n *json.Number) (decimal.NullDecimal, error) {
	if n == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
