package fmpModel

import "github.com/shopspring/decimal"

// RawError is what FMP returns in place of the usual JSON array on failure.
type RawError struct {
	ErrorMessage string `json:"Error Message"`
}

type RawSearchMatch struct {
	Symbol           string `json:"symbol"`
	Name             string `json:"name"`
	Currency         string `json:"currency"`
	ExchangeFullName string `json:"exchangeFullName"`
	Exchange         string `json:"exchange"`
}

type RawQuote struct {
	Symbol   string              `json:"symbol"`
	Name     string              `json:"name"`
	Price    decimal.NullDecimal `json:"price"`
	Exchange string              `json:"exchange"`
}

type RawRatiosTTM struct {
	Symbol                  string              `json:"symbol"`
	PriceToEarningsRatioTTM decimal.NullDecimal `json:"priceToEarningsRatioTTM"`
	NetIncomePerShareTTM    decimal.NullDecimal `json:"netIncomePerShareTTM"`
}
