package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Exchange string

const (
	ExchangeNSE    Exchange = "NSE"
	ExchangeBSE    Exchange = "BSE"
	ExchangeNYSE   Exchange = "NYSE"
	ExchangeNASDAQ Exchange = "NASDAQ"
	ExchangeOther  Exchange = "OTHER"
)

// aliases reported by the vendors for the known exchanges
var exchangeAliases = map[string]Exchange{
	"NSE":                     ExchangeNSE,
	"XNSE":                    ExchangeNSE,
	"NATIONAL STOCK EXCHANGE": ExchangeNSE,
	"BSE":                     ExchangeBSE,
	"XBOM":                    ExchangeBSE,
	"BOMBAY STOCK EXCHANGE":   ExchangeBSE,
	"NYSE":                    ExchangeNYSE,
	"XNYS":                    ExchangeNYSE,
	"NEW YORK STOCK EXCHANGE": ExchangeNYSE,
	"NASDAQ":                  ExchangeNASDAQ,
	"XNAS":                    ExchangeNASDAQ,
}

// ParseExchange maps a vendor exchange name onto the closed set of exchanges.
// Unknown non-empty names become ExchangeOther, an empty name yields "".
func ParseExchange(s string) Exchange {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	if e, ok := exchangeAliases[s]; ok {
		return e
	}

	// "NASDAQ Global Select", "NYSE ARCA", "NYSE American" ...
	switch {
	case strings.HasPrefix(s, "NASDAQ"):
		return ExchangeNASDAQ
	case strings.HasPrefix(s, "NYSE"):
		return ExchangeNYSE
	}

	return ExchangeOther
}

// Quote is the normalized quote + fundamentals record served by the proxy.
type Quote struct {
	Symbol   string
	Name     string
	Exchange Exchange
	Price    decimal.Decimal
	Sector   string
	PERatio  decimal.NullDecimal
	EPS      decimal.NullDecimal
}

type SearchMatch struct {
	Symbol string
	Name   string
	Region string
}
