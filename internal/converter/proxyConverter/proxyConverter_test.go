package proxyConverter

import (
	"encoding/json"
	"testing"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/proxyModel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertQuoteToProxyJSON(t *testing.T) {
	q := model.Quote{
		Symbol:   "IBM",
		Name:     "International Business Machines",
		Exchange: model.ExchangeNYSE,
		Price:    decimal.RequireFromString("250.5"),
		PERatio:  decimal.NewNullDecimal(decimal.RequireFromString("40.1")),
	}

	b, err := json.Marshal(ConvertQuoteToProxy(q))

	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"IBM","name":"International Business Machines","exchange":"NYSE","price":250.5,"peratio":40.1,"eps":null}`, string(b))
}

func TestConvertProxyToQuote(t *testing.T) {
	var raw proxyModel.Quote
	require.NoError(t, json.Unmarshal([]byte(`{"symbol":"TCS","name":"Tata","exchange":"NSE","price":3500.25,"sector":"IT","peratio":null,"eps":120.3}`), &raw))

	q, err := ConvertProxyToQuote(raw)

	require.NoError(t, err)
	assert.Equal(t, model.ExchangeNSE, q.Exchange)
	assert.True(t, decimal.RequireFromString("3500.25").Equal(q.Price))
	assert.Equal(t, "IT", q.Sector)
	assert.False(t, q.PERatio.Valid)
	require.True(t, q.EPS.Valid)
	assert.True(t, decimal.RequireFromString("120.3").Equal(q.EPS.Decimal))
}

func TestConvertProxyToQuoteInvalid(t *testing.T) {
	_, err := ConvertProxyToQuote(proxyModel.Quote{Symbol: "X", Name: "X", Exchange: "NYSE", Price: ""})
	assert.Error(t, err)

	_, err = ConvertProxyToQuote(proxyModel.Quote{Symbol: "X", Price: "1"})
	assert.Error(t, err)
}
