package robinhood

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradedata/src/models"
)

type fakeAPI struct {
	stockOrders     []models.RawRecord
	optionOrders    []models.RawRecord
	stockPositions  []models.RawRecord
	optionPositions []models.RawRecord
	symbols         map[string]string
	loggedIn        bool
}

func (f *fakeAPI) Login(username, password string) error {
	f.loggedIn = true
	return nil
}

func (f *fakeAPI) GetAllStockOrders() ([]models.RawRecord, error)      { return f.stockOrders, nil }
func (f *fakeAPI) GetAllOptionOrders() ([]models.RawRecord, error)     { return f.optionOrders, nil }
func (f *fakeAPI) GetOpenStockPositions() ([]models.RawRecord, error)  { return f.stockPositions, nil }
func (f *fakeAPI) GetOpenOptionPositions() ([]models.RawRecord, error) { return f.optionPositions, nil }

func (f *fakeAPI) GetSymbolByURL(instrumentURL string) (string, error) {
	symbol, ok := f.symbols[instrumentURL]
	if !ok {
		return "", fmt.Errorf("unknown instrument %s", instrumentURL)
	}
	return symbol, nil
}

func TestTransactionTypeInference(t *testing.T) {
	adapter := NewWithAPI(&fakeAPI{})

	cases := []struct {
		name     string
		raw      models.RawRecord
		expected string
	}{
		{"legs mark options", models.RawRecord{"legs": []any{}}, "option"},
		{"option instrument marks options", models.RawRecord{
			"symbol": "AAPL", "instrument": "https://api.example.com/options/instruments/abc/"}, "option"},
		{"symbol without option marks stock", models.RawRecord{
			"symbol": "AAPL", "instrument": "https://api.example.com/instruments/abc/"}, "stock"},
		{"crypto type", models.RawRecord{"type": "crypto_order"}, "crypto"},
		{"dividend type", models.RawRecord{"type": "Dividend"}, "dividend"},
		{"unclassifiable", models.RawRecord{"state": "filled"}, "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, adapter.transactionType(tc.raw))
		})
	}
}

func TestNormalizeTransaction(t *testing.T) {
	adapter := NewWithAPI(&fakeAPI{})

	t.Run("full record", func(t *testing.T) {
		tx, err := adapter.NormalizeTransaction(models.RawRecord{
			"id":         "order-1",
			"symbol":     "AAPL",
			"created_at": "2025-06-15T10:30:00Z",
			"account":    "acct-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "robinhood", tx.Source)
		assert.Equal(t, "order-1", tx.SourceID)
		assert.Equal(t, "stock", tx.Type)
		assert.Equal(t, "2025-06-15T10:30:00Z", tx.CreatedAt)
		require.NotNil(t, tx.AccountID)
		assert.Equal(t, "acct-1", *tx.AccountID)
		assert.NotEmpty(t, tx.ID)

		raw, err := tx.RawDataMap()
		require.NoError(t, err)
		assert.Equal(t, "AAPL", raw["symbol"])
	})

	t.Run("source id falls back to order_id", func(t *testing.T) {
		tx, err := adapter.NormalizeTransaction(models.RawRecord{"order_id": "o-2"})
		require.NoError(t, err)
		assert.Equal(t, "o-2", tx.SourceID)
	})

	t.Run("timestamp candidates in order", func(t *testing.T) {
		tx, err := adapter.NormalizeTransaction(models.RawRecord{
			"id":         "order-3",
			"updated_at": "2025-06-01T00:00:00Z",
			"timestamp":  "2025-01-01T00:00:00Z",
		})
		require.NoError(t, err)
		assert.Equal(t, "2025-06-01T00:00:00Z", tx.CreatedAt)
	})

	t.Run("missing timestamp defaults to now", func(t *testing.T) {
		tx, err := adapter.NormalizeTransaction(models.RawRecord{"id": "order-4"})
		require.NoError(t, err)
		assert.NotEmpty(t, tx.CreatedAt)
	})

	t.Run("missing account stays nil", func(t *testing.T) {
		tx, err := adapter.NormalizeTransaction(models.RawRecord{"id": "order-5"})
		require.NoError(t, err)
		assert.Nil(t, tx.AccountID)
	})
}

func TestExtractTransactionsMergesAndFilters(t *testing.T) {
	api := &fakeAPI{
		stockOrders: []models.RawRecord{
			{"id": "s1", "symbol": "AAPL", "created_at": "2025-06-10T12:00:00Z"},
			{"id": "s2", "symbol": "MSFT", "created_at": "2025-07-01T12:00:00Z"},
		},
		optionOrders: []models.RawRecord{
			{"id": "o1", "legs": []any{}, "created_at": "2025-06-15T23:15:00Z"},
		},
	}
	adapter := NewWithAPI(api)

	t.Run("unbounded returns all", func(t *testing.T) {
		records, err := adapter.ExtractTransactions("", "")
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("start date is inclusive", func(t *testing.T) {
		records, err := adapter.ExtractTransactions("2025-06-15", "")
		require.NoError(t, err)
		require.Len(t, records, 2)
	})

	t.Run("date-only end covers whole day", func(t *testing.T) {
		records, err := adapter.ExtractTransactions("2025-06-15", "2025-06-15")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "o1", records[0]["id"])
	})

	t.Run("bad start date is an error", func(t *testing.T) {
		_, err := adapter.ExtractTransactions("junk", "")
		assert.Error(t, err)
	})
}

func TestExtractStockOrder(t *testing.T) {
	adapter := NewWithAPI(&fakeAPI{})
	txID := models.NewID()

	t.Run("string numbers are coerced", func(t *testing.T) {
		order, err := adapter.ExtractStockOrder(models.RawRecord{
			"symbol":        "AAPL",
			"side":          "BUY",
			"quantity":      "10",
			"price":         "185.50",
			"average_price": "185.25",
		}, txID)
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, txID, order.ID)
		assert.Equal(t, "buy", order.Side)
		assert.Equal(t, 10.0, order.Quantity)
		require.NotNil(t, order.Price)
		assert.Equal(t, 185.50, *order.Price)
	})

	t.Run("non-stock records return nil", func(t *testing.T) {
		order, err := adapter.ExtractStockOrder(models.RawRecord{"legs": []any{}}, txID)
		require.NoError(t, err)
		assert.Nil(t, order)
	})

	t.Run("unparseable quantity defaults to zero", func(t *testing.T) {
		order, err := adapter.ExtractStockOrder(models.RawRecord{
			"symbol": "AAPL", "side": "buy", "quantity": "lots",
		}, txID)
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, 0.0, order.Quantity)
	})
}

func TestExtractOptionOrderAndLegs(t *testing.T) {
	adapter := NewWithAPI(&fakeAPI{})
	txID := models.NewID()

	raw := models.RawRecord{
		"chain_symbol":     "AAPL",
		"opening_strategy": "short_call_spread",
		"direction":        "credit",
		"premium":          "125.00",
		"legs": []any{
			map[string]any{
				"strike_price":    "150.00",
				"expiration_date": "2025-12-19",
				"option_type":     "CALL",
				"side":            "sell",
				"position_effect": "open",
				"ratio_quantity":  float64(1),
			},
			map[string]any{
				"strike_price": "155.00",
				"option_type":  "call",
				"side":         "buy",
			},
		},
	}

	order, err := adapter.ExtractOptionOrder(raw, txID)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, txID, order.ID)
	assert.Equal(t, "AAPL", order.ChainSymbol)
	require.NotNil(t, order.OpeningStrategy)
	assert.Equal(t, "short_call_spread", *order.OpeningStrategy)
	assert.Nil(t, order.ClosingStrategy)
	require.NotNil(t, order.Premium)
	assert.Equal(t, 125.0, *order.Premium)
	assert.Nil(t, order.NetAmount)

	legs, err := adapter.ExtractOptionLegs(raw, order.ID)
	require.NoError(t, err)
	require.Len(t, legs, 2)

	assert.Equal(t, order.ID, legs[0].OrderID)
	assert.Equal(t, 150.0, legs[0].StrikePrice)
	assert.Equal(t, "call", legs[0].OptionType)
	assert.Equal(t, "2025-12-19", legs[0].ExpirationDate)
	assert.Equal(t, 1, legs[0].RatioQuantity)

	// Defaults for sparse legs.
	assert.Equal(t, "2099-12-31", legs[1].ExpirationDate)
	assert.Equal(t, 1, legs[1].RatioQuantity)

	t.Run("stock record yields no option order", func(t *testing.T) {
		order, err := adapter.ExtractOptionOrder(models.RawRecord{"symbol": "AAPL"}, txID)
		require.NoError(t, err)
		assert.Nil(t, order)
	})
}

func TestExtractExecutionsPairsLegsByIndex(t *testing.T) {
	adapter := NewWithAPI(&fakeAPI{})
	txID := models.NewID()
	legIDs := []string{"leg-1", "leg-2"}

	raw := models.RawRecord{
		"executions": []any{
			map[string]any{"price": "1.25", "quantity": "1", "timestamp": "2025-06-15T10:30:01Z",
				"settlement_date": "2025-06-17"},
			map[string]any{"price": "0.75", "quantity": "1", "timestamp": "2025-06-15T10:30:02Z"},
			map[string]any{"price": "0.10", "quantity": "1", "timestamp": "2025-06-15T10:30:03Z"},
		},
	}

	executions, err := adapter.ExtractExecutions(raw, txID, legIDs)
	require.NoError(t, err)
	require.Len(t, executions, 3)

	require.NotNil(t, executions[0].LegID)
	assert.Equal(t, "leg-1", *executions[0].LegID)
	require.NotNil(t, executions[1].LegID)
	assert.Equal(t, "leg-2", *executions[1].LegID)
	// Executions past the leg list are kept, unattributed.
	assert.Nil(t, executions[2].LegID)

	assert.Equal(t, txID, executions[0].OrderID)
	assert.Equal(t, 1.25, executions[0].Price)
	require.NotNil(t, executions[0].SettlementDate)
	assert.Equal(t, "2025-06-17", *executions[0].SettlementDate)
	assert.Nil(t, executions[1].SettlementDate)
}

func TestNormalizePosition(t *testing.T) {
	api := &fakeAPI{symbols: map[string]string{
		"https://api.example.com/instruments/abc/": "TSLA",
	}}
	adapter := NewWithAPI(api)

	t.Run("direct symbol", func(t *testing.T) {
		position, err := adapter.NormalizePosition(models.RawRecord{
			"symbol":     "AAPL",
			"account":    "acct-1",
			"quantity":   "10",
			"cost_basis": "1500.00",
			"updated_at": "2025-06-15T10:30:00Z",
		})
		require.NoError(t, err)
		assert.Equal(t, "robinhood", position.Source)
		assert.Equal(t, "AAPL", position.Symbol)
		require.NotNil(t, position.AccountID)
		assert.Equal(t, "acct-1", *position.AccountID)
		assert.Equal(t, 10.0, position.Quantity)
		require.NotNil(t, position.CostBasis)
		assert.Equal(t, 1500.0, *position.CostBasis)
		assert.Equal(t, "2025-06-15T10:30:00Z", position.LastUpdated)
	})

	t.Run("chain symbol fallback", func(t *testing.T) {
		position, err := adapter.NormalizePosition(models.RawRecord{
			"chain_symbol": "AAPL", "quantity": "1",
		})
		require.NoError(t, err)
		assert.Equal(t, "AAPL", position.Symbol)
	})

	t.Run("instrument url resolution", func(t *testing.T) {
		position, err := adapter.NormalizePosition(models.RawRecord{
			"instrument": "https://api.example.com/instruments/abc/",
			"quantity":   "2",
		})
		require.NoError(t, err)
		assert.Equal(t, "TSLA", position.Symbol)
	})

	t.Run("unresolvable instrument is an error", func(t *testing.T) {
		_, err := adapter.NormalizePosition(models.RawRecord{
			"instrument": "https://api.example.com/instruments/missing/",
		})
		assert.Error(t, err)
	})
}

func TestExtractPositionsMergesStockAndOptions(t *testing.T) {
	api := &fakeAPI{
		stockPositions:  []models.RawRecord{{"symbol": "AAPL", "quantity": "10"}},
		optionPositions: []models.RawRecord{{"chain_symbol": "TSLA", "quantity": "1"}},
	}
	adapter := NewWithAPI(api)

	records, err := adapter.ExtractPositions()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestLoginDelegatesToAPI(t *testing.T) {
	api := &fakeAPI{}
	adapter := NewWithAPI(api)
	require.NoError(t, adapter.Login("user@example.com", "secret"))
	assert.True(t, api.loggedIn)
}
