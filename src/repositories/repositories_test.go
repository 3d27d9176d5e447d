package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/storage"
)

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.New(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func insertTransaction(t *testing.T, store *storage.Storage, txType string) models.Transaction {
	t.Helper()
	entity := models.Transaction{
		ID:        models.NewID(),
		Source:    "robinhood",
		SourceID:  "src-" + models.NewID(),
		Type:      txType,
		CreatedAt: "2025-06-15T10:30:00Z",
		RawData:   `{"symbol":"AAPL"}`,
	}
	require.NoError(t, NewTransactionRepository(store).Create(&entity, nil))
	return entity
}

func TestTransactionRepository(t *testing.T) {
	store := newTestStorage(t)
	repo := NewTransactionRepository(store)

	account := "acct-1"
	entity := models.Transaction{
		ID:        models.NewID(),
		Source:    "robinhood",
		SourceID:  "order-1",
		Type:      "stock",
		CreatedAt: "2025-06-15T10:30:00Z",
		AccountID: &account,
		RawData:   `{"id":"order-1"}`,
	}
	require.NoError(t, repo.Create(&entity, nil))

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(entity.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, entity, *got)
	})

	t.Run("get missing returns nil", func(t *testing.T) {
		got, err := repo.GetByID("nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("exists by source id", func(t *testing.T) {
		exists, err := repo.ExistsBySourceID("robinhood", "order-1")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySourceID("robinhood", "order-2")
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsBySourceID("fidelity", "order-1")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("update", func(t *testing.T) {
		entity.Type = "option"
		entity.AccountID = nil
		require.NoError(t, repo.Update(&entity, nil))
		got, err := repo.GetByID(entity.ID)
		require.NoError(t, err)
		assert.Equal(t, "option", got.Type)
		assert.Nil(t, got.AccountID)
	})

	t.Run("find by type and source", func(t *testing.T) {
		insertTransaction(t, store, "dividend")

		byType, err := repo.FindByType("dividend")
		require.NoError(t, err)
		assert.Len(t, byType, 1)

		bySource, err := repo.FindBySource("robinhood")
		require.NoError(t, err)
		assert.Len(t, bySource, 2)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := repo.Delete(entity.ID, nil)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(entity.ID, nil)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestStockOrderRepository(t *testing.T) {
	store := newTestStorage(t)
	parent := insertTransaction(t, store, "stock")
	repo := NewStockOrderRepository(store)

	price := 185.5
	entity := models.StockOrder{
		ID:       parent.ID,
		Symbol:   "AAPL",
		Side:     "buy",
		Quantity: 10,
		Price:    &price,
	}
	require.NoError(t, repo.Create(&entity, nil))

	got, err := repo.GetByID(entity.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity, *got)
	assert.Nil(t, got.AveragePrice)

	bySymbol, err := repo.FindBySymbol("AAPL")
	require.NoError(t, err)
	assert.Len(t, bySymbol, 1)

	t.Run("cascade delete with parent", func(t *testing.T) {
		_, err := NewTransactionRepository(store).Delete(parent.ID, nil)
		require.NoError(t, err)
		got, err := repo.GetByID(entity.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestOptionOrderWithLegsAndExecutions(t *testing.T) {
	store := newTestStorage(t)
	parent := insertTransaction(t, store, "option")

	orderRepo := NewOptionOrderRepository(store)
	legRepo := NewOptionLegRepository(store)
	executionRepo := NewExecutionRepository(store)

	direction := "credit"
	premium := 125.0
	order := models.OptionOrder{
		ID:          parent.ID,
		ChainSymbol: "AAPL",
		Direction:   &direction,
		Premium:     &premium,
	}
	require.NoError(t, orderRepo.Create(&order, nil))

	leg := models.OptionLeg{
		ID:             models.NewID(),
		OrderID:        order.ID,
		StrikePrice:    150,
		ExpirationDate: "2025-12-19",
		OptionType:     "call",
		Side:           "sell",
		PositionEffect: "open",
		RatioQuantity:  1,
	}
	require.NoError(t, legRepo.Create(&leg, nil))

	execution := models.Execution{
		ID:        models.NewID(),
		OrderID:   parent.ID,
		LegID:     &leg.ID,
		Price:     1.25,
		Quantity:  1,
		Timestamp: "2025-06-15T10:30:01Z",
	}
	require.NoError(t, executionRepo.Create(&execution, nil))

	gotOrder, err := orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, gotOrder)
	assert.Equal(t, order, *gotOrder)
	assert.Nil(t, gotOrder.OpeningStrategy)

	legs, err := legRepo.FindByOrderID(order.ID)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, leg, legs[0])

	byLeg, err := executionRepo.FindByLegID(leg.ID)
	require.NoError(t, err)
	require.Len(t, byLeg, 1)
	assert.Equal(t, execution, byLeg[0])

	t.Run("cascade removes whole subtree", func(t *testing.T) {
		_, err := NewTransactionRepository(store).Delete(parent.ID, nil)
		require.NoError(t, err)

		legs, err := legRepo.FindByOrderID(order.ID)
		require.NoError(t, err)
		assert.Empty(t, legs)

		executions, err := executionRepo.FindByOrderID(parent.ID)
		require.NoError(t, err)
		assert.Empty(t, executions)
	})
}

func TestPositionRepository(t *testing.T) {
	store := newTestStorage(t)
	repo := NewPositionRepository(store)

	costBasis := 1500.0
	entity := models.Position{
		ID:          models.NewID(),
		Source:      "robinhood",
		Symbol:      "AAPL",
		Quantity:    10,
		CostBasis:   &costBasis,
		LastUpdated: "2025-06-15T10:30:00Z",
	}
	require.NoError(t, repo.Create(&entity, nil))

	got, err := repo.GetByID(entity.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity, *got)
	assert.Nil(t, got.CurrentPrice)

	// Positions accumulate: a second snapshot of the same symbol is a new row.
	second := entity
	second.ID = models.NewID()
	require.NoError(t, repo.Create(&second, nil))

	bySymbol, err := repo.FindBySymbol("AAPL")
	require.NoError(t, err)
	assert.Len(t, bySymbol, 2)
}

func TestTransactionLinkRepository(t *testing.T) {
	store := newTestStorage(t)
	opening := insertTransaction(t, store, "option")
	closing := insertTransaction(t, store, "option")
	repo := NewTransactionLinkRepository(store)

	linkType := "roll"
	entity := models.TransactionLink{
		ID:                   models.NewID(),
		OpeningTransactionID: opening.ID,
		ClosingTransactionID: closing.ID,
		LinkType:             &linkType,
		CreatedAt:            "2025-06-15T10:30:00Z",
	}
	require.NoError(t, repo.Create(&entity, nil))

	byOpening, err := repo.FindByOpeningTransactionID(opening.ID)
	require.NoError(t, err)
	require.Len(t, byOpening, 1)
	assert.Equal(t, entity, byOpening[0])

	byClosing, err := repo.FindByClosingTransactionID(closing.ID)
	require.NoError(t, err)
	assert.Len(t, byClosing, 1)

	t.Run("link to unknown transaction rejected", func(t *testing.T) {
		bad := models.TransactionLink{
			ID:                   models.NewID(),
			OpeningTransactionID: models.NewID(),
			ClosingTransactionID: closing.ID,
			CreatedAt:            "2025-06-15T10:30:00Z",
		}
		assert.Error(t, repo.Create(&bad, nil))
	})
}

func TestCreateInsideTransactionScope(t *testing.T) {
	store := newTestStorage(t)
	repo := NewTransactionRepository(store)

	tx, err := store.Begin()
	require.NoError(t, err)
	entity := models.Transaction{
		ID:        models.NewID(),
		Source:    "robinhood",
		SourceID:  "scoped-1",
		Type:      "stock",
		CreatedAt: "2025-06-15T10:30:00Z",
		RawData:   `{}`,
	}
	require.NoError(t, repo.Create(&entity, tx))
	require.NoError(t, tx.Rollback())

	got, err := repo.GetByID(entity.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
