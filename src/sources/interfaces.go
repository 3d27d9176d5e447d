// Package sources defines the adapter contract brokerage integrations
// implement and the registry they register with.
package sources

import "github.com/username/tradedata/src/models"

// Adapter is the capability surface of one brokerage. Extract methods return
// raw provider records; Normalize/Extract*Order methods map those records
// into the relational entities.
type Adapter interface {
	// Login authenticates against the provider. Adapters keep the session
	// internally; callers never see tokens.
	Login(username, password string) error

	// ExtractTransactions returns raw transaction records, optionally
	// bounded by inclusive ISO dates. Empty strings mean unbounded.
	ExtractTransactions(startDate, endDate string) ([]models.RawRecord, error)

	// ExtractPositions returns raw open-position records.
	ExtractPositions() ([]models.RawRecord, error)

	// NormalizeTransaction maps a raw record into a Transaction with a
	// freshly assigned ID and the raw payload preserved.
	NormalizeTransaction(raw models.RawRecord) (models.Transaction, error)

	// ExtractStockOrder returns the stock order carried by a raw record,
	// or nil when the record is not a stock order.
	ExtractStockOrder(raw models.RawRecord, transactionID string) (*models.StockOrder, error)

	// ExtractOptionOrder returns the option order carried by a raw record,
	// or nil when the record is not an option order.
	ExtractOptionOrder(raw models.RawRecord, transactionID string) (*models.OptionOrder, error)

	// ExtractOptionLegs returns the legs of an option order, in provider
	// order.
	ExtractOptionLegs(raw models.RawRecord, optionOrderID string) ([]models.OptionLeg, error)

	// ExtractExecutions returns the fills of an order. legIDs holds the
	// stored leg IDs positionally aligned with the raw legs, so executions
	// can be attributed to the leg at the same index.
	ExtractExecutions(raw models.RawRecord, transactionID string, legIDs []string) ([]models.Execution, error)

	// NormalizePosition maps a raw position record into a Position.
	NormalizePosition(raw models.RawRecord) (models.Position, error)
}
