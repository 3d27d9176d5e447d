// Package models holds the unified entity records persisted by tradedata.
// Every struct maps 1:1 onto a database table; instances are exchanged by
// value and never mutated after normalization.
package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// RawRecord is an untyped, provider-specific payload before normalization.
type RawRecord map[string]any

// NewID returns a fresh UUID string for entity identity.
func NewID() string {
	return uuid.NewString()
}

// Transaction is the unified record for one broker event, across all sources.
// RawData holds the original payload verbatim as JSON for later inspection.
// (Source, SourceID) is the natural key: globally unique across re-syncs.
type Transaction struct {
	ID        string  `json:"id" validate:"required,uuid"`
	Source    string  `json:"source" validate:"required"`
	SourceID  string  `json:"source_id" validate:"required"`
	Type      string  `json:"type" validate:"required,enumci=stock option crypto dividend transfer unknown"`
	CreatedAt string  `json:"created_at" validate:"required,iso8601"`
	AccountID *string `json:"account_id,omitempty"`
	RawData   string  `json:"raw_data" validate:"required"`
}

// RawDataMap parses the stored raw payload back into a map.
func (t Transaction) RawDataMap() (RawRecord, error) {
	var result RawRecord
	if err := json.Unmarshal([]byte(t.RawData), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// StockOrder is the stock-specific detail of a transaction. Its ID is the
// parent Transaction's ID (1:1 child).
type StockOrder struct {
	ID           string   `json:"id" validate:"required,uuid"`
	Symbol       string   `json:"symbol" validate:"required"`
	Side         string   `json:"side" validate:"required,enumci=buy sell"`
	Quantity     float64  `json:"quantity" validate:"gt=0"`
	Price        *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	AveragePrice *float64 `json:"average_price,omitempty" validate:"omitempty,gte=0"`
}

// OptionOrder is the option-specific detail of a transaction. Its ID is the
// parent Transaction's ID (1:1 child); legs hang off it.
type OptionOrder struct {
	ID              string   `json:"id" validate:"required,uuid"`
	ChainSymbol     string   `json:"chain_symbol" validate:"required"`
	OpeningStrategy *string  `json:"opening_strategy,omitempty"`
	ClosingStrategy *string  `json:"closing_strategy,omitempty"`
	Direction       *string  `json:"direction,omitempty"`
	Premium         *float64 `json:"premium,omitempty"`
	NetAmount       *float64 `json:"net_amount,omitempty"`
}

// OptionLeg is one side of a multi-leg option strategy.
type OptionLeg struct {
	ID             string  `json:"id" validate:"required,uuid"`
	OrderID        string  `json:"order_id" validate:"required,uuid"`
	StrikePrice    float64 `json:"strike_price" validate:"gte=0"`
	ExpirationDate string  `json:"expiration_date" validate:"required,iso8601"`
	OptionType     string  `json:"option_type" validate:"required,enumci=call put"`
	Side           string  `json:"side" validate:"required,enumci=buy sell"`
	PositionEffect string  `json:"position_effect" validate:"required,enumci=open close"`
	RatioQuantity  int     `json:"ratio_quantity" validate:"gt=0"`
}

// Execution is a fill event against an order, potentially partial. LegID is
// set when the fill is paired to a specific option leg.
type Execution struct {
	ID             string  `json:"id" validate:"required,uuid"`
	OrderID        string  `json:"order_id" validate:"required,uuid"`
	LegID          *string `json:"leg_id,omitempty" validate:"omitempty,uuid"`
	Price          float64 `json:"price" validate:"gte=0"`
	Quantity       float64 `json:"quantity" validate:"gt=0"`
	Timestamp      string  `json:"timestamp" validate:"required,iso8601"`
	SettlementDate *string `json:"settlement_date,omitempty" validate:"omitempty,iso8601"`
}

// Position is a point-in-time snapshot of a held quantity. Positions are
// fully re-synced on every run; there is no merge-by-symbol.
type Position struct {
	ID            string   `json:"id" validate:"required,uuid"`
	Source        string   `json:"source" validate:"required"`
	AccountID     *string  `json:"account_id,omitempty"`
	Symbol        string   `json:"symbol" validate:"required"`
	Quantity      float64  `json:"quantity"`
	CostBasis     *float64 `json:"cost_basis,omitempty"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`
	UnrealizedPNL *float64 `json:"unrealized_pnl,omitempty"`
	LastUpdated   string   `json:"last_updated" validate:"required,iso8601"`
}

// TransactionLink relates an opening transaction to the one that closed it
// (e.g. a covered call and its assignment).
type TransactionLink struct {
	ID                   string  `json:"id" validate:"required,uuid"`
	OpeningTransactionID string  `json:"opening_transaction_id" validate:"required,uuid"`
	ClosingTransactionID string  `json:"closing_transaction_id" validate:"required,uuid,nefield=OpeningTransactionID"`
	LinkType             *string `json:"link_type,omitempty"`
	CreatedAt            string  `json:"created_at" validate:"required,iso8601"`
}
