package robinhood

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/username/tradedata/src/logger"
	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/sources"
	"github.com/username/tradedata/src/utils"
)

// SourceName is the registry name of this adapter.
const SourceName = "robinhood"

// defaultExpiration stands in when a leg carries no expiration field at all.
const defaultExpiration = "2099-12-31"

// Adapter normalizes Robinhood order and position records into the unified
// schema.
type Adapter struct {
	api API
}

var _ sources.Adapter = (*Adapter)(nil)

// New builds an adapter backed by the HTTP client.
func New() (sources.Adapter, error) {
	return &Adapter{api: NewClient()}, nil
}

// NewWithAPI builds an adapter over an injected provider implementation.
func NewWithAPI(api API) *Adapter {
	return &Adapter{api: api}
}

func (a *Adapter) Login(username, password string) error {
	return a.api.Login(username, password)
}

// ExtractTransactions pulls stock and option orders, optionally filtered to
// an inclusive date range.
func (a *Adapter) ExtractTransactions(startDate, endDate string) ([]models.RawRecord, error) {
	stockOrders, err := a.api.GetAllStockOrders()
	if err != nil {
		return nil, fmt.Errorf("fetching stock orders: %w", err)
	}
	optionOrders, err := a.api.GetAllOptionOrders()
	if err != nil {
		return nil, fmt.Errorf("fetching option orders: %w", err)
	}

	records := make([]models.RawRecord, 0, len(stockOrders)+len(optionOrders))
	records = append(records, stockOrders...)
	records = append(records, optionOrders...)

	if startDate != "" || endDate != "" {
		return a.filterByDate(records, startDate, endDate)
	}
	return records, nil
}

func (a *Adapter) ExtractPositions() ([]models.RawRecord, error) {
	stockPositions, err := a.api.GetOpenStockPositions()
	if err != nil {
		return nil, fmt.Errorf("fetching stock positions: %w", err)
	}
	optionPositions, err := a.api.GetOpenOptionPositions()
	if err != nil {
		return nil, fmt.Errorf("fetching option positions: %w", err)
	}

	records := make([]models.RawRecord, 0, len(stockPositions)+len(optionPositions))
	records = append(records, stockPositions...)
	records = append(records, optionPositions...)
	return records, nil
}

func (a *Adapter) NormalizeTransaction(raw models.RawRecord) (models.Transaction, error) {
	sourceID := stringField(raw, "id")
	if sourceID == "" {
		sourceID = stringField(raw, "order_id")
	}

	rawData, err := json.Marshal(raw)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("encoding raw transaction: %w", err)
	}

	return models.Transaction{
		ID:        models.NewID(),
		Source:    SourceName,
		SourceID:  sourceID,
		Type:      a.transactionType(raw),
		CreatedAt: extractTimestamp(raw),
		AccountID: optionalString(raw, "account"),
		RawData:   string(rawData),
	}, nil
}

func (a *Adapter) ExtractStockOrder(raw models.RawRecord, transactionID string) (*models.StockOrder, error) {
	if a.transactionType(raw) != "stock" {
		return nil, nil
	}
	symbol := stringField(raw, "symbol")
	if symbol == "" {
		return nil, fmt.Errorf("stock order record has no symbol")
	}

	price := floatOrZero(raw["price"])
	averagePrice := floatOrZero(raw["average_price"])
	return &models.StockOrder{
		ID:           transactionID,
		Symbol:       symbol,
		Side:         strings.ToLower(stringField(raw, "side")),
		Quantity:     floatOrZero(raw["quantity"]),
		Price:        &price,
		AveragePrice: &averagePrice,
	}, nil
}

func (a *Adapter) ExtractOptionOrder(raw models.RawRecord, transactionID string) (*models.OptionOrder, error) {
	if a.transactionType(raw) != "option" {
		return nil, nil
	}
	return &models.OptionOrder{
		ID:              transactionID,
		ChainSymbol:     stringField(raw, "chain_symbol"),
		OpeningStrategy: optionalString(raw, "opening_strategy"),
		ClosingStrategy: optionalString(raw, "closing_strategy"),
		Direction:       optionalString(raw, "direction"),
		Premium:         safeFloat(raw["premium"]),
		NetAmount:       safeFloat(raw["net_amount"]),
	}, nil
}

func (a *Adapter) ExtractOptionLegs(raw models.RawRecord, optionOrderID string) ([]models.OptionLeg, error) {
	rawLegs := rawList(raw, "legs")
	legs := make([]models.OptionLeg, 0, len(rawLegs))
	for _, rawLeg := range rawLegs {
		legs = append(legs, models.OptionLeg{
			ID:             models.NewID(),
			OrderID:        optionOrderID,
			StrikePrice:    floatOrZero(rawLeg["strike_price"]),
			ExpirationDate: extractExpiration(rawLeg),
			OptionType:     strings.ToLower(stringField(rawLeg, "option_type")),
			Side:           strings.ToLower(stringField(rawLeg, "side")),
			PositionEffect: strings.ToLower(stringField(rawLeg, "position_effect")),
			RatioQuantity:  intOr(rawLeg["ratio_quantity"], 1),
		})
	}
	return legs, nil
}

// ExtractExecutions pairs each execution with the stored leg at the same
// index. Providers report legs and their fills in matching order.
func (a *Adapter) ExtractExecutions(raw models.RawRecord, transactionID string, legIDs []string) ([]models.Execution, error) {
	rawExecutions := rawList(raw, "executions")
	executions := make([]models.Execution, 0, len(rawExecutions))
	for idx, rawExec := range rawExecutions {
		var legID *string
		if idx < len(legIDs) {
			legID = &legIDs[idx]
		}
		executions = append(executions, models.Execution{
			ID:             models.NewID(),
			OrderID:        transactionID,
			LegID:          legID,
			Price:          floatOrZero(rawExec["price"]),
			Quantity:       floatOrZero(rawExec["quantity"]),
			Timestamp:      extractTimestamp(rawExec),
			SettlementDate: optionalString(rawExec, "settlement_date"),
		})
	}
	return executions, nil
}

func (a *Adapter) NormalizePosition(raw models.RawRecord) (models.Position, error) {
	symbol := stringField(raw, "symbol")
	if symbol == "" {
		symbol = stringField(raw, "chain_symbol")
	}
	if symbol == "" {
		if instrumentURL := stringField(raw, "instrument"); instrumentURL != "" {
			resolved, err := a.api.GetSymbolByURL(instrumentURL)
			if err != nil {
				return models.Position{}, fmt.Errorf("resolving position symbol: %w", err)
			}
			symbol = resolved
		}
	}

	costBasis := floatOrZero(raw["cost_basis"])
	currentPrice := floatOrZero(raw["current_price"])
	unrealizedPNL := floatOrZero(raw["unrealized_pnl"])
	return models.Position{
		ID:            models.NewID(),
		Source:        SourceName,
		AccountID:     optionalString(raw, "account"),
		Symbol:        symbol,
		Quantity:      floatOrZero(raw["quantity"]),
		CostBasis:     &costBasis,
		CurrentPrice:  &currentPrice,
		UnrealizedPNL: &unrealizedPNL,
		LastUpdated:   extractTimestamp(raw),
	}, nil
}

// transactionType infers the record kind. Option markers win over the
// symbol check because option orders may carry symbols too.
func (a *Adapter) transactionType(raw models.RawRecord) string {
	instrument := stringField(raw, "instrument")
	if _, hasLegs := raw["legs"]; hasLegs || strings.Contains(instrument, "option") {
		return "option"
	}
	if stringField(raw, "symbol") != "" {
		return "stock"
	}
	recordType := strings.ToLower(stringField(raw, "type"))
	if strings.Contains(recordType, "crypto") {
		return "crypto"
	}
	if strings.Contains(recordType, "dividend") {
		return "dividend"
	}
	return "unknown"
}

// filterByDate keeps records whose timestamp falls inside the inclusive
// range. A date-only end bound covers the whole day.
func (a *Adapter) filterByDate(records []models.RawRecord, startDate, endDate string) ([]models.RawRecord, error) {
	var start, end time.Time
	if startDate != "" {
		parsed, err := utils.ParseISOTimestamp(startDate)
		if err != nil {
			return nil, fmt.Errorf("parsing start date %q: %w", startDate, err)
		}
		start = parsed
	}
	if endDate != "" {
		parsed, err := utils.ParseISOTimestamp(endDate)
		if err != nil {
			return nil, fmt.Errorf("parsing end date %q: %w", endDate, err)
		}
		if utils.IsDateOnly(endDate) {
			parsed = utils.EndOfDay(parsed)
		}
		end = parsed
	}

	var filtered []models.RawRecord
	for _, record := range records {
		timestamp, err := utils.ParseISOTimestamp(extractTimestamp(record))
		if err != nil {
			logger.L.Debug("skipping record with unparseable timestamp",
				"source_id", stringField(record, "id"), "error", err)
			continue
		}
		if startDate != "" && timestamp.Before(start) {
			continue
		}
		if endDate != "" && timestamp.After(end) {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered, nil
}

// timestampFields are tried in order; the first non-empty one wins.
var timestampFields = []string{"created_at", "updated_at", "last_transaction_at", "execution_date", "timestamp"}

func extractTimestamp(raw models.RawRecord) string {
	for _, field := range timestampFields {
		if value := stringField(raw, field); value != "" {
			return value
		}
	}
	return utils.UTCNow()
}

var expirationFields = []string{"expiration_date", "expires_at", "expiry", "expiration"}

func extractExpiration(rawLeg models.RawRecord) string {
	for _, field := range expirationFields {
		if value := stringField(rawLeg, field); value != "" {
			return value
		}
	}
	return defaultExpiration
}

func stringField(raw models.RawRecord, key string) string {
	value, _ := raw[key].(string)
	return value
}

func optionalString(raw models.RawRecord, key string) *string {
	if value := stringField(raw, key); value != "" {
		return &value
	}
	return nil
}

// rawList pulls a nested record list, tolerating both decoded-JSON shapes.
func rawList(raw models.RawRecord, key string) []models.RawRecord {
	switch list := raw[key].(type) {
	case []models.RawRecord:
		return list
	case []any:
		records := make([]models.RawRecord, 0, len(list))
		for _, item := range list {
			if record, ok := item.(map[string]any); ok {
				records = append(records, models.RawRecord(record))
			}
		}
		return records
	default:
		return nil
	}
}

// safeFloat converts provider values, which arrive as strings or numbers,
// into a float. Unconvertible values become nil.
func safeFloat(value any) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return &f
		}
		return nil
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

func floatOrZero(value any) float64 {
	if f := safeFloat(value); f != nil {
		return *f
	}
	return 0
}

func intOr(value any, fallback int) int {
	if f := safeFloat(value); f != nil {
		return int(*f)
	}
	return fallback
}
