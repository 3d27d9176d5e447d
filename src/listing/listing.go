// Package listing provides read-side queries and renderable tables over the
// stored entities.
package listing

import (
	"fmt"
	"strings"
	"time"

	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/repositories"
	"github.com/username/tradedata/src/storage"
	"github.com/username/tradedata/src/utils"
)

// Options filters transaction listings. Zero values mean no filtering.
type Options struct {
	Types []string
	// Days keeps transactions created within the past N days.
	Days int
	// Last keeps only the most recent N transactions, applied after the
	// other filters.
	Last int
	// IDs and SourceIDs select specific transactions.
	IDs       []string
	SourceIDs []string
}

// Transactions returns stored transactions matching opts.
func Transactions(store *storage.Storage, opts Options) ([]models.Transaction, error) {
	repo := repositories.NewTransactionRepository(store)
	transactions, err := repo.FindAll()
	if err != nil {
		return nil, err
	}

	if len(opts.Types) > 0 {
		allowed := stringSet(opts.Types)
		transactions = filter(transactions, func(tx models.Transaction) bool {
			_, ok := allowed[tx.Type]
			return ok
		})
	}
	if len(opts.IDs) > 0 {
		allowed := stringSet(opts.IDs)
		transactions = filter(transactions, func(tx models.Transaction) bool {
			_, ok := allowed[tx.ID]
			return ok
		})
	}
	if len(opts.SourceIDs) > 0 {
		allowed := stringSet(opts.SourceIDs)
		transactions = filter(transactions, func(tx models.Transaction) bool {
			_, ok := allowed[tx.SourceID]
			return ok
		})
	}
	if opts.Days > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -opts.Days)
		transactions = filter(transactions, func(tx models.Transaction) bool {
			created, err := utils.ParseISOTimestamp(tx.CreatedAt)
			return err == nil && !created.Before(cutoff)
		})
	}
	if opts.Last > 0 && len(transactions) > opts.Last {
		transactions = transactions[len(transactions)-opts.Last:]
	}
	return transactions, nil
}

// Positions returns all stored positions.
func Positions(store *storage.Storage) ([]models.Position, error) {
	return repositories.NewPositionRepository(store).FindAll()
}

// TransactionTable is one renderable table holding all transactions of a
// single type.
type TransactionTable struct {
	TransactionType string
	Headers         []string
	Rows            [][]string
}

// EnrichedTransactionTables groups the filtered transactions by type and
// builds a type-specific table for each, in first-seen order. Stock and
// option tables join the related order entities; other types fall back to
// the preserved raw payload.
func EnrichedTransactionTables(store *storage.Storage, opts Options) ([]TransactionTable, error) {
	transactions, err := Transactions(store, opts)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, nil
	}

	var orderedTypes []string
	byType := map[string][]models.Transaction{}
	txIDs := map[string]struct{}{}
	for _, tx := range transactions {
		if _, seen := byType[tx.Type]; !seen {
			orderedTypes = append(orderedTypes, tx.Type)
		}
		byType[tx.Type] = append(byType[tx.Type], tx)
		txIDs[tx.ID] = struct{}{}
	}

	stockOrders, err := stockOrdersByID(store, txIDs)
	if err != nil {
		return nil, err
	}
	optionOrders, legsByOrder, err := optionOrdersByID(store, txIDs)
	if err != nil {
		return nil, err
	}

	tables := make([]TransactionTable, 0, len(orderedTypes))
	for _, txType := range orderedTypes {
		grouped := byType[txType]
		var table TransactionTable
		switch txType {
		case "stock":
			table = buildStockTable(grouped, stockOrders)
		case "option":
			table = buildOptionTable(grouped, optionOrders, legsByOrder)
		case "dividend":
			table = buildDividendTable(grouped)
		case "transfer":
			table = buildTransferTable(grouped)
		case "crypto":
			table = buildCryptoTable(grouped)
		default:
			table = buildBaseTable(grouped)
		}
		table.TransactionType = txType
		tables = append(tables, table)
	}
	return tables, nil
}

// BaseTable renders transactions without type-specific enrichment.
func BaseTable(transactions []models.Transaction) TransactionTable {
	return buildBaseTable(transactions)
}

func stockOrdersByID(store *storage.Storage, txIDs map[string]struct{}) (map[string]models.StockOrder, error) {
	orders, err := repositories.NewStockOrderRepository(store).FindAll()
	if err != nil {
		return nil, err
	}
	byID := map[string]models.StockOrder{}
	for _, order := range orders {
		if _, ok := txIDs[order.ID]; ok {
			byID[order.ID] = order
		}
	}
	return byID, nil
}

func optionOrdersByID(store *storage.Storage, txIDs map[string]struct{}) (map[string]models.OptionOrder, map[string][]models.OptionLeg, error) {
	orders, err := repositories.NewOptionOrderRepository(store).FindAll()
	if err != nil {
		return nil, nil, err
	}
	byID := map[string]models.OptionOrder{}
	for _, order := range orders {
		if _, ok := txIDs[order.ID]; ok {
			byID[order.ID] = order
		}
	}

	legs, err := repositories.NewOptionLegRepository(store).FindAll()
	if err != nil {
		return nil, nil, err
	}
	legsByOrder := map[string][]models.OptionLeg{}
	for _, leg := range legs {
		if _, ok := byID[leg.OrderID]; ok {
			legsByOrder[leg.OrderID] = append(legsByOrder[leg.OrderID], leg)
		}
	}
	return byID, legsByOrder, nil
}

func buildStockTable(grouped []models.Transaction, orders map[string]models.StockOrder) TransactionTable {
	table := TransactionTable{
		Headers: []string{"Symbol", "Side", "Qty", "Price", "Avg Price", "Created At", "Source ID"},
	}
	for _, tx := range grouped {
		raw, _ := tx.RawDataMap()
		order, hasOrder := orders[tx.ID]

		symbol, side := order.Symbol, order.Side
		var quantity, price, avgPrice string
		if hasOrder {
			quantity = formatFloat(order.Quantity)
			price = formatFloatPtr(order.Price)
			avgPrice = formatFloatPtr(order.AveragePrice)
		}
		table.Rows = append(table.Rows, []string{
			fallback(symbol, rawString(raw, "symbol")),
			fallback(side, rawString(raw, "side")),
			fallback(quantity, rawString(raw, "quantity")),
			fallback(price, rawString(raw, "price")),
			fallback(avgPrice, rawString(raw, "average_price")),
			tx.CreatedAt,
			tx.SourceID,
		})
	}
	return table
}

func buildOptionTable(grouped []models.Transaction, orders map[string]models.OptionOrder, legsByOrder map[string][]models.OptionLeg) TransactionTable {
	table := TransactionTable{
		Headers: []string{"Chain", "Direction", "Strategy", "Premium", "Net Amount", "Legs", "Created At", "Source ID"},
	}
	for _, tx := range grouped {
		raw, _ := tx.RawDataMap()
		order, hasOrder := orders[tx.ID]

		var chain, direction, premium, netAmount string
		if hasOrder {
			chain = order.ChainSymbol
			direction = derefString(order.Direction)
			premium = formatFloatPtr(order.Premium)
			netAmount = formatFloatPtr(order.NetAmount)
		}
		table.Rows = append(table.Rows, []string{
			fallback(chain, rawString(raw, "chain_symbol")),
			fallback(direction, rawString(raw, "direction")),
			formatStrategy(order, hasOrder, raw),
			fallback(premium, rawString(raw, "premium")),
			fallback(netAmount, rawString(raw, "net_amount")),
			formatLegs(legsByOrder[tx.ID]),
			tx.CreatedAt,
			tx.SourceID,
		})
	}
	return table
}

func buildDividendTable(grouped []models.Transaction) TransactionTable {
	table := TransactionTable{
		Headers: []string{"Amount", "Instrument", "Payable Date", "Record Date", "State", "Created At", "Source ID"},
	}
	for _, tx := range grouped {
		raw, _ := tx.RawDataMap()
		table.Rows = append(table.Rows, []string{
			rawString(raw, "amount"),
			fallback(rawString(raw, "instrument"), rawString(raw, "symbol")),
			rawString(raw, "payable_date"),
			rawString(raw, "record_date"),
			rawString(raw, "state"),
			tx.CreatedAt,
			tx.SourceID,
		})
	}
	return table
}

func buildTransferTable(grouped []models.Transaction) TransactionTable {
	table := TransactionTable{
		Headers: []string{"Direction", "Amount", "State", "Expected Landing", "Created At", "Source ID"},
	}
	for _, tx := range grouped {
		raw, _ := tx.RawDataMap()
		table.Rows = append(table.Rows, []string{
			rawString(raw, "direction"),
			rawString(raw, "amount"),
			fallback(rawString(raw, "state"), rawString(raw, "rhs_state")),
			fallback(rawString(raw, "expected_landing_datetime"), rawString(raw, "expected_landing_date")),
			tx.CreatedAt,
			tx.SourceID,
		})
	}
	return table
}

func buildCryptoTable(grouped []models.Transaction) TransactionTable {
	table := TransactionTable{
		Headers: []string{"Currency", "Side", "Qty", "Price", "Avg Price", "State", "Created At", "Source ID"},
	}
	for _, tx := range grouped {
		raw, _ := tx.RawDataMap()
		table.Rows = append(table.Rows, []string{
			fallback(rawString(raw, "currency_code"), rawString(raw, "symbol")),
			rawString(raw, "side"),
			rawString(raw, "quantity"),
			rawString(raw, "price"),
			rawString(raw, "average_price"),
			rawString(raw, "state"),
			tx.CreatedAt,
			tx.SourceID,
		})
	}
	return table
}

func buildBaseTable(grouped []models.Transaction) TransactionTable {
	table := TransactionTable{
		Headers: []string{"ID", "Type", "Source", "Created At", "Source ID"},
	}
	for _, tx := range grouped {
		table.Rows = append(table.Rows, []string{tx.ID, tx.Type, tx.Source, tx.CreatedAt, tx.SourceID})
	}
	return table
}

func formatStrategy(order models.OptionOrder, hasOrder bool, raw models.RawRecord) string {
	var opening, closing string
	if hasOrder {
		opening = derefString(order.OpeningStrategy)
		closing = derefString(order.ClosingStrategy)
	}
	opening = fallback(opening, rawString(raw, "opening_strategy"))
	closing = fallback(closing, rawString(raw, "closing_strategy"))
	switch {
	case opening != "" && closing != "":
		return opening + " / " + closing
	case opening != "":
		return opening
	default:
		return closing
	}
}

func formatLegs(legs []models.OptionLeg) string {
	segments := make([]string, 0, len(legs))
	for _, leg := range legs {
		segments = append(segments, fmt.Sprintf("%s %s %dx %s %s %s",
			leg.Side, leg.PositionEffect, leg.RatioQuantity,
			formatFloat(leg.StrikePrice), strings.ToUpper(leg.OptionType),
			leg.ExpirationDate))
	}
	return strings.Join(segments, " | ")
}

func rawString(raw models.RawRecord, key string) string {
	switch v := raw[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatFloat(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", f), "0"), ".")
}

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fallback(primary, secondary string) string {
	if primary != "" {
		return primary
	}
	return secondary
}

func filter(transactions []models.Transaction, keep func(models.Transaction) bool) []models.Transaction {
	filtered := transactions[:0]
	for _, tx := range transactions {
		if keep(tx) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = struct{}{}
	}
	return set
}
