package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/storage"
)

const stockOrderColumns = "id, symbol, side, quantity, price, average_price"

// StockOrderRepository persists StockOrder entities (1:1 child of a
// stock-typed transaction, sharing its id).
type StockOrderRepository struct {
	storage *storage.Storage
}

func NewStockOrderRepository(s *storage.Storage) *StockOrderRepository {
	return &StockOrderRepository{storage: s}
}

func (r *StockOrderRepository) GetByID(id string) (*models.StockOrder, error) {
	row := r.storage.DB().QueryRow(
		`SELECT `+stockOrderColumns+` FROM stock_orders WHERE id = ?`, id)
	entity, err := scanStockOrder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return entity, err
}

func (r *StockOrderRepository) Create(entity *models.StockOrder, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`INSERT INTO stock_orders (id, symbol, side, quantity, price, average_price)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.Symbol, entity.Side, entity.Quantity,
		nullFloat(entity.Price), nullFloat(entity.AveragePrice),
	)
	if err != nil {
		return fmt.Errorf("inserting stock order %s: %w", entity.ID, err)
	}
	return nil
}

func (r *StockOrderRepository) Update(entity *models.StockOrder, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`UPDATE stock_orders
		 SET symbol = ?, side = ?, quantity = ?, price = ?, average_price = ?
		 WHERE id = ?`,
		entity.Symbol, entity.Side, entity.Quantity,
		nullFloat(entity.Price), nullFloat(entity.AveragePrice), entity.ID,
	)
	if err != nil {
		return fmt.Errorf("updating stock order %s: %w", entity.ID, err)
	}
	return nil
}

func (r *StockOrderRepository) Delete(id string, tx *sql.Tx) (bool, error) {
	result, err := querier(r.storage, tx).Exec(`DELETE FROM stock_orders WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting stock order %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *StockOrderRepository) FindAll() ([]models.StockOrder, error) {
	return r.findWhere(``)
}

func (r *StockOrderRepository) FindBySymbol(symbol string) ([]models.StockOrder, error) {
	return r.findWhere(`WHERE symbol = ?`, symbol)
}

func (r *StockOrderRepository) findWhere(where string, args ...any) ([]models.StockOrder, error) {
	rows, err := r.storage.DB().Query(
		`SELECT `+stockOrderColumns+` FROM stock_orders `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying stock orders: %w", err)
	}
	defer rows.Close()

	var orders []models.StockOrder
	for rows.Next() {
		entity, err := scanStockOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *entity)
	}
	return orders, rows.Err()
}

func scanStockOrder(scan func(dest ...any) error) (*models.StockOrder, error) {
	var entity models.StockOrder
	var price, averagePrice sql.NullFloat64
	if err := scan(&entity.ID, &entity.Symbol, &entity.Side, &entity.Quantity,
		&price, &averagePrice); err != nil {
		return nil, err
	}
	entity.Price = floatPtr(price)
	entity.AveragePrice = floatPtr(averagePrice)
	return &entity, nil
}
