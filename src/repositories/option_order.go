package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/storage"
)

const optionOrderColumns = "id, chain_symbol, opening_strategy, closing_strategy, direction, premium, net_amount"

// OptionOrderRepository persists OptionOrder entities (1:1 child of an
// option-typed transaction, sharing its id).
type OptionOrderRepository struct {
	storage *storage.Storage
}

func NewOptionOrderRepository(s *storage.Storage) *OptionOrderRepository {
	return &OptionOrderRepository{storage: s}
}

func (r *OptionOrderRepository) GetByID(id string) (*models.OptionOrder, error) {
	row := r.storage.DB().QueryRow(
		`SELECT `+optionOrderColumns+` FROM option_orders WHERE id = ?`, id)
	entity, err := scanOptionOrder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return entity, err
}

func (r *OptionOrderRepository) Create(entity *models.OptionOrder, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`INSERT INTO option_orders
			(id, chain_symbol, opening_strategy, closing_strategy, direction, premium, net_amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.ChainSymbol, nullString(entity.OpeningStrategy),
		nullString(entity.ClosingStrategy), nullString(entity.Direction),
		nullFloat(entity.Premium), nullFloat(entity.NetAmount),
	)
	if err != nil {
		return fmt.Errorf("inserting option order %s: %w", entity.ID, err)
	}
	return nil
}

func (r *OptionOrderRepository) Update(entity *models.OptionOrder, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`UPDATE option_orders
		 SET chain_symbol = ?, opening_strategy = ?, closing_strategy = ?, direction = ?,
		     premium = ?, net_amount = ?
		 WHERE id = ?`,
		entity.ChainSymbol, nullString(entity.OpeningStrategy),
		nullString(entity.ClosingStrategy), nullString(entity.Direction),
		nullFloat(entity.Premium), nullFloat(entity.NetAmount), entity.ID,
	)
	if err != nil {
		return fmt.Errorf("updating option order %s: %w", entity.ID, err)
	}
	return nil
}

func (r *OptionOrderRepository) Delete(id string, tx *sql.Tx) (bool, error) {
	result, err := querier(r.storage, tx).Exec(`DELETE FROM option_orders WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting option order %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *OptionOrderRepository) FindAll() ([]models.OptionOrder, error) {
	return r.findWhere(``)
}

func (r *OptionOrderRepository) FindByChainSymbol(chainSymbol string) ([]models.OptionOrder, error) {
	return r.findWhere(`WHERE chain_symbol = ?`, chainSymbol)
}

func (r *OptionOrderRepository) findWhere(where string, args ...any) ([]models.OptionOrder, error) {
	rows, err := r.storage.DB().Query(
		`SELECT `+optionOrderColumns+` FROM option_orders `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying option orders: %w", err)
	}
	defer rows.Close()

	var orders []models.OptionOrder
	for rows.Next() {
		entity, err := scanOptionOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *entity)
	}
	return orders, rows.Err()
}

func scanOptionOrder(scan func(dest ...any) error) (*models.OptionOrder, error) {
	var entity models.OptionOrder
	var openingStrategy, closingStrategy, direction sql.NullString
	var premium, netAmount sql.NullFloat64
	if err := scan(&entity.ID, &entity.ChainSymbol, &openingStrategy, &closingStrategy,
		&direction, &premium, &netAmount); err != nil {
		return nil, err
	}
	entity.OpeningStrategy = stringPtr(openingStrategy)
	entity.ClosingStrategy = stringPtr(closingStrategy)
	entity.Direction = stringPtr(direction)
	entity.Premium = floatPtr(premium)
	entity.NetAmount = floatPtr(netAmount)
	return &entity, nil
}
