package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/storage"
)

const executionColumns = "id, order_id, leg_id, price, quantity, timestamp, settlement_date"

// ExecutionRepository persists Execution entities (fills against an order,
// optionally tied to one option leg).
type ExecutionRepository struct {
	storage *storage.Storage
}

func NewExecutionRepository(s *storage.Storage) *ExecutionRepository {
	return &ExecutionRepository{storage: s}
}

func (r *ExecutionRepository) GetByID(id string) (*models.Execution, error) {
	row := r.storage.DB().QueryRow(
		`SELECT `+executionColumns+` FROM executions WHERE id = ?`, id)
	entity, err := scanExecution(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return entity, err
}

func (r *ExecutionRepository) Create(entity *models.Execution, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`INSERT INTO executions (id, order_id, leg_id, price, quantity, timestamp, settlement_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.OrderID, nullString(entity.LegID), entity.Price,
		entity.Quantity, entity.Timestamp, nullString(entity.SettlementDate),
	)
	if err != nil {
		return fmt.Errorf("inserting execution %s: %w", entity.ID, err)
	}
	return nil
}

func (r *ExecutionRepository) Update(entity *models.Execution, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`UPDATE executions
		 SET order_id = ?, leg_id = ?, price = ?, quantity = ?, timestamp = ?, settlement_date = ?
		 WHERE id = ?`,
		entity.OrderID, nullString(entity.LegID), entity.Price, entity.Quantity,
		entity.Timestamp, nullString(entity.SettlementDate), entity.ID,
	)
	if err != nil {
		return fmt.Errorf("updating execution %s: %w", entity.ID, err)
	}
	return nil
}

func (r *ExecutionRepository) Delete(id string, tx *sql.Tx) (bool, error) {
	result, err := querier(r.storage, tx).Exec(`DELETE FROM executions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting execution %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ExecutionRepository) FindAll() ([]models.Execution, error) {
	return r.findWhere(``)
}

func (r *ExecutionRepository) FindByOrderID(orderID string) ([]models.Execution, error) {
	return r.findWhere(`WHERE order_id = ?`, orderID)
}

func (r *ExecutionRepository) FindByLegID(legID string) ([]models.Execution, error) {
	return r.findWhere(`WHERE leg_id = ?`, legID)
}

func (r *ExecutionRepository) findWhere(where string, args ...any) ([]models.Execution, error) {
	rows, err := r.storage.DB().Query(
		`SELECT `+executionColumns+` FROM executions `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying executions: %w", err)
	}
	defer rows.Close()

	var executions []models.Execution
	for rows.Next() {
		entity, err := scanExecution(rows.Scan)
		if err != nil {
			return nil, err
		}
		executions = append(executions, *entity)
	}
	return executions, rows.Err()
}

func scanExecution(scan func(dest ...any) error) (*models.Execution, error) {
	var entity models.Execution
	var legID, settlementDate sql.NullString
	if err := scan(&entity.ID, &entity.OrderID, &legID, &entity.Price,
		&entity.Quantity, &entity.Timestamp, &settlementDate); err != nil {
		return nil, err
	}
	entity.LegID = stringPtr(legID)
	entity.SettlementDate = stringPtr(settlementDate)
	return &entity, nil
}
