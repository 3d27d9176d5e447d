package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/storage"
)

const positionColumns = "id, source, account_id, symbol, quantity, cost_basis, current_price, unrealized_pnl, last_updated"

// PositionRepository persists Position snapshots. Positions carry no dedup
// semantics: every sync inserts fresh rows.
type PositionRepository struct {
	storage *storage.Storage
}

func NewPositionRepository(s *storage.Storage) *PositionRepository {
	return &PositionRepository{storage: s}
}

func (r *PositionRepository) GetByID(id string) (*models.Position, error) {
	row := r.storage.DB().QueryRow(
		`SELECT `+positionColumns+` FROM positions WHERE id = ?`, id)
	entity, err := scanPosition(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return entity, err
}

func (r *PositionRepository) Create(entity *models.Position, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`INSERT INTO positions
			(id, source, account_id, symbol, quantity, cost_basis, current_price, unrealized_pnl, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.Source, nullString(entity.AccountID), entity.Symbol,
		entity.Quantity, nullFloat(entity.CostBasis), nullFloat(entity.CurrentPrice),
		nullFloat(entity.UnrealizedPNL), entity.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("inserting position %s: %w", entity.ID, err)
	}
	return nil
}

func (r *PositionRepository) Update(entity *models.Position, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`UPDATE positions
		 SET source = ?, account_id = ?, symbol = ?, quantity = ?, cost_basis = ?,
		     current_price = ?, unrealized_pnl = ?, last_updated = ?
		 WHERE id = ?`,
		entity.Source, nullString(entity.AccountID), entity.Symbol, entity.Quantity,
		nullFloat(entity.CostBasis), nullFloat(entity.CurrentPrice),
		nullFloat(entity.UnrealizedPNL), entity.LastUpdated, entity.ID,
	)
	if err != nil {
		return fmt.Errorf("updating position %s: %w", entity.ID, err)
	}
	return nil
}

func (r *PositionRepository) Delete(id string, tx *sql.Tx) (bool, error) {
	result, err := querier(r.storage, tx).Exec(`DELETE FROM positions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting position %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PositionRepository) FindAll() ([]models.Position, error) {
	return r.findWhere(``)
}

func (r *PositionRepository) FindBySource(source string) ([]models.Position, error) {
	return r.findWhere(`WHERE source = ?`, source)
}

func (r *PositionRepository) FindBySymbol(symbol string) ([]models.Position, error) {
	return r.findWhere(`WHERE symbol = ?`, symbol)
}

func (r *PositionRepository) findWhere(where string, args ...any) ([]models.Position, error) {
	rows, err := r.storage.DB().Query(
		`SELECT `+positionColumns+` FROM positions `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying positions: %w", err)
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		entity, err := scanPosition(rows.Scan)
		if err != nil {
			return nil, err
		}
		positions = append(positions, *entity)
	}
	return positions, rows.Err()
}

func scanPosition(scan func(dest ...any) error) (*models.Position, error) {
	var entity models.Position
	var accountID sql.NullString
	var costBasis, currentPrice, unrealizedPNL sql.NullFloat64
	if err := scan(&entity.ID, &entity.Source, &accountID, &entity.Symbol,
		&entity.Quantity, &costBasis, &currentPrice, &unrealizedPNL,
		&entity.LastUpdated); err != nil {
		return nil, err
	}
	entity.AccountID = stringPtr(accountID)
	entity.CostBasis = floatPtr(costBasis)
	entity.CurrentPrice = floatPtr(currentPrice)
	entity.UnrealizedPNL = floatPtr(unrealizedPNL)
	return &entity, nil
}
