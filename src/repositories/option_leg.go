package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/storage"
)

const optionLegColumns = "id, order_id, strike_price, expiration_date, option_type, side, position_effect, ratio_quantity"

// OptionLegRepository persists OptionLeg entities (many per option order).
type OptionLegRepository struct {
	storage *storage.Storage
}

func NewOptionLegRepository(s *storage.Storage) *OptionLegRepository {
	return &OptionLegRepository{storage: s}
}

func (r *OptionLegRepository) GetByID(id string) (*models.OptionLeg, error) {
	row := r.storage.DB().QueryRow(
		`SELECT `+optionLegColumns+` FROM option_legs WHERE id = ?`, id)
	var entity models.OptionLeg
	err := row.Scan(&entity.ID, &entity.OrderID, &entity.StrikePrice, &entity.ExpirationDate,
		&entity.OptionType, &entity.Side, &entity.PositionEffect, &entity.RatioQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning option leg row: %w", err)
	}
	return &entity, nil
}

func (r *OptionLegRepository) Create(entity *models.OptionLeg, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`INSERT INTO option_legs
			(id, order_id, strike_price, expiration_date, option_type, side, position_effect, ratio_quantity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.OrderID, entity.StrikePrice, entity.ExpirationDate,
		entity.OptionType, entity.Side, entity.PositionEffect, entity.RatioQuantity,
	)
	if err != nil {
		return fmt.Errorf("inserting option leg %s: %w", entity.ID, err)
	}
	return nil
}

func (r *OptionLegRepository) Update(entity *models.OptionLeg, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`UPDATE option_legs
		 SET order_id = ?, strike_price = ?, expiration_date = ?, option_type = ?,
		     side = ?, position_effect = ?, ratio_quantity = ?
		 WHERE id = ?`,
		entity.OrderID, entity.StrikePrice, entity.ExpirationDate, entity.OptionType,
		entity.Side, entity.PositionEffect, entity.RatioQuantity, entity.ID,
	)
	if err != nil {
		return fmt.Errorf("updating option leg %s: %w", entity.ID, err)
	}
	return nil
}

func (r *OptionLegRepository) Delete(id string, tx *sql.Tx) (bool, error) {
	result, err := querier(r.storage, tx).Exec(`DELETE FROM option_legs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting option leg %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *OptionLegRepository) FindAll() ([]models.OptionLeg, error) {
	return r.findWhere(``)
}

func (r *OptionLegRepository) FindByOrderID(orderID string) ([]models.OptionLeg, error) {
	return r.findWhere(`WHERE order_id = ?`, orderID)
}

func (r *OptionLegRepository) findWhere(where string, args ...any) ([]models.OptionLeg, error) {
	rows, err := r.storage.DB().Query(
		`SELECT `+optionLegColumns+` FROM option_legs `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying option legs: %w", err)
	}
	defer rows.Close()

	var legs []models.OptionLeg
	for rows.Next() {
		var entity models.OptionLeg
		if err := rows.Scan(&entity.ID, &entity.OrderID, &entity.StrikePrice,
			&entity.ExpirationDate, &entity.OptionType, &entity.Side,
			&entity.PositionEffect, &entity.RatioQuantity); err != nil {
			return nil, fmt.Errorf("scanning option leg row: %w", err)
		}
		legs = append(legs, entity)
	}
	return legs, rows.Err()
}
