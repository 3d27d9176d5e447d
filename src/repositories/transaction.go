package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/storage"
)

const transactionColumns = "id, source, source_id, type, created_at, account_id, raw_data"

// TransactionRepository persists Transaction entities.
type TransactionRepository struct {
	storage *storage.Storage
}

func NewTransactionRepository(s *storage.Storage) *TransactionRepository {
	return &TransactionRepository{storage: s}
}

// ExistsBySourceID reports whether a transaction with the given natural key
// (source, source_id) is already stored. The sync orchestrator uses this for
// idempotent re-runs.
func (r *TransactionRepository) ExistsBySourceID(source, sourceID string) (bool, error) {
	var one int
	err := r.storage.DB().QueryRow(
		`SELECT 1 FROM transactions WHERE source = ? AND source_id = ? LIMIT 1`,
		source, sourceID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking transaction existence for %s/%s: %w", source, sourceID, err)
	}
	return true, nil
}

func (r *TransactionRepository) GetByID(id string) (*models.Transaction, error) {
	row := r.storage.DB().QueryRow(
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

func (r *TransactionRepository) Create(entity *models.Transaction, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`INSERT INTO transactions (id, source, source_id, type, created_at, account_id, raw_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.Source, entity.SourceID, entity.Type, entity.CreatedAt,
		nullString(entity.AccountID), entity.RawData,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", entity.ID, err)
	}
	return nil
}

func (r *TransactionRepository) Update(entity *models.Transaction, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`UPDATE transactions
		 SET source = ?, source_id = ?, type = ?, created_at = ?, account_id = ?, raw_data = ?
		 WHERE id = ?`,
		entity.Source, entity.SourceID, entity.Type, entity.CreatedAt,
		nullString(entity.AccountID), entity.RawData, entity.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction %s: %w", entity.ID, err)
	}
	return nil
}

func (r *TransactionRepository) Delete(id string, tx *sql.Tx) (bool, error) {
	result, err := querier(r.storage, tx).Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *TransactionRepository) FindAll() ([]models.Transaction, error) {
	return r.findWhere(``)
}

func (r *TransactionRepository) FindBySource(source string) ([]models.Transaction, error) {
	return r.findWhere(`WHERE source = ?`, source)
}

func (r *TransactionRepository) FindByType(transactionType string) ([]models.Transaction, error) {
	return r.findWhere(`WHERE type = ?`, transactionType)
}

func (r *TransactionRepository) findWhere(where string, args ...any) ([]models.Transaction, error) {
	rows, err := r.storage.DB().Query(
		`SELECT `+transactionColumns+` FROM transactions `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var entity models.Transaction
		var accountID sql.NullString
		if err := rows.Scan(&entity.ID, &entity.Source, &entity.SourceID, &entity.Type,
			&entity.CreatedAt, &accountID, &entity.RawData); err != nil {
			return nil, fmt.Errorf("scanning transaction row: %w", err)
		}
		entity.AccountID = stringPtr(accountID)
		transactions = append(transactions, entity)
	}
	return transactions, rows.Err()
}

func scanTransaction(row *sql.Row) (*models.Transaction, error) {
	var entity models.Transaction
	var accountID sql.NullString
	err := row.Scan(&entity.ID, &entity.Source, &entity.SourceID, &entity.Type,
		&entity.CreatedAt, &accountID, &entity.RawData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning transaction row: %w", err)
	}
	entity.AccountID = stringPtr(accountID)
	return &entity, nil
}
