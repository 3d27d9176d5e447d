package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/storage"
)

const transactionLinkColumns = "id, opening_transaction_id, closing_transaction_id, link_type, created_at"

// TransactionLinkRepository persists TransactionLink entities (many-to-many
// relationships over transactions, e.g. an opening order and its close).
type TransactionLinkRepository struct {
	storage *storage.Storage
}

func NewTransactionLinkRepository(s *storage.Storage) *TransactionLinkRepository {
	return &TransactionLinkRepository{storage: s}
}

func (r *TransactionLinkRepository) GetByID(id string) (*models.TransactionLink, error) {
	row := r.storage.DB().QueryRow(
		`SELECT `+transactionLinkColumns+` FROM transaction_links WHERE id = ?`, id)
	entity, err := scanTransactionLink(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return entity, err
}

func (r *TransactionLinkRepository) Create(entity *models.TransactionLink, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`INSERT INTO transaction_links
			(id, opening_transaction_id, closing_transaction_id, link_type, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entity.ID, entity.OpeningTransactionID, entity.ClosingTransactionID,
		nullString(entity.LinkType), entity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction link %s: %w", entity.ID, err)
	}
	return nil
}

func (r *TransactionLinkRepository) Update(entity *models.TransactionLink, tx *sql.Tx) error {
	_, err := querier(r.storage, tx).Exec(
		`UPDATE transaction_links
		 SET opening_transaction_id = ?, closing_transaction_id = ?, link_type = ?, created_at = ?
		 WHERE id = ?`,
		entity.OpeningTransactionID, entity.ClosingTransactionID,
		nullString(entity.LinkType), entity.CreatedAt, entity.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction link %s: %w", entity.ID, err)
	}
	return nil
}

func (r *TransactionLinkRepository) Delete(id string, tx *sql.Tx) (bool, error) {
	result, err := querier(r.storage, tx).Exec(`DELETE FROM transaction_links WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting transaction link %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *TransactionLinkRepository) FindAll() ([]models.TransactionLink, error) {
	return r.findWhere(``)
}

func (r *TransactionLinkRepository) FindByOpeningTransactionID(id string) ([]models.TransactionLink, error) {
	return r.findWhere(`WHERE opening_transaction_id = ?`, id)
}

func (r *TransactionLinkRepository) FindByClosingTransactionID(id string) ([]models.TransactionLink, error) {
	return r.findWhere(`WHERE closing_transaction_id = ?`, id)
}

func (r *TransactionLinkRepository) findWhere(where string, args ...any) ([]models.TransactionLink, error) {
	rows, err := r.storage.DB().Query(
		`SELECT `+transactionLinkColumns+` FROM transaction_links `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transaction links: %w", err)
	}
	defer rows.Close()

	var links []models.TransactionLink
	for rows.Next() {
		entity, err := scanTransactionLink(rows.Scan)
		if err != nil {
			return nil, err
		}
		links = append(links, *entity)
	}
	return links, rows.Err()
}

func scanTransactionLink(scan func(dest ...any) error) (*models.TransactionLink, error) {
	var entity models.TransactionLink
	var linkType sql.NullString
	if err := scan(&entity.ID, &entity.OpeningTransactionID, &entity.ClosingTransactionID,
		&linkType, &entity.CreatedAt); err != nil {
		return nil, err
	}
	entity.LinkType = stringPtr(linkType)
	return &entity, nil
}
