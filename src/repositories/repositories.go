// Package repositories provides one repository per entity table. Mutating
// operations accept an optional *sql.Tx; when supplied, the statement joins
// the caller's transaction scope instead of running on its own, which is how
// the sync orchestrator composes multi-table writes into one atomic unit.
package repositories

import (
	"database/sql"

	"github.com/username/tradedata/src/storage"
)

// querier picks the caller's transaction when one is supplied.
func querier(s *storage.Storage, tx *sql.Tx) storage.Querier {
	if tx != nil {
		return tx
	}
	return s.DB()
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
