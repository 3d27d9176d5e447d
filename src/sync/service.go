// Package sync orchestrates credential lookup, adapter calls, validation,
// and persistence for transaction and position syncs.
package sync

import (
	"fmt"
	"strings"

	"github.com/username/tradedata/src/credentials"
	"github.com/username/tradedata/src/logger"
	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/repositories"
	"github.com/username/tradedata/src/sources"
	"github.com/username/tradedata/src/storage"
	"github.com/username/tradedata/src/validation"
)

// Service wires a storage handle, the adapter factory, and the credential
// store into the two sync workflows.
type Service struct {
	storage *storage.Storage
	factory *sources.Factory
	creds   credentials.Store

	transactions *repositories.TransactionRepository
	stockOrders  *repositories.StockOrderRepository
	optionOrders *repositories.OptionOrderRepository
	optionLegs   *repositories.OptionLegRepository
	executions   *repositories.ExecutionRepository
	positions    *repositories.PositionRepository
}

func NewService(s *storage.Storage, factory *sources.Factory, creds credentials.Store) *Service {
	return &Service{
		storage:      s,
		factory:      factory,
		creds:        creds,
		transactions: repositories.NewTransactionRepository(s),
		stockOrders:  repositories.NewStockOrderRepository(s),
		optionOrders: repositories.NewOptionOrderRepository(s),
		optionLegs:   repositories.NewOptionLegRepository(s),
		executions:   repositories.NewExecutionRepository(s),
		positions:    repositories.NewPositionRepository(s),
	}
}

// TransactionOptions parameterizes SyncTransactions.
type TransactionOptions struct {
	Source    string
	StartDate string
	EndDate   string
	// Types restricts the sync to the named transaction types. Empty means
	// all types.
	Types []string
	// Adapter overrides factory creation, mainly for tests.
	Adapter sources.Adapter
}

// SyncTransactions extracts, normalizes, validates, and persists
// transactions from a source.
//
// Each transaction and its child entities are written in one database
// transaction: a failure on any child leaves no trace of the record, while
// previously committed records stay. Re-running a sync is idempotent; records
// whose (source, source_id) already exist are skipped.
func (s *Service) SyncTransactions(opts TransactionOptions) ([]models.Transaction, error) {
	adapter, err := s.loginAdapter(opts.Source, opts.Adapter)
	if err != nil {
		return nil, err
	}

	rawTransactions, err := adapter.ExtractTransactions(opts.StartDate, opts.EndDate)
	if err != nil {
		return nil, fmt.Errorf("extracting transactions from %s: %w", opts.Source, err)
	}
	logger.L.Info("extracted transactions", "source", opts.Source, "count", len(rawTransactions))

	typeFilter := newTypeFilter(opts.Types)

	var stored []models.Transaction
	for _, raw := range rawTransactions {
		transaction, err := adapter.NormalizeTransaction(raw)
		if err != nil {
			return nil, err
		}
		if err := validation.ValidateTransaction(&transaction); err != nil {
			return nil, err
		}
		if !typeFilter.allows(transaction.Type) {
			continue
		}

		exists, err := s.transactions.ExistsBySourceID(transaction.Source, transaction.SourceID)
		if err != nil {
			return nil, err
		}
		if exists {
			logger.L.Debug("skipping already synced transaction",
				"source", transaction.Source, "source_id", transaction.SourceID)
			continue
		}

		if err := s.writeTransaction(adapter, raw, &transaction); err != nil {
			return nil, err
		}
		stored = append(stored, transaction)
	}

	logger.L.Info("sync complete", "source", opts.Source, "stored", len(stored))
	return stored, nil
}

// writeTransaction persists one transaction and its children atomically.
func (s *Service) writeTransaction(adapter sources.Adapter, raw models.RawRecord, transaction *models.Transaction) error {
	tx, err := s.storage.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.transactions.Create(transaction, tx); err != nil {
		return err
	}

	optionOrder, err := adapter.ExtractOptionOrder(raw, transaction.ID)
	if err != nil {
		return err
	}
	if optionOrder != nil {
		if err := validation.ValidateOptionOrder(optionOrder); err != nil {
			return err
		}
		if err := s.optionOrders.Create(optionOrder, tx); err != nil {
			return err
		}

		legs, err := adapter.ExtractOptionLegs(raw, optionOrder.ID)
		if err != nil {
			return err
		}
		legIDs := make([]string, 0, len(legs))
		for i := range legs {
			if err := validation.ValidateOptionLeg(&legs[i]); err != nil {
				return err
			}
			if err := s.optionLegs.Create(&legs[i], tx); err != nil {
				return err
			}
			legIDs = append(legIDs, legs[i].ID)
		}

		executions, err := adapter.ExtractExecutions(raw, transaction.ID, legIDs)
		if err != nil {
			return err
		}
		for i := range executions {
			if err := validation.ValidateExecution(&executions[i]); err != nil {
				return err
			}
			if err := s.executions.Create(&executions[i], tx); err != nil {
				return err
			}
		}
	} else {
		stockOrder, err := adapter.ExtractStockOrder(raw, transaction.ID)
		if err != nil {
			return err
		}
		if stockOrder != nil {
			if err := validation.ValidateStockOrder(stockOrder); err != nil {
				return err
			}
			if err := s.stockOrders.Create(stockOrder, tx); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction %s: %w", transaction.ID, err)
	}
	return nil
}

// PositionOptions parameterizes SyncPositions.
type PositionOptions struct {
	Source  string
	Adapter sources.Adapter
}

// SyncPositions extracts, normalizes, validates, and persists position
// snapshots. Positions are always inserted fresh; history accumulates.
func (s *Service) SyncPositions(opts PositionOptions) ([]models.Position, error) {
	adapter, err := s.loginAdapter(opts.Source, opts.Adapter)
	if err != nil {
		return nil, err
	}

	rawPositions, err := adapter.ExtractPositions()
	if err != nil {
		return nil, fmt.Errorf("extracting positions from %s: %w", opts.Source, err)
	}
	logger.L.Info("extracted positions", "source", opts.Source, "count", len(rawPositions))

	var stored []models.Position
	for _, raw := range rawPositions {
		position, err := adapter.NormalizePosition(raw)
		if err != nil {
			return nil, err
		}
		if err := validation.ValidatePosition(&position); err != nil {
			return nil, err
		}
		if err := s.positions.Create(&position, nil); err != nil {
			return nil, err
		}
		stored = append(stored, position)
	}

	logger.L.Info("position sync complete", "source", opts.Source, "stored", len(stored))
	return stored, nil
}

// loginAdapter resolves credentials, builds the adapter unless one was
// injected, and authenticates.
func (s *Service) loginAdapter(source string, injected sources.Adapter) (sources.Adapter, error) {
	username, password, err := s.creds.Get(source)
	if err != nil {
		return nil, fmt.Errorf("resolving credentials for %s: %w", source, err)
	}

	adapter := injected
	if adapter == nil {
		adapter, err = s.factory.Create(source)
		if err != nil {
			return nil, err
		}
	}

	if err := adapter.Login(username, password); err != nil {
		return nil, fmt.Errorf("logging in to %s: %w", source, err)
	}
	return adapter, nil
}

// typeFilter is a case-insensitive transaction type allowlist.
type typeFilter map[string]struct{}

func newTypeFilter(types []string) typeFilter {
	if len(types) == 0 {
		return nil
	}
	filter := make(typeFilter, len(types))
	for _, t := range types {
		filter[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return filter
}

func (f typeFilter) allows(transactionType string) bool {
	if f == nil {
		return true
	}
	_, ok := f[strings.ToLower(transactionType)]
	return ok
}
