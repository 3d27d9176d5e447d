package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/username/tradedata/src/sync"
)

// syncCmd dispatches `sync transactions` and `sync positions`.
type syncCmd struct{}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "sync data from brokers into the local database" }
func (*syncCmd) Usage() string {
	return `sync transactions [-source NAME] [-start-date DATE] [-end-date DATE] [-types LIST]:
  Sync transactions into the local database.
sync positions [-source NAME]:
  Sync position snapshots into the local database.
`
}

func (*syncCmd) SetFlags(*flag.FlagSet) {}

func (c *syncCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	switch f.Arg(0) {
	case "transactions":
		return c.syncTransactions(f.Args()[1:])
	case "positions":
		return c.syncPositions(f.Args()[1:])
	default:
		return fail(fmt.Errorf("unknown sync target %q, expected transactions or positions", f.Arg(0)))
	}
}

func (c *syncCmd) syncTransactions(args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("sync transactions", flag.ContinueOnError)
	source := fs.String("source", "robinhood", "data source name")
	startDate := fs.String("start-date", "", "optional start date (YYYY-MM-DD)")
	endDate := fs.String("end-date", "", "optional end date (YYYY-MM-DD)")
	var types typesFlag
	fs.Var(&types, "types", "transaction types to include, repeatable or comma-separated")
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}

	store, err := openStorage()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	stored, err := newSyncService(store).SyncTransactions(sync.TransactionOptions{
		Source:    *source,
		StartDate: *startDate,
		EndDate:   *endDate,
		Types:     types,
	})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Synced %d transactions from %s.\n", len(stored), *source)
	return subcommands.ExitSuccess
}

func (c *syncCmd) syncPositions(args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("sync positions", flag.ContinueOnError)
	source := fs.String("source", "robinhood", "data source name")
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}

	store, err := openStorage()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	stored, err := newSyncService(store).SyncPositions(sync.PositionOptions{Source: *source})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Synced %d positions from %s.\n", len(stored), *source)
	return subcommands.ExitSuccess
}
