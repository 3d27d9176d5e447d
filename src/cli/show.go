package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/username/tradedata/src/listing"
)

// showCmd dispatches `show transactions` and `show positions`.
type showCmd struct{}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "show data from the local database" }
func (*showCmd) Usage() string {
	return `show transactions [-type LIST] [-days N] [-last N] [-id ID] [-source-id ID] [-raw]:
  Show stored transactions with optional filters.
show positions:
  Show stored positions.
`
}

func (*showCmd) SetFlags(*flag.FlagSet) {}

func (c *showCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	switch f.Arg(0) {
	case "transactions":
		return c.showTransactions(f.Args()[1:])
	case "positions":
		return c.showPositions(f.Args()[1:])
	default:
		return fail(fmt.Errorf("unknown show target %q, expected transactions or positions", f.Arg(0)))
	}
}

func (c *showCmd) showTransactions(args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("show transactions", flag.ContinueOnError)
	var types typesFlag
	fs.Var(&types, "type", "filter by transaction types, repeatable or comma-separated")
	days := fs.Int("days", 0, "only include transactions from the past N days")
	last := fs.Int("last", 0, "show only the most recent N transactions")
	raw := fs.Bool("raw", false, "show the base transaction view instead of enriched tables")
	var ids, sourceIDs stringsFlag
	fs.Var(&ids, "id", "filter by transaction id, repeatable")
	fs.Var(&sourceIDs, "source-id", "filter by provider source id, repeatable")
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}

	store, err := openStorage()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	opts := listing.Options{
		Types:     types,
		Days:      *days,
		Last:      *last,
		IDs:       ids,
		SourceIDs: sourceIDs,
	}

	if *raw {
		transactions, err := listing.Transactions(store, opts)
		if err != nil {
			return fail(err)
		}
		if len(transactions) == 0 {
			fmt.Println("No transactions found.")
			return subcommands.ExitSuccess
		}
		table := listing.BaseTable(transactions)
		renderTable(table.Headers, table.Rows)
		return subcommands.ExitSuccess
	}

	tables, err := listing.EnrichedTransactionTables(store, opts)
	if err != nil {
		return fail(err)
	}
	if len(tables) == 0 {
		fmt.Println("No transactions found.")
		return subcommands.ExitSuccess
	}
	for i, table := range tables {
		fmt.Printf("%s transactions\n", capitalize(table.TransactionType))
		renderTable(table.Headers, table.Rows)
		if i < len(tables)-1 {
			fmt.Println()
		}
	}
	return subcommands.ExitSuccess
}

func (c *showCmd) showPositions(args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("show positions", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}

	store, err := openStorage()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	positions, err := listing.Positions(store)
	if err != nil {
		return fail(err)
	}
	if len(positions) == 0 {
		fmt.Println("No positions found.")
		return subcommands.ExitSuccess
	}

	rows := make([][]string, 0, len(positions))
	for _, pos := range positions {
		rows = append(rows, []string{
			pos.ID,
			pos.Symbol,
			fmt.Sprintf("%g", pos.Quantity),
			formatOptionalFloat(pos.CostBasis),
			formatOptionalFloat(pos.CurrentPrice),
			pos.Source,
		})
	}
	renderTable([]string{"ID", "Symbol", "Quantity", "Cost Basis", "Current Price", "Source"}, rows)
	return subcommands.ExitSuccess
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%g", *f)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
