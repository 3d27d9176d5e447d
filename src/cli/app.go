// Package cli implements the tradedata command line interface.
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/username/tradedata/src/config"
	"github.com/username/tradedata/src/credentials"
	"github.com/username/tradedata/src/logger"
	"github.com/username/tradedata/src/sources"
	"github.com/username/tradedata/src/sources/robinhood"
	"github.com/username/tradedata/src/storage"
	"github.com/username/tradedata/src/sync"
)

// dbPath overrides the configured database location.
var dbPath string

// Register installs the top-level flags, the brokerage adapters, and the
// tradedata commands into c.
func Register(c *subcommands.Commander) {
	flag.StringVar(&dbPath, "db", "", "database file path (overrides TRADEDATA_DB_PATH)")

	if err := sources.Default().Register(robinhood.SourceName, robinhood.New); err != nil {
		logger.L.Error("registering robinhood adapter", "error", err)
	}

	c.Register(&loginCmd{}, "")
	c.Register(&syncCmd{}, "")
	c.Register(&showCmd{}, "")
}

func openStorage() (*storage.Storage, error) {
	return storage.New(config.DatabasePath(dbPath))
}

func credentialStore() credentials.Store {
	return credentials.DefaultStore(config.Cfg.ConfigDir)
}

func newSyncService(store *storage.Storage) *sync.Service {
	return sync.NewService(store, sources.Default(), credentialStore())
}

// fail reports err on stderr and maps it to a failing exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// renderTable writes an aligned table to stdout.
func renderTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// typesFlag collects repeatable, comma- or space-separated type filters.
type typesFlag []string

func (t *typesFlag) String() string {
	return strings.Join(*t, ",")
}

func (t *typesFlag) Set(value string) error {
	for _, part := range strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' '
	}) {
		if part = strings.TrimSpace(part); part != "" {
			*t = append(*t, part)
		}
	}
	return nil
}

// stringsFlag collects repeatable string values.
type stringsFlag []string

func (s *stringsFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringsFlag) Set(value string) error {
	if value = strings.TrimSpace(value); value != "" {
		*s = append(*s, value)
	}
	return nil
}
