package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/term"

	"github.com/username/tradedata/src/credentials"
	"github.com/username/tradedata/src/sources"
	"github.com/username/tradedata/src/sources/robinhood"
)

// loginCmd authenticates against a source and stores credentials on success.
type loginCmd struct {
	email    string
	password string
	force    bool
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "login to a data source and store credentials" }
func (*loginCmd) Usage() string {
	return `login [source] [-email EMAIL] [-password PASSWORD] [-force]:
  Login to a data source (default robinhood) and store credentials securely.
  Missing values are prompted for.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "account email; prompts if not provided")
	f.StringVar(&c.password, "password", "", "account password; prompts if not provided")
	f.BoolVar(&c.force, "force", false, "re-prompt and overwrite stored credentials")
}

func (c *loginCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	source := f.Arg(0)
	if source == "" {
		source = robinhood.SourceName
	}

	store := credentialStore()
	email, password, err := credentials.Resolve(store, source, c.email, c.password, c.force)
	if err != nil {
		if !errors.Is(err, credentials.ErrNotFound) {
			return fail(err)
		}
		email, password, err = promptMissing(c.email, c.password)
		if err != nil {
			return fail(err)
		}
	}

	adapter, err := sources.Default().Create(source)
	if err != nil {
		return fail(err)
	}
	if err := adapter.Login(email, password); err != nil {
		return fail(fmt.Errorf("failed to login to %s: %w", source, err))
	}

	if err := store.Set(source, email, password); err != nil {
		return fail(fmt.Errorf("storing credentials for %s: %w", source, err))
	}
	fmt.Printf("Logged in to %s and stored credentials securely.\n", source)
	return subcommands.ExitSuccess
}

// promptMissing asks for whichever of email and password were not given on
// the command line. The password prompt does not echo.
func promptMissing(email, password string) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)
	if email == "" {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("reading email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("reading password: %w", err)
		}
		password = string(raw)
	}
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password are required")
	}
	return email, password, nil
}
