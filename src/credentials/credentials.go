// Package credentials stores broker credentials. The primary backend is the
// system keyring (macOS Keychain, Windows Credential Manager, Linux Secret
// Service); an encrypted file under the config directory serves as fallback
// for headless hosts.
package credentials

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no credentials are stored for a source.
var ErrNotFound = errors.New("credentials not found")

// Store is the credential capability consumed by the sync orchestrator and
// the login command.
type Store interface {
	// Get returns the stored (email, password) pair for a source, or an
	// error wrapping ErrNotFound.
	Get(source string) (email, password string, err error)
	// Set stores a pair, rejecting empty values.
	Set(source, email, password string) error
	// Delete removes a pair; absence is not an error.
	Delete(source string) error
}

// Resolve picks credentials from explicit values or the store.
//
// Resolution order: provided values win; unless force is set, missing values
// are looked up in the store; if still missing, ErrNotFound is wrapped with
// the source name.
func Resolve(store Store, source, email, password string, force bool) (string, string, error) {
	if !force && (email == "" || password == "") {
		storedEmail, storedPassword, err := store.Get(source)
		if err == nil {
			if email == "" {
				email = storedEmail
			}
			if password == "" {
				password = storedPassword
			}
		} else if !errors.Is(err, ErrNotFound) {
			return "", "", err
		}
	}

	if email == "" || password == "" {
		return "", "", fmt.Errorf("%w for %q: not stored and not provided", ErrNotFound, source)
	}
	return email, password, nil
}

// DefaultStore returns the keyring store chained with the encrypted file
// fallback rooted at configDir.
func DefaultStore(configDir string) Store {
	return &chainStore{
		primary:  &KeyringStore{},
		fallback: NewFileStore(configDir),
	}
}

// chainStore consults the primary backend first and falls back when the
// primary is unavailable or has no entry.
type chainStore struct {
	primary  Store
	fallback Store
}

func (c *chainStore) Get(source string) (string, string, error) {
	email, password, err := c.primary.Get(source)
	if err == nil {
		return email, password, nil
	}
	return c.fallback.Get(source)
}

func (c *chainStore) Set(source, email, password string) error {
	if err := c.primary.Set(source, email, password); err == nil || isValueError(err) {
		return err
	}
	return c.fallback.Set(source, email, password)
}

func (c *chainStore) Delete(source string) error {
	// Both backends are best-effort; absence is silent in each.
	errPrimary := c.primary.Delete(source)
	errFallback := c.fallback.Delete(source)
	if errPrimary != nil && errFallback != nil {
		return errPrimary
	}
	return nil
}

// isValueError distinguishes caller mistakes (empty values) from backend
// unavailability so the chain does not mask them by falling through.
func isValueError(err error) bool {
	return errors.Is(err, errEmptyValues)
}

var errEmptyValues = errors.New("email and password must not be empty")
