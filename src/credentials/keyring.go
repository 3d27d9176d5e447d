package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringServicePrefix = "com.tradedata."

// KeyringStore keeps credentials in the operating system keyring. Each source
// gets its own service entry so sources never collide.
type KeyringStore struct{}

func (k *KeyringStore) service(source string) string {
	return keyringServicePrefix + source
}

func (k *KeyringStore) Get(source string) (string, string, error) {
	service := k.service(source)
	email, err := keyring.Get(service, "email")
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", "", fmt.Errorf("%w in keyring for %q", ErrNotFound, source)
		}
		return "", "", fmt.Errorf("reading keyring for %q: %w", source, err)
	}
	password, err := keyring.Get(service, "password")
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", "", fmt.Errorf("%w in keyring for %q", ErrNotFound, source)
		}
		return "", "", fmt.Errorf("reading keyring for %q: %w", source, err)
	}
	return email, password, nil
}

func (k *KeyringStore) Set(source, email, password string) error {
	if email == "" || password == "" {
		return errEmptyValues
	}
	service := k.service(source)
	if err := keyring.Set(service, "email", email); err != nil {
		return fmt.Errorf("writing keyring for %q: %w", source, err)
	}
	if err := keyring.Set(service, "password", password); err != nil {
		return fmt.Errorf("writing keyring for %q: %w", source, err)
	}
	return nil
}

func (k *KeyringStore) Delete(source string) error {
	service := k.service(source)
	for _, user := range []string{"email", "password"} {
		if err := keyring.Delete(service, user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("deleting keyring entry for %q: %w", source, err)
		}
	}
	return nil
}
