package credentials

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	credentialsFileName = "credentials.enc"
	keyFileName         = "credentials.key"
	keySize             = 32
	nonceSize           = 24
)

// FileStore keeps credentials in a secretbox-sealed JSON file under the
// config directory. The sealing key lives beside it with 0600 permissions;
// this protects against casual reads, not against an attacker with access to
// the same account.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

type fileEntry struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f *FileStore) Get(source string) (string, string, error) {
	entries, err := f.load()
	if err != nil {
		return "", "", err
	}
	entry, ok := entries[source]
	if !ok {
		return "", "", fmt.Errorf("%w in credential file for %q", ErrNotFound, source)
	}
	return entry.Email, entry.Password, nil
}

func (f *FileStore) Set(source, email, password string) error {
	if email == "" || password == "" {
		return errEmptyValues
	}
	entries, err := f.load()
	if err != nil {
		return err
	}
	entries[source] = fileEntry{Email: email, Password: password}
	return f.save(entries)
}

func (f *FileStore) Delete(source string) error {
	entries, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := entries[source]; !ok {
		return nil
	}
	delete(entries, source)
	return f.save(entries)
}

func (f *FileStore) load() (map[string]fileEntry, error) {
	sealed, err := os.ReadFile(filepath.Join(f.dir, credentialsFileName))
	if os.IsNotExist(err) {
		return map[string]fileEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credential file: %w", err)
	}
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("credential file is truncated")
	}

	key, err := f.loadKey(false)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, key)
	if !ok {
		return nil, fmt.Errorf("credential file cannot be decrypted, delete %s to reset",
			filepath.Join(f.dir, credentialsFileName))
	}

	entries := map[string]fileEntry{}
	if err := json.Unmarshal(plain, &entries); err != nil {
		return nil, fmt.Errorf("parsing credential file: %w", err)
	}
	return entries, nil
}

func (f *FileStore) save(entries map[string]fileEntry) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	key, err := f.loadKey(true)
	if err != nil {
		return err
	}

	plain, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, key)

	path := filepath.Join(f.dir, credentialsFileName)
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	return nil
}

// loadKey reads the sealing key, generating one when create is set and no
// key exists yet.
func (f *FileStore) loadKey(create bool) (*[keySize]byte, error) {
	path := filepath.Join(f.dir, keyFileName)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) && create {
		var key [keySize]byte
		if _, err := rand.Read(key[:]); err != nil {
			return nil, fmt.Errorf("generating credential key: %w", err)
		}
		if err := os.WriteFile(path, key[:], 0o600); err != nil {
			return nil, fmt.Errorf("writing credential key: %w", err)
		}
		return &key, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credential key: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("credential key has wrong size %d", len(raw))
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}
