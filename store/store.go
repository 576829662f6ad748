// Package store is a small key→bytes file store used to remember
// credentials and the endpoint URL across runs. Values are encrypted at
// rest with a key derived from a user-supplied passphrase; there is no
// compiled-in secret. The store makes no availability guarantee: a missing
// file is simply an empty store.
package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store holds key→bytes pairs in memory and persists them as a JSON file
// of sealed, base64-encoded blobs.
type Store struct {
	path       string
	passphrase string

	mu     sync.Mutex
	values map[string][]byte
}

// Open loads the store at path, decrypting values with passphrase. A
// missing file yields an empty store; a present but undecryptable file is
// an error.
func Open(path, passphrase string) (*Store, error) {
	s := &Store{
		path:       path,
		passphrase: passphrase,
		values:     make(map[string][]byte),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store %s: %w", path, err)
	}

	var encoded map[string]string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("store %s is not valid JSON: %w", path, err)
	}

	for key, b64 := range encoded {
		blob, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("store value %s is not valid base64: %w", key, err)
		}
		value, err := open(blob, passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt store value %s: %w", key, err)
		}
		s.values[key] = value
	}

	return s, nil
}

// Get returns the value for key.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the value for key as a string, "" when absent.
func (s *Store) GetString(key string) string {
	v, _ := s.Get(key)
	return string(v)
}

// Set stores value under key. Changes are in-memory until Save.
func (s *Store) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Save seals every value and writes the store atomically (temp file then
// rename), mode 0600.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded := make(map[string]string, len(s.values))
	for key, value := range s.values {
		if len(value) == 0 {
			continue
		}
		blob, err := seal(value, s.passphrase)
		if err != nil {
			return fmt.Errorf("failed to encrypt store value %s: %w", key, err)
		}
		encoded[key] = base64.StdEncoding.EncodeToString(blob)
	}

	raw, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}

// Credentials is the trio the CLI remembers between runs.
type Credentials struct {
	URL      string
	Username string
	Password string
}

// Keys under which credentials live in the store.
const (
	KeyURL      = "url"
	KeyUsername = "username"
	KeyPassword = "password"
)

// LoadCredentials reads the remembered credentials; ok is false when none
// are stored.
func LoadCredentials(s *Store) (Credentials, bool) {
	c := Credentials{
		URL:      s.GetString(KeyURL),
		Username: s.GetString(KeyUsername),
		Password: s.GetString(KeyPassword),
	}
	return c, c.URL != "" || c.Username != ""
}

// SaveCredentials stores the credentials and persists the file.
func SaveCredentials(s *Store, c Credentials) error {
	s.Set(KeyURL, []byte(c.URL))
	s.Set(KeyUsername, []byte(c.Username))
	s.Set(KeyPassword, []byte(c.Password))
	return s.Save()
}
