package crypto

import (
	"errors"
	"fmt"
	"os"
)

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "invoicedesk"
	KeyName     = "db-encryption-key"

	// EnvKey overrides the system keyring when set
	EnvKey = "INVOICEDESK_DB_KEY"
)

// ErrKeyNotFound is returned when no encryption key has been stored yet.
var ErrKeyNotFound = errors.New("encryption key not found")

// NewKeyring returns the environment override backed by the system keyring
func NewKeyring() Keyring {
	return &chainKeyring{env: &envKeyring{}, system: &systemKeyring{}}
}

// chainKeyring reads the environment first and stores into the system keyring.
type chainKeyring struct {
	env    Keyring
	system Keyring
}

func (k *chainKeyring) GetKey() (string, error) {
	if k.env.IsAvailable() {
		return k.env.GetKey()
	}
	return k.system.GetKey()
}

func (k *chainKeyring) SetKey(password string) error {
	if !k.system.IsAvailable() {
		return fmt.Errorf("system keyring not available: set %s instead", EnvKey)
	}
	return k.system.SetKey(password)
}

func (k *chainKeyring) DeleteKey() error {
	return k.system.DeleteKey()
}

func (k *chainKeyring) IsAvailable() bool {
	return k.env.IsAvailable() || k.system.IsAvailable()
}

type envKeyring struct{}

// GetKey retrieves the encryption key from the INVOICEDESK_DB_KEY environment variable
func (k *envKeyring) GetKey() (string, error) {
	key := os.Getenv(EnvKey)
	if key == "" {
		return "", fmt.Errorf("%s not set: %w", EnvKey, ErrKeyNotFound)
	}
	return key, nil
}

func (k *envKeyring) SetKey(string) error {
	return fmt.Errorf("cannot store keys in the environment: export %s yourself", EnvKey)
}

func (k *envKeyring) DeleteKey() error {
	return fmt.Errorf("cannot delete keys from the environment: unset %s yourself", EnvKey)
}

func (k *envKeyring) IsAvailable() bool {
	return os.Getenv(EnvKey) != ""
}
