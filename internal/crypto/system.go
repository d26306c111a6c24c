package crypto

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// systemKeyring stores the key in the OS credential store
// (Keychain, Secret Service or Windows Credential Manager).
type systemKeyring struct{}

// GetKey retrieves the encryption key from the OS keyring
func (k *systemKeyring) GetKey() (string, error) {
	key, err := keyring.Get(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to retrieve key from keyring: %w", err)
	}

	if key == "" {
		return "", errors.New("encryption key is empty")
	}

	return key, nil
}

// SetKey stores the encryption key in the OS keyring
func (k *systemKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	if err := keyring.Set(ServiceName, KeyName, password); err != nil {
		return fmt.Errorf("failed to store key in keyring: %w", err)
	}
	return nil
}

// DeleteKey removes the encryption key from the OS keyring
func (k *systemKeyring) DeleteKey() error {
	err := keyring.Delete(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrKeyNotFound
		}
		return fmt.Errorf("failed to delete key from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the keyring is accessible
func (k *systemKeyring) IsAvailable() bool {
	// Probe with a throwaway entry
	testKey := "__invoicedesk_availability_test__"
	if err := keyring.Set(ServiceName, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(ServiceName, testKey)
	return true
}
