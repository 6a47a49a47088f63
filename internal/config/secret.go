package config

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// keyringService namespaces our entries in the system keyring.
const keyringService = "mariner"

// SetPassword stores a profile password in the system keyring.
func SetPassword(profile, password string) error {
	return keyring.Set(keyringService, profile, password)
}

// GetPassword fetches a profile password from the system keyring. A missing
// entry yields an empty password, not an error.
func GetPassword(profile string) (string, error) {
	pw, err := keyring.Get(keyringService, profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return pw, nil
}

// DeletePassword removes a profile password from the system keyring.
func DeletePassword(profile string) error {
	err := keyring.Delete(keyringService, profile)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
