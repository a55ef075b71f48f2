package vault

import "github.com/zalando/go-keyring"

const (
	keyringService = "kubevault"
	keyringUser    = "vault-token"
)

// StoreToken saves a client token in the OS keyring for later runs.
func StoreToken(token string) error {
	return keyring.Set(keyringService, keyringUser, token)
}

// ClearToken removes any stored client token. A missing entry is not an error.
func ClearToken() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err == keyring.ErrNotFound {
		return nil
	}
	return err
}

// storedToken returns the keyring token, or empty when none is stored.
func storedToken() (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	return token, err
}
