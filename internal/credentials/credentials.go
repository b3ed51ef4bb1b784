package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "yads"

var ErrNotFound = errors.New("credentials: not found")

func StoreAppSecret(key string, value string) error {
	return keyring.Set(serviceName, "app:"+key, value)
}

func LoadAppSecret(key string) (string, error) {
	val, err := keyring.Get(serviceName, "app:"+key)
	if err != nil {
		return "", ErrNotFound
	}
	return val, nil
}

func DeleteAppSecret(key string) {
	_ = keyring.Delete(serviceName, "app:"+key)
}

// EnsureAppSecret returns the secret stored under key, generating and
// storing a random one on first use.
func EnsureAppSecret(key string) (string, error) {
	if val, err := LoadAppSecret(key); err == nil {
		return val, nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate %s: %w", key, err)
	}
	val := base64.StdEncoding.EncodeToString(secret)
	if err := StoreAppSecret(key, val); err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return val, nil
}
