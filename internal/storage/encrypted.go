package storage

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/jwalitptl/patient-records/pkg/security"
)

// EncryptedStorage wraps another Storage and encrypts values at rest with
// AES-GCM. Keys stay in the clear; they are fixed collection names.
type EncryptedStorage struct {
	inner     Storage
	encryptor security.Encryptor
}

func NewEncryptedStorage(inner Storage, encryptor security.Encryptor) *EncryptedStorage {
	return &EncryptedStorage{inner: inner, encryptor: encryptor}
}

func (e *EncryptedStorage) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := e.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	plain, err := e.encryptor.Decrypt(raw)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt %s: %w", key, err)
	}
	return string(plain), true, nil
}

func (e *EncryptedStorage) Set(ctx context.Context, key, value string) error {
	sealed, err := e.encryptor.Encrypt([]byte(value))
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", key, err)
	}
	return e.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

func (e *EncryptedStorage) Remove(ctx context.Context, key string) error {
	return e.inner.Remove(ctx, key)
}
