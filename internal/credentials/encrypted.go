package credentials

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"
)

// ErrUnreadableValue marks a stored value that could not be opened, such as
// plaintext from an older writer or a value sealed under another key
var ErrUnreadableValue = stderrors.New("stored value cannot be opened")

// Sealer encrypts and decrypts stored values
type Sealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// EncryptedStore seals values before handing them to the wrapped Store
type EncryptedStore struct {
	next   Store
	sealer Sealer
}

// NewEncryptedStore wraps next so that values are encrypted at rest
func NewEncryptedStore(next Store, sealer Sealer) *EncryptedStore {
	return &EncryptedStore{next: next, sealer: sealer}
}

// Get opens the value at key. An undecryptable value wraps ErrUnreadableValue.
func (s *EncryptedStore) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, found, err := s.next.Get(ctx, key)
	if err != nil || !found {
		return "", found, err
	}

	value, err := s.sealer.Decrypt(sealed)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnreadableValue, err)
	}
	return value, true, nil
}

// Set seals value and writes it to the wrapped store
func (s *EncryptedStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	sealed, err := s.sealer.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to seal value: %w", err)
	}
	return s.next.Set(ctx, key, sealed, ttl)
}

// Delete removes key from the wrapped store
func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}
