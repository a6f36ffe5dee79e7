package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// EnvelopeKey is the metadata key holding the encrypted record.
const EnvelopeKey = "__encrypted__"

type encryptionMiddleware struct {
	next   ports.ResultStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts records using AES-GCM (Envelope Encryption).
// Trial type and index stay readable so stores can still be inspected; stimuli and metadata do not.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.ResultStore) ports.ResultStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Append(ctx context.Context, sessionID string, result domain.TrialResult) error {
	// 1. Serialize the real record
	plainText, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	// 2. Encrypt
	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt result: %w", err)
	}

	// 3. Create envelope
	envelope := domain.TrialResult{
		TrialType:  result.TrialType,
		TrialIndex: result.TrialIndex,
		Data: map[string]any{
			EnvelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
		},
	}
	return m.next.Append(ctx, sessionID, envelope)
}

func (m *encryptionMiddleware) List(ctx context.Context, sessionID string) ([]domain.TrialResult, error) {
	envelopes, err := m.next.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TrialResult, 0, len(envelopes))
	for i, envelope := range envelopes {
		result, err := m.open(envelope)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, result)
	}
	return out, nil
}

func (m *encryptionMiddleware) open(envelope domain.TrialResult) (domain.TrialResult, error) {
	encryptedStr, ok := envelope.Data[EnvelopeKey].(string)
	if !ok {
		// Fail secure: plain records are not passed through.
		return domain.TrialResult{}, errors.New("record is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return domain.TrialResult{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	// Try Active, then Fallback
	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.TrialResult{}, fmt.Errorf("failed to decrypt result: %w", err)
	}

	var result domain.TrialResult
	if err := json.Unmarshal(plainText, &result); err != nil {
		return domain.TrialResult{}, fmt.Errorf("failed to unmarshal decrypted result: %w", err)
	}
	return result, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) Sessions(ctx context.Context) ([]string, error) {
	return m.next.Sessions(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
