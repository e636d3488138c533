package redis

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"time"
)

const sessionKeyPrefix = "session:"

// SessionData is the token pair hidden behind an opaque session ID.
type SessionData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionStore keeps sessions in Redis, encrypted with AES-GCM so a
// leaked Redis dump does not leak bearer tokens.
type SessionStore struct {
	aead cipher.AEAD
}

// NewSessionStore builds a store from a 64-char hex key (32 bytes).
func NewSessionStore(encryptionKeyHex string) (*SessionStore, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil || len(key) != 32 {
		return nil, errors.New("session encryption key must be 64 hex chars")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &SessionStore{aead: aead}, nil
}

// CreateSession encrypts and stores the token pair under the session ID.
func (s *SessionStore) CreateSession(ctx context.Context, sessionID string, data *SessionData, expiration time.Duration) error {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return err
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}
	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)

	return Set(ctx, sessionKeyPrefix+sessionID, base64.StdEncoding.EncodeToString(sealed), expiration)
}

// GetSession decrypts the stored token pair, or errors if the session
// is missing, expired, or was written with a different key.
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	stored, err := Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		return nil, err
	}

	sealed, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return nil, err
	}
	if len(sealed) < s.aead.NonceSize() {
		return nil, errors.New("session ciphertext too short")
	}

	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}

	var data SessionData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DeleteSession removes a session. Deleting an unknown ID is not an error.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return Del(ctx, sessionKeyPrefix+sessionID)
}
