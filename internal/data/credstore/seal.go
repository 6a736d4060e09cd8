package credstore

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/kreta-tools/go-kreta-bridge/internal/data/kreta"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// Sealer mints and opens opaque credential tokens. A plain base64 blob in a
// calendar url leaks the password to anyone who sees the url; a sealed token
// only works against the server instance holding the key.
type Sealer struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// NewSealer builds a sealer over a raw key of chacha20poly1305.KeySize bytes
func NewSealer(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating sealer: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// LoadOrCreateKey reads the sealing key from keyPath, generating and
// persisting a fresh one on first run. Tokens minted before a key loss are
// dead, subscribers have to re-seal.
func LoadOrCreateKey(keyPath string) ([]byte, error) {
	raw, err := os.ReadFile(keyPath)
	if err == nil {
		key, decErr := base64.StdEncoding.DecodeString(string(raw))
		if decErr != nil || len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("key file %s is corrupt", keyPath)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading key file %s: %w", keyPath, err)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	rand.Read(key)

	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating key directory: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(keyPath, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("writing key file %s: %w", keyPath, err)
	}
	util.LogInfof("generated new sealing key at %s", keyPath)
	return key, nil
}

// Seal encrypts credentials into a url-safe token: base64url(nonce || box)
func (s *Sealer) Seal(creds *kreta.Credentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}
	plaintext, err := sonic.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("serializing credentials: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	rand.Read(nonce)

	box := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

// Open decrypts a token minted by Seal. Any tampering, truncation or a
// foreign key shows up as a single opaque error; the token carries no hint
// of what is inside.
func (s *Sealer) Open(token string) (*kreta.Credentials, error) {
	box, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(box) <= chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("malformed credential token")
	}

	nonce, ciphertext := box[:chacha20poly1305.NonceSizeX], box[chacha20poly1305.NonceSizeX:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("credential token does not open with this server's key")
	}

	var creds kreta.Credentials
	if err := sonic.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("opened token holds invalid credentials: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return &creds, nil
}
