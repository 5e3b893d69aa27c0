// Package auth issues and validates RS256 session tokens, hashes passwords
// and carries the authenticated subject through request contexts.
package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"github.com/google/uuid"
)

// MinKeyBits is the smallest RSA modulus accepted for signing keys.
const MinKeyBits = 2048

// KeyProvider supplies the signing key pair. Implementations must be safe
// for concurrent use; the key never changes during the process lifetime.
type KeyProvider interface {
	KeyID() string
	PrivateKey() *rsa.PrivateKey
	PublicKey() *rsa.PublicKey
}

// StaticKeyProvider holds one fixed key pair.
type StaticKeyProvider struct {
	id  string
	key *rsa.PrivateKey
}

// NewStaticKeyProvider wraps an existing key, typically one loaded or
// generated by the caller (tests inject a fixed key this way).
func NewStaticKeyProvider(id string, key *rsa.PrivateKey) *StaticKeyProvider {
	return &StaticKeyProvider{id: id, key: key}
}

// GenerateKeyProvider creates a fresh RSA key pair identified by a random
// UUID. Tokens signed with it do not survive a process restart.
func GenerateKeyProvider(bits int) (*StaticKeyProvider, error) {
	if bits < MinKeyBits {
		return nil, fmt.Errorf("rsa key size %d is below %d bits", bits, MinKeyBits)
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return NewStaticKeyProvider(uuid.NewString(), key), nil
}

func (p *StaticKeyProvider) KeyID() string               { return p.id }
func (p *StaticKeyProvider) PrivateKey() *rsa.PrivateKey { return p.key }
func (p *StaticKeyProvider) PublicKey() *rsa.PublicKey   { return &p.key.PublicKey }
