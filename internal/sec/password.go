package sec

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"
)

// Key derivation parameters. Changing any of them invalidates every stored
// credential.
const (
	SaltLength = 16      // bytes
	KeyLength  = 32      // bytes (256 bits)
	Iterations = 100_000 // PBKDF2-HMAC-SHA256 rounds
)

var keyEncoding = base64.StdEncoding

// GenerateSalt returns SaltLength fresh bytes from a CSPRNG.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives the KeyLength-byte key for password and salt. The result
// is deterministic for a given pair.
func DeriveKey[T ~string | ~[]byte](password T, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, KeyLength, sha256.New)
}

// Verify compares two derived keys in constant time. Keys of different length
// and empty keys never match.
func Verify(attempt, stored []byte) bool {
	if len(stored) == 0 || len(attempt) != len(stored) {
		return false
	}
	return subtle.ConstantTimeCompare(attempt, stored) == 1
}

// EncodeKey returns the text form of a salt or derived key.
func EncodeKey(b []byte) string { return keyEncoding.EncodeToString(b) }

// DecodeKey parses the text form of a salt or derived key.
func DecodeKey(s string) ([]byte, error) { return keyEncoding.DecodeString(s) }

// Credential is the stored, text-encoded form of a password.
type Credential struct {
	Hash string
	Salt string
}

// NewCredential derives a credential for password under a fresh salt.
func NewCredential[T ~string | ~[]byte](password T) (Credential, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		Hash: EncodeKey(DeriveKey(password, salt)),
		Salt: EncodeKey(salt),
	}, nil
}

// Matches reports whether password derives to c. Malformed encodings are a
// mismatch, not an error.
func (c Credential) Matches(password Password) bool {
	salt, err := DecodeKey(c.Salt)
	if err != nil || len(salt) == 0 {
		return false
	}
	stored, err := DecodeKey(c.Hash)
	if err != nil {
		return false
	}
	return Verify(DeriveKey(password, salt), stored)
}

// Hasher runs key derivations with a cap on how many execute at once.
// Derivation is deliberately slow, so unbounded concurrent logins would
// otherwise saturate every core.
type Hasher struct {
	sem   *semaphore.Weighted
	decoy Credential
}

// NewHasher returns a Hasher allowing up to maxConcurrent derivations.
func NewHasher(maxConcurrent int) (*Hasher, error) {
	if maxConcurrent < 1 {
		return nil, fmt.Errorf("max concurrent derivations must be positive, got %d", maxConcurrent)
	}
	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	return &Hasher{
		sem: semaphore.NewWeighted(int64(maxConcurrent)),
		// only the salt matters; the hash can never be matched
		decoy: Credential{Salt: EncodeKey(salt)},
	}, nil
}

// Hash derives a new credential for password. It blocks while the hasher is
// at capacity and returns the context error if ctx ends first.
func (h *Hasher) Hash(ctx context.Context, password Password) (cred Credential, err error) {
	var deriveErr error
	if err = h.run(ctx, func() {
		cred, deriveErr = NewCredential(password)
	}); err != nil {
		return cred, err
	}
	return cred, deriveErr
}

// Check reports whether password matches cred. The error is non-nil only if
// ctx ends while waiting for capacity.
func (h *Hasher) Check(ctx context.Context, password Password, cred Credential) (ok bool, err error) {
	err = h.run(ctx, func() {
		ok = cred.Matches(password)
	})
	return ok, err
}

// Decoy performs one derivation whose result is discarded, so a lookup that
// found no credential costs the same as a failed Check.
func (h *Hasher) Decoy(ctx context.Context, password Password) error {
	_, err := h.Check(ctx, password, h.decoy)
	return err
}

func (h *Hasher) run(ctx context.Context, fn func()) error {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.sem.Release(1)
	fn()
	return nil
}
