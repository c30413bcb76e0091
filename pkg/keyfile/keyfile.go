// Package keyfile seals authority key material at rest: the CBOR encoded
// secret key inside XChaCha20-Poly1305, under a key derived from a
// passphrase with argon2id.
//
// The sealed blob is salt ‖ nonce ‖ box, so opening needs nothing beyond
// the passphrase.
package keyfile

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/ballotseal/paillier-tally/pkg/paillier"
)

const (
	saltSize = 16

	// argon2id cost parameters
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// ErrSealedTooShort is returned when sealed data cannot even hold the salt
// and nonce header.
var ErrSealedTooShort = errors.New("keyfile: sealed data too short")

// Seal encrypts the secret key under the passphrase.
func Seal(rand io.Reader, sk *paillier.SecretKey, passphrase []byte) ([]byte, error) {
	plain, err := sk.MarshalBinary()
	if err != nil {
		return nil, err
	}
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand, salt); err != nil {
		return nil, fmt.Errorf("keyfile: %w", err)
	}
	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand, nonce); err != nil {
		return nil, fmt.Errorf("keyfile: %w", err)
	}
	out := make([]byte, 0, saltSize+len(nonce)+len(plain)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plain, nil), nil
}

// Open decrypts sealed key material with the passphrase, rebuilding and
// revalidating the key as it loads.
func Open(data, passphrase []byte) (*paillier.SecretKey, error) {
	if len(data) < saltSize+chacha20poly1305.NonceSizeX {
		return nil, ErrSealedTooShort
	}
	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	box := data[saltSize+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, nonce, box, nil)
	if err != nil {
		return nil, fmt.Errorf("keyfile: %w", err)
	}
	sk := new(paillier.SecretKey)
	if err := sk.UnmarshalBinary(plain); err != nil {
		return nil, err
	}
	return sk, nil
}

func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}
