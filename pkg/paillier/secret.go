package paillier

import (
	"errors"

	"github.com/cronokirby/saferith"

	"github.com/ballotseal/paillier-tally/pkg/math/arith"
)

var (
	// ErrEqualFactors is returned when the two supplied primes are equal;
	// φ(N) = (p-1)(q-1) only holds for distinct factors.
	ErrEqualFactors = errors.New("paillier: prime factors p and q must be distinct")
	// ErrNoInverse is returned when the totient has no inverse modulo N,
	// which makes decryption impossible.
	ErrNoInverse = errors.New("paillier: totient has no inverse modulo N")
	// ErrCiphertextInvalid is returned when a ciphertext is not a unit
	// modulo N².
	ErrCiphertextInvalid = errors.New("paillier: ciphertext is not a unit modulo N²")
)

// SecretKey is a Paillier decryption key.
type SecretKey struct {
	*PublicKey
	// p, q are the prime factors of N when known, and nil when the key
	// was reconstructed from the totient alone.
	p, q *saferith.Nat
	// phi = φ(N) = (p-1)(q-1)
	phi *saferith.Nat
	// phiInv = φ(N)⁻¹ (mod N)
	phiInv *saferith.Nat
}

// NewSecretKeyFromPrimes builds the key pair for the modulus N = p⋅q.
//
// The primes are taken on faith; what is checked is that they are odd and
// distinct, that φ(N) is invertible modulo N, and that every derived
// value, N² included, fits in width bits.
func NewSecretKeyFromPrimes(p, q *saferith.Nat, width int) (*SecretKey, error) {
	if p == nil || q == nil {
		return nil, ErrNilFields
	}
	if p.Eq(q) == 1 {
		return nil, ErrEqualFactors
	}
	nNat, err := arith.CheckedMul(p, q, width)
	if err != nil {
		return nil, err
	}
	n, err := arith.ModulusFromFactors(p, q)
	if err != nil {
		return nil, err
	}
	nPlusOne, err := arith.CheckedAdd(nNat, oneNat, width)
	if err != nil {
		return nil, err
	}
	if _, err = arith.CheckedSquare(nNat, width); err != nil {
		return nil, err
	}
	pSquared := new(saferith.Nat).Mul(p, p, -1)
	qSquared := new(saferith.Nat).Mul(q, q, -1)
	nSquared, err := arith.ModulusFromFactors(pSquared, qSquared)
	if err != nil {
		return nil, err
	}

	pMinus1 := new(saferith.Nat).Sub(p, oneNat, -1)
	qMinus1 := new(saferith.Nat).Sub(q, oneNat, -1)
	phi := new(saferith.Nat).Mul(pMinus1, qMinus1, -1)
	if phi.Coprime(nNat) != 1 {
		return nil, ErrNoInverse
	}
	phiInv := new(saferith.Nat).ModInverse(phi, n.Modulus)

	return &SecretKey{
		PublicKey: &PublicKey{
			n:        n,
			nSquared: nSquared,
			nNat:     nNat,
			nPlusOne: nPlusOne,
			width:    width,
		},
		p:      p,
		q:      q,
		phi:    phi,
		phiInv: phiInv,
	}, nil
}

// NewSecretKeyFromPhi reconstructs the decryption key from the public
// modulus and its totient, for an authority that was handed φ(N) instead
// of the factorization. Decryption then runs without the CRT speedup.
func NewSecretKeyFromPhi(n, phi *saferith.Nat, width int) (*SecretKey, error) {
	if n == nil || phi == nil {
		return nil, ErrNilFields
	}
	pk, err := NewPublicKey(n, width)
	if err != nil {
		return nil, err
	}
	if phi.Coprime(pk.nNat) != 1 {
		return nil, ErrNoInverse
	}
	phiInv := new(saferith.Nat).ModInverse(phi, pk.n.Modulus)
	return &SecretKey{
		PublicKey: pk,
		phi:       phi,
		phiInv:    phiInv,
	}, nil
}

// Dec decrypts ct and returns the plaintext m ∈ [0, N-1].
func (sk *SecretKey) Dec(ct *Ciphertext) (*saferith.Nat, error) {
	if !sk.ValidateCiphertexts(ct) {
		return nil, ErrCiphertextInvalid
	}
	n := sk.n.Modulus
	result := sk.nSquared.Exp(ct.c, sk.phi) // r = cᵠ (mod N²)
	result.Sub(result, oneNat, -1)          // r = cᵠ - 1
	result.Div(result, n, -1)               // r = [cᵠ - 1] / N
	result.ModMul(result, sk.phiInv, n)     // r = [cᵠ - 1] / N ⋅ φ⁻¹ (mod N)
	return result, nil
}

// Phi returns φ(N).
func (sk *SecretKey) Phi() *saferith.Nat {
	return sk.phi
}

// HasFactors reports whether the key carries its prime factorization.
func (sk *SecretKey) HasFactors() bool {
	return sk.p != nil && sk.q != nil
}

// P returns the first prime factor, or nil when the key was built from the
// totient.
func (sk *SecretKey) P() *saferith.Nat {
	return sk.p
}

// Q returns the second prime factor, or nil when the key was built from
// the totient.
func (sk *SecretKey) Q() *saferith.Nat {
	return sk.q
}
