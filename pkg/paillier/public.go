package paillier

import (
	"errors"
	"io"

	"github.com/cronokirby/saferith"

	"github.com/ballotseal/paillier-tally/pkg/math/arith"
	"github.com/ballotseal/paillier-tally/pkg/math/sample"
)

// ErrPlaintextRange is returned when a plaintext is not in [0, N-1].
var ErrPlaintextRange = errors.New("paillier: plaintext must be in [0, N)")

// PublicKey is a Paillier encryption key: the modulus N together with the
// cached values needed to encrypt under it.
type PublicKey struct {
	// n = p⋅q
	n *arith.Modulus
	// nSquared = n²
	nSquared *arith.Modulus
	// nNat is a cached copy of n as a Nat
	nNat *saferith.Nat
	// nPlusOne is a cached copy of n + 1, the base of the plaintext term
	nPlusOne *saferith.Nat
	// width is the working width, in bits, every derived value fits in
	width int
}

// NewPublicKey checks that n is odd and that both n and n² fit the working
// width, and precomputes the encryption context.
//
// This is the verification side constructor. The prime factors stay
// unknown, so operations run without the CRT speedup.
func NewPublicKey(n *saferith.Nat, width int) (*PublicKey, error) {
	nCtx, err := arith.ModulusFromN(n)
	if err != nil {
		return nil, err
	}
	if n.TrueLen() > width {
		return nil, arith.ErrOverflow
	}
	nPlusOne, err := arith.CheckedAdd(n, oneNat, width)
	if err != nil {
		return nil, err
	}
	nSquaredNat, err := arith.CheckedSquare(n, width)
	if err != nil {
		return nil, err
	}
	nSquared, err := arith.ModulusFromN(nSquaredNat)
	if err != nil {
		return nil, err
	}
	return &PublicKey{
		n:        nCtx,
		nSquared: nSquared,
		nNat:     nCtx.Nat(),
		nPlusOne: nPlusOne,
		width:    width,
	}, nil
}

// Enc encrypts m with a nonce drawn fresh from rand, and returns both the
// ciphertext and the nonce.
//
// ct = (1+N)ᵐ ρᴺ (mod N²)
func (pk *PublicKey) Enc(rand io.Reader, m *saferith.Nat) (*Ciphertext, *saferith.Nat, error) {
	nonce := sample.UnitModN(rand, pk.n.Modulus)
	ct, err := pk.EncWithNonce(m, nonce)
	if err != nil {
		return nil, nil, err
	}
	return ct, nonce, nil
}

// EncWithNonce encrypts m using the given nonce.
//
// The nonce must be a unit modulo N and fresh for every encryption.
// Prefer Enc unless the nonce has to be chosen by the caller.
func (pk *PublicKey) EncWithNonce(m, nonce *saferith.Nat) (*Ciphertext, error) {
	if _, _, lt := m.CmpMod(pk.n.Modulus); lt != 1 {
		return nil, ErrPlaintextRange
	}
	c := pk.nSquared.Exp(pk.nPlusOne, m)     // c = (1+N)ᵐ (mod N²)
	rhoN := pk.nSquared.Exp(nonce, pk.nNat)  // ρᴺ (mod N²)
	return &Ciphertext{c: pk.nSquared.Mul(c, rhoN)}, nil
}

// ValidateCiphertexts checks that every ciphertext is in the range
// [1, N²-1] and is coprime to N².
func (pk *PublicKey) ValidateCiphertexts(cts ...*Ciphertext) bool {
	for _, ct := range cts {
		if ct == nil || ct.c == nil {
			return false
		}
		if !arith.IsValidNatModN(pk.nSquared.Modulus, ct.c) {
			return false
		}
	}
	return true
}

// N returns the public modulus.
func (pk *PublicKey) N() *saferith.Modulus {
	return pk.n.Modulus
}

// Width returns the working width, in bits, the key was built with.
func (pk *PublicKey) Width() int {
	return pk.width
}

// Equal reports whether the two keys share the same modulus.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	if other == nil {
		return false
	}
	_, eq, _ := pk.nNat.Cmp(other.nNat)
	return eq == 1
}
