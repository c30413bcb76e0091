package paillier

import (
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
)

// Ciphertext is an element of ℤ_N²ˣ encrypting one packed ballot.
type Ciphertext struct {
	c *saferith.Nat
}

// NewCiphertext wraps a raw value read from the wire. Nothing is checked
// here; the receiving side validates it against its own key.
func NewCiphertext(c *saferith.Nat) *Ciphertext {
	return &Ciphertext{c: c}
}

// Identity returns the neutral element of homomorphic addition, the
// ciphertext 1. It decrypts to 0.
func Identity() *Ciphertext {
	return &Ciphertext{c: new(saferith.Nat).SetUint64(1)}
}

// Add sets ct to the homomorphic sum of ct and other, and returns ct.
//
// ct ← ct ⋅ other (mod N²)
func (ct *Ciphertext) Add(pk *PublicKey, other *Ciphertext) *Ciphertext {
	if other == nil {
		return ct
	}
	ct.c = pk.nSquared.Mul(ct.c, other.c)
	return ct
}

// Mul sets ct to the homomorphic product of ct and the scalar k, and
// returns ct.
//
// ct ← ctᵏ (mod N²)
func (ct *Ciphertext) Mul(pk *PublicKey, k *saferith.Nat) *Ciphertext {
	if k == nil {
		return ct
	}
	ct.c = pk.nSquared.Exp(ct.c, k)
	return ct
}

// Clone returns a deep copy of ct.
func (ct *Ciphertext) Clone() *Ciphertext {
	return &Ciphertext{c: new(saferith.Nat).SetNat(ct.c)}
}

// Equal reports whether the two ciphertexts hold the same value.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	if ct == nil || other == nil {
		return ct == other
	}
	return ct.c.Eq(other.c) == 1
}

// Nat returns a copy of the raw ciphertext value.
func (ct *Ciphertext) Nat() *saferith.Nat {
	return new(saferith.Nat).SetNat(ct.c)
}

// Big returns the ciphertext value as a big.Int, for decimal IO.
func (ct *Ciphertext) Big() *big.Int {
	return ct.c.Big()
}

// WriteTo implements io.WriterTo, writing the value in big endian.
func (ct *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	if ct == nil || ct.c == nil {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write(ct.c.Bytes())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*Ciphertext) Domain() string {
	return "Paillier Ciphertext"
}
