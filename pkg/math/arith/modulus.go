package arith

import (
	"github.com/cronokirby/saferith"
)

// Modulus wraps a saferith.Modulus and enables faster modular exponentiation
// when the factorization n = p⋅q is known. Building the context performs the
// expensive conversion to the fast internal form once, so it should be
// created a single time per modulus and reused for all later operations.
type Modulus struct {
	// represents modulus n
	*saferith.Modulus
	// fast is true if the factorization is known
	fast bool
	// p, q such that n = p⋅q
	p, q *saferith.Modulus
	// pInv = p⁻¹ (mod q)
	pInv *saferith.Nat
	// pNat = p
	pNat *saferith.Nat
}

// ModulusFromN creates a context for the odd modulus n, without acceleration.
func ModulusFromN(n *saferith.Nat) (*Modulus, error) {
	if n.Byte(0)&1 != 1 {
		return nil, ErrEvenModulus
	}
	return &Modulus{Modulus: saferith.ModulusFromNat(n)}, nil
}

// ModulusFromFactors creates the context for n = p⋅q with a CRT speedup for
// exponentiation. Both factors must be odd.
func ModulusFromFactors(p, q *saferith.Nat) (*Modulus, error) {
	if p.Byte(0)&1 != 1 || q.Byte(0)&1 != 1 {
		return nil, ErrEvenModulus
	}
	nNat := new(saferith.Nat).Mul(p, q, -1)
	nMod := saferith.ModulusFromNat(nNat)
	pMod := saferith.ModulusFromNat(p)
	qMod := saferith.ModulusFromNat(q)
	pInv := new(saferith.Nat).ModInverse(p, qMod)
	pNat := new(saferith.Nat).SetNat(p)
	return &Modulus{
		Modulus: nMod,
		fast:    true,
		p:       pMod,
		q:       qMod,
		pInv:    pInv,
		pNat:    pNat,
	}, nil
}

// Exp computes xᵉ (mod n).
//
// With a known factorization the result is computed separately mod p and
// mod q and recombined.
func (n *Modulus) Exp(x, e *saferith.Nat) *saferith.Nat {
	if n.fast {
		var xp, xq saferith.Nat
		xp.Exp(x, e, n.p) // x₁ = xᵉ (mod p)
		xq.Exp(x, e, n.q) // x₂ = xᵉ (mod q)
		// r = x₁ + p ⋅ [p⁻¹ (mod q)] ⋅ [x₂ - x₁] (mod n)
		r := xq.ModSub(&xq, &xp, n.Modulus)
		r.ModMul(r, n.pInv, n.Modulus)
		r.ModMul(r, n.pNat, n.Modulus)
		r.ModAdd(r, &xp, n.Modulus)
		return r
	}
	return new(saferith.Nat).Exp(x, e, n.Modulus)
}

// Mul computes x ⋅ y (mod n).
func (n *Modulus) Mul(x, y *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModMul(x, y, n.Modulus)
}

// Reduce returns x (mod n) in canonical form.
func (n *Modulus) Reduce(x *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).Mod(x, n.Modulus)
}

// HasFactorization reports whether the context carries the CRT speedup.
func (n *Modulus) HasFactorization() bool {
	return n.fast && n.p != nil && n.q != nil && n.pInv != nil
}
